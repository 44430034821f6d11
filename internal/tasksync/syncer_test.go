package tasksync

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"snagaudit/internal/mocks"
	"snagaudit/internal/utils"
	"snagaudit/pkg/types"

	"github.com/sirupsen/logrus"
)

type fixture struct {
	snags   *mocks.SnagStore
	media   *mocks.MediaStore
	files   *mocks.Files
	tracker *mocks.Tracker
	syncer  *Syncer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		snags:   mocks.NewSnagStore(),
		media:   mocks.NewMediaStore(),
		files:   mocks.NewFiles(),
		tracker: mocks.NewTracker(),
	}
	f.syncer = New(f.snags, f.media, f.files, f.tracker, logger)
	return f
}

func (f *fixture) addSnag(t *testing.T, auditID, description string) *types.Snag {
	t.Helper()
	snag := &types.Snag{AuditID: auditID, Description: description, ProjectName: "Site A"}
	if err := f.snags.CreateSnag(context.Background(), snag); err != nil {
		t.Fatalf("CreateSnag() error = %v", err)
	}
	return snag
}

func TestSyncSnag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	f.syncer.now = func() time.Time { return now }

	snag := f.addSnag(t, "audit-1", "Leaky tap")
	_, err := f.snags.UpdateSnag(ctx, snag.ID, types.SnagUpdate{Deadline: utils.StringPtr("ASAP")})
	if err != nil {
		t.Fatal(err)
	}

	_ = f.files.Save(ctx, "media/a-photo.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	photo := &types.Media{AuditID: "audit-1", FilePath: "media/a-photo.jpg", FileName: "photo.jpg", MediaType: types.MediaKindPhoto}
	missing := &types.Media{AuditID: "audit-1", FilePath: "media/gone.jpg", FileName: "gone.jpg", MediaType: types.MediaKindPhoto}
	for _, m := range []*types.Media{photo, missing} {
		_ = f.media.CreateMedia(ctx, m)
		_ = f.media.ReassignMedia(ctx, m.ID, snag.ID)
	}

	outcome, err := f.syncer.SyncSnag(ctx, snag.ID)
	if err != nil {
		t.Fatalf("SyncSnag() error = %v", err)
	}
	if outcome.Task.ID != "task-1" || outcome.Snag.ClickUpTaskID == nil || *outcome.Snag.ClickUpTaskID != "task-1" {
		t.Fatalf("outcome = %+v", outcome)
	}

	task := f.tracker.Tasks[0]
	if task.Priority != types.TaskPriorityUrgent || task.DueDate == nil || !task.DueDate.Equal(now.Add(72*time.Hour)) {
		t.Errorf("task = %+v, want urgent due in three days", task)
	}

	if got := f.tracker.Attachments["task-1"]; len(got) != 1 || got[0] != "photo.jpg" {
		t.Errorf("attachments = %v, want only the readable photo", got)
	}

	if _, err := f.syncer.SyncSnag(ctx, snag.ID); !errors.Is(err, types.ErrAlreadySynced) {
		t.Errorf("second SyncSnag() error = %v, want ErrAlreadySynced", err)
	}
	if _, err := f.syncer.SyncSnag(ctx, "missing"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("SyncSnag(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSyncSnagAttachmentFailuresDoNotFail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.tracker.AttachErr = errors.New("413 payload too large")

	snag := f.addSnag(t, "audit-1", "Leaky tap")
	_ = f.files.Save(ctx, "media/a.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	m := &types.Media{AuditID: "audit-1", FilePath: "media/a.jpg", FileName: "a.jpg"}
	_ = f.media.CreateMedia(ctx, m)
	_ = f.media.ReassignMedia(ctx, m.ID, snag.ID)

	if _, err := f.syncer.SyncSnag(ctx, snag.ID); err != nil {
		t.Fatalf("SyncSnag() error = %v", err)
	}
}

func TestSyncSnagTrackerFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	snag := f.addSnag(t, "audit-1", "Leaky tap")
	f.tracker.FailNames["[Site A] Leaky tap"] = errors.New("connection refused")

	_, err := f.syncer.SyncSnag(ctx, snag.ID)
	if !errors.Is(err, types.ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}

	stored, _ := f.snags.Snag(ctx, snag.ID)
	if stored.Synced() {
		t.Errorf("snag marked synced after failure")
	}
}

func TestSyncAuditIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, d := range []string{"Leaky tap", "Cracked tile", "Loose rail"} {
		f.addSnag(t, "audit-1", d)
	}
	f.addSnag(t, "audit-2", "Other audit")

	first, err := f.syncer.SyncAudit(ctx, "audit-1")
	if err != nil {
		t.Fatalf("SyncAudit() error = %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("results = %d, want 3", len(first))
	}
	for _, r := range first {
		if r.Status != types.SyncStatusCreated || r.TaskID == "" {
			t.Errorf("first run result = %+v, want created", r)
		}
	}

	second, err := f.syncer.SyncAudit(ctx, "audit-1")
	if err != nil {
		t.Fatalf("SyncAudit() error = %v", err)
	}
	for _, r := range second {
		if r.Status != types.SyncStatusSkipped {
			t.Errorf("second run result = %+v, want skipped", r)
		}
	}
	if f.tracker.Created() != 3 {
		t.Errorf("tasks created = %d, want 3", f.tracker.Created())
	}
}

func TestSyncAuditIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addSnag(t, "audit-1", "Leaky tap")
	b := f.addSnag(t, "audit-1", "Cracked tile")
	c := f.addSnag(t, "audit-1", "Loose rail")
	f.tracker.FailNames["[Site A] Cracked tile"] = errors.New("rate limited")

	results, err := f.syncer.SyncAudit(ctx, "audit-1")
	if err != nil {
		t.Fatalf("SyncAudit() error = %v", err)
	}

	want := map[string]types.SyncStatus{a.ID: types.SyncStatusCreated, b.ID: types.SyncStatusFailed, c.ID: types.SyncStatusCreated}
	for _, r := range results {
		if r.Status != want[r.SnagID] {
			t.Errorf("snag %s status = %s, want %s", r.SnagID, r.Status, want[r.SnagID])
		}
		if r.Status == types.SyncStatusFailed && !strings.Contains(r.Error, "rate limited") {
			t.Errorf("failed result error = %q", r.Error)
		}
	}
}

func TestSyncAuditListFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.snags.ListErr = errors.New("db down")

	if _, err := f.syncer.SyncAudit(context.Background(), "audit-1"); err == nil {
		t.Fatal("SyncAudit() succeeded, want error")
	}
}
