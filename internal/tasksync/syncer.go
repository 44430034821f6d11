package tasksync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"snagaudit/internal/metrics"
	"snagaudit/pkg/types"

	"github.com/sirupsen/logrus"
)

// Tracker is the external task tracker.
type Tracker interface {
	CreateTask(ctx context.Context, task types.ExternalTask) (types.TaskRef, error)
	AttachFile(ctx context.Context, taskID, filename string, r io.Reader) error
}

type SnagStore interface {
	Snag(ctx context.Context, id string) (*types.Snag, error)
	SnagsByAudit(ctx context.Context, auditID string) ([]types.Snag, error)
	UpdateSnag(ctx context.Context, id string, update types.SnagUpdate) (*types.Snag, error)
}

type MediaStore interface {
	MediaBySnag(ctx context.Context, snagID string) ([]types.Media, error)
}

// FileOpener reads stored media for attachment upload.
type FileOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type Syncer struct {
	snags   SnagStore
	media   MediaStore
	files   FileOpener
	tracker Tracker
	logger  logrus.FieldLogger
	now     func() time.Time
}

func New(snags SnagStore, media MediaStore, files FileOpener, tracker Tracker, logger logrus.FieldLogger) *Syncer {
	return &Syncer{
		snags:   snags,
		media:   media,
		files:   files,
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
	}
}

// SyncSnag pushes one snag to the tracker and records the task id on it.
func (s *Syncer) SyncSnag(ctx context.Context, snagID string) (*types.SyncOutcome, error) {
	snag, err := s.snags.Snag(ctx, snagID)
	if err != nil {
		return nil, err
	}
	if snag.Synced() {
		return nil, types.ErrAlreadySynced
	}

	ref, updated, err := s.sync(ctx, snag)
	if err != nil {
		metrics.TaskSyncs.WithLabelValues(string(types.SyncStatusFailed)).Inc()
		return nil, err
	}
	metrics.TaskSyncs.WithLabelValues(string(types.SyncStatusCreated)).Inc()

	return &types.SyncOutcome{Task: ref, Snag: updated}, nil
}

// SyncAudit syncs every snag of an audit in order. Each snag gets its own
// result; only failing to list the audit's snags aborts the run.
func (s *Syncer) SyncAudit(ctx context.Context, auditID string) ([]types.SyncResult, error) {
	snags, err := s.snags.SnagsByAudit(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snags for audit %s: %w", auditID, err)
	}

	results := make([]types.SyncResult, 0, len(snags))
	for i := range snags {
		result := s.syncResult(ctx, &snags[i])
		metrics.TaskSyncs.WithLabelValues(string(result.Status)).Inc()
		results = append(results, result)
	}

	s.logger.WithFields(logrus.Fields{"audit_id": auditID, "count": len(results)}).Info("audit synced")

	return results, nil
}

func (s *Syncer) syncResult(ctx context.Context, snag *types.Snag) types.SyncResult {
	if snag.Synced() {
		return types.SyncResult{SnagID: snag.ID, Status: types.SyncStatusSkipped, Reason: "Already synced"}
	}

	ref, _, err := s.sync(ctx, snag)
	if err != nil {
		s.logger.WithError(err).WithField("snag_id", snag.ID).Warn("snag sync failed")
		return types.SyncResult{SnagID: snag.ID, Status: types.SyncStatusFailed, Error: err.Error()}
	}

	return types.SyncResult{SnagID: snag.ID, Status: types.SyncStatusCreated, TaskID: ref.ID}
}

func (s *Syncer) sync(ctx context.Context, snag *types.Snag) (types.TaskRef, *types.Snag, error) {
	ref, err := s.tracker.CreateTask(ctx, BuildTask(*snag, s.now()))
	if err != nil {
		if !errors.Is(err, types.ErrExternalService) {
			err = fmt.Errorf("%w: %w", types.ErrExternalService, err)
		}
		return types.TaskRef{}, nil, fmt.Errorf("failed to create task for snag %s: %w", snag.ID, err)
	}

	taskID := ref.ID
	updated, err := s.snags.UpdateSnag(ctx, snag.ID, types.SnagUpdate{ClickUpTaskID: &taskID})
	if err != nil {
		return types.TaskRef{}, nil, fmt.Errorf("task %s created but not recorded on snag %s: %w", taskID, snag.ID, err)
	}

	s.attachMedia(ctx, taskID, snag.ID)

	s.logger.WithFields(logrus.Fields{"snag_id": snag.ID, "task_id": taskID}).Info("snag synced")

	return ref, updated, nil
}

// attachMedia uploads the snag's media to the task. Failures are logged and skipped.
func (s *Syncer) attachMedia(ctx context.Context, taskID, snagID string) {
	entry := s.logger.WithFields(logrus.Fields{"snag_id": snagID, "task_id": taskID})

	media, err := s.media.MediaBySnag(ctx, snagID)
	if err != nil {
		metrics.AttachmentFailures.Inc()
		entry.WithError(err).Warn("failed to list media for attachment")
		return
	}

	for _, m := range media {
		if err := s.attach(ctx, taskID, m); err != nil {
			metrics.AttachmentFailures.Inc()
			entry.WithError(err).WithField("media_id", m.ID).Warn("failed to attach media to task")
		}
	}
}

func (s *Syncer) attach(ctx context.Context, taskID string, m types.Media) error {
	rc, err := s.files.Open(ctx, m.FilePath)
	if err != nil {
		return err
	}
	defer rc.Close()

	name := m.FileName
	if name == "" {
		name = path.Base(m.FilePath)
	}

	return s.tracker.AttachFile(ctx, taskID, name, rc)
}
