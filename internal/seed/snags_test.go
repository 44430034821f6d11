package seed

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"snagaudit/internal/mocks"
	"snagaudit/pkg/types"
)

func TestSeedDemoAudit(t *testing.T) {
	audits := mocks.NewAuditStore()
	snags := mocks.NewSnagStore()
	rng := rand.New(rand.NewSource(7))

	auditID, err := SeedDemoAudit(context.Background(), audits, snags, 12, rng)
	if err != nil {
		t.Fatalf("SeedDemoAudit: %v", err)
	}

	audit, err := audits.Audit(context.Background(), auditID)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if audit.ProjectName == nil || *audit.ProjectName != SeedProject {
		t.Errorf("audit project = %v, want %q", audit.ProjectName, SeedProject)
	}

	got, err := snags.SnagsByAudit(context.Background(), auditID)
	if err != nil {
		t.Fatalf("SnagsByAudit: %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("seeded %d snags, want 12", len(got))
	}
	for _, snag := range got {
		if snag.ProjectName != SeedProject {
			t.Errorf("snag %s project = %q", snag.ID, snag.ProjectName)
		}
		if !snag.Status.Valid() {
			t.Errorf("snag %s has invalid status %q", snag.ID, snag.Status)
		}
	}
}

func TestSeedDemoAuditRejectsZeroCount(t *testing.T) {
	_, err := SeedDemoAudit(context.Background(), mocks.NewAuditStore(), mocks.NewSnagStore(), 0, rand.New(rand.NewSource(1)))
	if !errors.Is(err, types.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestPickWeightedStatus(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := map[types.SnagStatus]int{}
	for i := 0; i < 1000; i++ {
		seen[pickWeightedStatus(rng)]++
	}

	for _, item := range weightedStatuses {
		if seen[item.Status] == 0 {
			t.Errorf("status %q never picked", item.Status)
		}
	}
	if seen[types.SnagStatusNew] < seen[types.SnagStatusCompleted] {
		t.Errorf("new picked %d times, completed %d; weights not respected", seen[types.SnagStatusNew], seen[types.SnagStatusCompleted])
	}
}
