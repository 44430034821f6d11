package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"snagaudit/internal/utils"
	"snagaudit/pkg/types"

	"github.com/google/uuid"
)

// SeedProject is the project name given to every seeded audit.
const SeedProject = "[seed] Riverside Apartments"

type AuditStore interface {
	EnsureAudit(ctx context.Context, audit *types.Audit) error
}

type SnagStore interface {
	CreateSnag(ctx context.Context, snag *types.Snag) error
	UpdateSnag(ctx context.Context, id string, update types.SnagUpdate) (*types.Snag, error)
}

type fakeSnag struct {
	Description string
	Trade       string
	Materials   string
	Drawing     string
}

var fakeSnags = []fakeSnag{
	{"Cracked tile in level 2 bathroom near the shower tray", "Tiler", "2 x 300mm grey floor tiles", "A-201"},
	{"Fire door to stair core does not self close", "Carpenter", "Overhead door closer", "A-105"},
	{"Paint overspray on window frame in unit 4", "Painter", "", ""},
	{"Missing skirting board along corridor east wall", "Carpenter", "5m MDF skirting", "A-110"},
	{"Socket faceplate loose in kitchen", "Electrician", "", "E-301"},
	{"Water staining on ceiling below plant room", "Plumber", "", "M-402"},
	{"Handrail bracket missing at landing 3", "Metalworker", "Stainless bracket and fixings", "S-220"},
	{"Gap in silicone around bath in unit 7", "Plumber", "White sanitary silicone", ""},
	{"Damaged plasterboard behind entrance door", "Plasterer", "1 sheet 12.5mm board", ""},
	{"Extract fan not running in utility room", "Electrician", "", "E-310"},
}

type weightedSnagStatus struct {
	Status types.SnagStatus
	Weight int
}

var weightedStatuses = []weightedSnagStatus{
	{Status: types.SnagStatusNew, Weight: 60},
	{Status: types.SnagStatusInProgress, Weight: 25},
	{Status: types.SnagStatusCompleted, Weight: 15},
}

// SeedDemoAudit creates one audit holding count fake snags and returns its id.
func SeedDemoAudit(ctx context.Context, audits AuditStore, snags SnagStore, count int, rng *rand.Rand) (string, error) {
	if count <= 0 {
		return "", fmt.Errorf("count must be positive, got %d: %w", count, types.ErrValidation)
	}

	audit := &types.Audit{
		ID:          uuid.NewString(),
		ProjectName: utils.StringPtr(SeedProject),
		Status:      types.AuditStatusDraft,
	}
	if err := audits.EnsureAudit(ctx, audit); err != nil {
		return "", fmt.Errorf("failed to create seed audit: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		fake := fakeSnags[rng.Intn(len(fakeSnags))]

		snag := &types.Snag{
			AuditID:          audit.ID,
			Description:      fake.Description,
			ProjectName:      SeedProject,
			RecommendedTrade: utils.NilIfBlank(fake.Trade),
			MaterialsNeeded:  utils.NilIfBlank(fake.Materials),
			DrawingReference: utils.NilIfBlank(fake.Drawing),
		}
		if rng.Intn(100) < 70 {
			deadline := today.AddDate(0, 0, rng.Intn(21)).Format(time.DateOnly)
			snag.Deadline = &deadline
		}

		if err := snags.CreateSnag(ctx, snag); err != nil {
			return "", fmt.Errorf("failed to create seed snag %d: %w", i+1, err)
		}

		status := pickWeightedStatus(rng)
		if status == types.SnagStatusNew {
			continue
		}
		if _, err := snags.UpdateSnag(ctx, snag.ID, types.SnagUpdate{Status: &status}); err != nil {
			return "", fmt.Errorf("failed to set status on seed snag %s: %w", snag.ID, err)
		}
	}

	return audit.ID, nil
}

func pickWeightedStatus(rng *rand.Rand) types.SnagStatus {
	total := 0
	for _, item := range weightedStatuses {
		total += item.Weight
	}

	roll := rng.Intn(total)
	running := 0
	for _, item := range weightedStatuses {
		running += item.Weight
		if roll < running {
			return item.Status
		}
	}

	return types.SnagStatusNew
}
