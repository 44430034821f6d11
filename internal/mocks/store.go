package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"snagaudit/internal/utils"
	"snagaudit/pkg/types"
)

// SnagStore is an in-memory snag repository.
type SnagStore struct {
	mu    sync.RWMutex
	snags map[string]*types.Snag
	order []string
	clock time.Time

	// ListErr, when set, is returned by SnagsByAudit.
	ListErr error
	// CreateErr, when set, is returned by CreateSnag once CreateErrAfter
	// snags have been stored.
	CreateErr      error
	CreateErrAfter int
}

func NewSnagStore() *SnagStore {
	return &SnagStore{
		snags: make(map[string]*types.Snag),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is stable.
func (m *SnagStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *SnagStore) CreateSnag(ctx context.Context, snag *types.Snag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil && len(m.order) >= m.CreateErrAfter {
		return m.CreateErr
	}
	if snag.Description == "" || snag.ProjectName == "" {
		return fmt.Errorf("snag requires description and project: %w", types.ErrConstraint)
	}
	if snag.ID == "" {
		snag.ID = utils.NanoID()
	}
	if snag.Status == "" {
		snag.Status = types.SnagStatusNew
	}
	now := m.tick()
	snag.CreatedAt, snag.UpdatedAt = now, now

	stored := *snag
	m.snags[snag.ID] = &stored
	m.order = append(m.order, snag.ID)
	return nil
}

func (m *SnagStore) Snag(ctx context.Context, id string) (*types.Snag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snag, ok := m.snags[id]
	if !ok {
		return nil, types.ErrSnagNotFound
	}
	out := *snag
	return &out, nil
}

func (m *SnagStore) UpdateSnag(ctx context.Context, id string, update types.SnagUpdate) (*types.Snag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	columns := update.Columns()
	if len(columns) == 0 {
		return nil, fmt.Errorf("no valid updates: %w", types.ErrValidation)
	}

	snag, ok := m.snags[id]
	if !ok {
		return nil, types.ErrSnagNotFound
	}

	for column, value := range columns {
		var ptr *string
		if s, ok := value.(string); ok {
			ptr = &s
		}
		switch column {
		case "snag_description":
			snag.Description = *ptr
		case "project_name":
			snag.ProjectName = *ptr
		case "status":
			snag.Status = types.SnagStatus(*ptr)
		case "recommended_trade":
			snag.RecommendedTrade = ptr
		case "recommended_builder":
			snag.RecommendedBuilder = ptr
		case "deadline":
			snag.Deadline = ptr
		case "materials_needed":
			snag.MaterialsNeeded = ptr
		case "plant_needed":
			snag.PlantNeeded = ptr
		case "drawing_reference":
			snag.DrawingReference = ptr
		case "additional_notes":
			snag.AdditionalNotes = ptr
		case "clickup_task_id":
			snag.ClickUpTaskID = ptr
		}
	}
	snag.UpdatedAt = m.tick()

	out := *snag
	return &out, nil
}

// Snags mirrors the repository ordering: deadline text ascending with
// missing deadlines first, then newest first.
func (m *SnagStore) Snags(ctx context.Context, filters types.SnagFilters) ([]types.Snag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Snag, 0)
	for _, id := range m.order {
		s := m.snags[id]
		if filters.Project != "" && s.ProjectName != filters.Project {
			continue
		}
		if filters.Status != "" && string(s.Status) != filters.Status {
			continue
		}
		if filters.Trade != "" && utils.PtrString(s.RecommendedTrade) != filters.Trade {
			continue
		}
		out = append(out, *s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Deadline, out[j].Deadline
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a < *b
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (m *SnagStore) SnagsByAudit(ctx context.Context, auditID string) ([]types.Snag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	out := make([]types.Snag, 0)
	for _, id := range m.order {
		if s := m.snags[id]; s.AuditID == auditID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// MediaStore is an in-memory media repository.
type MediaStore struct {
	mu    sync.RWMutex
	media map[string]*types.Media
	order []string
}

func NewMediaStore() *MediaStore {
	return &MediaStore{media: make(map[string]*types.Media)}
}

func (m *MediaStore) CreateMedia(ctx context.Context, media *types.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if media.ID == "" {
		media.ID = utils.NanoID()
	}
	media.CreatedAt = time.Now().UTC()

	stored := *media
	m.media[media.ID] = &stored
	m.order = append(m.order, media.ID)
	return nil
}

func (m *MediaStore) Media(ctx context.Context, id string) (*types.Media, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	media, ok := m.media[id]
	if !ok {
		return nil, types.ErrMediaNotFound
	}
	out := *media
	return &out, nil
}

func (m *MediaStore) MediaByAudit(ctx context.Context, auditID string) ([]types.Media, error) {
	return m.filter(func(media *types.Media) bool { return media.AuditID == auditID }), nil
}

func (m *MediaStore) MediaBySnag(ctx context.Context, snagID string) ([]types.Media, error) {
	return m.filter(func(media *types.Media) bool { return media.SnagID != nil && *media.SnagID == snagID }), nil
}

func (m *MediaStore) filter(keep func(*types.Media) bool) []types.Media {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Media, 0)
	for _, id := range m.order {
		if media := m.media[id]; keep(media) {
			out = append(out, *media)
		}
	}
	return out
}

func (m *MediaStore) ReassignMedia(ctx context.Context, mediaID, snagID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	media, ok := m.media[mediaID]
	if !ok {
		return types.ErrMediaNotFound
	}
	media.SnagID = &snagID
	return nil
}

// AuditStore is an in-memory audit repository.
type AuditStore struct {
	mu     sync.RWMutex
	audits map[string]*types.Audit
	order  []string
}

func NewAuditStore() *AuditStore {
	return &AuditStore{audits: make(map[string]*types.Audit)}
}

func (m *AuditStore) EnsureAudit(ctx context.Context, audit *types.Audit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.audits[audit.ID]; ok {
		return nil
	}
	if audit.Status == "" {
		audit.Status = types.AuditStatusDraft
	}
	audit.CreatedAt = time.Now().UTC()

	stored := *audit
	m.audits[audit.ID] = &stored
	m.order = append(m.order, audit.ID)
	return nil
}

func (m *AuditStore) Audit(ctx context.Context, id string) (*types.Audit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	audit, ok := m.audits[id]
	if !ok {
		return nil, types.ErrAuditNotFound
	}
	out := *audit
	return &out, nil
}

func (m *AuditStore) RecentAudits(ctx context.Context, limit uint64) ([]types.Audit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Audit, 0)
	for i := len(m.order) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		out = append(out, *m.audits[m.order[i]])
	}
	return out, nil
}
