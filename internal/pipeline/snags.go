package pipeline

import (
	"context"

	"snagaudit/pkg/types"
)

func (s *Service) SnagDetail(ctx context.Context, snagID string) (*types.SnagDetail, error) {
	snag, err := s.snags.Snag(ctx, snagID)
	if err != nil {
		return nil, err
	}

	media, err := s.media.MediaBySnag(ctx, snagID)
	if err != nil {
		return nil, err
	}

	return &types.SnagDetail{Snag: *snag, Media: withURLs(media)}, nil
}

func (s *Service) AuditDetail(ctx context.Context, auditID string) (*types.AuditDetail, error) {
	snags, err := s.snags.SnagsByAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}

	media, err := s.media.MediaByAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}

	return &types.AuditDetail{Snags: snags, Media: withURLs(media)}, nil
}

func (s *Service) ListSnags(ctx context.Context, filters types.SnagFilters) ([]types.Snag, error) {
	return s.snags.Snags(ctx, filters)
}

// UpdateSnag applies a client edit. The external task id is not client editable.
func (s *Service) UpdateSnag(ctx context.Context, snagID string, update types.SnagUpdate) (*types.Snag, error) {
	update.ClickUpTaskID = nil
	if err := update.Validate(); err != nil {
		return nil, err
	}
	return s.snags.UpdateSnag(ctx, snagID, update)
}

func withURLs(media []types.Media) []types.Media {
	out := make([]types.Media, 0, len(media))
	for _, m := range media {
		out = append(out, m.WithURL())
	}
	return out
}
