package store

import (
	"context"
	"fmt"
	"time"

	"snagaudit/internal/utils"
	"snagaudit/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const mediaTableName = "snagaudit.media"

var mediaColumns = utils.StructTagValues(types.Media{})

type MediaRepository struct {
	pool *pgxpool.Pool
}

func NewMediaRepository(pool *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

// CreateMedia inserts a media record. MediaType must already be derived.
func (r *MediaRepository) CreateMedia(ctx context.Context, media *types.Media) error {
	if media.ID == "" {
		media.ID = utils.NanoID()
	}
	media.CreatedAt = time.Now().UTC()

	query, args, err := psql().Insert(mediaTableName).SetMap(utils.StructToMap(media)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert media query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return writeError(err, "failed to create media")
}

func (r *MediaRepository) Media(ctx context.Context, id string) (*types.Media, error) {
	query, args, err := psql().Select(mediaColumns...).From(mediaTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate media query: %w", err)
	}

	var media = new(types.Media)
	err = pgxscan.Get(ctx, r.pool, media, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to fetch media %s: %w", id, err)
	}

	return media, nil
}

func (r *MediaRepository) MediaByAudit(ctx context.Context, auditID string) ([]types.Media, error) {
	return r.mediaWhere(ctx, sq.Eq{"audit_id": auditID})
}

func (r *MediaRepository) MediaBySnag(ctx context.Context, snagID string) ([]types.Media, error) {
	return r.mediaWhere(ctx, sq.Eq{"snag_id": snagID})
}

func (r *MediaRepository) mediaWhere(ctx context.Context, pred sq.Eq) ([]types.Media, error) {
	query, args, err := psql().Select(mediaColumns...).From(mediaTableName).
		Where(pred).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate media list query: %w", err)
	}

	media := make([]types.Media, 0)
	err = pgxscan.Select(ctx, r.pool, &media, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}

	return media, nil
}

// ReassignMedia links media to snagID, replacing any previous link.
func (r *MediaRepository) ReassignMedia(ctx context.Context, mediaID, snagID string) error {
	query, args, err := psql().Update(mediaTableName).
		Set("snag_id", snagID).
		Where(sq.Eq{"id": mediaID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate reassign media query for media %s: %w", mediaID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return writeError(err, fmt.Sprintf("failed to reassign media %s", mediaID))
	}
	if tag.RowsAffected() == 0 {
		return types.ErrMediaNotFound
	}

	return nil
}
