package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snagaudit/internal/utils"
	"snagaudit/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const snagTableName = "snagaudit.snags"

var snagColumns = utils.StructTagValues(types.Snag{})

type SnagRepository struct {
	pool *pgxpool.Pool
}

func NewSnagRepository(pool *pgxpool.Pool) *SnagRepository {
	return &SnagRepository{pool: pool}
}

// CreateSnag inserts snag, filling in its ID, status and timestamps when unset.
func (r *SnagRepository) CreateSnag(ctx context.Context, snag *types.Snag) error {
	if strings.TrimSpace(snag.Description) == "" || strings.TrimSpace(snag.ProjectName) == "" || snag.AuditID == "" {
		return fmt.Errorf("snag requires audit_id, snag_description and project_name: %w", types.ErrConstraint)
	}

	now := time.Now().UTC()
	if snag.ID == "" {
		snag.ID = utils.NanoID()
	}
	if snag.Status == "" {
		snag.Status = types.SnagStatusNew
	}
	snag.CreatedAt = now
	snag.UpdatedAt = now

	query, args, err := psql().Insert(snagTableName).SetMap(utils.StructToMap(snag)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert snag query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return writeError(err, "failed to create snag")
}

func (r *SnagRepository) Snag(ctx context.Context, id string) (*types.Snag, error) {
	query, args, err := psql().Select(snagColumns...).From(snagTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate snag query: %w", err)
	}

	var snag = new(types.Snag)
	err = pgxscan.Get(ctx, r.pool, snag, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSnagNotFound
		}
		return nil, fmt.Errorf("failed to fetch snag %s: %w", id, err)
	}

	return snag, nil
}

// UpdateSnag applies the whitelisted fields of update and returns the stored row.
func (r *SnagRepository) UpdateSnag(ctx context.Context, id string, update types.SnagUpdate) (*types.Snag, error) {
	query, args, err := updateSnagQuery(id, update, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var snag = new(types.Snag)
	err = pgxscan.Get(ctx, r.pool, snag, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSnagNotFound
		}
		return nil, writeError(err, fmt.Sprintf("failed to update snag %s", id))
	}

	return snag, nil
}

func updateSnagQuery(id string, update types.SnagUpdate, now time.Time) (string, []any, error) {
	columns := update.Columns()
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("no valid updates: %w", types.ErrValidation)
	}
	columns["updated_at"] = now

	query, args, err := psql().Update(snagTableName).
		SetMap(columns).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(snagColumns, ", ")).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate update snag query for snag %s: %w", id, err)
	}

	return query, args, nil
}

// Snags lists snags matching every non-empty filter.
func (r *SnagRepository) Snags(ctx context.Context, filters types.SnagFilters) ([]types.Snag, error) {
	query, args, err := snagsQuery(filters).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate snags query: %w", err)
	}

	snags := make([]types.Snag, 0)
	err = pgxscan.Select(ctx, r.pool, &snags, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snags: %w", err)
	}

	return snags, nil
}

// snagsQuery orders by the raw deadline text; "2024-01-05" and "ASAP" sort as strings.
func snagsQuery(filters types.SnagFilters) sq.SelectBuilder {
	builder := psql().Select(snagColumns...).From(snagTableName)

	if filters.Project != "" {
		builder = builder.Where(sq.Eq{"project_name": filters.Project})
	}
	if filters.Status != "" {
		builder = builder.Where(sq.Eq{"status": filters.Status})
	}
	if filters.Trade != "" {
		builder = builder.Where(sq.Eq{"recommended_trade": filters.Trade})
	}

	return builder.OrderBy("deadline ASC NULLS FIRST", "created_at DESC")
}

func (r *SnagRepository) SnagsByAudit(ctx context.Context, auditID string) ([]types.Snag, error) {
	query, args, err := psql().Select(snagColumns...).From(snagTableName).
		Where(sq.Eq{"audit_id": auditID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audit snags query: %w", err)
	}

	snags := make([]types.Snag, 0)
	err = pgxscan.Select(ctx, r.pool, &snags, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snags for audit %s: %w", auditID, err)
	}

	return snags, nil
}
