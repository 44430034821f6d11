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

const auditTableName = "snagaudit.audits"

var auditColumns = utils.StructTagValues(types.Audit{})

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// EnsureAudit records the audit unless a row with the same ID exists.
func (r *AuditRepository) EnsureAudit(ctx context.Context, audit *types.Audit) error {
	if audit.Status == "" {
		audit.Status = types.AuditStatusDraft
	}
	audit.CreatedAt = time.Now().UTC()

	query, args, err := psql().
		Insert(auditTableName).
		SetMap(utils.StructToMap(audit)).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert audit query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return writeError(err, "failed to record audit")
}

func (r *AuditRepository) Audit(ctx context.Context, id string) (*types.Audit, error) {
	query, args, err := psql().Select(auditColumns...).From(auditTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audit query: %w", err)
	}

	var audit types.Audit
	err = pgxscan.Get(ctx, r.pool, &audit, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAuditNotFound
		}
		return nil, fmt.Errorf("failed to fetch audit %s: %w", id, err)
	}

	return &audit, nil
}

func (r *AuditRepository) RecentAudits(ctx context.Context, limit uint64) ([]types.Audit, error) {
	query, args, err := psql().Select(auditColumns...).From(auditTableName).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recent audits query: %w", err)
	}

	audits := make([]types.Audit, 0)
	if err := pgxscan.Select(ctx, r.pool, &audits, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch recent audits: %w", err)
	}

	return audits, nil
}
