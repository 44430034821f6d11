package store

import (
	"errors"
	"fmt"

	"snagaudit/internal/utils"
	"snagaudit/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateNotNullViolation    = "23502"
	sqlStateForeignKeyViolation = "23503"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// writeError wraps err with msg, mapping integrity violations to types.ErrConstraint.
func writeError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateNotNullViolation, sqlStateForeignKeyViolation:
			return fmt.Errorf("%s: %s: %w", msg, pgErr.Message, types.ErrConstraint)
		}
	}

	return utils.ErrorWrapOrNil(err, msg)
}
