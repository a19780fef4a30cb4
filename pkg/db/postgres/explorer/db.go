package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/postgres"
	"go.uber.org/zap"
)

// DB is the PostgreSQL implementation of db.ExplorerStore.
type DB struct {
	*postgres.Client
}

var _ db.ExplorerStore = (*DB)(nil)

// New connects to the explorer database.
func New(ctx context.Context, logger *zap.Logger, cfg postgres.PoolConfig) (*DB, error) {
	client, err := postgres.New(ctx, logger.With(zap.String("component", "explorer_store")), cfg)
	if err != nil {
		return nil, err
	}
	return &DB{Client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *postgres.Client) *DB {
	return &DB{Client: client}
}

// Close terminates the underlying PostgreSQL connection
func (d *DB) Close() error {
	d.Client.Close()
	return nil
}

// validator is implemented by every explorer row model.
type validator interface {
	Validate() error
}

// selectRows runs query and maps each row by column name into T, validating every row.
func selectRows[T validator](ctx context.Context, q postgres.Querier, what, query string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", what, err)
	}
	for i := range out {
		if vErr := out[i].Validate(); vErr != nil {
			return nil, fmt.Errorf("%w: %w", db.ErrMalformedRow, vErr)
		}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// selectOne is selectRows for single-row lookups. No match yields db.ErrNotFound.
func selectOne[T validator](ctx context.Context, q postgres.Querier, what, query string, args ...any) (*T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan %s: %w", what, err)
	}
	if vErr := row.Validate(); vErr != nil {
		return nil, fmt.Errorf("%w: %w", db.ErrMalformedRow, vErr)
	}
	return &row, nil
}

// where accumulates optional equality predicates with positional parameters.
type where struct {
	clauses []string
	args    []any
}

func (w *where) eq(column string, value string) {
	if value == "" {
		return
	}
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

// next binds v and returns its placeholder.
func (w *where) next(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
