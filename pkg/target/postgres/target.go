// Package postgres writes to a Postgres (or Supabase) target through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/database"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/refindex"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/target"
)

// SQLSTATE foreign_key_violation.
const foreignKeyViolation = "23503"

// querier is the subset of pgxpool.Pool the target uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Target struct {
	db            querier
	closer        func()
	identityTable string
	statements    map[string]string
	logger        *zap.Logger
}

var _ target.Target = (*Target)(nil)

func init() {
	target.Register(target.Registration{
		Driver:      "postgres",
		DisplayName: "PostgreSQL / Supabase",
		Open: func(ctx context.Context, opts target.Options, logger *zap.Logger) (target.Target, error) {
			return Open(ctx, opts, logger)
		},
	})
}

// Open connects a pool that assumes opts.Role on every connection.
func Open(ctx context.Context, opts target.Options, logger *zap.Logger) (*Target, error) {
	logger = logger.Named("postgres")

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            opts.URL,
		Role:           opts.Role,
		MaxConnections: opts.MaxConnections,
	}, logger)
	if err != nil {
		return nil, err
	}

	t := New(db.Pool, opts.IdentityTable, logger)
	t.closer = db.Close
	return t, nil
}

// New wraps an existing pool or connection.
func New(db querier, identityTable string, logger *zap.Logger) *Target {
	return &Target{
		db:            db,
		identityTable: identityTable,
		statements:    make(map[string]string),
		logger:        logger,
	}
}

func (t *Target) Upsert(ctx context.Context, row models.Row) error {
	columns, values, err := models.Columns(row)
	if err != nil {
		return err
	}

	stmt, ok := t.statements[row.TableName()]
	if !ok {
		stmt = target.Postgres.UpsertSQL(row.TableName(), columns)
		t.statements[row.TableName()] = stmt
	}

	if _, err := t.db.Exec(ctx, stmt, values...); err != nil {
		return classify(err)
	}
	return nil
}

func (t *Target) Identities(ctx context.Context) ([]refindex.Identity, error) {
	rows, err := t.db.Query(ctx, target.Postgres.IdentitiesSQL(t.identityTable))
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (refindex.Identity, error) {
		var ident refindex.Identity
		err := row.Scan(&ident.ID, &ident.Email)
		return ident, err
	})
}

func (t *Target) Categories(ctx context.Context) ([]refindex.CategoryRef, error) {
	rows, err := t.db.Query(ctx, target.Postgres.CategoriesSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (refindex.CategoryRef, error) {
		var c refindex.CategoryRef
		err := row.Scan(&c.ID, &c.StoreID, &c.Name)
		return c, err
	})
}

func (t *Target) Stores(ctx context.Context) ([]refindex.StoreRef, error) {
	rows, err := t.db.Query(ctx, target.Postgres.StoresSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (refindex.StoreRef, error) {
		var st refindex.StoreRef
		err := row.Scan(&st.ID, &st.CreatedAt)
		return st, err
	})
}

func (t *Target) Close() error {
	if t.closer != nil {
		t.closer()
	}
	return nil
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return target.ForeignKeyError(err)
	}
	return err
}
