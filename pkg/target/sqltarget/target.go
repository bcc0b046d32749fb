// Package sqltarget writes to targets reached through database/sql:
// SQLite files and SQL Server.
package sqltarget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/logging"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/refindex"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/retry"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/target"
)

// SQL Server error number for a conflicting FOREIGN KEY constraint.
const mssqlForeignKeyConflict = 547

type Target struct {
	db            *sql.DB
	dialect       target.Dialect
	identityTable string
	statements    map[string]*sql.Stmt
	logger        *zap.Logger
}

var _ target.Target = (*Target)(nil)

func init() {
	target.Register(target.Registration{
		Driver:      "sqlite",
		DisplayName: "SQLite",
		Open: func(ctx context.Context, opts target.Options, logger *zap.Logger) (target.Target, error) {
			return OpenSQLite(ctx, opts, logger)
		},
	})
	target.Register(target.Registration{
		Driver:      "sqlserver",
		DisplayName: "Microsoft SQL Server",
		Open: func(ctx context.Context, opts target.Options, logger *zap.Logger) (target.Target, error) {
			return OpenSQLServer(ctx, opts, logger)
		},
	})
}

// OpenSQLite opens a SQLite database file with foreign keys enforced.
// opts.URL is the file path.
func OpenSQLite(ctx context.Context, opts target.Options, logger *zap.Logger) (*Target, error) {
	sep := "?"
	if strings.Contains(opts.URL, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", opts.URL+sep+"_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps the pragma and serializes writers.
	db.SetMaxOpenConns(1)

	return connect(ctx, db, target.SQLite, opts, logger.Named("sqlite"))
}

// OpenSQLServer opens a SQL Server database. opts.URL is a sqlserver:// URL.
func OpenSQLServer(ctx context.Context, opts target.Options, logger *zap.Logger) (*Target, error) {
	db, err := sql.Open("sqlserver", opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlserver database: %s", logging.SanitizeError(err))
	}
	if opts.MaxConnections > 0 {
		db.SetMaxOpenConns(int(opts.MaxConnections))
	}

	return connect(ctx, db, target.SQLServer, opts, logger.Named("sqlserver"))
}

func connect(ctx context.Context, db *sql.DB, dialect target.Dialect, opts target.Options, logger *zap.Logger) (*Target, error) {
	cfg := retry.DefaultConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn("Target not reachable, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("error", logging.SanitizeError(err)))
	}

	_, err := retry.DoIfRetryable(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %s", logging.SanitizeError(err))
	}

	logger.Info("Connected to target", zap.String("url", logging.SanitizeConnectionString(opts.URL)))
	return New(db, dialect, opts.IdentityTable, logger), nil
}

// New wraps an open database. The Target owns db from then on.
func New(db *sql.DB, dialect target.Dialect, identityTable string, logger *zap.Logger) *Target {
	return &Target{
		db:            db,
		dialect:       dialect,
		identityTable: identityTable,
		statements:    make(map[string]*sql.Stmt),
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
		stmt, err = t.db.PrepareContext(ctx, t.dialect.UpsertSQL(row.TableName(), columns))
		if err != nil {
			return fmt.Errorf("failed to prepare upsert for %s: %w", row.TableName(), err)
		}
		t.statements[row.TableName()] = stmt
	}

	if _, err := stmt.ExecContext(ctx, values...); err != nil {
		return t.classify(err)
	}
	return nil
}

func (t *Target) Identities(ctx context.Context) ([]refindex.Identity, error) {
	rows, err := t.db.QueryContext(ctx, t.dialect.IdentitiesSQL(t.identityTable))
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var out []refindex.Identity
	for rows.Next() {
		var ident refindex.Identity
		if err := rows.Scan(&ident.ID, &ident.Email); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		out = append(out, ident)
	}
	return out, rows.Err()
}

func (t *Target) Categories(ctx context.Context) ([]refindex.CategoryRef, error) {
	rows, err := t.db.QueryContext(ctx, t.dialect.CategoriesSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []refindex.CategoryRef
	for rows.Next() {
		var c refindex.CategoryRef
		if err := rows.Scan(&c.ID, &c.StoreID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t *Target) Stores(ctx context.Context) ([]refindex.StoreRef, error) {
	rows, err := t.db.QueryContext(ctx, t.dialect.StoresSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var out []refindex.StoreRef
	for rows.Next() {
		var st refindex.StoreRef
		if err := rows.Scan(&st.ID, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// DB exposes the underlying handle for callers that need raw queries.
func (t *Target) DB() *sql.DB {
	return t.db
}

func (t *Target) Close() error {
	for table, stmt := range t.statements {
		if err := stmt.Close(); err != nil {
			t.logger.Warn("Failed to close statement", zap.String("table", table), zap.Error(err))
		}
	}
	return t.db.Close()
}

func (t *Target) classify(err error) error {
	switch t.dialect {
	case target.SQLite:
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return target.ForeignKeyError(err)
		}
	case target.SQLServer:
		var mssqlErr mssql.Error
		if errors.As(err, &mssqlErr) && mssqlErr.Number == mssqlForeignKeyConflict {
			return target.ForeignKeyError(err)
		}
	}
	return err
}
