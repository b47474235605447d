package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"batchdesk/internal/core"
	"batchdesk/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is a row store kept in a local SQLite file. Rows keep their
// table order through the position column; the store version lives in store_meta.
type SQLiteRepository struct {
	db *sql.DB
}

var _ sheets.RowStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps the version check and the rewrite serialised.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements sheets.RowStore
func (r *SQLiteRepository) Load(ctx context.Context) (sheets.Table, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return sheets.Table{}, fmt.Errorf("begin read: %w: %w", core.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	version, err := currentVersion(ctx, tx)
	if err != nil {
		return sheets.Table{}, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, batch_name, amount, category, date, class_grade FROM batch_rows ORDER BY position`)
	if err != nil {
		return sheets.Table{}, fmt.Errorf("query rows: %w: %w", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	t := sheets.Table{
		Columns: append([]string(nil), sheets.DefaultColumns...),
		Version: strconv.FormatInt(version, 10),
	}
	for rows.Next() {
		var id, name, amount, category, date, class string
		if err := rows.Scan(&id, &name, &amount, &category, &date, &class); err != nil {
			return sheets.Table{}, fmt.Errorf("scan row: %w: %w", core.ErrStoreUnavailable, err)
		}
		rec := sheets.Record{
			sheets.ColID:         id,
			sheets.ColBatchName:  name,
			sheets.ColAmount:     amount,
			sheets.ColCategory:   category,
			sheets.ColDate:       date,
			sheets.ColClassGrade: class,
		}
		if rec.IsEmpty() {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return sheets.Table{}, fmt.Errorf("iterate rows: %w: %w", core.ErrStoreUnavailable, err)
	}
	return t, nil
}

// Replace implements sheets.RowStore. The whole rewrite runs in one transaction.
func (r *SQLiteRepository) Replace(ctx context.Context, t sheets.Table) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w: %w", core.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	version, err := currentVersion(ctx, tx)
	if err != nil {
		return err
	}
	if t.Version != "" && t.Version != strconv.FormatInt(version, 10) {
		return fmt.Errorf("sqlite store at version %d, write based on %s: %w", version, t.Version, core.ErrConcurrentModification)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM batch_rows`); err != nil {
		return fmt.Errorf("clear rows: %w: %w", core.ErrStoreUnavailable, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO batch_rows (position, id, batch_name, amount, category, date, class_grade) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w: %w", core.ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	pos := 0
	for _, rec := range t.Rows {
		if rec.IsEmpty() {
			continue
		}
		pos++
		if _, err := stmt.ExecContext(ctx, pos,
			rec[sheets.ColID], rec[sheets.ColBatchName], rec[sheets.ColAmount],
			rec[sheets.ColCategory], rec[sheets.ColDate], rec[sheets.ColClassGrade]); err != nil {
			return fmt.Errorf("insert row %d: %w: %w", pos, core.ErrStoreUnavailable, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE store_meta SET version = version + 1 WHERE singleton = 1`); err != nil {
		return fmt.Errorf("bump version: %w: %w", core.ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w: %w", core.ErrStoreUnavailable, err)
	}

	slog.DebugContext(ctx, "SQLite table replaced", "rows", pos, "version", version+1)
	return nil
}

// Version returns the current store version without loading rows.
func (r *SQLiteRepository) Version(ctx context.Context) (int64, error) {
	return currentVersion(ctx, r.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func currentVersion(ctx context.Context, q queryer) (int64, error) {
	var version int64
	err := q.QueryRowContext(ctx, `SELECT version FROM store_meta WHERE singleton = 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("store_meta missing: %w", core.ErrStoreUnavailable)
	}
	if err != nil {
		return 0, fmt.Errorf("read version: %w: %w", core.ErrStoreUnavailable, err)
	}
	return version, nil
}
