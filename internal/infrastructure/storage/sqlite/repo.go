// Package sqlite backs the asset store with a local SQLite file, the
// default for single-machine deploys.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"assetwatch/internal/application/port"
	"assetwatch/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS user_assets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  kind TEXT NOT NULL,
  symbol TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE(user_id, kind, symbol)
);
CREATE INDEX IF NOT EXISTS idx_user_assets_user ON user_assets(user_id);

CREATE TABLE IF NOT EXISTS asset_snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  asset_id INTEGER NOT NULL,
  run_id TEXT NOT NULL,
  symbol TEXT NOT NULL,
  name TEXT NOT NULL,
  price TEXT NOT NULL,
  previous_close TEXT,
  source TEXT NOT NULL,
  taken_at INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_asset ON asset_snapshots(asset_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_run ON asset_snapshots(run_id);
`)
	return err
}

// AddTrackedAsset registers one holding. The CRUD layer owns asset
// management; this exists for seeding and tests.
func (r *Repo) AddTrackedAsset(ctx context.Context, a model.TrackedAsset) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO user_assets(user_id, kind, symbol, created_at)
		 VALUES(?, ?, ?, strftime('%s','now'))`,
		a.UserID, string(a.Kind), a.Symbol)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) ListTrackedAssets(ctx context.Context) ([]model.TrackedAsset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, kind, symbol FROM user_assets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []model.TrackedAsset
	for rows.Next() {
		var a model.TrackedAsset
		var kind string
		if err := rows.Scan(&a.ID, &a.UserID, &kind, &a.Symbol); err != nil {
			return nil, err
		}
		a.Kind = model.AssetKind(kind)
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *Repo) WriteSnapshot(ctx context.Context, rec model.SnapshotRecord) error {
	var prev sql.NullString
	if rec.Quote.PreviousClose != nil {
		prev = sql.NullString{String: rec.Quote.PreviousClose.String(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO asset_snapshots(asset_id, run_id, symbol, name, price, previous_close, source, taken_at, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, strftime('%s','now'))`,
		rec.AssetID, rec.RunID, rec.Quote.Symbol, rec.Quote.Name,
		rec.Quote.CurrentPrice.String(), prev, rec.Quote.Source, rec.TakenAt.Unix())
	return err
}

// SnapshotsByRun returns the records of one run, oldest first. Used by
// the history/chart side of the app.
func (r *Repo) SnapshotsByRun(ctx context.Context, runID string) ([]model.SnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT asset_id, run_id, symbol, name, price, previous_close, source, taken_at
		 FROM asset_snapshots WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]model.SnapshotRecord, error) {
	var recs []model.SnapshotRecord
	for rows.Next() {
		var rec model.SnapshotRecord
		var price string
		var prev sql.NullString
		var takenAt int64
		if err := rows.Scan(&rec.AssetID, &rec.RunID, &rec.Quote.Symbol, &rec.Quote.Name,
			&price, &prev, &rec.Quote.Source, &takenAt); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		rec.Quote.CurrentPrice = d
		if prev.Valid {
			p, err := decimal.NewFromString(prev.String)
			if err != nil {
				return nil, err
			}
			rec.Quote.PreviousClose = &p
		}
		rec.TakenAt = time.Unix(takenAt, 0)
		rec.Quote.FetchedAt = rec.TakenAt
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

var _ port.AssetStore = (*Repo)(nil)
