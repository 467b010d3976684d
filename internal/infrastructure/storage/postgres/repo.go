// Package postgres backs the asset store with Postgres for hosted
// deploys where the platform injects DATABASE_URL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"assetwatch/internal/application/port"
	"assetwatch/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL,
  kind TEXT NOT NULL,
  symbol TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE(user_id, kind, symbol)
);
CREATE INDEX IF NOT EXISTS idx_user_assets_user ON user_assets(user_id);

CREATE TABLE IF NOT EXISTS asset_snapshots (
  id BIGSERIAL PRIMARY KEY,
  asset_id BIGINT NOT NULL,
  run_id TEXT NOT NULL,
  symbol TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  previous_close NUMERIC,
  source TEXT NOT NULL,
  taken_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_snapshots_asset ON asset_snapshots(asset_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_run ON asset_snapshots(run_id);
`)
	return err
}

func (r *Repo) AddTrackedAsset(ctx context.Context, a model.TrackedAsset) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO user_assets(user_id, kind, symbol) VALUES($1, $2, $3) RETURNING id`,
		a.UserID, string(a.Kind), a.Symbol).Scan(&id)
	return id, err
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
		`INSERT INTO asset_snapshots(asset_id, run_id, symbol, name, price, previous_close, source, taken_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.AssetID, rec.RunID, rec.Quote.Symbol, rec.Quote.Name,
		rec.Quote.CurrentPrice.String(), prev, rec.Quote.Source, rec.TakenAt)
	return err
}

// SnapshotsByRun mirrors the sqlite accessor for the chart side.
func (r *Repo) SnapshotsByRun(ctx context.Context, runID string) ([]model.SnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT asset_id, run_id, symbol, name, price::text, previous_close::text, source, taken_at
		 FROM asset_snapshots WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.SnapshotRecord
	for rows.Next() {
		var rec model.SnapshotRecord
		var price string
		var prev sql.NullString
		var takenAt time.Time
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
		rec.TakenAt = takenAt
		rec.Quote.FetchedAt = takenAt
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

var _ port.AssetStore = (*Repo)(nil)
