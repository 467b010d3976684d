package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"assetwatch/internal/application/port"
	"assetwatch/internal/domain/model"
)

// PriceLookup is the slice of PriceService the snapshot run needs.
type PriceLookup interface {
	GetPrice(ctx context.Context, q model.PriceQuery) (model.Quote, error)
}

// SnapshotService captures one portfolio-wide set of price records and
// hands each to the storage collaborator. A run never aborts because one
// asset failed; failed assets are logged and skipped.
type SnapshotService struct {
	prices  PriceLookup
	store   port.AssetStore
	workers int
	timeout time.Duration

	mu sync.Mutex // held for the duration of a run, TryLock gives skip-if-running
}

type SnapshotServiceDeps struct {
	Prices  PriceLookup
	Store   port.AssetStore
	Workers int           // bounded fetch parallelism
	Timeout time.Duration // whole-run deadline
}

func NewSnapshotService(deps SnapshotServiceDeps) *SnapshotService {
	if deps.Workers <= 0 {
		deps.Workers = 6
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 4 * time.Minute
	}
	return &SnapshotService{
		prices:  deps.Prices,
		store:   deps.Store,
		workers: deps.Workers,
		timeout: deps.Timeout,
	}
}

// RunReport summarizes one snapshot run.
type RunReport struct {
	RunID   string
	Assets  int
	Written int
	Failed  int
	Elapsed time.Duration
}

// Run executes one snapshot. A second call while a run is in flight
// returns ErrRunInProgress without side effects; late completions never
// stack runs. Assets still pending at the run deadline count as failed.
func (s *SnapshotService) Run(ctx context.Context) (RunReport, error) {
	if !s.mu.TryLock() {
		return RunReport{}, model.ErrRunInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()
	runID := start.UTC().Format("20060102T150405Z")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	assets, err := s.store.ListTrackedAssets(ctx)
	if err != nil {
		return RunReport{RunID: runID}, fmt.Errorf("list tracked assets: %w", err)
	}

	fetchable := assets[:0:0]
	for _, a := range assets {
		if a.Kind.Fetchable() {
			fetchable = append(fetchable, a)
		}
	}

	log.Info().
		Str("run_id", runID).
		Int("assets", len(fetchable)).
		Int("workers", s.workers).
		Msg("snapshot run started")

	var written, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for _, a := range fetchable {
		g.Go(func() error {
			quote, err := s.prices.GetPrice(ctx, model.PriceQuery{Kind: a.Kind, Symbol: a.Symbol})
			if err != nil {
				failed.Add(1)
				log.Warn().Err(err).
					Str("run_id", runID).
					Int64("asset_id", a.ID).
					Str("symbol", a.Symbol).
					Msg("asset skipped in snapshot")
				return nil
			}

			rec := model.SnapshotRecord{
				AssetID: a.ID,
				Quote:   quote,
				TakenAt: time.Now(),
				RunID:   runID,
			}
			if err := s.store.WriteSnapshot(ctx, rec); err != nil {
				failed.Add(1)
				log.Error().Err(err).
					Str("run_id", runID).
					Int64("asset_id", a.ID).
					Msg("snapshot write failed")
				return nil
			}
			written.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report := RunReport{
		RunID:   runID,
		Assets:  len(fetchable),
		Written: int(written.Load()),
		Failed:  int(failed.Load()),
		Elapsed: time.Since(start),
	}
	log.Info().
		Str("run_id", report.RunID).
		Int("written", report.Written).
		Int("failed", report.Failed).
		Dur("elapsed", report.Elapsed).
		Msg("snapshot run finished")
	return report, nil
}
