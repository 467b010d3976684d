// Package scheduler drives the two background timers: the daily snapshot
// at a fixed wall-clock time and the keep-alive ping loop. It is a
// process-scoped component with an explicit Start/Stop lifecycle,
// constructed once at startup with its dependencies.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"assetwatch/internal/application/service"
	"assetwatch/internal/domain/model"
)

// SnapshotRunner is the slice of SnapshotService the scheduler invokes.
type SnapshotRunner interface {
	Run(ctx context.Context) (service.RunReport, error)
}

type Scheduler struct {
	cron      *cron.Cron
	snapshots SnapshotRunner
	pinger    *Pinger

	cancel context.CancelFunc
}

type Deps struct {
	Snapshots SnapshotRunner
	Pinger    *Pinger // nil disables keep-alive

	// FireTime is "HH:MM" local to Location, e.g. "23:58" in Asia/Tokyo.
	FireTime string
	Location *time.Location
}

func New(deps Deps) (*Scheduler, error) {
	if deps.Snapshots == nil {
		return nil, errors.New("scheduler: snapshot runner is required")
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	spec, err := cronSpec(deps.FireTime)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		snapshots: deps.Snapshots,
		pinger:    deps.Pinger,
	}
	if _, err := s.cron.AddFunc(spec, s.fireSnapshot); err != nil {
		return nil, fmt.Errorf("schedule snapshot job: %w", err)
	}

	log.Info().
		Str("fire_time", deps.FireTime).
		Str("timezone", loc.String()).
		Msg("daily snapshot scheduled")
	return s, nil
}

// cronSpec turns "HH:MM" into a daily cron expression.
func cronSpec(fireTime string) (string, error) {
	t, err := time.Parse("15:04", fireTime)
	if err != nil {
		return "", fmt.Errorf("invalid fire time %q (want HH:MM): %w", fireTime, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

func (s *Scheduler) fireSnapshot() {
	report, err := s.snapshots.Run(context.Background())
	if errors.Is(err, model.ErrRunInProgress) {
		// a late-finishing previous run must not stack a second one
		log.Warn().Msg("previous snapshot run still in progress, skipping this fire")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("scheduled snapshot run failed")
		return
	}
	log.Info().
		Str("run_id", report.RunID).
		Int("written", report.Written).
		Int("failed", report.Failed).
		Msg("scheduled snapshot complete")
}

// Start launches both timers. Safe to call once.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.cron.Start()
	if s.pinger != nil {
		go s.pinger.Run(ctx)
	}
}

// Stop halts the cron and the keep-alive loop, waiting for an in-flight
// job to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
}
