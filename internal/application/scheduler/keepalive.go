package scheduler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Pinger keeps the hosting platform from idling the process by fetching a
// URL on a fixed interval. Pings have no business side effects and their
// failures are swallowed at warn level.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
}

func NewPinger(url string, interval time.Duration) *Pinger {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Run pings until ctx is cancelled. A Pinger without a URL does nothing.
func (p *Pinger) Run(ctx context.Context) {
	if p.url == "" {
		log.Info().Msg("keep-alive URL not set, pinger disabled")
		return
	}

	log.Info().Str("url", p.url).Dur("interval", p.interval).Msg("keep-alive started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		log.Warn().Err(err).Msg("keep-alive request build failed")
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("keep-alive ping failed")
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	log.Debug().Int("status", resp.StatusCode).Msg("keep-alive ping")
}
