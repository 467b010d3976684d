package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"assetwatch/internal/application/service"
	"assetwatch/internal/domain/model"
)

func TestCronSpec(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"23:58", "58 23 * * *"},
		{"00:00", "0 0 * * *"},
		{"09:05", "5 9 * * *"},
	}
	for _, c := range cases {
		got, err := cronSpec(c.in)
		if err != nil {
			t.Fatalf("cronSpec(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("cronSpec(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	for _, bad := range []string{"", "23", "25:00", "23:60", "noon"} {
		if _, err := cronSpec(bad); err == nil {
			t.Errorf("cronSpec(%q) should fail", bad)
		}
	}
}

type countingRunner struct {
	mu     sync.Mutex
	runs   int
	inTurn bool
}

func (r *countingRunner) Run(context.Context) (service.RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inTurn {
		return service.RunReport{}, model.ErrRunInProgress
	}
	r.runs++
	return service.RunReport{RunID: "test", Written: 1}, nil
}

func TestFireSnapshotSwallowsSkip(t *testing.T) {
	runner := &countingRunner{inTurn: true}
	s, err := New(Deps{Snapshots: runner, FireTime: "23:58", Location: time.UTC})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// a skipped fire must not panic or count as a run
	s.fireSnapshot()
	if runner.runs != 0 {
		t.Errorf("runs = %d, want 0", runner.runs)
	}

	runner.inTurn = false
	s.fireSnapshot()
	if runner.runs != 1 {
		t.Errorf("runs = %d, want 1", runner.runs)
	}
}

func TestNewRejectsBadFireTime(t *testing.T) {
	_, err := New(Deps{Snapshots: &countingRunner{}, FireTime: "24:99"})
	if err == nil {
		t.Fatal("expected error for invalid fire time")
	}
}

func TestPingerHitsURL(t *testing.T) {
	hits := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	p := NewPinger(srv.URL+"/ping", 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	select {
	case <-hits:
	case <-time.After(2 * time.Second):
		t.Fatal("pinger never hit the URL")
	}
}

func TestPingerFailureSwallowed(t *testing.T) {
	// nothing listens here; ping must fail quietly and keep looping
	p := NewPinger("http://127.0.0.1:1/ping", 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	p.Run(ctx) // returns on ctx cancel without panicking
}

func TestPingerDisabledWithoutURL(t *testing.T) {
	p := NewPinger("", time.Millisecond)
	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pinger without URL should return immediately")
	}
}
