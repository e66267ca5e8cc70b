package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot[T any](t *testing.T, p *Poller[T], within time.Duration) Snapshot[T] {
	t.Helper()
	select {
	case s := <-p.Updates():
		return s
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot[T]{} // unreachable
	}
}

// helper: wait for a snapshot matching pred, skipping intermediates
func waitFor[T any](t *testing.T, p *Poller[T], within time.Duration, pred func(Snapshot[T]) bool) Snapshot[T] {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case s := <-p.Updates():
			if pred(s) {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for matching snapshot")
		}
	}
}

func TestFirstFetchDeliversSnapshot(t *testing.T) {
	p := New(context.Background(), Config[int]{
		Name:     "test",
		Interval: time.Hour, // only the immediate first cycle
		Fetch:    func(ctx context.Context) (int, error) { return 42, nil },
	})
	defer p.Close()

	s := recvSnapshot(t, p, time.Second)
	if !s.HasData || s.Data != 42 {
		t.Fatalf("want data 42, got %+v", s)
	}
	if s.Loading || s.Err || s.Stale {
		t.Fatalf("unexpected flags: %+v", s)
	}
}

func TestOutOfOrderCompletionDiscarded(t *testing.T) {
	// Cycle 1 is slow and finishes after cycle 2. The display must
	// show cycle 2's result and never roll back to cycle 1's.
	var calls atomic.Int64
	p := New(context.Background(), Config[string]{
		Name:     "test",
		Interval: 40 * time.Millisecond,
		Fetch: func(ctx context.Context) (string, error) {
			if calls.Add(1) == 1 {
				time.Sleep(200 * time.Millisecond)
				return "old", nil
			}
			return "new", nil
		},
	})
	defer p.Close()

	waitFor(t, p, time.Second, func(s Snapshot[string]) bool {
		return s.HasData && s.Data == "new"
	})

	// Give the slow first cycle time to land, then check it was dropped.
	time.Sleep(250 * time.Millisecond)
	if got := p.Latest(); got.Data != "new" {
		t.Fatalf("stale result was applied: got %q, want %q", got.Data, "new")
	}
}

func TestRetriesThenError(t *testing.T) {
	var calls atomic.Int64
	p := New(context.Background(), Config[int]{
		Name:     "test",
		Interval: time.Hour,
		Retries:  3,
		Fetch: func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 0, errors.New("transient")
		},
	})
	defer p.Close()

	s := waitFor(t, p, time.Second, func(s Snapshot[int]) bool { return s.Err })
	if s.HasData || s.Loading {
		t.Fatalf("error snapshot should carry no data: %+v", s)
	}
	if got := calls.Load(); got != 4 {
		t.Fatalf("want 1 attempt + 3 retries = 4 calls, got %d", got)
	}
}

func TestFailureKeepsLastKnownGood(t *testing.T) {
	var calls atomic.Int64
	p := New(context.Background(), Config[int]{
		Name:     "test",
		Interval: 30 * time.Millisecond,
		Fetch: func(ctx context.Context) (int, error) {
			if calls.Add(1) == 1 {
				return 7, nil
			}
			return 0, errors.New("down")
		},
	})
	defer p.Close()

	waitFor(t, p, time.Second, func(s Snapshot[int]) bool { return s.HasData })

	// Let several failing cycles run.
	time.Sleep(150 * time.Millisecond)
	s := p.Latest()
	if !s.HasData || s.Data != 7 {
		t.Fatalf("last known good lost: %+v", s)
	}
	if s.Err {
		t.Fatalf("failures after a good snapshot must not flip Err: %+v", s)
	}
}

func TestStaleFlag(t *testing.T) {
	p := New(context.Background(), Config[int]{
		Name:       "test",
		Interval:   time.Hour,
		StaleAfter: 50 * time.Millisecond,
		Fetch:      func(ctx context.Context) (int, error) { return 1, nil },
	})
	defer p.Close()

	waitFor(t, p, time.Second, func(s Snapshot[int]) bool { return s.HasData })
	s := waitFor(t, p, time.Second, func(s Snapshot[int]) bool { return s.Stale })
	if !s.HasData || s.Data != 1 {
		t.Fatalf("stale snapshot must keep its data: %+v", s)
	}
}

func TestRefetchNow(t *testing.T) {
	var calls atomic.Int64
	p := New(context.Background(), Config[int]{
		Name:     "test",
		Interval: time.Hour,
		Fetch: func(ctx context.Context) (int, error) {
			return int(calls.Add(1)), nil
		},
	})
	defer p.Close()

	waitFor(t, p, time.Second, func(s Snapshot[int]) bool { return s.Data == 1 })
	p.RefetchNow()
	waitFor(t, p, time.Second, func(s Snapshot[int]) bool { return s.Data == 2 })
}

func TestEqualSuppressesRedundantUpdates(t *testing.T) {
	p := New(context.Background(), Config[int]{
		Name:     "test",
		Interval: 20 * time.Millisecond,
		Fetch:    func(ctx context.Context) (int, error) { return 5, nil },
		Equal:    func(a, b int) bool { return a == b },
	})
	defer p.Close()

	waitFor(t, p, time.Second, func(s Snapshot[int]) bool { return s.HasData })

	// Identical results keep arriving; no further updates should be
	// emitted once the flags have settled.
	select {
	case s := <-p.Updates():
		t.Fatalf("unexpected update for unchanged data: %+v", s)
	case <-time.After(100 * time.Millisecond):
		// good: quiet
	}
}

func TestCloseDiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	p := New(context.Background(), Config[int]{
		Name:     "test",
		Interval: time.Hour,
		Fetch: func(ctx context.Context) (int, error) {
			<-release
			return 99, nil
		},
	})

	p.Close()
	close(release)

	select {
	case s := <-p.Updates():
		if s.HasData {
			t.Fatalf("result applied after close: %+v", s)
		}
	case <-time.After(100 * time.Millisecond):
		// good: nothing delivered
	}
}
