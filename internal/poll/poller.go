// Package poll implements the periodic-refresh subscription the panel
// uses for the bot roster, now-playing state, and queue. One generic
// implementation, three instances with different intervals and retry
// policies. Each poller is an actor: a goroutine owning all state,
// fed by an inbox of typed messages, torn down through its context.
package poll

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Snapshot is the externally visible state of one poller. The zero
// value means "first fetch still in flight".
type Snapshot[T any] struct {
	Data    T
	HasData bool

	// Loading is true until the first result lands, success or not.
	Loading bool
	// Refetching is true when this snapshot was applied while another
	// poll was still in flight. Overlap is possible because in-flight
	// predecessors are never cancelled.
	Refetching bool
	// Err is true when fetching has failed (after the configured
	// retries) and there is no earlier snapshot to fall back on.
	// Once data exists, later failures keep the last known good
	// snapshot instead.
	Err bool
	// Stale is set when StaleAfter elapses without a fresh result.
	// Zero StaleAfter disables staleness tracking.
	Stale bool
}

type Config[T any] struct {
	Name     string
	Fetch    func(ctx context.Context) (T, error)
	Interval time.Duration
	// Retries is how many extra attempts a single cycle makes before
	// the cycle counts as failed.
	Retries int
	// StaleAfter flags the snapshot stale when no fresh result has
	// arrived for this long. Zero disables the flag.
	StaleAfter time.Duration
	// Equal suppresses update emission when the fresh result matches
	// the displayed one. Nil means every successful poll emits.
	Equal func(a, b T) bool
	Log   *zap.Logger
}

type msg interface{ isPollMsg() }

// fetchResult carries one cycle's outcome back into the loop. seq is
// the cycle's start order: results for cycles older than the newest
// applied one are discarded, so out-of-order completion can never
// roll the display backwards.
type fetchResult[T any] struct {
	seq  uint64
	data T
	err  error
}

type refetchNow struct{}

type getLatest[T any] struct {
	reply chan Snapshot[T]
}

func (fetchResult[T]) isPollMsg() {}
func (refetchNow) isPollMsg()     {}
func (getLatest[T]) isPollMsg()   {}

type Poller[T any] struct {
	cfg    Config[T]
	inbox  chan msg
	update chan Snapshot[T]
	ctx    context.Context
	cancel context.CancelFunc

	// loop-owned state below; never touched outside the loop.
	snap       Snapshot[T]
	nextSeq    uint64
	applied    uint64
	inFlight   int
	staleTimer *time.Timer
}

func New[T any](parent context.Context, cfg Config[T]) *Poller[T] {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	p := &Poller[T]{
		cfg:    cfg,
		inbox:  make(chan msg, 16),
		update: make(chan Snapshot[T], 1),
		ctx:    ctx,
		cancel: cancel,
	}
	p.snap.Loading = true
	go p.loop()
	return p
}

// Updates delivers snapshots, latest wins: if the consumer lags, the
// unread snapshot is replaced rather than queued.
func (p *Poller[T]) Updates() <-chan Snapshot[T] { return p.update }

// RefetchNow forces an immediate cycle, used to reflect an accepted
// command without waiting out the interval. Never blocks.
func (p *Poller[T]) RefetchNow() {
	select {
	case p.inbox <- refetchNow{}:
	case <-p.ctx.Done():
	default:
	}
}

// Latest returns the current snapshot without waiting for an update.
func (p *Poller[T]) Latest() Snapshot[T] {
	reply := make(chan Snapshot[T], 1)
	select {
	case p.inbox <- getLatest[T]{reply: reply}:
	case <-p.ctx.Done():
		return Snapshot[T]{}
	}
	select {
	case s := <-reply:
		return s
	case <-p.ctx.Done():
		return Snapshot[T]{}
	}
}

// Close stops the loop. Results of in-flight fetches that land after
// Close are discarded, not applied.
func (p *Poller[T]) Close() { p.cancel() }

func (p *Poller[T]) loop() {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	// The loop is the only sender, so it closes the channel on the way
	// out; subscribers use the close as their teardown signal.
	defer close(p.update)

	p.startFetch()

	for {
		select {
		case <-p.ctx.Done():
			return

		case <-ticker.C:
			p.startFetch()

		case <-p.staleC():
			p.staleTimer = nil
			if !p.snap.Stale {
				p.snap.Stale = true
				p.emit()
			}

		case m := <-p.inbox:
			switch m := m.(type) {
			case fetchResult[T]:
				p.applyResult(m)
			case refetchNow:
				p.startFetch()
				ticker.Reset(p.cfg.Interval)
			case getLatest[T]:
				m.reply <- p.snap
			}
		}
	}
}

func (p *Poller[T]) staleC() <-chan time.Time {
	if p.staleTimer == nil {
		return nil
	}
	return p.staleTimer.C
}

// startFetch launches one cycle on its own goroutine. Predecessors are
// not cancelled; sequence ordering sorts out whichever finishes last.
func (p *Poller[T]) startFetch() {
	p.nextSeq++
	seq := p.nextSeq
	p.inFlight++

	go func() {
		var (
			data T
			err  error
		)
		for attempt := 0; attempt <= p.cfg.Retries; attempt++ {
			data, err = p.cfg.Fetch(p.ctx)
			if err == nil || p.ctx.Err() != nil {
				break
			}
			p.cfg.Log.Warn("poll attempt failed",
				zap.String("poller", p.cfg.Name),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}
		select {
		case p.inbox <- fetchResult[T]{seq: seq, data: data, err: err}:
		case <-p.ctx.Done():
			// Torn down while we were fetching; drop the result.
		}
	}()
}

func (p *Poller[T]) applyResult(r fetchResult[T]) {
	p.inFlight--
	refetching := p.inFlight > 0 && p.snap.HasData

	if r.seq <= p.applied {
		// A newer cycle already landed; this response is history.
		if p.snap.Refetching != refetching {
			p.snap.Refetching = refetching
			p.emit()
		}
		return
	}
	p.applied = r.seq

	if r.err != nil {
		p.cfg.Log.Warn("poll cycle failed", zap.String("poller", p.cfg.Name), zap.Error(r.err))
		changed := false
		if p.snap.Loading {
			p.snap.Loading = false
			changed = true
		}
		if !p.snap.HasData && !p.snap.Err {
			p.snap.Err = true
			changed = true
		}
		if p.snap.Refetching != refetching {
			p.snap.Refetching = refetching
			changed = true
		}
		if changed {
			p.emit()
		}
		return
	}

	same := p.snap.HasData && p.cfg.Equal != nil && p.cfg.Equal(p.snap.Data, r.data)
	flagsChanged := p.snap.Loading || p.snap.Err || p.snap.Stale || p.snap.Refetching != refetching

	p.snap.Data = r.data
	p.snap.HasData = true
	p.snap.Loading = false
	p.snap.Err = false
	p.snap.Stale = false
	p.snap.Refetching = refetching
	p.resetStaleTimer()

	if !same || flagsChanged {
		p.emit()
	}
}

func (p *Poller[T]) resetStaleTimer() {
	if p.cfg.StaleAfter <= 0 {
		return
	}
	if p.staleTimer != nil {
		if !p.staleTimer.Stop() {
			select {
			case <-p.staleTimer.C:
			default:
			}
		}
		p.staleTimer.Reset(p.cfg.StaleAfter)
		return
	}
	p.staleTimer = time.NewTimer(p.cfg.StaleAfter)
}

// emit publishes the current snapshot, replacing any unconsumed one.
func (p *Poller[T]) emit() {
	select {
	case <-p.update:
	default:
	}
	select {
	case p.update <- p.snap:
	default:
	}
}
