// Package movement captures held directional input and streams it to
// the bot on a fixed cadence. The protocol is level-triggered: while
// engaged, the whole key vector is resent every tick as long as any
// key is held, so a lost packet is repaired by the next tick and no
// explicit stop command is needed — an idle vector is simply never
// transmitted.
package movement

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/robloxbot-cc/botpanel/internal/api"
)

// DefaultCadence matches the original panel: ten vector sends per
// second while movement is active.
const DefaultCadence = 100 * time.Millisecond

// Key identifies one component of the movement vector.
type Key int

const (
	KeyForward Key = iota // w
	KeyLeft               // a
	KeyBack               // s
	KeyRight              // d
	KeyJump               // space
)

// SendFunc delivers one vector to the backend. Fire and forget: the
// streamer never waits on it and ignores its outcome.
type SendFunc func(ctx context.Context, keys api.MovementKeys)

type Config struct {
	Send SendFunc
	// Cadence is the emission interval; zero means DefaultCadence.
	Cadence time.Duration
	Log     *zap.Logger
}

// State is a read-only view of the streamer for the UI and tests.
type State struct {
	Engaged bool
	Keys    api.MovementKeys
}

type msg interface{ isMoveMsg() }

type press struct{ key Key }
type release struct{ key Key }
type engage struct{}
type disengage struct{}
type getState struct{ reply chan State }

func (press) isMoveMsg()     {}
func (release) isMoveMsg()   {}
func (engage) isMoveMsg()    {}
func (disengage) isMoveMsg() {}
func (getState) isMoveMsg()  {}

// Streamer is an actor owning the vector, the engaged flag, and the
// emission timer. Keyboard and on-screen button input both funnel
// through the same Press/Release primitives, so "pointer left while
// pressed" is just another Release and can never leave a direction
// stuck on.
type Streamer struct {
	cfg    Config
	inbox  chan msg
	ctx    context.Context
	cancel context.CancelFunc

	// loop-owned state
	engaged bool
	keys    api.MovementKeys
	ticker  *time.Ticker
}

func NewStreamer(parent context.Context, cfg Config) *Streamer {
	if cfg.Cadence <= 0 {
		cfg.Cadence = DefaultCadence
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	s := &Streamer{
		cfg:    cfg,
		inbox:  make(chan msg, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	go s.loop()
	return s
}

func (s *Streamer) Press(k Key)   { s.send(press{key: k}) }
func (s *Streamer) Release(k Key) { s.send(release{key: k}) }

// Engage turns movement capture on and starts the emission timer.
func (s *Streamer) Engage() { s.send(engage{}) }

// Disengage is the safety reset: the vector is zeroed immediately,
// regardless of any physically held input, and the timer stops.
func (s *Streamer) Disengage() { s.send(disengage{}) }

// State reports the current engaged flag and vector.
func (s *Streamer) State() State {
	reply := make(chan State, 1)
	select {
	case s.inbox <- getState{reply: reply}:
	case <-s.ctx.Done():
		return State{}
	}
	select {
	case st := <-reply:
		return st
	case <-s.ctx.Done():
		return State{}
	}
}

// Close tears down the timer and the loop. Equivalent to panel close:
// nothing may keep emitting afterwards.
func (s *Streamer) Close() { s.cancel() }

func (s *Streamer) send(m msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

func (s *Streamer) loop() {
	defer func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
	}()

	for {
		var tickC <-chan time.Time
		if s.ticker != nil {
			tickC = s.ticker.C
		}

		select {
		case <-s.ctx.Done():
			return

		case <-tickC:
			// Idle vector is never transmitted.
			if s.engaged && s.keys.Any() {
				keys := s.keys
				go s.cfg.Send(s.ctx, keys)
			}

		case m := <-s.inbox:
			switch m := m.(type) {
			case press:
				if s.engaged {
					s.setKey(m.key, true)
				}
			case release:
				if s.engaged {
					s.setKey(m.key, false)
				}
			case engage:
				if !s.engaged {
					s.engaged = true
					s.ticker = time.NewTicker(s.cfg.Cadence)
					s.cfg.Log.Info("movement engaged")
				}
			case disengage:
				if s.engaged {
					s.engaged = false
					s.keys = api.MovementKeys{}
					s.ticker.Stop()
					s.ticker = nil
					s.cfg.Log.Info("movement disengaged")
				}
			case getState:
				m.reply <- State{Engaged: s.engaged, Keys: s.keys}
			}
		}
	}
}

func (s *Streamer) setKey(k Key, held bool) {
	switch k {
	case KeyForward:
		s.keys.W = held
	case KeyLeft:
		s.keys.A = held
	case KeyBack:
		s.keys.S = held
	case KeyRight:
		s.keys.D = held
	case KeyJump:
		s.keys.Space = held
	}
}
