// Package command turns discrete panel actions into single-shot
// backend dispatches. No queuing: a second invocation while one is
// pending is allowed to race, the backend serializes per bot.
package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/robloxbot-cc/botpanel/internal/api"
)

// Fixed vocabulary. The reference page lists more chat commands, but
// these are the only ones the web panel may relay.
type Type string

const (
	TypePlay    Type = "play"
	TypePause   Type = "pause"
	TypeUnpause Type = "unpause"
	TypeSkip    Type = "skip"
	TypeVolume  Type = "volume"
	TypeClear   Type = "clear"
)

type Command struct {
	Type Type
	Args string
}

func Play(title string) Command { return Command{Type: TypePlay, Args: strings.TrimSpace(title)} }
func Pause() Command            { return Command{Type: TypePause} }
func Unpause() Command          { return Command{Type: TypeUnpause} }
func Skip() Command             { return Command{Type: TypeSkip} }
func Clear() Command            { return Command{Type: TypeClear} }

func Volume(level int) Command {
	return Command{Type: TypeVolume, Args: strconv.Itoa(level)}
}

// Result is the single outcome surfaced to the UI: accepted or not,
// plus the backend's human-readable message (the toast text).
type Result struct {
	Accepted bool
	Message  string
}

// Sender is the slice of the gateway the dispatcher needs.
type Sender interface {
	SendCommand(ctx context.Context, botID, username, command, args string) (api.CommandResponse, error)
}

// Invalidator forces a dependent poller to refetch immediately.
type Invalidator interface {
	RefetchNow()
}

// Dispatcher sends commands for one verified session. On acceptance it
// invalidates the now-playing and queue pollers so the UI catches up
// without waiting out the poll interval.
type Dispatcher struct {
	botID    string
	username string
	api      Sender
	log      *zap.Logger

	nowPlaying Invalidator
	queue      Invalidator
}

func NewDispatcher(botID, username string, s Sender, nowPlaying, queue Invalidator, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		botID:      botID,
		username:   username,
		api:        s,
		nowPlaying: nowPlaying,
		queue:      queue,
		log:        log,
	}
}

// Invoke dispatches one command. Transport failures and backend
// rejections both come back as a non-accepted Result with a reason;
// the caller rolls back any optimistic UI change on those.
func (d *Dispatcher) Invoke(ctx context.Context, cmd Command) Result {
	if reason, ok := validate(cmd); !ok {
		return Result{Accepted: false, Message: reason}
	}

	resp, err := d.api.SendCommand(ctx, d.botID, d.username, string(cmd.Type), cmd.Args)
	if err != nil {
		d.log.Warn("command dispatch failed",
			zap.String("command", string(cmd.Type)),
			zap.Error(err),
		)
		return Result{Accepted: false, Message: "Failed to send command"}
	}
	if !resp.Success {
		return Result{Accepted: false, Message: resp.Message}
	}

	if d.nowPlaying != nil {
		d.nowPlaying.RefetchNow()
	}
	if d.queue != nil {
		d.queue.RefetchNow()
	}
	return Result{Accepted: true, Message: resp.Message}
}

func validate(cmd Command) (string, bool) {
	switch cmd.Type {
	case TypePlay:
		if cmd.Args == "" {
			return "enter a song to request", false
		}
	case TypeVolume:
		v, err := strconv.Atoi(cmd.Args)
		if err != nil || v < 0 || v > 100 {
			return fmt.Sprintf("volume must be 0-100, got %q", cmd.Args), false
		}
	case TypePause, TypeUnpause, TypeSkip, TypeClear:
		// no args
	default:
		return fmt.Sprintf("unknown command %q", cmd.Type), false
	}
	return "", true
}
