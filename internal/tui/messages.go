package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/robloxbot-cc/botpanel/internal/api"
	"github.com/robloxbot-cc/botpanel/internal/command"
	"github.com/robloxbot-cc/botpanel/internal/movement"
	"github.com/robloxbot-cc/botpanel/internal/poll"
)

// Poller snapshots enter the event loop wrapped in typed messages, one
// per synchronizer, so Update can route them without inspection.
type rosterMsg poll.Snapshot[api.BotsListResponse]
type nowPlayingMsg poll.Snapshot[api.NowPlayingResponse]
type queueMsg poll.Snapshot[api.QueueResponse]

// verifyResultMsg reports the outcome of an identity submission.
type verifyResultMsg struct {
	ok     bool
	reason string
}

// commandResultMsg carries a dispatcher outcome plus what to roll back
// on rejection (prevVolume >= 0 means a volume change was optimistic).
type commandResultMsg struct {
	result     command.Result
	prevVolume int
}

// noticeExpiredMsg clears the transient toast line.
type noticeExpiredMsg struct{ id int }

// holdExpiredMsg fires when a movement key has seen no key-repeat for
// the hold window and must be treated as released. Terminals deliver
// no key-up, so repeat-silence is the release signal.
type holdExpiredMsg struct {
	key movement.Key
	seq int
}

// listenSnapshots adapts a poller's update channel to the bubbletea
// loop: receive one snapshot, wrap it, and let Update re-issue the
// command. A closed channel (poller torn down) ends the chain.
func listenSnapshots[T any](ch <-chan poll.Snapshot[T], wrap func(poll.Snapshot[T]) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(s)
	}
}

func listenRoster(ch <-chan poll.Snapshot[api.BotsListResponse]) tea.Cmd {
	return listenSnapshots(ch, func(s poll.Snapshot[api.BotsListResponse]) tea.Msg { return rosterMsg(s) })
}

func listenNowPlaying(ch <-chan poll.Snapshot[api.NowPlayingResponse]) tea.Cmd {
	return listenSnapshots(ch, func(s poll.Snapshot[api.NowPlayingResponse]) tea.Msg { return nowPlayingMsg(s) })
}

func listenQueue(ch <-chan poll.Snapshot[api.QueueResponse]) tea.Cmd {
	return listenSnapshots(ch, func(s poll.Snapshot[api.QueueResponse]) tea.Msg { return queueMsg(s) })
}
