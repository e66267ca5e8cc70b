package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robloxbot-cc/botpanel/internal/api"
	"github.com/robloxbot-cc/botpanel/internal/command"
	"github.com/robloxbot-cc/botpanel/internal/movement"
	"github.com/robloxbot-cc/botpanel/internal/poll"
)

func keyMsgFor(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// idleNowPlayingPoller builds a poller the panel can re-listen on
// without any fetch activity interfering with the test.
func idleNowPlayingPoller(t *testing.T) *poll.Poller[api.NowPlayingResponse] {
	t.Helper()
	p := poll.New(context.Background(), poll.Config[api.NowPlayingResponse]{
		Name:     "test",
		Interval: time.Hour,
		Fetch: func(context.Context) (api.NowPlayingResponse, error) {
			return api.NowPlayingResponse{}, nil
		},
	})
	t.Cleanup(p.Close)
	return p
}

func TestServerVolumeOverwritesOptimisticValue(t *testing.T) {
	p := &panelModel{volume: 40, npPoller: idleNowPlayingPoller(t)}

	_, handled := p.update(nowPlayingMsg{
		Data:    api.NowPlayingResponse{Success: true, Playing: true, Volume: 100},
		HasData: true,
	})
	require.True(t, handled)
	assert.Equal(t, 100, p.volume)
}

func TestStoppedPlaybackLeavesVolumeAlone(t *testing.T) {
	p := &panelModel{volume: 40, npPoller: idleNowPlayingPoller(t)}

	p.update(nowPlayingMsg{
		Data:    api.NowPlayingResponse{Success: true, Playing: false},
		HasData: true,
	})
	assert.Equal(t, 40, p.volume)
}

func TestRejectedVolumeRollsBack(t *testing.T) {
	p := &panelModel{volume: 55}

	_, handled := p.update(commandResultMsg{
		result:     command.Result{Accepted: false, Message: "volume must be 0-100"},
		prevVolume: 80,
	})
	require.True(t, handled)
	assert.Equal(t, 80, p.volume)
	assert.True(t, p.noticeErr)
}

func TestAcceptedCommandKeepsOptimisticVolume(t *testing.T) {
	p := &panelModel{volume: 55}

	p.update(commandResultMsg{
		result:     command.Result{Accepted: true, Message: "Volume set to 55"},
		prevVolume: 80,
	})
	assert.Equal(t, 55, p.volume)
	assert.False(t, p.noticeErr)
}

func TestNonVolumeRejectionLeavesVolumeAlone(t *testing.T) {
	p := &panelModel{volume: 55}

	p.update(commandResultMsg{
		result:     command.Result{Accepted: false, Message: "not in server"},
		prevVolume: -1,
	})
	assert.Equal(t, 55, p.volume)
}

func TestHoldExpiryReleasesOnlyCurrentSequence(t *testing.T) {
	p := &panelModel{
		held:    map[movement.Key]bool{movement.KeyForward: true},
		holdSeq: map[movement.Key]int{movement.KeyForward: 3},
	}

	// A stale expiry (a newer repeat already bumped the sequence) must
	// not release the key.
	p.update(holdExpiredMsg{key: movement.KeyForward, seq: 2})
	assert.True(t, p.held[movement.KeyForward])

	p.update(holdExpiredMsg{key: movement.KeyForward, seq: 3})
	assert.False(t, p.held[movement.KeyForward])
}

func TestStaleNoticeExpiryIsIgnored(t *testing.T) {
	p := &panelModel{}
	p.setNotice("first", false)
	p.setNotice("second", true)

	p.update(noticeExpiredMsg{id: 1})
	assert.Equal(t, "second", p.notice)

	p.update(noticeExpiredMsg{id: 2})
	assert.Empty(t, p.notice)
}

func TestCycleSuggestionWraps(t *testing.T) {
	p := &panelModel{
		input:       textinput.New(),
		suggestions: []string{"lea", "rowan"},
		sugCursor:   -1,
	}

	p.cycleSuggestion(-1)
	assert.Equal(t, "rowan", p.input.Value())

	p.cycleSuggestion(1)
	assert.Equal(t, "lea", p.input.Value())

	p.cycleSuggestion(1)
	assert.Equal(t, "rowan", p.input.Value())
}

func TestMovementKeyMapping(t *testing.T) {
	cases := map[string]movement.Key{
		"w": movement.KeyForward,
		"a": movement.KeyLeft,
		"s": movement.KeyBack,
		"d": movement.KeyRight,
	}
	for s, want := range cases {
		got, ok := movementKeyFor(keyMsgFor(s))
		require.True(t, ok, "key %q", s)
		assert.Equal(t, want, got)
	}

	_, ok := movementKeyFor(keyMsgFor("x"))
	assert.False(t, ok)
}

func TestProgressBarBounds(t *testing.T) {
	assert.Equal(t, strings.Repeat("─", 10), progressBar(30, 0, 10))
	assert.Equal(t, strings.Repeat("█", 10), progressBar(500, 100, 10))
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("─", 5), progressBar(50, 100, 10))
}
