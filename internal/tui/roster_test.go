package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robloxbot-cc/botpanel/internal/api"
	"github.com/robloxbot-cc/botpanel/internal/poll"
)

func bot(id string, online bool) api.Bot {
	return api.Bot{BotID: id, DisplayName: id, Online: online}
}

func TestSortBotsOnlineFirstKeepsBackendOrder(t *testing.T) {
	in := []api.Bot{bot("a", false), bot("b", true), bot("c", false), bot("d", true)}
	out := sortBots(in)

	require.Len(t, out, 4)
	assert.Equal(t, "b", out[0].BotID)
	assert.Equal(t, "d", out[1].BotID)
	assert.Equal(t, "a", out[2].BotID)
	assert.Equal(t, "c", out[3].BotID)
	// Input must not be reordered in place.
	assert.Equal(t, "a", in[0].BotID)
}

func TestRosterCursorWraps(t *testing.T) {
	var m rosterModel
	m.setSnapshot(poll.Snapshot[api.BotsListResponse]{
		Data:    api.BotsListResponse{Bots: []api.Bot{bot("a", true), bot("b", true)}},
		HasData: true,
	})

	m.moveCursor(-1)
	sel, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "b", sel.BotID)

	m.moveCursor(1)
	sel, _ = m.selected()
	assert.Equal(t, "a", sel.BotID)
}

func TestRosterCursorClampsWhenFleetShrinks(t *testing.T) {
	var m rosterModel
	m.setSnapshot(poll.Snapshot[api.BotsListResponse]{
		Data:    api.BotsListResponse{Bots: []api.Bot{bot("a", true), bot("b", true), bot("c", true)}},
		HasData: true,
	})
	m.moveCursor(1)
	m.moveCursor(1)

	m.setSnapshot(poll.Snapshot[api.BotsListResponse]{
		Data:    api.BotsListResponse{Bots: []api.Bot{bot("a", true)}},
		HasData: true,
	})

	sel, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.BotID)
}

func TestRosterViewStates(t *testing.T) {
	var m rosterModel

	m.setSnapshot(poll.Snapshot[api.BotsListResponse]{Loading: true})
	assert.Contains(t, m.view(80), "loading bots")

	m.setSnapshot(poll.Snapshot[api.BotsListResponse]{Err: true})
	assert.Contains(t, m.view(80), "Connection failed")

	m.setSnapshot(poll.Snapshot[api.BotsListResponse]{
		Data:    api.BotsListResponse{Bots: []api.Bot{bot("a", true)}, Total: 1, OnlineCount: 1},
		HasData: true,
		Stale:   true,
	})
	assert.Contains(t, m.view(80), "stale")
}
