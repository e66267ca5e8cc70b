package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/robloxbot-cc/botpanel/internal/api"
	"github.com/robloxbot-cc/botpanel/internal/identity"
	"github.com/robloxbot-cc/botpanel/internal/poll"
)

// Options is everything the root model needs from main.
type Options struct {
	Client *api.Client
	IDs    *identity.Store
	Log    *zap.Logger

	RosterInterval     time.Duration
	RosterRetries      int
	RosterStaleAfter   time.Duration
	NowPlayingInterval time.Duration
	QueueInterval      time.Duration
}

// Model is the application root. Two screens: the bot roster, and a
// control panel for the bot the user opened. The roster poller lives
// for the whole program; panel pollers live only while a panel is open.
type Model struct {
	opts Options
	keys KeyMap

	width  int
	height int

	roster       rosterModel
	rosterPoller *poll.Poller[api.BotsListResponse]

	panel *panelModel // nil while on the roster
}

func NewModel(opts Options) Model {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	m := Model{opts: opts, keys: DefaultKeyMap}
	m.rosterPoller = poll.New(context.Background(), poll.Config[api.BotsListResponse]{
		Name:       "roster",
		Interval:   opts.RosterInterval,
		Fetch:      opts.Client.ListBots,
		Retries:    opts.RosterRetries,
		StaleAfter: opts.RosterStaleAfter,
		Log:        opts.Log,
	})
	m.roster.snap.Loading = true
	return m
}

func (m Model) Init() tea.Cmd {
	return listenRoster(m.rosterPoller.Updates())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case rosterMsg:
		m.roster.setSnapshot(poll.Snapshot[api.BotsListResponse](msg))
		return m, listenRoster(m.rosterPoller.Updates())

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && m.quitAllowed(msg) {
			return m.quit()
		}
	}

	if m.panel != nil {
		return m.updatePanel(msg)
	}
	return m.updateRoster(msg)
}

// quitAllowed keeps plain "q" typeable inside text inputs; ctrl+c
// always quits.
func (m Model) quitAllowed(msg tea.KeyMsg) bool {
	if msg.String() == "ctrl+c" {
		return true
	}
	if m.panel == nil {
		return true
	}
	return false
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.panel != nil {
		m.panel.teardown()
		m.panel = nil
	}
	m.rosterPoller.Close()
	return m, tea.Quit
}

func (m Model) updateRoster(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.roster.moveCursor(-1)
	case key.Matches(keyMsg, m.keys.Down):
		m.roster.moveCursor(1)
	case key.Matches(keyMsg, m.keys.Retry):
		m.rosterPoller.RefetchNow()
	case key.Matches(keyMsg, m.keys.Open):
		bot, ok := m.roster.selected()
		if !ok || !bot.Online {
			return m, nil
		}
		panel, cmd := newPanelModel(bot, panelDeps{
			client:             m.opts.Client,
			ids:                m.opts.IDs,
			log:                m.opts.Log,
			nowPlayingInterval: m.opts.NowPlayingInterval,
			queueInterval:      m.opts.QueueInterval,
		})
		m.panel = panel
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePanel(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEscape {
		// Esc backs out one layer at a time; the panel handles its own
		// inner layers (request input, movement) first.
		if m.panel.requesting || m.panel.moveEngaged {
			cmd, _ := m.panel.update(msg)
			return m, cmd
		}
		m.panel.teardown()
		m.panel = nil
		return m, nil
	}

	cmd, _ := m.panel.update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.panel != nil {
		return m.panel.view(m.width)
	}
	return m.roster.view(m.width)
}
