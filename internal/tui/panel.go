package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/robloxbot-cc/botpanel/internal/api"
	"github.com/robloxbot-cc/botpanel/internal/command"
	"github.com/robloxbot-cc/botpanel/internal/identity"
	"github.com/robloxbot-cc/botpanel/internal/movement"
	"github.com/robloxbot-cc/botpanel/internal/poll"
	"github.com/robloxbot-cc/botpanel/internal/session"
)

// holdWindow is how long a movement key stays held after its last
// key event. Terminals send repeats while a key is down but no
// key-up, so silence past this window counts as the release.
const holdWindow = 250 * time.Millisecond

// requestTimeout bounds every command/verify round trip issued from
// the panel.
const requestTimeout = 10 * time.Second

// panelModel is one open control panel: the username form until the
// session verifies, then playback controls, song requests, the queue,
// and (for privileged sessions) movement capture.
type panelModel struct {
	bot  api.Bot
	keys KeyMap
	log  *zap.Logger

	client *api.Client
	ids    *identity.Store
	sess   *session.Controller

	npPoller *poll.Poller[api.NowPlayingResponse]
	qPoller  *poll.Poller[api.QueueResponse]

	// Created on successful verification; nil before.
	dispatcher *command.Dispatcher
	streamer   *movement.Streamer

	// username form
	input       textinput.Model
	suggestions []string
	sugCursor   int // -1 = free typing
	verifying   bool
	verifyErr   string

	// playback view
	np    poll.Snapshot[api.NowPlayingResponse]
	queue poll.Snapshot[api.QueueResponse]
	// volume is the displayed value: the server's last reported level
	// except in the window between an optimistic local change and the
	// next now-playing poll, which always overwrites it.
	volume int

	// song request
	requesting   bool
	requestInput textinput.Model

	// movement capture
	moveEngaged bool
	held        map[movement.Key]bool
	holdSeq     map[movement.Key]int

	// transient toast line
	notice    string
	noticeErr bool
	noticeID  int
}

type panelDeps struct {
	client             *api.Client
	ids                *identity.Store
	log                *zap.Logger
	nowPlayingInterval time.Duration
	queueInterval      time.Duration
}

func newPanelModel(bot api.Bot, d panelDeps) (*panelModel, tea.Cmd) {
	input := textinput.New()
	input.Placeholder = "Your Roblox username"
	input.CharLimit = 32

	requestInput := textinput.New()
	requestInput.Placeholder = "Song by Artist"
	requestInput.CharLimit = 128

	p := &panelModel{
		bot:          bot,
		keys:         DefaultKeyMap,
		log:          d.log,
		client:       d.client,
		ids:          d.ids,
		sess:         session.NewController(bot.BotID, d.client, d.ids, d.log),
		input:        input,
		requestInput: requestInput,
		sugCursor:    -1,
		volume:       100,
		held:         map[movement.Key]bool{},
		holdSeq:      map[movement.Key]int{},
	}

	p.suggestions = d.ids.List()
	if len(p.suggestions) > 0 {
		p.input.SetValue(p.suggestions[0])
	}
	focusCmd := p.input.Focus()

	p.npPoller = poll.New(context.Background(), poll.Config[api.NowPlayingResponse]{
		Name:     "now-playing",
		Interval: d.nowPlayingInterval,
		Fetch:    d.client.NowPlaying,
		Log:      d.log,
	})
	p.qPoller = poll.New(context.Background(), poll.Config[api.QueueResponse]{
		Name:     "queue",
		Interval: d.queueInterval,
		Fetch:    d.client.Queue,
		Log:      d.log,
	})

	return p, tea.Batch(
		focusCmd,
		listenNowPlaying(p.npPoller.Updates()),
		listenQueue(p.qPoller.Updates()),
	)
}

// teardown is the hard reset on panel close: pollers stop, movement
// capture is released, the session drops to Unauthenticated. Late
// results from any of them are discarded by their owners.
func (p *panelModel) teardown() {
	p.npPoller.Close()
	p.qPoller.Close()
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.sess.Logout()
	p.dispatcher = nil
}

func (p *panelModel) update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case nowPlayingMsg:
		p.np = poll.Snapshot[api.NowPlayingResponse](msg)
		if p.np.HasData && p.np.Data.Playing {
			// Server-confirmed volume always wins over an optimistic
			// local value, never the reverse.
			p.volume = p.np.Data.Volume
		}
		return listenNowPlaying(p.npPoller.Updates()), true

	case queueMsg:
		p.queue = poll.Snapshot[api.QueueResponse](msg)
		return listenQueue(p.qPoller.Updates()), true

	case verifyResultMsg:
		p.verifying = false
		if !msg.ok {
			p.verifyErr = msg.reason
			return nil, true
		}
		p.verifyErr = ""
		p.suggestions = p.ids.List()
		p.dispatcher = command.NewDispatcher(
			p.bot.BotID, p.sess.Username(), p.client, p.npPoller, p.qPoller, p.log,
		)
		if p.sess.Privileged() {
			botID, username := p.bot.BotID, p.sess.Username()
			p.streamer = movement.NewStreamer(context.Background(), movement.Config{
				Log: p.log,
				Send: func(ctx context.Context, keys api.MovementKeys) {
					sendCtx, cancel := context.WithTimeout(ctx, requestTimeout)
					defer cancel()
					_, _ = p.client.SendMovement(sendCtx, botID, username, keys)
				},
			})
		}
		return nil, true

	case commandResultMsg:
		if msg.result.Accepted {
			return p.setNotice(msg.result.Message, false), true
		}
		if msg.prevVolume >= 0 {
			// Roll the optimistic slider move back.
			p.volume = msg.prevVolume
		}
		return p.setNotice(msg.result.Message, true), true

	case noticeExpiredMsg:
		if msg.id == p.noticeID {
			p.notice = ""
		}
		return nil, true

	case holdExpiredMsg:
		if p.holdSeq[msg.key] == msg.seq && p.held[msg.key] {
			p.held[msg.key] = false
			if p.streamer != nil {
				p.streamer.Release(msg.key)
			}
		}
		return nil, true

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return nil, false
}

func (p *panelModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if p.sess.State() != session.Verified {
		return p.handleFormKey(msg)
	}
	if p.requesting {
		return p.handleRequestKey(msg)
	}
	if p.moveEngaged {
		if msg.Type == tea.KeyEscape {
			p.toggleMovement()
			return nil, true
		}
		if cmd, handled := p.handleMovementKey(msg); handled {
			return cmd, true
		}
	}
	return p.handleControlKey(msg)
}

// --- username form ---

func (p *panelModel) handleFormKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if p.verifying {
		return nil, true // input is frozen until the round trip ends
	}

	// Arrow keys only here: j/k must stay typeable in the input.
	switch {
	case msg.Type == tea.KeyUp:
		p.cycleSuggestion(-1)
		return nil, true
	case msg.Type == tea.KeyDown:
		p.cycleSuggestion(1)
		return nil, true
	case key.Matches(msg, p.keys.Forget):
		if p.sugCursor >= 0 && p.sugCursor < len(p.suggestions) {
			p.ids.Forget(p.suggestions[p.sugCursor])
			p.suggestions = p.ids.List()
			p.sugCursor = -1
			p.input.SetValue("")
		}
		return nil, true
	case msg.Type == tea.KeyEnter:
		name := strings.TrimSpace(p.input.Value())
		if name == "" {
			return nil, true
		}
		p.verifying = true
		p.verifyErr = ""
		sess := p.sess
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			ok, reason := sess.Submit(ctx, name)
			return verifyResultMsg{ok: ok, reason: reason}
		}, true
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.sugCursor = -1
	p.verifyErr = ""
	return cmd, true
}

func (p *panelModel) cycleSuggestion(delta int) {
	if len(p.suggestions) == 0 {
		return
	}
	p.sugCursor += delta
	if p.sugCursor < 0 {
		p.sugCursor = len(p.suggestions) - 1
	}
	if p.sugCursor >= len(p.suggestions) {
		p.sugCursor = 0
	}
	p.input.SetValue(p.suggestions[p.sugCursor])
	p.input.CursorEnd()
}

// --- song request ---

func (p *panelModel) handleRequestKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyEscape:
		p.requesting = false
		p.requestInput.SetValue("")
		p.requestInput.Blur()
		return nil, true
	case tea.KeyEnter:
		title := strings.TrimSpace(p.requestInput.Value())
		p.requesting = false
		p.requestInput.SetValue("")
		p.requestInput.Blur()
		if title == "" {
			return nil, true
		}
		return p.dispatch(command.Play(title), -1), true
	}

	var cmd tea.Cmd
	p.requestInput, cmd = p.requestInput.Update(msg)
	return cmd, true
}

// --- movement capture ---

func movementKeyFor(msg tea.KeyMsg) (movement.Key, bool) {
	switch msg.String() {
	case "w":
		return movement.KeyForward, true
	case "a":
		return movement.KeyLeft, true
	case "s":
		return movement.KeyBack, true
	case "d":
		return movement.KeyRight, true
	case " ", "space":
		return movement.KeyJump, true
	}
	return 0, false
}

func (p *panelModel) handleMovementKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k, ok := movementKeyFor(msg)
	if !ok || p.streamer == nil {
		return nil, false
	}
	if !p.held[k] {
		p.held[k] = true
		p.streamer.Press(k)
	}
	p.holdSeq[k]++
	seq := p.holdSeq[k]
	return tea.Tick(holdWindow, func(time.Time) tea.Msg {
		return holdExpiredMsg{key: k, seq: seq}
	}), true
}

func (p *panelModel) toggleMovement() {
	if p.streamer == nil {
		return
	}
	if p.moveEngaged {
		p.moveEngaged = false
		p.held = map[movement.Key]bool{}
		p.streamer.Disengage()
		return
	}
	p.moveEngaged = true
	p.streamer.Engage()
}

// --- verified controls ---

func (p *panelModel) handleControlKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	privileged := p.sess.Privileged()

	switch {
	case key.Matches(msg, p.keys.Request):
		p.requesting = true
		return p.requestInput.Focus(), true

	case key.Matches(msg, p.keys.Pause):
		if !privileged {
			return p.setNotice("Privileged users only", true), true
		}
		return p.dispatch(command.Pause(), -1), true

	case key.Matches(msg, p.keys.Resume):
		if !privileged {
			return p.setNotice("Privileged users only", true), true
		}
		return p.dispatch(command.Unpause(), -1), true

	case key.Matches(msg, p.keys.SkipTrack):
		if !privileged {
			return p.setNotice("Privileged users only", true), true
		}
		return p.dispatch(command.Skip(), -1), true

	case key.Matches(msg, p.keys.ClearQueue):
		if !privileged {
			return p.setNotice("Privileged users only", true), true
		}
		return p.dispatch(command.Clear(), -1), true

	case key.Matches(msg, p.keys.VolumeUp):
		if !privileged {
			return p.setNotice("Privileged users only", true), true
		}
		return p.setVolume(min(100, p.volume+5)), true

	case key.Matches(msg, p.keys.VolumeDown):
		if !privileged {
			return p.setNotice("Privileged users only", true), true
		}
		return p.setVolume(max(0, p.volume-5)), true

	case key.Matches(msg, p.keys.Mute):
		if !privileged {
			return p.setNotice("Privileged users only", true), true
		}
		// Mute is a plain 0/100 toggle, not a restore of the old level.
		if p.volume == 0 {
			return p.setVolume(100), true
		}
		return p.setVolume(0), true

	case key.Matches(msg, p.keys.Movement):
		if !privileged {
			return p.setNotice("Privileged users only", true), true
		}
		p.toggleMovement()
		return nil, true

	case key.Matches(msg, p.keys.Logout):
		if p.moveEngaged {
			p.toggleMovement()
		}
		if p.streamer != nil {
			p.streamer.Close()
			p.streamer = nil
		}
		p.sess.Logout()
		p.dispatcher = nil
		p.suggestions = p.ids.List()
		p.input.SetValue("")
		return p.input.Focus(), true
	}
	return nil, false
}

// setVolume applies the change optimistically and dispatches it; the
// command result (or the next now-playing poll) reconciles.
func (p *panelModel) setVolume(v int) tea.Cmd {
	prev := p.volume
	p.volume = v
	return p.dispatch(command.Volume(v), prev)
}

func (p *panelModel) dispatch(cmd command.Command, prevVolume int) tea.Cmd {
	d := p.dispatcher
	if d == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return commandResultMsg{result: d.Invoke(ctx, cmd), prevVolume: prevVolume}
	}
}

func (p *panelModel) setNotice(text string, isErr bool) tea.Cmd {
	p.notice = text
	p.noticeErr = isErr
	p.noticeID++
	id := p.noticeID
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// --- view ---

func (p *panelModel) view(width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(p.bot.DisplayName))
	b.WriteString(subtleStyle.Render("  " + p.bot.GameName + "  " + p.bot.Players))
	b.WriteString("\n\n")

	if p.sess.State() != session.Verified {
		b.WriteString(p.viewForm())
	} else {
		b.WriteString(p.viewControls(width))
	}

	if p.notice != "" {
		b.WriteString("\n")
		if p.noticeErr {
			b.WriteString(errorStyle.Render(p.notice))
		} else {
			b.WriteString(noticeStyle.Render(p.notice))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p *panelModel) viewForm() string {
	var b strings.Builder
	b.WriteString("Enter your username. You must be in the same server as the bot.\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n")

	if len(p.suggestions) > 0 {
		b.WriteString(subtleStyle.Render("recent:"))
		b.WriteString("\n")
		for i, name := range p.suggestions {
			line := "  " + name
			if i == p.sugCursor {
				line = selectedStyle.Render("> " + name)
			}
			b.WriteString(line + "\n")
		}
	}

	if p.verifying {
		b.WriteString("\n" + subtleStyle.Render("Verifying..."))
	}
	if p.verifyErr != "" {
		b.WriteString("\n" + errorStyle.Render(p.verifyErr))
	}
	b.WriteString("\n\n" + helpStyle.Render("enter verify · ↑/↓ recent names · ctrl+x forget · esc back"))
	return b.String()
}

func (p *panelModel) viewControls(width int) string {
	sections := []string{p.viewNowPlaying()}

	if p.requesting {
		sections = append(sections, "request: "+p.requestInput.View())
	}
	sections = append(sections, p.viewQueue())
	if p.moveEngaged {
		sections = append(sections, p.viewMovementPad())
	}

	user := p.sess.Username()
	badge := "member"
	if p.sess.Privileged() {
		badge = "privileged"
	}
	sections = append(sections, subtleStyle.Render(fmt.Sprintf("signed in as %s (%s)", user, badge)))

	help := "/ request · p pause · r resume · n skip · +/- volume · m mute · C clear · L logout · esc close"
	if p.sess.Privileged() {
		help = "g movement · " + help
	}
	sections = append(sections, helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (p *panelModel) viewNowPlaying() string {
	if p.np.Loading {
		return cardStyle.Render(subtleStyle.Render("loading playback..."))
	}
	if !p.np.HasData || !p.np.Data.Playing {
		return cardStyle.Render(subtleStyle.Render("No song playing — request one to get started"))
	}

	d := p.np.Data
	var b strings.Builder
	state := "⏸"
	if d.IsPlaying {
		state = "♪"
	}
	b.WriteString(fmt.Sprintf("%s %s — %s\n", state, d.SongName, d.ArtistName))
	b.WriteString(progressBar(d.CurrentPosition, d.Duration, 28))
	b.WriteString(fmt.Sprintf(" %s / %s\n", api.FormatTime(d.CurrentPosition), api.FormatTime(d.Duration)))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("volume %d%%  ·  %d in queue", p.volume, d.QueueSize)))
	return cardStyle.Render(b.String())
}

func (p *panelModel) viewQueue() string {
	if p.queue.Loading {
		return subtleStyle.Render("loading queue...")
	}
	items := p.queue.Data.Queue
	if len(items) == 0 {
		return subtleStyle.Render("Queue is empty")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Up next (%d):\n", len(items)))
	shown := items
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, item := range shown {
		name, artist := item.Song, item.Artist
		if item.ResolvedName != "" {
			name = item.ResolvedName
		}
		if item.ResolvedArtist != "" {
			artist = item.ResolvedArtist
		}
		marker := " "
		if item.SearchStatus == "searching" || item.SearchStatus == "pending" {
			marker = "…"
		}
		line := fmt.Sprintf("  %d. %s%s", item.Position, name, marker)
		if artist != "" {
			line += subtleStyle.Render(" — " + artist)
		}
		line += subtleStyle.Render("  (" + item.Username + ")")
		b.WriteString(line + "\n")
	}
	if len(items) > 5 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  +%d more\n", len(items)-5)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *panelModel) viewMovementPad() string {
	pad := func(label string, k movement.Key) string {
		if p.held[k] {
			return activeKeyStyle.Render(" " + label + " ")
		}
		return idleKeyStyle.Render(" " + label + " ")
	}
	top := "    " + pad("W", movement.KeyForward)
	mid := pad("A", movement.KeyLeft) + " " + pad("S", movement.KeyBack) + " " + pad("D", movement.KeyRight)
	jump := pad("SPACE", movement.KeyJump)
	return lipgloss.JoinVertical(lipgloss.Left,
		warnStyle.Render("movement active — w/a/s/d/space steer the bot, g to stop"),
		top, mid, jump,
	)
}

func progressBar(position, duration float64, width int) string {
	if duration <= 0 {
		return strings.Repeat("─", width)
	}
	frac := position / duration
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("─", width-filled)
}
