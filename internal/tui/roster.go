package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robloxbot-cc/botpanel/internal/api"
	"github.com/robloxbot-cc/botpanel/internal/poll"
)

// rosterModel renders the bot fleet list. Pure view state: the data
// lives in the roster poller's snapshots.
type rosterModel struct {
	snap   poll.Snapshot[api.BotsListResponse]
	sorted []api.Bot
	cursor int
}

func (m *rosterModel) setSnapshot(s poll.Snapshot[api.BotsListResponse]) {
	m.snap = s
	m.sorted = sortBots(s.Data.Bots)
	if m.cursor >= len(m.sorted) {
		m.cursor = max(0, len(m.sorted)-1)
	}
}

// sortBots puts online bots first and otherwise keeps backend order.
func sortBots(bots []api.Bot) []api.Bot {
	out := make([]api.Bot, len(bots))
	copy(out, bots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Online && !out[j].Online
	})
	return out
}

func (m *rosterModel) moveCursor(delta int) {
	if len(m.sorted) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.sorted)) % len(m.sorted)
}

func (m *rosterModel) selected() (api.Bot, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sorted) {
		return api.Bot{}, false
	}
	return m.sorted[m.cursor], true
}

func (m *rosterModel) view(width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("botpanel"))
	b.WriteString("  ")

	switch {
	case m.snap.Loading:
		b.WriteString(subtleStyle.Render("loading bots..."))
		b.WriteString("\n")
	case m.snap.Err:
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Connection failed — unable to reach the bot server"))
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("press R to retry"))
		b.WriteString("\n")
	default:
		counts := fmt.Sprintf("%d online / %d total", m.snap.Data.OnlineCount, m.snap.Data.Total)
		if m.snap.Stale {
			counts += "  " + warnStyle.Render("(stale)")
		}
		if m.snap.Refetching {
			counts += "  " + subtleStyle.Render("refreshing...")
		}
		b.WriteString(subtleStyle.Render(counts))
		b.WriteString("\n\n")

		if len(m.sorted) == 0 {
			b.WriteString(subtleStyle.Render("No bots available. Check back soon."))
			b.WriteString("\n")
		}
		for i, bot := range m.sorted {
			b.WriteString(m.botLine(i, bot, width))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select · enter control panel · R refresh · q quit"))
	return b.String()
}

func (m *rosterModel) botLine(i int, bot api.Bot, width int) string {
	status := onlineStyle.Render("●")
	detail := fmt.Sprintf("%s  %s", bot.GameName, bot.Players)
	if !bot.Online {
		status = offlineStyle.Render("○")
		detail = fmt.Sprintf("last seen %s", api.FormatLastSeen(bot.LastSeen))
	}

	name := bot.DisplayName
	if bot.Online && bot.IsFull {
		detail += "  " + warnStyle.Render("full")
	}
	if bot.Online && bot.CurrentSong != nil {
		verb := "paused"
		if bot.IsPlaying {
			verb = "♪"
		}
		detail += fmt.Sprintf("  %s %s", verb, *bot.CurrentSong)
	}

	line := fmt.Sprintf("%s %-14s %s", status, name, subtleStyle.Render(detail))
	if i == m.cursor {
		join := api.JoinURL(bot.PlaceID, bot.JobID, false)
		line = selectedStyle.Render(fmt.Sprintf("%s %-14s", ">", name)) + " " + subtleStyle.Render(detail)
		if bot.Online {
			line += "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(subtleStyle.Render("join: "+join))
		}
	}
	return line
}
