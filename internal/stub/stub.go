// Package stub is an in-memory stand-in for the real bot backend. It
// serves every route the panel consumes over a fake fleet, so the TUI
// can be developed offline and the gateway has a server to test
// against. Command handling intentionally mirrors what the real bots
// do: play appends to the queue, skip pops it, volume clamps to 0-100.
package stub

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robloxbot-cc/botpanel/internal/api"
)

// Fleet holds the mutable fake state behind the stub routes. Handlers
// run on the server's goroutines, so everything is mutex-guarded.
type Fleet struct {
	mu sync.Mutex

	bots       []api.Bot
	members    map[string]bool // lowercased usernames considered in-server
	privileged map[string]bool // subset of members with elevated access

	playing  bool
	paused   bool
	song     string
	artist   string
	position float64
	duration float64
	volume   int
	queue    []api.QueueItem

	lastMove api.MovementKeys
	moves    int
}

// NewFleet seeds a fleet with two bots (one offline) and an empty
// queue, which is enough surface for the panel to exercise everything.
func NewFleet() *Fleet {
	song := "Midnight City"
	artist := "M83"
	return &Fleet{
		bots: []api.Bot{
			{
				BotID:          "bot-groove",
				BotUsername:    "GrooveBot_01",
				DisplayName:    "GrooveBot",
				GameName:       "Beat Plaza",
				ServerRegion:   "us-east",
				Players:        "7/20",
				PlayersCurrent: 7,
				PlayersMax:     20,
				CurrentSong:    &song,
				CurrentArtist:  &artist,
				IsPlaying:      true,
				Online:         true,
				PlaceID:        "142823291",
				JobID:          "6f9619ff-8b86-d011-b42d-00cf4fc964ff",
				LastSeen:       3,
			},
			{
				BotID:        "bot-echo",
				BotUsername:  "EchoBot_02",
				DisplayName:  "EchoBot",
				GameName:     "Beat Plaza",
				ServerRegion: "eu-west",
				Players:      "0/20",
				PlayersMax:   20,
				Online:       false,
				PlaceID:      "142823291",
				JobID:        "",
				LastSeen:     5400,
			},
		},
		members:    map[string]bool{"listener_lea": true, "dj_rowan": true},
		privileged: map[string]bool{"dj_rowan": true},
		playing:    true,
		song:       song,
		artist:     artist,
		position:   74,
		duration:   243,
		volume:     100,
	}
}

// AddMember marks a username as in-server; privileged grants it
// elevated command access too. Test setup helper.
func (f *Fleet) AddMember(username string, privileged bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := strings.ToLower(username)
	f.members[name] = true
	if privileged {
		f.privileged[name] = true
	}
}

// MoveCount returns how many move commands were applied. Used by
// streamer tests to count wire-level dispatches.
func (f *Fleet) MoveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moves
}

// LastMove returns the most recently applied movement vector.
func (f *Fleet) LastMove() api.MovementKeys {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMove
}

func (f *Fleet) list() api.BotsListResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	online := 0
	for _, b := range f.bots {
		if b.Online {
			online++
		}
	}
	bots := make([]api.Bot, len(f.bots))
	copy(bots, f.bots)
	return api.BotsListResponse{Success: true, Bots: bots, Total: len(bots), OnlineCount: online}
}

func (f *Fleet) verify(botID, username string) api.VerifyUserResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := strings.ToLower(strings.TrimSpace(username))
	if !f.botOnline(botID) {
		return api.VerifyUserResponse{Success: false, Message: "bot is offline", InServer: false}
	}
	if !f.members[name] {
		return api.VerifyUserResponse{Success: true, InServer: false}
	}
	return api.VerifyUserResponse{
		Success:      true,
		InServer:     true,
		IsPrivileged: f.privileged[name],
		Username:     username,
	}
}

func (f *Fleet) botOnline(botID string) bool {
	for _, b := range f.bots {
		if b.BotID == botID {
			return b.Online
		}
	}
	return false
}

// command applies one web command to the fake playback state and
// reports the outcome the way the real backend does: success plus a
// human-readable message.
func (f *Fleet) command(botID string, req webCommandRequest) api.CommandResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.botOnline(botID) {
		return api.CommandResponse{Success: false, Message: "bot is offline"}
	}
	name := strings.ToLower(strings.TrimSpace(req.Username))
	if !f.members[name] {
		return api.CommandResponse{Success: false, Message: "not in server"}
	}

	switch req.Command {
	case "play":
		if strings.TrimSpace(req.Args) == "" {
			return api.CommandResponse{Success: false, Message: "no song given"}
		}
		f.queue = append(f.queue, api.QueueItem{
			Position:     len(f.queue) + 1,
			Song:         req.Args,
			Username:     req.Username,
			SearchStatus: "pending",
		})
		return api.CommandResponse{Success: true, Message: "Added to queue: " + req.Args}

	case "pause":
		if !f.privileged[name] {
			return api.CommandResponse{Success: false, Message: "privileged users only"}
		}
		f.paused = true
		return api.CommandResponse{Success: true, Message: "Paused"}

	case "unpause":
		if !f.privileged[name] {
			return api.CommandResponse{Success: false, Message: "privileged users only"}
		}
		f.paused = false
		return api.CommandResponse{Success: true, Message: "Resumed"}

	case "skip":
		if !f.privileged[name] {
			return api.CommandResponse{Success: false, Message: "privileged users only"}
		}
		f.advanceQueue()
		return api.CommandResponse{Success: true, Message: "Skipped"}

	case "volume":
		if !f.privileged[name] {
			return api.CommandResponse{Success: false, Message: "privileged users only"}
		}
		v, err := strconv.Atoi(strings.TrimSpace(req.Args))
		if err != nil || v < 0 || v > 100 {
			return api.CommandResponse{Success: false, Message: "volume must be 0-100"}
		}
		f.volume = v
		return api.CommandResponse{Success: true, Message: "Volume set to " + strconv.Itoa(v)}

	case "clear":
		if !f.privileged[name] {
			return api.CommandResponse{Success: false, Message: "privileged users only"}
		}
		f.queue = nil
		return api.CommandResponse{Success: true, Message: "Queue cleared"}

	case "move":
		if !f.privileged[name] {
			return api.CommandResponse{Success: false, Message: "privileged users only"}
		}
		if req.Keys != nil {
			f.lastMove = *req.Keys
			f.moves++
		}
		return api.CommandResponse{Success: true, Message: "ok"}

	default:
		return api.CommandResponse{Success: false, Message: "unknown command: " + req.Command}
	}
}

func (f *Fleet) advanceQueue() {
	if len(f.queue) == 0 {
		f.playing = false
		f.song, f.artist = "", ""
		return
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	for i := range f.queue {
		f.queue[i].Position = i + 1
	}
	f.playing = true
	f.paused = false
	f.song = next.Song
	f.artist = next.Artist
	f.position = 0
	f.duration = 180
}

func (f *Fleet) nowPlaying() api.NowPlayingResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.playing {
		return api.NowPlayingResponse{Success: true, Playing: false}
	}
	return api.NowPlayingResponse{
		Success:         true,
		Playing:         true,
		IsPlaying:       !f.paused,
		SongName:        f.song,
		ArtistName:      f.artist,
		CurrentPosition: f.position,
		Duration:        f.duration,
		Volume:          f.volume,
		QueueSize:       len(f.queue),
	}
}

func (f *Fleet) queueSnapshot() api.QueueResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]api.QueueItem, len(f.queue))
	copy(items, f.queue)
	return api.QueueResponse{Success: true, Queue: items, Total: len(items)}
}

// Tick advances fake playback time. cmd/botstub runs it on a timer so
// the progress bar moves during development.
func (f *Fleet) Tick(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.playing || f.paused {
		return
	}
	f.position += d.Seconds()
	if f.duration > 0 && f.position >= f.duration {
		f.advanceQueue()
	}
}
