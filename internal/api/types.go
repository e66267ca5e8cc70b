package api

// Wire types for the bot backend. Field names follow the backend's
// JSON exactly; optional fields are pointers or zero-valued.

type Bot struct {
	BotID           string  `json:"bot_id"`
	BotUsername     string  `json:"bot_username"`
	DisplayName     string  `json:"display_name"`
	GameName        string  `json:"game_name"`
	ServerRegion    string  `json:"server_region"`
	Players         string  `json:"players"` // preformatted "3/12"
	PlayersCurrent  int     `json:"players_current"`
	PlayersMax      int     `json:"players_max"`
	IsFull          bool    `json:"is_full"`
	CurrentSong     *string `json:"current_song"`
	CurrentArtist   *string `json:"current_song_artist,omitempty"`
	CurrentAlbumArt *string `json:"current_song_album_art,omitempty"`
	IsPlaying       bool    `json:"is_playing"`
	Online          bool    `json:"online"`
	JoinURL         string  `json:"join_url"`
	PlaceID         string  `json:"place_id"`
	JobID           string  `json:"job_id"`
	AvatarURL       string  `json:"avatar_url"`
	LastSeen        int64   `json:"last_seen"` // seconds since last heartbeat
}

type BotsListResponse struct {
	Success     bool  `json:"success"`
	Bots        []Bot `json:"bots"`
	Total       int   `json:"total"`
	OnlineCount int   `json:"online_count"`
}

type VerifyUserResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	InServer     bool   `json:"in_server"`
	IsPrivileged bool   `json:"is_privileged,omitempty"`
	IsOperator   bool   `json:"is_operator,omitempty"`
	Username     string `json:"username,omitempty"`
}

// Privileged reports whether the verified user may drive privileged
// controls. Operators count as privileged on the panel.
func (r VerifyUserResponse) Privileged() bool {
	return r.IsPrivileged || r.IsOperator
}

type NowPlayingResponse struct {
	Success         bool    `json:"success"`
	Playing         bool    `json:"playing"`
	IsPlaying       bool    `json:"is_playing,omitempty"`
	SongName        string  `json:"song_name,omitempty"`
	ArtistName      string  `json:"artist_name,omitempty"`
	AlbumName       string  `json:"album_name,omitempty"`
	AlbumArtURL     string  `json:"album_art_url,omitempty"`
	CurrentPosition float64 `json:"current_position,omitempty"`
	Duration        float64 `json:"duration,omitempty"`
	Volume          int     `json:"volume,omitempty"`
	QueueSize       int     `json:"queue_size,omitempty"`
	Message         string  `json:"message,omitempty"`
}

type QueueItem struct {
	Position       int    `json:"position"`
	Song           string `json:"song"`
	Artist         string `json:"artist"`
	Username       string `json:"username"`
	ResolvedName   string `json:"resolved_name,omitempty"`
	ResolvedArtist string `json:"resolved_artist,omitempty"`
	SearchStatus   string `json:"search_status,omitempty"`
}

type QueueResponse struct {
	Success bool        `json:"success"`
	Queue   []QueueItem `json:"queue"`
	Total   int         `json:"total"`
}

type CommandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MovementKeys is the held-key vector sent with the "move" command.
// An all-false vector is never put on the wire.
type MovementKeys struct {
	W     bool `json:"w"`
	A     bool `json:"a"`
	S     bool `json:"s"`
	D     bool `json:"d"`
	Space bool `json:"space"`
}

// Any reports whether at least one key is held.
func (k MovementKeys) Any() bool {
	return k.W || k.A || k.S || k.D || k.Space
}

type verifyUserRequest struct {
	Username string `json:"username"`
}

type webCommandRequest struct {
	Username string        `json:"username"`
	Command  string        `json:"command"`
	Args     string        `json:"args,omitempty"`
	Keys     *MovementKeys `json:"keys,omitempty"`
}
