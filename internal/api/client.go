package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// TransportError means the request never produced a usable response:
// the network failed or the backend answered with a non-2xx status.
// Semantically negative responses (success:false, in_server:false) are
// NOT transport errors; callers branch on them as normal results.
type TransportError struct {
	Op     string // "list bots", "verify user", ...
	Status int    // 0 when the request never completed
	Err    error  // underlying error, nil for bad-status cases
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client is the single boundary to the bot backend. Every method is
// one request/response round trip: no retries, no queuing, no
// coalescing. Retry policy belongs to the pollers.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    http.DefaultClient,
		log:     log,
	}
}

// SetHTTPClient swaps the underlying transport. Tests point it at an
// httptest server's client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// ListBots fetches the full bot roster. The snapshot replaces any
// previous one wholesale; bots are keyed by BotID across polls.
func (c *Client) ListBots(ctx context.Context) (BotsListResponse, error) {
	var out BotsListResponse
	err := c.do(ctx, "list bots", http.MethodGet, "/api/bots/list", true, nil, &out)
	return out, err
}

// VerifyUser asks the bot whether username is in its game instance.
// A response with InServer=false is a normal result, not an error.
func (c *Client) VerifyUser(ctx context.Context, botID, username string) (VerifyUserResponse, error) {
	var out VerifyUserResponse
	path := "/api/bots/" + url.PathEscape(botID) + "/verify-user"
	err := c.do(ctx, "verify user", http.MethodPost, path, true, verifyUserRequest{Username: username}, &out)
	return out, err
}

// SendCommand relays a discrete panel command ("play", "pause", ...)
// to the bot. Fire and forget: the backend serializes concurrent
// commands, not this client.
func (c *Client) SendCommand(ctx context.Context, botID, username, command, args string) (CommandResponse, error) {
	return c.webCommand(ctx, botID, webCommandRequest{Username: username, Command: command, Args: args})
}

// SendMovement relays the current held-key vector as a "move" command.
// Callers must not send an idle vector; the streamer guarantees it.
func (c *Client) SendMovement(ctx context.Context, botID, username string, keys MovementKeys) (CommandResponse, error) {
	return c.webCommand(ctx, botID, webCommandRequest{Username: username, Command: "move", Keys: &keys})
}

func (c *Client) webCommand(ctx context.Context, botID string, req webCommandRequest) (CommandResponse, error) {
	var out CommandResponse
	path := "/api/bots/" + url.PathEscape(botID) + "/web-command"
	err := c.do(ctx, "web command", http.MethodPost, path, true, req, &out)
	return out, err
}

// NowPlaying fetches the current playback state. Unauthenticated
// root-level route on the backend.
func (c *Client) NowPlaying(ctx context.Context) (NowPlayingResponse, error) {
	var out NowPlayingResponse
	err := c.do(ctx, "now playing", http.MethodGet, "/now-playing", false, nil, &out)
	return out, err
}

// Queue fetches the full request queue. Snapshots always replace the
// previous queue; there is no incremental patching.
func (c *Client) Queue(ctx context.Context) (QueueResponse, error) {
	var out QueueResponse
	err := c.do(ctx, "queue", http.MethodGet, "/queue", false, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, keyed bool, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if keyed {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("bad status", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return &TransportError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	c.log.Debug("request ok", zap.String("op", op))
	return nil
}
