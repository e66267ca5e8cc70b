// Package session holds the per-control-panel identity state machine:
// Unauthenticated until the backend confirms the username is in the
// bot's game instance, then Verified until logout or panel close.
// Verification is re-requested on every panel open because instance
// membership changes between sessions; the identity cache only feeds
// the input field, it is never an authorization token.
package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/robloxbot-cc/botpanel/internal/api"
)

// User-facing failure reasons. Semantic rejection and transport
// failure read differently so the user knows whether to join the game
// or just retry.
const (
	ReasonNotInServer  = "Not in server. Join the same game as the bot or try a different username."
	ReasonVerifyFailed = "Failed to verify. Please try again."
)

type State int

const (
	Unauthenticated State = iota
	Verified
)

// Verifier is the slice of the gateway the controller needs.
type Verifier interface {
	VerifyUser(ctx context.Context, botID, username string) (api.VerifyUserResponse, error)
}

// Cache is the slice of the identity store the controller needs.
type Cache interface {
	Remember(username string)
}

// Controller owns one panel's session. Not shared across panels; the
// TUI drives it from its single event loop, so no locking.
type Controller struct {
	botID string
	api   Verifier
	cache Cache
	log   *zap.Logger

	state      State
	username   string
	privileged bool
}

func NewController(botID string, v Verifier, cache Cache, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{botID: botID, api: v, cache: cache, log: log}
}

func (c *Controller) State() State     { return c.state }
func (c *Controller) Username() string { return c.username }
func (c *Controller) Privileged() bool { return c.state == Verified && c.privileged }
func (c *Controller) BotID() string    { return c.botID }

// Submit attempts verification. On success the controller moves to
// Verified and the username is cached for next time. On rejection or
// transport failure it stays Unauthenticated and returns the reason to
// show the user.
func (c *Controller) Submit(ctx context.Context, username string) (ok bool, reason string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, ReasonNotInServer
	}

	resp, err := c.api.VerifyUser(ctx, c.botID, username)
	if err != nil {
		c.log.Warn("verify transport failure", zap.String("bot", c.botID), zap.Error(err))
		return false, ReasonVerifyFailed
	}
	if !resp.Success || !resp.InServer {
		c.log.Info("verify rejected", zap.String("bot", c.botID), zap.String("username", username))
		return false, ReasonNotInServer
	}

	c.state = Verified
	c.username = username
	c.privileged = resp.Privileged()
	if c.cache != nil {
		c.cache.Remember(username)
	}
	c.log.Info("verified",
		zap.String("bot", c.botID),
		zap.String("username", username),
		zap.Bool("privileged", c.privileged),
	)
	return true, ""
}

// Logout is a hard reset to Unauthenticated. Username and privilege
// are discarded; any in-flight privileged action is abandoned, never
// replayed after re-verification. Panel close calls this too.
func (c *Controller) Logout() {
	c.state = Unauthenticated
	c.username = ""
	c.privileged = false
}
