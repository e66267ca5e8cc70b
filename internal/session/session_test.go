package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robloxbot-cc/botpanel/internal/api"
)

type fakeVerifier struct {
	resp api.VerifyUserResponse
	err  error
}

func (f *fakeVerifier) VerifyUser(ctx context.Context, botID, username string) (api.VerifyUserResponse, error) {
	return f.resp, f.err
}

type fakeCache struct {
	remembered []string
}

func (f *fakeCache) Remember(username string) { f.remembered = append(f.remembered, username) }

func TestSubmit_Accepted(t *testing.T) {
	v := &fakeVerifier{resp: api.VerifyUserResponse{Success: true, InServer: true, IsPrivileged: true}}
	cache := &fakeCache{}
	c := NewController("bot-groove", v, cache, nil)

	ok, reason := c.Submit(context.Background(), "  dj_rowan  ")
	require.True(t, ok)
	require.Empty(t, reason)
	require.Equal(t, Verified, c.State())
	require.Equal(t, "dj_rowan", c.Username(), "username is trimmed before submit")
	require.True(t, c.Privileged())
	require.Equal(t, []string{"dj_rowan"}, cache.remembered)
}

func TestSubmit_OperatorCountsAsPrivileged(t *testing.T) {
	v := &fakeVerifier{resp: api.VerifyUserResponse{Success: true, InServer: true, IsOperator: true}}
	c := NewController("bot-groove", v, &fakeCache{}, nil)

	ok, _ := c.Submit(context.Background(), "op")
	require.True(t, ok)
	require.True(t, c.Privileged())
}

func TestSubmit_NotInServer(t *testing.T) {
	// success:true + in_server:false is a semantic rejection: stay
	// Unauthenticated, explain why, and don't pollute the cache.
	v := &fakeVerifier{resp: api.VerifyUserResponse{Success: true, InServer: false}}
	cache := &fakeCache{}
	c := NewController("bot-groove", v, cache, nil)

	ok, reason := c.Submit(context.Background(), "stranger")
	require.False(t, ok)
	require.Equal(t, ReasonNotInServer, reason)
	require.Equal(t, Unauthenticated, c.State())
	require.Empty(t, cache.remembered)
}

func TestSubmit_TransportFailure(t *testing.T) {
	v := &fakeVerifier{err: &api.TransportError{Op: "verify user", Err: errors.New("boom")}}
	c := NewController("bot-groove", v, &fakeCache{}, nil)

	ok, reason := c.Submit(context.Background(), "alice")
	require.False(t, ok)
	require.Equal(t, ReasonVerifyFailed, reason)
	require.Equal(t, Unauthenticated, c.State())
}

func TestLogout_NoStalePrivilege(t *testing.T) {
	v := &fakeVerifier{resp: api.VerifyUserResponse{Success: true, InServer: true, IsPrivileged: true}}
	c := NewController("bot-groove", v, &fakeCache{}, nil)

	ok, _ := c.Submit(context.Background(), "dj_rowan")
	require.True(t, ok)
	require.True(t, c.Privileged())

	c.Logout()
	require.Equal(t, Unauthenticated, c.State())
	require.False(t, c.Privileged(), "privilege must not survive a reset")
	require.Empty(t, c.Username())
}

func TestSubmit_BlankUsername(t *testing.T) {
	c := NewController("bot-groove", &fakeVerifier{}, &fakeCache{}, nil)

	ok, reason := c.Submit(context.Background(), "   ")
	require.False(t, ok)
	require.NotEmpty(t, reason)
	require.Equal(t, Unauthenticated, c.State())
}
