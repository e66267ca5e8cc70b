package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.robloxbot.cc", cfg.APIURL)
	require.Equal(t, 5*time.Second, cfg.RosterInterval)
	require.Equal(t, 2*time.Second, cfg.NowPlayingInterval)
	require.Equal(t, 5*time.Second, cfg.QueueInterval)
	require.Equal(t, 3, cfg.RosterRetries)
	require.Equal(t, 4*time.Second, cfg.RosterStaleAfter)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOTPANEL_API_URL", "http://localhost:9090")
	t.Setenv("BOTPANEL_API_KEY", "sekrit")
	t.Setenv("BOTPANEL_ROSTER_INTERVAL", "500ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9090", cfg.APIURL)
	require.Equal(t, "sekrit", cfg.APIKey)
	require.Equal(t, 500*time.Millisecond, cfg.RosterInterval)
}
