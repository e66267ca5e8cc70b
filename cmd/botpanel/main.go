package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robloxbot-cc/botpanel/internal/api"
	"github.com/robloxbot-cc/botpanel/internal/config"
	"github.com/robloxbot-cc/botpanel/internal/identity"
	"github.com/robloxbot-cc/botpanel/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "botpanel:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := openLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	ids := identity.Open(cfg.CachePath, log)
	defer ids.Close()

	client := api.NewClient(cfg.APIURL, cfg.APIKey, log)

	model := tui.NewModel(tui.Options{
		Client:             client,
		IDs:                ids,
		Log:                log,
		RosterInterval:     cfg.RosterInterval,
		RosterRetries:      cfg.RosterRetries,
		RosterStaleAfter:   cfg.RosterStaleAfter,
		NowPlayingInterval: cfg.NowPlayingInterval,
		QueueInterval:      cfg.QueueInterval,
	})

	log.Info("starting", zap.String("api", cfg.APIURL))
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// openLogger writes JSON lines to the configured file. The TUI owns
// the terminal, so stderr is not an option while it runs. An empty
// path disables logging entirely.
func openLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(f),
		zap.InfoLevel,
	)
	return zap.New(core), nil
}
