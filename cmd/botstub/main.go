// botstub runs a fake bot backend on localhost for developing the
// panel without touching production. It seeds a small fleet, advances
// playback in real time, and honors the same routes and key checks as
// the real API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/robloxbot-cc/botpanel/internal/stub"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	apiKey := flag.String("api-key", "dev-key", "expected X-API-Key value")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*addr, *apiKey, log); err != nil {
		log.Fatal("stub exited", zap.Error(err))
	}
}

func run(addr, apiKey string, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fleet := stub.NewFleet()
	srv := &http.Server{
		Addr:    addr,
		Handler: stub.Routes(fleet, apiKey, log),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("stub listening", zap.String("addr", addr), zap.String("api_key", apiKey))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Playback advances in real time so the panel's pollers have
	// something moving to show.
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fleet.Tick(time.Second)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
