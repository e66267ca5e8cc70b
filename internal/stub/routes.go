package stub

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/robloxbot-cc/botpanel/internal/api"
)

type verifyRequest struct {
	Username string `json:"username"`
}

type webCommandRequest struct {
	Username string            `json:"username"`
	Command  string            `json:"command"`
	Args     string            `json:"args,omitempty"`
	Keys     *api.MovementKeys `json:"keys,omitempty"`
}

// Routes builds the stub router. Route shapes and auth mirror the real
// backend: /api/* wants the X-API-Key header, the playback reads at
// the root are open.
func Routes(f *Fleet, apiKey string, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Use(requireKey(apiKey))
		r.Get("/bots/list", listBots(f, log))
		r.Post("/bots/{botID}/verify-user", verifyUser(f, log))
		r.Post("/bots/{botID}/web-command", webCommand(f, log))
	})
	r.Get("/now-playing", nowPlaying(f))
	r.Get("/queue", queueList(f))

	return r
}

func requireKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" && r.Header.Get("X-API-Key") != key {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func listBots(f *Fleet, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.list())
	}
}

func verifyUser(f *Fleet, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		botID := chi.URLParam(r, "botID")
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		resp := f.verify(botID, req.Username)
		log.Info("verify",
			zap.String("bot", botID),
			zap.String("username", req.Username),
			zap.Bool("in_server", resp.InServer),
		)
		writeJSON(w, resp)
	}
}

func webCommand(f *Fleet, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		botID := chi.URLParam(r, "botID")
		var req webCommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		resp := f.command(botID, req)
		if req.Command != "move" { // move spams at 10Hz, keep the log readable
			log.Info("command",
				zap.String("bot", botID),
				zap.String("command", req.Command),
				zap.Bool("success", resp.Success),
			)
		}
		writeJSON(w, resp)
	}
}

func nowPlaying(f *Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.nowPlaying())
	}
}

func queueList(f *Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.queueSnapshot())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
