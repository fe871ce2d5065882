package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"poke-battle-logger/domain/progress"
	"poke-battle-logger/infrastructure/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatusStore reads persisted video status
type StatusStore interface {
	Get(ctx context.Context, videoID string) (*storage.Status, error)
}

type statusResponse struct {
	VideoID string         `json:"video_id"`
	Stage   progress.Stage `json:"stage"`
	Percent int            `json:"percent"`
	Message string         `json:"message,omitempty"`
}

// NewRouter serves the websocket hub and status lookups. store may be nil,
// in which case status comes from the hub's last update only.
func NewRouter(hub *Hub, store StatusStore) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/ws", hub)
	r.Get("/status/{videoID}", statusHandler(hub, store))

	return r
}

func statusHandler(hub *Hub, store StatusStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "videoID")

		if u, ok := hub.Latest(videoID); ok {
			writeJSON(w, statusResponse{VideoID: videoID, Stage: u.Stage, Percent: u.Percent, Message: u.Message})
			return
		}
		if store == nil {
			http.Error(w, "Status not found", http.StatusNotFound)
			return
		}

		s, err := store.Get(r.Context(), videoID)
		if errors.Is(err, storage.ErrStatusNotFound) {
			http.Error(w, "Status not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Error loading status", http.StatusInternalServerError)
			return
		}
		writeJSON(w, statusResponse{VideoID: s.VideoID, Stage: s.Stage, Percent: s.Percent, Message: s.Message})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
