package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rickgao/compound-data/internal/market"
	"github.com/rickgao/compound-data/internal/version"
	"github.com/rickgao/compound-data/internal/writer"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type marketView interface {
	Markets() []market.TokenMarket
	LastRefresh() time.Time
	LastRefreshError() error
}

type snapshotSource interface {
	Latest(ctx context.Context) ([]writer.SnapshotRow, error)
}

// newRouter creates the HTTP handler for health checks and market views.
func newRouter(db pinger, markets marketView, snapshots snapshotSource, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    version.Info   `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Get(),
			Components: make(map[string]any),
		}

		if err := db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		refresh := map[string]any{
			"markets": len(markets.Markets()),
		}
		if at := markets.LastRefresh(); !at.IsZero() {
			refresh["last_refresh"] = at.UTC()
		} else if health.Status == "healthy" {
			health.Status = "degraded"
		}
		// Refresh errors never reach callers of the enricher; surface the last one here.
		if err := markets.LastRefreshError(); err != nil {
			refresh["last_error"] = err.Error()
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
		}
		health.Components["market_refresh"] = refresh

		status := http.StatusOK
		if health.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health, logger)
	})

	r.Get("/markets", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"markets": markets.Markets(),
		}, logger)
	})

	r.Get("/markets/latest", func(w http.ResponseWriter, req *http.Request) {
		rows, err := snapshots.Latest(req.Context())
		if err != nil {
			logger.Error("read latest snapshot failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()}, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":     len(rows),
			"snapshots": rows,
		}, logger)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("write response failed", "error", err)
	}
}
