package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/cache"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including database and cache connectivity
func ReadyCheck(pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, p := range pingers {
			if err := p.Ping(r.Context()); err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
				response.Error(w, http.StatusServiceUnavailable, response.CodeUnavailable, name+" not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// FlushCache deletes every cached entry of the application
func FlushCache(c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := c.Flush(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to flush cache")
			response.InternalError(w)
			return
		}

		response.OK(w, map[string]any{
			"message":      "cache flushed successfully",
			"keys_deleted": deleted,
		})
	}
}
