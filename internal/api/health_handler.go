package api

import (
	"encoding/json"
	"net/http"

	"github.com/vikasavnish/marketaggregator/internal/cache"
)

// HealthHandler reports liveness plus enough live state (cache size) to be
// useful as more than a static ping, per spec.md §6's "GET /health →
// liveness probe".
func HealthHandler(c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "ok",
			"cache_size": c.Len(),
		})
	}
}
