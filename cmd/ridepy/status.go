package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ridepy/ridepy/pkg/cache"
	"github.com/ridepy/ridepy/pkg/db"
)

// simStats is the subset of simulation progress exposed over HTTP. All
// fields are read/written under mu since the simulation loop and the
// status server run on different goroutines.
type simStats struct {
	mu sync.Mutex

	Tick      int64 `json:"tick"`
	Now       float64 `json:"now"`
	Submitted int64 `json:"requests_submitted"`
	Accepted  int64 `json:"requests_accepted"`
	Rejected  int64 `json:"requests_rejected"`
}

func (s *simStats) snapshot() simStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return simStats{
		Tick:      s.Tick,
		Now:       s.Now,
		Submitted: s.Submitted,
		Accepted:  s.Accepted,
		Rejected:  s.Rejected,
	}
}

// HealthResponse mirrors the teacher's /health shape: Status is "ok"
// unless a configured Postgres or Redis connection fails its ping, in
// which case it is "degraded" and the handler answers 503. Services lists
// only those two connections, when configured.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func healthHandler(pgPool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Services: make(map[string]string)}

		if pgPool != nil {
			if err := db.HealthCheck(r.Context(), pgPool); err != nil {
				resp.Status = "degraded"
				resp.Services["postgres"] = "unhealthy: " + err.Error()
			} else {
				resp.Services["postgres"] = "healthy"
			}
		}

		if redisClient != nil {
			if err := cache.HealthCheck(r.Context(), redisClient); err != nil {
				resp.Status = "degraded"
				resp.Services["redis"] = "unhealthy: " + err.Error()
			} else {
				resp.Services["redis"] = "healthy"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func statsHandler(stats *simStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats.snapshot())
	}
}
