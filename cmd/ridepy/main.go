// Command ridepy runs an on-demand ridepooling dispatch simulation: a
// synthetic request stream, a fleet of vehicles, and a status server to
// watch it run.
package main

import (
	"bufio"
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ridepy/ridepy/config"
	"github.com/ridepy/ridepy/internal/analytics"
	"github.com/ridepy/ridepy/internal/dispatcher"
	"github.com/ridepy/ridepy/internal/fleet"
	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/middleware"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
	"github.com/ridepy/ridepy/internal/vehicle"
	"github.com/ridepy/ridepy/pkg/cache"
	"github.com/ridepy/ridepy/pkg/db"
)

const serviceAreaSide = 10_000.0 // distance units; arbitrary square service area

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Connect to PostgreSQL ───────────────────────────
	pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Printf("[ridepy] postgres unavailable, running without an analytics store: %v", err)
	} else {
		defer pgPool.Close()
		log.Println("[ridepy] postgres connected")
	}

	// ── Connect to Redis ────────────────────────────────
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("[ridepy] redis unavailable, running without it: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("[ridepy] redis connected")
	}

	var store *analytics.Store
	if pgPool != nil {
		store = analytics.NewStore(pgPool)
	}

	// ── Optional NDJSON events file sink ────────────────
	var eventsBuf *bufio.Writer
	var eventsWriter *analytics.NDJSONWriter
	if cfg.Simulation.EventsFilePath != "" {
		f, err := os.OpenFile(cfg.Simulation.EventsFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("[ridepy] events file unavailable, running without it: %v", err)
		} else {
			defer f.Close()
			eventsBuf = bufio.NewWriter(f)
			defer eventsBuf.Flush()
			eventsWriter = analytics.NewNDJSONWriter(eventsBuf)
			log.Printf("[ridepy] recording events to %s", cfg.Simulation.EventsFilePath)
		}
	}

	sp := buildSpace(cfg.Space)
	d := buildDispatcher(cfg.Dispatcher)

	source := newSyntheticSource(cfg.Simulation.RandomSeed, cfg.Simulation.RequestRateHz, serviceAreaSide)
	if store != nil {
		source.onRequest = func(req *model.Request[loc.R2Loc]) {
			if err := analytics.RecordRequest(ctx, store, req); err != nil {
				log.Printf("[ridepy] analytics: failed to record request %d: %v", req.ID, err)
			}
		}
	}

	fs := fleet.New[loc.R2Loc](
		source,
		fleet.Options{
			WorkerLimit:     cfg.Fleet.WorkerLimit,
			DispatchTimeout: cfg.Fleet.DispatchTimeout(),
		},
	)

	rng := rand.New(rand.NewSource(cfg.Simulation.RandomSeed))
	for i := 0; i < cfg.Fleet.VehicleCount; i++ {
		start := loc.R2Loc{X: rng.Float64() * serviceAreaSide, Y: rng.Float64() * serviceAreaSide}
		fs.AddVehicle(vehicle.New[loc.R2Loc](int64(i), cfg.Fleet.SeatCapacity, sp, d, 0, start))
	}

	stats := &simStats{}
	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler(pgPool, redisClient)).Methods(http.MethodGet)
	router.HandleFunc("/stats", statsHandler(stats)).Methods(http.MethodGet)

	handler := middleware.CORS(middleware.RequestLogger(middleware.Recoverer(router)))
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("[ridepy] status server listening on %s", cfg.Server.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[ridepy] status server error: %v", err)
		}
	}()

	go runSimulation(ctx, fs, store, eventsWriter, eventsBuf, stats, cfg.Simulation)

	<-ctx.Done()
	log.Println("[ridepy] shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("[ridepy] status server forced to shutdown: %v", err)
	}
	log.Println("[ridepy] stopped")
}

// runSimulation drives FleetState.Step forward until the horizon is
// reached or ctx is cancelled, recording every event and updating stats.
// Events go to the Postgres store and the NDJSON file sink independently —
// either, both, or neither may be configured.
func runSimulation(ctx context.Context, fs *fleet.FleetState[loc.R2Loc], store *analytics.Store, eventsWriter *analytics.NDJSONWriter, eventsBuf *bufio.Writer, stats *simStats, simCfg config.SimulationConfig) {
	for now := 0.0; now <= simCfg.HorizonSeconds; now += simCfg.StepSeconds {
		select {
		case <-ctx.Done():
			return
		default:
		}

		events := fs.Step(ctx, now)

		stats.mu.Lock()
		stats.Tick++
		stats.Now = now
		for _, ev := range events {
			switch ev.Kind {
			case model.EventRequestSubmitted:
				stats.Submitted++
			case model.EventRequestAccepted:
				stats.Accepted++
			case model.EventRequestRejected:
				stats.Rejected++
			}
		}
		stats.mu.Unlock()

		if store != nil {
			if err := store.RecordEvents(ctx, events); err != nil {
				log.Printf("[ridepy] analytics: %v", err)
			}
		}

		if eventsWriter != nil {
			if err := eventsWriter.WriteAll(events); err != nil {
				log.Printf("[ridepy] events file: %v", err)
			} else if err := eventsBuf.Flush(); err != nil {
				log.Printf("[ridepy] events file: flush: %v", err)
			}
		}
	}
	log.Println("[ridepy] simulation horizon reached")
}

func buildSpace(cfg config.SpaceConfig) space.TransportSpace[loc.R2Loc] {
	switch cfg.Kind {
	case "manhattan":
		return space.NewManhattan2D(cfg.Velocity)
	case "graph":
		log.Println("[ridepy] SPACE_KIND=graph requires discrete ILoc locations; falling back to euclidean for this entry point")
		return space.NewEuclidean2D(cfg.Velocity)
	default:
		return space.NewEuclidean2D(cfg.Velocity)
	}
}

func buildDispatcher(cfg config.DispatcherConfig) dispatcher.Dispatcher[loc.R2Loc] {
	opts := dispatcher.Options{
		CostKind:          dispatcher.CostKind(cfg.CostKind),
		MaxRelativeDetour: cfg.MaxRelativeDetour,
		MergeRadius:       cfg.MergeRadius,
		Debug:             cfg.Debug,
	}
	switch cfg.Kind {
	case "ellipse":
		return dispatcher.NewEllipseDispatcher[loc.R2Loc](opts)
	case "stop_merging":
		return dispatcher.NewStopMergingDispatcher[loc.R2Loc](opts)
	default:
		return dispatcher.NewBruteForceDispatcher[loc.R2Loc](opts)
	}
}
