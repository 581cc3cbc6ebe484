// Package config loads simulation configuration from environment
// variables (and an optional .env file), the same way across every
// deployment of the dispatch core.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the simulation needs to start.
type Config struct {
	Server     ServerConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Fleet      FleetConfig
	Space      SpaceConfig
	Dispatcher DispatcherConfig
	Simulation SimulationConfig
}

// ServerConfig holds the status/introspection HTTP server's settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

// PostgresConfig holds analytics-store connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     int    `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	DBName   string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns int32  `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns int32  `mapstructure:"POSTGRES_MIN_CONNS"`
}

// RedisConfig holds the optional distributed shortest-path-tree cache's
// connection settings (internal/cache, internal/space's GraphSpace).
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
}

// FleetConfig sizes the vehicle fleet.
type FleetConfig struct {
	VehicleCount      int `mapstructure:"FLEET_VEHICLE_COUNT"`
	SeatCapacity      int `mapstructure:"FLEET_SEAT_CAPACITY"`
	WorkerLimit       int `mapstructure:"FLEET_WORKER_LIMIT"`
	DispatchTimeoutMS int `mapstructure:"FLEET_DISPATCH_TIMEOUT_MS"`
}

// SpaceConfig selects and parametrizes the transport space (spec.md
// §4.1). Kind is one of "euclidean", "manhattan", "graph"; Velocity
// applies to all three. cmd/ridepy builds a Euclidean space for "graph",
// and GraphCacheSize is loaded but not read by any space constructor.
type SpaceConfig struct {
	Kind           string  `mapstructure:"SPACE_KIND"`
	Velocity       float64 `mapstructure:"SPACE_VELOCITY"`
	GraphCacheSize int     `mapstructure:"SPACE_GRAPH_CACHE_SIZE"`
}

// DispatcherConfig selects and parametrizes the insertion search (spec.md
// §4.2, §9). Kind is one of "brute_force", "ellipse", "stop_merging".
type DispatcherConfig struct {
	Kind              string  `mapstructure:"DISPATCHER_KIND"`
	CostKind          string  `mapstructure:"DISPATCHER_COST_KIND"`
	MaxRelativeDetour float64 `mapstructure:"DISPATCHER_MAX_RELATIVE_DETOUR"`
	MergeRadius       float64 `mapstructure:"DISPATCHER_MERGE_RADIUS"`
	Debug             bool    `mapstructure:"DISPATCHER_DEBUG"`
}

// SimulationConfig bounds the simulation run itself.
type SimulationConfig struct {
	HorizonSeconds float64 `mapstructure:"SIMULATION_HORIZON_SECONDS"`
	StepSeconds    float64 `mapstructure:"SIMULATION_STEP_SECONDS"`
	RequestRateHz  float64 `mapstructure:"SIMULATION_REQUEST_RATE_HZ"`
	RandomSeed     int64   `mapstructure:"SIMULATION_RANDOM_SEED"`

	// EventsFilePath, when non-empty, is opened and appended to as
	// newline-delimited JSON (analytics.NDJSONWriter) alongside whatever
	// Postgres store is configured — a file sink that needs no database
	// to inspect a run's event stream.
	EventsFilePath string `mapstructure:"SIMULATION_EVENTS_FILE"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DispatchTimeout converts DispatchTimeoutMS into a time.Duration, or 0
// (no timeout) when it's unset.
func (f *FleetConfig) DispatchTimeout() time.Duration {
	if f.DispatchTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(f.DispatchTimeoutMS) * time.Millisecond
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// ── Defaults ────────────────────────────────────────
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "5s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "ridepy")
	viper.SetDefault("POSTGRES_PASSWORD", "ridepy_secret")
	viper.SetDefault("POSTGRES_DB", "ridepy_db")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_MAX_CONNS", 50)
	viper.SetDefault("POSTGRES_MIN_CONNS", 10)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 100)

	viper.SetDefault("FLEET_VEHICLE_COUNT", 10)
	viper.SetDefault("FLEET_SEAT_CAPACITY", 4)
	viper.SetDefault("FLEET_WORKER_LIMIT", 8)
	viper.SetDefault("FLEET_DISPATCH_TIMEOUT_MS", 250)

	viper.SetDefault("SPACE_KIND", "euclidean")
	viper.SetDefault("SPACE_VELOCITY", 10.0)
	viper.SetDefault("SPACE_GRAPH_CACHE_SIZE", 10_000)

	viper.SetDefault("DISPATCHER_KIND", "brute_force")
	viper.SetDefault("DISPATCHER_COST_KIND", "total_travel_time")
	viper.SetDefault("DISPATCHER_MAX_RELATIVE_DETOUR", 0.2)
	viper.SetDefault("DISPATCHER_MERGE_RADIUS", 0.0)
	viper.SetDefault("DISPATCHER_DEBUG", false)

	viper.SetDefault("SIMULATION_HORIZON_SECONDS", 3600.0)
	viper.SetDefault("SIMULATION_STEP_SECONDS", 10.0)
	viper.SetDefault("SIMULATION_REQUEST_RATE_HZ", 0.05)
	viper.SetDefault("SIMULATION_RANDOM_SEED", 42)
	viper.SetDefault("SIMULATION_EVENTS_FILE", "")

	// Try to read .env file. If it doesn't exist (e.g., inside a
	// container), env vars injected by the orchestrator are used instead.
	_ = viper.ReadInConfig()

	cfg := &Config{}

	// ── Server ──────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         viper.GetString("SERVER_HOST"),
		Port:         viper.GetInt("SERVER_PORT"),
		ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  viper.GetDuration("SERVER_IDLE_TIMEOUT"),
	}

	// ── Postgres ────────────────────────────────────────
	cfg.Postgres = PostgresConfig{
		Host:     viper.GetString("POSTGRES_HOST"),
		Port:     viper.GetInt("POSTGRES_PORT"),
		User:     viper.GetString("POSTGRES_USER"),
		Password: viper.GetString("POSTGRES_PASSWORD"),
		DBName:   viper.GetString("POSTGRES_DB"),
		SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		MaxConns: viper.GetInt32("POSTGRES_MAX_CONNS"),
		MinConns: viper.GetInt32("POSTGRES_MIN_CONNS"),
	}

	// ── Redis ───────────────────────────────────────────
	cfg.Redis = RedisConfig{
		Host:     viper.GetString("REDIS_HOST"),
		Port:     viper.GetInt("REDIS_PORT"),
		Password: viper.GetString("REDIS_PASSWORD"),
		DB:       viper.GetInt("REDIS_DB"),
		PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
	}

	// ── Fleet ───────────────────────────────────────────
	cfg.Fleet = FleetConfig{
		VehicleCount:      viper.GetInt("FLEET_VEHICLE_COUNT"),
		SeatCapacity:      viper.GetInt("FLEET_SEAT_CAPACITY"),
		WorkerLimit:       viper.GetInt("FLEET_WORKER_LIMIT"),
		DispatchTimeoutMS: viper.GetInt("FLEET_DISPATCH_TIMEOUT_MS"),
	}

	// ── Space ───────────────────────────────────────────
	cfg.Space = SpaceConfig{
		Kind:           viper.GetString("SPACE_KIND"),
		Velocity:       viper.GetFloat64("SPACE_VELOCITY"),
		GraphCacheSize: viper.GetInt("SPACE_GRAPH_CACHE_SIZE"),
	}

	// ── Dispatcher ──────────────────────────────────────
	cfg.Dispatcher = DispatcherConfig{
		Kind:              viper.GetString("DISPATCHER_KIND"),
		CostKind:          viper.GetString("DISPATCHER_COST_KIND"),
		MaxRelativeDetour: viper.GetFloat64("DISPATCHER_MAX_RELATIVE_DETOUR"),
		MergeRadius:       viper.GetFloat64("DISPATCHER_MERGE_RADIUS"),
		Debug:             viper.GetBool("DISPATCHER_DEBUG"),
	}

	// ── Simulation ──────────────────────────────────────
	cfg.Simulation = SimulationConfig{
		HorizonSeconds: viper.GetFloat64("SIMULATION_HORIZON_SECONDS"),
		StepSeconds:    viper.GetFloat64("SIMULATION_STEP_SECONDS"),
		RequestRateHz:  viper.GetFloat64("SIMULATION_REQUEST_RATE_HZ"),
		RandomSeed:     viper.GetInt64("SIMULATION_RANDOM_SEED"),
		EventsFilePath: viper.GetString("SIMULATION_EVENTS_FILE"),
	}

	return cfg, nil
}
