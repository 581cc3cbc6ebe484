// Package analytics persists the simulation's event stream (spec.md §6)
// so it can be queried after the fact, independent of how the simulation
// itself is driven.
package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
)

// Store writes events into the stops/requests tables of spec.md §6.
// Every write is its own statement — unlike the booking domain this
// replaces, events never need a multi-row transaction: each one is an
// independent, append-only fact.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an already-connected pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// RecordRequest inserts a request's submission record. Safe to call
// exactly once per request, at RequestSubmitted time. A package-level
// function rather than a method: Store isn't generic over Loc, but the
// request it records is.
func RecordRequest[L loc.Loc](ctx context.Context, s *Store, req *model.Request[L]) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO requests (id, kind, creation_ts, pickup_tw_min, pickup_tw_max, delivery_tw_min, delivery_tw_max)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, req.ID, req.Kind, req.CreationTS, req.PickupTW.Min, req.PickupTW.Max, req.DeliveryTW.Min, req.DeliveryTW.Max)
	if err != nil {
		return fmt.Errorf("analytics: record request %d: %w", req.ID, err)
	}
	return nil
}

// RecordEvent appends one simulation event to the stops table.
func (s *Store) RecordEvent(ctx context.Context, ev model.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO stops (kind, timestamp, request_id, vehicle_id, has_vehicle)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.Kind, ev.Timestamp, ev.RequestID, ev.VehicleID, ev.HasVehicle)
	if err != nil {
		return fmt.Errorf("analytics: record event %s: %w", ev.Kind, err)
	}
	return nil
}

// RecordEvents writes a batch of events in iteration order. The caller
// is expected to have already sorted them by the total order from
// spec.md §5; this just persists whatever order it receives.
func (s *Store) RecordEvents(ctx context.Context, events []model.Event) error {
	for _, ev := range events {
		if err := s.RecordEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// Schema is the DDL this store assumes has already been applied. It is
// exported as documentation; migrations are expected to live outside
// this module.
const Schema = `
CREATE TABLE IF NOT EXISTS requests (
	id               BIGINT PRIMARY KEY,
	kind             TEXT NOT NULL,
	creation_ts      DOUBLE PRECISION NOT NULL,
	pickup_tw_min    DOUBLE PRECISION,
	pickup_tw_max    DOUBLE PRECISION,
	delivery_tw_min  DOUBLE PRECISION,
	delivery_tw_max  DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS stops (
	id          BIGSERIAL PRIMARY KEY,
	kind        TEXT NOT NULL,
	timestamp   DOUBLE PRECISION NOT NULL,
	request_id  BIGINT,
	vehicle_id  BIGINT,
	has_vehicle BOOLEAN NOT NULL DEFAULT FALSE
);
`
