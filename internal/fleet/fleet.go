// Package fleet orchestrates many VehicleState instances through one
// simulation loop: fast-forward, parallel dispatch, arbitration, commit,
// in strict event order (spec.md §4.4, §5).
package fleet

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/vehicle"
)

// RequestSource yields the requests that become known at or before now.
// A source must not return the same request twice.
type RequestSource[L loc.Loc] interface {
	Poll(now float64) []*model.Request[L]
}

// Options tunes FleetState's worker pool and failure handling.
type Options struct {
	// WorkerLimit bounds the number of concurrent HandleRequest calls per
	// simulation tick (spec.md §5 "fork-join ... bounded worker pool").
	// 0 means unbounded.
	WorkerLimit int

	// DispatchTimeout bounds a single vehicle's HandleRequest call. Zero
	// disables the timeout.
	DispatchTimeout time.Duration
}

// FleetState holds every vehicle in the simulation and the request
// source feeding it.
type FleetState[L loc.Loc] struct {
	Vehicles map[int64]*vehicle.VehicleState[L]
	Source   RequestSource[L]
	Opts     Options
}

// New builds an empty FleetState; add vehicles with AddVehicle before the
// first Step.
func New[L loc.Loc](source RequestSource[L], opts Options) *FleetState[L] {
	return &FleetState[L]{
		Vehicles: make(map[int64]*vehicle.VehicleState[L]),
		Source:   source,
		Opts:     opts,
	}
}

// AddVehicle registers a vehicle with the fleet.
func (fs *FleetState[L]) AddVehicle(v *vehicle.VehicleState[L]) {
	fs.Vehicles[v.VehicleID] = v
}

// dispatchOffer is one vehicle's answer to a request, paired with the id
// that answered it (arbitration needs the id for the tie-break).
type dispatchOffer[L loc.Loc] struct {
	vehicleID int64
	result    *model.InsertionResult[L]
}

// Step runs one simulation round at time now: fast-forwards every
// vehicle, polls the request source, dispatches each new request against
// every vehicle in parallel, arbitrates a winner, commits, and returns
// every event produced, in the total order from spec.md §5.
func (fs *FleetState[L]) Step(ctx context.Context, now float64) []model.Event {
	var events []model.Event

	for _, v := range fs.Vehicles {
		events = append(events, v.FastForward(now)...)
	}

	for _, req := range fs.Source.Poll(now) {
		events = append(events, model.Event{
			Kind:      model.EventRequestSubmitted,
			Timestamp: req.CreationTS,
			RequestID: req.ID,
		})

		offers := fs.collectOffers(ctx, req)
		winnerID, winner := arbitrate(offers)

		if winner == nil || !winner.Feasible() {
			events = append(events, model.Event{
				Kind:      model.EventRequestRejected,
				Timestamp: now,
				RequestID: req.ID,
			})
			continue
		}

		windows := winner.Windows()
		events = append(events, model.Event{
			Kind:      model.EventRequestOffered,
			Timestamp: now,
			RequestID: req.ID,
			VehicleID: winnerID,
			HasVehicle: true,
			Payload:   &windows,
		})

		fs.Vehicles[winnerID].Commit(winner)

		events = append(events, model.Event{
			Kind:       model.EventRequestAccepted,
			Timestamp:  now,
			RequestID:  req.ID,
			VehicleID:  winnerID,
			HasVehicle: true,
		})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Less(events[j]) })
	return events
}

// collectOffers runs HandleRequest against every vehicle concurrently,
// bounded by Opts.WorkerLimit. A worker that panics or times out offers
// +Inf cost and logs a warning instead of failing the whole round
// (spec.md §7 "Worker failure").
func (fs *FleetState[L]) collectOffers(ctx context.Context, req *model.Request[L]) []dispatchOffer[L] {
	offers := make([]dispatchOffer[L], len(fs.Vehicles))
	ids := make([]int64, 0, len(fs.Vehicles))
	for id := range fs.Vehicles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	g, gctx := errgroup.WithContext(ctx)
	if fs.Opts.WorkerLimit > 0 {
		g.SetLimit(fs.Opts.WorkerLimit)
	}

	for slot, id := range ids {
		slot, id := slot, id
		v := fs.Vehicles[id]
		g.Go(func() error {
			offers[slot] = dispatchOffer[L]{vehicleID: id, result: fs.safeDispatch(gctx, v, req)}
			return nil
		})
	}
	_ = g.Wait() // workers never return an error; failures degrade in-band

	return offers
}

// safeDispatch calls v.HandleRequest under a recover guard and an
// optional deadline, converting either failure mode into an infeasible
// (+Inf) offer rather than propagating it (spec.md §7).
func (fs *FleetState[L]) safeDispatch(ctx context.Context, v *vehicle.VehicleState[L], req *model.Request[L]) (result *model.InsertionResult[L]) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[fleet] vehicle %d: dispatch panic, degrading to infeasible: %v", v.VehicleID, r)
			result = infeasible[L]()
		}
	}()

	if fs.Opts.DispatchTimeout <= 0 {
		return v.HandleRequest(ctx, req)
	}

	dctx, cancel := context.WithTimeout(ctx, fs.Opts.DispatchTimeout)
	defer cancel()

	done := make(chan *model.InsertionResult[L], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[fleet] vehicle %d: dispatch panic, degrading to infeasible: %v", v.VehicleID, r)
				done <- infeasible[L]()
				return
			}
		}()
		done <- v.HandleRequest(dctx, req)
	}()

	select {
	case res := <-done:
		return res
	case <-dctx.Done():
		log.Printf("[fleet] vehicle %d: dispatch timed out, degrading to infeasible", v.VehicleID)
		return infeasible[L]()
	}
}

func infeasible[L loc.Loc]() *model.InsertionResult[L] {
	return &model.InsertionResult[L]{MinCost: math.Inf(1)}
}

// arbitrate picks the minimum-cost offer, tie-breaking on the smallest
// vehicle id (spec.md §4.4). Returns (0, nil) if offers is empty.
func arbitrate[L loc.Loc](offers []dispatchOffer[L]) (int64, *model.InsertionResult[L]) {
	var bestID int64
	var best *model.InsertionResult[L]
	for _, o := range offers {
		if best == nil || o.result.MinCost < best.MinCost || (o.result.MinCost == best.MinCost && o.vehicleID < bestID) {
			best = o.result
			bestID = o.vehicleID
		}
	}
	return bestID, best
}
