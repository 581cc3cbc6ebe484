package fleet

import (
	"context"
	"math"
	"testing"

	"github.com/ridepy/ridepy/internal/dispatcher"
	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
	"github.com/ridepy/ridepy/internal/vehicle"
)

// oneShotSource hands back a single request the first time Poll is called
// at or after releaseAt, then nothing ever again.
type oneShotSource struct {
	req       *model.Request[loc.R2Loc]
	releaseAt float64
	done      bool
}

func (s *oneShotSource) Poll(now float64) []*model.Request[loc.R2Loc] {
	if s.done || now < s.releaseAt {
		return nil
	}
	s.done = true
	return []*model.Request[loc.R2Loc]{s.req}
}

func newRequest(id int64) *model.Request[loc.R2Loc] {
	return model.NewTransportationRequest[loc.R2Loc](
		id, 0, loc.R2Loc{X: 1, Y: 0}, loc.R2Loc{X: 2, Y: 0},
		model.TimeWindow{Min: 0, Max: math.Inf(1)}, model.TimeWindow{Min: 0, Max: math.Inf(1)},
	)
}

func TestFleetState_StepArbitratesTiesBySmallestVehicleID(t *testing.T) {
	sp := space.NewEuclidean2D(1)
	d := dispatcher.NewBruteForceDispatcher[loc.R2Loc](dispatcher.DefaultOptions())

	src := &oneShotSource{req: newRequest(1), releaseAt: 0}
	fs := New[loc.R2Loc](src, Options{})

	// Three vehicles at the identical start location quote identical cost;
	// the lowest id (3) must win, regardless of map iteration order.
	fs.AddVehicle(vehicle.New[loc.R2Loc](9, 4, sp, d, 0, loc.R2Loc{X: 0, Y: 0}))
	fs.AddVehicle(vehicle.New[loc.R2Loc](3, 4, sp, d, 0, loc.R2Loc{X: 0, Y: 0}))
	fs.AddVehicle(vehicle.New[loc.R2Loc](5, 4, sp, d, 0, loc.R2Loc{X: 0, Y: 0}))

	events := fs.Step(context.Background(), 0)

	var accepted *model.Event
	for i := range events {
		if events[i].Kind == model.EventRequestAccepted {
			accepted = &events[i]
		}
	}
	if accepted == nil {
		t.Fatalf("expected a request_accepted event, got %+v", events)
	}
	if accepted.VehicleID != 3 {
		t.Errorf("winning vehicle = %d, want 3 (smallest id among equal-cost offers)", accepted.VehicleID)
	}
	if len(fs.Vehicles[3].Stoplist) <= 1 {
		t.Errorf("winning vehicle's stoplist was not committed")
	}
	if len(fs.Vehicles[9].Stoplist) != 1 || len(fs.Vehicles[5].Stoplist) != 1 {
		t.Errorf("losing vehicles must keep their original empty stoplist")
	}
}

func TestFleetState_StepRejectsWhenNoVehicleCanServe(t *testing.T) {
	sp := space.NewEuclidean2D(1)
	d := dispatcher.NewBruteForceDispatcher[loc.R2Loc](dispatcher.DefaultOptions())

	// Pickup window closes before any vehicle could arrive.
	req := model.NewTransportationRequest[loc.R2Loc](
		1, 0, loc.R2Loc{X: 10_000, Y: 0}, loc.R2Loc{X: 10_010, Y: 0},
		model.TimeWindow{Min: 0, Max: 1}, model.TimeWindow{Min: 0, Max: math.Inf(1)},
	)
	src := &oneShotSource{req: req, releaseAt: 0}
	fs := New[loc.R2Loc](src, Options{})
	fs.AddVehicle(vehicle.New[loc.R2Loc](1, 4, sp, d, 0, loc.R2Loc{X: 0, Y: 0}))

	events := fs.Step(context.Background(), 0)

	var sawRejected, sawAccepted bool
	for _, ev := range events {
		switch ev.Kind {
		case model.EventRequestRejected:
			sawRejected = true
		case model.EventRequestAccepted:
			sawAccepted = true
		}
	}
	if !sawRejected || sawAccepted {
		t.Errorf("expected only a rejection, got events %+v", events)
	}
}

// panicDispatcher always panics — used to exercise safeDispatch's recover
// path without depending on real timing for a timeout test.
type panicDispatcher[L loc.Loc] struct{}

func (panicDispatcher[L]) Dispatch(_ *model.Request[L], _ model.Stoplist[L], _ space.TransportSpace[L], _ int) *model.InsertionResult[L] {
	panic("boom")
}

func TestFleetState_StepSurvivesDispatchPanic(t *testing.T) {
	sp := space.NewEuclidean2D(1)
	src := &oneShotSource{req: newRequest(1), releaseAt: 0}
	fs := New[loc.R2Loc](src, Options{})
	fs.AddVehicle(vehicle.New[loc.R2Loc](1, 4, sp, panicDispatcher[loc.R2Loc]{}, 0, loc.R2Loc{X: 0, Y: 0}))

	events := fs.Step(context.Background(), 0)

	var sawRejected bool
	for _, ev := range events {
		if ev.Kind == model.EventRequestRejected {
			sawRejected = true
		}
	}
	if !sawRejected {
		t.Errorf("a panicking dispatcher should degrade to a rejection, not crash Step; got %+v", events)
	}
}

func TestArbitrate_TieBreaksOnSmallestVehicleID(t *testing.T) {
	offers := []dispatchOffer[loc.R2Loc]{
		{vehicleID: 9, result: &model.InsertionResult[loc.R2Loc]{MinCost: 5}},
		{vehicleID: 2, result: &model.InsertionResult[loc.R2Loc]{MinCost: 5}},
		{vehicleID: 7, result: &model.InsertionResult[loc.R2Loc]{MinCost: 10}},
	}
	id, best := arbitrate(offers)
	if id != 2 || best.MinCost != 5 {
		t.Errorf("arbitrate = (%d, %v), want (2, cost 5)", id, best.MinCost)
	}
}

func TestArbitrate_EmptyOffersReturnsNil(t *testing.T) {
	id, best := arbitrate[loc.R2Loc](nil)
	if best != nil || id != 0 {
		t.Errorf("arbitrate(nil) = (%d, %v), want (0, nil)", id, best)
	}
}
