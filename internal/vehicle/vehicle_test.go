package vehicle

import (
	"math"
	"testing"

	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

func twoStopVehicle() *VehicleState[loc.R2Loc] {
	sp := space.NewEuclidean2D(1)
	req := model.NewTransportationRequest[loc.R2Loc](
		1, 0, loc.R2Loc{X: 0, Y: 0}, loc.R2Loc{X: 10, Y: 0},
		model.TimeWindow{Min: 0, Max: math.Inf(1)}, model.TimeWindow{Min: 0, Max: math.Inf(1)},
	)
	cpe := &model.Stop[loc.R2Loc]{
		Location:             loc.R2Loc{X: 0, Y: 0},
		Request:              model.NewInternalRequest[loc.R2Loc](0, 0, loc.R2Loc{X: 0, Y: 0}),
		Action:               model.ActionInternal,
		EstimatedArrivalTime: 0,
		TimeWindowMax:        math.Inf(1),
	}
	pickup := &model.Stop[loc.R2Loc]{
		Location:             loc.R2Loc{X: 0, Y: 0},
		Request:              req,
		Action:               model.ActionPickup,
		EstimatedArrivalTime: 0,
		OccupancyAfter:       1,
		TimeWindowMax:        math.Inf(1),
	}
	dropoff := &model.Stop[loc.R2Loc]{
		Location:             loc.R2Loc{X: 10, Y: 0},
		Request:              req,
		Action:                model.ActionDropoff,
		EstimatedArrivalTime: 10,
		OccupancyAfter:       0,
		TimeWindowMax:        math.Inf(1),
	}

	return &VehicleState[loc.R2Loc]{
		VehicleID:    7,
		SeatCapacity: 4,
		Space:        sp,
		Dispatcher:   nil,
		Stoplist:     model.Stoplist[loc.R2Loc]{cpe, pickup, dropoff},
	}
}

func TestVehicleState_FastForwardDrainsAndInterpolates(t *testing.T) {
	vs := twoStopVehicle()

	events := vs.FastForward(5)
	if len(events) != 1 {
		t.Fatalf("expected 1 drained event (the pickup), got %d", len(events))
	}
	if events[0].Kind != model.EventPickup {
		t.Errorf("event kind = %v, want pickup", events[0].Kind)
	}
	if events[0].RequestID != 1 || events[0].VehicleID != 7 {
		t.Errorf("event = %+v, want request 1 / vehicle 7", events[0])
	}

	cpe := vs.Stoplist.CPE()
	if cpe.EstimatedArrivalTime != 5 {
		t.Errorf("CPE time = %v, want 5", cpe.EstimatedArrivalTime)
	}
	want := loc.R2Loc{X: 5, Y: 0} // halfway between pickup (0,0) and dropoff (10,0)
	if math.Abs(cpe.Location.X-want.X) > 1e-9 || math.Abs(cpe.Location.Y-want.Y) > 1e-9 {
		t.Errorf("CPE location = %v, want %v", cpe.Location, want)
	}
	if len(vs.Stoplist) != 2 {
		t.Errorf("stoplist after fast-forward has %d entries, want 2 (CPE + remaining dropoff)", len(vs.Stoplist))
	}
}

func TestVehicleState_FastForwardIsIdempotent(t *testing.T) {
	vs := twoStopVehicle()
	vs.FastForward(5)

	events := vs.FastForward(5)
	if len(events) != 0 {
		t.Errorf("second FastForward(5) produced %d events, want 0", len(events))
	}
}

func TestVehicleState_FastForwardPanicsOnTimeRegression(t *testing.T) {
	vs := twoStopVehicle()
	vs.FastForward(5)

	defer func() {
		if recover() == nil {
			t.Error("FastForward with an earlier t did not panic")
		}
	}()
	vs.FastForward(3)
}

func TestVehicleState_FastForwardDrainsToEnd(t *testing.T) {
	vs := twoStopVehicle()

	events := vs.FastForward(100)
	if len(events) != 2 {
		t.Fatalf("expected 2 drained events, got %d", len(events))
	}
	if events[1].Kind != model.EventDelivery {
		t.Errorf("second event kind = %v, want delivery", events[1].Kind)
	}
	if len(vs.Stoplist) != 1 {
		t.Errorf("stoplist after full drain has %d entries, want 1 (CPE only)", len(vs.Stoplist))
	}
	cpe := vs.Stoplist.CPE()
	if cpe.Location != (loc.R2Loc{X: 10, Y: 0}) {
		t.Errorf("CPE location after full drain = %v, want final stop's location", cpe.Location)
	}
}

func TestVehicleState_FastForwardStampsEventsAtDepartureNotArrival(t *testing.T) {
	sp := space.NewEuclidean2D(1)
	req := model.NewTransportationRequest[loc.R2Loc](
		1, 0, loc.R2Loc{X: 0, Y: 0}, loc.R2Loc{X: 10, Y: 0},
		model.TimeWindow{Min: 20, Max: math.Inf(1)}, model.TimeWindow{Min: 0, Max: math.Inf(1)},
	)
	cpe := &model.Stop[loc.R2Loc]{
		Location:             loc.R2Loc{X: 0, Y: 0},
		Request:              model.NewInternalRequest[loc.R2Loc](0, 0, loc.R2Loc{X: 0, Y: 0}),
		Action:               model.ActionInternal,
		EstimatedArrivalTime: 0,
		TimeWindowMax:        math.Inf(1),
	}
	// Vehicle arrives at t=5 but the pickup window doesn't open until
	// t=20 — drive-first servicing means it waits, so the Pickup event
	// must be stamped at the service instant (20), not the early
	// arrival instant (5).
	pickup := &model.Stop[loc.R2Loc]{
		Location:             loc.R2Loc{X: 0, Y: 0},
		Request:              req,
		Action:               model.ActionPickup,
		EstimatedArrivalTime: 5,
		OccupancyAfter:       1,
		TimeWindowMin:        20,
		TimeWindowMax:        math.Inf(1),
	}
	vs := &VehicleState[loc.R2Loc]{
		VehicleID:    1,
		SeatCapacity: 4,
		Space:        sp,
		Stoplist:     model.Stoplist[loc.R2Loc]{cpe, pickup},
	}

	events := vs.FastForward(20)
	if len(events) != 1 {
		t.Fatalf("expected 1 drained event, got %d", len(events))
	}
	if events[0].Timestamp != 20 {
		t.Errorf("event timestamp = %v, want 20 (the wait-adjusted departure time, not the 5 arrival time)", events[0].Timestamp)
	}
}

func TestVehicleState_FastForwardAccountsForGraphJumpResidual(t *testing.T) {
	// An asymmetric-weight 4-node cycle: shortest path 0->2 is via node 1
	// (cost 2), unambiguous — unlike a symmetric unit-weight cycle.
	edges := []space.GraphEdge{
		{U: 0, V: 1, Weight: 1},
		{U: 1, V: 2, Weight: 1},
		{U: 2, V: 3, Weight: 3},
		{U: 3, V: 0, Weight: 3},
	}
	sp := space.NewGraphSpace(edges, 1, nil)

	cpe := &model.Stop[loc.ILoc]{
		Location:             loc.ILoc(0),
		Request:              model.NewInternalRequest[loc.ILoc](0, 0, loc.ILoc(0)),
		Action:               model.ActionInternal,
		EstimatedArrivalTime: 0,
		TimeWindowMax:        math.Inf(1),
	}
	dropoff := &model.Stop[loc.ILoc]{
		Location:             loc.ILoc(2),
		Request:              model.NewTransportationRequest[loc.ILoc](1, 0, loc.ILoc(0), loc.ILoc(2), model.TimeWindow{Max: math.Inf(1)}, model.TimeWindow{Max: math.Inf(1)}),
		Action:                model.ActionDropoff,
		EstimatedArrivalTime: 2, // dist(0,2) = 2 at velocity 1
		TimeWindowMax:        math.Inf(1),
	}
	vs := &VehicleState[loc.ILoc]{
		VehicleID:    1,
		SeatCapacity: 4,
		Space:        sp,
		Stoplist:     model.Stoplist[loc.ILoc]{cpe, dropoff},
	}

	// At t=0.5 the vehicle is mid-edge between node 0 and node 1 (which
	// sits at forward-distance 1 along the shortest path). InterpTime
	// reports node 1 as not yet reached, with a 0.5 residual — that
	// residual must be added to t, not discarded.
	events := vs.FastForward(0.5)
	if len(events) != 0 {
		t.Fatalf("expected no drained events yet, got %d", len(events))
	}
	cpe2 := vs.Stoplist.CPE()
	if cpe2.Location != loc.ILoc(1) {
		t.Errorf("CPE location = %v, want node 1", cpe2.Location)
	}
	if math.Abs(cpe2.EstimatedArrivalTime-1.0) > 1e-9 {
		t.Errorf("CPE time = %v, want 1.0 (t=0.5 + jump residual 0.5)", cpe2.EstimatedArrivalTime)
	}
}

func TestVehicleState_HandleRequestDoesNotMutateState(t *testing.T) {
	sp := space.NewEuclidean2D(1)
	vs := New[loc.R2Loc](1, 4, sp, stubDispatcher[loc.R2Loc]{}, 0, loc.R2Loc{X: 0, Y: 0})
	before := len(vs.Stoplist)

	req := model.NewTransportationRequest[loc.R2Loc](
		1, 0, loc.R2Loc{X: 1, Y: 0}, loc.R2Loc{X: 2, Y: 0},
		model.TimeWindow{Min: 0, Max: math.Inf(1)}, model.TimeWindow{Min: 0, Max: math.Inf(1)},
	)
	_ = vs.HandleRequest(nil, req)

	if len(vs.Stoplist) != before {
		t.Errorf("HandleRequest mutated the stoplist: before=%d after=%d", before, len(vs.Stoplist))
	}
}

// stubDispatcher returns a fixed, always-infeasible result — enough to
// exercise HandleRequest's pure pass-through without dragging in the real
// search.
type stubDispatcher[L loc.Loc] struct{}

func (stubDispatcher[L]) Dispatch(_ *model.Request[L], _ model.Stoplist[L], _ space.TransportSpace[L], _ int) *model.InsertionResult[L] {
	return &model.InsertionResult[L]{MinCost: math.Inf(1)}
}
