package dispatcher

import (
	"math"
	"testing"

	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

func mergeScenarioStoplist() model.Stoplist[loc.R2Loc] {
	onboard := model.NewTransportationRequest[loc.R2Loc](
		99, 0, loc.R2Loc{X: 0, Y: 0}, loc.R2Loc{X: 10, Y: 0},
		model.TimeWindow{Min: 0, Max: math.Inf(1)}, model.TimeWindow{Min: 0, Max: math.Inf(1)},
	)
	cpe := &model.Stop[loc.R2Loc]{
		Location:             loc.R2Loc{X: 0, Y: 0},
		Request:              model.NewInternalRequest[loc.R2Loc](0, 0, loc.R2Loc{X: 0, Y: 0}),
		Action:               model.ActionInternal,
		EstimatedArrivalTime: 0,
		TimeWindowMax:        math.Inf(1),
	}
	dropoff := &model.Stop[loc.R2Loc]{
		Location:             loc.R2Loc{X: 10, Y: 0},
		Request:              onboard,
		Action:                model.ActionDropoff,
		EstimatedArrivalTime: 10,
		TimeWindowMax:        math.Inf(1),
	}
	return model.Stoplist[loc.R2Loc]{cpe, dropoff}
}

func TestStopMergingDispatcher_SnapsOriginToNearbyStop(t *testing.T) {
	sp := space.NewEuclidean2D(1)
	d := NewStopMergingDispatcher[loc.R2Loc](Options{MergeRadius: 1})

	// Origin is 0.05 away from the existing dropoff at (10, 0); within the
	// merge radius it should snap there instead of opening a new stop.
	req := model.NewTransportationRequest[loc.R2Loc](
		1, 0, loc.R2Loc{X: 10.05, Y: 0}, loc.R2Loc{X: 50, Y: 0},
		model.TimeWindow{Min: 0, Max: math.Inf(1)}, model.TimeWindow{Min: 0, Max: math.Inf(1)},
	)

	result := d.Dispatch(req, mergeScenarioStoplist(), sp, 4)
	if !result.Feasible() {
		t.Fatalf("expected a feasible insertion, got MinCost=%v", result.MinCost)
	}

	var pickup *model.Stop[loc.R2Loc]
	for _, s := range result.NewStoplist {
		if s.Action == model.ActionPickup && s.RequestID() == req.ID {
			pickup = s
		}
	}
	if pickup == nil {
		t.Fatalf("no pickup stop found for request %d", req.ID)
	}
	if pickup.Location != (loc.R2Loc{X: 10, Y: 0}) {
		t.Errorf("pickup location = %v, want snapped to the existing stop at {10 0}", pickup.Location)
	}
}

func TestStopMergingDispatcher_ZeroRadiusIsPassthrough(t *testing.T) {
	sp := space.NewEuclidean2D(1)
	d := NewStopMergingDispatcher[loc.R2Loc](Options{MergeRadius: 0})

	req := model.NewTransportationRequest[loc.R2Loc](
		1, 0, loc.R2Loc{X: 10.05, Y: 0}, loc.R2Loc{X: 50, Y: 0},
		model.TimeWindow{Min: 0, Max: math.Inf(1)}, model.TimeWindow{Min: 0, Max: math.Inf(1)},
	)

	result := d.Dispatch(req, mergeScenarioStoplist(), sp, 4)
	if !result.Feasible() {
		t.Fatalf("expected a feasible insertion, got MinCost=%v", result.MinCost)
	}

	var pickup *model.Stop[loc.R2Loc]
	for _, s := range result.NewStoplist {
		if s.Action == model.ActionPickup && s.RequestID() == req.ID {
			pickup = s
		}
	}
	if pickup == nil {
		t.Fatalf("no pickup stop found for request %d", req.ID)
	}
	if pickup.Location != req.Origin {
		t.Errorf("pickup location = %v, want the unmodified request origin %v (MergeRadius=0 disables snapping)", pickup.Location, req.Origin)
	}
}
