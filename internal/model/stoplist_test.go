package model

import (
	"math"
	"testing"

	"github.com/ridepy/ridepy/internal/loc"
)

// constTimeSpace charges a fixed travel time between any two distinct
// points — enough to exercise Validate's arrival/departure arithmetic
// without pulling in the real space package.
type constTimeSpace struct{ t float64 }

func (s constTimeSpace) Time(u, v loc.R2Loc) float64 {
	if u == v {
		return 0
	}
	return s.t
}

func validStoplist() Stoplist[loc.R2Loc] {
	req := NewTransportationRequest[loc.R2Loc](
		1, 0, loc.R2Loc{X: 0, Y: 0}, loc.R2Loc{X: 1, Y: 0},
		TimeWindow{Min: 0, Max: math.Inf(1)}, TimeWindow{Min: 0, Max: math.Inf(1)},
	)
	return Stoplist[loc.R2Loc]{
		{
			Location:             loc.R2Loc{X: 0, Y: 0},
			Request:              NewInternalRequest[loc.R2Loc](0, 0, loc.R2Loc{X: 0, Y: 0}),
			Action:               ActionInternal,
			EstimatedArrivalTime: 0,
			OccupancyAfter:       0,
			TimeWindowMax:        math.Inf(1),
		},
		{
			Location:             loc.R2Loc{X: 0, Y: 0},
			Request:              req,
			Action:               ActionPickup,
			EstimatedArrivalTime: 0,
			OccupancyAfter:       1,
			TimeWindowMax:        math.Inf(1),
		},
		{
			Location:             loc.R2Loc{X: 1, Y: 0},
			Request:              req,
			Action:                ActionDropoff,
			EstimatedArrivalTime: 1,
			OccupancyAfter:       0,
			TimeWindowMax:        math.Inf(1),
		},
	}
}

func TestStoplist_ValidateAcceptsAWellFormedStoplist(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Validate panicked on a well-formed stoplist: %v", r)
		}
	}()
	validStoplist().Validate(4, constTimeSpace{t: 1})
}

func TestStoplist_ValidatePanicsOnEmptyStoplist(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Validate did not panic on an empty stoplist")
		}
	}()
	Stoplist[loc.R2Loc]{}.Validate(4, constTimeSpace{t: 1})
}

func TestStoplist_ValidatePanicsWhenElementZeroIsNotCPE(t *testing.T) {
	sl := validStoplist()
	sl[0].Action = ActionPickup

	defer func() {
		if recover() == nil {
			t.Error("Validate did not panic when element 0 is not the CPE")
		}
	}()
	sl.Validate(4, constTimeSpace{t: 1})
}

func TestStoplist_ValidatePanicsOnOccupancyOutOfBounds(t *testing.T) {
	sl := validStoplist()
	sl[1].OccupancyAfter = 99

	defer func() {
		if recover() == nil {
			t.Error("Validate did not panic on out-of-bounds occupancy")
		}
	}()
	sl.Validate(4, constTimeSpace{t: 1})
}

func TestStoplist_ValidatePanicsOnNonMonotoneArrival(t *testing.T) {
	sl := validStoplist()
	sl[2].EstimatedArrivalTime = -5

	defer func() {
		if recover() == nil {
			t.Error("Validate did not panic on a non-monotone arrival time")
		}
	}()
	sl.Validate(4, constTimeSpace{t: 1})
}

func TestStoplist_ValidatePanicsOnDropoffBeforePickup(t *testing.T) {
	sl := validStoplist()
	// The CPE carries one rider so the swapped stops keep every occupancy
	// check satisfied and only the pickup/dropoff order is wrong.
	sl[0].OccupancyAfter = 1
	sl[1].Action, sl[2].Action = ActionDropoff, ActionPickup
	sl[1].OccupancyAfter, sl[2].OccupancyAfter = 0, 1

	defer func() {
		if recover() == nil {
			t.Error("Validate did not panic when a dropoff precedes its pickup")
		}
	}()
	sl.Validate(4, constTimeSpace{t: 1})
}

func TestStoplist_CloneIsIndependentOfOriginal(t *testing.T) {
	sl := validStoplist()
	clone := sl.Clone()
	clone[1].OccupancyAfter = 42

	if sl[1].OccupancyAfter == 42 {
		t.Error("Clone shares Stop pointers with the original")
	}
	if clone[1].Request != sl[1].Request {
		t.Error("Clone should share the underlying Request pointer")
	}
}
