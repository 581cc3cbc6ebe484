// Package vehicle implements the per-vehicle state machine of spec.md
// §4.3: a stoplist that drains as simulation time advances, and a pure
// query for how a new request would slot into it.
package vehicle

import (
	"context"

	"github.com/ridepy/ridepy/internal/dispatcher"
	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

// VehicleState owns one vehicle's stoplist, the transport space it drives
// in, and the dispatcher used to evaluate candidate requests against it.
type VehicleState[L loc.Loc] struct {
	VehicleID    int64
	SeatCapacity int
	Space        space.TransportSpace[L]
	Dispatcher   dispatcher.Dispatcher[L]
	Stoplist     model.Stoplist[L]
}

// New builds a VehicleState starting at the given location and time, with
// an empty stoplist (just the CPE) — spec.md §3, §4.3.
func New[L loc.Loc](vehicleID int64, seatCapacity int, sp space.TransportSpace[L], d dispatcher.Dispatcher[L], now float64, at L) *VehicleState[L] {
	return &VehicleState[L]{
		VehicleID:    vehicleID,
		SeatCapacity: seatCapacity,
		Space:        sp,
		Dispatcher:   d,
		Stoplist:     model.NewStoplist(vehicleID, now, at),
	}
}

// FastForward advances the vehicle's state to time t: every stop whose
// estimated arrival time has passed is drained from the stoplist and
// turned into an Event, and the CPE is replaced by the vehicle's
// interpolated position at t (spec.md §4.3). It mutates vs.Stoplist;
// apart from Commit it is the only mutating operation on VehicleState —
// HandleRequest never touches it.
//
// FastForward(t) called twice with the same t is idempotent: the second
// call finds nothing left to drain and returns no events. t must be
// monotonically non-decreasing across calls; going backwards is an
// invariant breach.
func (vs *VehicleState[L]) FastForward(t float64) []model.Event {
	sl := vs.Stoplist
	cpe := sl.CPE()
	if t < cpe.EstimatedArrivalTime {
		panic("vehicle: invariant breach: FastForward called with t before current CPE time")
	}

	var events []model.Event
	lastIdx := 0
	for i := 1; i < len(sl); i++ {
		if sl[i].EstimatedArrivalTime > t {
			break
		}
		events = append(events, vs.eventFor(sl[i]))
		lastIdx = i
	}

	last := sl[lastIdx]
	newCPE := &model.Stop[L]{
		Request:        cpe.Request,
		Action:         model.ActionInternal,
		EstimatedArrivalTime: t,
		OccupancyAfter: last.OccupancyAfter,
		TimeWindowMin:  0,
		TimeWindowMax:  cpe.TimeWindowMax,
	}

	depart := last.EstimatedDepartureTime()
	switch {
	case lastIdx+1 >= len(sl):
		newCPE.Location = last.Location
	case t <= depart:
		newCPE.Location = last.Location
	default:
		next := sl[lastIdx+1].Location
		remaining := vs.Space.Time(last.Location, next) - (t - depart)
		newLoc, jump := vs.Space.InterpTime(last.Location, next, remaining)
		newCPE.Location = newLoc
		newCPE.EstimatedArrivalTime = t + jump
	}

	tail := model.Stoplist[L]{newCPE}
	if lastIdx+1 < len(sl) {
		tail = append(tail, sl[lastIdx+1:]...)
	}
	vs.Stoplist = tail

	return events
}

func (vs *VehicleState[L]) eventFor(s *model.Stop[L]) model.Event {
	var kind model.EventKind
	switch s.Action {
	case model.ActionPickup:
		kind = model.EventPickup
	case model.ActionDropoff:
		kind = model.EventDelivery
	default:
		kind = model.EventInternal
	}
	return model.Event{
		Kind:       kind,
		Timestamp:  s.EstimatedDepartureTime(),
		RequestID:  s.RequestID(),
		VehicleID:  vs.VehicleID,
		HasVehicle: true,
	}
}

// HandleRequest evaluates req against the vehicle's current stoplist and
// returns the insertion the dispatcher would make, without mutating any
// state (spec.md §4.3, §9). Safe to call concurrently with other
// vehicles' HandleRequest calls; it must not run concurrently with this
// vehicle's FastForward or Commit, which replace vs.Stoplist —
// FleetState's round runs FastForward, HandleRequest and Commit in
// strictly separate phases to guarantee that.
func (vs *VehicleState[L]) HandleRequest(_ context.Context, req *model.Request[L]) *model.InsertionResult[L] {
	return vs.Dispatcher.Dispatch(req, vs.Stoplist, vs.Space, vs.SeatCapacity)
}

// Commit installs result's stoplist as the vehicle's new state. Called by
// FleetState after arbitration picks this vehicle as the winner for a
// request (spec.md §4.4).
func (vs *VehicleState[L]) Commit(result *model.InsertionResult[L]) {
	vs.Stoplist = result.NewStoplist
}
