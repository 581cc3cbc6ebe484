package main

import (
	"math/rand"

	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
)

// syntheticSource is a minimal stand-in for the external request
// generator spec.md §1 mentions only by interface (it is out of scope
// here): it emits uniformly-random pickup/dropoff pairs inside a square
// service area at a configurable average rate.
type syntheticSource struct {
	rng                *rand.Rand
	rateHz             float64
	areaSide           float64
	pickupWindowWidth  float64
	deliveryWindowSlack float64

	nextID   int64
	lastPoll float64
	acc      float64

	// onRequest, if set, is called with every request as it is generated —
	// main.go uses this to mirror requests into the analytics store as
	// soon as they exist, rather than only once an event references them.
	onRequest func(*model.Request[loc.R2Loc])
}

func newSyntheticSource(seed int64, rateHz, areaSide float64) *syntheticSource {
	return &syntheticSource{
		rng:                 rand.New(rand.NewSource(seed)),
		rateHz:              rateHz,
		areaSide:             areaSide,
		pickupWindowWidth:   300,
		deliveryWindowSlack: 600,
	}
}

// Poll implements fleet.RequestSource. It accumulates fractional request
// counts between calls so an arbitrary step size still yields the
// configured long-run average rate.
func (s *syntheticSource) Poll(now float64) []*model.Request[loc.R2Loc] {
	elapsed := now - s.lastPoll
	s.lastPoll = now
	if elapsed <= 0 {
		return nil
	}
	s.acc += s.rateHz * elapsed

	var out []*model.Request[loc.R2Loc]
	for s.acc >= 1 {
		s.acc -= 1
		req := s.next(now)
		if s.onRequest != nil {
			s.onRequest(req)
		}
		out = append(out, req)
	}
	return out
}

func (s *syntheticSource) next(now float64) *model.Request[loc.R2Loc] {
	id := s.nextID
	s.nextID++

	origin := loc.R2Loc{X: s.rng.Float64() * s.areaSide, Y: s.rng.Float64() * s.areaSide}
	dest := loc.R2Loc{X: s.rng.Float64() * s.areaSide, Y: s.rng.Float64() * s.areaSide}

	pickupTW := model.TimeWindow{Min: now, Max: now + s.pickupWindowWidth}
	deliveryTW := model.TimeWindow{Min: now, Max: now + s.pickupWindowWidth + s.deliveryWindowSlack}

	return model.NewTransportationRequest(id, now, origin, dest, pickupTW, deliveryTW)
}
