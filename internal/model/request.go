// Package model holds the dispatch core's data model: requests, stops,
// stoplists, events and insertion results (spec.md §3). Every type is
// generic over internal/loc.Loc so the same model serves continuous and
// discrete transport spaces.
package model

import "github.com/ridepy/ridepy/internal/loc"

// TimeWindow is an inclusive [Min, Max] bound on a service time. A zero
// Max is not special-cased — callers that want "no upper bound" use
// math.Inf(1), matching the CPE convention in spec.md §3.
type TimeWindow struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RequestKind tags a Request as carrying a passenger (Transportation) or
// marking a vehicle's current position (Internal, synthetic, per-vehicle).
type RequestKind string

const (
	KindTransportation RequestKind = "transportation"
	KindInternal        RequestKind = "internal"
)

// Request is immutable after creation and shared by every Stop that
// refers to it: a transportation request's pickup and dropoff stops hold
// the same *Request[L] pointer (spec.md §3, §9 — "shared request
// ownership"). Weak equality by ID is sufficient for serialisation.
type Request[L loc.Loc] struct {
	ID         int64       `json:"id"`
	Kind       RequestKind `json:"kind"`
	CreationTS float64     `json:"creation_ts"`

	// Transportation fields (zero for Internal requests).
	Origin      L          `json:"origin,omitempty"`
	Destination L          `json:"destination,omitempty"`
	PickupTW    TimeWindow `json:"pickup_tw,omitempty"`
	DeliveryTW  TimeWindow `json:"delivery_tw,omitempty"`

	// Internal fields (zero for Transportation requests).
	Location L `json:"location,omitempty"`
}

// NewTransportationRequest constructs a passenger request.
func NewTransportationRequest[L loc.Loc](id int64, creationTS float64, origin, destination L, pickupTW, deliveryTW TimeWindow) *Request[L] {
	return &Request[L]{
		ID:          id,
		Kind:        KindTransportation,
		CreationTS:  creationTS,
		Origin:      origin,
		Destination: destination,
		PickupTW:    pickupTW,
		DeliveryTW:  deliveryTW,
	}
}

// NewInternalRequest constructs the synthetic, per-vehicle request that
// backs a stoplist's CPE (spec.md §3, §9). Every vehicle owns exactly one,
// for its whole lifetime.
func NewInternalRequest[L loc.Loc](id int64, creationTS float64, location L) *Request[L] {
	return &Request[L]{
		ID:         id,
		Kind:       KindInternal,
		CreationTS: creationTS,
		Location:   location,
	}
}
