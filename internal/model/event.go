package model

// EventKind tags an Event's variant (spec.md §3, §6).
type EventKind string

const (
	EventPickup            EventKind = "pickup"
	EventDelivery           EventKind = "delivery"
	EventInternal           EventKind = "internal"
	EventRequestSubmitted   EventKind = "request_submitted"
	EventRequestAccepted    EventKind = "request_accepted"
	EventRequestRejected    EventKind = "request_rejected"
	EventRequestOffered     EventKind = "request_offered"
)

// kindOrder implements the event ordering tiebreak from spec.md §5:
// "Pickup < Delivery < Internal < RequestSubmitted < RequestOffered <
// RequestAccepted < RequestRejected".
var kindOrder = map[EventKind]int{
	EventPickup:          0,
	EventDelivery:         1,
	EventInternal:         2,
	EventRequestSubmitted: 3,
	EventRequestOffered:   4,
	EventRequestAccepted:  5,
	EventRequestRejected:  6,
}

// KindRank returns the event kind's position in the total-order tiebreak.
func (k EventKind) KindRank() int {
	r, ok := kindOrder[k]
	if !ok {
		panic("model: unknown event kind " + string(k))
	}
	return r
}

// OfferedWindows is the payload attached to a RequestOffered event
// (spec.md §6).
type OfferedWindows struct {
	EarliestPickup  float64 `json:"east_pu"`
	LatestPickup    float64 `json:"last_pu"`
	EarliestDropoff float64 `json:"east_do"`
	LatestDropoff   float64 `json:"last_do"`
}

// Event is an append-only record of something that happened in the
// simulation (spec.md §3, §6). VehicleID is meaningful only when
// HasVehicle is true; events with no vehicle (RequestSubmitted,
// RequestRejected) leave it 0.
type Event struct {
	Kind      EventKind       `json:"kind"`
	Timestamp float64         `json:"timestamp"`
	RequestID int64           `json:"request_id,omitempty"`
	VehicleID int64           `json:"vehicle_id,omitempty"`
	HasVehicle bool           `json:"-"`
	Payload   *OfferedWindows `json:"payload,omitempty"`
}

// Less implements the total event order from spec.md §5:
// (timestamp, event_kind_tiebreak, vehicle_id, request_id).
func (e Event) Less(other Event) bool {
	if e.Timestamp != other.Timestamp {
		return e.Timestamp < other.Timestamp
	}
	if e.Kind.KindRank() != other.Kind.KindRank() {
		return e.Kind.KindRank() < other.Kind.KindRank()
	}
	if e.VehicleID != other.VehicleID {
		return e.VehicleID < other.VehicleID
	}
	return e.RequestID < other.RequestID
}
