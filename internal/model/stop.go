package model

import "github.com/ridepy/ridepy/internal/loc"

// StopAction tags what a Stop does when the vehicle reaches it.
type StopAction string

const (
	ActionPickup   StopAction = "pickup"
	ActionDropoff  StopAction = "dropoff"
	ActionInternal StopAction = "internal"
)

// Stop is one entry in a vehicle's Stoplist (spec.md §3).
type Stop[L loc.Loc] struct {
	Location             L          `json:"location"`
	Request              *Request[L] `json:"-"`
	Action                StopAction `json:"action"`
	EstimatedArrivalTime float64    `json:"estimated_arrival_time"`
	OccupancyAfter       int        `json:"occupancy_after_servicing"`
	TimeWindowMin        float64    `json:"time_window_min"`
	TimeWindowMax        float64    `json:"time_window_max"`
}

// EstimatedDepartureTime is the drive-first departure time: the vehicle
// waits only if it arrives before the stop's earliest allowed service
// time (spec.md §3).
func (s *Stop[L]) EstimatedDepartureTime() float64 {
	if s.TimeWindowMin > s.EstimatedArrivalTime {
		return s.TimeWindowMin
	}
	return s.EstimatedArrivalTime
}

// RequestID returns the id of the request this stop services, or -1 for a
// stop with no request attached (should not occur in a valid stoplist).
func (s *Stop[L]) RequestID() int64 {
	if s.Request == nil {
		return -1
	}
	return s.Request.ID
}

// Clone returns a shallow copy of the stop. Stops are small value-ish
// records; the Request pointer is intentionally shared (spec.md §9).
func (s *Stop[L]) Clone() *Stop[L] {
	c := *s
	return &c
}
