package dispatcher

// CostKind selects the metric an insertion search minimizes (spec.md §9
// Open Question, resolved in DESIGN.md: total travel time is canonical;
// absolute detour distance is kept as an explicit opt-in for callers that
// want the older distance-only convention).
type CostKind string

const (
	CostTotalTravelTime CostKind = "total_travel_time"
	CostAbsoluteDetour  CostKind = "absolute_detour"
)

// Options tunes a Dispatcher's search. An empty CostKind is treated as
// CostTotalTravelTime, so the zero value behaves like DefaultOptions.
type Options struct {
	// Debug gates per-candidate-slot [dispatch] logging in
	// BruteForceDispatcher.Dispatch: every capacity/window skip and every
	// new best-cost slot found is logged, plus a final summary line.
	Debug bool

	// MaxRelativeDetour bounds the ellipse pruning in EllipseDispatcher:
	// an insertion between S[i] and S[i+1] is only considered if its
	// direct leg detour stays within (1+MaxRelativeDetour) times
	// d(S[i], S[i+1]). Ignored by BruteForceDispatcher.
	MaxRelativeDetour float64

	// MergeRadius is the distance within which StopMergingDispatcher will
	// reuse an existing stop instead of inserting a new one. Ignored by
	// the other dispatchers.
	MergeRadius float64

	CostKind CostKind
}

// DefaultOptions matches the teacher's SetDefault convention: sane values
// a caller can start from and override selectively.
func DefaultOptions() Options {
	return Options{
		CostKind: CostTotalTravelTime,
	}
}
