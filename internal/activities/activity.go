package activities

import "time"

// Activity is one recorded exercise session (run/ride/walk/...).
// Built once from the raw input table and never mutated afterwards;
// filtering and aggregation always produce new values.
type Activity struct {
	Date        time.Time `json:"date"`
	DistanceKm  float64   `json:"distanceKm"`
	DurationMin float64   `json:"durationMin"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
}

// Table is a normalized activity collection. The Has* flags say which of
// the optional columns could be derived from the raw input; features
// depending on an absent column degrade instead of failing.
type Table struct {
	Activities  []Activity
	HasDistance bool
	HasDuration bool
	HasType     bool
}

func (t *Table) Len() int {
	return len(t.Activities)
}

// withActivities returns a new table with the same column flags.
func (t *Table) withActivities(activities []Activity) *Table {
	return &Table{
		Activities:  activities,
		HasDistance: t.HasDistance,
		HasDuration: t.HasDuration,
		HasType:     t.HasType,
	}
}

type DistanceCategory string

const (
	DistanceLight            DistanceCategory = "light"
	DistanceShort            DistanceCategory = "short"
	DistanceMedium           DistanceCategory = "medium"
	DistanceHalfMarathonPlus DistanceCategory = "half-marathon-plus"
)

// Label returns the display name of the category.
func (c DistanceCategory) Label() string {
	switch c {
	case DistanceLight:
		return "Light (< 5km)"
	case DistanceShort:
		return "Short (5-10km)"
	case DistanceMedium:
		return "Medium (10-21km)"
	case DistanceHalfMarathonPlus:
		return "Half marathon+ (>= 21km)"
	default:
		return string(c)
	}
}

// TimeWindow is a year/month/day selection narrowing the collection for
// display. Zero means "all" for each component. The window is an explicit
// value passed into the pipeline, recomputed from the client's selector
// state on every render.
type TimeWindow struct {
	Year  int
	Month int
	Day   int
}

// IsAll reports whether the window places no constraint at all.
func (w TimeWindow) IsAll() bool {
	return w.Year == 0 && w.Month == 0 && w.Day == 0
}

// Matches checks the three component filters conjunctively.
func (w TimeWindow) Matches(t time.Time) bool {
	if w.Year != 0 && t.Year() != w.Year {
		return false
	}
	if w.Month != 0 && int(t.Month()) != w.Month {
		return false
	}
	if w.Day != 0 && t.Day() != w.Day {
		return false
	}
	return true
}
