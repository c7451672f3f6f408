package activities

import "errors"

var (
	// ErrNoValidActivities - the table became empty after dropping invalid
	// rows; nothing can be rendered at all.
	ErrNoValidActivities = errors.New("no valid activities after validation")
	// ErrEmptySelection - the time window matched nothing; the charts are
	// suppressed but the filter controls stay usable.
	ErrEmptySelection = errors.New("no activities in selection")
)

// Validate drops rows that cannot take part in any aggregation: missing
// date always, non-positive distance/duration when those columns exist.
// Validation is idempotent - a valid table passes through unchanged.
func Validate(table *Table) (*Table, error) {
	valid := make([]Activity, 0, len(table.Activities))
	for _, a := range table.Activities {
		if a.Date.IsZero() {
			continue
		}
		if table.HasDistance && a.DistanceKm <= 0 {
			continue
		}
		if table.HasDuration && a.DurationMin <= 0 {
			continue
		}
		valid = append(valid, a)
	}

	if len(valid) == 0 {
		return nil, ErrNoValidActivities
	}

	return table.withActivities(valid), nil
}

// ApplyWindow narrows the table to the given year/month/day selection.
// The component filters are independent equality predicates, so their
// order does not matter and an all-zero window is a no-op.
func ApplyWindow(table *Table, window TimeWindow) (*Table, error) {
	if window.IsAll() {
		return table, nil
	}

	selected := make([]Activity, 0, len(table.Activities))
	for _, a := range table.Activities {
		if window.Matches(a.Date) {
			selected = append(selected, a)
		}
	}

	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	return table.withActivities(selected), nil
}
