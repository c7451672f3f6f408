package activities

import (
	"errors"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrNoDateColumn = errors.New("no date column found")

// RawTable is the untouched input table: a header plus one string row per
// activity, with whatever column vocabulary the source happened to use.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// column name priority lists, first present wins
var (
	dateColumns     = []string{"date", "start_date", "start_date_local"}
	durationColumns = []string{"moving_time", "elapsed_time", "duration"}
	typeColumns     = []string{"sport_type", "type", "activity_type"}
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize maps the raw table onto the canonical schema: date,
// distance_km, duration_min, type, name. A missing date column is fatal;
// unparsable dates become zero times and are dropped by validation later.
// Distance and duration are converted from meters and seconds when only
// the raw Strava columns are present. Columns that cannot be derived at
// all just clear the corresponding Has* flag.
func Normalize(raw *RawTable) (*Table, error) {
	dateCol := firstPresent(raw.Columns, dateColumns)
	if dateCol == "" {
		return nil, ErrNoDateColumn
	}

	distanceCol, distanceInMeters := "", false
	if hasColumn(raw.Columns, "distance_km") {
		distanceCol = "distance_km"
	} else if hasColumn(raw.Columns, "distance") {
		distanceCol, distanceInMeters = "distance", true
	}

	durationCol, durationInSeconds := "", false
	if hasColumn(raw.Columns, "duration_min") {
		durationCol = "duration_min"
	} else if col := firstPresent(raw.Columns, durationColumns); col != "" {
		durationCol, durationInSeconds = col, true
	}

	typeCol := firstPresent(raw.Columns, typeColumns)

	table := &Table{
		HasDistance: distanceCol != "",
		HasDuration: durationCol != "",
		HasType:     typeCol != "",
	}

	for _, row := range raw.Rows {
		a := Activity{
			Date: parseDate(row[dateCol]),
			Name: row["name"],
		}
		if distanceCol != "" {
			a.DistanceKm = parseNumber(row[distanceCol])
			if distanceInMeters {
				a.DistanceKm /= 1000
			}
		}
		if durationCol != "" {
			a.DurationMin = parseNumber(row[durationCol])
			if durationInSeconds {
				a.DurationMin /= 60
			}
		}
		if typeCol != "" {
			a.Type = row[typeCol]
		}
		table.Activities = append(table.Activities, a)
	}

	log.Debugf(
		"normalized %d activities [date col: %s, distance col: %s, duration col: %s, type col: %s]",
		len(table.Activities), dateCol, distanceCol, durationCol, typeCol,
	)

	return table, nil
}

func firstPresent(columns, candidates []string) string {
	for _, c := range candidates {
		if hasColumn(columns, c) {
			return c
		}
	}
	return ""
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

func parseDate(value string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseNumber treats unparsable values as zero, so they get dropped
// together with the genuinely non-positive rows during validation.
func parseNumber(value string) float64 {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return n
}
