package activities

import (
	"fmt"
	"math"
)

// Pace returns the minutes-per-kilometer rate, or false when the distance
// is not positive and the rate is undefined.
func Pace(distanceKm, durationMin float64) (float64, bool) {
	if distanceKm <= 0 {
		return 0, false
	}
	return durationMin / distanceKm, true
}

// FormatPace renders a min/km rate as M:SS. The fractional minute is
// converted to seconds rounded half-up. Non-positive paces render as N/A.
func FormatPace(paceMinKm float64) string {
	if paceMinKm <= 0 {
		return "N/A"
	}

	mins := int(paceMinKm)
	secs := int(math.Floor((paceMinKm-float64(mins))*60 + 0.5))
	if secs == 60 {
		mins++
		secs = 0
	}

	return fmt.Sprintf("%d:%02d", mins, secs)
}

// FormatDurationHMS renders total minutes as H:MM:SS. The input is first
// rounded to one decimal minute, then decomposed from integer seconds.
func FormatDurationHMS(totalMin float64) string {
	if totalMin <= 0 {
		return "0:00:00"
	}

	totalMin = math.Round(totalMin*10) / 10
	totalSeconds := int(math.Round(totalMin * 60))
	hrs := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
}

// CategorizeDistance buckets an activity by distance. Upper bounds are
// exclusive: 5.0 km is short, not light; 21.0 km is half marathon+.
func CategorizeDistance(distanceKm float64) DistanceCategory {
	switch {
	case distanceKm < 5:
		return DistanceLight
	case distanceKm < 10:
		return DistanceShort
	case distanceKm < 21:
		return DistanceMedium
	default:
		return DistanceHalfMarathonPlus
	}
}
