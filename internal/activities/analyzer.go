package activities

import (
	"context"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/stridestats/stridestats/internal/telemetry/tracing"
)

// Analyzer derives the dashboard aggregates from a validated, windowed
// activity table. All methods are pure over their input: same table in,
// same stats out, no hidden state and no I/O.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Headline holds the dashboard KPIs. Pointer fields stay nil when the
// backing column could not be derived from the input.
type Headline struct {
	Activities           int      `json:"activities"`
	TotalDistanceKm      *float64 `json:"totalDistanceKm,omitempty"`
	TotalDurationHours   *float64 `json:"totalDurationHours,omitempty"`
	TotalDurationDisplay string   `json:"totalDurationDisplay,omitempty"`
	AvgPaceMinKm         *float64 `json:"avgPaceMinKm,omitempty"`
	AvgPaceDisplay       string   `json:"avgPaceDisplay"`
	FirstDate            string   `json:"firstDate"`
	LastDate             string   `json:"lastDate"`
}

type MonthlyStats struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Activities  int     `json:"activities"`
	DistanceKm  float64 `json:"distanceKm"`
	DurationMin float64 `json:"durationMin"`
}

type CategoryStats struct {
	Category      DistanceCategory `json:"category"`
	CategoryLabel string           `json:"categoryLabel"`
	Activities    int              `json:"activities"`
	PaceMinKm     float64          `json:"paceMinKm"`
	PaceDisplay   string           `json:"paceDisplay"`
}

type ScatterPoint struct {
	DistanceKm  float64 `json:"distanceKm"`
	DurationMin float64 `json:"durationMin"`
	Type        string  `json:"type"`
	Name        string  `json:"name,omitempty"`
}

type TypeCount struct {
	Type       string `json:"type"`
	Activities int    `json:"activities"`
}

type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// FilterOptions lists the year/month/day values actually present in the
// validated table, for the dashboard selectors.
type FilterOptions struct {
	Years  []int `json:"years"`
	Months []int `json:"months"`
	Days   []int `json:"days"`
}

// Headline computes the KPI row. The average pace is the ratio of sums
// (total duration over total distance), not the mean of per-activity
// paces - averaging rates directly would bias toward short activities.
func (a *Analyzer) Headline(ctx context.Context, table *Table) Headline {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.activities.headline")
	defer span.End()
	span.SetAttributes(attribute.Int("activities", table.Len()))

	h := Headline{
		Activities:     table.Len(),
		AvgPaceDisplay: "N/A",
	}

	if table.Len() == 0 {
		return h
	}

	first, last := table.Activities[0].Date, table.Activities[0].Date
	var totalDistance, totalDuration float64
	for _, act := range table.Activities {
		totalDistance += act.DistanceKm
		totalDuration += act.DurationMin
		if act.Date.Before(first) {
			first = act.Date
		}
		if act.Date.After(last) {
			last = act.Date
		}
	}
	h.FirstDate = first.Format("2006-01-02")
	h.LastDate = last.Format("2006-01-02")

	if table.HasDistance {
		h.TotalDistanceKm = roundedPtr(totalDistance)
	}
	if table.HasDuration {
		h.TotalDurationHours = roundedPtr(totalDuration / 60)
		h.TotalDurationDisplay = FormatDurationHMS(totalDuration)
	}
	if table.HasDistance && table.HasDuration {
		if pace, ok := Pace(totalDistance, totalDuration); ok {
			h.AvgPaceMinKm = roundedPtr(pace)
			h.AvgPaceDisplay = FormatPace(pace)
		}
	}

	return h
}

// Monthly groups the table by calendar (year, month) and sums distance
// and duration per group, ordered chronologically.
func (a *Analyzer) Monthly(ctx context.Context, table *Table) []MonthlyStats {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.activities.monthly")
	defer span.End()

	type yearMonth struct {
		year  int
		month int
	}

	groups := make(map[yearMonth]*MonthlyStats)
	for _, act := range table.Activities {
		key := yearMonth{year: act.Date.Year(), month: int(act.Date.Month())}
		stats, ok := groups[key]
		if !ok {
			stats = &MonthlyStats{Year: key.year, Month: key.month}
			groups[key] = stats
		}
		stats.Activities++
		stats.DistanceKm += act.DistanceKm
		stats.DurationMin += act.DurationMin
	}

	monthly := make([]MonthlyStats, 0, len(groups))
	for _, stats := range groups {
		stats.DistanceKm = round1(stats.DistanceKm)
		stats.DurationMin = round1(stats.DurationMin)
		monthly = append(monthly, *stats)
	}
	sort.Slice(monthly, func(i, j int) bool {
		if monthly[i].Year != monthly[j].Year {
			return monthly[i].Year < monthly[j].Year
		}
		return monthly[i].Month < monthly[j].Month
	})

	return monthly
}

// Categories computes the average pace per distance category, using the
// ratio of sums within each category. Categories without a defined pace
// are dropped rather than reported as zero. Needs both the distance and
// the duration column; returns nil otherwise.
func (a *Analyzer) Categories(ctx context.Context, table *Table) []CategoryStats {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.activities.categories")
	defer span.End()

	if !table.HasDistance || !table.HasDuration {
		return nil
	}

	type sums struct {
		distance float64
		duration float64
		count    int
	}

	groups := make(map[DistanceCategory]*sums)
	for _, act := range table.Activities {
		category := CategorizeDistance(act.DistanceKm)
		s, ok := groups[category]
		if !ok {
			s = &sums{}
			groups[category] = s
		}
		s.distance += act.DistanceKm
		s.duration += act.DurationMin
		s.count++
	}

	categories := make([]CategoryStats, 0, len(groups))
	for category, s := range groups {
		pace, ok := Pace(s.distance, s.duration)
		if !ok {
			continue
		}
		categories = append(categories, CategoryStats{
			Category:      category,
			CategoryLabel: category.Label(),
			Activities:    s.count,
			PaceMinKm:     round1(pace),
			PaceDisplay:   FormatPace(pace),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].PaceMinKm < categories[j].PaceMinKm
	})

	return categories
}

// Scatter projects each record for the point-cloud chart. No aggregation,
// but it still depends on the normalized type column; nil when absent.
func (a *Analyzer) Scatter(table *Table) []ScatterPoint {
	if !table.HasType {
		return nil
	}

	points := make([]ScatterPoint, 0, table.Len())
	for _, act := range table.Activities {
		points = append(points, ScatterPoint{
			DistanceKm:  act.DistanceKm,
			DurationMin: act.DurationMin,
			Type:        act.Type,
			Name:        act.Name,
		})
	}
	return points
}

// TypeBreakdown counts activities per type for the type pie chart.
func (a *Analyzer) TypeBreakdown(ctx context.Context, table *Table) []TypeCount {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.activities.typeBreakdown")
	defer span.End()

	if !table.HasType {
		return nil
	}

	counts := make(map[string]int)
	for _, act := range table.Activities {
		counts[act.Type]++
	}

	breakdown := make([]TypeCount, 0, len(counts))
	for activityType, count := range counts {
		breakdown = append(breakdown, TypeCount{Type: activityType, Activities: count})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Activities != breakdown[j].Activities {
			return breakdown[i].Activities > breakdown[j].Activities
		}
		return breakdown[i].Type < breakdown[j].Type
	})

	return breakdown
}

// DistanceOverTime returns the cumulative distance series ordered by
// activity date.
func (a *Analyzer) DistanceOverTime(ctx context.Context, table *Table) []SeriesPoint {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.activities.distanceOverTime")
	defer span.End()

	if !table.HasDistance {
		return nil
	}

	ordered := byDate(table.Activities)

	var total float64
	series := make([]SeriesPoint, 0, len(ordered))
	for _, act := range ordered {
		total += act.DistanceKm
		series = append(series, SeriesPoint{Date: act.Date, Value: round1(total)})
	}
	return series
}

// PaceTrend returns the per-activity pace ordered by date, skipping rows
// without a defined pace.
func (a *Analyzer) PaceTrend(ctx context.Context, table *Table) []SeriesPoint {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.activities.paceTrend")
	defer span.End()

	if !table.HasDistance || !table.HasDuration {
		return nil
	}

	ordered := byDate(table.Activities)

	series := make([]SeriesPoint, 0, len(ordered))
	for _, act := range ordered {
		pace, ok := Pace(act.DistanceKm, act.DurationMin)
		if !ok {
			continue
		}
		series = append(series, SeriesPoint{Date: act.Date, Value: round1(pace)})
	}
	return series
}

// Filters lists the selector options present in the table.
func (a *Analyzer) Filters(table *Table) FilterOptions {
	years := make(map[int]struct{})
	months := make(map[int]struct{})
	days := make(map[int]struct{})
	for _, act := range table.Activities {
		years[act.Date.Year()] = struct{}{}
		months[int(act.Date.Month())] = struct{}{}
		days[act.Date.Day()] = struct{}{}
	}
	return FilterOptions{
		Years:  sortedKeys(years),
		Months: sortedKeys(months),
		Days:   sortedKeys(days),
	}
}

func byDate(activities []Activity) []Activity {
	ordered := make([]Activity, len(activities))
	copy(ordered, activities)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})
	return ordered
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundedPtr(v float64) *float64 {
	r := round1(v)
	return &r
}
