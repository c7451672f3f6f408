package activities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridestats/stridestats/internal/activities"
)

func testTable(activityList ...activities.Activity) *activities.Table {
	return &activities.Table{
		Activities:  activityList,
		HasDistance: true,
		HasDuration: true,
		HasType:     true,
	}
}

func testActivity(date time.Time, distanceKm, durationMin float64) activities.Activity {
	return activities.Activity{
		Date:        date,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Type:        "Run",
	}
}

func TestValidate(t *testing.T) {
	march1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	table := testTable(
		testActivity(march1, 5, 30),
		testActivity(time.Time{}, 10, 60),   // missing date
		testActivity(march1, 0, 45),         // zero distance
		testActivity(march1, 8, 0),          // zero duration
		testActivity(march1, -3, 20),        // negative distance
		testActivity(march1.AddDate(0, 1, 0), 12, 70),
	)

	valid, err := activities.Validate(table)
	require.NoError(t, err)
	assert.Equal(t, 2, valid.Len())
	// the input table is untouched
	assert.Equal(t, 6, table.Len())
}

func TestValidate_Idempotent(t *testing.T) {
	table := testTable(
		testActivity(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 5, 30),
		testActivity(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 10, 60),
	)

	once, err := activities.Validate(table)
	require.NoError(t, err)
	twice, err := activities.Validate(once)
	require.NoError(t, err)
	assert.Equal(t, once.Activities, twice.Activities)
}

func TestValidate_SkipsAbsentColumns(t *testing.T) {
	// without the distance/duration columns the non-positive values are
	// not a validity criterion
	table := &activities.Table{
		Activities: []activities.Activity{
			testActivity(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 0, 0),
		},
	}

	valid, err := activities.Validate(table)
	require.NoError(t, err)
	assert.Equal(t, 1, valid.Len())
}

func TestValidate_Empty(t *testing.T) {
	table := testTable(
		testActivity(time.Time{}, 5, 30),
		testActivity(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 0, 30),
	)

	_, err := activities.Validate(table)
	require.ErrorIs(t, err, activities.ErrNoValidActivities)
}

func TestApplyWindow(t *testing.T) {
	table := testTable(
		testActivity(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), 5, 30),
		testActivity(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), 10, 60),
		testActivity(time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), 7, 40),
		testActivity(time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC), 12, 70),
	)

	byYear, err := activities.ApplyWindow(table, activities.TimeWindow{Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, 3, byYear.Len())

	byYearMonth, err := activities.ApplyWindow(table, activities.TimeWindow{Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, byYearMonth.Len())

	byDay, err := activities.ApplyWindow(table, activities.TimeWindow{Year: 2024, Month: 3, Day: 15})
	require.NoError(t, err)
	assert.Equal(t, 1, byDay.Len())
}

func TestApplyWindow_AllIsNoOp(t *testing.T) {
	table := testTable(
		testActivity(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), 10, 60),
		testActivity(time.Date(2022, 7, 10, 8, 0, 0, 0, time.UTC), 5, 30),
	)

	all, err := activities.ApplyWindow(table, activities.TimeWindow{})
	require.NoError(t, err)
	assert.Equal(t, table.Activities, all.Activities)

	// year=Y with month/day left at "all" equals filtering by year only
	yearOnly, err := activities.ApplyWindow(table, activities.TimeWindow{Year: 2024})
	require.NoError(t, err)
	yearThenAll, err := activities.ApplyWindow(yearOnly, activities.TimeWindow{})
	require.NoError(t, err)
	assert.Equal(t, yearOnly.Activities, yearThenAll.Activities)
}

func TestApplyWindow_EmptySelection(t *testing.T) {
	table := testTable(
		testActivity(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), 10, 60),
	)

	_, err := activities.ApplyWindow(table, activities.TimeWindow{Year: 1999})
	require.ErrorIs(t, err, activities.ErrEmptySelection)

	// distinct from the validation error
	assert.NotErrorIs(t, err, activities.ErrNoValidActivities)
}
