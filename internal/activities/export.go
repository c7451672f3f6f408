package activities

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV serializes the validated, windowed table for download: the
// canonical columns plus the derived pace and category, with a header
// row. Columns absent from the input are left empty rather than invented.
func WriteCSV(w io.Writer, table *Table) error {
	writer := csv.NewWriter(w)

	header := []string{"date", "distance_km", "duration_min", "type", "name", "pace_min_km", "category"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, act := range table.Activities {
		record := []string{
			act.Date.Format("2006-01-02 15:04:05"),
			"", "", act.Type, act.Name, "", "",
		}
		if table.HasDistance {
			record[1] = formatFloat(act.DistanceKm)
			record[6] = string(CategorizeDistance(act.DistanceKm))
		}
		if table.HasDuration {
			record[2] = formatFloat(act.DurationMin)
		}
		if table.HasDistance && table.HasDuration {
			if pace, ok := Pace(act.DistanceKm, act.DurationMin); ok {
				record[5] = formatFloat(pace)
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
