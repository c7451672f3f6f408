package activities

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/stridestats/stridestats/internal/telemetry/tracing"
)

// FileStore is the flat-file backing table: one CSV with a header row.
// Every render pass reloads it from disk, so a refresh that rewrites the
// file is picked up by the next request without any in-memory bookkeeping.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the whole backing table. A missing or unreadable file is a
// fatal load failure for the render pass.
func (s *FileStore) Load(ctx context.Context) (_ *RawTable, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "activities.store.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open activities file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warnf("close activities file: %s", closeErr)
		}
	}()

	reader := csv.NewReader(file)
	// hand-edited files may have short rows; missing cells just stay
	// empty and the normalizer treats them like any other blank value
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read activities csv: %w", err)
	}
	if len(records) == 0 {
		return &RawTable{}, nil
	}

	table := &RawTable{Columns: records[0]}
	for _, record := range records[1:] {
		row := make(map[string]string, len(table.Columns))
		for i, column := range table.Columns {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	log.Debugf("loaded %d activity rows from %s", len(table.Rows), s.path)

	return table, nil
}

// Replace atomically rewrites the backing table with freshly fetched
// rows. Written to a temp file first so a crash mid-write cannot leave a
// truncated table behind.
func (s *FileStore) Replace(ctx context.Context, table *RawTable) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "activities.store.replace")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tmpFile, err := os.CreateTemp(filepath.Dir(s.path), "activities-*.csv")
	if err != nil {
		return fmt.Errorf("create temp activities file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	writer := csv.NewWriter(tmpFile)
	if err = writer.Write(table.Columns); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write activities header: %w", err)
	}
	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, column := range table.Columns {
			record[i] = row[column]
		}
		if err = writer.Write(record); err != nil {
			_ = tmpFile.Close()
			return fmt.Errorf("write activities row: %w", err)
		}
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("flush activities csv: %w", err)
	}
	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp activities file: %w", err)
	}

	if err = os.Rename(tmpFile.Name(), s.path); err != nil {
		return fmt.Errorf("replace activities file: %w", err)
	}

	log.Infof("activities table replaced, %d rows written to %s", len(table.Rows), s.path)

	return nil
}
