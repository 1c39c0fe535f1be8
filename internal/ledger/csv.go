package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

var header = []string{"Name", "Date", "Punch_In", "Punch_Out", "Confidence", "Liveness_Check"}

// ensureFile creates the store with a header-only row when it is missing.
func (l *Ledger) ensureFile() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat attendance file: %w", err)
	}
	return l.writeAll(nil)
}

// readAll loads every record from the CSV store.
func (l *Ledger) readAll() ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open attendance file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate short rows from hand-edited files

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read attendance file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("attendance file %s has no header row", l.path)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(row))
	}
	return records, nil
}

func recordFromRow(row []string) Record {
	field := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Record{
		Name:          field(0),
		Date:          field(1),
		PunchIn:       field(2),
		PunchOut:      field(3),
		Confidence:    field(4),
		LivenessCheck: field(5),
	}
}

// writeAll replaces the store contents atomically: the full table is written
// to a temp file in the same directory and renamed over the original, so a
// failed write never leaves a partially persisted ledger behind.
func (l *Ledger) writeAll(records []Record) error {
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".attendance-*.csv")
	if err != nil {
		return fmt.Errorf("create temp attendance file: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{r.Name, r.Date, r.PunchIn, r.PunchOut, r.Confidence, r.LivenessCheck})
	}

	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write attendance file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp attendance file: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace attendance file: %w", err)
	}
	return nil
}

// Export writes a copy of the current table to the given path.
func (l *Ledger) Export(path string) error {
	records, err := l.readAll()
	if err != nil {
		return err
	}
	out := &Ledger{path: path}
	return out.writeAll(records)
}
