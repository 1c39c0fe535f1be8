package ledger

import (
	"time"
)

// HistoryEntry is one day of a user's attendance with the derived duration.
// HasDuration is false when either timestamp is missing or unparsable; the
// raw record is still reported.
type HistoryEntry struct {
	Record
	Duration    time.Duration
	HasDuration bool
}

// Statistics aggregates the whole store.
type Statistics struct {
	TotalRecords     int
	UniqueUsers      int
	UniqueDates      int
	LivenessVerified int
}

// DailyReport returns all records for one date (YYYY-MM-DD).
func (l *Ledger) DailyReport(date string) ([]Record, error) {
	records, err := l.readAll()
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, r := range records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

// UserHistory returns the user's records from the last `days` days before
// now, oldest first, with working durations where both punches parse.
func (l *Ledger) UserHistory(name string, days int, now time.Time) ([]HistoryEntry, error) {
	records, err := l.readAll()
	if err != nil {
		return nil, err
	}

	cutoff := now.AddDate(0, 0, -days)

	var out []HistoryEntry
	for _, r := range records {
		if r.Name != name {
			continue
		}
		date, err := time.Parse(DateLayout, r.Date)
		if err != nil || date.Before(cutoff) {
			continue
		}

		entry := HistoryEntry{Record: r}
		if d, ok := workingDuration(r.PunchIn, r.PunchOut); ok {
			entry.Duration = d
			entry.HasDuration = true
		}
		out = append(out, entry)
	}
	return out, nil
}

// workingDuration computes punch_out - punch_in. Both timestamps must parse;
// the day wrap of an overnight shift is not handled here, negative spans are
// reported as-is for the caller to flag.
func workingDuration(punchIn, punchOut string) (time.Duration, bool) {
	if punchIn == "" || punchOut == "" {
		return 0, false
	}
	in, err := time.Parse(TimeLayout, punchIn)
	if err != nil {
		return 0, false
	}
	out, err := time.Parse(TimeLayout, punchOut)
	if err != nil {
		return 0, false
	}
	return out.Sub(in), true
}

// Stats aggregates record counts over the whole store.
func (l *Ledger) Stats() (Statistics, error) {
	records, err := l.readAll()
	if err != nil {
		return Statistics{}, err
	}

	users := make(map[string]bool)
	dates := make(map[string]bool)
	verified := 0
	for _, r := range records {
		users[r.Name] = true
		dates[r.Date] = true
		if r.LivenessCheck == livenessVerified {
			verified++
		}
	}

	return Statistics{
		TotalRecords:     len(records),
		UniqueUsers:      len(users),
		UniqueDates:      len(dates),
		LivenessVerified: verified,
	}, nil
}
