// Package ledger applies the punch-in/punch-out policy against the durable
// attendance store. Every mark is a full read-modify-write of the CSV so the
// in-memory view can never go stale across process restarts; marks happen at
// human-interaction rate, so the O(n) rewrite is acceptable.
package ledger

import (
	"strings"
	"sync"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Status is the outcome of one mark attempt. Spoof rejections and duplicates
// are expected business outcomes, not errors - callers branch on them.
type Status string

const (
	StatusPunchIn       Status = "PUNCH_IN"
	StatusPunchOut      Status = "PUNCH_OUT"
	StatusDuplicate     Status = "DUPLICATE"
	StatusAlreadyMarked Status = "ALREADY_MARKED"
	StatusRejectedSpoof Status = "REJECTED_SPOOF"
	StatusError         Status = "ERROR"
)

// Column values written by accepted marks.
const (
	confidenceHigh   = "HIGH"
	livenessVerified = "VERIFIED"
)

// Record is one attendance row. All fields are string-typed to match the CSV
// contract exactly; an empty PunchOut means the day is still open.
type Record struct {
	Name          string
	Date          string // YYYY-MM-DD
	PunchIn       string // HH:MM:SS
	PunchOut      string // HH:MM:SS, empty until punch-out
	Confidence    string
	LivenessCheck string
}

// Key identifies the record within its day.
func (r *Record) Key() string {
	return r.Name + "_" + r.Date
}

// Ledger owns the CSV store, the debounce map and the mutual-exclusion
// boundary around marks. The debounce map is per instance so multiple ledgers
// (tests, multiple kiosks with separate stores) never interfere.
type Ledger struct {
	path   string
	window time.Duration

	mu         sync.Mutex
	lastMarked map[string]time.Time
}

// New creates a ledger over the given CSV path, creating the file with a
// header-only row if it does not exist yet.
func New(path string, window time.Duration) (*Ledger, error) {
	l := &Ledger{
		path:       path,
		window:     window,
		lastMarked: make(map[string]time.Time),
	}
	if err := l.ensureFile(); err != nil {
		return nil, err
	}
	return l, nil
}

// Mark records an attendance event for name at the given time.
//
// The liveness check precedes everything else: a dead verdict is always
// REJECTED_SPOOF with no state change. The debounce map then suppresses any
// trigger arriving within the window of the last accepted punch-in, so one
// physical punch never yields two transitions; the entry is cleared on
// punch-out. A same-day trigger after the window lapses but before punch-out
// lands on the punch-out branch rather than being flagged a duplicate -
// intentional, matching the established store semantics. Only then does the
// per-day state machine run NoRecord -> PunchedIn -> PunchedOut.
func (l *Ledger) Mark(name string, alive bool, now time.Time) (Status, error) {
	if !alive {
		return StatusRejectedSpoof, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := now.Format(DateLayout)
	timeStr := now.Format(TimeLayout)
	key := name + "_" + date

	if last, ok := l.lastMarked[key]; ok && now.Sub(last) < l.window {
		return StatusDuplicate, nil
	}

	records, err := l.readAll()
	if err != nil {
		return StatusError, err
	}

	idx := -1
	for i := range records {
		if records[i].Name == name && records[i].Date == date {
			idx = i
			break
		}
	}

	if idx < 0 {
		records = append(records, Record{
			Name:          name,
			Date:          date,
			PunchIn:       timeStr,
			PunchOut:      "",
			Confidence:    confidenceHigh,
			LivenessCheck: livenessVerified,
		})
		if err := l.writeAll(records); err != nil {
			return StatusError, err
		}
		l.lastMarked[key] = now
		return StatusPunchIn, nil
	}

	if strings.TrimSpace(records[idx].PunchOut) == "" {
		records[idx].PunchOut = timeStr
		records[idx].LivenessCheck = livenessVerified
		if err := l.writeAll(records); err != nil {
			return StatusError, err
		}
		// The day's cycle is complete, no further debounce needed.
		delete(l.lastMarked, key)
		return StatusPunchOut, nil
	}

	return StatusAlreadyMarked, nil
}

// Records returns all rows currently in the store.
func (l *Ledger) Records() ([]Record, error) {
	return l.readAll()
}

// Import appends rows whose (name, date) key is not present yet and reports
// how many were added. Existing records are never touched, which makes a
// legacy import safe to re-run.
func (l *Ledger) Import(rows []Record) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.readAll()
	if err != nil {
		return 0, err
	}

	existing := make(map[string]bool, len(records))
	for i := range records {
		existing[records[i].Key()] = true
	}

	added := 0
	for _, row := range rows {
		if row.Name == "" || row.Date == "" || existing[row.Key()] {
			continue
		}
		records = append(records, row)
		existing[row.Key()] = true
		added++
	}

	if added == 0 {
		return 0, nil
	}
	if err := l.writeAll(records); err != nil {
		return 0, err
	}
	return added, nil
}
