package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var base = time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attendance.csv")
	l, err := New(path, 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return l
}

func mustMark(t *testing.T, l *Ledger, name string, alive bool, now time.Time) Status {
	t.Helper()
	status, err := l.Mark(name, alive, now)
	if err != nil {
		t.Fatalf("Mark(%s) failed: %v", name, err)
	}
	return status
}

func TestNew_CreatesHeaderOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")

	l, err := New(path, 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if string(data) != "Name,Date,Punch_In,Punch_Out,Confidence,Liveness_Check\n" {
		t.Errorf("unexpected header-only content: %q", string(data))
	}

	records, err := l.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestMark_FullDayCycle(t *testing.T) {
	l := newTestLedger(t)

	if s := mustMark(t, l, "alice", true, base); s != StatusPunchIn {
		t.Fatalf("first mark: expected PUNCH_IN, got %s", s)
	}

	// Rapid re-trigger inside the 5s window is a duplicate, not a punch-out.
	if s := mustMark(t, l, "alice", true, base.Add(2*time.Second)); s != StatusDuplicate {
		t.Fatalf("second mark within window: expected DUPLICATE, got %s", s)
	}

	// After the window lapses the open record takes the punch-out path;
	// ALREADY_MARKED applies only once punch-out is set.
	if s := mustMark(t, l, "alice", true, base.Add(8*time.Hour)); s != StatusPunchOut {
		t.Fatalf("mark after window: expected PUNCH_OUT, got %s", s)
	}

	if s := mustMark(t, l, "alice", true, base.Add(9*time.Hour)); s != StatusAlreadyMarked {
		t.Fatalf("mark after punch-out: expected ALREADY_MARKED, got %s", s)
	}

	records, err := l.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	r := records[0]
	if r.Name != "alice" || r.Date != "2026-08-26" {
		t.Errorf("unexpected record key: %s %s", r.Name, r.Date)
	}
	if r.PunchIn != "09:00:00" {
		t.Errorf("expected punch-in 09:00:00, got %s", r.PunchIn)
	}
	if r.PunchOut != "17:00:00" {
		t.Errorf("expected punch-out 17:00:00, got %s", r.PunchOut)
	}
	if r.Confidence != "HIGH" || r.LivenessCheck != "VERIFIED" {
		t.Errorf("unexpected confidence/liveness: %s/%s", r.Confidence, r.LivenessCheck)
	}
}

func TestMark_AlreadyMarkedLeavesRecordUntouched(t *testing.T) {
	l := newTestLedger(t)
	mustMark(t, l, "alice", true, base)
	mustMark(t, l, "alice", true, base.Add(time.Hour))

	before, _ := l.Records()
	mustMark(t, l, "alice", true, base.Add(2*time.Hour))
	after, _ := l.Records()

	if len(before) != 1 || len(after) != 1 || before[0] != after[0] {
		t.Errorf("ALREADY_MARKED must not mutate the record: %+v -> %+v", before, after)
	}
}

func TestMark_SpoofAlwaysRejected(t *testing.T) {
	l := newTestLedger(t)

	// NoRecord state.
	if s := mustMark(t, l, "alice", false, base); s != StatusRejectedSpoof {
		t.Fatalf("expected REJECTED_SPOOF, got %s", s)
	}
	if records, _ := l.Records(); len(records) != 0 {
		t.Error("spoof rejection must not create a record")
	}

	// A rejected spoof must not arm the debounce map either: an immediately
	// following live mark is a fresh punch-in.
	if s := mustMark(t, l, "alice", true, base.Add(time.Second)); s != StatusPunchIn {
		t.Errorf("expected PUNCH_IN after spoof rejection, got %s", s)
	}

	// PunchedIn state.
	if s := mustMark(t, l, "alice", false, base.Add(time.Hour)); s != StatusRejectedSpoof {
		t.Errorf("expected REJECTED_SPOOF in punched-in state, got %s", s)
	}

	// PunchedOut state.
	mustMark(t, l, "alice", true, base.Add(2*time.Hour))
	if s := mustMark(t, l, "alice", false, base.Add(3*time.Hour)); s != StatusRejectedSpoof {
		t.Errorf("expected REJECTED_SPOOF in punched-out state, got %s", s)
	}
}

func TestMark_UsersIndependent(t *testing.T) {
	l := newTestLedger(t)

	mustMark(t, l, "alice", true, base)
	if s := mustMark(t, l, "bob", true, base.Add(time.Second)); s != StatusPunchIn {
		t.Errorf("bob's punch-in must not be debounced by alice's, got %s", s)
	}
}

func TestMark_NewDayNewRecord(t *testing.T) {
	l := newTestLedger(t)

	mustMark(t, l, "alice", true, base)
	mustMark(t, l, "alice", true, base.Add(8*time.Hour))

	if s := mustMark(t, l, "alice", true, base.AddDate(0, 0, 1)); s != StatusPunchIn {
		t.Errorf("next day must start a fresh record, got %s", s)
	}

	records, _ := l.Records()
	if len(records) != 2 {
		t.Errorf("expected two records across two days, got %d", len(records))
	}
}

func TestMark_IOErrorReturnsErrorStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	l, err := New(path, 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Simulate a vanished store between marks.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove store: %v", err)
	}

	status, err := l.Mark("alice", true, base)
	if status != StatusError {
		t.Errorf("expected ERROR status, got %s", status)
	}
	if err == nil {
		t.Error("expected an error alongside the ERROR status")
	}
}

func TestLedger_InstancesDoNotShareDebounce(t *testing.T) {
	dir := t.TempDir()
	l1, err := New(filepath.Join(dir, "a.csv"), 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l2, err := New(filepath.Join(dir, "b.csv"), 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	mustMark(t, l1, "alice", true, base)
	if s := mustMark(t, l2, "alice", true, base.Add(time.Second)); s != StatusPunchIn {
		t.Errorf("separate ledger instances must not share debounce state, got %s", s)
	}
}

func TestImport_SkipsExistingKeys(t *testing.T) {
	l := newTestLedger(t)
	mustMark(t, l, "alice", true, base)

	rows := []Record{
		{Name: "alice", Date: "2026-08-26", PunchIn: "08:00:00", PunchOut: "16:00:00"}, // collides
		{Name: "bob", Date: "2026-08-25", PunchIn: "09:15:00", PunchOut: "17:30:00", LivenessCheck: "VERIFIED"},
		{Name: "", Date: "2026-08-25"}, // unusable
	}

	added, err := l.Import(rows)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if added != 1 {
		t.Errorf("expected 1 row added, got %d", added)
	}

	// Re-running the same import adds nothing.
	added, err = l.Import(rows)
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if added != 0 {
		t.Errorf("expected idempotent re-run, got %d added", added)
	}

	records, _ := l.Records()
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	if records[0].PunchIn != "09:00:00" {
		t.Errorf("import must not overwrite the existing record, got punch-in %s", records[0].PunchIn)
	}
}
