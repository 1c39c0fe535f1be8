package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/punchclock/internal/ledger"
)

// defaultHistoryDays bounds user history queries when no range is given.
const defaultHistoryDays = 30

// AttendanceHandler serves reporting endpoints over the attendance ledger.
type AttendanceHandler struct {
	store *ledger.Ledger
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(store *ledger.Ledger) *AttendanceHandler {
	return &AttendanceHandler{store: store}
}

// RecordResponse represents one attendance record in API responses.
type RecordResponse struct {
	Name          string `json:"name"`
	Date          string `json:"date"`
	PunchIn       string `json:"punch_in"`
	PunchOut      string `json:"punch_out,omitempty"`
	Confidence    string `json:"confidence,omitempty"`
	LivenessCheck string `json:"liveness_check,omitempty"`
}

func recordToResponse(r ledger.Record) RecordResponse {
	return RecordResponse{
		Name:          r.Name,
		Date:          r.Date,
		PunchIn:       r.PunchIn,
		PunchOut:      r.PunchOut,
		Confidence:    r.Confidence,
		LivenessCheck: r.LivenessCheck,
	}
}

// Report returns all records for one day. Defaults to today.
func (h *AttendanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(ledger.DateLayout)
	}
	if _, err := time.Parse(ledger.DateLayout, date); err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	records, err := h.store.DailyReport(date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read attendance records")
		return
	}

	response := make([]RecordResponse, len(records))
	for i := range records {
		response[i] = recordToResponse(records[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"date":    date,
		"records": response,
	})
}

// HistoryEntryResponse is one day of a user's history.
type HistoryEntryResponse struct {
	RecordResponse
	Duration string `json:"duration,omitempty"`
}

// History returns a user's records over the last N days.
func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "missing user name")
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = defaultHistoryDays
	}

	entries, err := h.store.UserHistory(name, days, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read attendance records")
		return
	}

	response := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = HistoryEntryResponse{RecordResponse: recordToResponse(e.Record)}
		if e.HasDuration {
			response[i].Duration = e.Duration.String()
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"name":    name,
		"days":    days,
		"entries": response,
	})
}

// StatsResponse aggregates the whole ledger.
type StatsResponse struct {
	TotalRecords     int `json:"total_records"`
	UniqueUsers      int `json:"unique_users"`
	UniqueDates      int `json:"unique_dates"`
	LivenessVerified int `json:"liveness_verified"`
}

// Stats returns ledger-wide aggregates.
func (h *AttendanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read attendance records")
		return
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		TotalRecords:     stats.TotalRecords,
		UniqueUsers:      stats.UniqueUsers,
		UniqueDates:      stats.UniqueDates,
		LivenessVerified: stats.LivenessVerified,
	})
}
