package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kozaktomas/punchclock/internal/enroll"
)

// LookupHandler serves nearest-neighbor queries against the enrollment index.
type LookupHandler struct {
	index *enroll.Index
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(index *enroll.Index) *LookupHandler {
	return &LookupHandler{index: index}
}

// LookupRequest is a nearest-neighbor query.
type LookupRequest struct {
	Embedding []float32 `json:"embedding"`
	K         int       `json:"k"`
}

// LookupMatch is one hit in the response.
type LookupMatch struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// Lookup returns the k nearest enrolled identities to the given embedding.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Embedding) == 0 {
		respondError(w, http.StatusBadRequest, "embedding is required")
		return
	}
	if req.K <= 0 {
		req.K = 3
	}

	matches, err := h.index.Nearest(req.Embedding, req.K)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "enrollment index not available")
		return
	}

	response := make([]LookupMatch, len(matches))
	for i, m := range matches {
		response[i] = LookupMatch{Name: m.Name, Distance: m.Distance}
	}
	respondJSON(w, http.StatusOK, response)
}
