package handlers

import (
	"net/http"

	"github.com/kozaktomas/punchclock/internal/enroll"
)

// UsersHandler serves the enrolled-identity listing.
type UsersHandler struct {
	store enroll.Store
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(store enroll.Store) *UsersHandler {
	return &UsersHandler{store: store}
}

// UserResponse represents one enrolled identity.
type UserResponse struct {
	Name string `json:"name"`
	Dim  int    `json:"dim"`
}

// List returns every enrolled identity.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	enrolled, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read enrollment store")
		return
	}

	response := make([]UserResponse, len(enrolled))
	for i, e := range enrolled {
		response[i] = UserResponse{Name: e.Name, Dim: len(e.Embedding)}
	}
	respondJSON(w, http.StatusOK, response)
}
