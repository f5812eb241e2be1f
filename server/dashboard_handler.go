package server

import (
	"net/http"
	"time"
)

// DashboardHandler aggregates the admin dashboard: entity counts and
// listening activity per month of the current year.
func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	counts, err := h.statsRepo.Counts(r.Context(), now)
	if err != nil {
		h.writeError(w, err)
		return
	}
	plays, err := h.statsRepo.PlaysByMonth(r.Context(), now)
	if err != nil {
		h.writeError(w, err)
		return
	}
	unreplied, err := h.contactRepo.CountUnreplied(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"counts":            counts,
		"playsByMonth":      plays,
		"unrepliedContacts": unreplied,
	})
}
