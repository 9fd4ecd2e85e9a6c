package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"liturgy-live/internal/services"
)

// ExportSession returns the preview state as a portable document
// GET /api/sessions/{id}/export?fullSlides=true&by=name
func (h *PresentationHandler) ExportSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	full, _ := strconv.ParseBool(q.Get("fullSlides"))

	doc := services.BuildExport(session.Store.State(), q.Get("by"), full)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="liturgy-%s.json"`, doc.Liturgy.ID))
	writeJSON(w, http.StatusOK, doc)
}

// ImportResponse maps original temp slide ids to the ids they were given
type ImportResponse struct {
	IDMap map[string]string `json:"idMap"`
}

// ImportSession merges an exported document into the preview state
// POST /api/sessions/{id}/import
func (h *PresentationHandler) ImportSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	result, err := services.ParseImport(r.Body, h.maxImportBytes, services.NewID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrImportTooLarge):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		case errors.Is(err, services.ErrImportInvalidJSON),
			errors.Is(err, services.ErrImportVersionMismatch),
			errors.Is(err, services.ErrImportInvalidSlide):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if !session.Store.ApplyImport(result) {
		http.Error(w, "no liturgy loaded", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{IDMap: result.IDMap})
}
