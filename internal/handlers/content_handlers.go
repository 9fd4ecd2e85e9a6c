package handlers

import (
	"net/http"
	"strconv"

	"liturgy-live/internal/models"

	"github.com/gorilla/mux"
)

// IDResponse returns the id of a created item
type IDResponse struct {
	ID string `json:"id"`
}

// UpdateLogo patches the preview logo settings
// PATCH /api/sessions/{id}/logo
func (h *PresentationHandler) UpdateLogo(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch models.LogoSettingsPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if !session.Store.UpdateLogo(patch) {
		http.Error(w, "no liturgy loaded", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, session.Store.State().Preview.Logo)
}

// SetLogoScope changes which slides the preview logo applies to
// PUT /api/sessions/{id}/logo/scope
func (h *PresentationHandler) SetLogoScope(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var scope models.Scope
	if !decodeJSON(w, r, &scope) {
		return
	}
	if !session.Store.SetLogoScope(scope) {
		http.Error(w, "no liturgy loaded", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, session.Store.State().Preview.Logo)
}

// AddTextOverlay appends a preview text overlay
// POST /api/sessions/{id}/text-overlays
func (h *PresentationHandler) AddTextOverlay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var overlay models.TextOverlay
	if !decodeJSON(w, r, &overlay) {
		return
	}
	id, added := session.Store.AddTextOverlay(overlay)
	if !added {
		http.Error(w, "text overlay limit reached", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// UpdateTextOverlay patches a preview text overlay
// PATCH /api/sessions/{id}/text-overlays/{overlayId}
func (h *PresentationHandler) UpdateTextOverlay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch models.TextOverlayPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if !session.Store.UpdateTextOverlay(mux.Vars(r)["overlayId"], patch) {
		http.Error(w, "text overlay not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveTextOverlay deletes a preview text overlay
// DELETE /api/sessions/{id}/text-overlays/{overlayId}
func (h *PresentationHandler) RemoveTextOverlay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if !session.Store.RemoveTextOverlay(mux.Vars(r)["overlayId"]) {
		http.Error(w, "text overlay not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddImageOverlay appends a preview image overlay
// POST /api/sessions/{id}/image-overlays
func (h *PresentationHandler) AddImageOverlay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var overlay models.ImageOverlay
	if !decodeJSON(w, r, &overlay) {
		return
	}
	if overlay.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	id, added := session.Store.AddImageOverlay(overlay)
	if !added {
		http.Error(w, "image overlay limit reached", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// UpdateImageOverlay patches a preview image overlay
// PATCH /api/sessions/{id}/image-overlays/{overlayId}
func (h *PresentationHandler) UpdateImageOverlay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch models.ImageOverlayPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if !session.Store.UpdateImageOverlay(mux.Vars(r)["overlayId"], patch) {
		http.Error(w, "image overlay not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveImageOverlay deletes a preview image overlay
// DELETE /api/sessions/{id}/image-overlays/{overlayId}
func (h *PresentationHandler) RemoveImageOverlay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if !session.Store.RemoveImageOverlay(mux.Vars(r)["overlayId"]) {
		http.Error(w, "image overlay not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddVideoBackground sets the preview video background
// POST /api/sessions/{id}/video-backgrounds
func (h *PresentationHandler) AddVideoBackground(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var video models.VideoBackground
	if !decodeJSON(w, r, &video) {
		return
	}
	if video.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	id, added := session.Store.AddVideoBackground(video)
	if !added {
		http.Error(w, "video background already set", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// UpdateVideoBackground patches the preview video background
// PATCH /api/sessions/{id}/video-backgrounds/{overlayId}
func (h *PresentationHandler) UpdateVideoBackground(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch models.VideoBackgroundPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if !session.Store.UpdateVideoBackground(mux.Vars(r)["overlayId"], patch) {
		http.Error(w, "video background not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveVideoBackground deletes the preview video background
// DELETE /api/sessions/{id}/video-backgrounds/{overlayId}
func (h *PresentationHandler) RemoveVideoBackground(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if !session.Store.RemoveVideoBackground(mux.Vars(r)["overlayId"]) {
		http.Error(w, "video background not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditSlideContent merges a content override for one slide
// PATCH /api/sessions/{id}/slides/{slideId}/content
func (h *PresentationHandler) EditSlideContent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var edit models.SlideContentEdit
	if !decodeJSON(w, r, &edit) {
		return
	}
	if !session.Store.EditSlideContent(mux.Vars(r)["slideId"], edit) {
		http.Error(w, "slide not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearSlideEdit drops the override for one slide
// DELETE /api/sessions/{id}/slides/{slideId}/content
func (h *PresentationHandler) ClearSlideEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if !session.Store.ClearSlideEdit(mux.Vars(r)["slideId"]) {
		http.Error(w, "no edit for slide", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InsertSlidesRequest represents slides to splice in after an index
type InsertSlidesRequest struct {
	Slides      []models.Slide      `json:"slides"`
	AfterIndex  int                 `json:"afterIndex"`
	ElementInfo *models.ElementInfo `json:"elementInfo,omitempty"`
}

// InsertSlidesResponse lists the ids the inserted slides received
type InsertSlidesResponse struct {
	IDs []string `json:"ids"`
}

// InsertSlides splices session-local slides into the liturgy
// POST /api/sessions/{id}/slides
func (h *PresentationHandler) InsertSlides(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req InsertSlidesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Slides) == 0 {
		http.Error(w, "slides are required", http.StatusBadRequest)
		return
	}
	ids, inserted := session.Store.InsertSlides(req.Slides, req.AfterIndex, req.ElementInfo)
	if !inserted {
		http.Error(w, "no liturgy loaded", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, InsertSlidesResponse{IDs: ids})
}

func slideIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "slide index must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// DuplicateSlide copies the slide at index
// POST /api/sessions/{id}/slides/{index}/duplicate
func (h *PresentationHandler) DuplicateSlide(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := slideIndex(w, r)
	if !ok {
		return
	}
	id, duplicated := session.Store.DuplicateSlide(index)
	if !duplicated {
		http.Error(w, "slide not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// DeleteSlide removes the slide at index
// DELETE /api/sessions/{id}/slides/{index}
func (h *PresentationHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := slideIndex(w, r)
	if !ok {
		return
	}
	if !session.Store.DeleteSlide(index) {
		http.Error(w, "slide cannot be deleted", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StylesRequest represents a style change for one tier
type StylesRequest struct {
	Styles    models.StyleSet   `json:"styles"`
	Scope     models.StyleScope `json:"scope"`
	SlideID   string            `json:"slideId,omitempty"`
	ElementID string            `json:"elementId,omitempty"`
}

// ApplyStyles deep-merges styles into the preview style state
// PUT /api/sessions/{id}/styles
func (h *PresentationHandler) ApplyStyles(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req StylesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !session.Store.ApplyStyles(req.Styles, req.Scope, req.SlideID, req.ElementID) {
		http.Error(w, "invalid style scope", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, session.Store.State().Preview.Styles)
}

// ResetStyles removes one tier of style overrides
// DELETE /api/sessions/{id}/styles?scope=&slideId=&elementId=
func (h *PresentationHandler) ResetStyles(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	scope := models.StyleScope(q.Get("scope"))
	if scope == "" {
		http.Error(w, "scope query parameter is required", http.StatusBadRequest)
		return
	}
	if !session.Store.ResetStyles(scope, q.Get("slideId"), q.Get("elementId")) {
		http.Error(w, "no styles to reset", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
