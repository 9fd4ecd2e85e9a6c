package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"liturgy-live/internal/models"
	"liturgy-live/internal/services"

	"github.com/gorilla/mux"
)

// PresentationHandler handles HTTP requests from the operator console
type PresentationHandler struct {
	sessions       *services.SessionManager
	maxImportBytes int64
}

// NewPresentationHandler creates a new presentation handler
func NewPresentationHandler(sessions *services.SessionManager, maxImportBytes int64) *PresentationHandler {
	return &PresentationHandler{
		sessions:       sessions,
		maxImportBytes: maxImportBytes,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// session resolves the {id} route variable, writing 404 when unknown
func (h *PresentationHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	session, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return session, true
}

// CreateSessionRequest represents a request to open a liturgy
type CreateSessionRequest struct {
	LiturgyID string `json:"liturgyId"`
}

// CreateSessionResponse represents the response
type CreateSessionResponse struct {
	SessionID string                   `json:"sessionId"`
	Channel   string                   `json:"channel"`
	State     models.PresentationState `json:"state"`
}

// CreateSession loads a liturgy into a new session
// POST /api/sessions
func (h *PresentationHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LiturgyID == "" {
		http.Error(w, "liturgyId is required", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Create(r.Context(), req.LiturgyID)
	if err != nil {
		if errors.Is(err, services.ErrLiturgyNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to create session: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: session.ID,
		Channel:   session.ChannelName(),
		State:     session.Store.State(),
	})
}

// GetSession returns the full presentation state
// GET /api/sessions/{id}
func (h *PresentationHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Store.State())
}

// CloseSession tears a session down
// DELETE /api/sessions/{id}
func (h *PresentationHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SwitchLiturgy loads another liturgy into the session
// PUT /api/sessions/{id}/liturgy
func (h *PresentationHandler) SwitchLiturgy(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LiturgyID == "" {
		http.Error(w, "liturgyId is required", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.SwitchLiturgy(r.Context(), mux.Vars(r)["id"], req.LiturgyID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) || errors.Is(err, services.ErrLiturgyNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to switch liturgy: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, session.Store.State())
}

// NavigateRequest represents a navigation command
type NavigateRequest struct {
	Action string `json:"action"` // goto, next, prev, first, last, element
	Index  int    `json:"index,omitempty"`
}

// Navigate moves the preview (and live, when following)
// POST /api/sessions/{id}/navigate
func (h *PresentationHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req NavigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var move func(*services.PresentationStore) services.NavigationResult
	switch req.Action {
	case "goto":
		move = func(s *services.PresentationStore) services.NavigationResult { return s.GoToSlide(req.Index) }
	case "next":
		move = (*services.PresentationStore).NextSlide
	case "prev":
		move = (*services.PresentationStore).PrevSlide
	case "first":
		move = (*services.PresentationStore).FirstSlide
	case "last":
		move = (*services.PresentationStore).LastSlide
	case "element":
		move = func(s *services.PresentationStore) services.NavigationResult { return s.GoToElement(req.Index) }
	default:
		http.Error(w, "unknown navigation action", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, session.Navigate(move))
}

// Publish commits preview to live
// POST /api/sessions/{id}/publish
func (h *PresentationHandler) Publish(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	payload, published := session.Publish()
	if !published {
		http.Error(w, "no liturgy loaded", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// FlagRequest sets a boolean flag; a missing value toggles it
type FlagRequest struct {
	Value *bool `json:"value,omitempty"`
}

// FlagResponse reports the flag after the change
type FlagResponse struct {
	Value bool `json:"value"`
}

func decodeFlag(w http.ResponseWriter, r *http.Request) (FlagRequest, bool) {
	var req FlagRequest
	if r.ContentLength == 0 {
		return req, true
	}
	return req, decodeJSON(w, r, &req)
}

// ToggleLive flips live output
// POST /api/sessions/{id}/live
func (h *PresentationHandler) ToggleLive(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, FlagResponse{Value: session.GoLive()})
}

// SetBlack sets or toggles blackout
// POST /api/sessions/{id}/black
func (h *PresentationHandler) SetBlack(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeFlag(w, r)
	if !ok {
		return
	}
	if req.Value == nil {
		writeJSON(w, http.StatusOK, FlagResponse{Value: session.ToggleBlack()})
		return
	}
	session.SetBlack(*req.Value)
	writeJSON(w, http.StatusOK, FlagResponse{Value: *req.Value})
}

// ToggleFollow flips follow mode
// POST /api/sessions/{id}/follow
func (h *PresentationHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, FlagResponse{Value: session.Store.ToggleFollowMode()})
}

// SetPreviewOverlays sets or toggles overlay drawing on the preview
// POST /api/sessions/{id}/preview-overlays
func (h *PresentationHandler) SetPreviewOverlays(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeFlag(w, r)
	if !ok {
		return
	}
	if req.Value == nil {
		writeJSON(w, http.StatusOK, FlagResponse{Value: session.Store.TogglePreviewOverlays()})
		return
	}
	session.Store.SetPreviewOverlays(*req.Value)
	writeJSON(w, http.StatusOK, FlagResponse{Value: *req.Value})
}

// LowerThirdRequest represents a banner to show
type LowerThirdRequest struct {
	Message  string `json:"message"`
	Duration int    `json:"duration,omitempty"`
	Template string `json:"template,omitempty"`
}

// ShowLowerThird shows a banner on the output
// POST /api/sessions/{id}/lower-third
func (h *PresentationHandler) ShowLowerThird(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req LowerThirdRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	session.ShowLowerThird(req.Message, req.Duration, req.Template)
	w.WriteHeader(http.StatusNoContent)
}

// HideLowerThird removes the banner
// DELETE /api/sessions/{id}/lower-third
func (h *PresentationHandler) HideLowerThird(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.HideLowerThird()
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage relays an operator message (fullscreen, scenes, props) to outputs
// POST /api/sessions/{id}/messages
func (h *PresentationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var msg models.SyncMessage
	if !decodeJSON(w, r, &msg) {
		return
	}
	if err := session.Send(msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
