package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// SetupRoutes wires the operator API and the output websocket
func SetupRoutes(presentation *PresentationHandler, ws *WebSocketHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", presentation.CreateSession).Methods(http.MethodPost)

	s := api.PathPrefix("/sessions/{id}").Subrouter()
	s.HandleFunc("", presentation.GetSession).Methods(http.MethodGet)
	s.HandleFunc("", presentation.CloseSession).Methods(http.MethodDelete)
	s.HandleFunc("/liturgy", presentation.SwitchLiturgy).Methods(http.MethodPut)

	s.HandleFunc("/navigate", presentation.Navigate).Methods(http.MethodPost)
	s.HandleFunc("/publish", presentation.Publish).Methods(http.MethodPost)
	s.HandleFunc("/live", presentation.ToggleLive).Methods(http.MethodPost)
	s.HandleFunc("/black", presentation.SetBlack).Methods(http.MethodPost)
	s.HandleFunc("/follow", presentation.ToggleFollow).Methods(http.MethodPost)
	s.HandleFunc("/preview-overlays", presentation.SetPreviewOverlays).Methods(http.MethodPost)
	s.HandleFunc("/lower-third", presentation.ShowLowerThird).Methods(http.MethodPost)
	s.HandleFunc("/lower-third", presentation.HideLowerThird).Methods(http.MethodDelete)
	s.HandleFunc("/messages", presentation.SendMessage).Methods(http.MethodPost)

	s.HandleFunc("/logo", presentation.UpdateLogo).Methods(http.MethodPatch)
	s.HandleFunc("/logo/scope", presentation.SetLogoScope).Methods(http.MethodPut)

	s.HandleFunc("/text-overlays", presentation.AddTextOverlay).Methods(http.MethodPost)
	s.HandleFunc("/text-overlays/{overlayId}", presentation.UpdateTextOverlay).Methods(http.MethodPatch)
	s.HandleFunc("/text-overlays/{overlayId}", presentation.RemoveTextOverlay).Methods(http.MethodDelete)
	s.HandleFunc("/image-overlays", presentation.AddImageOverlay).Methods(http.MethodPost)
	s.HandleFunc("/image-overlays/{overlayId}", presentation.UpdateImageOverlay).Methods(http.MethodPatch)
	s.HandleFunc("/image-overlays/{overlayId}", presentation.RemoveImageOverlay).Methods(http.MethodDelete)
	s.HandleFunc("/video-backgrounds", presentation.AddVideoBackground).Methods(http.MethodPost)
	s.HandleFunc("/video-backgrounds/{overlayId}", presentation.UpdateVideoBackground).Methods(http.MethodPatch)
	s.HandleFunc("/video-backgrounds/{overlayId}", presentation.RemoveVideoBackground).Methods(http.MethodDelete)

	s.HandleFunc("/slides", presentation.InsertSlides).Methods(http.MethodPost)
	s.HandleFunc("/slides/{index:[0-9]+}/duplicate", presentation.DuplicateSlide).Methods(http.MethodPost)
	s.HandleFunc("/slides/{index:[0-9]+}", presentation.DeleteSlide).Methods(http.MethodDelete)
	s.HandleFunc("/slides/{slideId}/content", presentation.EditSlideContent).Methods(http.MethodPatch)
	s.HandleFunc("/slides/{slideId}/content", presentation.ClearSlideEdit).Methods(http.MethodDelete)

	s.HandleFunc("/styles", presentation.ApplyStyles).Methods(http.MethodPut)
	s.HandleFunc("/styles", presentation.ResetStyles).Methods(http.MethodDelete)

	s.HandleFunc("/export", presentation.ExportSession).Methods(http.MethodGet)
	s.HandleFunc("/import", presentation.ImportSession).Methods(http.MethodPost)

	router.HandleFunc("/ws/{id}", ws.ServeOutput).Methods(http.MethodGet)

	return router
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
