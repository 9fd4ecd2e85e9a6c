package services

import (
	"log"
	"sync"

	"liturgy-live/internal/models"
)

// ChangeListener receives a copy of the state after every applied command
type ChangeListener func(state models.PresentationState)

// PresentationStore is the single owner of a session's PresentationState.
// Every command is applied atomically under the store lock; listeners are
// called after the lock is released.
type PresentationStore struct {
	mu        sync.Mutex
	state     models.PresentationState
	listeners []ChangeListener
	newID     func() string
}

// NewPresentationStore creates an empty store with no liturgy loaded
func NewPresentationStore() *PresentationStore {
	return &PresentationStore{
		state: models.NewPresentationState(),
		newID: NewID,
	}
}

// OnChange registers a listener for state changes
func (s *PresentationStore) OnChange(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns a copy of the current state
func (s *PresentationStore) State() models.PresentationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// CurrentSlide is the preview slide with preview edits applied
func (s *PresentationStore) CurrentSlide() (models.Slide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentSlide()
}

// LiveSlide is the live slide with live edits applied
func (s *PresentationStore) LiveSlide() (models.Slide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LiveSlide()
}

// mutate applies fn to the state. fn reports whether it changed anything.
func (s *PresentationStore) mutate(fn func(st *models.PresentationState) bool) bool {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	snapshot := s.state.Clone()
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

// mutateLoaded is mutate guarded on loaded liturgy data
func (s *PresentationStore) mutateLoaded(fn func(st *models.PresentationState) bool) bool {
	return s.mutate(func(st *models.PresentationState) bool {
		if st.Data == nil || len(st.Data.Slides) == 0 {
			return false
		}
		return fn(st)
	})
}

// mutatePreview is mutateLoaded for commands that edit the preview buffer
func (s *PresentationStore) mutatePreview(fn func(b *models.Buffer, st *models.PresentationState) bool) bool {
	return s.mutateLoaded(func(st *models.PresentationState) bool {
		if !fn(&st.Preview, st) {
			return false
		}
		st.RecomputeUnpublished()
		return true
	})
}

// LoadLiturgy replaces the slide data and resets navigation and live flags
func (s *PresentationStore) LoadLiturgy(data *models.LiturgyData) bool {
	if data == nil {
		return false
	}
	data = data.Clone()
	if len(data.Slides) == 0 {
		data.Slides = []models.Slide{models.BlankSlide(s.newID())}
	}
	return s.mutate(func(st *models.PresentationState) bool {
		st.Data = data
		st.PreviewSlideIndex = 0
		st.LiveSlideIndex = 0
		st.PreviewElementIndex = data.ElementIndexFor(0)
		st.LiveElementIndex = st.PreviewElementIndex
		st.IsLive = false
		st.IsBlack = false
		st.LowerThird = nil
		st.Preview.TempEdits = models.TempEdits{}
		st.Live.TempEdits = models.TempEdits{}
		st.Preview.Styles.SlideStyles = map[string]models.StyleSet{}
		st.Live.Styles.SlideStyles = map[string]models.StyleSet{}
		st.SlidesChanged = false
		st.RecomputeUnpublished()
		log.Printf("Loaded liturgy %s (%d slides, %d elements)", data.LiturgyID, len(data.Slides), len(data.Elements))
		return true
	})
}

// Restore hydrates the state from an auto-save snapshot taken for the loaded liturgy
func (s *PresentationStore) Restore(snap *models.Snapshot) bool {
	if snap == nil {
		return false
	}
	return s.mutateLoaded(func(st *models.PresentationState) bool {
		if st.Data.LiturgyID != snap.LiturgyID {
			return false
		}
		st.PreviewSlideIndex = clampIndex(snap.PreviewSlideIndex, len(st.Data.Slides))
		st.LiveSlideIndex = clampIndex(snap.LiveSlideIndex, len(st.Data.Slides))
		st.PreviewElementIndex = st.Data.ElementIndexFor(st.PreviewSlideIndex)
		st.LiveElementIndex = st.Data.ElementIndexFor(st.LiveSlideIndex)
		st.IsLive = snap.IsLive
		st.IsBlack = snap.IsBlack
		st.Preview.Logo = snap.PreviewLogoState.Clone()
		st.Preview.Logo.Settings = st.Preview.Logo.Settings.Clamp()
		st.Live.Logo = snap.LiveLogoState.Clone()
		st.Live.Logo.Settings = st.Live.Logo.Settings.Clamp()
		st.Preview.TextOverlays = snap.PreviewTextOverlayState.Clone()
		st.Live.TextOverlays = snap.LiveTextOverlayState.Clone()
		st.Preview.TempEdits = snap.PreviewTempEdits.Clone()
		st.Live.TempEdits = snap.LiveTempEdits.Clone()
		st.SlidesChanged = false
		st.RecomputeUnpublished()
		return true
	})
}

// Publish copies every preview structure into its live counterpart and
// returns the committed payload. It reads the state under the store lock,
// so an edit applied just before is always included.
func (s *PresentationStore) Publish() (models.PublishPayload, bool) {
	var payload models.PublishPayload
	ok := s.mutateLoaded(func(st *models.PresentationState) bool {
		st.LiveSlideIndex = st.PreviewSlideIndex
		st.LiveElementIndex = st.PreviewElementIndex
		st.Live = st.Preview.Clone()
		st.SlidesChanged = false
		st.HasUnpublishedChanges = false
		payload = models.PublishPayload{
			SlideIndex: st.LiveSlideIndex,
			Buffer:     st.Live.Clone(),
		}
		return true
	})
	return payload, ok
}

// GoLive toggles the live flag. Entering live clears blackout and preview overlays.
func (s *PresentationStore) GoLive() bool {
	var live bool
	s.mutate(func(st *models.PresentationState) bool {
		st.IsLive = !st.IsLive
		if st.IsLive {
			st.IsBlack = false
			st.ShowPreviewOverlays = false
		}
		live = st.IsLive
		return true
	})
	return live
}

// ToggleBlack flips the blackout flag and returns the new value
func (s *PresentationStore) ToggleBlack() bool {
	var black bool
	s.mutate(func(st *models.PresentationState) bool {
		st.IsBlack = !st.IsBlack
		black = st.IsBlack
		return true
	})
	return black
}

// SetBlack sets the blackout flag
func (s *PresentationStore) SetBlack(black bool) {
	s.mutate(func(st *models.PresentationState) bool {
		if st.IsBlack == black {
			return false
		}
		st.IsBlack = black
		return true
	})
}

// TogglePreviewOverlays flips whether overlays are drawn on the preview only
func (s *PresentationStore) TogglePreviewOverlays() bool {
	var show bool
	s.mutate(func(st *models.PresentationState) bool {
		st.ShowPreviewOverlays = !st.ShowPreviewOverlays
		show = st.ShowPreviewOverlays
		return true
	})
	return show
}

// SetPreviewOverlays sets the preview overlay flag
func (s *PresentationStore) SetPreviewOverlays(show bool) {
	s.mutate(func(st *models.PresentationState) bool {
		if st.ShowPreviewOverlays == show {
			return false
		}
		st.ShowPreviewOverlays = show
		return true
	})
}

// ToggleFollowMode flips whether live navigation mirrors preview navigation
func (s *PresentationStore) ToggleFollowMode() bool {
	var follow bool
	s.mutate(func(st *models.PresentationState) bool {
		st.FollowMode = !st.FollowMode
		follow = st.FollowMode
		return true
	})
	return follow
}

// ShowLowerThird sets the banner shown on the output
func (s *PresentationStore) ShowLowerThird(message string, durationMs int, template string) *models.LowerThird {
	if message == "" {
		return nil
	}
	lt := &models.LowerThird{Message: message, Duration: durationMs, Template: template}
	s.mutate(func(st *models.PresentationState) bool {
		copied := *lt
		st.LowerThird = &copied
		return true
	})
	return lt
}

// HideLowerThird clears the banner
func (s *PresentationStore) HideLowerThird() {
	s.mutate(func(st *models.PresentationState) bool {
		if st.LowerThird == nil {
			return false
		}
		st.LowerThird = nil
		return true
	})
}

func clampIndex(index, count int) int {
	if count <= 0 || index < 0 {
		return 0
	}
	if index > count-1 {
		return count - 1
	}
	return index
}
