package models

import (
	"bytes"
	"encoding/json"
)

// Buffer is one full copy of the publishable presentation content.
// PresentationState keeps two of them: Preview and Live.
type Buffer struct {
	Logo             LogoState            `json:"logoState"`
	TextOverlays     TextOverlayState     `json:"textOverlayState"`
	ImageOverlays    ImageOverlayState    `json:"imageOverlayState"`
	VideoBackgrounds VideoBackgroundState `json:"videoBackgroundState"`
	TempEdits        TempEdits            `json:"tempEdits"`
	Styles           StyleState           `json:"styleState"`
}

// NewBuffer returns an empty buffer with the default logo
func NewBuffer() Buffer {
	return Buffer{
		Logo:             DefaultLogoState(),
		TextOverlays:     TextOverlayState{Overlays: []TextOverlay{}},
		ImageOverlays:    ImageOverlayState{Overlays: []ImageOverlay{}},
		VideoBackgrounds: VideoBackgroundState{Backgrounds: []VideoBackground{}},
		TempEdits:        TempEdits{},
		Styles:           NewStyleState(),
	}
}

// Clone returns a deep copy
func (b Buffer) Clone() Buffer {
	return Buffer{
		Logo:             b.Logo.Clone(),
		TextOverlays:     b.TextOverlays.Clone(),
		ImageOverlays:    b.ImageOverlays.Clone(),
		VideoBackgrounds: b.VideoBackgrounds.Clone(),
		TempEdits:        b.TempEdits.Clone(),
		Styles:           b.Styles.Clone(),
	}
}

// ContentEqual compares two buffers by their JSON encoding
func (b Buffer) ContentEqual(other Buffer) bool {
	left, err := json.Marshal(b.Clone())
	if err != nil {
		return false
	}
	right, err := json.Marshal(other.Clone())
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}

// LowerThird is a transient banner shown over the output
type LowerThird struct {
	Message  string `json:"message"`
	Duration int    `json:"duration,omitempty"` // milliseconds, 0 = until hidden
	Template string `json:"template,omitempty"`
}

// PresentationState is the aggregate owned by a PresentationStore
type PresentationState struct {
	Data *LiturgyData `json:"data"`

	PreviewSlideIndex   int `json:"previewSlideIndex"`
	PreviewElementIndex int `json:"previewElementIndex"`
	LiveSlideIndex      int `json:"liveSlideIndex"`
	LiveElementIndex    int `json:"liveElementIndex"`

	IsLive              bool `json:"isLive"`
	IsBlack             bool `json:"isBlack"`
	FollowMode          bool `json:"followMode"`
	ShowPreviewOverlays bool `json:"showPreviewOverlays"`

	Preview Buffer `json:"preview"`
	Live    Buffer `json:"live"`

	LowerThird *LowerThird `json:"lowerThird,omitempty"`

	// SlidesChanged marks structural slide changes not yet published
	SlidesChanged         bool `json:"slidesChanged"`
	HasUnpublishedChanges bool `json:"hasUnpublishedChanges"`
}

// NewPresentationState returns an empty state with follow mode on
func NewPresentationState() PresentationState {
	return PresentationState{
		FollowMode:          true,
		PreviewElementIndex: -1,
		LiveElementIndex:    -1,
		Preview:             NewBuffer(),
		Live:                NewBuffer(),
	}
}

// Clone returns a deep copy
func (s PresentationState) Clone() PresentationState {
	out := s
	out.Data = s.Data.Clone()
	out.Preview = s.Preview.Clone()
	out.Live = s.Live.Clone()
	if s.LowerThird != nil {
		lt := *s.LowerThird
		out.LowerThird = &lt
	}
	return out
}

// SlideCount returns the number of loaded slides
func (s PresentationState) SlideCount() int {
	if s.Data == nil {
		return 0
	}
	return len(s.Data.Slides)
}

// CurrentSlide is the preview slide with preview edits applied
func (s PresentationState) CurrentSlide() (Slide, bool) {
	return s.slideAt(s.PreviewSlideIndex, s.Preview.TempEdits)
}

// LiveSlide is the live slide with live edits applied
func (s PresentationState) LiveSlide() (Slide, bool) {
	return s.slideAt(s.LiveSlideIndex, s.Live.TempEdits)
}

func (s PresentationState) slideAt(index int, edits TempEdits) (Slide, bool) {
	if s.Data == nil || index < 0 || index >= len(s.Data.Slides) {
		return Slide{}, false
	}
	slide := s.Data.Slides[index]
	if edit, ok := edits[slide.ID]; ok {
		return edit.ApplyTo(slide), true
	}
	return slide.Clone(), true
}

// ContentDiffers reports whether preview and live content differ.
// Slide indices are not content and are ignored.
func (s PresentationState) ContentDiffers() bool {
	return !s.Preview.ContentEqual(s.Live)
}

// RecomputeUnpublished derives HasUnpublishedChanges from pending slide
// changes and the preview/live content diff.
func (s *PresentationState) RecomputeUnpublished() {
	s.HasUnpublishedChanges = s.SlidesChanged || s.ContentDiffers()
}

// PublishPayload is the snapshot of committed state handed to the output surface
type PublishPayload struct {
	SlideIndex int `json:"slideIndex"`
	Buffer
}

// OutputState is everything the audience output needs to render from scratch
type OutputState struct {
	Data       *LiturgyData `json:"data"`
	SlideIndex int          `json:"slideIndex"`
	IsLive     bool         `json:"isLive"`
	IsBlack    bool         `json:"isBlack"`
	LowerThird *LowerThird  `json:"lowerThird,omitempty"`
	Buffer
	// Current is what the live buffer shows on SlideIndex
	Current SlideOverlays `json:"current"`
}

// SlideOverlays are the buffer values whose scope targets one slide
type SlideOverlays struct {
	Logo             *LogoSettings     `json:"logo,omitempty"`
	TextOverlays     []TextOverlay     `json:"textOverlays"`
	ImageOverlays    []ImageOverlay    `json:"imageOverlays"`
	VideoBackgrounds []VideoBackground `json:"videoBackgrounds"`
}

// ForSlide resolves the buffer's scoped values for a slide
func (b Buffer) ForSlide(slideIndex int, elementID string) SlideOverlays {
	out := SlideOverlays{
		TextOverlays:     FilterForSlide(b.TextOverlays.Overlays, slideIndex, elementID),
		ImageOverlays:    FilterForSlide(b.ImageOverlays.Overlays, slideIndex, elementID),
		VideoBackgrounds: FilterForSlide(b.VideoBackgrounds.Backgrounds, slideIndex, elementID),
	}
	if logo, ok := ResolveForSlide(b.Logo.Settings, b.Logo.Scope, slideIndex, elementID); ok {
		out.Logo = &logo
	}
	return out
}

// Output builds the live-side output state
func (s PresentationState) Output() OutputState {
	c := s.Clone()
	elementID := c.Data.ElementIDFor(c.LiveSlideIndex)
	return OutputState{
		Data:       c.Data,
		SlideIndex: c.LiveSlideIndex,
		IsLive:     c.IsLive,
		IsBlack:    c.IsBlack,
		LowerThird: c.LowerThird,
		Buffer:     c.Live,
		Current:    c.Live.ForSlide(c.LiveSlideIndex, elementID),
	}
}
