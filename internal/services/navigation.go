package services

import "liturgy-live/internal/models"

// NavigationResult reports where preview and live ended up after a move
type NavigationResult struct {
	PreviewSlideIndex int  `json:"previewSlideIndex"`
	LiveSlideIndex    int  `json:"liveSlideIndex"`
	LiveChanged       bool `json:"liveChanged"`
}

// GoToSlide moves the preview to index, clamped to the slide range.
// While live with follow mode on, the live index moves with it.
func (s *PresentationStore) GoToSlide(index int) NavigationResult {
	var res NavigationResult
	s.mutateLoaded(func(st *models.PresentationState) bool {
		res = navigate(st, index)
		return true
	})
	return res
}

// NextSlide advances the preview by one
func (s *PresentationStore) NextSlide() NavigationResult {
	return s.step(1)
}

// PrevSlide moves the preview back by one
func (s *PresentationStore) PrevSlide() NavigationResult {
	return s.step(-1)
}

// FirstSlide jumps to the first slide
func (s *PresentationStore) FirstSlide() NavigationResult {
	return s.GoToSlide(0)
}

// LastSlide jumps to the last slide
func (s *PresentationStore) LastSlide() NavigationResult {
	var res NavigationResult
	s.mutateLoaded(func(st *models.PresentationState) bool {
		res = navigate(st, len(st.Data.Slides)-1)
		return true
	})
	return res
}

// GoToElement jumps to the first slide of the element at elementIndex
func (s *PresentationStore) GoToElement(elementIndex int) NavigationResult {
	var res NavigationResult
	s.mutateLoaded(func(st *models.PresentationState) bool {
		elements := st.Data.Elements
		if len(elements) == 0 {
			res = NavigationResult{PreviewSlideIndex: st.PreviewSlideIndex, LiveSlideIndex: st.LiveSlideIndex}
			return false
		}
		el := elements[clampIndex(elementIndex, len(elements))]
		res = navigate(st, el.StartSlideIndex)
		return true
	})
	return res
}

func (s *PresentationStore) step(delta int) NavigationResult {
	var res NavigationResult
	s.mutateLoaded(func(st *models.PresentationState) bool {
		res = navigate(st, st.PreviewSlideIndex+delta)
		return true
	})
	return res
}

func navigate(st *models.PresentationState, index int) NavigationResult {
	index = clampIndex(index, len(st.Data.Slides))
	st.PreviewSlideIndex = index
	st.PreviewElementIndex = st.Data.ElementIndexFor(index)

	res := NavigationResult{PreviewSlideIndex: index, LiveSlideIndex: st.LiveSlideIndex}
	if st.IsLive && st.FollowMode {
		res.LiveChanged = st.LiveSlideIndex != index
		st.LiveSlideIndex = index
		st.LiveElementIndex = st.PreviewElementIndex
		res.LiveSlideIndex = index
	}
	return res
}
