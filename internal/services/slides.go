package services

import (
	"sort"

	"liturgy-live/internal/models"
)

// DuplicateSlide inserts a copy of the slide at index right after it.
// The copy gets a new id and inherits the preview edit of the original.
func (s *PresentationStore) DuplicateSlide(index int) (string, bool) {
	var newID string
	ok := s.mutateLoaded(func(st *models.PresentationState) bool {
		if index < 0 || index >= len(st.Data.Slides) {
			return false
		}
		orig := st.Data.Slides[index]
		dup := orig.Clone()
		dup.ID = s.newID()
		dup.Metadata.Temporary = true
		newID = dup.ID

		insertSlides(st, []models.Slide{dup}, index, nil)
		if edit, ok := st.Preview.TempEdits[orig.ID]; ok {
			st.Preview.TempEdits[dup.ID] = edit.Merge(models.SlideContentEdit{})
		}
		st.SlidesChanged = true
		st.RecomputeUnpublished()
		return true
	})
	return newID, ok
}

// InsertSlide inserts one slide after afterIndex (-1 inserts at the front)
func (s *PresentationStore) InsertSlide(slide models.Slide, afterIndex int) (string, bool) {
	ids, ok := s.InsertSlides([]models.Slide{slide}, afterIndex, nil)
	if !ok {
		return "", false
	}
	return ids[0], true
}

// InsertSlides inserts slides after afterIndex. With info set the slides
// become a new element of their own instead of growing the surrounding one.
func (s *PresentationStore) InsertSlides(slides []models.Slide, afterIndex int, info *models.ElementInfo) ([]string, bool) {
	if len(slides) == 0 {
		return nil, false
	}
	var ids []string
	ok := s.mutateLoaded(func(st *models.PresentationState) bool {
		prepared := make([]models.Slide, len(slides))
		seen := make(map[string]bool, len(st.Data.Slides))
		for _, existing := range st.Data.Slides {
			seen[existing.ID] = true
		}
		for i, sl := range slides {
			sl = sl.Clone()
			if sl.ID == "" || seen[sl.ID] {
				sl.ID = s.newID()
			}
			if sl.Type == "" {
				sl.Type = models.SlideTypeBlank
			}
			sl.Metadata.Temporary = true
			seen[sl.ID] = true
			prepared[i] = sl
		}
		if info != nil && info.ID == "" {
			copied := *info
			copied.ID = s.newID()
			info = &copied
		}
		insertSlides(st, prepared, afterIndex, info)
		ids = make([]string, len(prepared))
		for i, sl := range prepared {
			ids[i] = sl.ID
		}
		st.SlidesChanged = true
		st.RecomputeUnpublished()
		return true
	})
	return ids, ok
}

// DeleteSlide removes the slide at index. The last remaining slide cannot be deleted.
func (s *PresentationStore) DeleteSlide(index int) bool {
	return s.mutateLoaded(func(st *models.PresentationState) bool {
		if index < 0 || index >= len(st.Data.Slides) || len(st.Data.Slides) == 1 {
			return false
		}
		deleteSlide(st, index)
		st.SlidesChanged = true
		st.RecomputeUnpublished()
		return true
	})
}

func slideIndexByID(data *models.LiturgyData, id string) int {
	if data == nil {
		return -1
	}
	for i, sl := range data.Slides {
		if sl.ID == id {
			return i
		}
	}
	return -1
}

// insertSlides splices slides into the data and keeps element ranges and
// navigation indices consistent.
func insertSlides(st *models.PresentationState, slides []models.Slide, afterIndex int, info *models.ElementInfo) {
	data := st.Data
	n := len(slides)
	pos := clampInsertPosition(afterIndex+1, len(data.Slides))

	if info != nil {
		// a new element may not split an existing one
		for _, el := range data.Elements {
			if el.StartSlideIndex < pos && pos <= el.EndSlideIndex {
				pos = el.EndSlideIndex + 1
			}
		}
	}

	merged := make([]models.Slide, 0, len(data.Slides)+n)
	merged = append(merged, data.Slides[:pos]...)
	merged = append(merged, slides...)
	merged = append(merged, data.Slides[pos:]...)
	data.Slides = merged

	for i := range data.Elements {
		el := &data.Elements[i]
		switch {
		case el.StartSlideIndex >= pos:
			el.StartSlideIndex += n
			el.EndSlideIndex += n
		case info == nil && el.Contains(pos-1):
			el.EndSlideIndex += n
			el.SlideCount += n
		}
	}

	if info != nil {
		data.Elements = append(data.Elements, models.FlattenedElement{
			ID:              info.ID,
			Type:            info.Type,
			Title:           info.Title,
			StartSlideIndex: pos,
			EndSlideIndex:   pos + n - 1,
			SlideCount:      n,
		})
		sort.SliceStable(data.Elements, func(i, j int) bool {
			return data.Elements[i].StartSlideIndex < data.Elements[j].StartSlideIndex
		})
	}

	if st.PreviewSlideIndex >= pos {
		st.PreviewSlideIndex += n
	}
	if st.LiveSlideIndex >= pos {
		st.LiveSlideIndex += n
	}
	reindexElements(st)
}

// deleteSlide removes one slide, shrinking or dropping its element and
// shifting every later element back by one.
func deleteSlide(st *models.PresentationState, index int) {
	data := st.Data
	removed := data.Slides[index]
	data.Slides = append(data.Slides[:index:index], data.Slides[index+1:]...)

	elements := data.Elements[:0:0]
	for _, el := range data.Elements {
		switch {
		case el.Contains(index):
			el.EndSlideIndex--
			el.SlideCount--
			if el.SlideCount <= 0 {
				continue
			}
		case el.StartSlideIndex > index:
			el.StartSlideIndex--
			el.EndSlideIndex--
		}
		elements = append(elements, el)
	}
	data.Elements = elements

	delete(st.Preview.TempEdits, removed.ID)
	delete(st.Preview.Styles.SlideStyles, removed.ID)

	if st.PreviewSlideIndex > index {
		st.PreviewSlideIndex--
	}
	if st.LiveSlideIndex > index {
		st.LiveSlideIndex--
	}
	st.PreviewSlideIndex = clampIndex(st.PreviewSlideIndex, len(data.Slides))
	st.LiveSlideIndex = clampIndex(st.LiveSlideIndex, len(data.Slides))
	reindexElements(st)
}

func reindexElements(st *models.PresentationState) {
	st.PreviewElementIndex = st.Data.ElementIndexFor(st.PreviewSlideIndex)
	st.LiveElementIndex = st.Data.ElementIndexFor(st.LiveSlideIndex)
}

func clampInsertPosition(pos, count int) int {
	if pos < 0 {
		return 0
	}
	if pos > count {
		return count
	}
	return pos
}
