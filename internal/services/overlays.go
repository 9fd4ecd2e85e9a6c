package services

import "liturgy-live/internal/models"

const defaultImageOverlaySize = 20.0

type identified interface {
	GetID() string
}

// appendCapped appends item unless the list is already at max
func appendCapped[T any](list []T, item T, max int) ([]T, bool) {
	if len(list) >= max {
		return list, false
	}
	return append(list, item), true
}

func replaceByID[T identified](list []T, id string, apply func(T) T) bool {
	for i := range list {
		if list[i].GetID() == id {
			list[i] = apply(list[i])
			return true
		}
	}
	return false
}

func removeByID[T identified](list []T, id string) ([]T, bool) {
	for i := range list {
		if list[i].GetID() == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

func normalizeScope(scope models.Scope) models.Scope {
	if scope.Type == "" {
		return models.AllScope()
	}
	return scope.Clone()
}

// UpdateLogo merges partial settings into the preview logo
func (s *PresentationStore) UpdateLogo(patch models.LogoSettingsPatch) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		b.Logo.Settings = patch.Apply(b.Logo.Settings)
		return true
	})
}

// SetLogoScope changes which slides the preview logo applies to
func (s *PresentationStore) SetLogoScope(scope models.Scope) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		b.Logo.Scope = normalizeScope(scope)
		return true
	})
}

// SetLogoState replaces the preview logo
func (s *PresentationStore) SetLogoState(state models.LogoState) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		b.Logo = models.LogoState{
			Settings: state.Settings.Clamp(),
			Scope:    normalizeScope(state.Scope),
		}
		return true
	})
}

// AddTextOverlay appends an overlay to the preview list and returns its id.
// Additions beyond MaxTextOverlays are ignored.
func (s *PresentationStore) AddTextOverlay(o models.TextOverlay) (string, bool) {
	if o.ID == "" {
		o.ID = s.newID()
	}
	o.Position = o.Position.Clamp()
	o.Scope = normalizeScope(o.Scope)
	ok := s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		var added bool
		b.TextOverlays.Overlays, added = appendCapped(b.TextOverlays.Overlays, o, models.MaxTextOverlays)
		return added
	})
	return o.ID, ok
}

// UpdateTextOverlay patches a preview text overlay
func (s *PresentationStore) UpdateTextOverlay(id string, patch models.TextOverlayPatch) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		return replaceByID(b.TextOverlays.Overlays, id, patch.Apply)
	})
}

// RemoveTextOverlay deletes a preview text overlay
func (s *PresentationStore) RemoveTextOverlay(id string) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		var removed bool
		b.TextOverlays.Overlays, removed = removeByID(b.TextOverlays.Overlays, id)
		return removed
	})
}

// AddImageOverlay appends an image overlay to the preview list and returns its id
func (s *PresentationStore) AddImageOverlay(o models.ImageOverlay) (string, bool) {
	if o.ID == "" {
		o.ID = s.newID()
	}
	if o.Size == 0 {
		o.Size = defaultImageOverlaySize
	}
	if o.Opacity == 0 {
		o.Opacity = 1
	}
	o = models.ImageOverlayPatch{Position: &o.Position, Size: &o.Size, Opacity: &o.Opacity}.Apply(o)
	o.Scope = normalizeScope(o.Scope)
	ok := s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		var added bool
		b.ImageOverlays.Overlays, added = appendCapped(b.ImageOverlays.Overlays, o, models.MaxImageOverlays)
		return added
	})
	return o.ID, ok
}

// UpdateImageOverlay patches a preview image overlay
func (s *PresentationStore) UpdateImageOverlay(id string, patch models.ImageOverlayPatch) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		return replaceByID(b.ImageOverlays.Overlays, id, patch.Apply)
	})
}

// RemoveImageOverlay deletes a preview image overlay
func (s *PresentationStore) RemoveImageOverlay(id string) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		var removed bool
		b.ImageOverlays.Overlays, removed = removeByID(b.ImageOverlays.Overlays, id)
		return removed
	})
}

// AddVideoBackground sets the preview video background if none is present
func (s *PresentationStore) AddVideoBackground(v models.VideoBackground) (string, bool) {
	if v.ID == "" {
		v.ID = s.newID()
	}
	if v.Opacity == 0 {
		v.Opacity = 1
	}
	v = models.VideoBackgroundPatch{Opacity: &v.Opacity}.Apply(v)
	v.Scope = normalizeScope(v.Scope)
	ok := s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		var added bool
		b.VideoBackgrounds.Backgrounds, added = appendCapped(b.VideoBackgrounds.Backgrounds, v, models.MaxVideoOverlays)
		return added
	})
	return v.ID, ok
}

// UpdateVideoBackground patches the preview video background
func (s *PresentationStore) UpdateVideoBackground(id string, patch models.VideoBackgroundPatch) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		return replaceByID(b.VideoBackgrounds.Backgrounds, id, patch.Apply)
	})
}

// RemoveVideoBackground deletes the preview video background
func (s *PresentationStore) RemoveVideoBackground(id string) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		var removed bool
		b.VideoBackgrounds.Backgrounds, removed = removeByID(b.VideoBackgrounds.Backgrounds, id)
		return removed
	})
}

// EditSlideContent merges a partial content override for one slide
func (s *PresentationStore) EditSlideContent(slideID string, edit models.SlideContentEdit) bool {
	return s.mutatePreview(func(b *models.Buffer, st *models.PresentationState) bool {
		if slideIndexByID(st.Data, slideID) < 0 {
			return false
		}
		b.TempEdits[slideID] = b.TempEdits[slideID].Merge(edit)
		return true
	})
}

// ClearSlideEdit drops the override for one slide
func (s *PresentationStore) ClearSlideEdit(slideID string) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		if _, ok := b.TempEdits[slideID]; !ok {
			return false
		}
		delete(b.TempEdits, slideID)
		return true
	})
}

// ApplyStyles deep-merges styles into the given tier of the preview style state
func (s *PresentationStore) ApplyStyles(styles models.StyleSet, scope models.StyleScope, slideID, elementID string) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		switch scope {
		case models.StyleScopeGlobal:
			var base models.StyleSet
			if b.Styles.GlobalStyles != nil {
				base = *b.Styles.GlobalStyles
			}
			merged := base.Merge(styles)
			b.Styles.GlobalStyles = &merged
		case models.StyleScopeElement:
			if elementID == "" {
				return false
			}
			b.Styles.ElementStyles[elementID] = b.Styles.ElementStyles[elementID].Merge(styles)
		case models.StyleScopeSlide:
			if slideID == "" {
				return false
			}
			b.Styles.SlideStyles[slideID] = b.Styles.SlideStyles[slideID].Merge(styles)
		default:
			return false
		}
		return true
	})
}

// ResetStyles removes the overrides of one tier
func (s *PresentationStore) ResetStyles(scope models.StyleScope, slideID, elementID string) bool {
	return s.mutatePreview(func(b *models.Buffer, _ *models.PresentationState) bool {
		switch scope {
		case models.StyleScopeGlobal:
			if b.Styles.GlobalStyles == nil {
				return false
			}
			b.Styles.GlobalStyles = nil
		case models.StyleScopeElement:
			if _, ok := b.Styles.ElementStyles[elementID]; !ok {
				return false
			}
			delete(b.Styles.ElementStyles, elementID)
		case models.StyleScopeSlide:
			if _, ok := b.Styles.SlideStyles[slideID]; !ok {
				return false
			}
			delete(b.Styles.SlideStyles, slideID)
		default:
			return false
		}
		return true
	})
}
