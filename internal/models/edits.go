package models

// SlideContentEdit holds only the content fields the operator changed.
// A nil field falls back to the original slide value.
type SlideContentEdit struct {
	Primary   *string `json:"primary,omitempty"`
	Secondary *string `json:"secondary,omitempty"`
	Subtitle  *string `json:"subtitle,omitempty"`
}

// TempSlideEdit is a session-local content override for one slide
type TempSlideEdit struct {
	Content SlideContentEdit `json:"content"`
}

// TempEdits maps slide id to its override
type TempEdits map[string]TempSlideEdit

// Merge returns a new edit with non-nil fields of patch applied over e
func (e TempSlideEdit) Merge(patch SlideContentEdit) TempSlideEdit {
	out := e.clone()
	if patch.Primary != nil {
		out.Content.Primary = strPtr(*patch.Primary)
	}
	if patch.Secondary != nil {
		out.Content.Secondary = strPtr(*patch.Secondary)
	}
	if patch.Subtitle != nil {
		out.Content.Subtitle = strPtr(*patch.Subtitle)
	}
	return out
}

// ApplyTo overlays the edit on the slide field by field
func (e TempSlideEdit) ApplyTo(s Slide) Slide {
	out := s.Clone()
	if e.Content.Primary != nil {
		out.Content.Primary = *e.Content.Primary
	}
	if e.Content.Secondary != nil {
		out.Content.Secondary = *e.Content.Secondary
	}
	if e.Content.Subtitle != nil {
		out.Content.Subtitle = *e.Content.Subtitle
	}
	return out
}

func (e TempSlideEdit) clone() TempSlideEdit {
	var out TempSlideEdit
	if e.Content.Primary != nil {
		out.Content.Primary = strPtr(*e.Content.Primary)
	}
	if e.Content.Secondary != nil {
		out.Content.Secondary = strPtr(*e.Content.Secondary)
	}
	if e.Content.Subtitle != nil {
		out.Content.Subtitle = strPtr(*e.Content.Subtitle)
	}
	return out
}

// Clone returns a deep copy; a nil map clones to an empty one
func (t TempEdits) Clone() TempEdits {
	out := make(TempEdits, len(t))
	for k, v := range t {
		out[k] = v.clone()
	}
	return out
}

func strPtr(s string) *string {
	return &s
}
