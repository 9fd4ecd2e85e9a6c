package models

// StyleScope selects which tier of the style state a change targets
type StyleScope string

const (
	StyleScopeGlobal  StyleScope = "global"
	StyleScopeElement StyleScope = "element"
	StyleScopeSlide   StyleScope = "slide"
)

// FontStyle overrides text rendering. Empty fields are unset.
type FontStyle struct {
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Weight string  `json:"weight,omitempty"`
	Color  string  `json:"color,omitempty"`
	Align  string  `json:"align,omitempty"`
}

// TextBackground draws a box behind slide text
type TextBackground struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Color   string   `json:"color,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Padding float64  `json:"padding,omitempty"`
}

// SlideBackground replaces the slide's background
type SlideBackground struct {
	Color    string   `json:"color,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
}

// StyleSet is one tier of style overrides
type StyleSet struct {
	Font            *FontStyle       `json:"font,omitempty"`
	TextBackground  *TextBackground  `json:"textBackground,omitempty"`
	SlideBackground *SlideBackground `json:"slideBackground,omitempty"`
}

// DefaultStyleSet is the built-in style used when no tier overrides a field
func DefaultStyleSet() StyleSet {
	enabled := false
	opaque := 1.0
	half := 0.5
	return StyleSet{
		Font: &FontStyle{
			Family: "Inter",
			Size:   48,
			Weight: "600",
			Color:  "#FFFFFF",
			Align:  "center",
		},
		TextBackground: &TextBackground{
			Enabled: &enabled,
			Color:   "#000000",
			Opacity: &half,
			Padding: 16,
		},
		SlideBackground: &SlideBackground{
			Color:   "#1A1A1A",
			Opacity: &opaque,
		},
	}
}

// Merge deep-merges override into s field by field and returns a new set
func (s StyleSet) Merge(override StyleSet) StyleSet {
	out := s.Clone()
	if f := override.Font; f != nil {
		if out.Font == nil {
			out.Font = &FontStyle{}
		}
		if f.Family != "" {
			out.Font.Family = f.Family
		}
		if f.Size != 0 {
			out.Font.Size = f.Size
		}
		if f.Weight != "" {
			out.Font.Weight = f.Weight
		}
		if f.Color != "" {
			out.Font.Color = f.Color
		}
		if f.Align != "" {
			out.Font.Align = f.Align
		}
	}
	if tb := override.TextBackground; tb != nil {
		if out.TextBackground == nil {
			out.TextBackground = &TextBackground{}
		}
		if tb.Enabled != nil {
			out.TextBackground.Enabled = boolPtr(*tb.Enabled)
		}
		if tb.Color != "" {
			out.TextBackground.Color = tb.Color
		}
		if tb.Opacity != nil {
			out.TextBackground.Opacity = floatPtr(*tb.Opacity)
		}
		if tb.Padding != 0 {
			out.TextBackground.Padding = tb.Padding
		}
	}
	if sb := override.SlideBackground; sb != nil {
		if out.SlideBackground == nil {
			out.SlideBackground = &SlideBackground{}
		}
		if sb.Color != "" {
			out.SlideBackground.Color = sb.Color
		}
		if sb.ImageURL != "" {
			out.SlideBackground.ImageURL = sb.ImageURL
		}
		if sb.Opacity != nil {
			out.SlideBackground.Opacity = floatPtr(*sb.Opacity)
		}
	}
	return out
}

// Clone returns a deep copy
func (s StyleSet) Clone() StyleSet {
	var out StyleSet
	if s.Font != nil {
		f := *s.Font
		out.Font = &f
	}
	if s.TextBackground != nil {
		tb := *s.TextBackground
		if tb.Enabled != nil {
			tb.Enabled = boolPtr(*tb.Enabled)
		}
		if tb.Opacity != nil {
			tb.Opacity = floatPtr(*tb.Opacity)
		}
		out.TextBackground = &tb
	}
	if s.SlideBackground != nil {
		sb := *s.SlideBackground
		if sb.Opacity != nil {
			sb.Opacity = floatPtr(*sb.Opacity)
		}
		out.SlideBackground = &sb
	}
	return out
}

// StyleState is the three-tier style override store
type StyleState struct {
	GlobalStyles  *StyleSet           `json:"globalStyles,omitempty"`
	ElementStyles map[string]StyleSet `json:"elementStyles"`
	SlideStyles   map[string]StyleSet `json:"slideStyles"`
}

// NewStyleState returns an empty style state with initialized maps
func NewStyleState() StyleState {
	return StyleState{
		ElementStyles: map[string]StyleSet{},
		SlideStyles:   map[string]StyleSet{},
	}
}

// Clone returns a deep copy; nil maps clone to empty ones
func (s StyleState) Clone() StyleState {
	out := NewStyleState()
	if s.GlobalStyles != nil {
		g := s.GlobalStyles.Clone()
		out.GlobalStyles = &g
	}
	for k, v := range s.ElementStyles {
		out.ElementStyles[k] = v.Clone()
	}
	for k, v := range s.SlideStyles {
		out.SlideStyles[k] = v.Clone()
	}
	return out
}

// Resolve computes the effective style for a slide:
// slide override > element override > global > built-in default.
func (s StyleState) Resolve(slideID, elementID string) StyleSet {
	out := DefaultStyleSet()
	if s.GlobalStyles != nil {
		out = out.Merge(*s.GlobalStyles)
	}
	if elementID != "" {
		if el, ok := s.ElementStyles[elementID]; ok {
			out = out.Merge(el)
		}
	}
	if slideID != "" {
		if sl, ok := s.SlideStyles[slideID]; ok {
			out = out.Merge(sl)
		}
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}
