package models

const (
	MaxTextOverlays   = 10
	MaxImageOverlays  = 10
	MaxVideoOverlays  = 1
	MinLogoSize       = 1.0
	DefaultLogoSize   = 10.0
	DefaultLogoMargin = 5.0
)

// Position is a point in percentages of the output surface (0-100)
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clamp returns the position with both coordinates limited to 0-100
func (p Position) Clamp() Position {
	return Position{X: clampPercent(p.X, 0), Y: clampPercent(p.Y, 0)}
}

func clampPercent(v, min float64) float64 {
	if v < min {
		return min
	}
	if v > 100 {
		return 100
	}
	return v
}

// LogoSettings controls the logo watermark
type LogoSettings struct {
	Visible  bool     `json:"visible"`
	URL      string   `json:"url,omitempty"`
	Position Position `json:"position"`
	Size     float64  `json:"size"`
}

// Clamp limits position and size to valid percentages
func (s LogoSettings) Clamp() LogoSettings {
	s.Position = s.Position.Clamp()
	s.Size = clampPercent(s.Size, MinLogoSize)
	return s
}

// LogoSettingsPatch is a partial update; nil fields are left unchanged
type LogoSettingsPatch struct {
	Visible  *bool     `json:"visible,omitempty"`
	URL      *string   `json:"url,omitempty"`
	Position *Position `json:"position,omitempty"`
	Size     *float64  `json:"size,omitempty"`
}

// Apply merges the patch into s and clamps the result
func (p LogoSettingsPatch) Apply(s LogoSettings) LogoSettings {
	if p.Visible != nil {
		s.Visible = *p.Visible
	}
	if p.URL != nil {
		s.URL = *p.URL
	}
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Size != nil {
		s.Size = *p.Size
	}
	return s.Clamp()
}

// LogoState is the logo configuration plus its scope
type LogoState struct {
	Settings LogoSettings `json:"settings"`
	Scope    Scope        `json:"scope"`
}

// DefaultLogoState places a hidden logo in the bottom right corner
func DefaultLogoState() LogoState {
	return LogoState{
		Settings: LogoSettings{
			Visible:  false,
			Position: Position{X: 100 - DefaultLogoMargin, Y: 100 - DefaultLogoMargin},
			Size:     DefaultLogoSize,
		},
		Scope: AllScope(),
	}
}

// Clone returns a deep copy
func (l LogoState) Clone() LogoState {
	l.Scope = l.Scope.Clone()
	return l
}

// GetScope implements Scoped
func (l LogoState) GetScope() Scope { return l.Scope }

// TextOverlayStyle describes how overlay text is drawn
type TextOverlayStyle struct {
	FontFamily      string  `json:"fontFamily,omitempty"`
	FontSize        float64 `json:"fontSize,omitempty"`
	FontWeight      string  `json:"fontWeight,omitempty"`
	Color           string  `json:"color,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	TextAlign       string  `json:"textAlign,omitempty"`
}

// TextOverlay is freeform text drawn above slides
type TextOverlay struct {
	ID       string           `json:"id"`
	Content  string           `json:"content"`
	Visible  bool             `json:"visible"`
	Position Position         `json:"position"`
	Style    TextOverlayStyle `json:"style"`
	Scope    Scope            `json:"scope"`
}

// GetScope implements Scoped
func (o TextOverlay) GetScope() Scope { return o.Scope }

// TextOverlayPatch is a partial update; nil fields are left unchanged
type TextOverlayPatch struct {
	Content  *string           `json:"content,omitempty"`
	Visible  *bool             `json:"visible,omitempty"`
	Position *Position         `json:"position,omitempty"`
	Style    *TextOverlayStyle `json:"style,omitempty"`
	Scope    *Scope            `json:"scope,omitempty"`
}

// Apply merges the patch into o
func (p TextOverlayPatch) Apply(o TextOverlay) TextOverlay {
	if p.Content != nil {
		o.Content = *p.Content
	}
	if p.Visible != nil {
		o.Visible = *p.Visible
	}
	if p.Position != nil {
		o.Position = p.Position.Clamp()
	}
	if p.Style != nil {
		o.Style = *p.Style
	}
	if p.Scope != nil {
		o.Scope = p.Scope.Clone()
	}
	return o
}

// TextOverlayState is the ordered list of text overlays
type TextOverlayState struct {
	Overlays []TextOverlay `json:"overlays"`
}

// Clone returns a deep copy; nil lists clone to empty
func (s TextOverlayState) Clone() TextOverlayState {
	out := TextOverlayState{Overlays: make([]TextOverlay, len(s.Overlays))}
	for i, o := range s.Overlays {
		o.Scope = o.Scope.Clone()
		out.Overlays[i] = o
	}
	return out
}

// ImageOverlay is a picture drawn above slides
type ImageOverlay struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Visible  bool     `json:"visible"`
	Position Position `json:"position"`
	Size     float64  `json:"size"`
	Opacity  float64  `json:"opacity"`
	Scope    Scope    `json:"scope"`
}

// GetScope implements Scoped
func (o ImageOverlay) GetScope() Scope { return o.Scope }

// ImageOverlayPatch is a partial update; nil fields are left unchanged
type ImageOverlayPatch struct {
	URL      *string   `json:"url,omitempty"`
	Visible  *bool     `json:"visible,omitempty"`
	Position *Position `json:"position,omitempty"`
	Size     *float64  `json:"size,omitempty"`
	Opacity  *float64  `json:"opacity,omitempty"`
	Scope    *Scope    `json:"scope,omitempty"`
}

// Apply merges the patch into o
func (p ImageOverlayPatch) Apply(o ImageOverlay) ImageOverlay {
	if p.URL != nil {
		o.URL = *p.URL
	}
	if p.Visible != nil {
		o.Visible = *p.Visible
	}
	if p.Position != nil {
		o.Position = p.Position.Clamp()
	}
	if p.Size != nil {
		o.Size = clampPercent(*p.Size, MinLogoSize)
	}
	if p.Opacity != nil {
		o.Opacity = clampUnit(*p.Opacity)
	}
	if p.Scope != nil {
		o.Scope = p.Scope.Clone()
	}
	return o
}

// ImageOverlayState is the ordered list of image overlays
type ImageOverlayState struct {
	Overlays []ImageOverlay `json:"overlays"`
}

// Clone returns a deep copy; nil lists clone to empty
func (s ImageOverlayState) Clone() ImageOverlayState {
	out := ImageOverlayState{Overlays: make([]ImageOverlay, len(s.Overlays))}
	for i, o := range s.Overlays {
		o.Scope = o.Scope.Clone()
		out.Overlays[i] = o
	}
	return out
}

// VideoBackground is a looping video drawn behind slide content
type VideoBackground struct {
	ID      string  `json:"id"`
	URL     string  `json:"url"`
	Visible bool    `json:"visible"`
	Loop    bool    `json:"loop"`
	Muted   bool    `json:"muted"`
	Opacity float64 `json:"opacity"`
	Scope   Scope   `json:"scope"`
}

// GetScope implements Scoped
func (v VideoBackground) GetScope() Scope { return v.Scope }

// VideoBackgroundPatch is a partial update; nil fields are left unchanged
type VideoBackgroundPatch struct {
	URL     *string  `json:"url,omitempty"`
	Visible *bool    `json:"visible,omitempty"`
	Loop    *bool    `json:"loop,omitempty"`
	Muted   *bool    `json:"muted,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Scope   *Scope   `json:"scope,omitempty"`
}

// Apply merges the patch into v
func (p VideoBackgroundPatch) Apply(v VideoBackground) VideoBackground {
	if p.URL != nil {
		v.URL = *p.URL
	}
	if p.Visible != nil {
		v.Visible = *p.Visible
	}
	if p.Loop != nil {
		v.Loop = *p.Loop
	}
	if p.Muted != nil {
		v.Muted = *p.Muted
	}
	if p.Opacity != nil {
		v.Opacity = clampUnit(*p.Opacity)
	}
	if p.Scope != nil {
		v.Scope = p.Scope.Clone()
	}
	return v
}

// VideoBackgroundState holds at most MaxVideoOverlays backgrounds
type VideoBackgroundState struct {
	Backgrounds []VideoBackground `json:"backgrounds"`
}

// Clone returns a deep copy; nil lists clone to empty
func (s VideoBackgroundState) Clone() VideoBackgroundState {
	out := VideoBackgroundState{Backgrounds: make([]VideoBackground, len(s.Backgrounds))}
	for i, v := range s.Backgrounds {
		v.Scope = v.Scope.Clone()
		out.Backgrounds[i] = v
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GetID returns the overlay id
func (o TextOverlay) GetID() string { return o.ID }

// GetID returns the overlay id
func (o ImageOverlay) GetID() string { return o.ID }

// GetID returns the background id
func (v VideoBackground) GetID() string { return v.ID }
