package models

// SlideType identifies the kind of content a slide carries
type SlideType string

const (
	SlideTypeTitle        SlideType = "title"
	SlideTypeSong         SlideType = "song"
	SlideTypePrayer       SlideType = "prayer"
	SlideTypeReading      SlideType = "reading"
	SlideTypeStory        SlideType = "story"
	SlideTypeAnnouncement SlideType = "announcement"
	SlideTypeImage        SlideType = "image"
	SlideTypeVideo        SlideType = "video"
	SlideTypeBlank        SlideType = "blank"
)

// SlideContent holds the variant-specific text and media fields of a slide
type SlideContent struct {
	Primary   string   `json:"primary,omitempty"`
	Secondary string   `json:"secondary,omitempty"`
	Subtitle  string   `json:"subtitle,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	Items     []string `json:"items,omitempty"`
}

// SlideStyle holds per-slide color and font overrides baked into the slide itself
type SlideStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	PrimaryColor    string `json:"primaryColor,omitempty"`
	SecondaryColor  string `json:"secondaryColor,omitempty"`
	PrimaryFont     string `json:"primaryFont,omitempty"`
	SecondaryFont   string `json:"secondaryFont,omitempty"`
}

// SlideMetadata records where a slide came from
type SlideMetadata struct {
	SourceComponent string `json:"sourceComponent,omitempty"`
	SourceID        string `json:"sourceId,omitempty"`
	Order           int    `json:"order"`
	GroupIndex      int    `json:"groupIndex,omitempty"`
	GroupTotal      int    `json:"groupTotal,omitempty"`
	// Temporary marks slides created during the session (duplicates, imports)
	Temporary bool `json:"temporary,omitempty"`
}

// Slide is one projectable unit of content
type Slide struct {
	ID       string        `json:"id"`
	Type     SlideType     `json:"type"`
	Content  SlideContent  `json:"content"`
	Style    *SlideStyle   `json:"style,omitempty"`
	Metadata SlideMetadata `json:"metadata"`
}

// Clone returns a deep copy of the slide
func (s Slide) Clone() Slide {
	out := s
	if s.Content.Items != nil {
		out.Content.Items = append([]string(nil), s.Content.Items...)
	}
	if s.Style != nil {
		style := *s.Style
		out.Style = &style
	}
	return out
}

// FlattenedElement is a navigation group over a contiguous run of slides
type FlattenedElement struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	StartSlideIndex int    `json:"startSlideIndex"`
	EndSlideIndex   int    `json:"endSlideIndex"`
	SlideCount      int    `json:"slideCount"`
}

// Contains reports whether the element's range covers the slide index
func (e FlattenedElement) Contains(index int) bool {
	return index >= e.StartSlideIndex && index <= e.EndSlideIndex
}

// ElementInfo describes a new element synthesized around bulk-inserted slides
type ElementInfo struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// LiturgyData is the flattened slide list returned by a slide loader
type LiturgyData struct {
	LiturgyID    string             `json:"liturgyId"`
	LiturgyTitle string             `json:"liturgyTitle"`
	LiturgyDate  string             `json:"liturgyDate,omitempty"`
	Slides       []Slide            `json:"slides"`
	Elements     []FlattenedElement `json:"elements"`
}

// Clone returns a deep copy of the liturgy data
func (d *LiturgyData) Clone() *LiturgyData {
	if d == nil {
		return nil
	}
	out := *d
	out.Slides = make([]Slide, len(d.Slides))
	for i, s := range d.Slides {
		out.Slides[i] = s.Clone()
	}
	out.Elements = append([]FlattenedElement(nil), d.Elements...)
	return &out
}

// ElementIndexFor returns the index of the element owning the slide, or -1
func (d *LiturgyData) ElementIndexFor(slideIndex int) int {
	if d == nil {
		return -1
	}
	for i, el := range d.Elements {
		if el.Contains(slideIndex) {
			return i
		}
	}
	return -1
}

// ElementIDFor returns the id of the element owning the slide, or ""
func (d *LiturgyData) ElementIDFor(slideIndex int) string {
	if i := d.ElementIndexFor(slideIndex); i >= 0 {
		return d.Elements[i].ID
	}
	return ""
}

// BlankSlide returns a placeholder slide for liturgies with no content
func BlankSlide(id string) Slide {
	return Slide{
		ID:   id,
		Type: SlideTypeBlank,
		Metadata: SlideMetadata{
			SourceComponent: "blank",
			GroupTotal:      1,
		},
	}
}
