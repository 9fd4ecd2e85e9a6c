package models

// ScopeType selects which slides a scoped value applies to
type ScopeType string

const (
	ScopeAll      ScopeType = "all"
	ScopeSlide    ScopeType = "slide"
	ScopeElement  ScopeType = "element"
	ScopeElements ScopeType = "elements"
)

// Scope is the targeting rule shared by logos, overlays and video backgrounds
type Scope struct {
	Type       ScopeType `json:"type"`
	SlideIndex int       `json:"slideIndex,omitempty"`
	ElementID  string    `json:"elementId,omitempty"`
	ElementIDs []string  `json:"elementIds,omitempty"`
}

// AllScope targets every slide
func AllScope() Scope {
	return Scope{Type: ScopeAll}
}

// Matches reports whether the scope covers the given slide
func (s Scope) Matches(slideIndex int, elementID string) bool {
	switch s.Type {
	case ScopeAll, "":
		return true
	case ScopeSlide:
		return s.SlideIndex == slideIndex
	case ScopeElement:
		return elementID != "" && s.ElementID == elementID
	case ScopeElements:
		if elementID == "" {
			return false
		}
		for _, id := range s.ElementIDs {
			if id == elementID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Clone returns a deep copy of the scope
func (s Scope) Clone() Scope {
	out := s
	if s.ElementIDs != nil {
		out.ElementIDs = append([]string(nil), s.ElementIDs...)
	}
	return out
}

// ResolveForSlide returns value when scope targets the slide
func ResolveForSlide[T any](value T, scope Scope, slideIndex int, elementID string) (T, bool) {
	if scope.Matches(slideIndex, elementID) {
		return value, true
	}
	var zero T
	return zero, false
}

// Scoped is implemented by every value that carries a Scope
type Scoped interface {
	GetScope() Scope
}

// FilterForSlide keeps the items whose scope targets the slide
func FilterForSlide[T Scoped](items []T, slideIndex int, elementID string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if v, ok := ResolveForSlide(item, item.GetScope(), slideIndex, elementID); ok {
			out = append(out, v)
		}
	}
	return out
}
