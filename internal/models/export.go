package models

import "time"

// ExportVersion is the document version written by this build
const ExportVersion = "1.0"

// LiturgyRef identifies the liturgy an export was taken from
type LiturgyRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
}

// ExportState is the portable part of a presentation session
type ExportState struct {
	TempSlides        []Slide           `json:"tempSlides"`
	StyleState        StyleState        `json:"styleState"`
	LogoState         LogoState         `json:"logoState"`
	TextOverlayState  TextOverlayState  `json:"textOverlayState"`
	ImageOverlayState ImageOverlayState `json:"imageOverlayState"`
	TempEdits         TempEdits         `json:"tempEdits"`
}

// ExportDocument is the versioned export/import file format
type ExportDocument struct {
	Version           string      `json:"version"`
	ExportedAt        time.Time   `json:"exportedAt"`
	ExportedBy        string      `json:"exportedBy,omitempty"`
	Liturgy           LiturgyRef  `json:"liturgy"`
	State             ExportState `json:"state"`
	IncludeFullSlides bool        `json:"includeFullSlides,omitempty"`
	FullSlides        []Slide     `json:"fullSlides,omitempty"`
}
