package models

// Snapshot is the auto-saved subset of a presentation session
type Snapshot struct {
	LiturgyID    string `json:"liturgyId"`
	LiturgyTitle string `json:"liturgyTitle,omitempty"`

	PreviewSlideIndex int  `json:"previewSlideIndex"`
	LiveSlideIndex    int  `json:"liveSlideIndex"`
	IsLive            bool `json:"isLive"`
	IsBlack           bool `json:"isBlack"`

	PreviewLogoState        LogoState        `json:"previewLogoState"`
	LiveLogoState           LogoState        `json:"liveLogoState"`
	PreviewTextOverlayState TextOverlayState `json:"previewTextOverlayState"`
	LiveTextOverlayState    TextOverlayState `json:"liveTextOverlayState"`
	PreviewTempEdits        TempEdits        `json:"previewTempEdits"`
	LiveTempEdits           TempEdits        `json:"liveTempEdits"`

	// SavedAt is epoch milliseconds
	SavedAt int64 `json:"savedAt"`
}

// SnapshotOf captures the persisted subset of state
func SnapshotOf(s PresentationState, savedAt int64) Snapshot {
	snap := Snapshot{
		PreviewSlideIndex:       s.PreviewSlideIndex,
		LiveSlideIndex:          s.LiveSlideIndex,
		IsLive:                  s.IsLive,
		IsBlack:                 s.IsBlack,
		PreviewLogoState:        s.Preview.Logo.Clone(),
		LiveLogoState:           s.Live.Logo.Clone(),
		PreviewTextOverlayState: s.Preview.TextOverlays.Clone(),
		LiveTextOverlayState:    s.Live.TextOverlays.Clone(),
		PreviewTempEdits:        s.Preview.TempEdits.Clone(),
		LiveTempEdits:           s.Live.TempEdits.Clone(),
		SavedAt:                 savedAt,
	}
	if s.Data != nil {
		snap.LiturgyID = s.Data.LiturgyID
		snap.LiturgyTitle = s.Data.LiturgyTitle
	}
	return snap
}
