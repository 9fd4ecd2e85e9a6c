package models

import "fmt"

// MessageType tags a SyncMessage variant
type MessageType string

const (
	MsgSlideChange           MessageType = "SLIDE_CHANGE"
	MsgGoLive                MessageType = "GO_LIVE"
	MsgGoOffline             MessageType = "GO_OFFLINE"
	MsgGoBlack               MessageType = "GO_BLACK"
	MsgShowLowerThird        MessageType = "SHOW_LOWER_THIRD"
	MsgHideLowerThird        MessageType = "HIDE_LOWER_THIRD"
	MsgLiturgyLoaded         MessageType = "LITURGY_LOADED"
	MsgRequestState          MessageType = "REQUEST_STATE"
	MsgStateSync             MessageType = "STATE_SYNC"
	MsgFullscreenToggle      MessageType = "FULLSCREEN_TOGGLE"
	MsgLogoUpdate            MessageType = "LOGO_UPDATE"
	MsgSlidesUpdate          MessageType = "SLIDES_UPDATE"
	MsgTextOverlaysUpdate    MessageType = "TEXT_OVERLAYS_UPDATE"
	MsgImageOverlaysUpdate   MessageType = "IMAGE_OVERLAYS_UPDATE"
	MsgVideoBackgroundUpdate MessageType = "VIDEO_BACKGROUND_UPDATE"
	MsgStylesUpdate          MessageType = "STYLES_UPDATE"
	MsgSceneChange           MessageType = "SCENE_CHANGE"
	MsgPropShow              MessageType = "PROP_SHOW"
	MsgPropHide              MessageType = "PROP_HIDE"
	MsgPropsUpdate           MessageType = "PROPS_UPDATE"
)

var knownMessageTypes = map[MessageType]bool{
	MsgSlideChange: true, MsgGoLive: true, MsgGoOffline: true, MsgGoBlack: true,
	MsgShowLowerThird: true, MsgHideLowerThird: true, MsgLiturgyLoaded: true,
	MsgRequestState: true, MsgStateSync: true, MsgFullscreenToggle: true,
	MsgLogoUpdate: true, MsgSlidesUpdate: true, MsgTextOverlaysUpdate: true,
	MsgImageOverlaysUpdate: true, MsgVideoBackgroundUpdate: true, MsgStylesUpdate: true,
	MsgSceneChange: true, MsgPropShow: true, MsgPropHide: true, MsgPropsUpdate: true,
}

// Prop is a visual prop placed on a scene (children's ministry stage)
type Prop struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Position Position `json:"position"`
	Visible  bool     `json:"visible"`
}

// SyncMessage is the wire shape exchanged between operator and output.
// Only the fields belonging to Type are set.
type SyncMessage struct {
	Type MessageType `json:"type"`

	SlideIndex *int  `json:"slideIndex,omitempty"`
	Black      *bool `json:"black,omitempty"`

	Message  string `json:"message,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Template string `json:"template,omitempty"`

	Data  *LiturgyData `json:"data,omitempty"`
	State *OutputState `json:"state,omitempty"`

	LogoState            *LogoState            `json:"logoState,omitempty"`
	Slides               []Slide               `json:"slides,omitempty"`
	TempEdits            TempEdits             `json:"tempEdits,omitempty"`
	TextOverlayState     *TextOverlayState     `json:"textOverlayState,omitempty"`
	ImageOverlayState    *ImageOverlayState    `json:"imageOverlayState,omitempty"`
	VideoBackgroundState *VideoBackgroundState `json:"videoBackgroundState,omitempty"`
	StyleState           *StyleState           `json:"styleState,omitempty"`

	SceneID string `json:"sceneId,omitempty"`
	PropID  string `json:"propId,omitempty"`
	Props   []Prop `json:"props,omitempty"`
}

// Validate checks the type is known and its required fields are present
func (m SyncMessage) Validate() error {
	if !knownMessageTypes[m.Type] {
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	switch m.Type {
	case MsgSlideChange:
		if m.SlideIndex == nil {
			return fmt.Errorf("%s requires slideIndex", m.Type)
		}
	case MsgGoBlack:
		if m.Black == nil {
			return fmt.Errorf("%s requires black", m.Type)
		}
	case MsgShowLowerThird:
		if m.Message == "" {
			return fmt.Errorf("%s requires message", m.Type)
		}
	case MsgLiturgyLoaded:
		if m.Data == nil {
			return fmt.Errorf("%s requires data", m.Type)
		}
	case MsgStateSync:
		if m.State == nil {
			return fmt.Errorf("%s requires state", m.Type)
		}
	case MsgLogoUpdate:
		if m.LogoState == nil {
			return fmt.Errorf("%s requires logoState", m.Type)
		}
	case MsgTextOverlaysUpdate:
		if m.TextOverlayState == nil {
			return fmt.Errorf("%s requires textOverlayState", m.Type)
		}
	case MsgSceneChange:
		if m.SceneID == "" {
			return fmt.Errorf("%s requires sceneId", m.Type)
		}
	case MsgPropShow, MsgPropHide:
		if m.PropID == "" {
			return fmt.Errorf("%s requires propId", m.Type)
		}
	}
	return nil
}

// SlideChangeMessage moves the output to a slide
func SlideChangeMessage(index int) SyncMessage {
	return SyncMessage{Type: MsgSlideChange, SlideIndex: &index}
}

// GoBlackMessage sets or clears blackout on the output
func GoBlackMessage(black bool) SyncMessage {
	return SyncMessage{Type: MsgGoBlack, Black: &black}
}

// LiveMessage takes the output live or offline
func LiveMessage(live bool) SyncMessage {
	if live {
		return SyncMessage{Type: MsgGoLive}
	}
	return SyncMessage{Type: MsgGoOffline}
}

// LowerThirdMessage shows lt, or hides the banner when lt is nil
func LowerThirdMessage(lt *LowerThird) SyncMessage {
	if lt == nil {
		return SyncMessage{Type: MsgHideLowerThird}
	}
	return SyncMessage{
		Type:     MsgShowLowerThird,
		Message:  lt.Message,
		Duration: lt.Duration,
		Template: lt.Template,
	}
}

// StateSyncMessage carries the full output state to a joining window
func StateSyncMessage(state OutputState) SyncMessage {
	return SyncMessage{Type: MsgStateSync, State: &state}
}

// PublishMessages expands a publish payload into self-contained update messages
func PublishMessages(p PublishPayload, slides []Slide) []SyncMessage {
	logo := p.Logo
	text := p.TextOverlays
	images := p.ImageOverlays
	video := p.VideoBackgrounds
	styles := p.Styles
	edits := p.TempEdits
	if edits == nil {
		edits = TempEdits{}
	}
	return []SyncMessage{
		{Type: MsgSlidesUpdate, Slides: slides, TempEdits: edits},
		SlideChangeMessage(p.SlideIndex),
		{Type: MsgLogoUpdate, LogoState: &logo},
		{Type: MsgTextOverlaysUpdate, TextOverlayState: &text},
		{Type: MsgImageOverlaysUpdate, ImageOverlayState: &images},
		{Type: MsgVideoBackgroundUpdate, VideoBackgroundState: &video},
		{Type: MsgStylesUpdate, StyleState: &styles},
	}
}
