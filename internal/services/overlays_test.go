package services

import (
	"fmt"
	"testing"

	"liturgy-live/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextOverlayCap(t *testing.T) {
	s := newTestStore(t, testLiturgy())
	for i := 0; i < models.MaxTextOverlays; i++ {
		_, ok := s.AddTextOverlay(models.TextOverlay{Content: fmt.Sprintf("line %d", i)})
		require.True(t, ok)
	}
	_, ok := s.AddTextOverlay(models.TextOverlay{Content: "one too many"})
	assert.False(t, ok)
	assert.Len(t, s.State().Preview.TextOverlays.Overlays, models.MaxTextOverlays)
}

func TestTextOverlayLifecycle(t *testing.T) {
	s := newTestStore(t, testLiturgy())
	id, ok := s.AddTextOverlay(models.TextOverlay{
		Content:  "Psalm 23",
		Position: models.Position{X: 120, Y: -5},
	})
	require.True(t, ok)
	assert.Equal(t, "new-1", id)

	o := s.State().Preview.TextOverlays.Overlays[0]
	assert.Equal(t, models.Position{X: 100, Y: 0}, o.Position)
	assert.Equal(t, models.ScopeAll, o.Scope.Type, "empty scope defaults to all")

	hidden := false
	scope := models.Scope{Type: models.ScopeElement, ElementID: "hymn"}
	require.True(t, s.UpdateTextOverlay(id, models.TextOverlayPatch{Visible: &hidden, Scope: &scope}))
	o = s.State().Preview.TextOverlays.Overlays[0]
	assert.False(t, o.Visible)
	assert.Equal(t, "hymn", o.Scope.ElementID)

	assert.False(t, s.UpdateTextOverlay("missing", models.TextOverlayPatch{Visible: &hidden}))
	assert.True(t, s.RemoveTextOverlay(id))
	assert.False(t, s.RemoveTextOverlay(id))
	assert.Empty(t, s.State().Preview.TextOverlays.Overlays)
}

func TestImageOverlayDefaults(t *testing.T) {
	s := newTestStore(t, testLiturgy())
	id, ok := s.AddImageOverlay(models.ImageOverlay{URL: "dove.png", Opacity: 3})
	require.True(t, ok)

	o := s.State().Preview.ImageOverlays.Overlays[0]
	assert.Equal(t, id, o.ID)
	assert.Equal(t, 20.0, o.Size)
	assert.Equal(t, 1.0, o.Opacity, "opacity clamped to 1")

	half := 0.5
	require.True(t, s.UpdateImageOverlay(id, models.ImageOverlayPatch{Opacity: &half}))
	assert.Equal(t, 0.5, s.State().Preview.ImageOverlays.Overlays[0].Opacity)
	assert.True(t, s.RemoveImageOverlay(id))
}

func TestImageOverlayCap(t *testing.T) {
	s := newTestStore(t, testLiturgy())
	for i := 0; i < models.MaxImageOverlays; i++ {
		_, ok := s.AddImageOverlay(models.ImageOverlay{URL: "x.png"})
		require.True(t, ok)
	}
	_, ok := s.AddImageOverlay(models.ImageOverlay{URL: "x.png"})
	assert.False(t, ok)
}

func TestVideoBackgroundSingle(t *testing.T) {
	s := newTestStore(t, testLiturgy())
	id, ok := s.AddVideoBackground(models.VideoBackground{URL: "waves.mp4", Loop: true})
	require.True(t, ok)
	_, ok = s.AddVideoBackground(models.VideoBackground{URL: "fire.mp4"})
	assert.False(t, ok, "only one video background at a time")

	muted := true
	require.True(t, s.UpdateVideoBackground(id, models.VideoBackgroundPatch{Muted: &muted}))
	v := s.State().Preview.VideoBackgrounds.Backgrounds[0]
	assert.True(t, v.Muted)
	assert.Equal(t, 1.0, v.Opacity)

	s.Publish()
	require.True(t, s.RemoveVideoBackground(id))
	st := s.State()
	assert.Len(t, st.Live.VideoBackgrounds.Backgrounds, 1)
	assert.True(t, st.HasUnpublishedChanges)
}

func TestLogoCommands(t *testing.T) {
	s := newTestStore(t, testLiturgy())
	size := 500.0
	url := "logo.svg"
	require.True(t, s.UpdateLogo(models.LogoSettingsPatch{Size: &size, URL: &url}))
	logo := s.State().Preview.Logo
	assert.Equal(t, 100.0, logo.Settings.Size)
	assert.Equal(t, url, logo.Settings.URL)
	assert.Equal(t, models.DefaultLogoState().Settings.Position, logo.Settings.Position)

	require.True(t, s.SetLogoScope(models.Scope{Type: models.ScopeElements, ElementIDs: []string{"hymn", "sermon"}}))
	logo = s.State().Preview.Logo
	assert.Equal(t, []string{"hymn", "sermon"}, logo.Scope.ElementIDs)
	assert.Equal(t, models.DefaultLogoState(), s.State().Live.Logo, "live untouched until publish")

	require.True(t, s.SetLogoState(models.LogoState{Settings: models.LogoSettings{Visible: true, Size: -3}}))
	logo = s.State().Preview.Logo
	assert.Equal(t, models.MinLogoSize, logo.Settings.Size)
	assert.Equal(t, models.ScopeAll, logo.Scope.Type)
}

func TestSlideEdits(t *testing.T) {
	s := newTestStore(t, testLiturgy())
	primary := "Amazing Grace"
	assert.False(t, s.EditSlideContent("nope", models.SlideContentEdit{Primary: &primary}))

	require.True(t, s.EditSlideContent("h1", models.SlideContentEdit{Primary: &primary}))
	subtitle := "Newton"
	require.True(t, s.EditSlideContent("h1", models.SlideContentEdit{Subtitle: &subtitle}))

	s.GoToSlide(1)
	cur, ok := s.CurrentSlide()
	require.True(t, ok)
	assert.Equal(t, primary, cur.Content.Primary)
	assert.Equal(t, subtitle, cur.Content.Subtitle)
	assert.Equal(t, "verse 1", cur.Content.Secondary)

	require.True(t, s.ClearSlideEdit("h1"))
	assert.False(t, s.ClearSlideEdit("h1"))
	cur, _ = s.CurrentSlide()
	assert.Equal(t, "O Come", cur.Content.Primary)
}

func TestStyles(t *testing.T) {
	s := newTestStore(t, testLiturgy())
	red := models.StyleSet{Font: &models.FontStyle{Color: "#FF0000"}}
	big := models.StyleSet{Font: &models.FontStyle{Size: 72}}

	require.True(t, s.ApplyStyles(red, models.StyleScopeGlobal, "", ""))
	require.True(t, s.ApplyStyles(big, models.StyleScopeGlobal, "", ""))
	require.True(t, s.ApplyStyles(models.StyleSet{Font: &models.FontStyle{Color: "#00FF00"}}, models.StyleScopeElement, "", "hymn"))
	assert.False(t, s.ApplyStyles(red, models.StyleScopeElement, "", ""), "element scope needs an element id")
	assert.False(t, s.ApplyStyles(red, "page", "", ""))

	styles := s.State().Preview.Styles
	global := styles.GlobalStyles
	require.NotNil(t, global)
	assert.Equal(t, "#FF0000", global.Font.Color, "deep merge keeps earlier fields")
	assert.Equal(t, 72.0, global.Font.Size)

	resolved := styles.Resolve("h1", "hymn")
	assert.Equal(t, "#00FF00", resolved.Font.Color)
	assert.Equal(t, 72.0, resolved.Font.Size)

	require.True(t, s.ResetStyles(models.StyleScopeElement, "", "hymn"))
	assert.False(t, s.ResetStyles(models.StyleScopeElement, "", "hymn"))
	require.True(t, s.ResetStyles(models.StyleScopeGlobal, "", ""))
	assert.Nil(t, s.State().Preview.Styles.GlobalStyles)
}
