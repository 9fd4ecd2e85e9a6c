package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"liturgy-live/internal/models"
	"liturgy-live/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLoader struct{}

func (fixedLoader) Load(_ context.Context, id string) (*models.LiturgyData, error) {
	if id != "sunday-1" {
		return nil, fmt.Errorf("%w: %s", services.ErrLiturgyNotFound, id)
	}
	data := &models.LiturgyData{LiturgyID: id, LiturgyTitle: "Sunday"}
	for i := 0; i < 4; i++ {
		data.Slides = append(data.Slides, models.Slide{
			ID:      fmt.Sprintf("s%d", i),
			Type:    models.SlideTypeSong,
			Content: models.SlideContent{Primary: fmt.Sprintf("verse %d", i+1)},
		})
	}
	data.Elements = []models.FlattenedElement{
		{ID: "hymn", Type: "song", StartSlideIndex: 0, EndSlideIndex: 3, SlideCount: 4},
	}
	return data, nil
}

type memorySnapshots struct{ m map[string][]byte }

func (s *memorySnapshots) Read(key string) ([]byte, error) {
	data, ok := s.m[key]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", key, fs.ErrNotExist)
	}
	return data, nil
}

func (s *memorySnapshots) Write(key string, data []byte) error {
	s.m[key] = data
	return nil
}

func (s *memorySnapshots) Erase(key string) error {
	delete(s.m, key)
	return nil
}

type testServer struct {
	*httptest.Server
	sessions *services.SessionManager
}

func newTestServer(t *testing.T, maxImport int64) *testServer {
	t.Helper()
	sessions := services.NewSessionManager(fixedLoader{}, services.NewSyncHub(0), &memorySnapshots{m: map[string][]byte{}}, services.SessionOptions{
		AutoSaveDelay:  time.Hour,
		SnapshotMaxAge: time.Hour,
	})
	router := SetupRoutes(NewPresentationHandler(sessions, maxImport), NewWebSocketHandler(sessions))
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		sessions.CloseAll()
	})
	return &testServer{Server: srv, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/sessions", CreateSessionRequest{LiturgyID: "sunday-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created CreateSessionResponse
	decode(t, resp, &created)
	require.NotEmpty(t, created.SessionID)
	return created.SessionID
}

func (s *testServer) state(t *testing.T, id string) models.PresentationState {
	t.Helper()
	resp := s.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st models.PresentationState
	decode(t, resp, &st)
	return st
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t, 0)

	t.Run("created", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/sessions", CreateSessionRequest{LiturgyID: "sunday-1"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created CreateSessionResponse
		decode(t, resp, &created)
		assert.Equal(t, created.SessionID, created.Channel)
		assert.Len(t, created.State.Data.Slides, 4)
		assert.True(t, created.State.FollowMode)
	})

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"missing liturgy id", CreateSessionRequest{}, http.StatusBadRequest},
		{"unknown liturgy", CreateSessionRequest{LiturgyID: "nope"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/sessions", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, 0)
	id := srv.createSession(t)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/sessions/unknown", nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/sessions/"+id, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/sessions/"+id, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodDelete, "/api/sessions/"+id, nil).StatusCode)
}

func TestSwitchLiturgy(t *testing.T) {
	srv := newTestServer(t, 0)
	id := srv.createSession(t)
	path := "/api/sessions/" + id + "/liturgy"

	tests := []struct {
		name string
		path string
		body interface{}
		want int
	}{
		{"invalid json", path, "{", http.StatusBadRequest},
		{"missing liturgy id", path, CreateSessionRequest{}, http.StatusBadRequest},
		{"unknown liturgy", path, CreateSessionRequest{LiturgyID: "nope"}, http.StatusNotFound},
		{"unknown session", "/api/sessions/unknown/liturgy", CreateSessionRequest{LiturgyID: "sunday-1"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, srv.do(t, http.MethodPut, tt.path, tt.body).StatusCode)
		})
	}

	t.Run("reload keeps the saved position", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/sessions/"+id+"/navigate", NavigateRequest{Action: "goto", Index: 2})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = srv.do(t, http.MethodPut, path, CreateSessionRequest{LiturgyID: "sunday-1"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var st models.PresentationState
		decode(t, resp, &st)
		assert.Equal(t, "sunday-1", st.Data.LiturgyID)
		assert.Equal(t, 2, st.PreviewSlideIndex)
	})
}

func TestNavigateAndPublish(t *testing.T) {
	srv := newTestServer(t, 0)
	id := srv.createSession(t)
	base := "/api/sessions/" + id

	navigate := func(req NavigateRequest) services.NavigationResult {
		resp := srv.do(t, http.MethodPost, base+"/navigate", req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var res services.NavigationResult
		decode(t, resp, &res)
		return res
	}

	res := navigate(NavigateRequest{Action: "next"})
	assert.Equal(t, 1, res.PreviewSlideIndex)
	assert.Equal(t, 0, res.LiveSlideIndex)
	assert.False(t, res.LiveChanged)

	res = navigate(NavigateRequest{Action: "goto", Index: 99})
	assert.Equal(t, 3, res.PreviewSlideIndex)
	res = navigate(NavigateRequest{Action: "first"})
	assert.Equal(t, 0, res.PreviewSlideIndex)

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodPost, base+"/navigate", NavigateRequest{Action: "sideways"}).StatusCode)

	resp := srv.do(t, http.MethodPost, base+"/text-overlays", models.TextOverlay{Content: "Welcome", Visible: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, srv.state(t, id).HasUnpublishedChanges)

	resp = srv.do(t, http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload models.PublishPayload
	decode(t, resp, &payload)
	require.Len(t, payload.TextOverlays.Overlays, 1)

	st := srv.state(t, id)
	assert.False(t, st.HasUnpublishedChanges)
	assert.Equal(t, st.Preview.TextOverlays, st.Live.TextOverlays)
}

func TestFlags(t *testing.T) {
	srv := newTestServer(t, 0)
	base := "/api/sessions/" + srv.createSession(t)

	flag := func(path string, body interface{}) bool {
		resp := srv.do(t, http.MethodPost, base+path, body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got FlagResponse
		decode(t, resp, &got)
		return got.Value
	}

	assert.True(t, flag("/live", nil))
	assert.True(t, flag("/black", nil), "empty body toggles")
	value := false
	assert.False(t, flag("/black", FlagRequest{Value: &value}))
	assert.False(t, flag("/follow", nil))
	assert.True(t, flag("/preview-overlays", nil))

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodPost, base+"/lower-third", LowerThirdRequest{}).StatusCode)
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodPost, base+"/lower-third", LowerThirdRequest{Message: "Welcome"}).StatusCode)
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, base+"/lower-third", nil).StatusCode)

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodPost, base+"/messages", models.SyncMessage{Type: "NOPE"}).StatusCode)
	assert.Equal(t, http.StatusAccepted, srv.do(t, http.MethodPost, base+"/messages", models.SyncMessage{Type: models.MsgFullscreenToggle}).StatusCode)
}

func TestOverlayEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)
	id := srv.createSession(t)
	base := "/api/sessions/" + id

	t.Run("text overlay cap", func(t *testing.T) {
		var last IDResponse
		for i := 0; i < models.MaxTextOverlays; i++ {
			resp := srv.do(t, http.MethodPost, base+"/text-overlays", models.TextOverlay{Content: "x"})
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			decode(t, resp, &last)
		}
		assert.Equal(t, http.StatusConflict, srv.do(t, http.MethodPost, base+"/text-overlays", models.TextOverlay{Content: "x"}).StatusCode)

		content := "edited"
		assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodPatch, base+"/text-overlays/"+last.ID, models.TextOverlayPatch{Content: &content}).StatusCode)
		assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, base+"/text-overlays/"+last.ID, nil).StatusCode)
		assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodDelete, base+"/text-overlays/"+last.ID, nil).StatusCode)
	})

	t.Run("image overlay requires url", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodPost, base+"/image-overlays", models.ImageOverlay{}).StatusCode)
		assert.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, base+"/image-overlays", models.ImageOverlay{URL: "/img/dove.png"}).StatusCode)
	})

	t.Run("logo", func(t *testing.T) {
		size := 250.0
		resp := srv.do(t, http.MethodPatch, base+"/logo", models.LogoSettingsPatch{Size: &size})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var logo models.LogoState
		decode(t, resp, &logo)
		assert.Equal(t, 100.0, logo.Settings.Size)
	})

	t.Run("slide edits", func(t *testing.T) {
		primary := "changed"
		assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodPatch, base+"/slides/s1/content", models.SlideContentEdit{Primary: &primary}).StatusCode)
		assert.Equal(t, primary, *srv.state(t, id).Preview.TempEdits["s1"].Content.Primary)
		assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, base+"/slides/s1/content", nil).StatusCode)
		assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodDelete, base+"/slides/s1/content", nil).StatusCode)
	})
}

func TestSlideEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)
	id := srv.createSession(t)
	base := "/api/sessions/" + id

	resp := srv.do(t, http.MethodPost, base+"/slides/1/duplicate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var dup IDResponse
	decode(t, resp, &dup)
	assert.Equal(t, dup.ID, srv.state(t, id).Data.Slides[2].ID)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodPost, base+"/slides/40/duplicate", nil).StatusCode)

	resp = srv.do(t, http.MethodPost, base+"/slides", InsertSlidesRequest{
		Slides:     []models.Slide{{Type: models.SlideTypeAnnouncement}, {Type: models.SlideTypeBlank}},
		AfterIndex: 0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var inserted InsertSlidesResponse
	decode(t, resp, &inserted)
	assert.Len(t, inserted.IDs, 2)
	assert.Len(t, srv.state(t, id).Data.Slides, 7)

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodPost, base+"/slides", InsertSlidesRequest{}).StatusCode)
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, base+"/slides/0", nil).StatusCode)
	assert.Len(t, srv.state(t, id).Data.Slides, 6)
}

func TestStyleEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)
	base := "/api/sessions/" + srv.createSession(t)

	resp := srv.do(t, http.MethodPut, base+"/styles", StylesRequest{
		Styles: models.StyleSet{Font: &models.FontStyle{Family: "Georgia"}},
		Scope:  models.StyleScopeGlobal,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var styles models.StyleState
	decode(t, resp, &styles)
	assert.Equal(t, "Georgia", styles.GlobalStyles.Font.Family)

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodDelete, base+"/styles", nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, base+"/styles?scope=global", nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodDelete, base+"/styles?scope=global", nil).StatusCode)
}

func TestExportImportEndpoints(t *testing.T) {
	srv := newTestServer(t, 256)
	id := srv.createSession(t)
	base := "/api/sessions/" + id

	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, base+"/slides/0/duplicate", nil).StatusCode)

	resp := srv.do(t, http.MethodGet, base+"/export?by=operator", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "liturgy-sunday-1.json")
	var doc models.ExportDocument
	decode(t, resp, &doc)
	assert.Equal(t, "operator", doc.ExportedBy)
	require.Len(t, doc.State.TempSlides, 1)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"version mismatch", `{"version":"2.0","state":{"tempSlides":[]}}`, http.StatusBadRequest},
		{"too large", `{"version":"1.0","pad":"` + strings.Repeat("x", 300) + `"}`, http.StatusRequestEntityTooLarge},
		{"valid", `{"version":"1.0","state":{"tempSlides":[{"id":"t1","type":"blank"}]}}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, base+"/import", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
	assert.Len(t, srv.state(t, id).Data.Slides, 6)
}

func TestOutputWebSocket(t *testing.T) {
	srv := newTestServer(t, 0)
	id := srv.createSession(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"unknown", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+id, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() models.SyncMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg models.SyncMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	require.NoError(t, conn.WriteJSON(models.SyncMessage{Type: models.MsgRequestState}))
	msg := read()
	require.Equal(t, models.MsgStateSync, msg.Type)
	assert.Equal(t, 0, msg.State.SlideIndex)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/sessions/"+id+"/live", nil).StatusCode)
	assert.Equal(t, models.MsgGoLive, read().Type)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/sessions/"+id+"/navigate", NavigateRequest{Action: "last"}).StatusCode)
	msg = read()
	assert.Equal(t, models.MsgSlideChange, msg.Type)
	assert.Equal(t, 3, *msg.SlideIndex)
}
