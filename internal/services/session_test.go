package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"liturgy-live/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader map[string]*models.LiturgyData

func (l staticLoader) Load(_ context.Context, id string) (*models.LiturgyData, error) {
	data, ok := l[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLiturgyNotFound, id)
	}
	return data.Clone(), nil
}

func newTestManager(t *testing.T, snapshots SnapshotStore) *SessionManager {
	t.Helper()
	m := NewSessionManager(staticLoader{"sunday-1": testLiturgy(), "long": longLiturgy(3)}, NewSyncHub(0), snapshots, SessionOptions{
		AutoSaveDelay:  time.Hour,
		SnapshotMaxAge: time.Hour,
	})
	t.Cleanup(m.CloseAll)
	return m
}

func TestSessionManagerLifecycle(t *testing.T) {
	m := newTestManager(t, newMemorySnapshotStore())

	_, err := m.Create(context.Background(), "unknown")
	require.ErrorIs(t, err, ErrLiturgyNotFound)

	session, err := m.Create(context.Background(), "sunday-1")
	require.NoError(t, err)
	assert.Equal(t, "sunday-1", session.LiturgyID)
	assert.Equal(t, session.ID, session.ChannelName())
	assert.Equal(t, 1, m.Hub().Peers(session.ID))

	got, err := m.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	require.NoError(t, m.Close(session.ID))
	assert.Equal(t, 0, m.Hub().Peers(session.ID))
	_, err = m.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(session.ID), ErrSessionNotFound)
}

func TestSessionManagerRestoresSnapshot(t *testing.T) {
	mem := newMemorySnapshotStore()
	m := newTestManager(t, mem)

	first, err := m.Create(context.Background(), "sunday-1")
	require.NoError(t, err)
	first.Store.GoToSlide(4)
	first.Store.AddTextOverlay(models.TextOverlay{Content: "Offering"})
	require.NoError(t, first.FlushAutoSave())
	require.NoError(t, m.Close(first.ID))

	second, err := m.Create(context.Background(), "sunday-1")
	require.NoError(t, err)
	st := second.Store.State()
	assert.Equal(t, 4, st.PreviewSlideIndex)
	require.Len(t, st.Preview.TextOverlays.Overlays, 1)
	assert.True(t, st.HasUnpublishedChanges)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSessionBroadcasts(t *testing.T) {
	m := newTestManager(t, newMemorySnapshotStore())
	session, err := m.Create(context.Background(), "sunday-1")
	require.NoError(t, err)

	output := m.Hub().Open(session.ChannelName())
	defer output.Close()
	in := collect(output)

	t.Run("navigation offline is silent", func(t *testing.T) {
		session.Navigate((*PresentationStore).NextSlide)
		assertSilent(t, in)
	})

	t.Run("go live", func(t *testing.T) {
		require.True(t, session.GoLive())
		assert.Equal(t, models.MsgGoLive, receive(t, in).Type)
	})

	t.Run("follow navigation sends slide change", func(t *testing.T) {
		res := session.Navigate((*PresentationStore).NextSlide)
		require.True(t, res.LiveChanged)
		msg := receive(t, in)
		assert.Equal(t, models.MsgSlideChange, msg.Type)
		assert.Equal(t, 2, *msg.SlideIndex)
	})

	t.Run("publish sends every live structure", func(t *testing.T) {
		session.Store.AddTextOverlay(models.TextOverlay{Content: "Amen"})
		_, ok := session.Publish()
		require.True(t, ok)

		var types []models.MessageType
		for i := 0; i < 7; i++ {
			types = append(types, receive(t, in).Type)
		}
		assert.Equal(t, models.MsgSlidesUpdate, types[0])
		assert.Contains(t, types, models.MsgTextOverlaysUpdate)
		assert.Contains(t, types, models.MsgStylesUpdate)
	})

	t.Run("black and lower third", func(t *testing.T) {
		assert.True(t, session.ToggleBlack())
		msg := receive(t, in)
		assert.Equal(t, models.MsgGoBlack, msg.Type)
		assert.True(t, *msg.Black)

		assert.False(t, session.ShowLowerThird("", 0, ""))
		require.True(t, session.ShowLowerThird("Welcome", 3000, ""))
		msg = receive(t, in)
		assert.Equal(t, models.MsgShowLowerThird, msg.Type)
		assert.Equal(t, 3000, msg.Duration)

		session.HideLowerThird()
		assert.Equal(t, models.MsgHideLowerThird, receive(t, in).Type)
	})

	t.Run("passthrough validates", func(t *testing.T) {
		assert.Error(t, session.Send(models.SyncMessage{Type: models.MsgSceneChange}))
		require.NoError(t, session.Send(models.SyncMessage{Type: models.MsgSceneChange, SceneID: "manger"}))
		assert.Equal(t, "manger", receive(t, in).SceneID)
	})

	t.Run("reload announces the liturgy", func(t *testing.T) {
		assert.False(t, session.LoadLiturgy(nil, nil))
		saver := NewAutoSaver(newMemorySnapshotStore(), SnapshotKey("long"), time.Hour, time.Hour)
		require.True(t, session.LoadLiturgy(longLiturgy(3), saver))
		msg := receive(t, in)
		assert.Equal(t, models.MsgLiturgyLoaded, msg.Type)
		assert.Equal(t, "long", msg.Data.LiturgyID)
		assert.Equal(t, "long", session.LiturgyID)
	})
}

func TestSessionSwitchLiturgy(t *testing.T) {
	ctx := context.Background()
	mem := newMemorySnapshotStore()
	m := newTestManager(t, mem)

	session, err := m.Create(ctx, "sunday-1")
	require.NoError(t, err)
	session.Store.GoToSlide(4)

	_, err = m.SwitchLiturgy(ctx, "nope", "long")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.SwitchLiturgy(ctx, session.ID, "missing")
	assert.ErrorIs(t, err, ErrLiturgyNotFound)
	assert.Equal(t, "sunday-1", session.LiturgyID)

	got, err := m.SwitchLiturgy(ctx, session.ID, "long")
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, "long", session.LiturgyID)

	t.Run("pending save of the old liturgy is written first", func(t *testing.T) {
		snap := NewAutoSaver(mem, SnapshotKey("sunday-1"), time.Hour, time.Hour).Load()
		require.NotNil(t, snap)
		assert.Equal(t, "sunday-1", snap.LiturgyID)
		assert.Equal(t, 4, snap.PreviewSlideIndex)
	})

	t.Run("auto-save follows the new liturgy", func(t *testing.T) {
		session.Store.GoToSlide(2)
		require.NoError(t, session.FlushAutoSave())
		require.True(t, mem.has(SnapshotKey("long")))

		snap := NewAutoSaver(mem, SnapshotKey("long"), time.Hour, time.Hour).Load()
		require.NotNil(t, snap)
		assert.Equal(t, "long", snap.LiturgyID)
		assert.Equal(t, 2, snap.PreviewSlideIndex)

		old := NewAutoSaver(mem, SnapshotKey("sunday-1"), time.Hour, time.Hour).Load()
		require.NotNil(t, old)
		assert.Equal(t, "sunday-1", old.LiturgyID, "the old key is not overwritten")
	})

	t.Run("switching back restores the snapshot", func(t *testing.T) {
		_, err := m.SwitchLiturgy(ctx, session.ID, "sunday-1")
		require.NoError(t, err)
		st := session.Store.State()
		assert.Equal(t, "sunday-1", st.Data.LiturgyID)
		assert.Equal(t, 4, st.PreviewSlideIndex)
	})
}
