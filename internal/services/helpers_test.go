package services

import (
	"fmt"
	"io/fs"
	"sync"
	"testing"

	"liturgy-live/internal/models"

	"github.com/stretchr/testify/require"
)

// testLiturgy has three elements over six slides:
// welcome [0], hymn [1-3], sermon [4-5]
func testLiturgy() *models.LiturgyData {
	return &models.LiturgyData{
		LiturgyID:    "sunday-1",
		LiturgyTitle: "First Sunday of Advent",
		LiturgyDate:  "2026-11-29",
		Slides: []models.Slide{
			{ID: "w1", Type: models.SlideTypeTitle, Content: models.SlideContent{Primary: "Welcome"}},
			{ID: "h1", Type: models.SlideTypeSong, Content: models.SlideContent{Primary: "O Come", Secondary: "verse 1"}},
			{ID: "h2", Type: models.SlideTypeSong, Content: models.SlideContent{Primary: "O Come", Secondary: "verse 2"}},
			{ID: "h3", Type: models.SlideTypeSong, Content: models.SlideContent{Primary: "O Come", Secondary: "verse 3"}},
			{ID: "s1", Type: models.SlideTypeReading, Content: models.SlideContent{Primary: "Isaiah 2"}},
			{ID: "s2", Type: models.SlideTypeReading, Content: models.SlideContent{Primary: "Matthew 24"}},
		},
		Elements: []models.FlattenedElement{
			{ID: "welcome", Type: "title", Title: "Welcome", StartSlideIndex: 0, EndSlideIndex: 0, SlideCount: 1},
			{ID: "hymn", Type: "song", Title: "O Come", StartSlideIndex: 1, EndSlideIndex: 3, SlideCount: 3},
			{ID: "sermon", Type: "reading", Title: "Readings", StartSlideIndex: 4, EndSlideIndex: 5, SlideCount: 2},
		},
	}
}

// longLiturgy has n single-slide elements
func longLiturgy(n int) *models.LiturgyData {
	data := &models.LiturgyData{LiturgyID: "long"}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("slide-%d", i)
		data.Slides = append(data.Slides, models.Slide{ID: id, Type: models.SlideTypeSong})
		data.Elements = append(data.Elements, models.FlattenedElement{
			ID: fmt.Sprintf("el-%d", i), StartSlideIndex: i, EndSlideIndex: i, SlideCount: 1,
		})
	}
	return data
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestStore(t *testing.T, data *models.LiturgyData) *PresentationStore {
	t.Helper()
	s := NewPresentationStore()
	s.newID = sequentialIDs("new")
	if data != nil {
		require.True(t, s.LoadLiturgy(data))
	}
	return s
}

// requireElementsConsistent checks element ranges are ordered, non-overlapping and in bounds
func requireElementsConsistent(t *testing.T, data *models.LiturgyData) {
	t.Helper()
	prevEnd := -1
	for _, el := range data.Elements {
		require.Greater(t, el.SlideCount, 0, "element %s is empty", el.ID)
		require.Equal(t, el.EndSlideIndex-el.StartSlideIndex+1, el.SlideCount, "element %s count", el.ID)
		require.Greater(t, el.StartSlideIndex, prevEnd, "element %s overlaps", el.ID)
		require.Less(t, el.EndSlideIndex, len(data.Slides), "element %s out of range", el.ID)
		prevEnd = el.EndSlideIndex
	}
}

// memorySnapshotStore is an in-memory SnapshotStore
type memorySnapshotStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{data: make(map[string][]byte)}
}

func (m *memorySnapshotStore) Read(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", key, fs.ErrNotExist)
	}
	return append([]byte(nil), v...), nil
}

func (m *memorySnapshotStore) Write(key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), val...)
	m.writes++
	return nil
}

func (m *memorySnapshotStore) Erase(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return fmt.Errorf("erase %s: %w", key, fs.ErrNotExist)
	}
	delete(m.data, key)
	return nil
}

func (m *memorySnapshotStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memorySnapshotStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
