package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"liturgy-live/internal/models"
)

const (
	DefaultAutoSaveDelay  = 2 * time.Second
	DefaultSnapshotMaxAge = 4 * time.Hour
	snapshotKeyPrefix     = "presentation-state"
)

// SnapshotStore is the key/value storage auto-save snapshots live in
type SnapshotStore interface {
	Read(key string) ([]byte, error)
	Write(key string, val []byte) error
	Erase(key string) error
}

// NewDiskSnapshotStore returns a diskv-backed store rooted at basePath.
// Writes go through a temp dir and are renamed into place.
func NewDiskSnapshotStore(basePath string) SnapshotStore {
	return diskv.New(diskv.Options{
		BasePath:     basePath,
		TempDir:      basePath + ".tmp",
		CacheSizeMax: 1024 * 1024, // 1MB
	})
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SnapshotKey is the storage key for a liturgy's snapshot
func SnapshotKey(liturgyID string) string {
	return snapshotKeyPrefix + "-" + unsafeKeyChars.ReplaceAllString(liturgyID, "_")
}

// AutoSaver persists presentation state after a quiet period.
// Each observed change restarts the timer; only the latest state is written.
type AutoSaver struct {
	store  SnapshotStore
	key    string
	delay  time.Duration
	maxAge time.Duration
	now    func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	pending *models.PresentationState
	seq     uint64
	stopped bool

	saveMu   sync.Mutex
	savedSeq uint64
}

// NewAutoSaver creates a saver writing under key
func NewAutoSaver(store SnapshotStore, key string, delay, maxAge time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	if maxAge <= 0 {
		maxAge = DefaultSnapshotMaxAge
	}
	return &AutoSaver{
		store:  store,
		key:    key,
		delay:  delay,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Observe records a new state and restarts the debounce timer.
// It has the ChangeListener signature.
func (a *AutoSaver) Observe(state models.PresentationState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.seq++
	a.pending = &state
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *AutoSaver) fire() {
	state, seq := a.takePending()
	if state == nil {
		return
	}
	if err := a.save(*state, seq); err != nil {
		log.Printf("Auto-save failed for %s: %v", a.key, err)
	}
}

func (a *AutoSaver) takePending() (*models.PresentationState, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	state := a.pending
	a.pending = nil
	a.timer = nil
	return state, a.seq
}

// Flush writes any pending state immediately
func (a *AutoSaver) Flush() error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	state, seq := a.takePending()
	if state == nil {
		return nil
	}
	return a.save(*state, seq)
}

// Stop cancels the pending save and ignores further changes
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *AutoSaver) save(state models.PresentationState, seq uint64) error {
	if state.Data == nil {
		return nil
	}
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	if seq <= a.savedSeq {
		return nil
	}

	snap := models.SnapshotOf(state, a.now().UnixMilli())
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := a.store.Write(a.key, data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	a.savedSeq = seq
	return nil
}

// Load reads, migrates and validates the stored snapshot. Missing, stale or
// corrupt snapshots yield nil; stale and corrupt ones are erased.
func (a *AutoSaver) Load() *models.Snapshot {
	data, err := a.store.Read(a.key)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Failed to read snapshot %s: %v", a.key, err)
		}
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		a.discard("unparseable")
		return nil
	}

	if savedAt, ok := raw["savedAt"].(float64); ok {
		age := a.now().Sub(time.UnixMilli(int64(savedAt)))
		if age > a.maxAge {
			a.discard(fmt.Sprintf("stale (%s old)", age.Round(time.Second)))
			return nil
		}
	}

	migrateSnapshot(raw)
	if field := missingSnapshotField(raw); field != "" {
		a.discard("missing " + field)
		return nil
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		a.discard("unencodable")
		return nil
	}
	var snap models.Snapshot
	if err := json.Unmarshal(normalized, &snap); err != nil {
		a.discard(err.Error())
		return nil
	}
	if _, ok := raw["previewLogoState"]; !ok {
		snap.PreviewLogoState = models.DefaultLogoState()
		snap.LiveLogoState = models.DefaultLogoState()
	}
	return &snap
}

// Clear removes the stored snapshot
func (a *AutoSaver) Clear() {
	if err := a.store.Erase(a.key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to erase snapshot %s: %v", a.key, err)
	}
}

func (a *AutoSaver) discard(reason string) {
	log.Printf("Discarding snapshot %s: %s", a.key, reason)
	a.Clear()
}
