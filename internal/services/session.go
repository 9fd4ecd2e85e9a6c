package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"liturgy-live/internal/models"
)

// ErrSessionNotFound is returned for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// Session is one operator console: a store, its sync channel and its auto-saver.
// Commands that change what the output shows are broadcast on the channel.
type Session struct {
	ID        string
	LiturgyID string
	Store     *PresentationStore

	channel     *SyncChannel
	unsubscribe func()
	closeOnce   sync.Once

	saverMu sync.Mutex
	saver   *AutoSaver
}

func newSession(id string, store *PresentationStore, channel *SyncChannel, saver *AutoSaver) *Session {
	s := &Session{
		ID:      id,
		Store:   store,
		channel: channel,
		saver:   saver,
	}
	if data := store.State().Data; data != nil {
		s.LiturgyID = data.LiturgyID
	}
	s.unsubscribe = channel.Subscribe(s.handle)
	store.OnChange(s.observe)
	return s
}

func (s *Session) observe(state models.PresentationState) {
	s.currentSaver().Observe(state)
}

func (s *Session) currentSaver() *AutoSaver {
	s.saverMu.Lock()
	defer s.saverMu.Unlock()
	return s.saver
}

// swapSaver installs saver and stops the previous one, dropping its pending save
func (s *Session) swapSaver(saver *AutoSaver) {
	s.saverMu.Lock()
	old := s.saver
	s.saver = saver
	s.saverMu.Unlock()
	old.Stop()
}

// ChannelName is the sync channel output windows join for this session
func (s *Session) ChannelName() string {
	return s.channel.Name()
}

// Send validates and broadcasts an operator message
func (s *Session) Send(msg models.SyncMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.channel.Send(msg)
	return nil
}

func (s *Session) handle(msg models.SyncMessage) {
	if msg.Type == models.MsgRequestState {
		s.channel.Send(models.StateSyncMessage(s.Store.State().Output()))
	}
}

// LoadLiturgy swaps the slide data and tells outputs about it. Auto-save
// moves to saver, which must be keyed for the new liturgy, after the old
// liturgy's pending save is flushed. A recent snapshot of the new liturgy is restored.
func (s *Session) LoadLiturgy(data *models.LiturgyData, saver *AutoSaver) bool {
	if data == nil || saver == nil {
		return false
	}
	if err := s.FlushAutoSave(); err != nil {
		log.Printf("Failed to save liturgy %s before switching: %v", s.LiturgyID, err)
	}
	s.swapSaver(saver)
	if !s.Store.LoadLiturgy(data) {
		return false
	}
	restoreSnapshot(s.Store, saver, data.LiturgyID)
	s.LiturgyID = data.LiturgyID
	s.channel.Send(models.SyncMessage{Type: models.MsgLiturgyLoaded, Data: s.Store.State().Data})
	return true
}

// Navigate runs a navigation command and broadcasts a live move
func (s *Session) Navigate(move func(*PresentationStore) NavigationResult) NavigationResult {
	res := move(s.Store)
	if res.LiveChanged {
		s.channel.Send(models.SlideChangeMessage(res.LiveSlideIndex))
	}
	return res
}

// Publish commits preview to live and broadcasts the committed content
func (s *Session) Publish() (models.PublishPayload, bool) {
	payload, ok := s.Store.Publish()
	if !ok {
		return payload, false
	}
	var slides []models.Slide
	if data := s.Store.State().Data; data != nil {
		slides = data.Slides
	}
	for _, msg := range models.PublishMessages(payload, slides) {
		s.channel.Send(msg)
	}
	return payload, true
}

// GoLive toggles live output
func (s *Session) GoLive() bool {
	live := s.Store.GoLive()
	s.channel.Send(models.LiveMessage(live))
	return live
}

// ToggleBlack flips blackout
func (s *Session) ToggleBlack() bool {
	black := s.Store.ToggleBlack()
	s.channel.Send(models.GoBlackMessage(black))
	return black
}

// SetBlack sets blackout
func (s *Session) SetBlack(black bool) {
	s.Store.SetBlack(black)
	s.channel.Send(models.GoBlackMessage(black))
}

// ShowLowerThird shows a banner on the output
func (s *Session) ShowLowerThird(message string, durationMs int, template string) bool {
	lt := s.Store.ShowLowerThird(message, durationMs, template)
	if lt == nil {
		return false
	}
	s.channel.Send(models.LowerThirdMessage(lt))
	return true
}

// HideLowerThird removes the banner
func (s *Session) HideLowerThird() {
	s.Store.HideLowerThird()
	s.channel.Send(models.LowerThirdMessage(nil))
}

// FlushAutoSave writes the pending snapshot now
func (s *Session) FlushAutoSave() error {
	return s.currentSaver().Flush()
}

// Close cancels the pending save, unsubscribes and closes the channel
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.currentSaver().Stop()
		s.unsubscribe()
		s.channel.Close()
		log.Printf("Session %s closed", s.ID)
	})
}

// SessionOptions tunes the sessions a manager creates
type SessionOptions struct {
	AutoSaveDelay  time.Duration
	SnapshotMaxAge time.Duration
}

// SessionManager owns every open session and the hub they broadcast on
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	loader    SlideLoader
	hub       *SyncHub
	snapshots SnapshotStore
	opts      SessionOptions
}

// NewSessionManager creates a manager
func NewSessionManager(loader SlideLoader, hub *SyncHub, snapshots SnapshotStore, opts SessionOptions) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		loader:    loader,
		hub:       hub,
		snapshots: snapshots,
		opts:      opts,
	}
}

// Hub returns the sync hub output windows join
func (m *SessionManager) Hub() *SyncHub {
	return m.hub
}

// Create loads a liturgy into a new session, restoring a recent snapshot of it if one exists
func (m *SessionManager) Create(ctx context.Context, liturgyID string) (*Session, error) {
	data, err := m.loader.Load(ctx, liturgyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load liturgy: %w", err)
	}

	store := NewPresentationStore()
	store.LoadLiturgy(data)

	saver := m.newSaver(liturgyID)
	restoreSnapshot(store, saver, liturgyID)

	id := NewID()
	session := newSession(id, store, m.hub.Open(id), saver)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	log.Printf("Session %s created for liturgy %s", id, liturgyID)
	return session, nil
}

// SwitchLiturgy loads another liturgy into an open session
func (m *SessionManager) SwitchLiturgy(ctx context.Context, id, liturgyID string) (*Session, error) {
	session, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	data, err := m.loader.Load(ctx, liturgyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load liturgy: %w", err)
	}
	if !session.LoadLiturgy(data, m.newSaver(liturgyID)) {
		return nil, fmt.Errorf("liturgy %s has no slides", liturgyID)
	}
	log.Printf("Session %s switched to liturgy %s", id, liturgyID)
	return session, nil
}

func (m *SessionManager) newSaver(liturgyID string) *AutoSaver {
	return NewAutoSaver(m.snapshots, SnapshotKey(liturgyID), m.opts.AutoSaveDelay, m.opts.SnapshotMaxAge)
}

func restoreSnapshot(store *PresentationStore, saver *AutoSaver, liturgyID string) {
	if snap := saver.Load(); snap != nil && store.Restore(snap) {
		log.Printf("Restored snapshot for liturgy %s saved at %s", liturgyID, time.UnixMilli(snap.SavedAt).Format(time.RFC3339))
	}
}

// Get returns an open session
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Close tears down one session
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.Close()
	return nil
}

// CloseAll tears down every session
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
