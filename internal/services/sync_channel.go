package services

import (
	"log"
	"sync"

	"liturgy-live/internal/models"
)

// DefaultSyncBufferSize is the inbox depth of each channel instance
const DefaultSyncBufferSize = 64

// SyncHub connects channel instances that share a name, the way a
// browser broadcast channel connects tabs of one origin.
type SyncHub struct {
	mu         sync.RWMutex
	channels   map[string]map[*SyncChannel]bool
	bufferSize int
}

// NewSyncHub creates a hub whose channels buffer up to bufferSize messages
func NewSyncHub(bufferSize int) *SyncHub {
	if bufferSize <= 0 {
		bufferSize = DefaultSyncBufferSize
	}
	return &SyncHub{
		channels:   make(map[string]map[*SyncChannel]bool),
		bufferSize: bufferSize,
	}
}

// Open creates a new channel instance joined to the named channel
func (h *SyncHub) Open(name string) *SyncChannel {
	ch := &SyncChannel{
		hub:         h,
		name:        name,
		inbox:       make(chan models.SyncMessage, h.bufferSize),
		done:        make(chan struct{}),
		subscribers: make(map[int]func(models.SyncMessage)),
	}

	h.mu.Lock()
	if _, ok := h.channels[name]; !ok {
		h.channels[name] = make(map[*SyncChannel]bool)
	}
	h.channels[name][ch] = true
	h.mu.Unlock()

	go ch.dispatch()
	return ch
}

// Peers returns the number of open instances on the named channel
func (h *SyncHub) Peers(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[name])
}

func (h *SyncHub) leave(ch *SyncChannel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.channels[ch.name]; ok {
		delete(peers, ch)
		if len(peers) == 0 {
			delete(h.channels, ch.name)
		}
	}
}

// broadcast queues msg on every instance of the channel except the sender.
// Full inboxes drop the message.
func (h *SyncHub) broadcast(from *SyncChannel, msg models.SyncMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for peer := range h.channels[from.name] {
		if peer == from {
			continue
		}
		peer.deliver(msg)
	}
}

// SyncChannel is one participant on a named channel. Messages from a single
// sender arrive in order; nothing is acknowledged or retried.
type SyncChannel struct {
	hub   *SyncHub
	name  string
	inbox chan models.SyncMessage
	done  chan struct{}

	mu          sync.Mutex
	subscribers map[int]func(models.SyncMessage)
	nextID      int
	closed      bool
	closeOnce   sync.Once
}

// Name returns the channel name
func (c *SyncChannel) Name() string {
	return c.name
}

// Send broadcasts msg to every other instance on the channel
func (c *SyncChannel) Send(msg models.SyncMessage) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.hub.broadcast(c, msg)
}

// Subscribe registers handler and returns a function that removes it
func (c *SyncChannel) Subscribe(handler func(models.SyncMessage)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.subscribers[id] = handler
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Close leaves the channel and drops all subscribers
func (c *SyncChannel) Close() {
	c.closeOnce.Do(func() {
		c.hub.leave(c)
		c.mu.Lock()
		c.closed = true
		c.subscribers = make(map[int]func(models.SyncMessage))
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *SyncChannel) deliver(msg models.SyncMessage) {
	select {
	case <-c.done:
	case c.inbox <- msg:
	default:
		log.Printf("Sync channel %s inbox full, dropping %s", c.name, msg.Type)
	}
}

func (c *SyncChannel) dispatch() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.inbox:
			c.mu.Lock()
			handlers := make([]func(models.SyncMessage), 0, len(c.subscribers))
			for id := 0; id < c.nextID; id++ {
				if h, ok := c.subscribers[id]; ok {
					handlers = append(handlers, h)
				}
			}
			c.mu.Unlock()
			for _, h := range handlers {
				h(msg)
			}
		}
	}
}
