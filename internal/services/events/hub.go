// Package events fans document events out to live WebSocket subscribers.
package events

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is one message on a document's feed.
type Event struct {
	DocumentID string    `json:"document_id"`
	Type       string    `json:"type"`
	Payload    any       `json:"payload,omitempty"`
	At         time.Time `json:"at"`
}

// Subscriber receives a document's events on a buffered channel. A subscriber
// that stops draining is dropped rather than allowed to stall the hub.
type Subscriber struct {
	DocumentID string
	UserID     string
	Ch         chan []byte
}

// Hub coordinates per-document subscriber sets. All membership changes and
// broadcasts flow through its single event loop.
type Hub struct {
	documents map[string]map[*Subscriber]bool

	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan Event

	mu   sync.RWMutex
	done chan struct{}
}

// NewHub creates a new event hub
func NewHub() *Hub {
	return &Hub{
		documents:  make(map[string]map[*Subscriber]bool),
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Start begins the hub event loop.
func (h *Hub) Start() {
	go func() {
		for {
			select {
			case <-h.done:
				return
			case sub := <-h.register:
				h.add(sub)
			case sub := <-h.unregister:
				h.remove(sub)
			case event := <-h.broadcast:
				h.deliver(event)
			}
		}
	}()
}

func (h *Hub) add(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.documents[sub.DocumentID] == nil {
		h.documents[sub.DocumentID] = make(map[*Subscriber]bool)
	}
	h.documents[sub.DocumentID][sub] = true
}

func (h *Hub) remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.documents[sub.DocumentID]; ok && subs[sub] {
		delete(subs, sub)
		close(sub.Ch)
		if len(subs) == 0 {
			delete(h.documents, sub.DocumentID)
		}
	}
}

func (h *Hub) deliver(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("event hub: failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.documents[event.DocumentID]
	for sub := range subs {
		select {
		case sub.Ch <- data:
		default:
			// Slow consumer; drop it.
			delete(subs, sub)
			close(sub.Ch)
		}
	}
	if len(subs) == 0 {
		delete(h.documents, event.DocumentID)
	}
}

// Subscribe attaches a new subscriber to a document's feed.
func (h *Hub) Subscribe(documentID, userID string) *Subscriber {
	sub := &Subscriber{
		DocumentID: documentID,
		UserID:     userID,
		Ch:         make(chan []byte, 64),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.Ch)
	}
	return sub
}

// Unsubscribe detaches a subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Publish queues an event for everyone watching the document. Non-blocking;
// if the hub is saturated the event is dropped with a log line.
func (h *Hub) Publish(documentID string, eventType string, payload any) {
	event := Event{DocumentID: documentID, Type: eventType, Payload: payload, At: time.Now()}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("event hub: broadcast queue full, dropped %s for document %s", eventType, documentID)
	}
}

// SubscriberCount reports how many subscribers a document has.
func (h *Hub) SubscriberCount(documentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.documents[documentID])
}

// Shutdown stops the event loop and closes every subscriber channel.
func (h *Hub) Shutdown() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for docID, subs := range h.documents {
		for sub := range subs {
			close(sub.Ch)
		}
		delete(h.documents, docID)
	}
}
