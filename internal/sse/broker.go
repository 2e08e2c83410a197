// Package sse implements a Server-Sent Events broker for live workspace updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/scribe/internal/models"
)

// Event types emitted by the broker.
const (
	TypeFileCreated  = "file.created"
	TypeFileUpdated  = "file.updated"
	TypeFileDeleted  = "file.deleted"
	TypeTreeUpdated  = "tree.updated"
	TypeSaveRecorded = "save.recorded"
)

const keepAliveInterval = 30 * time.Second

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type fileEventReq struct {
	kind string
	path string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal event loop owns the client set and the tree throttle
// timestamp. Public methods talk to the loop through channels.
type Broker struct {
	treeMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	fileEventCh   chan fileEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. treeThrottle bounds how often
// tree.updated follows a file event.
func NewBroker(treeThrottle time.Duration) *Broker {
	if treeThrottle <= 0 {
		treeThrottle = 2 * time.Second
	}

	b := &Broker{
		treeMin:       treeThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		fileEventCh:   make(chan fileEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastTree time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.fileEventCh:
			typ, ok := fileEventType(req.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"path": req.path}})

			now := time.Now()
			if now.Sub(lastTree) >= b.treeMin {
				lastTree = now
				broadcast(Event{Type: TypeTreeUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func fileEventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return TypeFileCreated, true
	case "updated":
		return TypeFileUpdated, true
	case "deleted":
		return TypeFileDeleted, true
	}
	return "", false
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishFileEvent publishes a file change followed by a throttled tree.updated.
// kind is "created", "updated" or "deleted"; other kinds are ignored.
func (b *Broker) PublishFileEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.fileEventCh <- fileEventReq{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// PublishSave announces a journal entry for a completed save.
func (b *Broker) PublishSave(rec models.SaveRecord) {
	b.Publish(Event{Type: TypeSaveRecorded, Data: rec})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
