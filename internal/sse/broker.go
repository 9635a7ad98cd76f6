// Package sse pushes content-change notifications to browsers over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types emitted by the broker.
const (
	TypeContentChanged  = "content.changed"
	TypeCatalogReloaded = "catalog.reloaded"
)

const (
	clientBuffer = 64
	heartbeat    = 25 * time.Second
	retryMillis  = 3000
)

// Event is one SSE frame. Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (e Event) frame() ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), nil
}

// ContentChange describes a rebuilt snapshot.
type ContentChange struct {
	Version   string `json:"version"`
	Documents int    `json:"documents"`
	Chapters  int    `json:"chapters"`
}

// hub is the state owned by the broker loop.
type hub struct {
	clients    map[chan []byte]struct{}
	lastReload time.Time
}

func (h *hub) send(e Event) {
	raw, err := e.frame()
	if err != nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
			// slow client
		}
	}
}

// Broker fans events out to subscribed clients. All client state lives in
// one loop goroutine; callers hand it operations through a queue, so
// operations run in the order they were submitted.
type Broker struct {
	reloadEvery time.Duration

	ops     chan func(*hub)
	quit    chan struct{}
	done    chan struct{}
	closing atomic.Bool
}

// NewBroker starts a broker that emits at most one catalog.reloaded event
// per reloadThrottle.
func NewBroker(reloadThrottle time.Duration) *Broker {
	if reloadThrottle <= 0 {
		reloadThrottle = 2 * time.Second
	}
	b := &Broker{
		reloadEvery: reloadThrottle,
		ops:         make(chan func(*hub), 256),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.quit:
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// post queues op without waiting for it to run.
func (b *Broker) post(op func(*hub)) {
	if b.closing.Load() {
		return
	}
	select {
	case b.ops <- op:
	case <-b.done:
	}
}

// exec queues op and waits for it. It reports false when the loop stopped
// before op ran.
func (b *Broker) exec(op func(*hub)) bool {
	if b.closing.Load() {
		return false
	}
	ran := make(chan struct{})
	select {
	case b.ops <- func(h *hub) { op(h); close(ran) }:
	case <-b.done:
		return false
	}
	select {
	case <-ran:
		return true
	case <-b.done:
		// ran is closed before done when op made it through.
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closing.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. The returned channel is closed on
// Unsubscribe or Close; it is returned closed if the broker has stopped.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.exec(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.post(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	var n int
	if !b.exec(func(h *hub) { n = len(h.clients) }) {
		return 0
	}
	return n
}

// Publish broadcasts event. Clients whose buffer is full miss it.
func (b *Broker) Publish(event Event) {
	b.post(func(h *hub) { h.send(event) })
}

// PublishContentChange announces a rebuilt snapshot, followed by a
// throttled catalog.reloaded event.
func (b *Broker) PublishContentChange(change ContentChange) {
	b.post(func(h *hub) {
		h.send(Event{Type: TypeContentChanged, Data: change})
		if now := time.Now(); now.Sub(h.lastReload) >= b.reloadEvery {
			h.lastReload = now
			h.send(Event{Type: TypeCatalogReloaded, Data: map[string]string{"version": change.Version}})
		}
	})
}

// ServeHTTP streams events to one client (GET /api/events). Idle streams
// get a comment frame every heartbeat so proxies keep them open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	tick := time.NewTicker(heartbeat)
	defer tick.Stop()

	for {
		var msg []byte
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			msg = []byte(": ping\n\n")
		case m, open := <-ch:
			if !open {
				return
			}
			msg = m
		}
		if _, err := w.Write(msg); err != nil {
			return
		}
		flusher.Flush()
	}
}
