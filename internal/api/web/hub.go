package web

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/oshokin/tempwatch/internal/domain/alert"
	"github.com/oshokin/tempwatch/internal/domain/temperature"
	"github.com/oshokin/tempwatch/internal/logger"
)

// Frame types pushed to WebSocket clients.
const (
	FrameReading = "reading"
	FrameAlert   = "alert"
)

// Frame is one WebSocket message.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ReadingDTO is the JSON shape of a reading.
type ReadingDTO struct {
	Celsius   float64    `json:"celsius"`
	Threshold float64    `json:"threshold"`
	State     string     `json:"state"`
	AlertSent bool       `json:"alert_sent"`
	Source    string     `json:"source"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// AlertDTO is the JSON shape of an alert.
type AlertDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Celsius   float64   `json:"celsius"`
	Threshold float64   `json:"threshold"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// newReadingDTO converts a reading to its JSON shape.
func newReadingDTO(r temperature.Reading) ReadingDTO {
	dto := ReadingDTO{
		Celsius:   r.Celsius,
		Threshold: r.Threshold,
		State:     r.State.String(),
		AlertSent: r.AlertSent,
		Source:    r.Source,
	}

	if !r.Timestamp.IsZero() {
		ts := r.Timestamp.UTC()
		dto.Timestamp = &ts
	}

	return dto
}

// newAlertDTO converts an alert to its JSON shape.
func newAlertDTO(a alert.Alert) AlertDTO {
	return AlertDTO{
		ID:        a.ID.String(),
		Title:     a.Title,
		Message:   a.Message,
		Celsius:   a.Celsius,
		Threshold: a.Threshold,
		Action:    a.Action,
		Timestamp: a.Timestamp.UTC(),
	}
}

// hubQueueSize bounds the frames waiting for the hub loop.
const hubQueueSize = 64

// Hub keeps the set of WebSocket clients and broadcasts frames to them.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	// latest is sent to a client right after it registers.
	latest []byte
	count  atomic.Int64
}

// NewHub returns a hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, hubQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)

		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}

		h.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			logger.DebugKV(ctx, "WebSocket client registered", "remote", client.remote)

			if h.latest != nil {
				h.deliver(ctx, client, h.latest)
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.count.Store(int64(len(h.clients)))
				logger.DebugKV(ctx, "WebSocket client unregistered", "remote", client.remote)
			}
		case message := <-h.broadcast:
			if isReading(message) {
				h.latest = message
			}

			for client := range h.clients {
				h.deliver(ctx, client, message)
			}
		}
	}
}

// deliver queues message for client, dropping clients that fall behind.
func (h *Hub) deliver(ctx context.Context, client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		logger.WarnKV(ctx, "WebSocket client is too slow, dropping", "remote", client.remote)
		close(client.send)
		delete(h.clients, client)
		h.count.Store(int64(len(h.clients)))
	}
}

// Clients reports the number of registered clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// EmitAlert broadcasts an alert frame. It implements notify.Sink.
func (h *Hub) EmitAlert(ctx context.Context, a alert.Alert) {
	h.publish(ctx, Frame{Type: FrameAlert, Payload: newAlertDTO(a)})
}

// PublishReading broadcasts a reading frame.
func (h *Hub) PublishReading(ctx context.Context, r temperature.Reading) {
	h.publish(ctx, Frame{Type: FrameReading, Payload: newReadingDTO(r)})
}

// Follow publishes every reading from readings until the channel closes.
func (h *Hub) Follow(ctx context.Context, readings <-chan temperature.Reading) {
	for r := range readings {
		h.PublishReading(ctx, r)
	}
}

// publish encodes f and hands it to the hub loop.
func (h *Hub) publish(ctx context.Context, f Frame) {
	message, err := json.Marshal(f)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode WebSocket frame", "type", f.Type, "error", err)

		return
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	case <-ctx.Done():
	}
}

// isReading reports whether an encoded frame carries a reading.
func isReading(message []byte) bool {
	var probe struct {
		Type string `json:"type"`
	}

	return json.Unmarshal(message, &probe) == nil && probe.Type == FrameReading
}
