package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/itemsentinel/internal/events"
	"github.com/aristath/itemsentinel/pkg/render"
)

const (
	heartbeatInterval = 30 * time.Second
	writeTimeout      = 10 * time.Second
)

// EventsStreamHandler streams bus events to websocket clients
type EventsStreamHandler struct {
	bus       *events.Bus
	heartbeat time.Duration
	log       zerolog.Logger
}

// NewEventsStreamHandler creates the websocket events handler
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus:       bus,
		heartbeat: heartbeatInterval,
		log:       log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws. The optional types query parameter is a
// comma-separated list of event types; all types are streamed when it is absent.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types, err := parseTypesFilter(r.URL.Query().Get("types"))
	if err != nil {
		render.Error(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	// Subscribe before the handshake so nothing published after it is missed
	eventChan, unsubscribe := h.bus.Subscribe(types...)
	defer unsubscribe()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	h.log.Info().
		Int("types", len(types)).
		Msg("Client connected to event stream")

	// Clients never send data; CloseRead handles control frames and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if err := h.write(ctx, conn, map[string]interface{}{
		"type":    "connected",
		"message": "Connected to event stream",
	}); err != nil {
		h.log.Debug().Err(err).Msg("Failed to send connected message")
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event, ok := <-eventChan:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "event bus closed")
				return
			}

			h.log.Debug().
				Str("event_type", string(event.Type)).
				Msg("Sending event to client")

			if err := h.write(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("Failed to send event, closing stream")
				return
			}

		case <-heartbeat.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("Heartbeat failed, closing stream")
				return
			}
		}
	}
}

func (h *EventsStreamHandler) write(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, v)
}

// parseTypesFilter turns "A,B" into event types, rejecting unknown names
func parseTypesFilter(raw string) ([]events.EventType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	known := make(map[events.EventType]bool)
	for _, t := range events.AllTypes() {
		known[t] = true
	}

	var types []events.EventType
	for _, part := range strings.Split(raw, ",") {
		t := events.EventType(strings.ToUpper(strings.TrimSpace(part)))
		if t == "" {
			continue
		}
		if !known[t] {
			return nil, fmt.Errorf("unknown event type %q", part)
		}
		types = append(types, t)
	}
	return types, nil
}
