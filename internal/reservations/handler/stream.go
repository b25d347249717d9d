package handler

import (
	"net/http"
	"slices"
	"time"

	"slotbook/internal/reservations/colors"
	"slotbook/internal/reservations/service"
	"slotbook/internal/reservations/window"
	"slotbook/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Watcher is the push side of a Session.
type Watcher interface {
	Watch() (<-chan service.State, func())
}

// StreamMessage is what browsers receive. Passphrases never leave the
// service through the stream.
type StreamMessage struct {
	Type         string                       `json:"type"`
	Version      string                       `json:"version"`
	Now          time.Time                    `json:"now"`
	Window       window.Window                `json:"window"`
	Reservations map[string]map[string]string `json:"reservations"`
	Colors       colors.Assignment            `json:"colors"`
}

func NewStreamMessage(st service.State) StreamMessage {
	return StreamMessage{
		Type:         "snapshot",
		Version:      st.Version,
		Now:          st.Now,
		Window:       st.Window,
		Reservations: st.Snapshot.Public(),
		Colors:       colors.Assign(st.Snapshot),
	}
}

type StreamHandler struct {
	watcher  Watcher
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewStreamHandler(watcher Watcher, allowedOrigins []string, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		watcher: watcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// Stream pushes the public view on connect, after every store change and on
// every tick, until the client goes away.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	updates, unwatch := h.watcher.Watch()
	defer unwatch()

	h.log.Debug("Stream client connected", "remote_addr", r.RemoteAddr)
	defer h.log.Debug("Stream client disconnected", "remote_addr", r.RemoteAddr)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case st, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if err := conn.WriteJSON(NewStreamMessage(st)); err != nil {
				h.log.Debug("Stream write failed", "remote_addr", r.RemoteAddr, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func (h *StreamHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/stream", h.Stream)
}
