// Package feed streams scene frames to websocket clients and accepts control
// commands from them.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/view"
)

// Command errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingValue   = errors.New("missing value")
)

// Message types sent to clients.
const (
	TypeHello = "hello"
	TypeFrame = "frame"
	TypeAck   = "ack"
	TypeError = "error"
)

// Message is the envelope for everything written to a client.
type Message struct {
	Type    string        `json:"type"`
	Frame   *scene.Frame  `json:"frame,omitempty"`
	Events  []state.Event `json:"events,omitempty"`
	Command string        `json:"command,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Command is a control request from a client.
type Command struct {
	Type   string   `json:"type"`
	Mode   string   `json:"mode,omitempty"`
	Value  *float64 `json:"value,omitempty"`
	Paused *bool    `json:"paused,omitempty"`
}

// Hub tracks connected clients. Each connection has its own write lock so
// broadcasts and replies never interleave on one socket.
type Hub struct {
	manager  *state.Manager
	log      *logging.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub creates a hub serving m. A nil logger discards output.
func NewHub(m *state.Manager, log *logging.Logger) *Hub {
	if log == nil {
		log = logging.Discard()
	}
	return &Hub{
		manager: m,
		log:     log.Named("feed"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Start broadcasts every manager tick until the returned function is called.
func (h *Hub) Start() func() {
	return h.manager.Subscribe(func(f scene.Frame, events []state.Event) {
		h.Broadcast(Message{Type: TypeFrame, Frame: &f, Events: events})
	})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and serves the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = connMu
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()
	h.log.Debug("client connected: %s", r.RemoteAddr)

	hello := Message{Type: TypeHello}
	if f, ok := h.manager.Frame(); ok {
		hello.Frame = &f
	}
	if err := h.write(conn, connMu, hello); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("websocket read: %v", err)
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			if h.write(conn, connMu, Message{Type: TypeError, Error: "decode command: " + err.Error()}) != nil {
				return
			}
			continue
		}

		reply := Message{Type: TypeAck, Command: cmd.Type}
		if err := h.Apply(cmd); err != nil {
			reply = Message{Type: TypeError, Command: cmd.Type, Error: err.Error()}
		}
		if err := h.write(conn, connMu, reply); err != nil {
			return
		}
	}
}

// Apply executes cmd against the engine, between ticks.
func (h *Hub) Apply(cmd Command) error {
	value := func() (float64, error) {
		if cmd.Value == nil {
			return 0, fmt.Errorf("%s: %w", cmd.Type, ErrMissingValue)
		}
		return *cmd.Value, nil
	}

	var set func(e *scene.Engine)
	switch cmd.Type {
	case "set_mode":
		m, err := view.ParseMode(cmd.Mode)
		if err != nil {
			return err
		}
		set = func(e *scene.Engine) { e.SetMode(m) }
	case "cycle_mode":
		set = func(e *scene.Engine) { e.CycleMode() }
	case "set_paused":
		if cmd.Paused == nil {
			return fmt.Errorf("%s: %w", cmd.Type, ErrMissingValue)
		}
		p := *cmd.Paused
		set = func(e *scene.Engine) { e.SetPaused(p) }
	case "toggle_pause":
		set = func(e *scene.Engine) { e.TogglePause() }
	case "set_speed", "scale_speed", "set_day", "set_hour", "set_month", "set_latitude", "set_longitude":
		v, err := value()
		if err != nil {
			return err
		}
		set = func(e *scene.Engine) {
			switch cmd.Type {
			case "set_speed":
				e.SetSpeed(v)
			case "scale_speed":
				e.ScaleSpeed(v)
			case "set_day":
				e.SetDayOfYear(v)
			case "set_hour":
				e.SetHourOfDay(v)
			case "set_month":
				e.SetMonth(int(v))
			case "set_latitude":
				e.SetLatitude(v)
			case "set_longitude":
				e.SetLongitude(v)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}

	h.manager.Apply(set)
	h.log.Debug("applied %s", cmd.Type)
	return nil
}

// Broadcast writes msg to every client and drops the ones that fail.
// It returns the number of clients reached.
func (h *Hub) Broadcast(msg Message) int {
	h.mu.RLock()
	var failed []*websocket.Conn
	sent := 0
	for conn, connMu := range h.clients {
		if err := h.write(conn, connMu, msg); err != nil {
			failed = append(failed, conn)
			continue
		}
		sent++
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}
	return sent
}

func (h *Hub) write(conn *websocket.Conn, connMu *sync.Mutex, msg Message) error {
	connMu.Lock()
	defer connMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Debug("websocket write: %v", err)
		return err
	}
	return nil
}

// Run ticks the manager at fps frames per second of wall time until ctx is
// done. fps <= 0 uses 30.
func Run(ctx context.Context, m *state.Manager, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			m.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}
