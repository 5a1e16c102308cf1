package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/view"
)

func newTestHub(t *testing.T) (*Hub, *state.Manager, *httptest.Server) {
	t.Helper()
	e, err := scene.New(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}
	m := state.NewManager(e, state.DefaultConfig())
	h := NewHub(m, nil)
	rec, err := metrics.NewRecorder(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	srv := httptest.NewServer(NewMux(h, rec))
	t.Cleanup(srv.Close)
	return h, m, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if msg := read(t, conn); msg.Type != TypeHello {
		t.Fatalf("first message = %q, want hello", msg.Type)
	}
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func ptr[T any](v T) *T { return &v }

func TestCommandsApplyBetweenTicks(t *testing.T) {
	_, m, srv := newTestHub(t)
	conn := dial(t, srv)

	commands := []Command{
		{Type: "set_mode", Mode: "ground"},
		{Type: "set_speed", Value: ptr(500.0)},
		{Type: "set_paused", Paused: ptr(true)},
		{Type: "set_day", Value: ptr(100.0)},
		{Type: "set_hour", Value: ptr(6.0)},
		{Type: "set_latitude", Value: ptr(-33.9)},
		{Type: "set_longitude", Value: ptr(18.4)},
	}
	for _, cmd := range commands {
		if err := conn.WriteJSON(cmd); err != nil {
			t.Fatalf("WriteJSON(%s): %v", cmd.Type, err)
		}
		if msg := read(t, conn); msg.Type != TypeAck || msg.Command != cmd.Type {
			t.Fatalf("reply to %s = %+v, want ack", cmd.Type, msg)
		}
	}

	m.Read(func(e *scene.Engine) {
		c := e.Clock()
		if e.Mode() != view.Ground {
			t.Errorf("mode = %v, want ground", e.Mode())
		}
		// ground mode caps the speed
		if c.Speed != 30 || !c.Paused || c.DayOfYear != 100 || c.HourOfDay != 6 {
			t.Errorf("clock = %+v", c)
		}
		if s := e.Site(); s.LatDeg != -33.9 || math.Abs(s.LonDeg-18.4) > 1e-9 {
			t.Errorf("site = %+v", s)
		}
	})
}

func TestCommandErrors(t *testing.T) {
	_, _, srv := newTestHub(t)
	conn := dial(t, srv)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"unknown", `{"type":"warp"}`, "unknown command"},
		{"missing value", `{"type":"set_speed"}`, "missing value"},
		{"bad mode", `{"type":"set_mode","mode":"orbit"}`, "orbit"},
		{"missing paused", `{"type":"set_paused"}`, "missing value"},
		{"malformed", `{"type":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("WriteMessage: %v", err)
			}
			msg := read(t, conn)
			if msg.Type != TypeError {
				t.Fatalf("reply = %+v, want error", msg)
			}
			if !strings.Contains(msg.Error, tt.want) {
				t.Errorf("error = %q, want it to mention %q", msg.Error, tt.want)
			}
		})
	}

	// connection still usable
	if err := conn.WriteJSON(Command{Type: "toggle_pause"}); err != nil {
		t.Fatal(err)
	}
	if msg := read(t, conn); msg.Type != TypeAck {
		t.Errorf("reply = %+v, want ack", msg)
	}
}

func TestApplyErrors(t *testing.T) {
	h, _, _ := newTestHub(t)
	if err := h.Apply(Command{Type: "nope"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Apply(nope) = %v, want ErrUnknownCommand", err)
	}
	if err := h.Apply(Command{Type: "set_hour"}); !errors.Is(err, ErrMissingValue) {
		t.Errorf("Apply(set_hour) = %v, want ErrMissingValue", err)
	}
}

func TestBroadcastFrames(t *testing.T) {
	h, m, srv := newTestHub(t)
	stop := h.Start()
	defer stop()

	conn := dial(t, srv)
	m.Apply(func(e *scene.Engine) { e.SetMode(view.Galactic) })
	f := m.Tick(0.1)

	msg := read(t, conn)
	if msg.Type != TypeFrame || msg.Frame == nil {
		t.Fatalf("message = %+v, want frame", msg)
	}
	if msg.Frame.Tick != f.Tick || msg.Frame.Mode != view.Galactic {
		t.Errorf("frame tick %d mode %v, want %d galactic", msg.Frame.Tick, msg.Frame.Mode, f.Tick)
	}
	if len(msg.Events) != 1 || msg.Events[0].Type != state.EventModeSwitch {
		t.Errorf("events = %+v, want one mode switch", msg.Events)
	}
	if got := h.Clients(); got != 1 {
		t.Errorf("Clients() = %d, want 1", got)
	}
}

func TestHealthAndSnapshot(t *testing.T) {
	_, _, srv := newTestHub(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "ok ") {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var x struct {
		Frame struct {
			Mode string `json:"mode"`
		} `json:"frame"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&x); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if x.Frame.Mode != "system" {
		t.Errorf("snapshot mode = %q, want system", x.Frame.Mode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	_, m, _ := newTestHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := Run(ctx, m, 60)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want deadline exceeded", err)
	}
	if !m.HasData() {
		t.Error("Run() never ticked")
	}
}
