package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestNoopLogger(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
	logger.Log(Event{Message: &MessageEvent{Type: MessageTypeRequest}})

	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	rec := &recordingLogger{}
	if OrNoop(rec) != Logger(rec) {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, nil, b)
	if m.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", m.Len())
	}

	m.Log(Event{URI: "/x"})
	m.Log(Event{URI: "/y"})

	for _, r := range []*recordingLogger{a, b} {
		if len(r.events) != 2 || r.events[1].URI != "/y" {
			t.Errorf("got %+v", r.events)
		}
	}
}

func TestSlogAdapterLogsMessageEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	method := wire.MethodGet
	seq := uint32(7)
	adapter.Log(Event{
		PeerID:    "peer-123",
		Direction: DirectionOut,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
		URI:       "/BloodPressureMonitorAMResURI",
		Message: &MessageEvent{
			Type:     MessageTypeNotification,
			Token:    "beef",
			Method:   &method,
			Sequence: &seq,
		},
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	want := map[string]any{
		"msg":       "protocol",
		"level":     "DEBUG",
		"peer_id":   "peer-123",
		"direction": "OUT",
		"layer":     "TRANSPORT",
		"msg_type":  "NOTIFICATION",
		"token":     "beef",
		"method":    "GET",
		"uri":       "/BloodPressureMonitorAMResURI",
		"seq":       float64(7),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %v", k, entry[k], v)
		}
	}
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(Event{
		Layer:       LayerObservation,
		Category:    CategoryState,
		StateChange: &StateChangeEvent{Entity: StateEntityObservation, OldState: "IDLE", NewState: "ACTIVE"},
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["entity"] != "OBSERVATION" || entry["new_state"] != "ACTIVE" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	adapter.Log(Event{})
	if buf.Len() != 0 {
		t.Errorf("debug event should be filtered at info level: %s", buf.String())
	}
}
