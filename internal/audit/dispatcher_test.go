package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "x"})
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close nil dispatcher: %v", err)
	}
	if d.Dropped() != 0 || d.Delivered() != 0 {
		t.Fatal("expected zero counters on nil dispatcher")
	}
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(16)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "login_success"})
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if d.Delivered() != 5 {
		t.Fatalf("expected 5 delivered, got %d", d.Delivered())
	}
	for i := 0; i < 5; i++ {
		ev := <-sink.Events()
		if ev.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be stamped")
		}
	}

	d.Emit(context.Background(), Event{EventType: "late"})
	if d.Delivered() != 5 {
		t.Fatal("expected emit after close to be ignored")
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "flood"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops with a blocked sink and tiny buffer")
	}

	close(sink.gate)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestDispatcherBlockingEmitHonorsContext(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	defer func() {
		close(sink.gate)
		_ = d.Close(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 3; i++ {
		d.Emit(ctx, Event{EventType: "blocked"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected context expiry to count as a drop")
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{EventType: "logout", UserID: "u-1", Success: true})
	sink.Emit(context.Background(), Event{EventType: "login_failure", Error: "invalid_credentials"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var ev Event
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.EventType != "logout" || ev.UserID != "u-1" || !ev.Success {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestSlogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewSlogSink(logger)

	sink.Emit(context.Background(), Event{EventType: "login_success", UserID: "u-1", Success: true})
	sink.Emit(context.Background(), Event{EventType: "login_failure", Error: "invalid_credentials", Metadata: map[string]string{"reason": "password"}})

	out := buf.String()
	for _, want := range []string{
		"level=INFO", "event_type=login_success", "user_id=u-1",
		"level=WARN", "error=invalid_credentials", "meta.reason=password", "component=audit",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	a := NewChannelSink(1)
	b := NewChannelSink(1)
	MultiSink{a, nil, b}.Emit(context.Background(), Event{EventType: "x"})

	if (<-a.Events()).EventType != "x" || (<-b.Events()).EventType != "x" {
		t.Fatal("expected both sinks to receive the event")
	}
}
