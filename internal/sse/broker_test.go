package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe(0)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestNotifyDelivery(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe(0)
	defer b.Unsubscribe(ch)

	b.Notify(EventEvaluationCompleted, map[string]any{"id": "abc", "delta_g": -800.72})

	s := recv(t, ch)
	if !strings.HasPrefix(s, "id: 1\n") {
		t.Errorf("missing id in %q", s)
	}
	if !strings.Contains(s, "event: evaluation.completed") {
		t.Errorf("missing event type in %q", s)
	}
	if !strings.Contains(s, `"id":"abc"`) {
		t.Errorf("missing data in %q", s)
	}
}

func TestFallbackReloaded(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe(0)
	defer b.Unsubscribe(ch)

	b.FallbackReloaded(22, "deadbeef")
	s := recv(t, ch)
	if !strings.Contains(s, "event: fallback.reloaded") || !strings.Contains(s, `"entries":22`) {
		t.Errorf("unexpected frame %q", s)
	}
}

func TestSubscribeReplaysBacklog(t *testing.T) {
	b := NewBroker(WithBacklog(2))
	defer b.Close()
	for _, id := range []string{"a", "b", "c"} {
		b.Notify(EventEvaluationCompleted, map[string]string{"id": id})
	}
	// Publishing is asynchronous; a count round-trip orders it before Subscribe.
	b.ClientCount()

	ch := b.Subscribe(1)
	defer b.Unsubscribe(ch)
	if s := recv(t, ch); !strings.HasPrefix(s, "id: 2\n") {
		t.Errorf("first replayed frame = %q", s)
	}
	if s := recv(t, ch); !strings.HasPrefix(s, "id: 3\n") {
		t.Errorf("second replayed frame = %q", s)
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected extra frame %q", msg)
	default:
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(WithHeartbeat(0))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Notify(EventEvaluationCompleted, map[string]string{"id": "x"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if body := w.Body.String(); !strings.Contains(body, "event: evaluation.completed") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe(0)
	defer b.Unsubscribe(ch)

	for i := 0; i < clientBuffer+10; i++ {
		b.Notify("test", i)
	}
	// Reaching here without deadlock is the assertion.
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(0)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	b.Notify(EventFallbackReloaded, nil)
}
