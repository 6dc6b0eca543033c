package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestHub_PublishNeverBlocks(t *testing.T) {
	h := NewHub(nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			h.Publish("sync_progress", map[string]int{"i": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no hub running")
	}
	if len(h.Broadcast) != broadcastBuffer {
		t.Fatalf("expected a full queue of %d, got %d", broadcastBuffer, len(h.Broadcast))
	}

	var msg Message
	if err := json.Unmarshal(<-h.Broadcast, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "sync_progress" || msg.SentAt.IsZero() {
		t.Fatalf("unexpected envelope %+v", msg)
	}
}

func TestHub_StopsWithContext(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	h.Publish("catalog_updated", nil)
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	if h.Join(nil) {
		t.Fatal("Join should refuse once the hub has stopped")
	}
	h.Leave(nil)
	if h.ClientCount() != 0 {
		t.Fatalf("expected no clients, got %d", h.ClientCount())
	}
}
