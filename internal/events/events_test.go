package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"bodega-pos/internal/ws"

	"github.com/redis/go-redis/v9"
)

type failing struct{}

func (failing) Publish(context.Context, Event) error { return errors.New("down") }

func TestMultiPublishesToAll(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	err := Multi{a, failing{}, b}.Publish(context.Background(), New(TransactionCreated, map[string]interface{}{"id": 1}))
	if err == nil {
		t.Fatalf("expected the failing publisher's error")
	}
	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatalf("every publisher should receive the event")
	}
	if err := (Noop{}).Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("Noop: %v", err)
	}
}

func TestHubPublisherBroadcastsJSON(t *testing.T) {
	hub := ws.NewHub()
	p := NewHubPublisher(hub)
	if err := p.Publish(context.Background(), New(TransactionDeleted, map[string]interface{}{"id": 9})); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case raw := <-hub.Broadcast:
		var got struct {
			Type string                 `json:"type"`
			Data map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if got.Type != TransactionDeleted || got.Data["id"] != float64(9) {
			t.Fatalf("payload = %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("nothing broadcast")
	}
}

func TestHubPublisherAfterShutdown(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)
	for i := 0; i < cap(hub.Broadcast); i++ {
		hub.Broadcast <- []byte("queued")
	}

	err := NewHubPublisher(hub).Publish(context.Background(), New(TransactionDeleted, map[string]interface{}{"id": 9}))
	if !errors.Is(err, ws.ErrClosed) {
		t.Fatalf("Publish after shutdown = %v, want ws.ErrClosed", err)
	}
}

func TestRedisPublisher(t *testing.T) {
	addr := os.Getenv("BODEGA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BODEGA_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	p := NewRedisPublisher(client)
	sub := client.Subscribe(ctx, p.Channel(TransactionCreated), p.Channel("all"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := p.Publish(ctx, New(TransactionCreated, map[string]interface{}{"id": 3})); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	seen := map[string]bool{}
	for len(seen) < 2 {
		msg, err := sub.ReceiveTimeout(ctx, 2*time.Second)
		if err != nil {
			t.Fatalf("receive: %v", err)
		}
		if m, ok := msg.(*redis.Message); ok {
			seen[m.Channel] = true
		}
	}
	if !seen["bodega:events:transaction_created"] || !seen["bodega:events:all"] {
		t.Fatalf("channels = %v", seen)
	}
}
