package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewClient_ConnectFailure(t *testing.T) {
	// Nothing listens here; the dial retries should exhaust and fail.
	_, err := NewClient(context.Background(), Config{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestClient_PublishSubscribe(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 16)
	subErr := make(chan error, 1)
	go func() {
		subErr <- client.Subscribe(ctx, "volley.test", func(channel, payload string) {
			received <- payload
		})
	}()

	// The subscriber registers asynchronously; keep publishing until a
	// message lands or the deadline passes.
	deadline := time.After(5 * time.Second)
	var got string
publish:
	for {
		if err := client.Publish(ctx, "volley.test", "hello"); err != nil {
			t.Fatalf("Publish() failed: %v", err)
		}
		select {
		case got = <-received:
			break publish
		case err := <-subErr:
			t.Fatalf("Subscribe() exited early: %v", err)
		case <-deadline:
			t.Fatal("no message received within deadline")
		case <-time.After(50 * time.Millisecond):
		}
	}

	if got != "hello" {
		t.Errorf("expected payload %q, got %q", "hello", got)
	}

	cancel()
	select {
	case err := <-subErr:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled from Subscribe, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Subscribe did not return after cancellation")
	}
}
