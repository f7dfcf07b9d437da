package cli

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/transport"
)

type fakeClient struct {
	mu        sync.Mutex
	published []string
	failOn    string
	pingErr   error
	closed    bool
}

func (f *fakeClient) Publish(ctx context.Context, channel, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, payload)
	if f.failOn != "" && payload == f.failOn {
		return errors.New("broker rejected message")
	}
	return nil
}

func (f *fakeClient) Subscribe(ctx context.Context, channel string, handler transport.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func factoryFor(fc *fakeClient) ClientFactory {
	return func(cmd *cobra.Command) (transport.Client, error) { return fc, nil }
}

func defaults() config.PublishConfig {
	return config.PublishConfig{Count: 1, Delay: config.Duration(40 * time.Millisecond)}
}

func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	// A nil slice would make cobra fall back to os.Args.
	cmd.SetArgs(append([]string{}, args...))
	return cmd.Execute()
}

func TestPublishCmd_Single(t *testing.T) {
	fc := &fakeClient{}
	err := execute(PublishCmd(factoryFor(fc), defaults()), "greetings", "hello")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(fc.published) != 1 || fc.published[0] != "hello" {
		t.Errorf("expected one publish of %q, got %v", "hello", fc.published)
	}
	if !fc.closed {
		t.Error("expected client to be closed")
	}
}

func TestPublishCmd_SingleFailureExitsNonZero(t *testing.T) {
	fc := &fakeClient{failOn: "hello"}
	err := execute(PublishCmd(factoryFor(fc), defaults()), "greetings", "hello")
	if err == nil {
		t.Fatal("expected error for failed single publish")
	}
	if !strings.Contains(err.Error(), "publish to greetings failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPublishCmd_BatchTemplating(t *testing.T) {
	fc := &fakeClient{}
	err := execute(PublishCmd(factoryFor(fc), defaults()),
		"load", "msg {{.Count}}", "--count", "4", "--delay", "0")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	got := append([]string(nil), fc.published...)
	sort.Strings(got)
	want := []string{"msg 1", "msg 2", "msg 3", "msg 4"}
	if len(got) != len(want) {
		t.Fatalf("expected %d publishes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("payload %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestPublishCmd_PartialFailureExitsNonZero(t *testing.T) {
	fc := &fakeClient{failOn: "3"}
	err := execute(PublishCmd(factoryFor(fc), defaults()),
		"load", "{{.Count}}", "--count", "5", "--delay", "0")
	if err == nil {
		t.Fatal("expected error for batch with failures")
	}
	if !strings.Contains(err.Error(), "1 of 5 messages failed") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(fc.published) != 5 {
		t.Errorf("failure must not stop the batch: %d publishes", len(fc.published))
	}
}

func TestPublishCmd_InvalidTemplate(t *testing.T) {
	fc := &fakeClient{}
	err := execute(PublishCmd(factoryFor(fc), defaults()),
		"load", "{{.Nope}}", "--count", "3")
	if err == nil {
		t.Fatal("expected error for invalid template")
	}
	if len(fc.published) != 0 {
		t.Errorf("invalid template must be rejected before any send, got %d", len(fc.published))
	}
}

func TestPingCmd(t *testing.T) {
	if err := execute(PingCmd(factoryFor(&fakeClient{}))); err != nil {
		t.Errorf("ping failed: %v", err)
	}

	down := &fakeClient{pingErr: errors.New("connection refused")}
	if err := execute(PingCmd(factoryFor(down))); err == nil {
		t.Error("expected error when broker is down")
	}
}

func TestPingCmd_FactoryError(t *testing.T) {
	cf := func(cmd *cobra.Command) (transport.Client, error) {
		return nil, errors.New("unknown transport \"kafka\"")
	}
	if err := execute(PingCmd(cf)); err == nil {
		t.Error("expected factory error to propagate")
	}
}
