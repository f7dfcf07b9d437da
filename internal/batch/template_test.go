package batch

import (
	"strconv"
	"testing"
	"time"
)

func TestParsePayload_PlainText(t *testing.T) {
	p, err := ParsePayload("hello world")
	if err != nil {
		t.Fatalf("ParsePayload() failed: %v", err)
	}
	if got := p.Render(7); got != "hello world" {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestParsePayload_CountToken(t *testing.T) {
	p, err := ParsePayload("message {{.Count}}")
	if err != nil {
		t.Fatalf("ParsePayload() failed: %v", err)
	}
	for _, i := range []int{1, 2, 42} {
		want := "message " + strconv.Itoa(i)
		if got := p.Render(i); got != want {
			t.Errorf("Render(%d): expected %q, got %q", i, want, got)
		}
	}
}

func TestParsePayload_TimestampToken(t *testing.T) {
	p, err := ParsePayload("{{.Timestamp}}")
	if err != nil {
		t.Fatalf("ParsePayload() failed: %v", err)
	}

	before := time.Now().UnixMilli()
	got := p.Render(1)
	after := time.Now().UnixMilli()

	ms, err := strconv.ParseInt(got, 10, 64)
	if err != nil {
		t.Fatalf("rendered timestamp %q is not an integer", got)
	}
	if ms < before || ms > after {
		t.Errorf("timestamp %d outside [%d, %d]", ms, before, after)
	}
}

func TestParsePayload_Malformed(t *testing.T) {
	if _, err := ParsePayload("broken {{.Count"); err == nil {
		t.Error("expected error for unterminated token")
	}
}

func TestParsePayload_UnknownField(t *testing.T) {
	if _, err := ParsePayload("{{.Nope}}"); err == nil {
		t.Error("expected error for unknown token")
	}
}
