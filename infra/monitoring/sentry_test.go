package monitoring

import (
	"errors"
	"testing"
	"time"

	coremon "github.com/kilianp07/loadshift/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor got %T", m)
	}
}

func TestNewSentryMonitorBadDSN(t *testing.T) {
	if _, err := NewSentryMonitor(Config{DSN: "://not a dsn"}); err == nil {
		t.Fatalf("expected error for malformed dsn")
	}
}

func TestSentryMonitorCapture(t *testing.T) {
	// A syntactically valid DSN; nothing is sent because the transport is
	// flushed with a short timeout against an unroutable host.
	m, err := NewSentryMonitor(Config{DSN: "https://public@127.0.0.1:1/1", Environment: "test"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	m.CaptureException(nil, nil)
	m.CaptureException(errors.New("boom"), map[string]string{"run_id": "r1"})
	m.Flush(10 * time.Millisecond)
}
