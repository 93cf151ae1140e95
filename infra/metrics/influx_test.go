package metrics

import (
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/loadshift/core/metrics"
)

type captureServer struct {
	mu     sync.Mutex
	bodies []string
}

func (c *captureServer) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.bodies = append(c.bodies, string(data))
	c.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (c *captureServer) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.bodies) == 0 {
		return ""
	}
	return c.bodies[len(c.bodies)-1]
}

func TestInfluxSink_RecordIteration(t *testing.T) {
	cs := &captureServer{}
	srv := httptest.NewServer(http.HandlerFunc(cs.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.IterationEvent{
		RunID:       "run-1",
		Iteration:   3,
		BestFitness: 12.5,
		MeanFitness: 20.25,
		Diversity:   1.5,
		Evaluations: 120,
		Time:        now,
	}
	if err := sink.RecordIteration(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("swarm_iteration").
		AddTag("run_id", "run-1").
		AddField("iteration", 3).
		AddField("evaluations", 120).
		AddField("best_fitness", 12.5).
		AddField("mean_fitness", 20.25).
		AddField("diversity", 1.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := strings.TrimSpace(cs.last()); got != expected {
		t.Errorf("unexpected body:\n got: %s\nwant: %s", got, expected)
	}
}

func TestInfluxSink_RecordIterationSkipsNonFinite(t *testing.T) {
	cs := &captureServer{}
	srv := httptest.NewServer(http.HandlerFunc(cs.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	ev := coremetrics.IterationEvent{
		RunID:       "run-2",
		BestFitness: 4,
		MeanFitness: math.Inf(1),
		Diversity:   math.NaN(),
		Time:        time.Now(),
	}
	if err := sink.RecordIteration(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	body := cs.last()
	if strings.Contains(body, "mean_fitness") || strings.Contains(body, "diversity") {
		t.Fatalf("non-finite fields should be dropped: %s", body)
	}
	if !strings.Contains(body, "best_fitness=4") {
		t.Fatalf("expected best_fitness field: %s", body)
	}
}

func TestInfluxSink_RecordRun(t *testing.T) {
	cs := &captureServer{}
	srv := httptest.NewServer(http.HandlerFunc(cs.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	hourly := make([]float64, 24)
	hourly[19] = 2.5
	ev := coremetrics.RunEvent{
		RunID:        "run-3",
		Iterations:   100,
		SwarmSize:    30,
		Evaluations:  3030,
		Duration:     1500 * time.Millisecond,
		BestFitness:  9.1,
		Cost:         8.9,
		Discomfort:   2,
		PeakLoadKW:   2.5,
		HourlyLoad:   hourly,
		BaselineCost: 10.4,
		Savings:      1.5,
		Time:         now,
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(cs.last()), "\n")
	if len(lines) != 25 {
		t.Fatalf("expected 25 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "optimization_run,run_id=run-3 ") {
		t.Errorf("unexpected run line: %s", lines[0])
	}
	for _, f := range []string{"evaluations=3030i", "duration_ms=1500", "cost=8.9", "savings=1.5"} {
		if !strings.Contains(lines[0], f) {
			t.Errorf("run line missing %s: %s", f, lines[0])
		}
	}
	hour := write.NewPointWithMeasurement("hourly_load").
		AddTag("run_id", "run-3").
		AddTag("hour", "19").
		AddField("power_kw", 2.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(hour, time.Nanosecond))
	if lines[20] != expected {
		t.Errorf("unexpected hourly line:\n got: %s\nwant: %s", lines[20], expected)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{
		URL:    srv.URL + "/api/v2/write",
		Token:  "tok",
		Org:    "org",
		Bucket: "bucket",
	})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("expected health endpoint to be called")
	}
}
