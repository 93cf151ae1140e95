package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/loadshift/core/metrics"
	"github.com/kilianp07/loadshift/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes run summaries and convergence traces to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails, so an unreachable database never blocks a run.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run summary and its hourly load profile in one batch.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimization_run").
		AddTag("run_id", ev.RunID).
		AddField("iterations", ev.Iterations).
		AddField("swarm_size", ev.SwarmSize).
		AddField("evaluations", ev.Evaluations).
		AddField("duration_ms", round3(float64(ev.Duration)/float64(time.Millisecond)))
	addFinite(p, "best_fitness", ev.BestFitness)
	addFinite(p, "cost", ev.Cost)
	addFinite(p, "discomfort", ev.Discomfort)
	addFinite(p, "penalty", ev.Penalty)
	addFinite(p, "peak_load_kw", ev.PeakLoadKW)
	addFinite(p, "baseline_cost", ev.BaselineCost)
	addFinite(p, "savings", ev.Savings)
	p.SetTime(ev.Time)

	points := []*write.Point{p}
	for h, kw := range ev.HourlyLoad {
		points = append(points, write.NewPointWithMeasurement("hourly_load").
			AddTag("run_id", ev.RunID).
			AddTag("hour", strconv.Itoa(h)).
			AddField("power_kw", round3(kw)).
			SetTime(ev.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordIteration writes one convergence point.
func (s *InfluxSink) RecordIteration(ev coremetrics.IterationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("swarm_iteration").
		AddTag("run_id", ev.RunID).
		AddField("iteration", ev.Iteration).
		AddField("evaluations", ev.Evaluations)
	addFinite(p, "best_fitness", ev.BestFitness)
	addFinite(p, "mean_fitness", ev.MeanFitness)
	addFinite(p, "diversity", ev.Diversity)
	p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

// addFinite skips NaN and infinities, which line protocol cannot carry.
func addFinite(p *write.Point, name string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	p.AddField(name, round3(v))
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
