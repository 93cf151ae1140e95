package monitoring

import (
	"errors"
	"testing"
	"time"
)

type recordMonitor struct {
	errs      []error
	recovered []any
	flushed   bool
}

func (r *recordMonitor) CaptureException(err error, _ map[string]string) { r.errs = append(r.errs, err) }
func (r *recordMonitor) Recover(v any)                                   { r.recovered = append(r.recovered, v) }
func (r *recordMonitor) Flush(time.Duration)                             { r.flushed = true }

func TestGlobalMonitor(t *testing.T) {
	rec := &recordMonitor{}
	Init(rec)
	defer Init(NopMonitor{})
	Init(nil)

	CaptureException(nil, nil)
	CaptureException(errors.New("x"), map[string]string{"k": "v"})
	Recover(nil)
	Recover("boom")
	Flush(time.Second)

	if len(rec.errs) != 1 || len(rec.recovered) != 1 || !rec.flushed {
		t.Fatalf("unexpected record %#v", rec)
	}
}
