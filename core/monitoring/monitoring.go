// Package monitoring exposes process-wide error reporting hooks. The default
// monitor discards everything until Init installs a real one.
package monitoring

import "time"

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// Recover reports a value obtained from recover().
	Recover(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover(any)                               {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation. A nil monitor is ignored.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	current.CaptureException(err, tags)
}

// Recover reports a recovered panic value. The caller recovers and decides
// whether to re-panic:
//
//	defer func() {
//		if r := recover(); r != nil {
//			monitoring.Recover(r)
//			panic(r)
//		}
//	}()
func Recover(v any) {
	if v != nil {
		current.Recover(v)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) { current.Flush(d) }
