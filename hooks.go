package shaderconverter

import (
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	diagOnce sync.Once
	diag     atomic.Pointer[slog.Logger]
)

// InitDiagnostics installs the process-wide diagnostic hook used to report
// internal panics recovered by Convert. Until it is called, recovered
// panics are still turned into failed results, just silently.
//
// Safe to call redundantly or concurrently; only the first call has any
// effect, and calling it never changes conversion results.
func InitDiagnostics() {
	diagOnce.Do(func() {
		diag.Store(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})
}
