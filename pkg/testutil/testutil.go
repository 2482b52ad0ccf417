// Package testutil provides testing utilities for freelist
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// ObservedLogger returns a logger that records every entry at or above level
// so tests can assert on warnings.
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// RecordingObserver counts pool events per pool name. It is not safe for
// concurrent use, like the pools it observes.
type RecordingObserver struct {
	Allocations map[string]int
	Reused      map[string]int
	Frees       map[string]int
	Rejected    map[string]int
	Available   map[string]int
	Outstanding map[string]int
}

// NewRecordingObserver creates an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{
		Allocations: make(map[string]int),
		Reused:      make(map[string]int),
		Frees:       make(map[string]int),
		Rejected:    make(map[string]int),
		Available:   make(map[string]int),
		Outstanding: make(map[string]int),
	}
}

// Allocated counts an allocation and whether it was served from the free list.
func (o *RecordingObserver) Allocated(pool string, reused bool) {
	o.Allocations[pool]++
	if reused {
		o.Reused[pool]++
	}
}

// Freed counts a free.
func (o *RecordingObserver) Freed(pool string) {
	o.Frees[pool]++
}

// PrewarmRejected counts a rejected prewarm.
func (o *RecordingObserver) PrewarmRejected(pool string) {
	o.Rejected[pool]++
}

// Levels keeps the last reported levels.
func (o *RecordingObserver) Levels(pool string, available, outstanding int) {
	o.Available[pool] = available
	o.Outstanding[pool] = outstanding
}
