package model

import (
	"sync"
	"time"
)

// RunStatus is a point-in-time snapshot of the queue run state.
type RunStatus struct {
	IsRunning           bool
	IsPaused            bool
	PauseReason         string
	LastActivityAt      time.Time
	ConsecutiveFailures int
}

// RunState tracks the queue processor's lifecycle. One instance per running
// pipeline, injected at construction rather than held as a package global.
// The processor is the only writer; the mutex exists because status reads
// come from other goroutines (control API, scheduler).
type RunState struct {
	mu                  sync.Mutex
	running             bool
	paused              bool
	pauseReason         string
	lastActivityAt      time.Time
	consecutiveFailures int
}

func NewRunState() *RunState {
	return &RunState{}
}

// TryStart moves IDLE -> RUNNING. It returns false when a run is already
// active or the queue is paused; re-entrant starts are rejected, not queued.
func (s *RunState) TryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.paused {
		return false
	}
	s.running = true
	s.lastActivityAt = time.Now()
	return true
}

// Finish moves RUNNING -> IDLE unless a pause intervened.
func (s *RunState) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Pause records the reason and halts the run. No job may start while paused.
func (s *RunState) Pause(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.running = false
	s.pauseReason = reason
}

// Resume moves PAUSED -> IDLE and clears the reason. The failure streak is
// deliberately left intact; the operator decides when it no longer applies.
func (s *RunState) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.pauseReason = ""
}

// Touch records pipeline activity.
func (s *RunState) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivityAt = time.Now()
}

// RecordFailure increments the consecutive-failure streak and returns it.
func (s *RunState) RecordFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFailures++
	return s.consecutiveFailures
}

// ResetFailures clears the streak after a successful submission.
func (s *RunState) ResetFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFailures = 0
}

func (s *RunState) Snapshot() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RunStatus{
		IsRunning:           s.running,
		IsPaused:            s.paused,
		PauseReason:         s.pauseReason,
		LastActivityAt:      s.lastActivityAt,
		ConsecutiveFailures: s.consecutiveFailures,
	}
}
