// Package scheduler implements the cooperative green-thread scheduler
// (spec component C7) and the sync primitives built on top of it (C8):
// Monitor, Semaphore, SharedQueue. It depends on pkg/interp but pkg/interp
// never depends back on it — Process/Semaphore/Monitor/SharedQueue classes
// are registered into a shared *interp.Globals via Install, called once
// after interp.NewGlobals returns, so the two packages stay acyclic.
package scheduler

import (
	"github.com/google/uuid"
	"github.com/kristofer/smog/pkg/interp"
	"github.com/kristofer/smog/pkg/value"
	"github.com/sirupsen/logrus"
)

// State is one of the process lifecycle states spec §4.7/§5 name.
type State string

const (
	StateReady      State = "ready"
	StateRunning    State = "running"
	StateBlocked    State = "blocked"
	StateSuspended  State = "suspended"
	StateTerminated State = "terminated"
)

// Process is one green thread: an independent VM (work queue, eval stack,
// activation stack) plus the scheduling metadata spec §4.7 tracks. Two
// processes forked in the same tick share nothing but Globals.
type Process struct {
	PID   int64
	UUID  uuid.UUID
	Name  string
	State State

	// Priority weights round-robin selection (spec §4.7 "priority-weighted
	// if priorities differ"); zero is the default, equal-weight tier.
	Priority int

	VM *interp.Interpreter

	// waitingOn is the sync primitive currently blocking this process, so
	// a deadlock scan (runToCompletion) can ask every blocked process
	// whether its condition could ever become true again. Nil unless
	// State == StateBlocked.
	waitingOn waitable

	// Result/Err hold the outcome once State == StateTerminated: the last
	// expression value and, if the process's VM loop ended in error, the
	// error that terminated it (spec §7 "the process terminates with the
	// error as its final result").
	Result value.Value
	Err    error

	sched *Scheduler
}

// waitable is the narrow capability a sync primitive exposes to the
// scheduler's deadlock scan: whether the condition this process is
// blocked on could still change (another process could still wake it).
type waitable interface {
	canEverWake(p *Process) bool
}

func (p *Process) log() *logrus.Entry {
	return p.VM.Log.WithFields(logrus.Fields{"pid": p.PID, "process": p.Name, "uuid": p.UUID})
}
