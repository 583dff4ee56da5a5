package scheduler

import (
	"github.com/google/uuid"
	"github.com/kristofer/smog/pkg/interp"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
	"github.com/sirupsen/logrus"
)

// Scheduler is the single-threaded cooperative driver from spec §4.7/§5:
// one OS thread, round-robin (priority-weighted) selection among ready
// processes, no parallelism. All processes share one *interp.Globals.
type Scheduler struct {
	Globals *interp.Globals
	Log     *logrus.Entry

	ready []*Process
	// blocked is kept only so RunToCompletion can report/scan it; the
	// authoritative state is each Process's own State field.
	blocked []*Process

	mainProcess *Process
	nextPID     int64

	// YieldEverySend propagates cmd/smog's --yield-every-send debug flag
	// to every process VM this scheduler creates, including ones forked
	// later via Fork.
	YieldEverySend bool

	// rrCursor is the round-robin position into ready, so repeated Step
	// calls rotate fairly (spec §8 "round-robin fairness") rather than
	// always preferring ready[0].
	rrCursor int
}

// New creates a scheduler over a fresh Globals (with Process/Semaphore/
// Monitor/SharedQueue installed) and forks mainProcess, which callers use
// to run a top-level script via its VM's EvalProgram before any further
// forking happens.
func New(log *logrus.Entry) *Scheduler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	g := interp.NewGlobals()
	s := &Scheduler{Globals: g, Log: log}
	Install(g, s)
	s.mainProcess = s.newProcess("main", 0)
	s.mainProcess.State = StateRunning
	return s
}

// MainProcess returns the process EvalProgram/doit run on before any
// `Processor fork:` call introduces a second one.
func (s *Scheduler) MainProcess() *Process { return s.mainProcess }

func (s *Scheduler) newProcess(name string, priority int) *Process {
	s.nextPID++
	p := &Process{
		PID:      s.nextPID,
		UUID:     uuid.New(),
		Name:     name,
		State:    StateReady,
		Priority: priority,
		sched:    s,
	}
	p.VM = interp.New(s.Globals, s.Log.WithField("pid", p.PID))
	p.VM.Owner = p
	p.VM.YieldEverySend = s.YieldEverySend
	return p
}

// Fork implements spec §4.7 `fork(block) → Process`: allocate a VM, push
// block as its initial work, state ready.
func (s *Scheduler) Fork(block *value.Block, name string, priority int) *Process {
	p := s.newProcess(name, priority)
	p.VM.StartBlock(block)
	s.ready = append(s.ready, p)
	s.Log.WithFields(logrus.Fields{"pid": p.PID, "uuid": p.UUID}).Debug("scheduler: forked process")
	return p
}

// pickNext selects the next ready process, round-robin among equal
// priorities and weighted toward higher-priority processes otherwise
// (spec §4.7 "round-robin, priority-weighted if priorities differ"):
// among all ready processes, prefer the highest Priority tier present,
// round-robining within that tier.
func (s *Scheduler) pickNext() (*Process, int) {
	if len(s.ready) == 0 {
		return nil, -1
	}
	best := s.ready[0].Priority
	for _, p := range s.ready {
		if p.Priority > best {
			best = p.Priority
		}
	}
	n := len(s.ready)
	for i := 0; i < n; i++ {
		idx := (s.rrCursor + i) % n
		if s.ready[idx].Priority == best {
			return s.ready[idx], idx
		}
	}
	return nil, -1
}

// Step implements spec §4.7 `step()`: pick the next ready process,
// mark it running, run its VM until it yields, terminates, or blocks,
// then update state and move on. Returns the process stepped, or nil if
// none was ready.
func (s *Scheduler) Step() (*Process, error) {
	p, idx := s.pickNext()
	if p == nil {
		return nil, nil
	}
	s.ready = append(s.ready[:idx], s.ready[idx+1:]...)
	s.rrCursor = idx

	p.State = StateRunning
	p.log().Debug("scheduler: stepping process")
	status, err := p.VM.Run()
	switch status {
	case interp.StatusYielded:
		// A sync primitive (Monitor.critical:/Semaphore.wait/
		// SharedQueue.get) may have already moved p to StateBlocked and
		// onto s.blocked itself before setting ShouldYield; only a bare
		// `Processor yield`/explicit yield leaves p still StateRunning
		// here, in which case it is simply ready again.
		if p.State != StateBlocked {
			p.State = StateReady
			s.ready = append(s.ready, p)
		}
	case interp.StatusCompleted:
		p.State = StateTerminated
		if len(p.VM.EvalStack) > 0 {
			p.Result = p.VM.EvalStack[len(p.VM.EvalStack)-1]
		}
	case interp.StatusError:
		p.State = StateTerminated
		p.Err = err
		s.Log.WithFields(logrus.Fields{"pid": p.PID}).Warnf("process terminated with error: %v", err)
	}
	// A process that entered a sync primitive's wait list during this Run
	// call already set its own State to StateBlocked and appended itself
	// to s.blocked (see monitor.go/semaphore.go/sharedqueue.go); nothing
	// further to do for that case here.
	return p, err
}

// RunToCompletion implements spec §4.7 `runToCompletion()`: step until
// ready and blocked are both empty, or every remaining blocked process
// has no possible wake-up left (a scheduler deadlock error).
func (s *Scheduler) RunToCompletion() error {
	for {
		if len(s.ready) == 0 {
			if len(s.blocked) == 0 {
				return nil
			}
			if s.deadlocked() {
				return vmerrors.New(vmerrors.KindScheduler,
					"deadlock: %d process(es) blocked with no possible wake-up", len(s.blocked))
			}
			// Some blocked process reports it could still be woken (a
			// Monitor waiter whose owner has not terminated), but nothing
			// is ready to run and wake it. Treat as deadlock rather than
			// loop forever.
			return vmerrors.New(vmerrors.KindScheduler, "deadlock: no ready process and none wakeable")
		}
		if _, err := s.Step(); err != nil {
			return err
		}
	}
}

// deadlocked reports whether every blocked process has no possible
// wake-up: none of them is in a wait list whose condition another process
// (blocked or not) could still change.
func (s *Scheduler) deadlocked() bool {
	for _, p := range s.blocked {
		if p.waitingOn != nil && p.waitingOn.canEverWake(p) {
			return false
		}
	}
	return true
}

// wake moves p from blocked to ready, per spec §4.8's "waking restores it
// to ready and re-examines the blocking condition before committing to
// the wake" — the caller (Monitor/Semaphore/SharedQueue) is responsible
// for re-checking its own condition and may call wake speculatively; it
// must not have already removed p from its own wait list unless the
// condition for p specifically held.
func (s *Scheduler) wake(p *Process) {
	for i, b := range s.blocked {
		if b == p {
			s.blocked = append(s.blocked[:i], s.blocked[i+1:]...)
			break
		}
	}
	p.waitingOn = nil
	p.State = StateReady
	s.ready = append(s.ready, p)
}

// block moves p from running to blocked on w, per spec §4.8's invariant
// "a blocked process is in exactly one primitive's wait list and not in
// ready".
func (s *Scheduler) block(p *Process, w waitable) {
	p.State = StateBlocked
	p.waitingOn = w
	s.blocked = append(s.blocked, p)
}

// Terminate implements spec §4.7 `terminate`: discard the VM state.
func (s *Scheduler) Terminate(p *Process) {
	p.State = StateTerminated
	p.VM = nil
	s.removeFromReady(p)
	s.removeFromBlocked(p)
}

// Suspend/Resume toggle between suspended and ready without discarding
// state (spec §4.7).
func (s *Scheduler) Suspend(p *Process) {
	if p.State != StateReady {
		return
	}
	p.State = StateSuspended
	s.removeFromReady(p)
}

func (s *Scheduler) Resume(p *Process) {
	if p.State != StateSuspended {
		return
	}
	p.State = StateReady
	s.ready = append(s.ready, p)
}

func (s *Scheduler) removeFromReady(p *Process) {
	for i, r := range s.ready {
		if r == p {
			s.ready = append(s.ready[:i], s.ready[i+1:]...)
			return
		}
	}
}

func (s *Scheduler) removeFromBlocked(p *Process) {
	for i, b := range s.blocked {
		if b == p {
			s.blocked = append(s.blocked[:i], s.blocked[i+1:]...)
			return
		}
	}
}
