package scheduler

import (
	"github.com/kristofer/smog/pkg/interp"
	"github.com/kristofer/smog/pkg/value"
)

// semaphoreState is a Semaphore Instance's Native payload (spec §4.8):
// count decrements on wait when positive, otherwise the caller queues.
type semaphoreState struct {
	count    int64
	waitList []*Process
}

// canEverWake implements waitable by always reporting false: a semaphore
// waiter never counts as wakeable, so when nothing is ready and no other
// blocked process reports itself wakeable, the scheduler's deadlocked()
// check reports a deadlock. Whether some other blocked process might
// still signal this semaphore is not examined.
func (s *semaphoreState) canEverWake(p *Process) bool { return false }

func installSemaphoreClass(k *KernelClasses) {
	isSemaphore := func(r value.Value, wantArgs int, a []value.Value) bool {
		return r.Kind == value.KindInstance && r.Inst.Class == k.Semaphore && len(a) == wantArgs
	}

	interp.RegisterControlPrimitive("wait",
		func(r value.Value, a []value.Value) bool { return isSemaphore(r, 0, a) },
		func(vm *interp.Interpreter, r value.Value, a []value.Value) error {
			return semaphoreWait(vm, r.Inst)
		},
	)

	// signal is an ordinary (non-suspending) native method: it never
	// blocks the caller, so it needs no retry machinery.
	nativeInstanceMethod(k.Semaphore, "signal", func(caller value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		inst := receiver.Inst
		s := inst.Native.(*semaphoreState)
		vm := caller.(*interp.Interpreter)
		p := vm.Owner.(*Process)
		// Always increment, then wake a waiter if one exists: the woken
		// process's retried wait sees count > 0 and proceeds, so this
		// reduces to the textbook "increment or wake" with no special
		// casing needed in semaphoreWait's retry path.
		s.count++
		if len(s.waitList) > 0 {
			next := s.waitList[0]
			s.waitList = s.waitList[1:]
			p.sched.wake(next)
		}
		return receiver, nil
	})
}

func semaphoreWait(vm *interp.Interpreter, inst *value.Instance) error {
	s := inst.Native.(*semaphoreState)
	p := vm.Owner.(*Process)

	if s.count > 0 {
		s.count--
		vm.PushEval(value.InstanceValue(inst))
		return nil
	}
	s.waitList = append(s.waitList, p)
	p.sched.block(p, s)
	vm.ShouldYield = true
	vm.PushRetry(func(vm *interp.Interpreter) error {
		return semaphoreWait(vm, inst)
	})
	return nil
}
