package scheduler

import (
	"github.com/kristofer/smog/pkg/interp"
	"github.com/kristofer/smog/pkg/value"
)

// monitorState is the Go-native payload a Monitor Instance's Native field
// holds: spec §4.8's reentrant mutual-exclusion region.
type monitorState struct {
	owner    *Process
	depth    int
	waitList []*Process
}

// canEverWake implements waitable for a process blocked entering a
// Monitor's critical section: true as long as the current owner (who
// will eventually release it) is itself not permanently stuck, i.e.
// always true unless the owner is also deadlocked — the scheduler's
// deadlocked() scan already only calls this when nothing is ready, so an
// owner that still exists and isn't itself terminated means this
// process's condition can still change.
func (m *monitorState) canEverWake(p *Process) bool {
	return m.owner != nil && m.owner.State != StateTerminated
}

func installMonitorClass(k *KernelClasses) {
	accepts := func(r value.Value, a []value.Value, wantArgs int) bool {
		if r.Kind != value.KindInstance || r.Inst.Class != k.Monitor || len(a) != wantArgs {
			return false
		}
		return true
	}

	interp.RegisterControlPrimitive("critical:",
		func(r value.Value, a []value.Value) bool {
			return accepts(r, a, 1) && a[0].Kind == value.KindBlock
		},
		func(vm *interp.Interpreter, r value.Value, a []value.Value) error {
			return enterCritical(vm, r.Inst, a[0].Block)
		},
	)
}

// enterCritical implements spec §4.8 Monitor.critical:. Reentrant: a
// process that already owns the monitor just runs the block and bumps
// the recursion depth rather than blocking on itself.
func enterCritical(vm *interp.Interpreter, inst *value.Instance, body *value.Block) error {
	m := inst.Native.(*monitorState)
	p := vm.Owner.(*Process)

	if m.owner != nil && m.owner != p {
		m.waitList = append(m.waitList, p)
		p.sched.block(p, m)
		vm.ShouldYield = true
		vm.PushRetry(func(vm *interp.Interpreter) error {
			return enterCritical(vm, inst, body)
		})
		return nil
	}

	m.owner = p
	m.depth++
	result, err := vm.CallBlock(body, nil)
	m.depth--
	if m.depth == 0 {
		m.owner = nil
		if len(m.waitList) > 0 {
			next := m.waitList[0]
			m.waitList = m.waitList[1:]
			p.sched.wake(next)
		}
	}
	if err != nil {
		return err
	}
	vm.PushEval(result)
	return nil
}
