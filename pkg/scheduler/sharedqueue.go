package scheduler

import (
	"github.com/kristofer/smog/pkg/interp"
	"github.com/kristofer/smog/pkg/value"
)

// sharedQueueState is a SharedQueue Instance's Native payload (spec
// §4.8): put: appends and wakes one get waiter if any; get returns the
// head or blocks if empty.
type sharedQueueState struct {
	items    []value.Value
	waitList []*Process
}

func (q *sharedQueueState) canEverWake(p *Process) bool { return false }

func installSharedQueueClass(k *KernelClasses) {
	isQueue := func(r value.Value, wantArgs int, a []value.Value) bool {
		return r.Kind == value.KindInstance && r.Inst.Class == k.SharedQueue && len(a) == wantArgs
	}

	nativeInstanceMethod(k.SharedQueue, "put:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		inst := receiver.Inst
		q := inst.Native.(*sharedQueueState)
		vm := caller.(*interp.Interpreter)
		p := vm.Owner.(*Process)
		q.items = append(q.items, args[0])
		if len(q.waitList) > 0 {
			next := q.waitList[0]
			q.waitList = q.waitList[1:]
			p.sched.wake(next)
		}
		return args[0], nil
	})

	interp.RegisterControlPrimitive("get",
		func(r value.Value, a []value.Value) bool { return isQueue(r, 0, a) },
		func(vm *interp.Interpreter, r value.Value, a []value.Value) error {
			return sharedQueueGet(vm, r.Inst)
		},
	)
}

func sharedQueueGet(vm *interp.Interpreter, inst *value.Instance) error {
	q := inst.Native.(*sharedQueueState)
	p := vm.Owner.(*Process)

	if len(q.items) > 0 {
		head := q.items[0]
		q.items = q.items[1:]
		vm.PushEval(head)
		return nil
	}
	q.waitList = append(q.waitList, p)
	p.sched.block(p, q)
	vm.ShouldYield = true
	vm.PushRetry(func(vm *interp.Interpreter) error {
		return sharedQueueGet(vm, inst)
	})
	return nil
}
