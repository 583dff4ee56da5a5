package scheduler

import (
	"github.com/kristofer/smog/pkg/interp"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
)

// installProcessClasses wires the Process instance protocol (`state`,
// `pid`, `name`, `suspend`, `resume`, `terminate`) and the Processor/
// Scheduler singleton objects from spec §4.7/§6's process control API:
// `Processor fork:`, `Processor yield`, `Scheduler step`.
func installProcessClasses(k *KernelClasses, s *Scheduler) {
	nativeInstanceMethod(k.Process, "pid", func(_ value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.Int(processOf(receiver).PID), nil
	})
	nativeInstanceMethod(k.Process, "name", func(_ value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.String(processOf(receiver).Name), nil
	})
	nativeInstanceMethod(k.Process, "state", func(_ value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.String(string(processOf(receiver).State)), nil
	})
	nativeInstanceMethod(k.Process, "suspend", func(_ value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		p := processOf(receiver)
		p.sched.Suspend(p)
		return receiver, nil
	})
	nativeInstanceMethod(k.Process, "resume", func(_ value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		p := processOf(receiver)
		p.sched.Resume(p)
		return receiver, nil
	})
	nativeInstanceMethod(k.Process, "terminate", func(_ value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		p := processOf(receiver)
		p.sched.Terminate(p)
		return receiver, nil
	})

	nativeInstanceMethod(k.ProcessorScheduler, "fork:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		blk, ok := args[0].AsBlock()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "fork: requires a Block argument")
		}
		sched := receiver.Inst.Native.(*Scheduler)
		p := sched.Fork(blk, "", 0)
		return wrapProcess(k, p), nil
	})
	// yield is an ordinary native method: it flips ShouldYield as a side
	// effect and returns immediately. The VM's own Run loop (checked
	// between every frame) does the actual suspending, not this method.
	nativeInstanceMethod(k.ProcessorScheduler, "yield", func(caller value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		vm := caller.(*interp.Interpreter)
		vm.ShouldYield = true
		return receiver, nil
	})
	nativeInstanceMethod(k.ProcessorScheduler, "step", func(_ value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		sched := receiver.Inst.Native.(*Scheduler)
		if _, err := sched.Step(); err != nil {
			return value.Value{}, err
		}
		return receiver, nil
	})
}

func processOf(receiver value.Value) *Process {
	return receiver.Inst.Native.(*Process)
}

// wrapProcess allocates the Process Instance returned to interpreted
// code for a forked process, so `p state`/`p pid`/`p terminate` resolve
// through the ordinary instance-method path above.
func wrapProcess(k *KernelClasses, p *Process) value.Value {
	inst := value.NewInstance(k.Process)
	inst.Native = p
	return value.InstanceValue(inst)
}
