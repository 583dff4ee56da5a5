package scheduler

import (
	"github.com/kristofer/smog/pkg/class"
	"github.com/kristofer/smog/pkg/interp"
	"github.com/kristofer/smog/pkg/value"
)

// KernelClasses is the scheduler's own class registry, built on top of
// pkg/interp's Globals. kept separate from interp.KernelClasses so
// pkg/interp never needs to know these types exist.
type KernelClasses struct {
	Monitor            *value.Class
	Semaphore           *value.Class
	SharedQueue         *value.Class
	Process             *value.Class
	ProcessorScheduler *value.Class
}

func nativeInstanceMethod(c *value.Class, selector string, fn value.NativeWithInterp) {
	class.InstallNativeMethodWithInterp(c, selector, fn)
}

// nativeNewOverride installs a class-side `new` on c that allocates the
// ordinary Instance (same as Object's generic `new`) and additionally
// populates its Native field with make(), so every native instance
// method installed above finds the Go-level state it expects already in
// place.
func nativeNewOverride(c *value.Class, makeNative func() interface{}) {
	class.InstallNativeClassMethod(c, "new", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		cls, _ := receiver.AsClass()
		inst := class.New(cls)
		inst.Native = makeNative()
		return value.InstanceValue(inst), nil
	})
}

// Install registers Process/Semaphore/Monitor/SharedQueue/Processor/
// Scheduler into g, the same *interp.Globals every process's
// interp.Interpreter shares (spec §4.7/§4.8). Called once, from New,
// right after interp.NewGlobals — never imported back by pkg/interp
// itself, so the two packages stay acyclic.
func Install(g *interp.Globals, s *Scheduler) *KernelClasses {
	k := &KernelClasses{}
	object := g.Kernel.Object

	derive := func(name string) *value.Class {
		c, err := class.Derive(object, name, nil)
		if err != nil {
			panic(err) // kernel bootstrap is static and must never fail
		}
		return c
	}

	k.Monitor = derive("Monitor")
	k.Semaphore = derive("Semaphore")
	k.SharedQueue = derive("SharedQueue")
	k.Process = derive("Process")
	k.ProcessorScheduler = derive("ProcessorScheduler")

	nativeNewOverride(k.Monitor, func() interface{} { return &monitorState{} })
	nativeNewOverride(k.Semaphore, func() interface{} { return &semaphoreState{} })
	nativeNewOverride(k.SharedQueue, func() interface{} { return &sharedQueueState{} })

	// Semaphore new: n is the initial-count constructor spec §4.8
	// "Semaphore(n)" describes; plain `new` (installed above) starts at
	// count 0, so its first `wait` blocks until some process signals.
	class.InstallNativeClassMethod(k.Semaphore, "new:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		cls, _ := receiver.AsClass()
		n, _ := args[0].AsInt()
		inst := class.New(cls)
		inst.Native = &semaphoreState{count: n}
		return value.InstanceValue(inst), nil
	})

	installMonitorClass(k)
	installSemaphoreClass(k)
	installSharedQueueClass(k)
	installProcessClasses(k, s)

	g.Set("Monitor", value.ClassValue(k.Monitor))
	g.Set("Semaphore", value.ClassValue(k.Semaphore))
	g.Set("SharedQueue", value.ClassValue(k.SharedQueue))
	g.Set("Process", value.ClassValue(k.Process))

	processorInst := value.NewInstance(k.ProcessorScheduler)
	processorInst.Native = s
	processorValue := value.InstanceValue(processorInst)
	// Processor and Scheduler are the same underlying object bound under
	// two names (spec §4.7's Processor fork:/yield and §8 scenario 5's
	// Scheduler step both describe the one scheduler instance; see
	// DESIGN.md).
	g.Set("Processor", processorValue)
	g.Set("Scheduler", processorValue)

	return k
}
