package interp

import "github.com/kristofer/smog/pkg/value"

// Globals holds the process-wide variable bindings and the kernel class
// registry shared by every process a scheduler runs. A plain map is safe
// here without a mutex: the cooperative scheduler (spec §5) only ever runs
// one process's Run loop at a time, so there is never a concurrent writer.
type Globals struct {
	vars   map[string]value.Value
	Kernel *KernelClasses
}

// NewGlobals creates an empty global environment and bootstraps the
// kernel class hierarchy into it.
func NewGlobals() *Globals {
	g := &Globals{vars: make(map[string]value.Value)}
	g.Kernel = bootstrapKernel(g)
	return g
}

func (g *Globals) Get(name string) (value.Value, bool) {
	v, ok := g.vars[name]
	return v, ok
}

func (g *Globals) Set(name string, v value.Value) {
	g.vars[name] = v
}

// ClassOf returns the most specific built-in class describing v's kind
// (spec's simplification, recorded in DESIGN.md: primitive kinds dispatch
// against one shared kernel class per Kind rather than each Value
// instance owning its own *Class; only KindInstance values, allocated
// through `derive`/`new`, carry a genuine per-instance class pointer).
func (g *Globals) ClassOf(v value.Value) *value.Class {
	switch v.Kind {
	case value.KindNil:
		return g.Kernel.UndefinedObject
	case value.KindBool:
		if v.Bool {
			return g.Kernel.True
		}
		return g.Kernel.False
	case value.KindInt:
		return g.Kernel.Integer
	case value.KindFloat:
		return g.Kernel.Float
	case value.KindString:
		return g.Kernel.String
	case value.KindSymbol:
		return g.Kernel.Symbol
	case value.KindArray:
		return g.Kernel.Array
	case value.KindTable:
		return g.Kernel.Table
	case value.KindBlock:
		return g.Kernel.BlockClosure
	case value.KindClass:
		return g.Kernel.Class
	case value.KindInstance:
		return v.Inst.Class
	default:
		return g.Kernel.Object
	}
}
