package interp

import (
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
)

func boolExpectedError(selector string, got value.Value) error {
	return vmerrors.New(vmerrors.KindDispatch, "%s requires a Boolean condition, got %s", selector, got.Kind)
}

// controlPrimitive is a selector implemented as a VM frame handler rather
// than a class method (spec §4.6: ifTrue:/ifFalse:/whileTrue:/whileFalse:/
// block value* "so loops can yield and unwind through non-local returns"
// — a plain native Go loop calling back into CallBlock cannot be
// interrupted by a mid-iteration yield, but a frame handler that only
// ever pushes more work onto the shared queue can, because Run checks
// ShouldYield between every single frame).
type controlPrimitive struct {
	accepts func(receiver value.Value, args []value.Value) bool
	handle  func(vm *Interpreter, receiver value.Value, args []value.Value) error
}

func isBoolBlockArgs(receiver value.Value, args []value.Value, wantArgs int) bool {
	if receiver.Kind != value.KindBool || len(args) != wantArgs {
		return false
	}
	for _, a := range args {
		if a.Kind != value.KindBlock {
			return false
		}
	}
	return true
}

func isBlockReceiver(receiver value.Value, args []value.Value, arity int) bool {
	if receiver.Kind != value.KindBlock || len(args) != arity {
		return false
	}
	return true
}

// RegisterControlPrimitive lets another package (pkg/scheduler, for
// Monitor/Semaphore/SharedQueue) add a selector that must run as a VM
// frame handler rather than an ordinary native method, the same way
// ifTrue:/whileTrue: do: the handler pushes whatever frames it needs
// (including, eventually, a PushEval of its result) and returns without
// itself producing a value, so it can suspend mid-send via PushRetry and
// resume later exactly where it left off. Checked before ordinary class
// dispatch in sendMessage, so accepts must be precise about which
// receivers/arities it claims.
func RegisterControlPrimitive(selector string, accepts func(receiver value.Value, args []value.Value) bool, handle func(vm *Interpreter, receiver value.Value, args []value.Value) error) {
	controlPrimitives[selector] = controlPrimitive{accepts: accepts, handle: handle}
}

var controlPrimitives = map[string]controlPrimitive{
	"ifTrue:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBoolBlockArgs(r, a, 1) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			if r.Bool {
				vm.push(applyBlockFrame{block: a[0].Block, argc: 0})
			} else {
				vm.pushEval(value.Nil())
			}
			return nil
		},
	},
	"ifFalse:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBoolBlockArgs(r, a, 1) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			if !r.Bool {
				vm.push(applyBlockFrame{block: a[0].Block, argc: 0})
			} else {
				vm.pushEval(value.Nil())
			}
			return nil
		},
	},
	"ifTrue:ifFalse:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBoolBlockArgs(r, a, 2) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			if r.Bool {
				vm.push(applyBlockFrame{block: a[0].Block, argc: 0})
			} else {
				vm.push(applyBlockFrame{block: a[1].Block, argc: 0})
			}
			return nil
		},
	},
	"ifFalse:ifTrue:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBoolBlockArgs(r, a, 2) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			if !r.Bool {
				vm.push(applyBlockFrame{block: a[0].Block, argc: 0})
			} else {
				vm.push(applyBlockFrame{block: a[1].Block, argc: 0})
			}
			return nil
		},
	},
	"and:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBoolBlockArgs(r, a, 1) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			if !r.Bool {
				vm.pushEval(value.Bool(false))
			} else {
				vm.push(applyBlockFrame{block: a[0].Block, argc: 0})
			}
			return nil
		},
	},
	"or:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBoolBlockArgs(r, a, 1) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			if r.Bool {
				vm.pushEval(value.Bool(true))
			} else {
				vm.push(applyBlockFrame{block: a[0].Block, argc: 0})
			}
			return nil
		},
	},
	"whileTrue:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBlockReceiver(r, a, 1) && a[0].Kind == value.KindBlock },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			vm.push(whileCondFrame{cond: r.Block, body: a[0].Block, negate: false})
			vm.push(applyBlockFrame{block: r.Block, argc: 0})
			return nil
		},
	},
	"whileFalse:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBlockReceiver(r, a, 1) && a[0].Kind == value.KindBlock },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			vm.push(whileCondFrame{cond: r.Block, body: a[0].Block, negate: true})
			vm.push(applyBlockFrame{block: r.Block, argc: 0})
			return nil
		},
	},
	"timesRepeat:": {
		accepts: func(r value.Value, a []value.Value) bool { return r.Kind == value.KindInt && len(a) == 1 && a[0].Kind == value.KindBlock },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			n, _ := r.AsInt()
			if n <= 0 {
				vm.pushEval(value.Nil())
				return nil
			}
			vm.push(timesFrame{remaining: n, body: a[0].Block})
			return nil
		},
	},
	"to:do:": {
		accepts: func(r value.Value, a []value.Value) bool {
			return r.Kind == value.KindInt && len(a) == 2 && a[0].Kind == value.KindInt && a[1].Kind == value.KindBlock
		},
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			start, _ := r.AsInt()
			limit, _ := a[0].AsInt()
			vm.push(toDoFrame{i: start, limit: limit, body: a[1].Block})
			return nil
		},
	},
	"value": {
		accepts: func(r value.Value, a []value.Value) bool { return isBlockReceiver(r, a, 0) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			vm.push(applyBlockFrame{block: r.Block, argc: 0})
			return nil
		},
	},
	"value:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBlockReceiver(r, a, 1) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			vm.pushEval(a[0])
			vm.push(applyBlockFrame{block: r.Block, argc: 1})
			return nil
		},
	},
	"value:value:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBlockReceiver(r, a, 2) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			vm.pushEval(a[0])
			vm.pushEval(a[1])
			vm.push(applyBlockFrame{block: r.Block, argc: 2})
			return nil
		},
	},
	"value:value:value:": {
		accepts: func(r value.Value, a []value.Value) bool { return isBlockReceiver(r, a, 3) },
		handle: func(vm *Interpreter, r value.Value, a []value.Value) error {
			vm.pushEval(a[0])
			vm.pushEval(a[1])
			vm.pushEval(a[2])
			vm.push(applyBlockFrame{block: r.Block, argc: 3})
			return nil
		},
	},
}

// whileCondFrame drives one whileTrue:/whileFalse: iteration: the
// condition block's result is on evalStack when this frame runs.
type whileCondFrame struct {
	cond, body *value.Block
	negate     bool
}

func (whileCondFrame) frame() {}

func (vm *Interpreter) stepWhileCond(fr whileCondFrame) error {
	cond, err := vm.popEval()
	if err != nil {
		return err
	}
	b, ok := cond.Truthy()
	if !ok {
		return boolExpectedError("whileTrue:/whileFalse:", cond)
	}
	if fr.negate {
		b = !b
	}
	if !b {
		vm.pushEval(value.Nil())
		return nil
	}
	vm.push(whileCondFrame{cond: fr.cond, body: fr.body, negate: fr.negate})
	vm.push(whileNextFrame{cond: fr.cond})
	vm.push(discardFrame{})
	vm.push(applyBlockFrame{block: fr.body, argc: 0})
	return nil
}

// whileNextFrame re-evaluates the condition block after the body runs.
type whileNextFrame struct {
	cond *value.Block
}

func (whileNextFrame) frame() {}

func (vm *Interpreter) stepWhileNext(fr whileNextFrame) error {
	vm.push(applyBlockFrame{block: fr.cond, argc: 0})
	return nil
}

// timesFrame drives one timesRepeat: iteration.
type timesFrame struct {
	remaining int64
	body      *value.Block
}

func (timesFrame) frame() {}

func (vm *Interpreter) stepTimes(fr timesFrame) error {
	if fr.remaining <= 0 {
		vm.pushEval(value.Nil())
		return nil
	}
	vm.push(timesFrame{remaining: fr.remaining - 1, body: fr.body})
	vm.push(discardFrame{})
	vm.push(applyBlockFrame{block: fr.body, argc: 0})
	return nil
}

// toDoFrame drives one to:do: iteration, passing the current index.
type toDoFrame struct {
	i, limit int64
	body     *value.Block
}

func (toDoFrame) frame() {}

func (vm *Interpreter) stepToDo(fr toDoFrame) error {
	if fr.i > fr.limit {
		vm.pushEval(value.Nil())
		return nil
	}
	vm.push(toDoFrame{i: fr.i + 1, limit: fr.limit, body: fr.body})
	vm.push(discardFrame{})
	vm.pushEval(value.Int(fr.i))
	vm.push(applyBlockFrame{block: fr.body, argc: 1})
	return nil
}
