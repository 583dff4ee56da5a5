package interp

import (
	"github.com/kristofer/smog/pkg/ast"
	"github.com/kristofer/smog/pkg/value"
)

// frame is the closed work-frame variant from spec §4.4. The driver loop
// pops one frame per step and switches on its concrete type; frames never
// call each other directly, they only push more frames onto the shared
// work queue, which is how the VM stays iterative.
type frame interface {
	frame()
}

// evalNodeFrame evaluates an AST node, pushing its result onto evalStack.
type evalNodeFrame struct {
	node ast.Node
}

func (evalNodeFrame) frame() {}

// assignFrame pops a value and binds it to name, then pushes it back (an
// assignment is itself an expression).
type assignFrame struct {
	name string
}

func (assignFrame) frame() {}

// pendingSend carries the selector/argument list shared by
// afterReceiverFrame, afterArgFrame and sendMessageFrame while a message
// send's receiver and arguments are evaluated one at a time.
type pendingSend struct {
	selector  string
	args      []ast.Node
	isSuper   bool
	qualifier string
}

// afterReceiverFrame fires once the receiver is on top of evalStack;
// schedules the first argument, or the send itself if there are none.
type afterReceiverFrame struct {
	send *pendingSend
}

func (afterReceiverFrame) frame() {}

// afterArgFrame fires once argument idx is on top of evalStack; schedules
// the next argument, or the send once all arguments are evaluated.
type afterArgFrame struct {
	send *pendingSend
	idx  int
}

func (afterArgFrame) frame() {}

// sendMessageFrame pops argc arguments and a receiver and dispatches. For
// a super send the receiver on the stack is the current activation's
// self, which evalNode pushed in place of a receiver expression.
type sendMessageFrame struct {
	send *pendingSend
}

func (sendMessageFrame) frame() {}

// applyBlockFrame invokes a block with argc values already on evalStack.
type applyBlockFrame struct {
	block *value.Block
	argc  int
}

func (applyBlockFrame) frame() {}

// popActivationFrame unwinds one activation and restores VM state, per
// spec §4.4. act is always a real activation, including the top-level one
// evalProgramWithTemps creates for evalStatements/doit.
type popActivationFrame struct {
	act *value.Activation
}

func (popActivationFrame) frame() {}

// returnValueFrame honors `^expr`: fromActivation is the activation whose
// lexical scope the `^` appeared in, captured at schedule time since
// vm.CurrentActivation is restored to it by the time this frame runs.
type returnValueFrame struct {
	fromActivation *value.Activation
}

func (returnValueFrame) frame() {}

// buildArrayFrame assembles an Array from n values on evalStack.
type buildArrayFrame struct {
	n int
}

func (buildArrayFrame) frame() {}

// buildTableFrame assembles a Table from n key/value pairs (2n values) on
// evalStack.
type buildTableFrame struct {
	n int
}

func (buildTableFrame) frame() {}

// cascadeFrame drives the remaining messages of a cascade once the
// receiver has been evaluated once and saved.
type cascadeFrame struct {
	receiver value.Value
	messages []ast.CascadeMessage
	idx      int
}

func (cascadeFrame) frame() {}

// discardFrame drops the top of evalStack: the statement separator.
type discardFrame struct{}

func (discardFrame) frame() {}
