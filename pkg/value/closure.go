package value

import "github.com/kristofer/smog/pkg/ast"

// MutableCell is a boxed value shared by reference. Two blocks that
// captured the same variable hold the same *MutableCell, so an
// assignment through one is visible through the other (spec §3
// "Identity matters").
type MutableCell struct {
	Value Value
}

// Block is the first-class closure from spec §3.4: parameters,
// temporaries, an AST body, a captured environment of shared cells, and a
// home activation that anchors non-local return.
type Block struct {
	Parameters  []string
	Temporaries []string
	Body        []ast.Node

	CapturedEnv map[string]*MutableCell

	// HomeActivation is the activation current when this block literal was
	// evaluated. It is a borrowed reference per spec §9: valid only while
	// the activation is still on some process's activation stack. Return
	// handling must check Activation.Alive before dereferencing it.
	HomeActivation *Activation

	IsMethod      bool
	Selector      string
	DefiningClass *Class
}

// Activation is one in-flight method or block invocation: spec §3's
// "linked spaghetti stack independent of any host call stack".
type Activation struct {
	Receiver      Value
	CurrentMethod *Block
	DefiningClass *Class

	Locals map[string]Value

	// CellBindings records, for locals sourced from a captured cell, the
	// cell to write the surviving value back into on unwind (spec §4.5
	// step 3: "on activation unwind, write surviving locals back through
	// the cells").
	CellBindings map[string]*MutableCell

	Sender *Activation

	HasReturned bool
	ReturnValue Value

	Selector string

	// EvalBase is the depth of the interpreter's eval stack at the moment
	// this activation was pushed. Unwinding (normal pop or a non-local
	// return passing through) truncates back to EvalBase before leaving
	// its result, so a partially evaluated expression abandoned mid-unwind
	// never leaks a stray value onto the enclosing activation's stack.
	EvalBase int

	// alive is true while this activation is on its process's activation
	// stack. Checked before honoring a non-local return through a block
	// whose HomeActivation may have already been popped (the
	// return-to-dead-activation error kind).
	alive bool
}

// NewActivation creates an activation, marking it live.
func NewActivation(receiver Value, method *Block, definingClass *Class, sender *Activation) *Activation {
	return &Activation{
		Receiver:      receiver,
		CurrentMethod: method,
		DefiningClass: definingClass,
		Locals:        make(map[string]Value),
		CellBindings:  make(map[string]*MutableCell),
		Sender:        sender,
		alive:         true,
	}
}

// Alive reports whether a is still reachable on some process's activation
// stack (has not been popped).
func (a *Activation) Alive() bool { return a != nil && a.alive }

// MarkDead pops a logically: a non-local return aimed at it afterwards is
// a return-to-dead-activation error, unless a is a top-level activation,
// which the interpreter's doReturn replaces with the live top-level one.
func (a *Activation) MarkDead() { a.alive = false }
