// Package interp implements the bytecode-free, work-queue VM (spec
// component C4): an iterative driver loop over a closed frame variant,
// with no host recursion for ordinary message sends, block invocation, or
// non-local return. Closures (C5) and method dispatch (C6) are
// implemented on top of the same frame set in capture.go and send.go.
package interp

import (
	"github.com/kristofer/smog/pkg/ast"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
	"github.com/sirupsen/logrus"
)

// escapingReturn is the sentinel CallBlock and the native-dispatch path in
// send.go use to unwind a Go call stack that a non-local return has
// already jumped past, without treating it as a VM-fatal error. See the
// doc comment on CallBlock (capture.go) for the full reasoning.
type escapingReturn struct{}

func (*escapingReturn) Error() string { return "non-local return unwound past a native frame" }

var errEscaping = &escapingReturn{}

func isEscaping(err error) bool {
	_, ok := err.(*escapingReturn)
	return ok
}

// Status is the outcome of a single Run call.
type Status int

const (
	StatusCompleted Status = iota
	StatusYielded
	StatusError
)

// Interpreter is the per-process VM state from spec §4.4: one work queue,
// one eval stack, one activation stack. Globals are shared across every
// process in a scheduler (spec §5); nothing else is.
type Interpreter struct {
	Globals *Globals

	WorkQueue       []frame
	EvalStack       []value.Value
	ActivationStack []*value.Activation

	CurrentActivation *value.Activation

	// ShouldYield is set by the `Processor yield` primitive (spec §5), by
	// a blocking sync primitive in pkg/scheduler, and by sendMessage when
	// YieldEverySend is on. It is observed between frames, never
	// mid-frame: a process only ever suspends at a frame boundary.
	ShouldYield bool

	// YieldEverySend is cmd/smog's --yield-every-send debug flag
	// (SPEC_FULL.md §2.3): when set, every message send also requests a
	// yield, so a scheduler trace shows round-robin interleaving at
	// maximum granularity instead of only at explicit yield points.
	// Off by default; never set by ordinary library use of this package.
	YieldEverySend bool

	Log *logrus.Entry

	// Owner is an opaque handle pkg/scheduler stashes its own *Process
	// pointer into after constructing this Interpreter, so a native
	// method (which only ever receives a value.NativeCaller) can recover
	// "which process am I running as" without pkg/interp importing
	// pkg/scheduler. Nil for an Interpreter built directly with New rather
	// than by pkg/scheduler.
	Owner interface{}
}

// New creates an interpreter sharing globals g, ready to drive a Program.
func New(g *Globals, log *logrus.Entry) *Interpreter {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Interpreter{Globals: g, Log: log}
}

func (vm *Interpreter) push(f frame)              { vm.WorkQueue = append(vm.WorkQueue, f) }
func (vm *Interpreter) pushEval(v value.Value)     { vm.EvalStack = append(vm.EvalStack, v) }

// PushEval is the exported counterpart of pushEval, for use by a
// blocking primitive registered through RegisterControlPrimitive (spec
// §4.8's Monitor/Semaphore/SharedQueue, implemented in pkg/scheduler):
// such a primitive pushes its own result directly rather than returning
// one, the same way every controlPrimitives handler in control.go does.
func (vm *Interpreter) PushEval(v value.Value) { vm.pushEval(v) }

// NativeFrame is a closure-as-frame: pkg/scheduler uses PushRetry to
// suspend a blocking primitive mid-send and resume exactly where it left
// off once the process is woken (spec §4.8 "the program counter is
// rewound one step so the statement re-executes") without pkg/interp
// needing to know anything about Monitor/Semaphore/SharedQueue.
type NativeFrame func(vm *Interpreter) error

type nativeFrame struct{ fn NativeFrame }

func (nativeFrame) frame() {}

// PushRetry schedules fn to run as an ordinary work frame the next time
// this process's Run loop is driven (normally after a scheduler wake).
func (vm *Interpreter) PushRetry(fn NativeFrame) { vm.push(nativeFrame{fn: fn}) }

func (vm *Interpreter) popFrame() frame {
	n := len(vm.WorkQueue) - 1
	f := vm.WorkQueue[n]
	vm.WorkQueue = vm.WorkQueue[:n]
	return f
}

func (vm *Interpreter) popEval() (value.Value, error) {
	if len(vm.EvalStack) == 0 {
		return value.Nil(), vmerrors.New(vmerrors.KindInternal, "eval stack underflow")
	}
	n := len(vm.EvalStack) - 1
	v := vm.EvalStack[n]
	vm.EvalStack = vm.EvalStack[:n]
	return v, nil
}

// popEvalN pops n values and returns them in original (left-to-right)
// order.
func (vm *Interpreter) popEvalN(n int) ([]value.Value, error) {
	if len(vm.EvalStack) < n {
		return nil, vmerrors.New(vmerrors.KindInternal, "eval stack underflow popping %d values", n)
	}
	at := len(vm.EvalStack) - n
	out := append([]value.Value(nil), vm.EvalStack[at:]...)
	vm.EvalStack = vm.EvalStack[:at]
	return out, nil
}

// scheduleBody pushes a statement sequence so that, popped one at a time,
// statements execute left to right with discardFrame dropping every
// result but the last (spec §4.4 "Discard"). The caller must already have
// pushed whatever frame should run after the whole body completes (e.g. a
// popActivationFrame) *before* calling scheduleBody.
func (vm *Interpreter) scheduleBody(body []ast.Node) {
	if len(body) == 0 {
		vm.pushEval(value.Nil())
		return
	}
	for i := len(body) - 1; i >= 0; i-- {
		if i < len(body)-1 {
			vm.push(discardFrame{})
		}
		vm.push(evalNodeFrame{node: body[i]})
	}
}

// EvalProgram runs a top-level Program to completion (used by pkg/ingest's
// evalStatements/doit, and by the REPL). There is no enclosing method, so
// the synthetic top activation has nil CurrentMethod/DefiningClass and
// self is Nil.
func (vm *Interpreter) EvalProgram(prog *ast.Program) (value.Value, error) {
	return vm.evalProgramWithTemps(prog, nil)
}

// EvalProgramWithTemps is EvalProgram, additionally pre-declaring each name
// in temps as a top-activation local bound to Nil before the body runs.
// pkg/ingest uses this for spec §6's optional script outer-block wrapping:
// `[ |a b| ... ]` as an entire script's source declares a/b as script-level
// temporaries rather than statements in their own right, and a `^` inside
// such a script is an ordinary top-level return (CurrentMethod == nil is
// already the non-local-return target spec §4.5 resolves to), not a block
// non-local return escaping anywhere further.
func (vm *Interpreter) EvalProgramWithTemps(prog *ast.Program, temps []string) (value.Value, error) {
	return vm.evalProgramWithTemps(prog, temps)
}

func (vm *Interpreter) evalProgramWithTemps(prog *ast.Program, temps []string) (value.Value, error) {
	top := value.NewActivation(value.Nil(), nil, nil, vm.CurrentActivation)
	top.EvalBase = len(vm.EvalStack)
	for _, name := range temps {
		top.Locals[name] = value.Nil()
	}
	vm.ActivationStack = append(vm.ActivationStack, top)
	vm.CurrentActivation = top
	vm.push(popActivationFrame{act: top})
	vm.scheduleBody(prog.Statements)

	status, err := vm.Run()
	if status == StatusYielded {
		// A top-level program that yields has nowhere to resume from
		// outside a scheduler; callers driving a bare Interpreter
		// (evalStatements/doit) never install yield points, so this
		// indicates a programming error rather than user input.
		return value.Nil(), vmerrors.New(vmerrors.KindScheduler, "yielded outside a scheduled process")
	}
	if err != nil {
		return value.Nil(), err
	}
	if len(vm.EvalStack) == 0 {
		return value.Nil(), nil
	}
	return vm.popEval()
}

// StartBlock pushes block as a process's initial unit of work (spec
// §4.7 fork: "push the block as its initial work, as an ApplyBlock with
// zero args"). The caller (pkg/scheduler) then drives completion with
// Run, stepwise, rather than draining synchronously the way CallBlock
// does, so the scheduler can interleave other processes between steps.
func (vm *Interpreter) StartBlock(block *value.Block) {
	vm.push(applyBlockFrame{block: block, argc: 0})
}

// Run drains the work queue until it is empty (StatusCompleted), a yield
// point is reached (StatusYielded), or a frame reports an error
// (StatusError). It is re-entrant: calling Run again after a yield
// resumes exactly where the queue left off.
func (vm *Interpreter) Run() (Status, error) {
	for {
		if len(vm.WorkQueue) == 0 {
			return StatusCompleted, nil
		}
		if vm.ShouldYield {
			vm.ShouldYield = false
			return StatusYielded, nil
		}
		if err := vm.step(); err != nil {
			if isEscaping(err) {
				// The unwind already completed inside this step; there is
				// nothing left to propagate, just keep driving the queue.
				continue
			}
			return StatusError, err
		}
	}
}

// step processes exactly one work frame.
func (vm *Interpreter) step() error {
	f := vm.popFrame()
	switch fr := f.(type) {
	case evalNodeFrame:
		return vm.evalNode(fr.node)
	case assignFrame:
		return vm.doAssign(fr.name)
	case afterReceiverFrame:
		return vm.afterReceiver(fr.send)
	case afterArgFrame:
		return vm.afterArg(fr.send, fr.idx)
	case sendMessageFrame:
		return vm.sendMessage(fr.send)
	case applyBlockFrame:
		return vm.applyBlock(fr.block, fr.argc)
	case popActivationFrame:
		return vm.popActivationStep(fr.act)
	case returnValueFrame:
		return vm.doReturn(fr.fromActivation)
	case buildArrayFrame:
		return vm.buildArray(fr.n)
	case buildTableFrame:
		return vm.buildTable(fr.n)
	case cascadeFrame:
		return vm.stepCascade(fr)
	case slotAssignFrame:
		return vm.doSlotAssign(fr.index)
	case whileCondFrame:
		return vm.stepWhileCond(fr)
	case whileNextFrame:
		return vm.stepWhileNext(fr)
	case timesFrame:
		return vm.stepTimes(fr)
	case toDoFrame:
		return vm.stepToDo(fr)
	case discardFrame:
		_, err := vm.popEval()
		return err
	case nativeFrame:
		return fr.fn(vm)
	default:
		return vmerrors.New(vmerrors.KindInternal, "unknown work frame %T", f)
	}
}

func (vm *Interpreter) evalNode(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Literal:
		return vm.evalLiteral(n)
	case *ast.PseudoVar:
		return vm.evalPseudoVar(n)
	case *ast.Ident:
		return vm.evalIdent(n)
	case *ast.Assign:
		vm.push(assignFrame{name: n.Name})
		vm.push(evalNodeFrame{node: n.Expr})
		return nil
	case *ast.Message:
		recvNode := n.Receiver
		if recvNode == nil {
			recvNode = &ast.PseudoVar{Kind: ast.PVSelf}
		}
		vm.push(afterReceiverFrame{send: &pendingSend{selector: n.Selector, args: n.Args}})
		vm.push(evalNodeFrame{node: recvNode})
		return nil
	case *ast.SuperSend:
		send := &pendingSend{selector: n.Selector, args: n.Args, isSuper: true, qualifier: n.Qualifier}
		// super's receiver is always self; push it directly rather than
		// scheduling an EvalNode for a PseudoVar.
		vm.pushEval(vm.selfValue())
		vm.push(afterReceiverFrame{send: send})
		return nil
	case *ast.Cascade:
		vm.push(cascadeFrame{messages: append([]ast.CascadeMessage{n.First}, n.Rest...), idx: -1})
		vm.push(evalNodeFrame{node: n.Receiver})
		return nil
	case *ast.Return:
		expr := n.Expr
		if expr == nil {
			expr = &ast.PseudoVar{Kind: ast.PVSelf}
		}
		vm.push(returnValueFrame{fromActivation: vm.CurrentActivation})
		vm.push(evalNodeFrame{node: expr})
		return nil
	case *ast.BlockNode:
		return vm.evalBlockLiteral(n)
	case *ast.ArrayNode:
		vm.push(buildArrayFrame{n: len(n.Elements)})
		for i := len(n.Elements) - 1; i >= 0; i-- {
			vm.push(evalNodeFrame{node: n.Elements[i]})
		}
		return nil
	case *ast.TableNode:
		vm.push(buildTableFrame{n: len(n.Entries)})
		for i := len(n.Entries) - 1; i >= 0; i-- {
			vm.push(evalNodeFrame{node: n.Entries[i].Value})
			vm.push(evalNodeFrame{node: n.Entries[i].Key})
		}
		return nil
	case *ast.SlotAccess:
		return vm.evalSlotAccess(n)
	case *ast.PrimitiveNode:
		return vm.evalPrimitiveNode(n)
	default:
		return vmerrors.New(vmerrors.KindInternal, "unknown AST node %T", node)
	}
}

func (vm *Interpreter) evalLiteral(lit *ast.Literal) error {
	switch lit.Kind {
	case ast.LitInt:
		vm.pushEval(value.Int(lit.Int))
	case ast.LitFloat:
		vm.pushEval(value.Float(lit.Flt))
	case ast.LitString:
		vm.pushEval(value.String(lit.Str))
	case ast.LitSymbol:
		vm.pushEval(value.Symbol(lit.Str))
	default:
		return vmerrors.New(vmerrors.KindInternal, "unknown literal kind %d", lit.Kind)
	}
	return nil
}

func (vm *Interpreter) selfValue() value.Value {
	if vm.CurrentActivation == nil {
		return value.Nil()
	}
	return vm.CurrentActivation.Receiver
}

func (vm *Interpreter) evalPseudoVar(pv *ast.PseudoVar) error {
	switch pv.Kind {
	case ast.PVSelf, ast.PVSuper:
		vm.pushEval(vm.selfValue())
	case ast.PVNil:
		vm.pushEval(value.Nil())
	case ast.PVTrue:
		vm.pushEval(value.Bool(true))
	case ast.PVFalse:
		vm.pushEval(value.Bool(false))
	default:
		return vmerrors.New(vmerrors.KindInternal, "unknown pseudo-variable kind %d", pv.Kind)
	}
	return nil
}

func (vm *Interpreter) evalIdent(id *ast.Ident) error {
	act := vm.CurrentActivation
	if act != nil {
		// A name boxed into a MutableCell (spec §4.5: some nested block
		// captured it) is read through the cell, not the activation's own
		// Locals copy, so a write made by that block between captures is
		// visible here too (spec §3's "assignment through one is visible
		// to the other").
		if cell, ok := act.CellBindings[id.Name]; ok {
			vm.pushEval(cell.Value)
			return nil
		}
		if v, ok := act.Locals[id.Name]; ok {
			vm.pushEval(v)
			return nil
		}
	}
	// A bare identifier that names an instance variable of the current
	// method's receiver resolves directly to that slot (spec §8 scenario
	// 2: `x := x + dx` inside `Point >> moveBy:and:`), independent of
	// whether `derive:` also generated an accessor message of the same
	// name.
	if inst, ok := vm.selfValue().AsInstance(); ok {
		if idx := inst.Class.SlotIndex(id.Name); idx >= 0 {
			vm.pushEval(inst.Slots[idx])
			return nil
		}
	}
	if v, ok := vm.Globals.Get(id.Name); ok {
		vm.pushEval(v)
		return nil
	}
	return vmerrors.New(vmerrors.KindDispatch, "undeclared variable %q", id.Name)
}

func (vm *Interpreter) doAssign(name string) error {
	v, err := vm.popEval()
	if err != nil {
		return err
	}
	act := vm.CurrentActivation
	if act != nil {
		// Write through the cell first (see evalIdent), keeping Locals in
		// sync so writeBackCells' unwind-time copy stays a no-op rather
		// than a second, conflicting source of truth.
		if cell, ok := act.CellBindings[name]; ok {
			cell.Value = v
			act.Locals[name] = v
			vm.pushEval(v)
			return nil
		}
		if _, ok := act.Locals[name]; ok {
			act.Locals[name] = v
			vm.pushEval(v)
			return nil
		}
	}
	if inst, ok := vm.selfValue().AsInstance(); ok {
		if idx := inst.Class.SlotIndex(name); idx >= 0 {
			inst.Slots[idx] = v
			vm.pushEval(v)
			return nil
		}
	}
	// A freshly derived class is anonymous until it is first bound to a
	// global (spec §8 scenario 2/6 never name derive's result directly);
	// backfill Name here so printString/error text and logging read
	// sensibly without requiring derive to take a name argument.
	if v.Kind == value.KindClass && v.Class.Name == "" {
		v.Class.Name = name
	}
	vm.Globals.Set(name, v)
	vm.pushEval(v)
	return nil
}

func (vm *Interpreter) evalSlotAccess(n *ast.SlotAccess) error {
	if n.IsAssignment {
		vm.push(slotAssignFrame{index: n.SlotIndex})
		vm.push(evalNodeFrame{node: n.ValueExpr})
		return nil
	}
	inst, ok := vm.selfValue().AsInstance()
	if !ok {
		return vmerrors.New(vmerrors.KindDispatch, "slot access %q on a non-Instance receiver", n.SlotName)
	}
	if n.SlotIndex < 0 || n.SlotIndex >= len(inst.Slots) {
		return vmerrors.New(vmerrors.KindInternal, "slot index %d out of range for %q", n.SlotIndex, n.SlotName)
	}
	vm.pushEval(inst.Slots[n.SlotIndex])
	return nil
}

type slotAssignFrame struct{ index int }

func (slotAssignFrame) frame() {}

func (vm *Interpreter) doSlotAssign(index int) error {
	v, err := vm.popEval()
	if err != nil {
		return err
	}
	inst, ok := vm.selfValue().AsInstance()
	if !ok {
		return vmerrors.New(vmerrors.KindDispatch, "slot assignment on a non-Instance receiver")
	}
	if index < 0 || index >= len(inst.Slots) {
		return vmerrors.New(vmerrors.KindInternal, "slot index %d out of range", index)
	}
	inst.Slots[index] = v
	vm.pushEval(v)
	return nil
}

func (vm *Interpreter) buildArray(n int) error {
	elems, err := vm.popEvalN(n)
	if err != nil {
		return err
	}
	vm.pushEval(value.ArrayOf(elems))
	return nil
}

func (vm *Interpreter) buildTable(n int) error {
	pairs, err := vm.popEvalN(2 * n)
	if err != nil {
		return err
	}
	t := value.NewTable()
	for i := 0; i < n; i++ {
		t.Set(pairs[2*i], pairs[2*i+1])
	}
	vm.pushEval(value.TableOf(t))
	return nil
}

// vmPrimitives holds low-level native hooks a PrimitiveNode can name
// directly (spec §4.3's escape hatch for primitives that bypass ordinary
// dispatch entirely). None are currently wired: every primitive this
// module implements is either a class method (pkg/interp's kernel
// bootstrap) or a controlPrimitives frame handler, so evalPrimitiveNode
// always falls through to Fallback today. The parser never builds a
// PrimitiveNode, so source text does not reach this hook.
var vmPrimitives = map[string]func(vm *Interpreter) error{}

func (vm *Interpreter) evalPrimitiveNode(n *ast.PrimitiveNode) error {
	if fn, ok := vmPrimitives[n.Selector]; ok {
		return fn(vm)
	}
	vm.scheduleBody(n.Fallback)
	return nil
}

// stepCascade drives one cascade message. idx == -1 is the one-shot
// "receiver just evaluated" state: pop it off evalStack and save it in the
// frame before dispatching message 0. Every subsequent message reuses the
// saved receiver value directly rather than re-evaluating the receiver
// expression.
func (vm *Interpreter) stepCascade(fr cascadeFrame) error {
	if fr.idx == -1 {
		recv, err := vm.popEval()
		if err != nil {
			return err
		}
		fr.receiver = recv
		fr.idx = 0
	}
	msg := fr.messages[fr.idx]
	if fr.idx+1 < len(fr.messages) {
		vm.push(cascadeFrame{receiver: fr.receiver, messages: fr.messages, idx: fr.idx + 1})
		vm.push(discardFrame{})
	}
	vm.pushEval(fr.receiver)
	vm.push(afterReceiverFrame{send: &pendingSend{selector: msg.Selector, args: msg.Args}})
	return nil
}
