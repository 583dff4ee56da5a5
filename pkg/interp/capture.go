package interp

import (
	"github.com/kristofer/smog/pkg/ast"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
)

// evalBlockLiteral implements spec §4.5 step 1-2: clone the AST-level
// block and attach a freshly allocated capturedEnv mapping every free
// variable the block body references to a shared *MutableCell, boxing
// plain activation locals into cells on first capture and reusing an
// existing cell (identity preserved) on subsequent captures of the same
// name.
func (vm *Interpreter) evalBlockLiteral(n *ast.BlockNode) error {
	act := vm.CurrentActivation
	captured := make(map[string]*value.MutableCell)

	bound := map[string]bool{}
	for _, p := range n.Parameters {
		bound[p] = true
	}
	for _, t := range n.Temporaries {
		bound[t] = true
	}
	free := map[string]bool{}
	collectFree(n.Body, bound, free)

	for name := range free {
		cell := vm.cellFor(act, name)
		if cell != nil {
			captured[name] = cell
		}
		// Names resolving to neither a local nor a cell are globals:
		// left out of capturedEnv, resolved through Globals at use time.
	}

	block := &value.Block{
		Parameters:     append([]string(nil), n.Parameters...),
		Temporaries:    append([]string(nil), n.Temporaries...),
		Body:           n.Body,
		CapturedEnv:    captured,
		HomeActivation: act,
	}
	vm.pushEval(value.BlockValue(block))
	return nil
}

// cellFor resolves name to a *MutableCell visible from act, boxing a plain
// local on first capture (spec §4.5 "on first capture, box the local into
// a MutableCell"). Returns nil if name is not bound in act at all (a
// global).
func (vm *Interpreter) cellFor(act *value.Activation, name string) *value.MutableCell {
	if act == nil {
		return nil
	}
	if cell, ok := act.CellBindings[name]; ok {
		return cell
	}
	if v, ok := act.Locals[name]; ok {
		cell := &value.MutableCell{Value: v}
		act.CellBindings[name] = cell
		return cell
	}
	return nil
}

// collectFree walks body (and any nested block literals within it)
// recording every Ident/Assign name not shadowed by a binding introduced
// between the reference and the enclosing block, per standard lexical
// free-variable scoping.
func collectFree(body []ast.Node, bound map[string]bool, free map[string]bool) {
	for _, stmt := range body {
		collectFreeNode(stmt, bound, free)
	}
}

func collectFreeNode(n ast.Node, bound map[string]bool, free map[string]bool) {
	switch node := n.(type) {
	case *ast.Ident:
		if !bound[node.Name] {
			free[node.Name] = true
		}
	case *ast.Assign:
		if !bound[node.Name] {
			free[node.Name] = true
		}
		collectFreeNode(node.Expr, bound, free)
	case *ast.Message:
		if node.Receiver != nil {
			collectFreeNode(node.Receiver, bound, free)
		}
		for _, a := range node.Args {
			collectFreeNode(a, bound, free)
		}
	case *ast.SuperSend:
		for _, a := range node.Args {
			collectFreeNode(a, bound, free)
		}
	case *ast.Cascade:
		collectFreeNode(node.Receiver, bound, free)
		for _, a := range node.First.Args {
			collectFreeNode(a, bound, free)
		}
		for _, m := range node.Rest {
			for _, a := range m.Args {
				collectFreeNode(a, bound, free)
			}
		}
	case *ast.Return:
		if node.Expr != nil {
			collectFreeNode(node.Expr, bound, free)
		}
	case *ast.BlockNode:
		inner := make(map[string]bool, len(bound)+len(node.Parameters)+len(node.Temporaries))
		for k := range bound {
			inner[k] = true
		}
		for _, p := range node.Parameters {
			inner[p] = true
		}
		for _, t := range node.Temporaries {
			inner[t] = true
		}
		collectFree(node.Body, inner, free)
	case *ast.ArrayNode:
		for _, e := range node.Elements {
			collectFreeNode(e, bound, free)
		}
	case *ast.TableNode:
		for _, e := range node.Entries {
			collectFreeNode(e.Key, bound, free)
			collectFreeNode(e.Value, bound, free)
		}
	case *ast.SlotAccess:
		if node.IsAssignment && node.ValueExpr != nil {
			collectFreeNode(node.ValueExpr, bound, free)
		}
	case *ast.PrimitiveNode:
		collectFree(node.Fallback, bound, free)
	}
}

// applyBlock implements spec §4.5 steps 3-5: bind argc arguments to
// Parameters, copy captured cells' current values into a fresh
// activation's locals (recording CellBindings so identity survives
// further nested capture and so unwind writes back), then schedule the
// body as a Discard-separated statement sequence.
func (vm *Interpreter) applyBlock(block *value.Block, argc int) error {
	if argc != len(block.Parameters) {
		return vmerrors.New(vmerrors.KindDispatch,
			"block expects %d argument(s), got %d", len(block.Parameters), argc)
	}
	args, err := vm.popEvalN(argc)
	if err != nil {
		return err
	}

	receiver := value.Nil()
	if block.HomeActivation != nil {
		receiver = block.HomeActivation.Receiver
	}
	act := value.NewActivation(receiver, block, block.DefiningClass, vm.CurrentActivation)
	act.EvalBase = len(vm.EvalStack)

	for name, cell := range block.CapturedEnv {
		act.Locals[name] = cell.Value
		act.CellBindings[name] = cell
	}
	for i, p := range block.Parameters {
		act.Locals[p] = args[i]
	}
	for _, t := range block.Temporaries {
		if _, already := act.Locals[t]; !already {
			act.Locals[t] = value.Nil()
		}
	}

	vm.ActivationStack = append(vm.ActivationStack, act)
	vm.CurrentActivation = act

	vm.push(popActivationFrame{act: act})
	vm.scheduleBody(block.Body)
	return nil
}

// CallBlock implements value.NativeCaller: the bounded re-entry helper a
// native method uses to invoke a Block (spec §4.4). It pushes applyBlock
// onto the SAME work queue the rest of the VM uses (there is no separate
// sub-queue) and drains frames until the queue returns to the depth it
// had before this call.
//
// If a non-local return fires while the block runs and its target lies
// outside this call's own pushed frames (spec §4.5's "home activation,"
// resolved by resolveHomeMethodActivation, is an enclosing method further
// out than the block itself), the unwind already completes fully inside
// the single step() call that processes the `^`; CallBlock just notices
// its own marker length was undercut and reports errEscaping so its own
// Go-level caller (e.g. the `do:` primitive) stops iterating and
// propagates the signal outward rather than treating it as a normal
// result or a fatal error.
func (vm *Interpreter) CallBlock(block *value.Block, args []value.Value) (value.Value, error) {
	markerLen := len(vm.WorkQueue)
	for _, a := range args {
		vm.pushEval(a)
	}
	vm.push(applyBlockFrame{block: block, argc: len(args)})

	for len(vm.WorkQueue) > markerLen {
		if err := vm.step(); err != nil {
			return value.Nil(), err
		}
	}
	if len(vm.WorkQueue) < markerLen {
		return value.Nil(), errEscaping
	}
	return vm.popEval()
}

// resolveHomeMethodActivation climbs from a block's activation chain to
// the nearest enclosing activation whose CurrentMethod is a genuine
// method (IsMethod), or the top-level script activation
// (CurrentMethod == nil), per spec §4.5's non-local return target rule.
func resolveHomeMethodActivation(from *value.Activation) *value.Activation {
	act := from
	for act != nil && act.CurrentMethod != nil && !act.CurrentMethod.IsMethod {
		act = act.CurrentMethod.HomeActivation
	}
	return act
}

// doReturn resolves `^`'s target activation and unwinds to it.
func (vm *Interpreter) doReturn(fromActivation *value.Activation) error {
	v, err := vm.popEval()
	if err != nil {
		return err
	}
	target := resolveHomeMethodActivation(fromActivation)
	if target != nil && !target.Alive() && target.CurrentMethod == nil {
		// Flat script source runs each statement under its own top-level
		// activation, so a block created by an earlier statement has a
		// finished one as its home; its `^` returns from the top-level
		// activation that is running now.
		for i := len(vm.ActivationStack) - 1; i >= 0; i-- {
			if a := vm.ActivationStack[i]; a.CurrentMethod == nil && a.Alive() {
				target = a
				break
			}
		}
	}
	if target == nil || !target.Alive() {
		return vmerrors.New(vmerrors.KindReturnToDeadActivation,
			"non-local return to an activation that has already finished")
	}
	// Even a same-activation `^` must discard any remaining
	// statement/discard frames still queued for this activation (e.g.
	// `^5. 6 printNl` must never evaluate the second statement), so this
	// always goes through the same unwind as a non-local return.
	found := vm.unwindReturn(target, v)
	if !found {
		return vmerrors.New(vmerrors.KindReturnToDeadActivation,
			"non-local return target not found on the work queue")
	}
	return nil
}

// unwindReturn discards work frames (marking any activation they pop as
// dead) until target's own popActivationFrame is processed, at which
// point val is left on evalStack as target's result and execution resumes
// normally from there. This is the single mechanism behind both a direct
// non-local return (still inside the same CallBlock/Run loop that is
// driving the frames) and one that escapes a native re-entry boundary
// (spec §9's discussion of unwinding through native frames): both cases
// are just "keep discarding frames until the target's PopActivation".
func (vm *Interpreter) unwindReturn(target *value.Activation, val value.Value) bool {
	for len(vm.WorkQueue) > 0 {
		f := vm.popFrame()
		pa, ok := f.(popActivationFrame)
		if !ok {
			continue
		}
		act := pa.act
		if len(vm.ActivationStack) > 0 {
			vm.ActivationStack = vm.ActivationStack[:len(vm.ActivationStack)-1]
		}
		vm.writeBackCells(act)
		act.MarkDead()
		if len(vm.ActivationStack) > 0 {
			vm.CurrentActivation = vm.ActivationStack[len(vm.ActivationStack)-1]
		} else {
			vm.CurrentActivation = nil
		}
		// Drop anything this activation (or a frame it abandoned
		// mid-evaluation) left on evalStack: neither an ordinary
		// intermediate activation nor the target should leave stray values
		// for the enclosing activation to trip over.
		if act.EvalBase <= len(vm.EvalStack) {
			vm.EvalStack = vm.EvalStack[:act.EvalBase]
		}
		if act == target {
			vm.pushEval(val)
			return true
		}
	}
	return false
}

// popActivationStep is the normal (non-unwind) path: a method or block
// body ran to completion and fell through to its own popActivationFrame.
func (vm *Interpreter) popActivationStep(act *value.Activation) error {
	if len(vm.ActivationStack) == 0 || vm.ActivationStack[len(vm.ActivationStack)-1] != act {
		return vmerrors.New(vmerrors.KindInternal, "activation stack out of sync on pop")
	}
	vm.ActivationStack = vm.ActivationStack[:len(vm.ActivationStack)-1]
	vm.writeBackCells(act)
	act.MarkDead()
	if len(vm.ActivationStack) > 0 {
		vm.CurrentActivation = vm.ActivationStack[len(vm.ActivationStack)-1]
	} else {
		vm.CurrentActivation = nil
	}
	result, err := vm.popEval()
	if err != nil {
		return err
	}
	if act.EvalBase <= len(vm.EvalStack) {
		vm.EvalStack = vm.EvalStack[:act.EvalBase]
	}
	vm.pushEval(result)
	return nil
}

// writeBackCells implements spec §4.5 step 3's unwind half: any local
// sourced from a captured cell gets its surviving value written back
// through the cell so sibling closures over the same variable observe it.
func (vm *Interpreter) writeBackCells(act *value.Activation) {
	for name, cell := range act.CellBindings {
		if v, ok := act.Locals[name]; ok {
			cell.Value = v
		}
	}
}
