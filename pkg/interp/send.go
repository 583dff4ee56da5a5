package interp

import (
	"github.com/kristofer/smog/pkg/ast"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
)

// afterReceiver schedules evaluation of the first argument, or the send
// itself if the message is unary/has no arguments.
func (vm *Interpreter) afterReceiver(send *pendingSend) error {
	if len(send.args) == 0 {
		vm.push(sendMessageFrame{send: send})
		return nil
	}
	vm.push(afterArgFrame{send: send, idx: 0})
	vm.push(evalNodeFrame{node: send.args[0]})
	return nil
}

// afterArg schedules the next argument, or the send once idx was the last
// one.
func (vm *Interpreter) afterArg(send *pendingSend, idx int) error {
	if idx+1 < len(send.args) {
		vm.push(afterArgFrame{send: send, idx: idx + 1})
		vm.push(evalNodeFrame{node: send.args[idx+1]})
		return nil
	}
	vm.push(sendMessageFrame{send: send})
	return nil
}

// sendMessage implements spec §4.6: resolve the method (ordinary receiver
// class lookup, or the defining-class parent chain for a super send),
// fall back to doesNotUnderstand: if nothing is found, and either invoke
// an interpreted method (pushing a fresh activation) or call straight
// into a native one.
func (vm *Interpreter) sendMessage(send *pendingSend) error {
	if vm.YieldEverySend {
		// cmd/smog's --yield-every-send debug flag (SPEC_FULL.md §2.3):
		// observed at the next frame boundary, same as a user yield.
		vm.ShouldYield = true
	}
	args, err := vm.popEvalN(len(send.args))
	if err != nil {
		return err
	}
	receiver, err := vm.popEval()
	if err != nil {
		return err
	}

	if control, ok := controlPrimitives[send.selector]; ok && control.accepts(receiver, args) {
		return control.handle(vm, receiver, args)
	}

	var method *value.Method
	var startClass *value.Class
	if send.isSuper {
		definingClass := vm.CurrentActivation.DefiningClass
		if definingClass == nil {
			return vmerrors.New(vmerrors.KindDispatch, "super send %q outside any method", send.selector)
		}
		method, startClass = resolveSuper(definingClass, send.qualifier, send.selector)
		if method == nil && send.qualifier != "" {
			return vmerrors.New(vmerrors.KindDispatch,
				"class %q: no parent named %q for qualified super send %q",
				definingClass.Name, send.qualifier, send.selector)
		}
	} else if receiver.Kind == value.KindClass {
		// Spec §4.2: derive/new/selector:put:/addParent: (and any
		// user-defined classSelector:put: method) are invoked as
		// class-side methods on the receiving class itself, looked up in
		// its own merged AllClassMethods rather than through ClassOf.
		startClass = receiver.Class
		method = startClass.AllClassMethods[send.selector]
	} else {
		startClass = vm.Globals.ClassOf(receiver)
		method = startClass.AllMethods[send.selector]
	}

	if method == nil {
		return vm.sendDoesNotUnderstand(receiver, send.selector, args, startClass)
	}

	return vm.dispatch(method, receiver, args)
}

// resolveSuper finds the method and the class level a super send should
// start searching from, per spec §4.6: unqualified super walks
// definingClass's own Parents in order; a qualified super
// ("<ClassName> super foo") starts at the named direct parent.
func resolveSuper(definingClass *value.Class, qualifier, selector string) (*value.Method, *value.Class) {
	if qualifier != "" {
		for _, p := range definingClass.Parents {
			if p.Name == qualifier {
				return p.AllMethods[selector], p
			}
		}
		return nil, nil
	}
	for _, p := range definingClass.Parents {
		if m, ok := p.AllMethods[selector]; ok {
			return m, p
		}
	}
	return nil, nil
}

// sendDoesNotUnderstand implements the DNU fallback chain (spec §4.6): if
// the receiver's class (or the super-resolved class) has no
// doesNotUnderstand: method either, failure to dispatch is a fatal
// `dispatch` error rather than a silently swallowed nil.
func (vm *Interpreter) sendDoesNotUnderstand(receiver value.Value, selector string, args []value.Value, startClass *value.Class) error {
	class := startClass
	if class == nil {
		class = vm.Globals.ClassOf(receiver)
	}
	dnu, ok := class.AllMethods["doesNotUnderstand:"]
	if !ok {
		return vmerrors.New(vmerrors.KindDispatch,
			"%s does not understand %q", receiver.ToString(), selector)
	}
	message := value.ArrayOf([]value.Value{value.Symbol(selector), value.ArrayOf(args)})
	return vm.dispatch(dnu, receiver, []value.Value{message})
}

// dispatch invokes method, whichever shape it has.
func (vm *Interpreter) dispatch(method *value.Method, receiver value.Value, args []value.Value) error {
	if method.Simple != nil {
		result, err := method.Simple(receiver, args)
		if err != nil {
			return err
		}
		vm.pushEval(result)
		return nil
	}
	if method.WithInterp != nil {
		result, err := method.WithInterp(vm, receiver, args)
		if err != nil {
			return err
		}
		vm.pushEval(result)
		return nil
	}
	return vm.invokeMethod(method, receiver, args)
}

// invokeMethod pushes a fresh activation for an interpreted method body,
// per spec §4.6: the receiver is the actual message receiver (unlike a
// plain block value send, where self is inherited from the home
// activation).
func (vm *Interpreter) invokeMethod(method *value.Method, receiver value.Value, args []value.Value) error {
	body := method.Body
	if len(args) != len(body.Parameters) {
		return vmerrors.New(vmerrors.KindDispatch,
			"%q expects %d argument(s), got %d", method.Selector, len(body.Parameters), len(args))
	}
	act := value.NewActivation(receiver, body, method.DefiningClass, vm.CurrentActivation)
	act.Selector = method.Selector
	act.EvalBase = len(vm.EvalStack)
	for name, cell := range body.CapturedEnv {
		act.Locals[name] = cell.Value
		act.CellBindings[name] = cell
	}
	for i, p := range body.Parameters {
		act.Locals[p] = args[i]
	}
	for _, t := range body.Temporaries {
		act.Locals[t] = value.Nil()
	}

	vm.ActivationStack = append(vm.ActivationStack, act)
	vm.CurrentActivation = act

	vm.push(popActivationFrame{act: act})
	vm.scheduleBody(body.Body)
	return nil
}

// Send is the public entry point native code and the kernel bootstrap use
// to perform an ordinary dispatch without going through the AST (e.g. a
// collection primitive sending `<` to compare two elements it was handed
// as plain Values). It re-enters the VM the same bounded way CallBlock
// does: the arguments are already Values, so this skips straight past the
// AfterReceiver/AfterArg evaluation machinery to sendMessageFrame.
func (vm *Interpreter) Send(receiver value.Value, selector string, args []value.Value) (value.Value, error) {
	markerLen := len(vm.WorkQueue)
	vm.pushEval(receiver)
	for _, a := range args {
		vm.pushEval(a)
	}
	send := &pendingSend{selector: selector, args: make([]ast.Node, len(args))}
	vm.push(sendMessageFrame{send: send})

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
