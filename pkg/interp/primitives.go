package interp

import (
	"github.com/kristofer/smog/pkg/class"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
)

func native(c *value.Class, selector string, fn value.NativeSimple) {
	class.InstallNativeMethod(c, selector, fn)
}

func nativeInterp(c *value.Class, selector string, fn value.NativeWithInterp) {
	class.InstallNativeMethodWithInterp(c, selector, fn)
}

// installObjectPrimitives implements the reflective/identity primitives
// every object answers, regardless of kind (spec §3/§6).
func installObjectPrimitives(k *KernelClasses) {
	printString := func(caller value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.String(receiver.ToString()), nil
	}
	nativeInterp(k.Object, "printString", printString)

	native(k.Object, "displayNl", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		println(receiver.ToString())
		return receiver, nil
	})
	native(k.Object, "isNil", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(receiver.IsNil()), nil
	})
	native(k.Object, "notNil", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(!receiver.IsNil()), nil
	})
	native(k.Object, "==", func(receiver value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(value.IdentityEqual(receiver, args[0])), nil
	})
	native(k.Object, "~~", func(receiver value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(!value.IdentityEqual(receiver, args[0])), nil
	})
	native(k.Object, "=", func(receiver value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(value.StructuralEqual(receiver, args[0])), nil
	})
	native(k.Object, "~=", func(receiver value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(!value.StructuralEqual(receiver, args[0])), nil
	})
	nativeInterp(k.Object, "class", func(caller value.NativeCaller, receiver value.Value, _ []value.Value) (value.Value, error) {
		vm := caller.(*Interpreter)
		return value.ClassValue(vm.Globals.ClassOf(receiver)), nil
	})
	nativeInterp(k.Object, "isKindOf:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		vm := caller.(*Interpreter)
		target, ok := args[0].AsClass()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "isKindOf: requires a Class argument")
		}
		return value.Bool(vm.Globals.ClassOf(receiver).InheritsFrom(target)), nil
	})
	nativeInterp(k.Object, "respondsTo:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		vm := caller.(*Interpreter)
		sel, ok := args[0].AsString()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "respondsTo: requires a Symbol argument")
		}
		_, found := vm.Globals.ClassOf(receiver).AllMethods[sel]
		return value.Bool(found), nil
	})

	k.UndefinedObject.Methods["printString"] = &value.Method{Selector: "printString", DefiningClass: k.UndefinedObject,
		Simple: func(value.Value, []value.Value) (value.Value, error) { return value.String("nil"), nil }}
	_ = class.Rebuild(k.UndefinedObject)
}

func installNumberPrimitives(k *KernelClasses) {
	binop := func(c *value.Class, sel string, fn func(a, b value.Value) (value.Value, error)) {
		native(c, sel, func(receiver value.Value, args []value.Value) (value.Value, error) {
			return fn(receiver, args[0])
		})
	}
	for _, c := range []*value.Class{k.Integer, k.Float} {
		binop(c, "+", value.Add)
		binop(c, "-", value.Sub)
		binop(c, "*", value.Mul)
		binop(c, "/", value.Div)
		binop(c, "<", func(a, b value.Value) (value.Value, error) {
			r, err := value.Compare(a, b)
			return value.Bool(r < 0), err
		})
		binop(c, ">", func(a, b value.Value) (value.Value, error) {
			r, err := value.Compare(a, b)
			return value.Bool(r > 0), err
		})
		binop(c, "<=", func(a, b value.Value) (value.Value, error) {
			r, err := value.Compare(a, b)
			return value.Bool(r <= 0), err
		})
		binop(c, ">=", func(a, b value.Value) (value.Value, error) {
			r, err := value.Compare(a, b)
			return value.Bool(r >= 0), err
		})
		binop(c, "=", func(a, b value.Value) (value.Value, error) {
			return value.Bool(value.StructuralEqual(a, b)), nil
		})
		native(c, "printString", func(receiver value.Value, _ []value.Value) (value.Value, error) {
			return value.String(receiver.ToString()), nil
		})
		native(c, "negated", func(receiver value.Value, _ []value.Value) (value.Value, error) {
			return value.Sub(value.Int(0), receiver)
		})
	}
	binop(k.Integer, "//", value.FloorDiv)
	// spec §8 scenario 3 writes modulo as the single-character selector
	// `\`, not classic Smalltalk's two-character `\\`.
	binop(k.Integer, "\\", value.Mod)
	native(k.Integer, "even", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		i, _ := receiver.AsInt()
		return value.Bool(i%2 == 0), nil
	})
	native(k.Integer, "odd", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		i, _ := receiver.AsInt()
		return value.Bool(i%2 != 0), nil
	})
	native(k.Integer, "asFloat", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		f, _ := receiver.AsFloat()
		return value.Float(f), nil
	})
	native(k.Float, "asInteger", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.Int(int64(receiver.Float)), nil
	})
}

func installStringPrimitives(k *KernelClasses) {
	native(k.String, ",", func(receiver value.Value, args []value.Value) (value.Value, error) {
		s, _ := receiver.AsString()
		o, ok := args[0].AsString()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "',' requires a String/Symbol argument")
		}
		return value.String(s + o), nil
	})
	native(k.String, "size", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		s, _ := receiver.AsString()
		return value.Int(int64(len(s))), nil
	})
	native(k.String, "at:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		s, _ := receiver.AsString()
		i, ok := args[0].AsInt()
		if !ok || i < 1 || int(i) > len(s) {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "String index %v out of range", args[0])
		}
		return value.String(string(s[i-1])), nil
	})
	native(k.String, "printString", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		s, _ := receiver.AsString()
		return value.String("'" + s + "'"), nil
	})
	native(k.String, "asSymbol", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		s, _ := receiver.AsString()
		return value.Symbol(s), nil
	})
	native(k.Symbol, "asString", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		s, _ := receiver.AsString()
		return value.String(s), nil
	})
}

func installCollectionPrimitives(k *KernelClasses) {
	native(k.Array, "size", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		return value.Int(int64(len(a.Elements))), nil
	})
	native(k.Array, "isEmpty", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		return value.Bool(len(a.Elements) == 0), nil
	})
	native(k.Array, "at:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		i, ok := args[0].AsInt()
		if !ok || i < 1 || int(i) > len(a.Elements) {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "Array index %v out of range", args[0])
		}
		return a.Elements[i-1], nil
	})
	native(k.Array, "at:put:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		i, ok := args[0].AsInt()
		if !ok || i < 1 || int(i) > len(a.Elements) {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "Array index %v out of range", args[0])
		}
		a.Elements[i-1] = args[1]
		return args[1], nil
	})
	native(k.Array, "includes:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		for _, e := range a.Elements {
			if value.StructuralEqual(e, args[0]) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})

	nativeInterp(k.Array, "do:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		blk, ok := args[0].AsBlock()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "do: requires a Block argument")
		}
		for _, e := range a.Elements {
			if _, err := caller.CallBlock(blk, []value.Value{e}); err != nil {
				return value.Value{}, err
			}
		}
		return receiver, nil
	})
	nativeInterp(k.Array, "collect:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		blk, ok := args[0].AsBlock()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "collect: requires a Block argument")
		}
		out := make([]value.Value, len(a.Elements))
		for i, e := range a.Elements {
			r, err := caller.CallBlock(blk, []value.Value{e})
			if err != nil {
				return value.Value{}, err
			}
			out[i] = r
		}
		return value.ArrayOf(out), nil
	})
	nativeInterp(k.Array, "select:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		blk, ok := args[0].AsBlock()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "select: requires a Block argument")
		}
		var out []value.Value
		for _, e := range a.Elements {
			r, err := caller.CallBlock(blk, []value.Value{e})
			if err != nil {
				return value.Value{}, err
			}
			keep, isBool := r.Truthy()
			if isBool && keep {
				out = append(out, e)
			}
		}
		return value.ArrayOf(out), nil
	})
	nativeInterp(k.Array, "inject:into:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		a, _ := receiver.AsArray()
		acc := args[0]
		blk, ok := args[1].AsBlock()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "inject:into: requires a Block argument")
		}
		for _, e := range a.Elements {
			r, err := caller.CallBlock(blk, []value.Value{acc, e})
			if err != nil {
				return value.Value{}, err
			}
			acc = r
		}
		return acc, nil
	})

	native(k.Table, "size", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		t, _ := receiver.AsTable()
		return value.Int(int64(t.Len())), nil
	})
	native(k.Table, "at:put:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		t, _ := receiver.AsTable()
		t.Set(args[0], args[1])
		return args[1], nil
	})
	native(k.Table, "at:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		t, _ := receiver.AsTable()
		v, ok := t.Get(args[0])
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "Table key %v not found", args[0])
		}
		return v, nil
	})
	native(k.Table, "includesKey:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		t, _ := receiver.AsTable()
		_, ok := t.Get(args[0])
		return value.Bool(ok), nil
	})
	nativeInterp(k.Table, "keysAndValuesDo:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		t, _ := receiver.AsTable()
		blk, ok := args[0].AsBlock()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "keysAndValuesDo: requires a Block argument")
		}
		var callErr error
		t.Each(func(key, val value.Value) {
			if callErr != nil {
				return
			}
			_, callErr = caller.CallBlock(blk, []value.Value{key, val})
		})
		if callErr != nil {
			return value.Value{}, callErr
		}
		return receiver, nil
	})
}

// exceptionState is the Go-native payload behind an Exception instance;
// spec §7's `message`/`stackTrace` selectors read straight from it.
type exceptionState struct {
	message    string
	stackTrace string
}

// newExceptionValue builds the exception object on:do:'s handler receives
// (spec §7 "binds an exception object (with message, stackTrace)"),
// pulling the structured fields off a *vmerrors.VMError when available
// and falling back to the bare error text otherwise.
func newExceptionValue(k *KernelClasses, err error) value.Value {
	msg := err.Error()
	trace := ""
	if ve, ok := err.(*vmerrors.VMError); ok {
		msg = ve.Message
		trace = ve.TraceString()
	}
	inst := value.NewInstance(k.Exception)
	inst.Native = &exceptionState{message: msg, stackTrace: trace}
	return value.InstanceValue(inst)
}

// installExceptionPrimitives wires spec §7's exception object protocol.
func installExceptionPrimitives(k *KernelClasses) {
	native(k.Exception, "message", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.String(receiver.Inst.Native.(*exceptionState).message), nil
	})
	native(k.Exception, "stackTrace", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.String(receiver.Inst.Native.(*exceptionState).stackTrace), nil
	})
}

func installBlockPrimitives(k *KernelClasses) {
	native(k.BlockClosure, "numArgs", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		return value.Int(int64(len(receiver.Block.Parameters))), nil
	})

	// on:do: is a pragmatic exception mechanism (spec leaves full exception
	// class hierarchy out of scope): `[protected] on: ExcClass do: [:e | ...]`
	// sends the keyword message with args[0] = ExcClass, args[1] = handler
	// — run the protected block; if it fails with an ordinary VMError (not
	// an escaping non-local return), invoke the handler with an exception
	// object exposing `message`/`stackTrace` (spec §7), never resuming.
	nativeInterp(k.BlockClosure, "on:do:", func(caller value.NativeCaller, receiver value.Value, args []value.Value) (value.Value, error) {
		handler, ok := args[1].AsBlock()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "on:do: requires a Block handler")
		}
		result, err := caller.CallBlock(receiver.Block, nil)
		if err == nil {
			return result, nil
		}
		if _, escaping := err.(*escapingReturn); escaping {
			return value.Value{}, err
		}
		return caller.CallBlock(handler, []value.Value{newExceptionValue(k, err)})
	})
}
