package interp

import (
	"github.com/kristofer/smog/pkg/class"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
)

// installClassSidePrimitives wires spec §4.2's class-construction
// operations (derive, derive:, new, selector:put:, classSelector:put:,
// addParent:) onto Object's class-method table, so every class in the
// system inherits them through the ordinary AllClassMethods merge
// (sendMessage's KindClass branch looks a selector up on
// receiver.Class.AllClassMethods, which Rebuild folds down from Parents
// the same way it folds AllMethods).
func installClassSidePrimitives(k *KernelClasses) {
	classMethod := func(sel string, fn value.NativeSimple) {
		class.InstallNativeClassMethod(k.Object, sel, fn)
	}

	classMethod("derive", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		return deriveClass(receiver, nil)
	})
	classMethod("derive:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		names, err := symbolArray(args[0], "derive:")
		if err != nil {
			return value.Value{}, err
		}
		return deriveClass(receiver, names)
	})
	classMethod("new", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		c, ok := receiver.AsClass()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindDispatch, "new sent to a non-Class receiver")
		}
		return value.InstanceValue(class.New(c)), nil
	})
	classMethod("selector:put:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		return installMethodPrimitive(receiver, args, false)
	})
	classMethod("classSelector:put:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		return installMethodPrimitive(receiver, args, true)
	})
	classMethod("addParent:", func(receiver value.Value, args []value.Value) (value.Value, error) {
		c, ok := receiver.AsClass()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindDispatch, "addParent: sent to a non-Class receiver")
		}
		parent, ok := args[0].AsClass()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindValue, "addParent: requires a Class argument")
		}
		if err := class.AddParent(c, parent); err != nil {
			return value.Value{}, err
		}
		return receiver, nil
	})
	classMethod("name", func(receiver value.Value, _ []value.Value) (value.Value, error) {
		c, ok := receiver.AsClass()
		if !ok {
			return value.Value{}, vmerrors.New(vmerrors.KindDispatch, "name sent to a non-Class receiver")
		}
		return value.String(c.Name), nil
	})
}

func deriveClass(receiver value.Value, slotNames []string) (value.Value, error) {
	parent, ok := receiver.AsClass()
	if !ok {
		return value.Value{}, vmerrors.New(vmerrors.KindDispatch, "derive sent to a non-Class receiver")
	}
	// Name is left blank: spec §6 "classes register themselves upon
	// construction" describes the kernel bootstrap, not user-level derive,
	// which has no name argument at all (see the concrete scenarios in
	// spec §8) — doAssign backfills Name the first time the class is
	// bound to a global, so printString/error text still reads sensibly.
	c, err := class.Derive(parent, "", slotNames)
	if err != nil {
		return value.Value{}, err
	}
	return value.ClassValue(c), nil
}

func symbolArray(v value.Value, selector string) ([]string, error) {
	arr, ok := v.AsArray()
	if !ok {
		return nil, vmerrors.New(vmerrors.KindValue, "%s requires an Array of Symbols", selector)
	}
	names := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		s, ok := e.AsString()
		if !ok {
			return nil, vmerrors.New(vmerrors.KindValue, "%s requires an Array of Symbols", selector)
		}
		names[i] = s
	}
	return names, nil
}

func installMethodPrimitive(receiver value.Value, args []value.Value, classSide bool) (value.Value, error) {
	c, ok := receiver.AsClass()
	if !ok {
		return value.Value{}, vmerrors.New(vmerrors.KindDispatch, "selector:put: sent to a non-Class receiver")
	}
	selector, ok := args[0].AsString()
	if !ok {
		return value.Value{}, vmerrors.New(vmerrors.KindValue, "selector:put: requires a Symbol selector")
	}
	body, ok := args[1].AsBlock()
	if !ok {
		return value.Value{}, vmerrors.New(vmerrors.KindValue, "selector:put: requires a Block body")
	}
	var err error
	if classSide {
		err = class.InstallClassMethod(c, selector, body)
	} else {
		err = class.InstallMethod(c, selector, body)
	}
	if err != nil {
		return value.Value{}, err
	}
	return receiver, nil
}
