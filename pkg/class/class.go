// Package class implements the operations of the class/instance model
// (spec component C2): derive, new, method installation, parent
// addition, and the eager merged-table rebuild algorithm. The data shapes
// themselves (Class, Instance, Method) live in pkg/value so that a
// value.Value can hold a *Class/*Instance without an import cycle; this
// package is the algorithm layer on top of them.
package class

import (
	"github.com/kristofer/smog/pkg/ast"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vmerrors"
)

// Derive creates a subclass of parent named name with additional
// slotNames, per spec §4.2 "derive / derive:<slotNames>". A name already
// present in parent's merged slot set is a class-construction error.
// When slotNames is non-empty this also installs the automatic unary
// getter and keyword setter spec §4.2 describes ("derive: may generate
// ... each as a direct slot-access AST node"). Method bodies can also
// read and assign a slot by bare identifier: the interpreter's
// evalIdent/doAssign fall back to a slot lookup on self's class once a
// name is not a local.
func Derive(parent *value.Class, name string, slotNames []string) (*value.Class, error) {
	c := value.NewClass(name)
	c.Parents = []*value.Class{parent}
	c.SlotNames = append([]string(nil), slotNames...)
	parent.Subclasses = append(parent.Subclasses, c)
	if err := Rebuild(c); err != nil {
		return nil, err
	}
	for _, slot := range slotNames {
		installAccessors(c, slot)
	}
	return c, nil
}

// installAccessors installs the direct-slot-access getter (`slotName`)
// and setter (`slotName:`) methods for one of c's own slots. Each body is
// a single precomputed ast.SlotAccess node (O(1), no table lookup at
// send time), matching spec §4.2's "direct slot-access AST node" rather
// than an ordinary message-dispatched implementation.
func installAccessors(c *value.Class, slotName string) {
	index := c.SlotIndex(slotName)

	getter := &value.Block{
		Body:          []ast.Node{&ast.SlotAccess{SlotName: slotName, SlotIndex: index}},
		IsMethod:      true,
		Selector:      slotName,
		DefiningClass: c,
	}
	c.Methods[slotName] = &value.Method{Selector: slotName, Body: getter, DefiningClass: c}

	setterSel := slotName + ":"
	setter := &value.Block{
		Parameters: []string{"value"},
		Body: []ast.Node{&ast.SlotAccess{
			SlotName:     slotName,
			SlotIndex:    index,
			IsAssignment: true,
			ValueExpr:    &ast.Ident{Name: "value"},
		}},
		IsMethod:      true,
		Selector:      setterSel,
		DefiningClass: c,
	}
	c.Methods[setterSel] = &value.Method{Selector: setterSel, Body: setter, DefiningClass: c}

	_ = Rebuild(c)
}

// New allocates an Instance of c with every slot Nil, per spec §4.2 "new".
func New(c *value.Class) *value.Instance {
	return value.NewInstance(c)
}

// AddParent appends parent to c.Parents, per spec §4.2 "addParent:".
// Fails on slot-name conflict, or on a selector defined by parent and
// already inherited from a different existing parent with neither
// overridden by c itself.
func AddParent(c *value.Class, parent *value.Class) error {
	c.Parents = append(c.Parents, parent)
	parent.Subclasses = append(parent.Subclasses, c)
	if err := Rebuild(c); err != nil {
		// Roll back: Rebuild failing must not leave c with a dangling
		// parent edge a later valid rebuild could get confused by.
		c.Parents = c.Parents[:len(c.Parents)-1]
		parent.Subclasses = parent.Subclasses[:len(parent.Subclasses)-1]
		return err
	}
	return nil
}

// InstallMethod installs (or overrides) an instance method, per spec
// §4.2 "selector:put:", triggering a table rebuild visible to every
// transitive subclass before the next dispatch (spec §2 eager
// invalidation, tested in spec §8 "Eager invalidation").
func InstallMethod(c *value.Class, selector string, body *value.Block) error {
	body.IsMethod = true
	body.Selector = selector
	body.DefiningClass = c
	c.Methods[selector] = &value.Method{Selector: selector, Body: body, DefiningClass: c}
	return Rebuild(c)
}

// InstallClassMethod is InstallMethod's class-side counterpart
// ("classSelector:put:").
func InstallClassMethod(c *value.Class, selector string, body *value.Block) error {
	body.IsMethod = true
	body.Selector = selector
	body.DefiningClass = c
	c.ClassMethods[selector] = &value.Method{Selector: selector, Body: body, DefiningClass: c}
	return Rebuild(c)
}

// InstallNativeMethod registers a Go-implemented instance method,
// bypassing the Block body path; used to bootstrap kernel classes.
func InstallNativeMethod(c *value.Class, selector string, fn value.NativeSimple) {
	c.Methods[selector] = &value.Method{Selector: selector, Simple: fn, DefiningClass: c}
	_ = Rebuild(c)
}

// InstallNativeMethodWithInterp is InstallNativeMethod for the
// interpreter-handle native shape.
func InstallNativeMethodWithInterp(c *value.Class, selector string, fn value.NativeWithInterp) {
	c.Methods[selector] = &value.Method{Selector: selector, WithInterp: fn, DefiningClass: c}
	_ = Rebuild(c)
}

// InstallNativeClassMethod registers a Go-implemented class method.
func InstallNativeClassMethod(c *value.Class, selector string, fn value.NativeSimple) {
	c.ClassMethods[selector] = &value.Method{Selector: selector, Simple: fn, DefiningClass: c}
	_ = Rebuild(c)
}

// Rebuild implements the eager top-down merged-table algorithm from spec
// §4.2: clear the merged caches, fold in each parent left-to-right (first
// writer wins across parents so ties are resolved by priority order),
// overlay c's own methods/slots (which always override), then recurse
// into every subclass so the invalidation reaches the whole subtree
// before the next dispatch.
func Rebuild(c *value.Class) error {
	allSlots := make([]string, 0, len(c.SlotNames))
	allMethods := make(map[string]*value.Method)
	allClassMethods := make(map[string]*value.Method)
	seen := make(map[string]bool)

	for _, parent := range c.Parents {
		for _, slot := range parent.AllSlotNames {
			if seen[slot] {
				return vmerrors.New(vmerrors.KindClassConstruction,
					"class %q: duplicate slot %q introduced by parent %q", c.Name, slot, parent.Name)
			}
			seen[slot] = true
			allSlots = append(allSlots, slot)
		}
		for sel, m := range parent.AllMethods {
			if existing, ok := allMethods[sel]; ok && existing.DefiningClass != m.DefiningClass {
				// Two unrelated parents both supply sel and neither is an
				// override of the other: a dispatch conflict unless c's
				// own Methods overlays it below.
				if _, overridden := c.Methods[sel]; !overridden {
					return vmerrors.New(vmerrors.KindClassConstruction,
						"class %q: selector %q inherited ambiguously from parents %q and %q",
						c.Name, sel, existing.DefiningClass.Name, m.DefiningClass.Name)
				}
			}
			if _, already := allMethods[sel]; !already {
				allMethods[sel] = m
			}
		}
		for sel, m := range parent.AllClassMethods {
			if _, already := allClassMethods[sel]; !already {
				allClassMethods[sel] = m
			}
		}
	}

	for _, slot := range c.SlotNames {
		if seen[slot] {
			return vmerrors.New(vmerrors.KindClassConstruction,
				"class %q: slot %q conflicts with an inherited slot", c.Name, slot)
		}
		seen[slot] = true
		allSlots = append(allSlots, slot)
	}

	for sel, m := range c.Methods {
		allMethods[sel] = m
	}
	for sel, m := range c.ClassMethods {
		allClassMethods[sel] = m
	}

	c.AllSlotNames = allSlots
	c.AllMethods = allMethods
	c.AllClassMethods = allClassMethods

	for _, sub := range c.Subclasses {
		if err := Rebuild(sub); err != nil {
			return err
		}
	}
	return nil
}
