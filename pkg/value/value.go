// Package value implements the tagged value union (spec component C1) and
// the shared data shapes that the class model (C2), closures (C5), and the
// work-queue VM (C4) all point into: Class, Instance, Block, MutableCell
// and Activation live here rather than in their owning components so that
// a Value can hold a *Class or *Instance without an import cycle. The
// *operations* on those shapes (table rebuild, dispatch, capture) live in
// pkg/class and pkg/interp; this package only owns the data and the value
// conversions the specification calls "unwrap rules".
package value

import (
	"fmt"
)

// Kind is the tag of the Value union, per spec §3 "Value (tagged union)".
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSymbol
	KindArray
	KindTable
	KindBlock
	KindClass
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindSymbol:
		return "Symbol"
	case KindArray:
		return "Array"
	case KindTable:
		return "Table"
	case KindBlock:
		return "Block"
	case KindClass:
		return "Class"
	case KindInstance:
		return "Instance"
	default:
		return "Unknown"
	}
}

// Value is the tagged union every AST node evaluates to and every slot,
// local, and eval-stack entry stores. Only the field matching Kind is
// meaningful; the zero Value is Nil.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string // String and Symbol payload
	Arr   *Array
	Tbl   *Table
	Block *Block
	Class *Class
	Inst  *Instance
}

// Array is the heap payload of an Array value. Identity matters: two
// Values sharing an *Array alias the same elements.
type Array struct {
	Elements []Value
}

// Table is an insertion-ordered associative payload. Keys are Values
// compared structurally (via StructuralEqual); identity of the *Table matters the
// same way Array's does.
type Table struct {
	keys   []Value
	values []Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Get returns the value for key and whether it was present.
func (t *Table) Get(key Value) (Value, bool) {
	for i, k := range t.keys {
		if StructuralEqual(k, key) {
			return t.values[i], true
		}
	}
	return Nil(), false
}

// Set inserts or overwrites key's value, preserving first-insertion order.
func (t *Table) Set(key, val Value) {
	for i, k := range t.keys {
		if StructuralEqual(k, key) {
			t.values[i] = val
			return
		}
	}
	t.keys = append(t.keys, key)
	t.values = append(t.values, val)
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.keys) }

// Each calls fn for every entry in insertion order.
func (t *Table) Each(fn func(key, val Value)) {
	for i, k := range t.keys {
		fn(k, t.values[i])
	}
}

// --- Constructors -----------------------------------------------------

func Nil() Value                 { return Value{Kind: KindNil} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value          { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value      { return Value{Kind: KindFloat, Float: f} }
func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func Symbol(s string) Value      { return Value{Kind: KindSymbol, Str: s} }
func ArrayOf(elems []Value) Value { return Value{Kind: KindArray, Arr: &Array{Elements: elems}} }
func TableOf(t *Table) Value     { return Value{Kind: KindTable, Tbl: t} }
func BlockValue(b *Block) Value  { return Value{Kind: KindBlock, Block: b} }
func ClassValue(c *Class) Value  { return Value{Kind: KindClass, Class: c} }
func InstanceValue(i *Instance) Value { return Value{Kind: KindInstance, Inst: i} }

// IsNil reports whether v is the Nil singleton.
func (v Value) IsNil() bool { return v.Kind == KindNil }

// Truthy implements the boolean coercion `ifTrue:`/`whileTrue:` and friends
// rely on: only the Bool kind participates, anything else is a dispatch
// error the caller must raise (a non-Boolean receiver of `ifTrue:` is not
// silently falsy, it is a `dispatch` error in this VM, mirroring spec's
// "Boolean variant is distinct from Int").
func (v Value) Truthy() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

// --- Unwrap helpers -----------------------------------------------------

func (v Value) AsInt() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}

func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.Float, true
	case KindInt:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

func (v Value) AsString() (string, bool) {
	if v.Kind != KindString && v.Kind != KindSymbol {
		return "", false
	}
	return v.Str, true
}

func (v Value) AsBlock() (*Block, bool) {
	if v.Kind != KindBlock {
		return nil, false
	}
	return v.Block, true
}

func (v Value) AsClass() (*Class, bool) {
	if v.Kind != KindClass {
		return nil, false
	}
	return v.Class, true
}

func (v Value) AsInstance() (*Instance, bool) {
	if v.Kind != KindInstance {
		return nil, false
	}
	return v.Inst, true
}

func (v Value) AsArray() (*Array, bool) {
	if v.Kind != KindArray {
		return nil, false
	}
	return v.Arr, true
}

func (v Value) AsTable() (*Table, bool) {
	if v.Kind != KindTable {
		return nil, false
	}
	return v.Tbl, true
}

// ToString renders the default (non-dispatched) printed representation of
// v. It never calls into user code: a class that overrides `printString`
// is handled by the interpreter's native dispatch, which falls back to
// ToString only when no override exists.
func (v Value) ToString() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindString:
		return v.Str
	case KindSymbol:
		return "#" + v.Str
	case KindArray:
		s := "("
		for i, e := range v.Arr.Elements {
			if i > 0 {
				s += " "
			}
			s += e.ToString()
		}
		return s + ")"
	case KindTable:
		s := "Table("
		first := true
		v.Tbl.Each(func(k, val Value) {
			if !first {
				s += " "
			}
			first = false
			s += k.ToString() + "->" + val.ToString()
		})
		return s + ")"
	case KindBlock:
		return "a BlockClosure"
	case KindClass:
		return v.Class.Name
	case KindInstance:
		name := "Object"
		if v.Inst.Class != nil {
			name = v.Inst.Class.Name
		}
		return "a " + name
	default:
		return "?"
	}
}
