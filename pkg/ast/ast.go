// Package ast defines the closed variant of executable AST nodes the
// work-queue VM consumes (spec component C3). This package only describes
// shape: it never imports pkg/value, so pkg/value can embed *Block's body
// as []ast.Node without an import cycle. Literal payloads are therefore
// stored in their raw Go form (int64, float64, string) and converted to
// value.Value by the interpreter at evaluation time, not here.
package ast

// Node is implemented by every AST node the VM can push an EvalNode work
// frame for.
type Node interface {
	node()
}

// Program is the root of a parsed unit: a flat statement sequence,
// evaluated left to right with each statement's result discarded except
// the last (spec §4.4 "Discard").
type Program struct {
	Statements []Node
}

func (*Program) node() {}

// LiteralKind tags which field of Literal is populated.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitSymbol
)

// Literal is a compile-time constant: integer, float, string, or symbol.
// `nil`/`true`/`false`/`self`/`super` are PseudoVar, not Literal, because
// they resolve relative to VM state (receiver) rather than being inert
// constants.
type Literal struct {
	Kind LiteralKind
	Int  int64
	Flt  float64
	Str  string
}

func (*Literal) node() {}

// PseudoVarKind enumerates the reserved identifiers spec §4.3 lists under
// PseudoVar.
type PseudoVarKind int

const (
	PVSelf PseudoVarKind = iota
	PVSuper
	PVNil
	PVTrue
	PVFalse
)

// PseudoVar is a reference to one of the five reserved pseudo-variables.
type PseudoVar struct {
	Kind PseudoVarKind
}

func (*PseudoVar) node() {}

// Ident is a reference to a local, parameter, captured variable, or
// global by name.
type Ident struct {
	Name string
}

func (*Ident) node() {}

// Assign binds the result of Expr to Name in the nearest enclosing scope
// that defines it, per spec §4.4's assignment resolution rule.
type Assign struct {
	Name string
	Expr Node
}

func (*Assign) node() {}

// Message is an ordinary message send. Receiver is nil for an implicit
// self ("foo" inside a method body, with no explicit receiver).
type Message struct {
	Receiver Node
	Selector string
	Args     []Node
}

func (*Message) node() {}

// CascadeMessage is one message in a Cascade after the first.
type CascadeMessage struct {
	Selector string
	Args     []Node
}

// Cascade evaluates Receiver once and sends First, then each of Rest in
// turn to the same receiver, discarding all but the last result.
type Cascade struct {
	Receiver Node
	First    CascadeMessage
	Rest     []CascadeMessage
}

func (*Cascade) node() {}

// SuperSend dispatches starting from the defining class's parent chain
// (Qualifier == "") or from a specifically named parent
// (Qualifier == "<ClassName>"), per spec §4.6.
type SuperSend struct {
	Selector  string
	Args      []Node
	Qualifier string
}

func (*SuperSend) node() {}

// Return is `^expr`; Expr is nil only for a bare `^` (implicitly
// returning self), which the parser normalizes to PseudoVar{PVSelf} so
// this is never nil in practice, but the field stays nilable to match
// spec §4.3's "Return(expr?)".
type Return struct {
	Expr Node
}

func (*Return) node() {}

// BlockNode is a block literal's AST shape: the runtime closure
// (value.Block) is created fresh each time this node is evaluated, per
// spec §4.4 "Block literal: clone the AST-level block, attach a freshly
// allocated capturedEnv".
type BlockNode struct {
	Parameters  []string
	Temporaries []string
	Body        []Node
}

func (*BlockNode) node() {}

// ArrayNode is an array literal or constructor: `#(1 2 3)`.
type ArrayNode struct {
	Elements []Node
}

func (*ArrayNode) node() {}

// TableEntry is one key/value pair of a TableNode literal.
type TableEntry struct {
	Key   Node
	Value Node
}

// TableNode is a table literal.
type TableNode struct {
	Entries []TableEntry
}

func (*TableNode) node() {}

// SlotAccess is a precomputed O(1) instance-variable reference: read when
// IsAssignment is false, write ValueExpr into the slot when true. The
// parser never emits this node; pkg/class builds it for the
// auto-generated accessors (spec §4.2 "Automatic accessors"). A
// bare-identifier slot reference in a method body is resolved at run
// time instead.
type SlotAccess struct {
	SlotName     string
	SlotIndex    int
	IsAssignment bool
	ValueExpr    Node
}

func (*SlotAccess) node() {}

// PrimitiveNode directs dispatch straight to a native routine identified
// by Selector, evaluating Fallback only if no native implementation is
// registered for it.
type PrimitiveNode struct {
	Selector string
	Fallback []Node
}

func (*PrimitiveNode) node() {}
