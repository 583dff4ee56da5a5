package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scenarios_test.go exercises spec §8's "concrete end-to-end scenarios"
// against the full lexer→parser→interp pipeline through this package's
// own entry points, the way stdlib_test.go/integration_test.go exercised
// the teacher's bytecode pipeline end to end.

func TestScenarioIntegerAddition(t *testing.T) {
	vm := newVM()
	v, errStr := DoIt(vm, "3 + 4")
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := v.AsInt()
	if !ok || n != 7 {
		t.Fatalf("got %#v", v)
	}
}

func TestScenarioDerivedClassWithMethodAndAccessors(t *testing.T) {
	vm := newVM()
	src := `Point := Object derive: #(x y).
Point >> moveBy: dx and: dy [ x := x + dx. y := y + dy. ^ self ].
p := Point new.
p x: 100.
p y: 200.
p moveBy: 10 and: 20.
p x`
	v, errStr := DoIt(vm, src)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := v.AsInt()
	if !ok || n != 110 {
		t.Fatalf("got %#v", v)
	}
}

func TestScenarioNonLocalReturnFromNestedBlock(t *testing.T) {
	vm := newVM()
	src := `findFirstEven := [:arr | arr do: [:n | (n \ 2) == 0 ifTrue: [^ n]]. ^ nil].
findFirstEven value: #(1 3 5 2 4)`
	v, errStr := DoIt(vm, src)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := v.AsInt()
	if !ok || n != 2 {
		t.Fatalf("got %#v", v)
	}
}

func TestScenarioClosureSharingAcrossInvocations(t *testing.T) {
	vm := newVM()
	src := `makeCounter := [| c | c := 0. [c := c + 1. c]].
k := makeCounter value.
k value. k value. k value`
	v, errStr := DoIt(vm, src)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := v.AsInt()
	if !ok || n != 3 {
		t.Fatalf("got %#v", v)
	}
}

// TestScenarioOnDoCatchesRuntimeError exercises spec §7's exception
// protocol end to end: the handler in `[protected] on: ExcClass do: [:e|..]`
// is the SECOND keyword argument, and it must receive an exception object
// whose `message` selector describes the failure, not the exception class.
func TestScenarioOnDoCatchesRuntimeError(t *testing.T) {
	vm := newVM()
	src := `[10 \ 0] on: Exception do: [:e | e message]`
	v, errStr := DoIt(vm, src)
	require.Empty(t, errStr, "unexpected error")
	s, ok := v.AsString()
	require.True(t, ok, "got %#v, want a String", v)
	require.Equal(t, "division by zero", s)
}

func TestScenarioSuperChainConcatenation(t *testing.T) {
	vm := newVM()
	src := `A := Object derive. A >> foo [ ^ "A" ].
B := A derive. B >> foo [ ^ super foo , "B" ].
C := B derive. C >> foo [ ^ super foo , "C" ].
C new foo`
	v, errStr := DoIt(vm, src)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	s, ok := v.AsString()
	if !ok || s != "ABC" {
		t.Fatalf("got %#v", v)
	}
}
