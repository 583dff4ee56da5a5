package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCapturedLocalVisibleInHomeActivation is spec §3/§4.4's MutableCell
// identity invariant checked in the direction scenarios_test.go's
// makeCounter case never exercises: a block's writes to a captured local
// must be visible back in the activation that captured it, not just
// between sibling blocks sharing the same cell. The classic
// accumulate-in-loop pattern breaks if the home activation keeps reading
// its own stale Locals copy after the loop body's block has captured the
// name.
func TestCapturedLocalVisibleInHomeActivation(t *testing.T) {
	vm := newVM()
	src := `Acc := Object derive.
Acc >> sumTo: n [ |s| s := 0. 1 to: n do: [:i | s := s + i]. ^ s ].
Acc new sumTo: 3`
	v, errStr := DoIt(vm, src)
	require.Empty(t, errStr, "unexpected error")
	n, ok := v.AsInt()
	require.True(t, ok, "got %#v, want an Int", v)
	require.Equal(t, int64(6), n)
}

// TestHomeWriteAfterCaptureVisibleToBlock checks the inverse direction: an
// assignment the home activation makes AFTER a block has captured the
// name must be visible the next time that block runs. The outer-block
// wrapping (spec §6) keeps `s` a genuine activation local throughout
// rather than a top-level global, so this actually exercises the cell.
func TestHomeWriteAfterCaptureVisibleToBlock(t *testing.T) {
	vm := newVM()
	src := `[| s get | s := 0. get := [s]. s := 41. s := s + 1. get value]`
	v, errStr := DoIt(vm, src)
	require.Empty(t, errStr, "unexpected error")
	n, ok := v.AsInt()
	require.True(t, ok, "got %#v, want an Int", v)
	require.Equal(t, int64(42), n)
}
