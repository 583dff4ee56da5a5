package ingest

import (
	"testing"

	"github.com/kristofer/smog/pkg/interp"
)

func newVM() *interp.Interpreter {
	return interp.New(interp.NewGlobals(), nil)
}

func TestStripShebang(t *testing.T) {
	src := "#!/usr/bin/env smog\n3 + 4"
	got := StripShebang(src)
	if got != "3 + 4" {
		t.Fatalf("got %q", got)
	}
}

func TestStripShebangNoop(t *testing.T) {
	src := "3 + 4"
	if StripShebang(src) != src {
		t.Fatalf("expected no change")
	}
}

func TestDoItReturnsLastValue(t *testing.T) {
	vm := newVM()
	v, errStr := DoIt(vm, "1 + 1. 2 + 2. 3 + 3")
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := v.AsInt()
	if !ok || n != 6 {
		t.Fatalf("got %#v", v)
	}
}

func TestEvalStatementsCollectsEachValue(t *testing.T) {
	vm := newVM()
	results, errStr := EvalStatements(vm, "1 + 1. 2 + 2. 3 + 3")
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []int64{2, 4, 6}
	for i, w := range want {
		n, ok := results[i].AsInt()
		if !ok || n != w {
			t.Fatalf("result %d: got %#v", i, results[i])
		}
	}
	if len(vm.EvalStack) != 3 {
		t.Fatalf("expected eval stack to retain 3 entries, got %d", len(vm.EvalStack))
	}
}

func TestEvalStatementsSharesGlobalsAcrossStatements(t *testing.T) {
	vm := newVM()
	_, errStr := EvalStatements(vm, "x := 41. x + 1")
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	results, errStr := EvalStatements(vm, "x")
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := results[0].AsInt()
	if !ok || n != 41 {
		t.Fatalf("expected x to still be 41, got %#v", results[0])
	}
}

func TestEvalStatementsReportsParseErrorAsString(t *testing.T) {
	vm := newVM()
	_, errStr := EvalStatements(vm, "1 +")
	if errStr == "" {
		t.Fatalf("expected a parse error string")
	}
}

func TestOuterBlockWrappingBindsTemporaries(t *testing.T) {
	vm := newVM()
	v, errStr := DoIt(vm, "[| c | c := 0. c := c + 1. c := c + 1. c]")
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := v.AsInt()
	if !ok || n != 2 {
		t.Fatalf("got %#v", v)
	}
}

func TestOuterBlockWrappingSelfIsNil(t *testing.T) {
	vm := newVM()
	v, errStr := DoIt(vm, "[ self ]")
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	if !v.IsNil() {
		t.Fatalf("expected self to be Nil inside an outer-wrapped script, got %#v", v)
	}
}

func TestOuterBlockWithShebang(t *testing.T) {
	vm := newVM()
	v, errStr := DoIt(vm, "#!/usr/bin/env smog\n[| x | x := 10. x]")
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := v.AsInt()
	if !ok || n != 10 {
		t.Fatalf("got %#v", v)
	}
}
