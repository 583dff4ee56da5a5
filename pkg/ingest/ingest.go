// Package ingest implements spec §6's source-text entry points —
// `evalStatements`/`doit` — and the on-disk script conventions (shebang
// stripping, optional outer-block wrapping) on top of pkg/parser and
// pkg/interp. Grounded on the teacher's cmd/smog/main.go file-load path
// (runSourceFile/runREPL), pulled out into its own package so both
// cmd/smog and tests can drive it without going through a CLI.
package ingest

import (
	"strings"

	"github.com/kristofer/smog/pkg/ast"
	"github.com/kristofer/smog/pkg/interp"
	"github.com/kristofer/smog/pkg/parser"
	"github.com/kristofer/smog/pkg/value"
)

// StripShebang removes a leading "#!..." line, per spec §6's "On-disk
// representation": script files may start with a shebang line, which the
// ingest layer strips before parsing (the lexer's own `#` handling reads
// a Symbol or an array-literal opener, not a comment — a shebang must
// never reach it).
func StripShebang(source string) string {
	if !strings.HasPrefix(source, "#!") {
		return source
	}
	if i := strings.IndexByte(source, '\n'); i >= 0 {
		return source[i+1:]
	}
	return ""
}

// Parse strips a shebang line (if present) and parses the remainder.
func Parse(source string) (*ast.Program, error) {
	return parser.New(StripShebang(source)).Parse()
}

// unwrapScript implements spec §6's optional outer-block wrapping: when a
// script's entire top-level content is a single block literal, its body
// runs as the script's own statement sequence and its temporaries become
// script-level locals, with self = Nil (the usual top-level default) —
// rather than evaluating the block as a value and discarding it. A `^`
// inside such a script is then an ordinary top-level return (spec §4.5's
// non-local-return target resolution already treats CurrentMethod == nil
// as a valid target), terminating the script with that value.
func unwrapScript(prog *ast.Program) (*ast.Program, []string) {
	if len(prog.Statements) != 1 {
		return prog, nil
	}
	block, ok := prog.Statements[0].(*ast.BlockNode)
	if !ok {
		return prog, nil
	}
	names := append(append([]string(nil), block.Parameters...), block.Temporaries...)
	return &ast.Program{Statements: block.Body}, names
}

// EvalStatements implements spec §6's `evalStatements(vm, source)`:
// evaluate every top-level statement of source against vm in order,
// retaining each statement's value (spec's stack-discipline invariant:
// after a successful call the eval stack holds exactly one entry per
// input statement). Errors are reported as a string describing the
// failure, per spec's `(values[], errorString)` signature, rather than a
// Go error — evalStatements is meant to report into a REPL or script
// runner, not to be further wrapped by Go error-handling idiom.
func EvalStatements(vm *interp.Interpreter, source string) ([]value.Value, string) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err.Error()
	}
	prog, temps := unwrapScript(prog)

	if temps != nil {
		// The whole script is one wrapping block: its body runs as a
		// single cohesive unit sharing one top activation (so temps
		// persist across statements and a `^` partway through correctly
		// unwinds the rest), so it produces one result value — the same
		// way invoking any Block yields one value — rather than the
		// per-statement stack spec's plain stack-discipline line
		// describes for flat, unwrapped script source.
		v, serr := vm.EvalProgramWithTemps(prog, temps)
		if serr != nil {
			return nil, serr.Error()
		}
		vm.PushEval(v)
		return []value.Value{v}, ""
	}

	var results []value.Value
	for _, stmt := range prog.Statements {
		single := &ast.Program{Statements: []ast.Node{stmt}}
		v, serr := vm.EvalProgram(single)
		if serr != nil {
			return results, serr.Error()
		}
		vm.PushEval(v)
		results = append(results, v)
	}
	return results, ""
}

// DoIt implements spec §6's `doit(vm, source)`: evaluate source and
// return only its last statement's value.
func DoIt(vm *interp.Interpreter, source string) (value.Value, string) {
	results, errStr := EvalStatements(vm, source)
	if errStr != "" {
		return value.Nil(), errStr
	}
	if len(results) == 0 {
		return value.Nil(), ""
	}
	return results[len(results)-1], ""
}
