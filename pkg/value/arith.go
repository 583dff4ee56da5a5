package value

import "github.com/kristofer/smog/pkg/vmerrors"

// Add, Sub, Mul, Div implement spec §4.1's numeric coercion: Int+Int stays
// Int, any mix involving Float promotes to Float. Div always promotes to
// Float (Smalltalk's `/`); FloorDiv and Mod require integer operands per
// spec ("`//` and `\` require integer operands").

func numericPromote(a, b Value) (af, bf float64, bothInt bool, ok bool) {
	ai, aIsInt := a.AsInt()
	bi, bIsInt := b.AsInt()
	if aIsInt && bIsInt {
		return float64(ai), float64(bi), true, true
	}
	af, aok := a.AsFloat()
	bf, bok := b.AsFloat()
	if aok && bok {
		return af, bf, false, true
	}
	return 0, 0, false, false
}

func Add(a, b Value) (Value, error) {
	af, bf, bothInt, ok := numericPromote(a, b)
	if !ok {
		return Value{}, vmerrors.New(vmerrors.KindValue, "'+' requires numeric operands, got %s and %s", a.Kind, b.Kind)
	}
	if bothInt {
		return Int(a.Int + b.Int), nil
	}
	return Float(af + bf), nil
}

func Sub(a, b Value) (Value, error) {
	af, bf, bothInt, ok := numericPromote(a, b)
	if !ok {
		return Value{}, vmerrors.New(vmerrors.KindValue, "'-' requires numeric operands, got %s and %s", a.Kind, b.Kind)
	}
	if bothInt {
		return Int(a.Int - b.Int), nil
	}
	return Float(af - bf), nil
}

func Mul(a, b Value) (Value, error) {
	af, bf, bothInt, ok := numericPromote(a, b)
	if !ok {
		return Value{}, vmerrors.New(vmerrors.KindValue, "'*' requires numeric operands, got %s and %s", a.Kind, b.Kind)
	}
	if bothInt {
		return Int(a.Int * b.Int), nil
	}
	return Float(af * bf), nil
}

func Div(a, b Value) (Value, error) {
	af, bf, _, ok := numericPromote(a, b)
	if !ok {
		return Value{}, vmerrors.New(vmerrors.KindValue, "'/' requires numeric operands, got %s and %s", a.Kind, b.Kind)
	}
	if bf == 0 {
		return Value{}, vmerrors.New(vmerrors.KindValue, "division by zero")
	}
	return Float(af / bf), nil
}

func FloorDiv(a, b Value) (Value, error) {
	ai, aok := a.AsInt()
	bi, bok := b.AsInt()
	if !aok || !bok {
		return Value{}, vmerrors.New(vmerrors.KindValue, "'//' requires integer operands, got %s and %s", a.Kind, b.Kind)
	}
	if bi == 0 {
		return Value{}, vmerrors.New(vmerrors.KindValue, "division by zero")
	}
	q := ai / bi
	if (ai%bi != 0) && ((ai < 0) != (bi < 0)) {
		q--
	}
	return Int(q), nil
}

func Mod(a, b Value) (Value, error) {
	ai, aok := a.AsInt()
	bi, bok := b.AsInt()
	if !aok || !bok {
		return Value{}, vmerrors.New(vmerrors.KindValue, "'\\' requires integer operands, got %s and %s", a.Kind, b.Kind)
	}
	if bi == 0 {
		return Value{}, vmerrors.New(vmerrors.KindValue, "division by zero")
	}
	m := ai % bi
	if m != 0 && ((m < 0) != (bi < 0)) {
		m += bi
	}
	return Int(m), nil
}

// Compare returns -1, 0, 1 for a<b, a==b, a>b on numeric operands.
func Compare(a, b Value) (int, error) {
	af, bf, _, ok := numericPromote(a, b)
	if !ok {
		return 0, vmerrors.New(vmerrors.KindValue, "comparison requires numeric operands, got %s and %s", a.Kind, b.Kind)
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}
