package value

// StructuralEqual implements spec §3/§4.1's default equality: structural
// for primitives and strings, identity for Block/Class/Instance unless a
// class overrides `=` (that override is dispatched by the interpreter,
// which calls this function only as the fallback when no method exists).
func StructuralEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		// Int/Float cross-kind equality still compares numerically: 3 = 3.0.
		if af, ok := crossNumeric(a, b); ok {
			return af
		}
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString, KindSymbol:
		return a.Str == b.Str
	case KindArray:
		if len(a.Arr.Elements) != len(b.Arr.Elements) {
			return false
		}
		for i := range a.Arr.Elements {
			if !StructuralEqual(a.Arr.Elements[i], b.Arr.Elements[i]) {
				return false
			}
		}
		return true
	case KindBlock, KindClass, KindInstance, KindTable:
		return IdentityEqual(a, b)
	default:
		return false
	}
}

func crossNumeric(a, b Value) (bool, bool) {
	if (a.Kind == KindInt || a.Kind == KindFloat) && (b.Kind == KindInt || b.Kind == KindFloat) {
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return af == bf, true
	}
	return false, false
}

// IdentityEqual implements `==`: pointer identity for heap-allocated
// variants, value identity for everything else.
func IdentityEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString, KindSymbol:
		return a.Str == b.Str
	case KindArray:
		return a.Arr == b.Arr
	case KindTable:
		return a.Tbl == b.Tbl
	case KindBlock:
		return a.Block == b.Block
	case KindClass:
		return a.Class == b.Class
	case KindInstance:
		return a.Inst == b.Inst
	default:
		return false
	}
}
