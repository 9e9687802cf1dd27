package native

// Equal reports whether a and b are structurally equal. Symbols, type
// variables and builtins compare by identity; boxes by value; Expr, Array,
// DataType and templates element-wise.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case *Expr:
		y, ok := b.(*Expr)
		if !ok || x.Head != y.Head || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *DataType:
		y, ok := b.(*DataType)
		if !ok || x.Name != y.Name || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	case *LambdaInfo:
		y, ok := b.(*LambdaInfo)
		if !ok || len(x.SParams) != len(y.SParams) {
			return false
		}
		if x.AST == nil || y.AST == nil {
			if x.AST != nil || y.AST != nil {
				return false
			}
		} else if !Equal(x.AST, y.AST) {
			return false
		}
		for i := range x.SParams {
			if !Equal(x.SParams[i], y.SParams[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
