package eval

import (
	"fmt"

	"astbridge/pkg/native"
)

// Builtin types
var (
	TypeAny     = newType("Any")
	TypeNothing = newType("Nothing")
	TypeBool    = newType("Bool")
	TypeInt32   = newType("Int32")
	TypeInt64   = newType("Int64")
	TypeUint64  = newType("Uint64")
	TypeFloat64 = newType("Float64")
	TypeChar    = newType("Char")
	TypeString  = newType("String")
	TypeSymbol  = newType("Symbol")
	TypeExpr    = newType("Expr")
	TypeArray   = newType("Array")
	TypeTuple   = newType("Tuple")
	TypeType    = newType("Type")
	TypeFunc    = newType("Function")
)

func newType(name string) *native.DataType {
	return &native.DataType{Name: native.Sym(name)}
}

// TypeOf returns the type of a native value
func TypeOf(v native.Value) *native.DataType {
	switch v.(type) {
	case native.Bool:
		return TypeBool
	case native.Null:
		return TypeNothing
	case native.Int32:
		return TypeInt32
	case native.Int64:
		return TypeInt64
	case native.Uint64:
		return TypeUint64
	case native.Float64:
		return TypeFloat64
	case native.Char:
		return TypeChar
	case native.String:
		return TypeString
	case *native.Symbol:
		return TypeSymbol
	case *native.Expr:
		return TypeExpr
	case *native.Array:
		return &native.DataType{Name: TypeArray.Name, Params: []native.Value{TypeAny, native.Int64(1)}}
	case *native.DataType, *native.TypeVar:
		return TypeType
	case *native.Builtin, *native.LambdaInfo:
		return TypeFunc
	}
	return TypeAny
}

// PrimApplyType implements apply_type
func PrimApplyType(args []native.Value) (native.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("apply_type: missing type")
	}
	return ApplyType(args[0], args[1:])
}

// PrimTuple implements tuple: a Tuple type over its arguments' types, or the
// arguments themselves when they are types
func PrimTuple(args []native.Value) (native.Value, error) {
	ps := make([]native.Value, len(args))
	for i, a := range args {
		if _, ok := a.(*native.DataType); ok {
			ps[i] = a
			continue
		}
		ps[i] = TypeOf(a)
	}
	return &native.DataType{Name: TypeTuple.Name, Params: ps}, nil
}

// PrimTypeOf implements typeof
func PrimTypeOf(args []native.Value) (native.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("typeof: expected 1 argument, got %d", len(args))
	}
	return TypeOf(args[0]), nil
}

// PrimError implements error: it always fails with its arguments as message
func PrimError(args []native.Value) (native.Value, error) {
	msg := "error"
	if len(args) > 0 {
		if s, ok := args[0].(native.String); ok {
			msg = string(s)
		} else {
			msg = native.Show(args[0])
		}
	}
	return nil, fmt.Errorf("%s", msg)
}

// PrimAdd implements + over Int64 and Float64
func PrimAdd(args []native.Value) (native.Value, error) {
	var isum int64
	var fsum float64
	isFloat := false
	for _, a := range args {
		switch n := a.(type) {
		case native.Int64:
			isum += int64(n)
		case native.Int32:
			isum += int64(n)
		case native.Float64:
			isFloat = true
			fsum += float64(n)
		default:
			return nil, fmt.Errorf("+: not a number: %s", native.Show(a))
		}
	}
	if isFloat {
		return native.Float64(fsum + float64(isum)), nil
	}
	return native.Int64(isum), nil
}

// DefaultNamespace returns a namespace with the builtin types and functions
func DefaultNamespace() *Namespace {
	ns := NewNamespace()
	for _, t := range []*native.DataType{
		TypeAny, TypeNothing, TypeBool, TypeInt32, TypeInt64, TypeUint64,
		TypeFloat64, TypeChar, TypeString, TypeSymbol, TypeExpr, TypeArray,
		TypeTuple, TypeType, TypeFunc,
	} {
		ns.Define(t.Name.Name, t)
	}
	prims := map[string]native.BuiltinFn{
		"apply_type": PrimApplyType,
		"tuple":      PrimTuple,
		"typeof":     PrimTypeOf,
		"error":      PrimError,
		"+":          PrimAdd,
	}
	for name, fn := range prims {
		ns.Define(name, &native.Builtin{Name: name, Fn: fn})
	}
	return ns
}
