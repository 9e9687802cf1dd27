// Package ast defines the generic tree produced by the front end: an untyped
// s-expression made of symbols, numbers, strings and pair chains.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag represents the type of a Value
type Tag int

const (
	TInt     Tag = iota // Signed fixed-width integer
	TUint               // Unsigned fixed-width integer
	TUint64             // Integer explicitly tagged unsigned 64-bit
	TFloat              // Exact machine double
	TSym                // Named symbol
	TGensym             // Generated symbol with a session-scoped id
	TStr                // Byte string
	TBool               // Boolean singleton
	TNil                // Empty sequence
	TCell               // Pair
	TChar               // Wide character
	TForeign            // Opaque handle carrying a native value
)

// Value is the core tagged union type for all generic values
type Value struct {
	Tag Tag

	// TInt, TChar, TGensym (session id)
	Int int64

	// TUint, TUint64
	Uint uint64

	// TFloat
	Float float64

	// TSym, TStr, TGensym (display name)
	Str string

	// TCell
	Car *Value
	Cdr *Value

	// TForeign
	Foreign any
}

// Nil is the singleton empty sequence
var Nil = &Value{Tag: TNil}

// Boolean singletons
var (
	True  = &Value{Tag: TBool, Int: 1}
	False = &Value{Tag: TBool, Int: 0}
)

// NewInt creates a signed integer value
func NewInt(i int64) *Value {
	return &Value{Tag: TInt, Int: i}
}

// NewUint creates an unsigned integer value
func NewUint(u uint64) *Value {
	return &Value{Tag: TUint, Uint: u}
}

// NewUint64 creates an integer explicitly tagged unsigned 64-bit
func NewUint64(u uint64) *Value {
	return &Value{Tag: TUint64, Uint: u}
}

// NewFloat creates a floating point value
func NewFloat(f float64) *Value {
	return &Value{Tag: TFloat, Float: f}
}

// NewSym creates a symbol value
func NewSym(s string) *Value {
	return &Value{Tag: TSym, Str: s}
}

// NewGensym creates a generated symbol with the given session id
func NewGensym(id int64) *Value {
	return &Value{Tag: TGensym, Int: id, Str: fmt.Sprintf("#:g%d", id)}
}

// NewStr creates a string value
func NewStr(s string) *Value {
	return &Value{Tag: TStr, Str: s}
}

// NewBool returns the boolean singleton for b
func NewBool(b bool) *Value {
	if b {
		return True
	}
	return False
}

// NewCell creates a cons cell
func NewCell(car, cdr *Value) *Value {
	return &Value{Tag: TCell, Car: car, Cdr: cdr}
}

// NewChar creates a character value
func NewChar(c rune) *Value {
	return &Value{Tag: TChar, Int: int64(c)}
}

// NewForeign wraps a value from the other side of the boundary
func NewForeign(v any) *Value {
	return &Value{Tag: TForeign, Foreign: v}
}

// IsNil checks if a value is the empty sequence
func IsNil(v *Value) bool {
	return v == nil || v.Tag == TNil
}

// IsSym checks if a value is a named symbol
func IsSym(v *Value) bool {
	return v != nil && v.Tag == TSym
}

// IsGensym checks if a value is a generated symbol
func IsGensym(v *Value) bool {
	return v != nil && v.Tag == TGensym
}

// IsSymbol checks if a value is a symbol of either kind
func IsSymbol(v *Value) bool {
	return IsSym(v) || IsGensym(v)
}

// IsCell checks if a value is a cons cell
func IsCell(v *Value) bool {
	return v != nil && v.Tag == TCell
}

// IsNumber checks if a value is numeric
func IsNumber(v *Value) bool {
	if v == nil {
		return false
	}
	switch v.Tag {
	case TInt, TUint, TUint64, TFloat:
		return true
	}
	return false
}

// IsForeign checks if a value is a foreign handle
func IsForeign(v *Value) bool {
	return v != nil && v.Tag == TForeign
}

// SymEqStr compares a named symbol to a string
func SymEqStr(s *Value, str string) bool {
	if s == nil || s.Tag != TSym {
		return false
	}
	return s.Str == str
}

// List helpers
func List1(a *Value) *Value {
	return NewCell(a, Nil)
}

func List2(a, b *Value) *Value {
	return NewCell(a, NewCell(b, Nil))
}

func List3(a, b, c *Value) *Value {
	return NewCell(a, NewCell(b, NewCell(c, Nil)))
}

// List builds a proper list from its arguments
func List(items ...*Value) *Value {
	return SliceToList(items)
}

// ListLen returns the length of a list
func ListLen(v *Value) int {
	n := 0
	for !IsNil(v) && IsCell(v) {
		n++
		v = v.Cdr
	}
	return n
}

// IsProperList reports whether v is a chain of cells ending in Nil
func IsProperList(v *Value) bool {
	for IsCell(v) {
		v = v.Cdr
	}
	return IsNil(v)
}

// ListToSlice converts a list to a slice
func ListToSlice(v *Value) []*Value {
	var result []*Value
	for !IsNil(v) && IsCell(v) {
		result = append(result, v.Car)
		v = v.Cdr
	}
	return result
}

// SliceToList converts a slice to a list
func SliceToList(items []*Value) *Value {
	result := Nil
	for i := len(items) - 1; i >= 0; i-- {
		result = NewCell(items[i], result)
	}
	return result
}

// String returns a string representation of a value
func (v *Value) String() string {
	if v == nil {
		return "nil"
	}
	switch v.Tag {
	case TInt:
		return strconv.FormatInt(v.Int, 10)
	case TUint:
		return strconv.FormatUint(v.Uint, 10)
	case TUint64:
		return "#u64 " + strconv.FormatUint(v.Uint, 10)
	case TFloat:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnI") {
			s += ".0"
		}
		return s
	case TSym:
		return v.Str
	case TGensym:
		return v.Str
	case TStr:
		return strconv.Quote(v.Str)
	case TBool:
		if v.Int != 0 {
			return "#t"
		}
		return "#f"
	case TCell:
		return listToString(v)
	case TNil:
		return "()"
	case TChar:
		return charToString(rune(v.Int))
	case TForeign:
		return fmt.Sprintf("#<foreign %T>", v.Foreign)
	default:
		return "?"
	}
}

func listToString(v *Value) string {
	var sb strings.Builder
	sb.WriteByte('(')
	first := true
	for !IsNil(v) && IsCell(v) {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		sb.WriteString(v.Car.String())
		v = v.Cdr
	}
	if !IsNil(v) {
		// Improper list
		sb.WriteString(" . ")
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func charToString(c rune) string {
	switch c {
	case '\n':
		return "#\\newline"
	case '\t':
		return "#\\tab"
	case '\r':
		return "#\\return"
	case ' ':
		return "#\\space"
	case 0:
		return "#\\nul"
	default:
		return fmt.Sprintf("#\\%c", c)
	}
}

// TagName returns the name of a tag
func TagName(t Tag) string {
	switch t {
	case TInt:
		return "INT"
	case TUint:
		return "UINT"
	case TUint64:
		return "UINT64"
	case TFloat:
		return "FLOAT"
	case TSym:
		return "SYM"
	case TGensym:
		return "GENSYM"
	case TStr:
		return "STR"
	case TBool:
		return "BOOL"
	case TNil:
		return "NIL"
	case TCell:
		return "CELL"
	case TChar:
		return "CHAR"
	case TForeign:
		return "FOREIGN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", t)
	}
}
