package native

import (
	"fmt"
	"strconv"
	"strings"
)

// Show renders v in a readable s-expression form. Arrays print in brackets.
func Show(v Value) string {
	var sb strings.Builder
	show(&sb, v)
	return sb.String()
}

func show(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("#<undef>")
	case *Symbol:
		sb.WriteString(x.Name)
	case Bool:
		if x {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case Null:
		sb.WriteString("()")
	case Float64:
		sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 64))
	case Int32:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
		sb.WriteString("i32")
	case Int64:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Uint64:
		sb.WriteString("0x")
		sb.WriteString(strconv.FormatUint(uint64(x), 16))
	case Char:
		sb.WriteString(strconv.QuoteRune(rune(x)))
	case String:
		sb.WriteString(strconv.Quote(string(x)))
	case *Expr:
		sb.WriteByte('(')
		sb.WriteString(x.Head.Name)
		for _, a := range x.Args {
			sb.WriteByte(' ')
			show(sb, a)
		}
		sb.WriteByte(')')
	case *Array:
		sb.WriteByte('[')
		for i, e := range x.Elems {
			if i > 0 {
				sb.WriteByte(' ')
			}
			show(sb, e)
		}
		sb.WriteByte(']')
	case *LambdaInfo:
		sb.WriteString("#<template ")
		if x.AST == nil {
			sb.WriteString("no tree")
		} else {
			show(sb, x.AST)
		}
		if len(x.SParams) > 0 {
			sb.WriteString(" where")
			for _, p := range x.SParams {
				sb.WriteByte(' ')
				show(sb, p)
			}
		}
		sb.WriteByte('>')
	case *TypeVar:
		sb.WriteString(x.Name.Name)
	case *DataType:
		sb.WriteString(x.Name.Name)
		if len(x.Params) > 0 {
			sb.WriteByte('{')
			for i, p := range x.Params {
				if i > 0 {
					sb.WriteByte(',')
				}
				show(sb, p)
			}
			sb.WriteByte('}')
		}
	case *Builtin:
		fmt.Fprintf(sb, "#<builtin %s>", x.Name)
	default:
		fmt.Fprintf(sb, "#<%T>", v)
	}
}
