package kaleido

import (
	"strconv"
	"strings"
)

// AnonymousFunc names the zero-argument function wrapping each top-level
// expression.
const AnonymousFunc = "__anon_expr"

// Expr is one of *NumberExpr, *VariableExpr, *BinaryExpr or *CallExpr.
type Expr interface {
	String() string
	expr()
}

type NumberExpr struct {
	Value float64
}

// VariableExpr names a parameter of the enclosing function. It is resolved
// during code generation.
type VariableExpr struct {
	Loc  *Location
	Name string
}

type BinaryExpr struct {
	Loc *Location
	Op  rune
	LHS Expr
	RHS Expr
}

type CallExpr struct {
	Loc    *Location
	Callee string
	Args   []Expr
}

func (*NumberExpr) expr()   {}
func (*VariableExpr) expr() {}
func (*BinaryExpr) expr()   {}
func (*CallExpr) expr()     {}

func (e *NumberExpr) String() string {
	return strconv.FormatFloat(e.Value, 'g', -1, 64)
}

func (e *VariableExpr) String() string {
	return e.Name
}

func (e *BinaryExpr) String() string {
	return "(" + string(e.Op) + " " + e.LHS.String() + " " + e.RHS.String() + ")"
}

func (e *CallExpr) String() string {
	var str strings.Builder
	str.WriteString("(call ")
	str.WriteString(e.Callee)

	for _, arg := range e.Args {
		str.WriteString(" ")
		str.WriteString(arg.String())
	}
	str.WriteString(")")

	return str.String()
}

// Prototype is a function signature. Every parameter has type double.
type Prototype struct {
	Loc    *Location
	Name   string
	Params []string
}

func (p *Prototype) String() string {
	return p.Name + "(" + strings.Join(p.Params, " ") + ")"
}

// FuncDef is a definition: a prototype and the expression it returns.
type FuncDef struct {
	Proto *Prototype
	Body  Expr
}

func (f *FuncDef) String() string {
	return "(def " + f.Proto.String() + " " + f.Body.String() + ")"
}

// IsAnonymous reports whether f wraps a top-level expression.
func (f *FuncDef) IsAnonymous() bool {
	return f.Proto.Name == AnonymousFunc
}
