package kaleido

import "fmt"

// Value is a backend value handle. The Generator never looks inside it.
type Value interface{}

// Function is a backend function handle.
type Function interface {
	Name() string
	Arity() int
}

type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
)

// Backend emits instructions for the Generator. Instruction methods append to
// the body opened by the last BeginBody.
type Backend interface {
	Const(v float64) Value
	Arith(op ArithOp, lhs, rhs Value) Value
	// LessThan returns a boolean-width value; Widen converts it to a double.
	LessThan(lhs, rhs Value) Value
	Widen(v Value) Value
	Call(fn Function, args []Value) Value

	// DeclareFunc returns the function called name, declaring it with one
	// double parameter per entry of params if it does not exist yet.
	DeclareFunc(name string, params []string) Function
	LookupFunc(name string) (Function, bool)
	HasBody(fn Function) bool
	// BeginBody opens the entry block of fn and returns its parameter
	// handles, named after params.
	BeginBody(fn Function, params []string) []Value
	FinishBody(fn Function, ret Value)
	// DiscardBody drops a body opened by BeginBody, leaving a declaration.
	DiscardBody(fn Function)
	RemoveFunc(fn Function)
}

// ValueLookup binds parameter names to value handles for the function being
// generated.
type ValueLookup struct {
	vals map[string]Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]Value),
	}
}

func (l *ValueLookup) Get(id string) (Value, bool) {
	val, ok := l.vals[id]
	return val, ok
}

func (l *ValueLookup) Set(id string, val Value) {
	l.vals[id] = val
}

// Generator lowers parsed units through a Backend. It is not safe for
// concurrent use.
type Generator struct {
	backend Backend
}

func NewGenerator(backend Backend) *Generator {
	return &Generator{backend: backend}
}

func (g *Generator) errorf(l *Location, format string, args ...interface{}) error {
	return &CodegenError{Loc: l, Msg: fmt.Sprintf(format, args...)}
}

// Prototype declares proto, or returns the existing function of that name when
// the arity matches.
func (g *Generator) Prototype(proto *Prototype) (Function, error) {
	if fn, ok := g.backend.LookupFunc(proto.Name); ok {
		if fn.Arity() != len(proto.Params) {
			return nil, g.errorf(proto.Loc, "redefinition of function '%s' with different number of args", proto.Name)
		}

		return fn, nil
	}

	return g.backend.DeclareFunc(proto.Name, proto.Params), nil
}

// Definition generates def. When the body fails the function is
// restored to what it was before: removed if this definition declared it, a
// bare declaration otherwise.
func (g *Generator) Definition(def *FuncDef) (Function, error) {
	prev, declared := g.backend.LookupFunc(def.Proto.Name)
	if declared && g.backend.HasBody(prev) {
		return nil, g.errorf(def.Proto.Loc, "function '%s' cannot be redefined", def.Proto.Name)
	}

	fn, err := g.Prototype(def.Proto)
	if err != nil {
		return nil, err
	}

	scope := NewValueLookup()
	params := g.backend.BeginBody(fn, def.Proto.Params)
	for i, name := range def.Proto.Params {
		scope.Set(name, params[i])
	}

	ret, err := g.recursiveLoad(scope, def.Body)
	if err != nil {
		if declared {
			g.backend.DiscardBody(fn)
		} else {
			g.backend.RemoveFunc(fn)
		}

		return nil, err
	}

	g.backend.FinishBody(fn, ret)
	return fn, nil
}

// Remove drops the function called name, reporting whether it existed.
func (g *Generator) Remove(name string) bool {
	fn, ok := g.backend.LookupFunc(name)
	if ok {
		g.backend.RemoveFunc(fn)
	}

	return ok
}

func (g *Generator) recursiveLoad(scope *ValueLookup, expr Expr) (Value, error) {
	switch e := expr.(type) {
	case *NumberExpr:
		return g.backend.Const(e.Value), nil
	case *VariableExpr:
		if v, ok := scope.Get(e.Name); ok {
			return v, nil
		}

		return nil, g.errorf(e.Loc, "unknown variable name '%s'", e.Name)
	case *BinaryExpr:
		return g.binaryExpression(scope, e)
	case *CallExpr:
		return g.functionCall(scope, e)
	default:
		return nil, g.errorf(nil, "unexpected expression %T", expr)
	}
}

func (g *Generator) binaryExpression(scope *ValueLookup, expr *BinaryExpr) (Value, error) {
	lhs, err := g.recursiveLoad(scope, expr.LHS)
	if err != nil {
		return nil, err
	}

	rhs, err := g.recursiveLoad(scope, expr.RHS)
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case '+':
		return g.backend.Arith(ArithAdd, lhs, rhs), nil
	case '-':
		return g.backend.Arith(ArithSub, lhs, rhs), nil
	case '*':
		return g.backend.Arith(ArithMul, lhs, rhs), nil
	case '<':
		// No boolean type: 0.0 or 1.0
		return g.backend.Widen(g.backend.LessThan(lhs, rhs)), nil
	default:
		return nil, g.errorf(expr.Loc, "invalid binary operator '%c'", expr.Op)
	}
}

func (g *Generator) functionCall(scope *ValueLookup, expr *CallExpr) (Value, error) {
	fn, ok := g.backend.LookupFunc(expr.Callee)
	if !ok {
		return nil, g.errorf(expr.Loc, "unknown function '%s' referenced", expr.Callee)
	}

	if fn.Arity() != len(expr.Args) {
		return nil, g.errorf(expr.Loc, "incorrect number of arguments passed to '%s': want %d, got %d",
			expr.Callee, fn.Arity(), len(expr.Args))
	}

	args := make([]Value, 0, len(expr.Args))
	for _, arg := range expr.Args {
		v, err := g.recursiveLoad(scope, arg)
		if err != nil {
			return nil, err
		}

		args = append(args, v)
	}

	return g.backend.Call(fn, args), nil
}
