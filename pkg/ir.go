package kaleido

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// LLVMFunc is the Function handle of LLVMIRBuilder.
type LLVMFunc struct {
	*ir.Func

	// declared holds the parameter names a discarded body reverts to.
	declared []string
}

func (f *LLVMFunc) Arity() int {
	return len(f.Params)
}

// LLVMIRBuilder is a Backend producing an LLVM IR module. Every value is a
// double.
type LLVMIRBuilder struct {
	mod   *ir.Module
	block *ir.Block
	funcs map[string]*LLVMFunc
}

func NewLLVMIRBuilder() *LLVMIRBuilder {
	return &LLVMIRBuilder{
		mod:   ir.NewModule(),
		funcs: make(map[string]*LLVMFunc),
	}
}

func (b *LLVMIRBuilder) Module() *ir.Module {
	return b.mod
}

// String returns the textual IR of the whole module.
func (b *LLVMIRBuilder) String() string {
	return b.mod.String()
}

// FuncIR returns the textual IR of a single function.
func (b *LLVMIRBuilder) FuncIR(fn Function) string {
	return fn.(*LLVMFunc).LLString()
}

func (b *LLVMIRBuilder) Const(v float64) Value {
	return constant.NewFloat(types.Double, v)
}

func (b *LLVMIRBuilder) Arith(op ArithOp, lhs, rhs Value) Value {
	x, y := lhs.(value.Value), rhs.(value.Value)

	switch op {
	case ArithAdd:
		return b.block.NewFAdd(x, y)
	case ArithSub:
		return b.block.NewFSub(x, y)
	case ArithMul:
		return b.block.NewFMul(x, y)
	default:
		panic("unexpected arithmetic op")
	}
}

func (b *LLVMIRBuilder) LessThan(lhs, rhs Value) Value {
	return b.block.NewFCmp(enum.FPredULT, lhs.(value.Value), rhs.(value.Value))
}

func (b *LLVMIRBuilder) Widen(v Value) Value {
	return b.block.NewUIToFP(v.(value.Value), types.Double)
}

func (b *LLVMIRBuilder) Call(fn Function, args []Value) Value {
	callArgs := make([]value.Value, len(args))
	for i, arg := range args {
		callArgs[i] = arg.(value.Value)
	}

	return b.block.NewCall(fn.(*LLVMFunc).Func, callArgs...)
}

func (b *LLVMIRBuilder) DeclareFunc(name string, params []string) Function {
	if f, ok := b.funcs[name]; ok {
		return f
	}

	irParams := make([]*ir.Param, len(params))
	for i, p := range params {
		irParams[i] = ir.NewParam(p, types.Double)
	}

	f := &LLVMFunc{Func: b.mod.NewFunc(name, types.Double, irParams...)}
	b.funcs[name] = f

	return f
}

func (b *LLVMIRBuilder) LookupFunc(name string) (Function, bool) {
	f, ok := b.funcs[name]
	if !ok {
		return nil, false
	}

	return f, true
}

func (b *LLVMIRBuilder) HasBody(fn Function) bool {
	return len(fn.(*LLVMFunc).Blocks) != 0
}

func (b *LLVMIRBuilder) BeginBody(fn Function, params []string) []Value {
	f := fn.(*LLVMFunc)

	f.declared = make([]string, len(f.Params))
	vals := make([]Value, len(f.Params))
	for i, p := range f.Params {
		f.declared[i] = p.Name()

		// A definition names its parameters, overriding the names of an earlier extern
		if i < len(params) {
			p.SetName(params[i])
		}

		vals[i] = p
	}

	// Unnamed, so the label cannot collide with a parameter
	b.block = f.NewBlock("")
	return vals
}

func (b *LLVMIRBuilder) FinishBody(_ Function, ret Value) {
	b.block.NewRet(ret.(value.Value))
	b.block = nil
}

func (b *LLVMIRBuilder) DiscardBody(fn Function) {
	f := fn.(*LLVMFunc)
	f.Blocks = nil
	for i, name := range f.declared {
		f.Params[i].SetName(name)
	}

	b.block = nil
}

func (b *LLVMIRBuilder) RemoveFunc(fn Function) {
	f := fn.(*LLVMFunc)
	delete(b.funcs, f.Name())

	funcs := b.mod.Funcs[:0]
	for _, other := range b.mod.Funcs {
		if other != f.Func {
			funcs = append(funcs, other)
		}
	}
	b.mod.Funcs = funcs

	if b.block != nil && b.block.Parent == f.Func {
		b.block = nil
	}
}
