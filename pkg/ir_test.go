package kaleido

import (
	"math"
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalFunc interprets a function made of the instructions LLVMIRBuilder emits.
func evalFunc(t *testing.T, f *ir.Func, args ...float64) float64 {
	t.Helper()

	require.Len(t, f.Blocks, 1, f.Name())
	require.Len(t, args, len(f.Params), f.Name())

	env := make(map[*ir.Param]float64)
	for i, p := range f.Params {
		env[p] = args[i]
	}

	ret, ok := f.Blocks[0].Term.(*ir.TermRet)
	require.True(t, ok, f.Name())

	return evalValue(t, env, ret.X)
}

func evalValue(t *testing.T, env map[*ir.Param]float64, v value.Value) float64 {
	t.Helper()

	switch v := v.(type) {
	case *constant.Float:
		f, _ := v.X.Float64()
		return f
	case *ir.Param:
		return env[v]
	case *ir.InstFAdd:
		return evalValue(t, env, v.X) + evalValue(t, env, v.Y)
	case *ir.InstFSub:
		return evalValue(t, env, v.X) - evalValue(t, env, v.Y)
	case *ir.InstFMul:
		return evalValue(t, env, v.X) * evalValue(t, env, v.Y)
	case *ir.InstFCmp:
		require.Equal(t, enum.FPredULT, v.Pred)

		x, y := evalValue(t, env, v.X), evalValue(t, env, v.Y)
		if x < y || math.IsNaN(x) || math.IsNaN(y) {
			return 1
		}

		return 0
	case *ir.InstUIToFP:
		require.Equal(t, types.Double, v.To)
		return evalValue(t, env, v.From)
	case *ir.InstCall:
		callee, ok := v.Callee.(*ir.Func)
		require.True(t, ok)

		args := make([]float64, len(v.Args))
		for i, arg := range v.Args {
			args[i] = evalValue(t, env, arg)
		}

		return evalFunc(t, callee, args...)
	default:
		require.Failf(t, "unexpected value", "%T", v)
		return 0
	}
}

func TestLLVMIRBuilderEval(t *testing.T) {
	cases := []struct {
		src    string
		expect float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10-4-3", 3},
		{"2 < 3", 1},
		{"3 < 2", 0},
		{"1 + 2 < 2 * 2", 1},
		{"def sq(x) x*x; sq(4) + 1", 17},
		{"def foo(a b) a*a + b*b; foo(3, 4)", 25},
		{"extern id(x); def id(y) y; id(.5) * 4", 2},
		{"def max(a b) (b < a)*a + (a < b)*b; max(7, 3) - max(1, 2)", 5},
	}

	for _, c := range cases {
		builder := NewLLVMIRBuilder()
		fn, err := compileUnits(NewGenerator(builder), c.src)
		require.NoError(t, err, c.src)

		assert.Equal(t, c.expect, evalFunc(t, fn.(*LLVMFunc).Func), c.src)
	}
}

func TestLLVMIRBuilderText(t *testing.T) {
	builder := NewLLVMIRBuilder()
	g := NewGenerator(builder)

	_, err := compileUnits(g, "extern sin(x); def foo(a b) a*a + b*b; def lt(a b) a < b")
	require.NoError(t, err)

	mod := builder.String()
	assert.Contains(t, mod, "declare double @sin(double %x)")
	assert.Contains(t, mod, "define double @foo(double %a, double %b)")
	assert.Contains(t, mod, "fmul double %a, %a")
	assert.Contains(t, mod, "fmul double %b, %b")
	assert.Contains(t, mod, "fadd double")
	assert.Contains(t, mod, "fcmp ult double %a, %b")
	assert.Contains(t, mod, "uitofp i1")

	lt, ok := builder.LookupFunc("lt")
	require.True(t, ok)

	text := builder.FuncIR(lt)
	assert.Contains(t, text, "define double @lt(double %a, double %b)")
	assert.NotContains(t, text, "@foo")
}

func TestLLVMIRBuilderRollback(t *testing.T) {
	builder := NewLLVMIRBuilder()
	g := NewGenerator(builder)

	_, err := compileUnits(g, "extern foo(x); def foo(x) x + y")
	require.Error(t, err)

	require.Len(t, builder.Module().Funcs, 1)
	assert.Empty(t, builder.Module().Funcs[0].Blocks)
	assert.Contains(t, builder.String(), "declare double @foo(double %x)")

	_, err = compileUnits(g, "def bar(x) x * z")
	require.Error(t, err)
	assert.Len(t, builder.Module().Funcs, 1)
	assert.NotContains(t, builder.String(), "@bar")

	fn, err := compileUnits(g, "def foo(x) x * 2")
	require.NoError(t, err)
	assert.Equal(t, 6.0, evalFunc(t, fn.(*LLVMFunc).Func, 3))
}

func TestLLVMIRBuilderRemove(t *testing.T) {
	builder := NewLLVMIRBuilder()
	g := NewGenerator(builder)

	_, err := compileUnits(g, "def one() 1; one() + 1")
	require.NoError(t, err)
	require.Len(t, builder.Module().Funcs, 2)

	assert.True(t, g.Remove(AnonymousFunc))
	require.Len(t, builder.Module().Funcs, 1)
	assert.Equal(t, "one", builder.Module().Funcs[0].Name())

	_, ok := builder.LookupFunc(AnonymousFunc)
	assert.False(t, ok)
}

func TestLLVMIRBuilderBlockLabel(t *testing.T) {
	mod, err := CompileFromReader(strings.NewReader("def f(entry) entry+1"))
	require.NoError(t, err)

	assert.Contains(t, mod, "define double @f(double %entry)")
	assert.Contains(t, mod, "fadd double %entry, 1.0")
	assert.NotContains(t, mod, "entry:")
}

func TestLLVMIRBuilderDiscardRestoresParams(t *testing.T) {
	builder := NewLLVMIRBuilder()
	g := NewGenerator(builder)

	_, err := compileUnits(g, "extern g(x); def g(a) y")
	require.Error(t, err)
	assert.Contains(t, builder.String(), "declare double @g(double %x)")

	fn, err := compileUnits(g, "def g(b) b * 3")
	require.NoError(t, err)
	assert.Contains(t, builder.FuncIR(fn), "define double @g(double %b)")
	assert.Equal(t, 6.0, evalFunc(t, fn.(*LLVMFunc).Func, 2))
}
