package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndEval(t *testing.T) {
	ps := testSet(t)
	x := []float64{0, 1, 2}

	tests := []struct {
		src      string
		expected []float64
	}{
		{src: "add(mul(2,x1),1)", expected: []float64{1, 3, 5}},
		{src: "sub(x1,3)", expected: []float64{-3, -2, -1}},
		{src: "x1", expected: []float64{0, 1, 2}},
		{src: "4", expected: []float64{4, 4, 4}},
		{src: "div(x1,2)", expected: []float64{0, 0.5, 1}},
	}

	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			tree, err := Parse(ps, test.src)
			require.NoError(t, err)
			prog, err := Compile(ps, tree)
			require.NoError(t, err)
			out, err := prog.Eval(x)
			require.NoError(t, err)
			assert.InDeltaSlice(t, test.expected, out, 1e-12)
		})
	}
}

func TestEvalDoesNotAliasInput(t *testing.T) {
	ps := testSet(t)
	prog, err := Compile(ps, Tree{ps.VariableNode(0)})
	require.NoError(t, err)

	x := []float64{1, 2}
	out, err := prog.Eval(x)
	require.NoError(t, err)
	out[0] = 100
	assert.Equal(t, 1.0, x[0])
}

func TestEvalDomainErrorsPropagate(t *testing.T) {
	ps := testSet(t)
	tree, err := Parse(ps, "div(1,x1)")
	require.NoError(t, err)
	prog, err := Compile(ps, tree)
	require.NoError(t, err)

	out, err := prog.Eval([]float64{0, 1})
	require.NoError(t, err)
	assert.True(t, math.IsInf(out[0], 1))
	assert.Equal(t, 1.0, out[1])
}

func TestCompileErrors(t *testing.T) {
	ps := testSet(t)
	other, err := NewPrimitiveSetFromNames(1, []string{"cos"}, false)
	require.NoError(t, err)
	cos, _ := other.Lookup("cos")

	_, err = Compile(ps, Tree{PrimitiveNode(cos), ps.VariableNode(0)})
	assert.ErrorIs(t, err, ErrUnknownPrimitive)

	_, err = Compile(ps, Tree{{Kind: KindVariable, Name: "x9", Index: 8}})
	assert.ErrorIs(t, err, ErrMalformedTree)

	prog, err := Compile(ps, Tree{ps.VariableNode(0)})
	require.NoError(t, err)
	_, err = prog.Eval()
	assert.Error(t, err)
	_, err = prog.Eval([]float64{1}, []float64{2})
	assert.Error(t, err)
}

func TestNewPrimitiveSetFromNames(t *testing.T) {
	_, err := NewPrimitiveSetFromNames(1, []string{"add", "pow"}, false)
	assert.ErrorIs(t, err, ErrUnknownPrimitive)

	ps, err := NewPrimitiveSetFromNames(2, []string{"add"}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, ps.NumTerminals())
	assert.InDelta(t, 0.75, ps.TerminalRatio(), 1e-12)

	ps.RenameArguments(map[string]string{"x1": "a"})
	idx, ok := ps.VariableIndex("a")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}
