package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	ps := testSet(t)

	for _, src := range []string{
		"x1",
		"2.5",
		"add(mul(2,x1),1)",
		"div(sin(x1),sub(x1,-0.5))",
	} {
		tree, err := Parse(ps, src)
		require.NoError(t, err, src)
		assert.Equal(t, src, tree.String())
	}
}

func TestParseWhitespaceAndConst(t *testing.T) {
	tree, err := Parse(testSet(t), " add( const , x1 ) ")
	require.NoError(t, err)
	assert.Equal(t, "add(1,x1)", tree.String())
	assert.Equal(t, 1, tree.ConstCount())
}

func TestParseErrors(t *testing.T) {
	ps := testSet(t)

	tests := []struct {
		name string
		src  string
	}{
		{name: "empty", src: ""},
		{name: "unknown primitive", src: "pow(x1,2)"},
		{name: "unknown variable", src: "add(x2,1)"},
		{name: "missing operand", src: "add(x1)"},
		{name: "too many operands", src: "sin(x1,x1)"},
		{name: "trailing tokens", src: "x1 x1"},
		{name: "unclosed", src: "add(x1,1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(ps, test.src)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParseConstantsNeedConstTerminal(t *testing.T) {
	ps, err := NewPrimitiveSetFromNames(1, []string{"add", "mul"}, false)
	require.NoError(t, err)

	for _, src := range []string{"const", "add(x1,2)", "mul(const,x1)"} {
		_, err := Parse(ps, src)
		assert.ErrorIs(t, err, ErrParse, src)
	}

	tree, err := Parse(ps, "add(x1,mul(x1,x1))")
	require.NoError(t, err)
	assert.Equal(t, 0, tree.ConstCount())
}
