package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
)

func testSet(t *testing.T) *PrimitiveSet {
	t.Helper()
	ps, err := NewPrimitiveSetFromNames(1, []string{"add", "sub", "mul", "div", "sin"}, true)
	require.NoError(t, err)
	return ps
}

func TestTreeShape(t *testing.T) {
	ps := testSet(t)

	tests := []struct {
		name   string
		src    string
		height int
		length int
		consts int
	}{
		{name: "terminal", src: "x1", height: 0, length: 1, consts: 0},
		{name: "linear", src: "add(mul(const,x1),const)", height: 2, length: 5, consts: 2},
		{name: "unary chain", src: "sin(sin(sin(x1)))", height: 3, length: 4, consts: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree, err := Parse(ps, test.src)
			require.NoError(t, err)
			assert.NoError(t, tree.Validate())
			assert.Equal(t, test.height, tree.Height())
			assert.Equal(t, test.length, tree.Len())
			assert.Equal(t, test.consts, tree.ConstCount())
		})
	}
}

func TestSearchSubtree(t *testing.T) {
	tree, err := Parse(testSet(t), "add(mul(x1,const),sin(x1))")
	require.NoError(t, err)

	begin, end := tree.SearchSubtree(1)
	assert.Equal(t, 1, begin)
	assert.Equal(t, 4, end)

	begin, end = tree.SearchSubtree(4)
	assert.Equal(t, 4, begin)
	assert.Equal(t, 6, end)

	_, end = tree.SearchSubtree(0)
	assert.Equal(t, tree.Len(), end)
}

func TestValidate(t *testing.T) {
	ps := testSet(t)
	add, _ := ps.Lookup("add")

	assert.ErrorIs(t, Tree{}.Validate(), ErrMalformedTree)
	assert.ErrorIs(t, Tree{PrimitiveNode(add), ps.VariableNode(0)}.Validate(), ErrMalformedTree)
	assert.ErrorIs(t, Tree{ps.VariableNode(0), ps.VariableNode(0)}.Validate(), ErrMalformedTree)
}

func TestApplyConstants(t *testing.T) {
	tree, err := Parse(testSet(t), "add(mul(const,x1),const)")
	require.NoError(t, err)

	idxs := tree.ConstIndices()
	require.Equal(t, []int{2, 4}, idxs)

	out, err := ApplyConstants(tree, idxs, []float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, "add(mul(2,x1),1)", out.String())
	assert.Equal(t, []float64{2, 1}, out.ConstValues())
	assert.NoError(t, CheckConstTags(out, idxs))
	for _, idx := range idxs {
		assert.Equal(t, constants.ConstTag, out[idx].Name)
	}

	// the input tree is left untouched
	assert.Equal(t, []float64{1, 1}, tree.ConstValues())

	_, err = ApplyConstants(tree, idxs, []float64{1})
	assert.Error(t, err)
	_, err = ApplyConstants(tree, []int{0}, []float64{1})
	assert.ErrorIs(t, err, ErrMalformedTree)
}

func TestCheckConstTagsDetectsLostTag(t *testing.T) {
	tree, err := Parse(testSet(t), "add(const,const)")
	require.NoError(t, err)
	idxs := tree.ConstIndices()

	tree[idxs[1]].Name = "2.5"
	assert.ErrorIs(t, CheckConstTags(tree, idxs), ErrConstTag)
	assert.Equal(t, 1, tree.ConstCount())
}

func TestEqualAndClone(t *testing.T) {
	tree, err := Parse(testSet(t), "sub(x1,3)")
	require.NoError(t, err)

	c := tree.Clone()
	assert.True(t, tree.Equal(c))

	c[2].Value = 4
	assert.False(t, tree.Equal(c))
	assert.Equal(t, "sub(x1,3)", tree.String())
}
