package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
)

var (
	ErrMalformedTree    = errors.New("malformed expression tree")
	ErrUnknownPrimitive = errors.New("unknown primitive")
	ErrConstTag         = errors.New("constant slot lost its tag")
)

// Kind identifies what a node is.
type Kind int

const (
	KindPrimitive Kind = iota
	KindVariable
	KindConstant
)

// Node is one element of a prefix-linearized expression tree.
type Node struct {
	Kind  Kind
	Name  string
	Arity int     // operators only
	Index int     // variables only: input column
	Value float64 // constants only
}

// IsConstSlot reports whether n is an optimizable constant.
func (n Node) IsConstSlot() bool {
	return n.Kind == KindConstant && n.Name == constants.ConstTag
}

// Tree is an expression tree stored in prefix order.
type Tree []Node

// Clone returns an independent copy of t.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	c := make(Tree, len(t))
	copy(c, t)
	return c
}

// Len is the number of nodes.
func (t Tree) Len() int {
	return len(t)
}

// Height is the depth of the deepest node; a single terminal has height 0.
func (t Tree) Height() int {
	stack := []int{0}
	max := 0
	for _, n := range t {
		if len(stack) == 0 {
			break
		}
		depth := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if depth > max {
			max = depth
		}
		for i := 0; i < n.Arity; i++ {
			stack = append(stack, depth+1)
		}
	}
	return max
}

// SearchSubtree returns the half-open range [begin, end) of the subtree rooted at begin.
func (t Tree) SearchSubtree(begin int) (int, int) {
	end := begin + 1
	total := t[begin].Arity
	for total > 0 && end < len(t) {
		total += t[end].Arity - 1
		end++
	}
	return begin, end
}

// Validate checks that the node arities describe exactly one complete tree.
func (t Tree) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty tree", ErrMalformedTree)
	}
	open := 1
	for i, n := range t {
		if open == 0 {
			return fmt.Errorf("%w: trailing nodes from index %d", ErrMalformedTree, i)
		}
		if n.Kind != KindPrimitive && n.Arity != 0 {
			return fmt.Errorf("%w: terminal %q at %d has arity %d", ErrMalformedTree, n.Name, i, n.Arity)
		}
		open += n.Arity - 1
	}
	if open != 0 {
		return fmt.Errorf("%w: %d missing operands", ErrMalformedTree, open)
	}
	return nil
}

// Equal reports structural equality, including constant values.
func (t Tree) Equal(o Tree) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// ConstIndices returns the positions of every constant slot, in prefix order.
func (t Tree) ConstIndices() []int {
	var idxs []int
	for i, n := range t {
		if n.IsConstSlot() {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// ConstCount is the number of constant slots.
func (t Tree) ConstCount() int {
	n := 0
	for _, node := range t {
		if node.IsConstSlot() {
			n++
		}
	}
	return n
}

// ConstValues returns the values held by the constant slots, in prefix order.
func (t Tree) ConstValues() []float64 {
	var vals []float64
	for _, n := range t {
		if n.IsConstSlot() {
			vals = append(vals, n.Value)
		}
	}
	return vals
}

// ApplyConstants returns a copy of t with values written into the slots at idxs.
// The written nodes are always tagged as constant slots.
func ApplyConstants(t Tree, idxs []int, values []float64) (Tree, error) {
	if len(idxs) != len(values) {
		return nil, fmt.Errorf("%d slots but %d values", len(idxs), len(values))
	}
	out := t.Clone()
	for i, idx := range idxs {
		if idx < 0 || idx >= len(out) || out[idx].Kind != KindConstant {
			return nil, fmt.Errorf("%w: index %d is not a constant", ErrMalformedTree, idx)
		}
		out[idx] = ConstNode(values[i])
	}
	return out, nil
}

// CheckConstTags verifies every position in idxs still holds a tagged constant slot.
func CheckConstTags(t Tree, idxs []int) error {
	for _, idx := range idxs {
		if idx < 0 || idx >= len(t) || !t[idx].IsConstSlot() {
			return fmt.Errorf("%w: index %d", ErrConstTag, idx)
		}
	}
	return nil
}

// String renders t as nested prefix calls, e.g. add(mul(2,x1),1).
func (t Tree) String() string {
	if len(t) == 0 {
		return ""
	}
	var sb strings.Builder
	t.write(&sb, 0)
	return sb.String()
}

func (t Tree) write(sb *strings.Builder, i int) int {
	n := t[i]
	switch n.Kind {
	case KindConstant:
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
		return i + 1
	case KindVariable:
		sb.WriteString(n.Name)
		return i + 1
	}
	sb.WriteString(n.Name)
	sb.WriteByte('(')
	next := i + 1
	for a := 0; a < n.Arity && next < len(t); a++ {
		if a > 0 {
			sb.WriteByte(',')
		}
		next = t.write(sb, next)
	}
	sb.WriteByte(')')
	return next
}
