package expr

import (
	"fmt"
)

// Program is a compiled tree, callable with one column per input variable.
type Program struct {
	tree  Tree
	ops   []func(args []float64) float64
	nVars int
}

// Compile checks t against ps and binds each operator to its function.
func Compile(ps *PrimitiveSet, t Tree) (*Program, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	ops := make([]func(args []float64) float64, len(t))
	for i, n := range t {
		switch n.Kind {
		case KindPrimitive:
			p, ok := ps.Lookup(n.Name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownPrimitive, n.Name)
			}
			if p.Arity != n.Arity {
				return nil, fmt.Errorf("%w: %s has arity %d, node says %d", ErrMalformedTree, n.Name, p.Arity, n.Arity)
			}
			ops[i] = p.Fn
		case KindVariable:
			if n.Index < 0 || n.Index >= ps.NumVariables() {
				return nil, fmt.Errorf("%w: variable index %d out of range", ErrMalformedTree, n.Index)
			}
		case KindConstant:
		default:
			return nil, fmt.Errorf("%w: unknown node kind %d", ErrMalformedTree, n.Kind)
		}
	}
	return &Program{tree: t, ops: ops, nVars: ps.NumVariables()}, nil
}

// Eval runs the program over column-major inputs and returns one prediction per sample.
// Non-finite intermediate values propagate; callers decide how to score them.
func (p *Program) Eval(cols ...[]float64) ([]float64, error) {
	if len(cols) != p.nVars {
		return nil, fmt.Errorf("program expects %d input columns, got %d", p.nVars, len(cols))
	}
	n := 1
	if len(cols) > 0 {
		n = len(cols[0])
		for i, c := range cols {
			if len(c) != n {
				return nil, fmt.Errorf("input column %d has %d samples, expected %d", i, len(c), n)
			}
		}
	}

	stack := make([][]float64, 0, len(p.tree))
	args := make([]float64, 0, 4)
	for i := len(p.tree) - 1; i >= 0; i-- {
		node := p.tree[i]
		switch node.Kind {
		case KindVariable:
			stack = append(stack, cols[node.Index])
		case KindConstant:
			v := make([]float64, n)
			for j := range v {
				v[j] = node.Value
			}
			stack = append(stack, v)
		case KindPrimitive:
			top := len(stack)
			operands := stack[top-node.Arity:]
			out := make([]float64, n)
			for j := 0; j < n; j++ {
				args = args[:0]
				// operands of node sit on the stack in reverse argument order
				for a := node.Arity - 1; a >= 0; a-- {
					args = append(args, operands[a][j])
				}
				out[j] = p.ops[i](args)
			}
			stack = append(stack[:top-node.Arity], out)
		}
	}
	if p.tree[0].Kind == KindVariable {
		out := make([]float64, n)
		copy(out, stack[0])
		return out, nil
	}
	return stack[0], nil
}
