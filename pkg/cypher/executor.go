package cypher

import (
	"iter"
	"sort"

	"github.com/orneryd/nornicdb/pkg/graph"
	"github.com/orneryd/nornicdb/pkg/storage"
)

// Row maps a bound variable (or "var.prop" for a projected scalar) to its
// value: a *graph.Node, a *graph.Edge, or a property scalar.
type Row map[string]any

// ExecContext is the read-only view of the graph an executing plan consults.
// It carries no transaction handle of its own: the executor only needs
// read-snapshot semantics, which a direct Store/Indexes read already
// provides since nothing outside the Coordinator mutates them.
type ExecContext struct {
	Store   storage.Store
	Indexes *storage.Indexes
}

// Rows is the lazy sequence of result rows a plan produces, paired with an
// error that, when non-nil, ends the sequence.
type Rows = iter.Seq2[Row, error]

// Execute compiles, plans, optimizes, and runs source against ctx,
// returning its lazy row sequence.
func Execute(ctx ExecContext, source string) (Rows, error) {
	q, err := Parse(source)
	if err != nil {
		return nil, err
	}
	p := Optimize(PlanQuery(q))
	return execPlan(p, ctx), nil
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq Rows) ([]Row, error) {
	var out []Row
	for row, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func execPlan(p Plan, ctx ExecContext) Rows {
	switch v := p.(type) {
	case *Null:
		return func(yield func(Row, error) bool) {
			yield(Row{}, nil)
		}

	case *NodeScan:
		return func(yield func(Row, error) bool) {
			for _, n := range ctx.Store.AllNodes() {
				if !yield(Row{v.Var: n}, nil) {
					return
				}
			}
		}

	case *LabelIndexScan:
		return func(yield func(Row, error) bool) {
			for _, id := range ctx.Indexes.NodesByLabel(v.Label) {
				n, ok := ctx.Store.GetNode(id)
				if !ok {
					continue
				}
				if !yield(Row{v.Var: n}, nil) {
					return
				}
			}
		}

	case *Filter:
		return execFilter(v, ctx)

	case *Project:
		return execProject(v, ctx)

	case *OrderBy:
		return execOrderBy(v, ctx)

	case *Pipe:
		return execPipe(v, ctx)

	case *Expand:
		// Only meaningful as the right side of a Pipe, which supplies the
		// input row via execRight. Executed standalone it has no context
		// to read FromVar from, so it yields nothing.
		return func(yield func(Row, error) bool) {}

	default:
		return func(yield func(Row, error) bool) {}
	}
}

func execFilter(v *Filter, ctx ExecContext) Rows {
	return func(yield func(Row, error) bool) {
		for row, err := range execPlan(v.Input, ctx) {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			ok, err := evalExpr(v.Expr, row)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if ok {
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}

func execProject(v *Project, ctx ExecContext) Rows {
	return func(yield func(Row, error) bool) {
		for row, err := range execPlan(v.Input, ctx) {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			out := make(Row, len(v.Items))
			for _, item := range v.Items {
				val := row[item.Var]
				if item.Prop == "" {
					out[item.Var] = val
					continue
				}
				out[item.Var+"."+item.Prop] = propValue(val, item.Prop)
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

func execOrderBy(v *OrderBy, ctx ExecContext) Rows {
	return func(yield func(Row, error) bool) {
		rows, err := Collect(execPlan(v.Input, ctx))
		if err != nil {
			yield(nil, err)
			return
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return lessRows(rows[i], rows[j], v.Items)
		})
		for _, row := range rows {
			if !yield(row, nil) {
				return
			}
		}
	}
}

func execPipe(v *Pipe, ctx ExecContext) Rows {
	return func(yield func(Row, error) bool) {
		for leftRow, err := range execPlan(v.Left, ctx) {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			for rightRow, err := range execRight(v.Right, ctx, leftRow) {
				if err != nil {
					if !yield(nil, err) {
						return
					}
					continue
				}
				if !yield(mergeRows(leftRow, rightRow), nil) {
					return
				}
			}
		}
	}
}

// execRight runs the right side of a Pipe. An *Expand reads its traversal
// context (the node bound to FromVar) out of leftRow; every other plan
// kind is self-contained and runs independently of leftRow, giving the
// cartesian join semantics multi-pattern MATCH needs.
func execRight(p Plan, ctx ExecContext, leftRow Row) Rows {
	if exp, ok := p.(*Expand); ok {
		return execExpand(exp, ctx, leftRow)
	}
	return execPlan(p, ctx)
}

func execExpand(exp *Expand, ctx ExecContext, leftRow Row) Rows {
	return func(yield func(Row, error) bool) {
		fromNode, ok := leftRow[exp.FromVar].(*graph.Node)
		if !ok {
			return
		}

		var edgeIDs []graph.EdgeID
		switch exp.Dir {
		case DirOutgoing:
			edgeIDs = ctx.Indexes.OutgoingEdgeIDs(fromNode.ID)
		case DirIncoming:
			edgeIDs = ctx.Indexes.IncomingEdgeIDs(fromNode.ID)
		}

		for _, eid := range edgeIDs {
			edge, ok := ctx.Store.GetEdge(eid)
			if !ok || edge.Type != exp.Type {
				continue
			}
			endpointID := edge.To
			if exp.Dir == DirIncoming {
				endpointID = edge.From
			}
			endpoint, ok := ctx.Store.GetNode(endpointID)
			if !ok {
				continue
			}
			if !yield(Row{exp.Into: endpoint}, nil) {
				return
			}
		}
	}
}

func mergeRows(l, r Row) Row {
	out := make(Row, len(l)+len(r))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range r {
		out[k] = v
	}
	return out
}

func propValue(val any, prop string) any {
	switch v := val.(type) {
	case *graph.Node:
		return v.Properties[prop]
	case *graph.Edge:
		return v.Properties[prop]
	default:
		return nil
	}
}

// evalExpr evaluates a WHERE expression against row. and/or short-circuit;
// comparisons delegate to graph.Equal/graph.Compare for type-error handling.
func evalExpr(e Expr, row Row) (bool, error) {
	switch v := e.(type) {
	case *And:
		left, err := evalExpr(v.Left, row)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return evalExpr(v.Right, row)

	case *Or:
		left, err := evalExpr(v.Left, row)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evalExpr(v.Right, row)

	case *HasLabel:
		node, ok := row[v.Var].(*graph.Node)
		return ok && node.HasLabel(v.Label), nil

	case *Comparison:
		left := propValue(row[v.Var], v.Prop)
		right := v.Value
		switch v.Op {
		case OpEq:
			return graph.Equal(left, right), nil
		case OpNeq:
			return !graph.Equal(left, right), nil
		default:
			cmp, err := graph.Compare(left, right)
			if err != nil {
				return false, &TypeError{A: left, B: right}
			}
			switch v.Op {
			case OpLt:
				return cmp < 0, nil
			case OpLe:
				return cmp <= 0, nil
			case OpGt:
				return cmp > 0, nil
			case OpGe:
				return cmp >= 0, nil
			}
			return false, nil
		}

	default:
		return false, nil
	}
}

func rowKey(it OrderItem) string {
	if it.Prop == "" {
		return it.Var
	}
	return it.Var + "." + it.Prop
}

// lessRows orders two already-projected rows by Items, left to right.
// A pair whose values can't be ordered (mismatched types) is treated as a
// tie on that key rather than aborting the sort: ORDER BY has no error
// return, so ties are the only consistent fallback.
func lessRows(a, b Row, items []OrderItem) bool {
	for _, it := range items {
		key := rowKey(it)
		cmp, err := graph.Compare(a[key], b[key])
		if err != nil {
			continue
		}
		if cmp == 0 {
			continue
		}
		if it.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}
