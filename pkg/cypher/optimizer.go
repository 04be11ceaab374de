package cypher

// Optimize performs two structural rewrites: filter pushdown and
// redundant-pipe elimination. Both rewrites preserve the result row
// multiset; Optimize never changes what a query returns, only the shape
// of the plan that computes it.
func Optimize(p Plan) Plan {
	switch v := p.(type) {
	case *Filter:
		input := Optimize(v.Input)
		if pipe, ok := input.(*Pipe); ok {
			if subsetOf(freeVars(v.Expr), boundVars(pipe.Left)) {
				return &Pipe{Left: &Filter{Input: pipe.Left, Expr: v.Expr}, Right: pipe.Right}
			}
		}
		return &Filter{Input: input, Expr: v.Expr}

	case *Pipe:
		left := Optimize(v.Left)
		right := Optimize(v.Right)
		if isNull(left) {
			return right
		}
		if isNull(right) {
			return left
		}
		return &Pipe{Left: left, Right: right}

	case *Project:
		return &Project{Input: Optimize(v.Input), Items: v.Items}

	case *OrderBy:
		return &OrderBy{Input: Optimize(v.Input), Items: v.Items}

	default:
		// NodeScan, LabelIndexScan, Expand, Null: leaves, nothing to rewrite.
		return p
	}
}

func isNull(p Plan) bool {
	_, ok := p.(*Null)
	return ok
}

// freeVars collects the set of variable names an expression reads.
func freeVars(e Expr) map[string]bool {
	out := map[string]bool{}
	collectFreeVars(e, out)
	return out
}

func collectFreeVars(e Expr, out map[string]bool) {
	switch v := e.(type) {
	case *And:
		collectFreeVars(v.Left, out)
		collectFreeVars(v.Right, out)
	case *Or:
		collectFreeVars(v.Left, out)
		collectFreeVars(v.Right, out)
	case *Comparison:
		out[v.Var] = true
	case *HasLabel:
		out[v.Var] = true
	}
}

// boundVars collects the set of variable names a plan introduces bindings
// for.
func boundVars(p Plan) map[string]bool {
	out := map[string]bool{}
	collectBoundVars(p, out)
	return out
}

func collectBoundVars(p Plan, out map[string]bool) {
	switch v := p.(type) {
	case *NodeScan:
		out[v.Var] = true
	case *LabelIndexScan:
		out[v.Var] = true
	case *Expand:
		out[v.Into] = true
	case *Filter:
		collectBoundVars(v.Input, out)
	case *Project:
		collectBoundVars(v.Input, out)
	case *OrderBy:
		collectBoundVars(v.Input, out)
	case *Pipe:
		collectBoundVars(v.Left, out)
		collectBoundVars(v.Right, out)
	}
}

func subsetOf(needles, haystack map[string]bool) bool {
	for k := range needles {
		if !haystack[k] {
			return false
		}
	}
	return true
}
