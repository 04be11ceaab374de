package cypher

// Plan is the closed union of executable plan operators: a fixed,
// compile-time-known operator set, not open polymorphism.
// Null is the one addition beyond that list: the identity element the
// planner folds multiple patterns over, always eliminated by the optimizer
// (see redundant-pipe elimination in optimizer.go) but also directly
// executable, so an unoptimized plan still runs correctly.
type Plan interface {
	plan()
}

// Null is the empty plan: it yields exactly one row with no bindings. A
// Pipe with Null on either side is equivalent to the other side alone.
type Null struct{}

func (*Null) plan() {}

// NodeScan binds Var to every live node, unfiltered.
type NodeScan struct {
	Var string
}

func (*NodeScan) plan() {}

// LabelIndexScan binds Var to every node carrying Label, via Indexes.
type LabelIndexScan struct {
	Label string
	Var   string
}

func (*LabelIndexScan) plan() {}

// Expand reads the node bound to FromVar in its input row, follows edges of
// Type in direction Dir, and binds Into to each reachable endpoint. Expand
// only appears as the right side of a Pipe: it has no input plan of its
// own and instead consumes the left side's row as traversal context.
type Expand struct {
	FromVar string
	Type    string
	Dir     Direction
	Into    string
}

func (*Expand) plan() {}

// Filter keeps only rows for which Expr evaluates true.
type Filter struct {
	Input Plan
	Expr  Expr
}

func (*Filter) plan() {}

// Project rewrites each row to exactly the keys named by Items.
type Project struct {
	Input Plan
	Items []ReturnItem
}

func (*Project) plan() {}

// OrderBy sorts Input's rows by Items, left to right, ascending by default.
type OrderBy struct {
	Input Plan
	Items []OrderItem
}

func (*OrderBy) plan() {}

// Pipe runs Left, and for each of its rows runs Right, merging the two into
// one output row per combination.
type Pipe struct {
	Left  Plan
	Right Plan
}

func (*Pipe) plan() {}

// PlanQuery translates a parsed Query into an (unoptimized) operator tree.
func PlanQuery(q *Query) Plan {
	var p Plan = planPatterns(q.Patterns)

	if q.Where != nil {
		p = &Filter{Input: p, Expr: q.Where}
	}

	p = &Project{Input: p, Items: q.Return}

	if len(q.OrderBy) > 0 {
		p = &OrderBy{Input: p, Items: q.OrderBy}
	}

	return p
}

// planPatterns left-folds the comma-separated patterns with Pipe, seeded by
// Null: the optimizer's redundant-pipe elimination is what collapses the
// fold's base case away rather than the planner special-casing the first
// pattern.
func planPatterns(patterns []Pattern) Plan {
	var acc Plan = &Null{}
	for _, pat := range patterns {
		acc = &Pipe{Left: acc, Right: planPattern(pat)}
	}
	return acc
}

func planPattern(pat Pattern) Plan {
	left := scanForNode(pat.Left)
	left = wrapPropFilters(left, pat.Left.Var, pat.Left.Props)

	if pat.Rel == nil {
		return left
	}

	expand := &Expand{FromVar: pat.Left.Var, Type: pat.Rel.Type, Dir: pat.Rel.Dir, Into: pat.Right.Var}
	var joined Plan = &Pipe{Left: left, Right: expand}

	if pat.Right.Label != "" {
		joined = &Filter{Input: joined, Expr: &HasLabel{Var: pat.Right.Var, Label: pat.Right.Label}}
	}
	joined = wrapPropFilters(joined, pat.Right.Var, pat.Right.Props)

	return joined
}

func scanForNode(n NodePattern) Plan {
	if n.Label != "" {
		return &LabelIndexScan{Label: n.Label, Var: n.Var}
	}
	return &NodeScan{Var: n.Var}
}

// wrapPropFilters adds one Filter per inline property entry, wrapping the
// scan. A nil or empty map adds nothing.
func wrapPropFilters(inner Plan, varName string, props map[string]any) Plan {
	for k, v := range props {
		inner = &Filter{Input: inner, Expr: &Comparison{Var: varName, Prop: k, Op: OpEq, Value: v}}
	}
	return inner
}
