package cypher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanNodeWithoutLabelIsNodeScan(t *testing.T) {
	q, err := Parse("MATCH (u) RETURN u")
	require.NoError(t, err)
	p := PlanQuery(q)

	project, ok := p.(*Project)
	require.True(t, ok)
	pipe, ok := project.Input.(*Pipe)
	require.True(t, ok)
	_, ok = pipe.Right.(*NodeScan)
	require.True(t, ok)
}

func TestPlanNodeWithLabelIsLabelIndexScan(t *testing.T) {
	q, err := Parse("MATCH (u:User) RETURN u")
	require.NoError(t, err)
	p := PlanQuery(q)

	pipe := p.(*Project).Input.(*Pipe)
	scan, ok := pipe.Right.(*LabelIndexScan)
	require.True(t, ok)
	require.Equal(t, "User", scan.Label)
}

func TestPlanInlinePropsAddsFilter(t *testing.T) {
	q, err := Parse(`MATCH (u:User {name: "Alice"}) RETURN u`)
	require.NoError(t, err)
	p := PlanQuery(q)

	pipe := p.(*Project).Input.(*Pipe)
	filter, ok := pipe.Right.(*Filter)
	require.True(t, ok)
	cmp, ok := filter.Expr.(*Comparison)
	require.True(t, ok)
	require.Equal(t, "name", cmp.Prop)
}

func TestPlanZeroLengthPropMapAddsNoFilter(t *testing.T) {
	q, err := Parse("MATCH (u:User) RETURN u")
	require.NoError(t, err)
	p := PlanQuery(q)

	pipe := p.(*Project).Input.(*Pipe)
	_, ok := pipe.Right.(*LabelIndexScan)
	require.True(t, ok, "empty prop map must not wrap the scan in a Filter")
}

func TestPlanRelationProducesExpandUnderPipe(t *testing.T) {
	q, err := Parse("MATCH (a:User)-[:FRIEND]->(b) RETURN a.name, b.name")
	require.NoError(t, err)
	p := PlanQuery(q)

	outer := p.(*Project).Input.(*Pipe)
	inner, ok := outer.Right.(*Pipe)
	require.True(t, ok)
	expand, ok := inner.Right.(*Expand)
	require.True(t, ok)
	require.Equal(t, "FRIEND", expand.Type)
	require.Equal(t, "a", expand.FromVar)
	require.Equal(t, "b", expand.Into)
}

func TestPlanWhereAddsOuterFilter(t *testing.T) {
	q, err := Parse("MATCH (u:User) WHERE u.age >= 20 RETURN u.age")
	require.NoError(t, err)
	p := PlanQuery(q)

	project := p.(*Project)
	_, ok := project.Input.(*Filter)
	require.True(t, ok)
}

func TestPlanOrderByWrapsProject(t *testing.T) {
	q, err := Parse("MATCH (u:User) RETURN u.age ORDER BY u.age DESC")
	require.NoError(t, err)
	p := PlanQuery(q)

	ob, ok := p.(*OrderBy)
	require.True(t, ok)
	_, ok = ob.Input.(*Project)
	require.True(t, ok)
}
