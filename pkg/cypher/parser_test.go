package cypher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleMatchReturn(t *testing.T) {
	q, err := Parse("MATCH (u:User) RETURN u.name")
	require.NoError(t, err)
	require.Len(t, q.Patterns, 1)
	require.Equal(t, "u", q.Patterns[0].Left.Var)
	require.Equal(t, "User", q.Patterns[0].Left.Label)
	require.Nil(t, q.Patterns[0].Rel)
	require.Equal(t, []ReturnItem{{Var: "u", Prop: "name"}}, q.Return)
}

func TestParseRelationPattern(t *testing.T) {
	q, err := Parse("MATCH (a:User)-[:FRIEND]->(b) RETURN a.name, b.name")
	require.NoError(t, err)
	require.Len(t, q.Patterns, 1)
	pat := q.Patterns[0]
	require.NotNil(t, pat.Rel)
	require.Equal(t, "FRIEND", pat.Rel.Type)
	require.Equal(t, DirOutgoing, pat.Rel.Dir)
	require.Equal(t, "b", pat.Right.Var)
	require.Len(t, q.Return, 2)
}

func TestParseIncomingRelation(t *testing.T) {
	q, err := Parse("MATCH (a)<-[:FOLLOWS]-(b) RETURN a.name")
	require.NoError(t, err)
	require.Equal(t, DirIncoming, q.Patterns[0].Rel.Dir)
}

func TestParseWhereAndOrderBy(t *testing.T) {
	q, err := Parse("MATCH (u:User)-[:FRIEND]->(f) WHERE f.age >= 20 RETURN f.age ORDER BY f.age DESC")
	require.NoError(t, err)
	require.NotNil(t, q.Where)
	cmp, ok := q.Where.(*Comparison)
	require.True(t, ok)
	require.Equal(t, "f", cmp.Var)
	require.Equal(t, "age", cmp.Prop)
	require.Equal(t, OpGe, cmp.Op)
	require.Equal(t, int64(20), cmp.Value)
	require.Equal(t, []OrderItem{{Var: "f", Prop: "age", Desc: true}}, q.OrderBy)
}

func TestParseAndOr(t *testing.T) {
	q, err := Parse("MATCH (u) WHERE u.age >= 20 AND u.age < 30 RETURN u.age")
	require.NoError(t, err)
	and, ok := q.Where.(*And)
	require.True(t, ok)
	_, ok = and.Left.(*Comparison)
	require.True(t, ok)
	_, ok = and.Right.(*Comparison)
	require.True(t, ok)
}

func TestParseInlinePropertyMap(t *testing.T) {
	q, err := Parse(`MATCH (u:User {name: "Alice", age: 30}) RETURN u`)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "Alice", "age": int64(30)}, q.Patterns[0].Left.Props)
}

func TestParseMultiplePatterns(t *testing.T) {
	q, err := Parse("MATCH (a:User), (b:User) RETURN a.name, b.name")
	require.NoError(t, err)
	require.Len(t, q.Patterns, 2)
}

func TestParseEmptyExpressionIsError(t *testing.T) {
	_, err := Parse("MATCH (u) WHERE RETURN u")
	require.Error(t, err)
}

func TestParseMissingReturnIsError(t *testing.T) {
	_, err := Parse("MATCH (u)")
	require.Error(t, err)
}

func TestParseLiteralKinds(t *testing.T) {
	q, err := Parse("MATCH (u) WHERE u.active = true RETURN u")
	require.NoError(t, err)
	cmp := q.Where.(*Comparison)
	require.Equal(t, true, cmp.Value)

	q, err = Parse("MATCH (u) WHERE u.deleted = null RETURN u")
	require.NoError(t, err)
	cmp = q.Where.(*Comparison)
	require.Nil(t, cmp.Value)
}
