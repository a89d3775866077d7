package sqlfront

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/InfedmixDBMS/queryopt/algebra"
)

// S1: single-table selection.
func TestParseSingleTableSelection(t *testing.T) {
	tree, err := Parse("SELECT emp.name, emp.salary FROM employees emp WHERE emp.salary > 50000")
	require.NoError(t, err)

	proj, ok := tree.(*algebra.ProjectNode)
	require.True(t, ok)
	require.Equal(t, "employees.name, employees.salary", projAttrString(proj))

	sel, ok := proj.Child.(*algebra.SelectNode)
	require.True(t, ok)
	require.Equal(t, "employees.salary > 50000", sel.Condition.String())

	table, ok := sel.Child.(*algebra.TableNode)
	require.True(t, ok)
	require.Equal(t, "employees", table.Ref.Relation)
	require.Equal(t, "emp", table.Ref.Alias)

	require.ElementsMatch(t, []string{"employees"}, algebra.TableNames(tree))
}

func projAttrString(p *algebra.ProjectNode) string {
	out := ""
	for i, a := range p.Attrs {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out
}

// S2: three-way join with a conjunctive predicate, alias resolution, and
// explicit JOIN...ON clauses.
func TestParseThreeWayJoin(t *testing.T) {
	sqlText := `SELECT s.name, d.dept_name, p.project_name
FROM students s
JOIN departments d ON s.dept_id = d.id
JOIN projects p ON s.project_id = p.id
WHERE s.age > 20 AND d.budget > 100000`

	tree, err := Parse(sqlText)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"students", "departments", "projects"}, algebra.TableNames(tree))

	var joinCount int
	var walk func(n algebra.Node)
	walk = func(n algebra.Node) {
		if n == nil {
			return
		}
		if _, ok := n.(*algebra.JoinNode); ok {
			joinCount++
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(tree)
	require.Equal(t, 2, joinCount)

	proj := tree.(*algebra.ProjectNode)
	sel := proj.Child.(*algebra.SelectNode)
	require.Equal(t, "(students.age > 20 AND departments.budget > 100000)", sel.Condition.String())
}

func TestParseOrderByAndLimit(t *testing.T) {
	tree, err := Parse("SELECT t.id FROM t ORDER BY t.id DESC LIMIT 10")
	require.NoError(t, err)

	proj := tree.(*algebra.ProjectNode)
	limit, ok := proj.Child.(*algebra.LimitNode)
	require.True(t, ok)
	require.Equal(t, int64(10), limit.N)

	orderBy, ok := limit.Child.(*algebra.OrderByNode)
	require.True(t, ok)
	require.Len(t, orderBy.Keys, 1)
	require.Equal(t, algebra.Desc, orderBy.Keys[0].Direction)
}

func TestParseRejectsMissingFrom(t *testing.T) {
	_, err := Parse("SELECT a.b WHERE a.b = 1")
	require.Error(t, err)
}

func TestParseRejectsMissingSelect(t *testing.T) {
	_, err := Parse("FROM t WHERE t.a = 1")
	require.Error(t, err)
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	l := NewLexer(strings.NewReader("SELECT foo FROM bar"))
	require.NoError(t, l.Run())

	want := []struct {
		typ TokenType
		val string
	}{
		{KeywordToken, "SELECT"},
		{IdentifierToken, "foo"},
		{KeywordToken, "FROM"},
		{IdentifierToken, "bar"},
		{EOFToken, ""},
	}
	for _, w := range want {
		tk := l.Next()
		require.NotNil(t, tk)
		require.Equal(t, w.typ, tk.Type)
	}
}
