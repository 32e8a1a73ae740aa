package sqldeps

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrizzly_SQLDeps_ExtractsFromAndJoin(t *testing.T) {
	t.Parallel()
	sql := `SELECT o.id FROM orders o JOIN users u ON u.id = o.user_id JOIN regions r ON r.id = u.region_id`
	require.Equal(t, []string{"orders", "users", "regions"}, ExtractDependencies(sql))
}

func TestGrizzly_SQLDeps_CaseInsensitiveTokens(t *testing.T) {
	t.Parallel()
	sql := `select * from Orders o from orders inner join Users u`
	deps := ExtractDependencies(sql)
	require.Contains(t, deps, "Orders")
	require.Contains(t, deps, "Users")
}

func TestGrizzly_SQLDeps_DeduplicatesRepeatedReferences(t *testing.T) {
	t.Parallel()
	sql := `SELECT * FROM orders WHERE id IN (SELECT order_id FROM orders)`
	require.Equal(t, []string{"orders"}, ExtractDependencies(sql))
}

func TestGrizzly_SQLDeps_QualifiedNames(t *testing.T) {
	t.Parallel()
	sql := `SELECT * FROM schema_a.orders JOIN schema_b.users ON true`
	require.Equal(t, []string{"schema_a.orders", "schema_b.users"}, ExtractDependencies(sql))
}
