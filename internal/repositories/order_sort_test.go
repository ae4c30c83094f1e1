package repositories

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortSQL(t *testing.T, sort map[string]string) string {
	t.Helper()
	query, _, err := applyOrderSort(sq.Select("id").From(orderTable), sort).ToSql()
	require.NoError(t, err)
	return query
}

func TestApplyOrderSort_StablePrecedence(t *testing.T) {
	sort := map[string]string{
		"client_name": "asc",
		"status":      "DESC",
		"created_at":  "desc",
		"password":    "asc",
	}
	want := "SELECT id FROM orders ORDER BY created_at DESC, status DESC, client_name ASC"
	// Порядок обхода map случаен, поэтому проверяем много раз.
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, sortSQL(t, sort))
	}
}

func TestApplyOrderSort_Default(t *testing.T) {
	assert.Equal(t, "SELECT id FROM orders ORDER BY created_at DESC", sortSQL(t, nil))
	assert.Equal(t, "SELECT id FROM orders ORDER BY created_at DESC", sortSQL(t, map[string]string{"1; DROP TABLE orders": "asc"}))
	assert.Equal(t, "SELECT id FROM orders ORDER BY updated_at ASC", sortSQL(t, map[string]string{"updated_at": "sideways"}))
}
