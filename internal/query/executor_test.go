package query

import (
	"context"
	"math"
	"testing"

	"github.com/angelmondragon/ecomagent-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ecomagent-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T, opts Options) (*Executor, func(v any)) {
	t.Helper()
	client := dbtest.NewSQLite(t)
	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	seed := func(v any) {
		require.NoError(t, client.DB().Create(v).Error)
	}
	return NewExecutor(sqlDB, opts, logger.Nop(), nil), seed
}

func TestExecuteInvalidSQLReturnsEmptyRows(t *testing.T) {
	exec, _ := newExecutor(t, Options{ReadOnly: true})

	res := exec.Execute(context.Background(), "SELECT nope FROM missing_table")

	require.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Equal(t, StatusFailed, res.Status())
	assert.True(t, pkgerrors.HasCode(res.Err, pkgerrors.CodeQueryFailed))
}

func TestExecuteDistinguishesEmptyFromFailed(t *testing.T) {
	exec, _ := newExecutor(t, Options{ReadOnly: true})

	res := exec.Execute(context.Background(), "SELECT product_id FROM products")

	require.NoError(t, res.Err)
	assert.Equal(t, StatusEmpty, res.Status())
	assert.Equal(t, []string{"product_id"}, res.Columns)
}

func TestExecuteReturnsRowMaps(t *testing.T) {
	exec, seed := newExecutor(t, Options{ReadOnly: true})
	seed(&[]models.SalesRecord{
		{ProductID: "A", TotalSales: 100, Date: "2024-01-01"},
		{ProductID: "B", TotalSales: 250, Date: "2024-01-01"},
	})

	res := exec.Execute(context.Background(), "SELECT product_id, total_sales FROM total_sales_metrics ORDER BY product_id")

	require.NoError(t, res.Err)
	assert.Equal(t, StatusOK, res.Status())
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "A", res.Rows[0]["product_id"])
	assert.Equal(t, 250.0, res.Rows[1]["total_sales"])

	sum := exec.Execute(context.Background(), "SELECT SUM(total_sales) AS total_sales FROM total_sales_metrics")
	require.Len(t, sum.Rows, 1)
	assert.Equal(t, 350.0, sum.Rows[0]["total_sales"])
}

func TestExecuteRejectsWritesWithoutTouchingStore(t *testing.T) {
	exec, seed := newExecutor(t, Options{ReadOnly: true})
	seed(&models.Product{ProductID: "A"})

	res := exec.Execute(context.Background(), "DELETE FROM products")
	assert.Equal(t, StatusRejected, res.Status())
	assert.NotNil(t, res.Rows)

	count := exec.Execute(context.Background(), "SELECT COUNT(*) AS n FROM products")
	require.Len(t, count.Rows, 1)
	assert.EqualValues(t, 1, count.Rows[0]["n"])
}

func TestExecuteWithoutGuardAllowsWrites(t *testing.T) {
	exec, seed := newExecutor(t, Options{ReadOnly: false})
	seed(&models.Product{ProductID: "A"})

	res := exec.Execute(context.Background(), "DELETE FROM products")
	require.NoError(t, res.Err)

	count := exec.Execute(context.Background(), "SELECT COUNT(*) AS n FROM products")
	assert.EqualValues(t, 0, count.Rows[0]["n"])
}

func TestExecuteCapsRows(t *testing.T) {
	exec, seed := newExecutor(t, Options{ReadOnly: true, MaxRows: 2})
	seed(&[]models.Product{{ProductID: "A"}, {ProductID: "B"}, {ProductID: "C"}})

	res := exec.Execute(context.Background(), "SELECT product_id FROM products")

	assert.Len(t, res.Rows, 2)
	assert.True(t, res.Truncated)
}

func TestExecuteRendersNonFiniteFloatsAsText(t *testing.T) {
	exec, _ := newExecutor(t, Options{ReadOnly: true})

	res := exec.Execute(context.Background(), "SELECT 1e999 AS x, -1e999 AS y, 2 AS z")

	require.NoError(t, res.Err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "+Inf", res.Rows[0]["x"])
	assert.Equal(t, "-Inf", res.Rows[0]["y"])
	assert.Equal(t, int64(2), res.Rows[0]["z"])
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "NaN", normalizeValue(math.NaN()))
	assert.Equal(t, "+Inf", normalizeValue(float32(math.Inf(1))))
	assert.Equal(t, "abc", normalizeValue([]byte("abc")))
	assert.Equal(t, 1.5, normalizeValue(1.5))
	assert.Nil(t, normalizeValue(nil))
}
