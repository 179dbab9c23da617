package sales

import (
	"context"
	"testing"

	"github.com/angelmondragon/ecomagent-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ecomagent-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(dbtest.NewSQLite(t).DB())
}

func TestInsertProductsIgnoresDuplicates(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	n, err := repo.InsertProducts(ctx, []models.Product{
		models.PlaceholderProduct("A1"),
		models.PlaceholderProduct("B2"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.InsertProducts(ctx, []models.Product{models.PlaceholderProduct("A1")})
	require.NoError(t, err)

	count, err := repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestSalesAllowDuplicatesAndDanglingProducts(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	rows := []models.SalesRecord{
		{ProductID: "missing", TotalSales: 100, Revenue: 100, Date: "2024-01-01"},
		{ProductID: "missing", TotalSales: 250, Revenue: 250, Date: "2024-01-01"},
	}
	n, err := repo.InsertSales(ctx, rows)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	total, err := repo.TotalSales(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 350.0, total, 1e-9)
}

func TestAverageRoASSkipsZeroSpend(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.InsertAdMetrics(ctx, []models.AdMetric{
		{ProductID: "A", AdSpend: 0, AdSales: 10},
		{ProductID: "B", AdSpend: 5, AdSales: 10},
	})
	require.NoError(t, err)

	avg, err := repo.AverageRoAS(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, avg, 1e-9)
}

func TestAggregatesOnEmptyTables(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	total, err := repo.TotalSales(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)

	n, err := repo.InsertSales(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWithTxRollsBack(t *testing.T) {
	client := dbtest.NewSQLite(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	tx := client.DB().Begin()
	require.NoError(t, tx.Error)
	_, err := repo.WithTx(tx).InsertSales(ctx, []models.SalesRecord{{ProductID: "X", TotalSales: 1}})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback().Error)

	count, err := repo.CountSales(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
