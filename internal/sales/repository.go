package sales

import (
	"context"
	"database/sql"

	"github.com/angelmondragon/ecomagent-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

// Counts summarizes how many rows each table holds.
type Counts struct {
	Products int64 `json:"products"`
	Sales    int64 `json:"sales_records"`
	Ads      int64 `json:"ad_records"`
}

// Repository persists and reads the ingested sales and advertising rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// InsertProducts adds products, ignoring ids that already exist. It returns
// the number of rows actually written.
func (r *Repository) InsertProducts(ctx context.Context, products []models.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}}, DoNothing: true}).
		CreateInBatches(&products, insertBatchSize)
	return res.RowsAffected, res.Error
}

// InsertSales appends sales rows; duplicates are allowed.
func (r *Repository) InsertSales(ctx context.Context, records []models.SalesRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).CreateInBatches(&records, insertBatchSize)
	return res.RowsAffected, res.Error
}

// InsertAdMetrics appends ad rows; duplicates are allowed.
func (r *Repository) InsertAdMetrics(ctx context.Context, metrics []models.AdMetric) (int64, error) {
	if len(metrics) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).CreateInBatches(&metrics, insertBatchSize)
	return res.RowsAffected, res.Error
}

func (r *Repository) CountSales(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.SalesRecord{})
}

func (r *Repository) CountAdMetrics(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.AdMetric{})
}

func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Product{})
}

// Counts returns the row count of every table.
func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var (
		out Counts
		err error
	)
	if out.Products, err = r.CountProducts(ctx); err != nil {
		return Counts{}, err
	}
	if out.Sales, err = r.CountSales(ctx); err != nil {
		return Counts{}, err
	}
	if out.Ads, err = r.CountAdMetrics(ctx); err != nil {
		return Counts{}, err
	}
	return out, nil
}

// TotalSales sums total_sales across every record; an empty table yields 0.
func (r *Repository) TotalSales(ctx context.Context) (float64, error) {
	var total sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&models.SalesRecord{}).
		Select("SUM(total_sales)").
		Scan(&total).Error
	return total.Float64, err
}

// AverageRoAS averages ad_sales/ad_spend over rows with positive spend.
func (r *Repository) AverageRoAS(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&models.AdMetric{}).
		Where("ad_spend > 0").
		Select("AVG(ad_sales / ad_spend)").
		Scan(&avg).Error
	return avg.Float64, err
}

func (r *Repository) count(ctx context.Context, model any) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
