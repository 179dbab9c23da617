package models

// SalesRecord is one row of total_sales_metrics. ProductID is not required to
// reference an existing product.
type SalesRecord struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ProductID  string  `gorm:"column:product_id" json:"product_id"`
	TotalSales float64 `gorm:"column:total_sales" json:"total_sales"`
	UnitsSold  int64   `gorm:"column:units_sold" json:"units_sold"`
	Revenue    float64 `gorm:"column:revenue" json:"revenue"`
	Date       string  `gorm:"column:date" json:"date"`
}

func (SalesRecord) TableName() string {
	return "total_sales_metrics"
}
