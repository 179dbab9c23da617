package models

// AdMetric is one row of ad_sales_metrics.
type AdMetric struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ProductID   string  `gorm:"column:product_id" json:"product_id"`
	AdSpend     float64 `gorm:"column:ad_spend" json:"ad_spend"`
	AdSales     float64 `gorm:"column:ad_sales" json:"ad_sales"`
	Clicks      int64   `gorm:"column:clicks" json:"clicks"`
	Impressions int64   `gorm:"column:impressions" json:"impressions"`
	CPC         float64 `gorm:"column:cpc" json:"cpc"`
	Date        string  `gorm:"column:date" json:"date"`
}

func (AdMetric) TableName() string {
	return "ad_sales_metrics"
}
