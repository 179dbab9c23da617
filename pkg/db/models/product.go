package models

// Product mirrors the products table. Ingestion fills it with placeholder
// attributes; only ProductID carries source data.
type Product struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ProductID   string  `gorm:"column:product_id;uniqueIndex" json:"product_id"`
	ProductName string  `gorm:"column:product_name" json:"product_name"`
	Category    string  `gorm:"column:category" json:"category"`
	Brand       string  `gorm:"column:brand" json:"brand"`
	Price       float64 `gorm:"column:price" json:"price"`
}

func (Product) TableName() string {
	return "products"
}

const (
	PlaceholderCategory = "General"
	PlaceholderBrand    = "Unknown"
)

// PlaceholderProduct builds the product row ingestion writes for an eligibility entry.
func PlaceholderProduct(productID string) Product {
	return Product{
		ProductID:   productID,
		ProductName: "Product " + productID,
		Category:    PlaceholderCategory,
		Brand:       PlaceholderBrand,
		Price:       0,
	}
}
