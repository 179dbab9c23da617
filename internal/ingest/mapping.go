package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mapping names the spreadsheet column feeding each table field. Headers are
// matched case- and spacing-insensitively. An empty column means "use the
// zero value" (or the default date for dates).
type Mapping struct {
	Sales    SalesColumns   `yaml:"sales"`
	Ads      AdColumns      `yaml:"ads"`
	Products ProductColumns `yaml:"products"`
}

type SalesColumns struct {
	ProductID  string `yaml:"product_id"`
	TotalSales string `yaml:"total_sales"`
	UnitsSold  string `yaml:"units_sold"`
	Revenue    string `yaml:"revenue"`
	Date       string `yaml:"date"`
}

type AdColumns struct {
	ProductID   string `yaml:"product_id"`
	AdSpend     string `yaml:"ad_spend"`
	AdSales     string `yaml:"ad_sales"`
	Clicks      string `yaml:"clicks"`
	Impressions string `yaml:"impressions"`
	Date        string `yaml:"date"`
}

type ProductColumns struct {
	ProductID string `yaml:"product_id"`
}

// DefaultMapping matches the "(mapped)" exports: revenue is read from the
// total_sales column and ad rows carry no date.
func DefaultMapping() Mapping {
	return Mapping{
		Sales: SalesColumns{
			ProductID:  "item_id",
			TotalSales: "total_sales",
			UnitsSold:  "total_units_ordered",
			Revenue:    "total_sales",
			Date:       "date",
		},
		Ads: AdColumns{
			ProductID:   "item_id",
			AdSpend:     "ad_spend",
			AdSales:     "ad_sales",
			Clicks:      "clicks",
			Impressions: "impressions",
		},
		Products: ProductColumns{ProductID: "item_id"},
	}
}

// LoadMapping overlays the YAML file at path on DefaultMapping. An empty path
// returns the defaults.
func LoadMapping(path string) (Mapping, error) {
	mapping := DefaultMapping()
	if path == "" {
		return mapping, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("read column mapping: %w", err)
	}
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return Mapping{}, fmt.Errorf("parse column mapping %s: %w", path, err)
	}
	return mapping, nil
}
