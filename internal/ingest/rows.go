package ingest

import (
	"github.com/angelmondragon/ecomagent-backend/pkg/db/models"
	"go.uber.org/multierr"
)

// Row numbers in warnings are 1-based spreadsheet lines, header included.

func (s *Service) convertSales(sh *sheet, out *fileResult) {
	cols := s.mapping.Sales
	s.warnMissingColumns(sh, cols.ProductID, cols.TotalSales, cols.UnitsSold, cols.Revenue)
	for i, row := range sh.rows {
		if blankRow(row) {
			continue
		}
		total, errTotal := parseFloat(sh.value(row, cols.TotalSales))
		units, errUnits := parseCount(sh.value(row, cols.UnitsSold))
		revenue, errRevenue := parseFloat(sh.value(row, cols.Revenue))
		if err := multierr.Combine(errTotal, errUnits, errRevenue); err != nil {
			out.skipped++
			s.skipRow(sh, i+2, err)
			continue
		}
		date := sh.value(row, cols.Date)
		if date == "" {
			date = s.cfg.DefaultDate
		}
		out.sales = append(out.sales, models.SalesRecord{
			ProductID:  productID(sh.value(row, cols.ProductID)),
			TotalSales: total,
			UnitsSold:  units,
			Revenue:    revenue,
			Date:       date,
		})
	}
}

func (s *Service) convertAds(sh *sheet, out *fileResult) {
	cols := s.mapping.Ads
	s.warnMissingColumns(sh, cols.ProductID, cols.AdSpend, cols.AdSales, cols.Clicks, cols.Impressions)
	for i, row := range sh.rows {
		if blankRow(row) {
			continue
		}
		spend, errSpend := parseAmount(sh.value(row, cols.AdSpend))
		adSales, errSales := parseFloat(sh.value(row, cols.AdSales))
		clicks, errClicks := parseCount(sh.value(row, cols.Clicks))
		impressions, errImpr := parseCount(sh.value(row, cols.Impressions))
		if err := multierr.Combine(errSpend, errSales, errClicks, errImpr); err != nil {
			out.skipped++
			s.skipRow(sh, i+2, err)
			continue
		}
		date := sh.value(row, cols.Date)
		if date == "" {
			date = s.cfg.DefaultDate
		}
		out.ads = append(out.ads, models.AdMetric{
			ProductID:   productID(sh.value(row, cols.ProductID)),
			AdSpend:     spend.InexactFloat64(),
			AdSales:     adSales,
			Clicks:      clicks,
			Impressions: impressions,
			CPC:         costPerClick(spend, clicks),
			Date:        date,
		})
	}
}

func (s *Service) convertProducts(sh *sheet, out *fileResult) {
	cols := s.mapping.Products
	s.warnMissingColumns(sh, cols.ProductID)
	seen := make(map[string]struct{}, len(sh.rows))
	for _, row := range sh.rows {
		id := productID(sh.value(row, cols.ProductID))
		if id == "" {
			if !blankRow(row) {
				out.skipped++
			}
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.products = append(out.products, models.PlaceholderProduct(id))
	}
}
