package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/ecomagent-backend/internal/sales"
	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	"github.com/angelmondragon/ecomagent-backend/pkg/db"
	"github.com/angelmondragon/ecomagent-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/metrics"
	"github.com/angelmondragon/ecomagent-backend/pkg/migrate"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Summary reports what an ingestion run wrote.
type Summary struct {
	Products int      `json:"products"`
	Sales    int      `json:"sales_records"`
	Ads      int      `json:"ad_records"`
	Skipped  int      `json:"skipped_rows"`
	Files    []string `json:"files"`
	// Loaded is false when the store already held data and nothing was read.
	Loaded bool `json:"loaded"`
}

func (s Summary) Total() int {
	return s.Products + s.Sales + s.Ads
}

// Service loads the three spreadsheet exports into the store.
type Service struct {
	client  *db.Client
	repo    *sales.Repository
	cfg     config.IngestConfig
	mapping Mapping
	logg    *logger.Logger
	metrics *metrics.AskMetrics
}

func NewService(client *db.Client, cfg config.IngestConfig, logg *logger.Logger, m *metrics.AskMetrics) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	mapping, err := LoadMapping(cfg.MappingFile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeIngestion, err, "load column mapping")
	}
	if strings.TrimSpace(cfg.DefaultDate) == "" {
		cfg.DefaultDate = "2024-01-01"
	}
	return &Service{
		client:  client,
		repo:    sales.NewRepository(client.DB()),
		cfg:     cfg,
		mapping: mapping,
		logg:    logg,
		metrics: m,
	}, nil
}

// Initialize creates the schema if absent and loads the data files when the
// sales table is empty. It is the only startup path that writes to the store.
func (s *Service) Initialize(ctx context.Context) (Summary, error) {
	if err := migrate.EnsureSchema(ctx, s.client, s.logg); err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeIngestion, err, "create schema")
	}

	existing, err := s.repo.CountSales(ctx)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeIngestion, err, "count sales records")
	}
	if existing > 0 {
		counts, err := s.repo.Counts(ctx)
		if err != nil {
			return Summary{}, pkgerrors.Wrap(pkgerrors.CodeIngestion, err, "count records")
		}
		s.logg.Info(s.logg.WithField(ctx, "sales_records", existing), "data already loaded; skipping ingestion")
		s.recordCounts(int(counts.Products), int(counts.Sales), int(counts.Ads))
		return Summary{Products: int(counts.Products), Sales: int(counts.Sales), Ads: int(counts.Ads)}, nil
	}

	return s.Load(ctx)
}

type fileResult struct {
	path     string
	skipped  int
	products []models.Product
	sales    []models.SalesRecord
	ads      []models.AdMetric
}

// Load reads the three files concurrently and inserts their rows, one
// transaction per table. Loading zero rows in total is an INGESTION_FAILED
// error.
func (s *Service) Load(ctx context.Context) (Summary, error) {
	sources := []struct {
		name    string
		convert func(*sheet, *fileResult)
	}{
		{s.cfg.SalesFile, s.convertSales},
		{s.cfg.AdsFile, s.convertAds},
		{s.cfg.ProductsFile, s.convertProducts},
	}

	results := make([]fileResult, len(sources))
	fileErrs := make([]error, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			path, ok := resolveSource(s.cfg.DataDir, src.name)
			if !ok {
				s.logg.Warn(s.logg.WithField(ctx, "file", src.name), "data file not found; skipping")
				return nil
			}
			sh, err := readSheet(path)
			if err != nil {
				fileErrs[i] = err
				return err
			}
			results[i].path = path
			src.convert(sh, &results[i])
			return nil
		})
	}
	readErr := g.Wait()
	combined := multierr.Combine(fileErrs...)
	if readErr != nil {
		for _, err := range multierr.Errors(combined) {
			s.logg.Error(ctx, "reading data file failed", err)
		}
	}

	var (
		summary  Summary
		products []models.Product
		records  []models.SalesRecord
		ads      []models.AdMetric
	)
	for _, r := range results {
		if r.path != "" {
			summary.Files = append(summary.Files, filepath.Base(r.path))
		}
		summary.Skipped += r.skipped
		products = append(products, r.products...)
		records = append(records, r.sales...)
		ads = append(ads, r.ads...)
	}

	inserted, err := s.insert(ctx, products, records, ads)
	if err != nil {
		return summary, pkgerrors.Wrap(pkgerrors.CodeIngestion, err, "insert rows")
	}
	summary.Products, summary.Sales, summary.Ads = inserted[0], inserted[1], inserted[2]
	summary.Loaded = true

	if summary.Total() == 0 {
		cause := combined
		if cause == nil {
			cause = fmt.Errorf("no rows found under %s", s.cfg.DataDir)
		}
		return summary, pkgerrors.Wrap(pkgerrors.CodeIngestion, cause, "no records were loaded from data files")
	}

	s.recordCounts(summary.Products, summary.Sales, summary.Ads)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"products":      summary.Products,
		"sales_records": summary.Sales,
		"ad_records":    summary.Ads,
		"skipped_rows":  summary.Skipped,
		"files":         summary.Files,
	}), "data files loaded")
	return summary, nil
}

func (s *Service) insert(ctx context.Context, products []models.Product, records []models.SalesRecord, ads []models.AdMetric) ([3]int, error) {
	var out [3]int
	steps := []func(repo *sales.Repository) (int64, error){
		func(repo *sales.Repository) (int64, error) { return repo.InsertProducts(ctx, products) },
		func(repo *sales.Repository) (int64, error) { return repo.InsertSales(ctx, records) },
		func(repo *sales.Repository) (int64, error) { return repo.InsertAdMetrics(ctx, ads) },
	}
	for i, step := range steps {
		err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
			n, err := step(s.repo.WithTx(tx))
			out[i] = int(n)
			return err
		})
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (s *Service) recordCounts(products, salesRows, ads int) {
	s.metrics.SetIngested(models.Product{}.TableName(), products)
	s.metrics.SetIngested(models.SalesRecord{}.TableName(), salesRows)
	s.metrics.SetIngested(models.AdMetric{}.TableName(), ads)
}

func (s *Service) warnMissingColumns(sh *sheet, columns ...string) {
	var missing []string
	for _, c := range columns {
		if c != "" && !sh.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return
	}
	ctx := s.logg.WithFields(context.Background(), map[string]any{
		"file":    filepath.Base(sh.path),
		"missing": missing,
	})
	s.logg.Warn(ctx, "mapped columns not found in header; values default to zero")
}

func (s *Service) skipRow(sh *sheet, line int, err error) {
	ctx := s.logg.WithFields(context.Background(), map[string]any{
		"file": filepath.Base(sh.path),
		"row":  line,
	})
	s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "skipping unconvertible row")
}
