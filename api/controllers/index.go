package controllers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/angelmondragon/ecomagent-backend/api/responses"
	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// SalesCounter reports how many sales rows are loaded.
type SalesCounter interface {
	CountSales(ctx context.Context) (int64, error)
}

type indexPage struct {
	Title          string
	Examples       []string
	SalesRecords   int64
	MaxQuestionLen int
}

var indexExamples = []string{
	"What is my total sales?",
	"Calculate the RoAS",
	"Show me revenue by date",
}

// Index renders the question page with the number of loaded sales records.
func Index(counter SalesCounter, maxQuestionLen int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var count int64
		if counter != nil {
			n, err := counter.CountSales(ctx)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count sales records"))
				return
			}
			count = n
		}

		page := indexPage{
			Title:          "E-commerce AI Agent",
			Examples:       indexExamples,
			SalesRecords:   count,
			MaxQuestionLen: maxQuestionLen,
		}
		if page.MaxQuestionLen <= 0 {
			page.MaxQuestionLen = 2000
		}

		var buf bytes.Buffer
		if err := indexTemplate.Execute(&buf, page); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render index"))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
