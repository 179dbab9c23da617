package ask

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/ecomagent-backend/pkg/gemini"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/metrics"
	"github.com/angelmondragon/ecomagent-backend/pkg/numfmt"
)

const noDataText = "No data found for your question."

// Formatter turns result rows into prose, preferring the model and falling
// back to a deterministic sentence.
type Formatter struct {
	gen     gemini.Generator
	logg    *logger.Logger
	metrics *metrics.AskMetrics
}

func NewFormatter(gen gemini.Generator, logg *logger.Logger, m *metrics.AskMetrics) *Formatter {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Formatter{gen: gen, logg: logg, metrics: m}
}

func (f *Formatter) Format(ctx context.Context, question, sql string, rows []map[string]any) string {
	if len(rows) == 0 {
		return noDataText
	}

	start := time.Now()
	text, err := f.gen.Generate(ctx, buildFormatPrompt(question, sql, rowsJSON(rows)))
	f.metrics.ObserveModelCall(callFormat, time.Since(start), err)
	if err == nil {
		return text
	}

	f.logg.Warn(f.logg.WithField(ctx, "error", err.Error()), "model formatting failed; using fallback")
	return FallbackText(rows)
}

// FallbackText renders a single numeric cell as "The result is 1,234.00" and
// anything else as a count plus the rows as JSON.
func FallbackText(rows []map[string]any) string {
	if len(rows) == 1 && len(rows[0]) == 1 {
		for _, v := range rows[0] {
			if v == nil {
				continue
			}
			// Drivers may hand decimals back as text (postgres numeric).
			if f, ok := numfmt.ToFloat(v); ok {
				return "The result is " + numfmt.Grouped(f)
			}
		}
	}
	return fmt.Sprintf("Found %d results: %s", len(rows), rowsJSON(rows))
}

func rowsJSON(rows []map[string]any) string {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Sprint(rows)
	}
	return string(data)
}
