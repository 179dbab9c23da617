package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/ecomagent-backend/internal/query"
	"github.com/angelmondragon/ecomagent-backend/pkg/numfmt"
)

const (
	TierKeyword = "keyword"
	TierModel   = "model"

	RuleTotalSales   = "total_sales"
	RuleRoAS         = "roas"
	RuleRecordCounts = "record_counts"
	RuleModel        = "model"
)

const (
	totalSalesSQL  = "SELECT SUM(total_sales) AS total_sales FROM total_sales_metrics"
	avgRoASSQL     = "SELECT AVG(ad_sales / ad_spend) AS avg_roas FROM ad_sales_metrics WHERE ad_spend > 0"
	salesCountSQL  = "SELECT COUNT(*) AS count FROM total_sales_metrics"
	adCountSQL     = "SELECT COUNT(*) AS count FROM ad_sales_metrics"
	recordCountsID = "Database record counts"
)

// Runner executes SQL; *query.Executor implements it.
type Runner interface {
	Execute(ctx context.Context, statement string) query.Result
}

// Rule answers a question with fixed SQL when any keyword appears in the
// lowercased question. Answer returns ok=false to hand the question to the
// model tier.
type Rule struct {
	Name        string
	Keywords    []string
	SQL         string
	Explanation string
	Answer      func(ctx context.Context, run Runner) (results []map[string]any, text string, ok bool)
}

func (r Rule) Matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// DefaultRules returns the keyword rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        RuleTotalSales,
			Keywords:    []string{"total sales"},
			SQL:         totalSalesSQL,
			Explanation: "Calculate total sales from all records",
			Answer: func(ctx context.Context, run Runner) ([]map[string]any, string, bool) {
				res := run.Execute(ctx, totalSalesSQL)
				if res.Status() != query.StatusOK {
					return nil, "", false
				}
				total, ok := numfmt.ToFloat(res.Rows[0]["total_sales"])
				if !ok {
					return nil, "", false
				}
				// The count is of result rows, which is always one for an aggregate.
				text := fmt.Sprintf("Your total sales are %s from %d records loaded from Excel files.",
					numfmt.Grouped(total), len(res.Rows))
				return res.Rows, text, true
			},
		},
		{
			Name:        RuleRoAS,
			Keywords:    []string{"roas", "return on ad spend"},
			SQL:         avgRoASSQL,
			Explanation: "Calculate average Return on Ad Spend",
			Answer: func(ctx context.Context, run Runner) ([]map[string]any, string, bool) {
				res := run.Execute(ctx, avgRoASSQL)
				if res.Status() != query.StatusOK {
					return nil, "", false
				}
				roas, ok := numfmt.ToFloat(res.Rows[0]["avg_roas"])
				if !ok {
					return nil, "", false
				}
				return res.Rows, "Your average RoAS is " + numfmt.Fixed(roas), true
			},
		},
		{
			Name:        RuleRecordCounts,
			Keywords:    []string{"records", "data"},
			SQL:         recordCountsID,
			Explanation: "Show loaded data statistics",
			Answer: func(ctx context.Context, run Runner) ([]map[string]any, string, bool) {
				salesCount, ok := scalarCount(ctx, run, salesCountSQL)
				if !ok {
					return nil, "", false
				}
				adCount, ok := scalarCount(ctx, run, adCountSQL)
				if !ok {
					return nil, "", false
				}
				results := []map[string]any{{"sales_records": salesCount, "ad_records": adCount}}
				text := fmt.Sprintf("Loaded %d sales records and %d ad records from your Excel files.", salesCount, adCount)
				return results, text, true
			},
		},
	}
}

func scalarCount(ctx context.Context, run Runner, statement string) (int64, bool) {
	res := run.Execute(ctx, statement)
	if res.Status() != query.StatusOK {
		return 0, false
	}
	v, ok := numfmt.ToFloat(res.Rows[0]["count"])
	if !ok {
		return 0, false
	}
	return int64(v), true
}
