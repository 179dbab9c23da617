package ask

import "fmt"

const schemaDescription = `Database Schema:

1. products: product_id, product_name, category, brand, price
2. total_sales_metrics: product_id, total_sales, units_sold, revenue, date
3. ad_sales_metrics: product_id, ad_spend, ad_sales, clicks, impressions, cpc, date

Sample queries:
- Total sales: SELECT SUM(total_sales) FROM total_sales_metrics
- RoAS calculation: SELECT ad_sales/ad_spend AS roas FROM ad_sales_metrics`

const translatePrompt = `You are a SQL expert. Convert this question to a valid %s query.

%s

Question: %s

Return only a JSON object with:
{"sql": "your SQL query", "explanation": "brief explanation"}

Rules:
- Use proper %s syntax
- Only write a single read-only SELECT statement
- For total sales, use SUM(total_sales) FROM total_sales_metrics
- For RoAS, use ad_sales/ad_spend and skip rows where ad_spend is 0
- Return valid JSON only`

const formatPrompt = `Format this data into a clear answer. Remove currency symbols.

Question: %s
SQL: %s
Results: %s

Provide a clear, concise answer with numbers formatted with commas.`

func buildTranslatePrompt(dialect, question string) string {
	return fmt.Sprintf(translatePrompt, dialect, schemaDescription, question, dialect)
}

func buildFormatPrompt(question, sql, resultsJSON string) string {
	return fmt.Sprintf(formatPrompt, question, sql, resultsJSON)
}
