package query

import (
	"testing"

	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
)

func TestCheckReadOnly(t *testing.T) {
	allowed := []string{
		"SELECT SUM(total_sales) AS total_sales FROM total_sales_metrics",
		"select * from products;",
		"  WITH t AS (SELECT 1 AS n) SELECT n FROM t  ",
		"-- leading comment\nSELECT product_id FROM products",
		"/* note */ SELECT 'drop table products; --' AS s",
		"SELECT REPLACE(product_id, '-', '') FROM products",
		`SELECT "delete" FROM products`,
	}
	for _, stmt := range allowed {
		if err := CheckReadOnly(stmt); err != nil {
			t.Fatalf("expected %q to be allowed, got %v", stmt, err)
		}
	}

	rejected := []string{
		"",
		"   ;",
		"DELETE FROM products",
		"DROP TABLE products",
		"SELECT 1; DROP TABLE products",
		"WITH gone AS (DELETE FROM products RETURNING *) SELECT * FROM gone",
		"INSERT INTO products (product_id) VALUES ('x')",
		"PRAGMA table_info(products)",
		"REPLACE INTO products (product_id) VALUES ('x')",
		"ATTACH DATABASE 'x.db' AS x",
	}
	for _, stmt := range rejected {
		err := CheckReadOnly(stmt)
		if !pkgerrors.HasCode(err, pkgerrors.CodeQueryRejected) {
			t.Fatalf("expected %q to be rejected, got %v", stmt, err)
		}
	}
}
