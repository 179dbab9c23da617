package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ecomagent-backend/internal/sales"
	"github.com/angelmondragon/ecomagent-backend/pkg/numfmt"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts and headline figures per table",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, sess.Close()) }()

		repo := sales.NewRepository(sess.db.DB())
		counts, err := repo.Counts(ctx)
		if err != nil {
			return err
		}
		total, err := repo.TotalSales(ctx)
		if err != nil {
			return err
		}
		roas, err := repo.AverageRoAS(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "products\t%s\n", numfmt.Count(counts.Products))
		fmt.Fprintf(tw, "total_sales_metrics\t%s\n", numfmt.Count(counts.Sales))
		fmt.Fprintf(tw, "ad_sales_metrics\t%s\n", numfmt.Count(counts.Ads))
		fmt.Fprintf(tw, "total sales\t%s\n", numfmt.Grouped(total))
		fmt.Fprintf(tw, "average RoAS\t%s\n", numfmt.Fixed(roas))
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
