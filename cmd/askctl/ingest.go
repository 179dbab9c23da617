package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ecomagent-backend/internal/ingest"
	"github.com/angelmondragon/ecomagent-backend/pkg/migrate"
)

var forceReload bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Create the schema and load the data files",
	Long: `Creates the tables when absent and loads the sales, ad and product
spreadsheets from the data directory. The load is skipped when sales rows are
already present unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, sess.Close()) }()

		svc, err := ingest.NewService(sess.db, sess.cfg.Ingest, sess.logg, nil)
		if err != nil {
			return err
		}

		var summary ingest.Summary
		if forceReload {
			if err := migrate.EnsureSchema(ctx, sess.db, sess.logg); err != nil {
				return err
			}
			summary, err = svc.Load(ctx)
		} else {
			summary, err = svc.Initialize(ctx)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !summary.Loaded {
			fmt.Fprintln(out, "Store already holds sales records; nothing loaded.")
			return nil
		}
		fmt.Fprintf(out, "Loaded %d products, %d sales records and %d ad records.\n", summary.Products, summary.Sales, summary.Ads)
		if summary.Skipped > 0 {
			fmt.Fprintf(out, "Skipped %d rows that could not be converted.\n", summary.Skipped)
		}
		for _, file := range summary.Files {
			fmt.Fprintf(out, "  read %s\n", file)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&forceReload, "force", false, "load the files even when the store already has data")
	rootCmd.AddCommand(ingestCmd)
}
