package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ecomagent-backend/internal/ask"
	"github.com/angelmondragon/ecomagent-backend/internal/query"
	"github.com/angelmondragon/ecomagent-backend/pkg/gemini"
	"github.com/angelmondragon/ecomagent-backend/pkg/types"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question with the full pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, sess.Close()) }()

		gen, err := gemini.New(ctx, sess.cfg.GenAI, sess.logg)
		if err != nil {
			return err
		}
		sqlDB, err := sess.db.DB().DB()
		if err != nil {
			return err
		}
		executor := query.NewExecutor(sqlDB, query.Options{
			ReadOnly: sess.cfg.Ask.ReadOnly,
			MaxRows:  sess.cfg.Ask.MaxRows,
		}, sess.logg, nil)
		svc := ask.NewService(executor, gen, nil, ask.Options{
			MaxQuestionLen: sess.cfg.Ask.MaxQuestionLen,
			Dialect:        sess.db.Dialect(),
		}, sess.logg, nil)

		question := strings.Join(args, " ")
		answer, askErr := svc.Ask(ctx, question)

		out := cmd.OutOrStdout()
		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if askErr != nil {
				return enc.Encode(types.AskFailure{Success: false, Error: ask.PublicMessage(askErr)})
			}
			return enc.Encode(types.AskResponse{
				Success:           true,
				Question:          answer.Question,
				SQLQuery:          answer.SQL,
				Explanation:       answer.Explanation,
				Results:           answer.Results,
				FormattedResponse: answer.Text,
			})
		}

		if askErr != nil {
			return fmt.Errorf("%s", ask.PublicMessage(askErr))
		}
		fmt.Fprintln(out, answer.Text)
		fmt.Fprintf(out, "\nTier: %s (%s)\n", answer.Tier, answer.Rule)
		fmt.Fprintf(out, "SQL:  %s\n", answer.SQL)
		if answer.Explanation != "" {
			fmt.Fprintf(out, "Why:  %s\n", answer.Explanation)
		}
		if len(answer.Results) > 0 {
			rows, err := json.MarshalIndent(answer.Results, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Rows:\n%s\n", rows)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the HTTP response payload")
	rootCmd.AddCommand(askCmd)
}
