package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"chat-reply-engine/internal/fuzzy"
)

func (a *app) newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <query> <candidate>",
		Short: "Print the fuzzy score of query against candidate",
		Long: `Print the score the engine would give candidate for query under the
configured scoring parameters. Useful when tuning the bonuses and penalty.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, ok := fuzzy.Score(args[0], args[1], a.cfg.Scoring)
			if !ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no match")
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), score)
			return err
		},
	}
}
