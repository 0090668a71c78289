package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) newAskCmd() *cobra.Command {
	var (
		transcripts []string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "ask [flags] <query>",
		Short: "Answer a single query and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newEngine(transcripts)
			if err != nil {
				return err
			}
			m, err := e.Retrieve(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), m.Response)
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&transcripts, "transcript", "t", nil, "transcript export to answer from (repeatable; default: archive)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the selected entry, score and reply as JSON")
	return cmd
}
