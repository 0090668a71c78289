package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) newTranscriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "List archived transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := a.openArchive(false)
			if err != nil {
				return err
			}
			defer archive.Close()

			infos, err := archive.ListTranscripts()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMESSAGES\tREPLIES\tIMPORTED")
			for _, info := range infos {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n",
					info.ID, info.Name, info.MessageCount, info.ReplyCount, info.ImportedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove transcripts from the archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := a.openArchive(false)
			if err != nil {
				return err
			}
			defer archive.Close()

			for _, arg := range args {
				id, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid transcript id %q", arg)
				}
				if err := archive.DeleteTranscript(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed #%d\n", id)
			}
			return nil
		},
	})
	return cmd
}
