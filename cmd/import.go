package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"chat-reply-engine/internal/index"
	"chat-reply-engine/internal/ingest"
	"chat-reply-engine/internal/types"
)

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <transcript.json>...",
		Short: "Store transcript exports in the archive",
		Long: `Parse transcript exports and store their messages and replies in the
archive, so later runs of chat, ask and serve can answer without arguments.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := a.openArchive(true)
			if err != nil {
				return err
			}
			defer archive.Close()

			for _, path := range args {
				tr, err := ingest.ParseFile(path)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				abs, err := filepath.Abs(path)
				if err != nil {
					abs = path
				}

				id, err := archive.SaveTranscript(types.TranscriptInfo{Name: tr.Name, Source: abs}, tr.Messages, tr.Replies)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}

				entries := index.Build(tr.Messages, tr.Replies).Len()
				if entries == 0 {
					log.Warn().Str("component", "import").Str("file", path).Msg("transcript has no replied-to messages")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %q as #%d (%d messages, %d replies, %d entries)\n",
					tr.Name, id, len(tr.Messages), len(tr.Replies), entries)
			}
			return nil
		},
	}
}
