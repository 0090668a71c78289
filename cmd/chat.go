package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"chat-reply-engine/internal/engine"
)

// maxLineSize bounds a single stdin query.
const maxLineSize = 1 << 20

func (a *app) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [transcript.json...]",
		Short: "Answer stdin lines one reply per line",
		Long: `Build the corpus from the given transcript exports (or from the archive
when none is given), then read queries from stdin and print one reply per
query until end of input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newEngine(args)
			if err != nil {
				return err
			}
			log.Info().Str("component", "chat").Msg("dialog started, waiting for input")
			return runDialog(e, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runDialog answers every input line in turn.
func runDialog(e *engine.Engine, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		reply, err := e.Respond(sc.Text())
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, reply); err != nil {
			return err
		}
	}
	return sc.Err()
}
