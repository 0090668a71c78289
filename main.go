// Entry point for reply-engine. See `reply-engine --help`.
package main

import (
	"os"

	"chat-reply-engine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
