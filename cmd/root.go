package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chat-reply-engine/internal/config"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
}

// NewRootCommand builds the reply-engine command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "reply-engine",
		Short: "Answer messages with replies recorded in chat transcripts",
		Long: `reply-engine pairs every message of a chat transcript export with the
replies it received. A query is fuzzy-matched against every paired message
and one of the replies of the best match is returned.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.init() },
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.reply-engine.yaml)")
	rootCmd.PersistentFlags().String("data", "data", "directory holding the transcript archive")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")

	a.v.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data"))
	a.v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		a.newChatCmd(),
		a.newAskCmd(),
		a.newImportCmd(),
		a.newTranscriptsCmd(),
		a.newServeCmd(),
		a.newScoreCmd(),
	)
	return rootCmd
}

func (a *app) init() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(home)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".reply-engine")
	}

	a.v.SetEnvPrefix("REPLY_ENGINE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	readErr := a.v.ReadInConfig()
	if readErr != nil && a.cfgFile != "" {
		return fmt.Errorf("read config %s: %w", a.cfgFile, readErr)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	setupLogging(cfg.LogLevel)
	if readErr == nil {
		log.Debug().Str("component", "config").Str("file", a.v.ConfigFileUsed()).Msg("using config file")
	}
	return nil
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
