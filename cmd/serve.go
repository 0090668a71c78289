package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"chat-reply-engine/internal/api"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [transcript.json...]",
		Short: "Serve replies over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newEngine(args)
			if err != nil {
				return err
			}

			srv := api.NewServer(e, api.Config{
				RateLimit: a.cfg.Server.RateLimit,
				Burst:     a.cfg.Server.Burst,
			})
			httpSrv := srv.NewHTTPServer(a.cfg.Server.Addr, a.cfg.Server.ReadTimeout)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("component", "api").Str("addr", a.cfg.Server.Addr).Int("entries", e.Len()).Msg("listening")
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Str("component", "api").Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Float64("rate-limit", 0, "max /respond requests per second (0 = unlimited)")
	a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	a.v.BindPFlag("server.rate_limit", cmd.Flags().Lookup("rate-limit"))
	return cmd
}
