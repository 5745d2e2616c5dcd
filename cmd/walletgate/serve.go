package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/layer-3/walletgate/internal/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error("failed to start", zap.Error(err))
				return err
			}
			defer func() {
				if err := p.Close(); err != nil {
					log.Warn("failed to release resources", zap.Error(err))
				}
			}()

			log.Info("walletgate starting",
				zap.String("addr", cfg.HTTP.Addr),
				zap.String("store", cfg.Store.Driver),
				zap.Bool("redis", cfg.Redis.URL != ""),
				zap.Bool("rotate_nonce_on_login", cfg.Auth.RotateNonceOnLogin))

			if err := p.Run(ctx); err != nil {
				log.Error("server stopped", zap.Error(err))
				return err
			}
			log.Info("walletgate stopped")
			return nil
		},
	}
}
