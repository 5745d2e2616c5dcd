package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/internal/app"
)

func newPromoteCmd(opts *rootOptions) *cobra.Command {
	var address, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Change the role of an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := core.ParseRole(role)
			if err != nil {
				return fmt.Errorf("%w: %q", err, role)
			}

			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Store.Driver == "memory" {
				log.Warn("promoting in the in-memory store has no effect on a running server")
			}

			p, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.Auth.Promote(cmd.Context(), address, r); err != nil {
				return err
			}

			log.Info("account updated", zap.String("address", core.NormalizeAddress(address)), zap.String("role", string(r)))
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "wallet address of the account")
	cmd.Flags().StringVar(&role, "role", string(core.RoleAdmin), "role to assign (user or admin)")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}
