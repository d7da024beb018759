package cli

import (
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	kitchenrpc "kitchen/rpc"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer conversion requests over TCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := a.cfg.Listen
			if listen != "" {
				addr = listen
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := kitchenrpc.NewServer(a.kitchen.Converter).WithLogger(a.logger)
			if err := srv.Serve(ctx, ln); err != nil {
				return err
			}
			// keep ingredients registered by clients
			return a.save(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}
