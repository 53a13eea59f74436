package cli

import (
	"github.com/spf13/cobra"

	"github.com/pierre-ernst/ghnet/pkg/api"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependents API over HTTP",
		Long: `Serve owners, packages, dependents counts, scans and snapshots as JSON.
The server shares the configured cache and snapshot store and stops
gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()

			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := api.New(s.net,
				api.WithStore(st),
				api.WithLogger(c.Logger),
				api.WithMaxPages(cfg.Scan.MaxPages),
			)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	bindConfigKey(cmd.Flags(), "addr", "server.addr")
	return cmd
}
