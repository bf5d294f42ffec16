package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/batchsort/internal/api"
	apperrors "github.com/matzehuels/batchsort/pkg/errors"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes optimization over HTTP:

  POST /v1/optimize       scene JSON in, report JSON out
  POST /v1/count          draw calls per panel
  GET  /v1/reports/{id}   a stored report
  GET  /healthz           liveness

Reports are stored in MongoDB when store.mongo_uri is configured and in
memory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.config().Server.Addr
			}
			if err := apperrors.ValidateAddr(addr); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := api.New(runner, c.Logger,
				api.WithStore(st),
				api.WithDefaults(c.pipelineOptions()))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
	return cmd
}
