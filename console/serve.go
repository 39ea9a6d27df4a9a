package console

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/laika-mvc/laika/internal"
)

// Config keys read by serve.
const (
	AddressKey         = "app|address"
	ShutdownTimeoutKey = "app|shutdown_timeout"
)

func newServeCommand(k *kernel) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and block until SIGINT or SIGTERM.

The address comes from --addr, else the app.address config value,
else ` + DefaultAddress + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := k.application()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = k.cfg.String(AddressKey, DefaultAddress)
			}

			out := cmd.OutOrStdout()
			return app.Run(addr,
				internal.WithContext(cmd.Context()),
				internal.ShutdownTimeout(k.cfg.Duration(ShutdownTimeoutKey, 0)),
				internal.OnListen(func(bound string) {
					_, _ = fmt.Fprintf(out, "Listening on http://%s\n", bound)
				}),
			)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", DefaultAddress, "listen address")
	return cmd
}
