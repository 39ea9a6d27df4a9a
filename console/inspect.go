package console

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NoRouteMatches is printed by inspect when nothing serves the request.
const NoRouteMatches = "No Route Matches"

func newInspectCommand(k *kernel) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <method> <uri>",
		Short: "Print the middleware pipeline serving a request",
		Example: `  blog inspect GET /post/hello
  blog inspect post /admin/users`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := k.application()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			method := strings.ToUpper(args[0])
			steps, ok := app.Dispatcher().Inspect(method, args[1])
			if !ok {
				_, err = fmt.Fprintln(out, NoRouteMatches)
				return err
			}

			if _, err := fmt.Fprintf(out, "%s %s\n", method, args[1]); err != nil {
				return err
			}
			for i, s := range steps {
				if _, err := fmt.Fprintf(out, "%3d. %s\n", i+1, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newInspectAllCommand(k *kernel) *cobra.Command {
	return &cobra.Command{
		Use:     "inspect:all",
		Aliases: []string{"list:route"},
		Short:   "List every registered route",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := k.application()
			if err != nil {
				return err
			}

			routes := app.Dispatcher().Routes()
			if len(routes) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No routes registered")
				return err
			}
			return renderRoutes(cmd.OutOrStdout(), routes, !k.noColor)
		},
	}
}
