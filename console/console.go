// Package console implements the command line of a laika application:
// route inspection and the HTTP server.
//
//	func main() {
//	    cmd := console.New("blog", func(cfg *config.Config) (*laika.App, error) {
//	        return laika.New(laika.WithHandlers(handlers.NewPosts()))
//	    })
//	    if err := cmd.ExecuteContext(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package console

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/pkg/config"
)

// Loader builds the application from the loaded configuration.
type Loader func(cfg *config.Config) (*internal.App, error)

// Default flag values.
const (
	DefaultConfigDir = "config"
	DefaultAddress   = ":8080"
)

// kernel carries state shared by the commands of one invocation.
type kernel struct {
	load      Loader
	configDir string
	envFiles  []string
	noColor   bool

	cfg *config.Config
	app *internal.App
}

// New returns the root command. Subcommands load ".env" (or --env files)
// and the YAML files of --config-dir before calling load.
func New(name string, load Loader) *cobra.Command {
	k := &kernel{load: load}

	root := &cobra.Command{
		Use:           name,
		Short:         "Manage the " + name + " application",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return k.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&k.configDir, "config-dir", DefaultConfigDir, "directory of YAML config files")
	root.PersistentFlags().StringSliceVar(&k.envFiles, "env", nil, "dotenv files to load (default .env if present)")
	root.PersistentFlags().BoolVar(&k.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newInspectCommand(k),
		newInspectAllCommand(k),
		newServeCommand(k),
	)
	return root
}

func (k *kernel) loadConfig() error {
	cfg := config.New()
	if err := cfg.LoadEnv(k.envFiles...); err != nil {
		return err
	}
	if err := cfg.LoadDir(k.configDir); err != nil {
		// The default directory is optional.
		if !(k.configDir == DefaultConfigDir && errors.Is(err, fs.ErrNotExist)) {
			return err
		}
	}
	k.cfg = cfg
	return nil
}

// application builds the app once per invocation.
func (k *kernel) application() (*internal.App, error) {
	if k.app != nil {
		return k.app, nil
	}
	if k.cfg == nil {
		k.cfg = config.New()
	}
	app, err := k.load(k.cfg)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, errors.New("load application: loader returned nil")
	}
	k.app = app
	return app, nil
}
