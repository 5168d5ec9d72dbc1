// Package cli implements the shopmanager command line.
// Without a subcommand it runs the interactive menu.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/shopmanager/internal/app"
	"github.com/abgdnv/shopmanager/internal/config"
	"github.com/abgdnv/shopmanager/pkg/bootstrap"
	"github.com/abgdnv/shopmanager/pkg/config/configloader"
	"github.com/abgdnv/shopmanager/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile   string
	EnvFile      string
	ProductsFile string
	SalesFile    string
	LogLevel     string

	deps *app.Dependencies
}

// overrides returns the flags given on the command line as configuration keys.
func (o *RootOptions) overrides() map[string]any {
	values := make(map[string]any)
	if o.ProductsFile != "" {
		values["storage.products"] = o.ProductsFile
	}
	if o.SalesFile != "" {
		values["storage.sales"] = o.SalesFile
	}
	if o.LogLevel != "" {
		values["log.level"] = o.LogLevel
	}
	return values
}

// NewRootCommand creates the root command for the shop manager.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shopmanager",
		Short: "Small shop inventory and sales manager",
		Long: `Keep a product table with stock levels, record sales to a CSV ledger
and report on recent sales. Run without a command for the interactive menu.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "config.yaml", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with SHOP_ variables")
	cmd.PersistentFlags().StringVar(&opts.ProductsFile, "products", "", "product file (overrides storage.products)")
	cmd.PersistentFlags().StringVar(&opts.SalesFile, "sales", "", "sales ledger file (overrides storage.sales)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn or error")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSellCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// setup loads the configuration and builds the dependencies shared by every command.
func setup(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(
		configloader.WithConfigFile(opts.ConfigFile),
		configloader.WithEnvFile(opts.EnvFile),
		configloader.WithOverrides(opts.overrides()))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := bootstrap.NewLogger(cfg.Log.Level, cmd.ErrOrStderr())
	ctx := logger.WithSessionID(cmd.Context(), uuid.New())
	cmd.SetContext(ctx)
	log.DebugContext(ctx, "Configuration loaded", "config", cfg.String())

	deps, err := app.SetupDependencies(cfg, log)
	if err != nil {
		return err
	}
	opts.deps = deps
	return nil
}

// runMenu runs the interactive menu and saves the product table when it stops.
func runMenu(cmd *cobra.Command, opts *RootOptions) error {
	deps := opts.deps
	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	// Run the menu until the operator exits
	g.Go(func() error {
		defer cancel()
		deps.Logger.InfoContext(gCtx, "Session started")
		return app.SetupConsole(deps, cmd.InOrStdin(), cmd.OutOrStdout()).Run(gCtx)
	})
	// save the product table once the menu stops
	g.Go(func() error {
		<-gCtx.Done()
		deps.Logger.InfoContext(gCtx, "Session ending...")
		return app.Shutdown(context.WithoutCancel(gCtx), deps)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
