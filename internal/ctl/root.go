// Package ctl implements bizaictl, a terminal client for the analytics
// backend. It runs the same upload cycle as the dashboard and prints the
// results with lipgloss.
package ctl

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bizai/internal/api"
	"bizai/internal/catalog"
	"bizai/internal/config"
	"bizai/internal/core"
	"bizai/internal/log"
	"bizai/internal/services"
)

// EnvToken holds the bearer token printed by "bizaictl login".
const EnvToken = "BIZAI_TOKEN"

type app struct {
	apiURL  string
	token   string
	timeout time.Duration
	verbose bool
	version string

	catalog *catalog.Catalog
	logger  *log.Logger
}

// NewRootCommand builds the bizaictl command tree.
func NewRootCommand(version string) *cobra.Command {
	defaults := config.Defaults()
	if cfg, err := config.Load(); err == nil {
		defaults = cfg
	}

	a := &app{version: version, catalog: catalog.MustDefault()}

	root := &cobra.Command{
		Use:           "bizaictl",
		Short:         "Business AI analytics from the terminal",
		Long:          "Upload CSV files to the analytics backend and print the resulting insights.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), a.verbose)
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", defaults.AnalyticsAPIURL, "Analytics backend URL")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv(EnvToken), "Bearer token (default $"+EnvToken+")")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", defaults.BackendTimeout, "Per-request timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(
		a.loginCommand(),
		a.uploadCommand(),
		a.insightsCommand(),
		a.watchCommand(),
		a.versionCommand(),
		a.configCommand(),
	)
	return root
}

// Execute runs bizaictl and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = w
	cfg.Level = slog.LevelWarn
	if verbose {
		cfg.Level = slog.LevelDebug
	}
	return log.New(cfg)
}

func (a *app) client() *api.Client {
	c := api.NewClient(a.apiURL, api.WithTimeout(a.timeout))
	if a.token != "" {
		c = c.WithToken(a.token)
	}
	return c
}

func (a *app) uploads() *services.UploadService {
	return services.NewUploadService(nil, a.logger)
}

// moduleArg resolves a module slug to its catalog entry.
func (a *app) moduleArg(slug string) (catalog.Entry, error) {
	m, err := core.ParseModule(slug)
	if err != nil {
		return catalog.Entry{}, err
	}
	return a.catalog.Get(m)
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bizaictl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bizaictl %s\n", a.version)
		},
	}
}

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write the default configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteExample(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nPoint BIZAI_CONFIG at it to use it.\n", args[0])
			return nil
		},
	})
	return cmd
}
