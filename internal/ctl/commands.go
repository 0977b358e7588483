package ctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bizai/internal/catalog"
	"bizai/internal/core"
	"bizai/internal/services"
	"bizai/internal/watch"
)

func (a *app) loginCommand() *cobra.Command {
	var email, password string
	var tokenOnly bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print an access token",
		Example: "  export " + EnvToken + "=$(bizaictl login --token-only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.client().Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %s", core.ErrorMessage(err))
			}
			out := cmd.OutOrStdout()
			if tokenOnly {
				fmt.Fprintln(out, res.AccessToken)
				return nil
			}
			who := res.User.Email
			if res.User.Name != "" {
				who = fmt.Sprintf("%s <%s>", res.User.Name, res.User.Email)
			}
			fmt.Fprintln(out, okStyle.Render("✓ Signed in as "+who))
			fmt.Fprintf(out, "%s=%s\n", EnvToken, res.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "demo@business.ai", "Account email")
	cmd.Flags().StringVar(&password, "password", "demo123", "Account password")
	cmd.Flags().BoolVar(&tokenOnly, "token-only", false, "Print only the token")
	return cmd
}

// uploadOnce runs one module cycle: Begin, upload, settle. The returned error
// carries the message the dashboard would show.
func (a *app) uploadOnce(ctx context.Context, entry catalog.Entry, f core.File, source core.UploadSource) (core.Views, error) {
	var views core.Views
	services.Begin(&views, entry.Slug)
	res := a.uploads().Upload(ctx, a.client(), entry.Slug, f, source)
	res.Apply(&views)
	if res.Failed() {
		return views, errors.New(core.ErrorMessage(res.Err))
	}
	return views, nil
}

func (a *app) uploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <module> <file.csv>",
		Short: "Upload a CSV to a module and print the insights",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.moduleArg(args[0])
			if err != nil {
				return err
			}
			fh, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer fh.Close()
			info, err := fh.Stat()
			if err != nil {
				return err
			}

			f := core.File{Name: filepath.Base(args[1]), Size: info.Size(), Content: fh}
			views, err := a.uploadOnce(cmd.Context(), entry, f, core.SourcePicker)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderModule(entry, views))
			return nil
		},
	}
}

func (a *app) watchCommand() *cobra.Command {
	var (
		module string
		settle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Upload every CSV dropped into a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.moduleArg(module)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("Watching %s for %s uploads. Press Ctrl+C to stop.", args[0], entry.Name)))
			w := watch.New(args[0], func(ctx context.Context, f core.File) error {
				views, err := a.uploadOnce(ctx, entry, f, core.SourceDrop)
				if err != nil {
					fmt.Fprint(out, renderError(f.Name+": "+err.Error()))
					return err
				}
				fmt.Fprintln(out, okStyle.Render("✓ "+f.Describe()))
				fmt.Fprint(out, renderModule(entry, views))
				return nil
			}, a.logger).WithSettle(settle)
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "Module receiving the files")
	cmd.Flags().DurationVar(&settle, "settle", watch.DefaultSettle, "Quiet time after the last write before a file is uploaded")
	_ = cmd.MarkFlagRequired("module")
	return cmd
}

func (a *app) insightsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insights <module>",
		Short: "Print the latest insights of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.moduleArg(args[0])
			if err != nil {
				return err
			}
			text, err := a.insights(cmd.Context(), entry)
			if err != nil {
				return fmt.Errorf("fetch insights: %s", core.ErrorMessage(err))
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTitle(entry.HeadingFor(true), entry.Accent)+text)
			return nil
		},
	}
}

// insights fetches both read endpoints of a module concurrently.
func (a *app) insights(ctx context.Context, entry catalog.Entry) (string, error) {
	c := a.client()
	g, ctx := errgroup.WithContext(ctx)

	switch entry.Slug {
	case core.ModuleExpense:
		var summary core.ExpenseSummary
		var trends []core.MonthAmount
		g.Go(func() (err error) { summary, err = c.ExpenseSummary(ctx); return })
		g.Go(func() (err error) { trends, err = c.ExpenseTrends(ctx); return })
		if err := g.Wait(); err != nil {
			return "", err
		}
		return renderExpenseInsights(entry, summary, trends), nil

	case core.ModuleFraud:
		var ins core.FraudInsights
		var days []core.FraudDay
		g.Go(func() (err error) { ins, err = c.FraudInsights(ctx); return })
		g.Go(func() (err error) { days, err = c.FraudChart(ctx); return })
		if err := g.Wait(); err != nil {
			return "", err
		}
		return renderFraudInsights(entry, ins, days), nil

	case core.ModuleInventory:
		var summary core.InventorySummary
		var forecast []core.ForecastPoint
		g.Go(func() (err error) { summary, err = c.InventorySummary(ctx); return })
		g.Go(func() (err error) { forecast, err = c.InventoryForecast(ctx); return })
		if err := g.Wait(); err != nil {
			return "", err
		}
		return renderInventoryState(entry, &summary, forecast), nil

	case core.ModuleGreenGrid:
		var data core.GreenGridData
		var hours []core.HourUsage
		g.Go(func() (err error) { data, err = c.GreenGridData(ctx); return })
		g.Go(func() (err error) { hours, err = c.GreenGridChart(ctx); return })
		if err := g.Wait(); err != nil {
			return "", err
		}
		return renderGreenGridInsights(entry, data, hours), nil
	}
	return "", fmt.Errorf("no insights for %s", entry.Slug)
}
