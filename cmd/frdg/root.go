package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/config"
	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/query"
	"github.com/mamadbah2/frdg/internal/service/inventory"
	"github.com/mamadbah2/frdg/internal/view"
	"github.com/mamadbah2/frdg/pkg/clients/foods"
	"github.com/mamadbah2/frdg/pkg/logger"
)

type rootOptions struct {
	envFile string
	apiURL  string
	verbose bool
}

// app is the client wiring shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	cache  *query.Cache
	inv    *inventory.Service
	opts   view.Options
}

func (a *app) close() {
	a.cache.Close()
	_ = a.logger.Sync()
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "frdg",
		Short:         "Keep track of what is in the fridge and when it goes off",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load settings from this .env file")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "foods API base URL (overrides FRDG_API_URL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newDeleteCmd(opts),
		newShellCmd(opts),
	)
	return root
}

func setup(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadClient(opts.envFile)
	if err != nil {
		return nil, err
	}
	if opts.apiURL != "" {
		cfg.Client.BaseURL = opts.apiURL
	}

	log, err := logger.NewConsole(opts.verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	loc := config.Location(cfg.Client.Timezone)
	client := foods.NewClient(cfg.Client, log.Named("gateway"))
	cache := query.New(log.Named("query"))

	return &app{
		cfg:    cfg,
		logger: log,
		cache:  cache,
		inv:    inventory.NewService(client, cache, log.Named("svc.inventory")),
		opts: view.Options{
			LoadingDelay: cfg.Client.LoadingDelay,
			Styler:       view.StylerFor(cmd.OutOrStdout()),
			Now:          func() time.Time { return time.Now().In(loc) },
			Logger:       log.Named("view"),
		},
	}, nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show every food with its best-before date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			return renderList(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		name string
		date string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a food",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			form := view.NewFoodForm(a.inv, models.DateOf(a.opts.Now()))
			form.SetName(name)
			if date != "" {
				d, err := models.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				form.SetDate(&d)
			}

			if err := form.Submit(cmd.Context()); err != nil {
				return err
			}
			return renderList(cmd.Context(), a, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "name of the food")
	cmd.Flags().StringVarP(&date, "date", "d", "", "best-before date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a food by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("food ids are whole numbers, got %q", args[0])
			}

			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.inv.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return renderList(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive inventory: add, delete and watch foods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			page := view.NewPage(a.inv, cmd.OutOrStdout(), a.opts)
			return page.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

func renderList(ctx context.Context, a *app, out io.Writer) error {
	list := view.NewListView(a.inv, out, a.opts)
	defer list.Unmount()
	return list.Mount(ctx)
}
