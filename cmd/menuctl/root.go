package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/niksmo/menu-admin/config"
	"github.com/niksmo/menu-admin/internal/adapter/restapi"
	"github.com/niksmo/menu-admin/internal/core/catalog"
	"github.com/niksmo/menu-admin/internal/core/service"
)

type cliApp struct {
	configPath string
	baseURL    string

	cfg     config.Config
	store   *catalog.Store
	service *service.Service
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	cmd := &cobra.Command{
		Use:          "menuctl",
		Short:        "Manage restaurant menu items and categories",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  menuctl items list --category 2 --search soup
  menuctl items add --name Borscht --category 2 --price 7.5 --description "Beet soup"
  menuctl items toggle 14
  menuctl categories delete 3
`),
	}

	cmd.PersistentFlags().StringVar(&app.configPath, "config",
		os.Getenv("MENUADMIN_CONFIG_FILE"), "config file")
	cmd.PersistentFlags().StringVar(&app.baseURL, "base-url", "",
		"backend API base URL, overrides api.base_url")

	cmd.AddCommand(newPingCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newTablesCmd(app))

	return cmd
}

func (app *cliApp) loadConfig() error {
	const op = "cliApp.loadConfig"

	cfg, err := config.LoadFile(app.configPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if app.baseURL != "" {
		cfg.API.BaseURL = app.baseURL
	}
	app.cfg = cfg

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: cfg.LogLevel})))
	return nil
}

// connect builds the admin service and loads the catalog.
func (app *cliApp) connect(cmd *cobra.Command) error {
	const op = "cliApp.connect"

	if err := app.loadConfig(); err != nil {
		return err
	}
	cfg := app.cfg

	client, err := restapi.NewClient(
		cfg.API.BaseURL, restapi.TimeoutOpt(cfg.API.Timeout),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	app.store = catalog.NewStore()
	app.service, err = service.New(
		restapi.NewCatalog(client),
		app.store,
		service.MaxImageBytesOpt(cfg.Upload.MaxImageBytes),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := app.service.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// A reportedError has already been written to the command's stderr.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func writeErr(cmd *cobra.Command, err error) error {
	printErr(cmd.ErrOrStderr(), err)
	return reportedError{err}
}

// reportErr prints errors that cobra returned before any command could
// write them, such as unknown flags or a wrong argument count.
func reportErr(w io.Writer, err error) {
	var reported reportedError
	if err == nil || errors.As(err, &reported) {
		return
	}
	printErr(w, err)
}

func printErr(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("error: "+err.Error()))
}

func newPingCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reachable: %d items, %d categories\n",
				app.cfg.API.BaseURL,
				len(app.store.Items()),
				len(app.store.Categories()),
			)
			return nil
		},
	}
}
