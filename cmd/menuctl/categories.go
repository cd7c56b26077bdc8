package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/service"
)

type categoryFlags struct {
	label     string
	imageURL  string
	imageFile string
}

func (f *categoryFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.label, "label", "", "category name")
	fs.StringVar(&f.imageURL, "image-url", "", "image URL")
	fs.StringVar(&f.imageFile, "image-file", "", "path to an image to upload")
}

func (f *categoryFlags) apply(fs *pflag.FlagSet, form *domain.CategoryForm) error {
	if fs.Changed("label") {
		form.Label = f.label
	}
	if fs.Changed("image-url") {
		form.SetImageMode(domain.ImageModeURL)
		form.ImageURL = f.imageURL
	}
	if fs.Changed("image-file") {
		file, err := readUpload(f.imageFile)
		if err != nil {
			return err
		}
		form.SetImageMode(domain.ImageModeFile)
		form.ImageFile = &file
	}
	return nil
}

func newCategoriesCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Menu categories",
	}
	cmd.AddCommand(newCategoriesListCmd(app))
	cmd.AddCommand(newCategoriesSaveCmd(app, "add"))
	cmd.AddCommand(newCategoriesSaveCmd(app, "edit"))
	cmd.AddCommand(newCategoriesDeleteCmd(app))
	return cmd
}

func newCategoriesListCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with item counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCategories(app.service.Snapshot()))
			return nil
		},
	}
}

func newCategoriesSaveCmd(app *cliApp, verb string) *cobra.Command {
	var flags categoryFlags

	cmd := &cobra.Command{
		Use:   verb,
		Short: "Add a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var id *int64
			if len(args) == 1 {
				v, err := parseID(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				id = &v
			}
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			form, err := app.service.OpenCategoryForm(id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := flags.apply(cmd.Flags(), &form); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.service.SubmitCategoryForm(cmd.Context(), form); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("category saved"))
			return nil
		},
	}
	if verb == "edit" {
		cmd.Use = "edit <id>"
		cmd.Short = "Edit a category, unset flags keep their value"
		cmd.Args = cobra.ExactArgs(1)
	}
	flags.register(cmd.Flags())
	return cmd
}

func newCategoriesDeleteCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category without menu items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			res, err := app.service.RequestCategoryDelete(id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !res.Allowed {
				return writeErr(cmd, fmt.Errorf("%w: %s", domain.ErrDeleteBlocked, res.Reason))
			}
			if err := app.service.ConfirmCategoryDelete(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("category deleted"))
			return nil
		},
	}
}

func newTablesCmd(app *cliApp) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List restaurant tables from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadConfig(); err != nil {
				return writeErr(cmd, err)
			}
			board := service.NewTableBoard(app.cfg.DomainTables())
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTables(board.Search(search), board.Stats()))
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "number, name or location substring")
	return cmd
}
