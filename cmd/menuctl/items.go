package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

type itemFlags struct {
	name        string
	category    string
	price       string
	discount    string
	description string
	available   bool
	imageURL    string
	imageFile   string
}

func (f *itemFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "item name")
	fs.StringVar(&f.category, "category", "", "category id")
	fs.StringVar(&f.price, "price", "", "price")
	fs.StringVar(&f.discount, "discount", "", "discount amount")
	fs.StringVar(&f.description, "description", "", "description")
	fs.BoolVar(&f.available, "available", true, "item can be ordered")
	fs.StringVar(&f.imageURL, "image-url", "", "image URL")
	fs.StringVar(&f.imageFile, "image-file", "", "path to an image to upload")
}

// apply copies the flags that were set onto the form.
func (f *itemFlags) apply(fs *pflag.FlagSet, form *domain.ItemForm) error {
	if fs.Changed("name") {
		form.Name = f.name
	}
	if fs.Changed("category") {
		form.CategoryID = f.category
	}
	if fs.Changed("price") {
		form.Price = f.price
	}
	if fs.Changed("discount") {
		form.Discount = f.discount
	}
	if fs.Changed("description") {
		form.Description = f.description
	}
	if fs.Changed("available") {
		form.Available = f.available
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

func readUpload(path string) (domain.UploadFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.UploadFile{}, err
	}
	return domain.UploadFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newItemsCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Menu items",
	}
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsEditCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))
	cmd.AddCommand(newItemsToggleCmd(app))
	return cmd
}

func newItemsListCmd(app *cliApp) *cobra.Command {
	var filter domain.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List menu items matching the filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			app.service.SetFilter(filter)
			menu := app.service.Snapshot()
			fmt.Fprintln(cmd.OutOrStdout(), renderItems(menu))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "name or description substring")
	cmd.Flags().StringVar(&filter.CategoryID, "category", domain.AllCategories,
		"category id or \"all\"")
	return cmd
}

func newItemsAddCmd(app *cliApp) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a menu item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			form, err := app.service.OpenItemForm(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := flags.apply(cmd.Flags(), &form); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.service.SubmitItemForm(cmd.Context(), form); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("item added"))
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newItemsEditCmd(app *cliApp) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a menu item, unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			form, err := app.service.OpenItemForm(&id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := flags.apply(cmd.Flags(), &form); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.service.SubmitItemForm(cmd.Context(), form); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("item updated"))
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newItemsDeleteCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.service.RequestItemDelete(id); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.service.ConfirmItemDelete(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("item deleted"))
			return nil
		},
	}
}

func newItemsToggleCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip item availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.connect(cmd); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.service.ToggleItemAvailability(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			item, _ := app.store.Item(id)
			fmt.Fprintln(cmd.OutOrStdout(),
				okStyle.Render(fmt.Sprintf("%s available: %t", item.Name, item.Available)))
			return nil
		},
	}
}
