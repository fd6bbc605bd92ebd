package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/motofleet/internal/client/inventory"
	"github.com/mamadbah2/motofleet/internal/domain/models"
)

func (a *app) inventory() (*inventory.Controller, error) {
	token, err := a.token()
	if err != nil {
		return nil, err
	}
	return inventory.NewController(inventory.NewService(a.fleet(), a.tr, a.logger), token), nil
}

func newMotosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "motos",
		Aliases: []string{"moto"},
		Short:   "Manage the moto inventory",
	}
	cmd.AddCommand(newMotosListCmd(a), newMotosAddCmd(a), newMotosEditCmd(a), newMotosRemoveCmd(a))
	return cmd
}

func newMotosListCmd(a *app) *cobra.Command {
	var category, search, view string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List motos, optionally filtered",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.inventory()
			if err != nil {
				return err
			}
			if err := ctrl.Reload(cmd.Context()); err != nil {
				return err
			}
			ctrl.SetCategory(category)
			ctrl.SetSearch(search)
			ctrl.SetViewMode(inventory.ViewMode(view))

			motos := ctrl.Filtered()
			fmt.Fprintf(a.out, "%s: %s\n", a.tr.T("table.category"), strings.Join(ctrl.Categories(), " | "))
			if len(motos) == 0 {
				a.println("inventory.empty")
				return nil
			}

			if ctrl.ViewMode() == inventory.ViewGrid {
				for _, m := range motos {
					fmt.Fprintf(a.out, "[%s] %s  %s  (%s)\n", m.SubTitle, m.Title, m.Plate, m.ID)
				}
				return nil
			}

			t := a.newTable("table.id", "table.title", "table.category", "table.plate", "table.stock")
			for _, m := range motos {
				t.row(m.ID, m.Title, m.SubTitle, m.Plate, orDash(deref(m.StockID)))
			}
			return t.flush()
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", models.CategoryAll, "category filter (All, Pop, E, Sport)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "search title or plate")
	cmd.Flags().StringVar(&view, "view", string(inventory.ViewList), "grid or list")
	return cmd
}

func newMotosAddCmd(a *app) *cobra.Command {
	var in models.MotoInput
	var stock string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a moto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.inventory()
			if err != nil {
				return err
			}
			if stock != "" {
				in.StockID = &stock
			}
			created, err := ctrl.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.println("moto.created", created.Plate)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "moto title")
	cmd.Flags().StringVar(&in.SubTitle, "category", "", "category (Pop, E, Sport)")
	cmd.Flags().StringVar(&in.Plate, "plate", "", "license plate")
	cmd.Flags().StringVar(&stock, "stock", "", "stock id")
	return cmd
}

func newMotosEditCmd(a *app) *cobra.Command {
	var title, category, plate, stock string
	var clearStock bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change some fields of a moto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.inventory()
			if err != nil {
				return err
			}

			var changes models.MotoChanges
			flags := cmd.Flags()
			if flags.Changed("title") {
				changes.Title = &title
			}
			if flags.Changed("category") {
				changes.SubTitle = &category
			}
			if flags.Changed("plate") {
				changes.Plate = &plate
			}
			if flags.Changed("stock") {
				changes.StockID = &stock
			}
			changes.ClearStock = clearStock
			if changes.Empty() {
				return fmt.Errorf("nothing to change: pass at least one of --title, --category, --plate, --stock, --clear-stock")
			}

			updated, err := ctrl.Edit(cmd.Context(), args[0], changes)
			if err != nil {
				return err
			}
			a.println("moto.updated", updated.Plate)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "moto title")
	cmd.Flags().StringVar(&category, "category", "", "category (Pop, E, Sport)")
	cmd.Flags().StringVar(&plate, "plate", "", "license plate")
	cmd.Flags().StringVar(&stock, "stock", "", "stock id")
	cmd.Flags().BoolVar(&clearStock, "clear-stock", false, "detach the moto from its stock")
	return cmd
}

func newMotosRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a moto",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.inventory()
			if err != nil {
				return err
			}
			if err := ctrl.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.println("moto.deleted")
			return nil
		},
	}
}
