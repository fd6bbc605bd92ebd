package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/motofleet/internal/client/stocks"
	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/validation"
	"github.com/mamadbah2/motofleet/pkg/clients/expo"
)

func (a *app) stocks() (*stocks.Controller, error) {
	token, err := a.token()
	if err != nil {
		return nil, err
	}
	notifier := stocks.NewNotifier(expo.NewClient(a.cfg.Push.URL, a.cfg.Timeout), a.cfg.Push, a.tr, a.logger)
	return stocks.NewController(stocks.NewService(a.fleet(), a.tr, a.logger), notifier, token), nil
}

// quantity parses the --quantity text, reporting a bad number as a field error.
func (a *app) quantity(text string) (*int, error) {
	q, err := validation.ParseQuantity(text)
	if appErr, ok := apperrors.As(err); ok {
		return nil, apperrors.FieldsError(a.tr.Fields(appErr.Fields))
	}
	return q, err
}

func newStocksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stocks",
		Aliases: []string{"stock"},
		Short:   "Manage the storage yards",
	}
	cmd.AddCommand(newStocksListCmd(a), newStocksAddCmd(a), newStocksEditCmd(a), newStocksRemoveCmd(a))
	return cmd
}

func newStocksListCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stocks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.stocks()
			if err != nil {
				return err
			}
			if err := ctrl.Reload(cmd.Context()); err != nil {
				return err
			}
			ctrl.SetSearch(search)

			items := ctrl.Filtered()
			if len(items) == 0 {
				a.println("stock.empty")
				return nil
			}
			t := a.newTable("table.id", "table.name", "table.quantity", "table.location")
			for _, s := range items {
				t.row(s.ID, s.Name, strconv.Itoa(s.Quantity), orDash(s.Location))
			}
			return t.flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "search name or location")
	return cmd
}

func newStocksAddCmd(a *app) *cobra.Command {
	var name, quantity, location string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.stocks()
			if err != nil {
				return err
			}
			q, err := a.quantity(quantity)
			if err != nil {
				return err
			}
			created, err := ctrl.Add(cmd.Context(), models.StockInput{Name: name, Quantity: q, Location: location})
			if err != nil {
				return err
			}
			a.println("stock.created", created.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "stock name")
	cmd.Flags().StringVar(&quantity, "quantity", "", "number of motos it holds")
	cmd.Flags().StringVar(&location, "location", "", "address or area")
	return cmd
}

func newStocksEditCmd(a *app) *cobra.Command {
	var name, quantity, location string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a stock; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.stocks()
			if err != nil {
				return err
			}
			if err := ctrl.Reload(cmd.Context()); err != nil {
				return err
			}

			var current *models.Stock
			for _, s := range ctrl.Items() {
				if s.ID == args[0] {
					s := s
					current = &s
					break
				}
			}
			if current == nil {
				return apperrors.NotFoundError(a.tr.T("stock.errors.update"))
			}

			in := models.StockInput{Name: current.Name, Quantity: models.IntPtr(current.Quantity), Location: current.Location}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = name
			}
			if flags.Changed("location") {
				in.Location = location
			}
			if flags.Changed("quantity") {
				if in.Quantity, err = a.quantity(quantity); err != nil {
					return err
				}
			}

			updated, err := ctrl.Edit(cmd.Context(), current.ID, in)
			if err != nil {
				return err
			}
			a.println("stock.updated", updated.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "stock name")
	cmd.Flags().StringVar(&quantity, "quantity", "", "number of motos it holds")
	cmd.Flags().StringVar(&location, "location", "", "address or area")
	return cmd
}

func newStocksRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a stock",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.stocks()
			if err != nil {
				return err
			}
			if err := ctrl.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.println("stock.deleted")
			return nil
		},
	}
}
