package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/internal/version"
)

func newLangCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [pt|es]",
		Short: "Show or store the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(a.out, a.tr.Lang())
				return nil
			}
			if !i18n.IsSupported(args[0]) {
				return apperrors.ValidationError(a.tr.T("lang.unsupported", args[0], strings.Join(i18n.Supported(), ", ")))
			}

			lang := i18n.Resolve(args[0])
			if err := a.store.SetLang(lang); err != nil {
				return err
			}
			a.tr = i18n.New(lang)
			a.println("lang.changed", lang)
			return nil
		},
	}
}

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the moto models in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			t := a.newTable("table.id", "table.category", "table.title")
			for _, entry := range models.Catalog() {
				t.row(entry.ID, string(entry.Category), a.tr.T(entry.DescriptionKey))
			}
			return t.flush()
		},
	}
}

func newAboutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Describe fleetctl",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a.println("about.text", version.Version)
			return nil
		},
	}
}
