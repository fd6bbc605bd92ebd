package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/motofleet/internal/client/account"
	"github.com/mamadbah2/motofleet/internal/domain/models"
)

const passwordEnv = "FLEETCTL_PASSWORD"

func credentialFlags(cmd *cobra.Command, creds *models.Credentials) {
	cmd.Flags().StringVar(&creds.Email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password (or "+passwordEnv+")")
}

func withPasswordEnv(creds models.Credentials) models.Credentials {
	if creds.Password == "" {
		creds.Password = os.Getenv(passwordEnv)
	}
	return creds
}

func newLoginCmd(a *app) *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := account.NewService(a.identity(), a.tr, a.logger)
			login, err := svc.Login(cmd.Context(), withPasswordEnv(creds))
			if err != nil {
				return err
			}
			if err := a.store.Open(login.Token, login.Email); err != nil {
				return err
			}
			a.println("auth.login.success", login.Email)
			return nil
		},
	}
	credentialFlags(cmd, &creds)
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := account.NewService(a.identity(), a.tr, a.logger)
			login, err := svc.Register(cmd.Context(), withPasswordEnv(creds))
			if err != nil {
				return err
			}
			if err := a.store.Open(login.Token, login.Email); err != nil {
				return err
			}
			a.println("auth.register.success", login.Email)
			return nil
		},
	}
	credentialFlags(cmd, &creds)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.store.Close(); err != nil {
				return err
			}
			a.println("auth.logout.success")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if _, err := a.token(); err != nil {
				return err
			}
			a.println("auth.whoami", a.sess.Email, a.tr.Lang())
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the account profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show e-mail and display name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.token()
			if err != nil {
				return err
			}
			profile, err := account.NewService(a.identity(), a.tr, a.logger).GetProfile(cmd.Context(), token)
			if err != nil {
				return err
			}
			a.println("user.profile", profile.Email, profile.Name)
			return nil
		},
	})

	var name string
	set := &cobra.Command{
		Use:   "set",
		Short: "Change the display name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.token()
			if err != nil {
				return err
			}
			if err := account.NewService(a.identity(), a.tr, a.logger).UpdateProfile(cmd.Context(), token, name); err != nil {
				return err
			}
			a.println("user.updated")
			return nil
		},
	}
	set.Flags().StringVar(&name, "name", "", "display name")
	_ = set.MarkFlagRequired("name")
	cmd.AddCommand(set)
	return cmd
}
