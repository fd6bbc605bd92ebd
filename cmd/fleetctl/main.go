package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/client/session"
	"github.com/mamadbah2/motofleet/internal/config"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/pkg/clients/fleetapi"
	"github.com/mamadbah2/motofleet/pkg/clients/identity"
	"github.com/mamadbah2/motofleet/pkg/clients/iotapi"
	"github.com/mamadbah2/motofleet/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout, errOut: os.Stderr}
	root := newRootCmd(a)
	if err := root.ExecuteContext(ctx); err != nil {
		a.printError(err)
		stop()
		os.Exit(1)
	}
}

// app is the state shared by every subcommand, built once the flags are parsed.
type app struct {
	envFile string
	verbose bool
	lang    string

	out    io.Writer
	errOut io.Writer

	cfg    *config.ClientConfig
	logger *zap.Logger
	store  *session.Store
	sess   session.Session
	tr     *i18n.Translator
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Operate the Mottu fleet: inventory, stocks and telemetry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with the client settings")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log HTTP failures and debug details to stderr")
	flags.StringVar(&a.lang, "lang", "", "language for this run (pt or es)")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newMotosCmd(a),
		newStocksCmd(a),
		newIoTCmd(a),
		newLangCmd(a),
		newModelsCmd(a),
		newAboutCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadClient(a.envFile)
	if err != nil {
		return fmt.Errorf("load client config: %w", err)
	}
	a.cfg = cfg
	a.logger = logger.NewCLI(a.verbose)
	a.store = session.NewStore(cfg.SessionFile, nil)

	sess, err := a.store.Load()
	if err != nil {
		return err
	}
	a.sess = sess

	preferred := a.lang
	if preferred == "" {
		preferred = sess.Lang
	}
	a.tr = i18n.New(i18n.Resolve(preferred))
	return nil
}

func (a *app) token() (string, error) {
	if !a.sess.LoggedIn() {
		return "", session.ErrNotLoggedIn
	}
	return a.sess.Token, nil
}

func (a *app) identity() identity.Client {
	return identity.NewClient(a.cfg.Identity, a.cfg.Timeout)
}

func (a *app) fleet() fleetapi.Client {
	return fleetapi.NewClient(a.cfg.FleetAPIURL, a.cfg.Timeout)
}

func (a *app) iot() iotapi.Client {
	return iotapi.NewClient(a.cfg.IoTAPIURL, a.cfg.Timeout)
}

func (a *app) println(key string, args ...any) {
	fmt.Fprintln(a.out, a.tr.T(key, args...))
}

// printError renders err for the operator: the general message, then one line per field.
func (a *app) printError(err error) {
	tr := a.tr
	if tr == nil {
		tr = i18n.New(i18n.Resolve(a.lang))
	}

	if errors.Is(err, session.ErrNotLoggedIn) {
		fmt.Fprintln(a.errOut, tr.T("auth.errors.notLoggedIn"))
		return
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		fmt.Fprintln(a.errOut, err)
		return
	}
	if appErr.Message != "" {
		fmt.Fprintln(a.errOut, appErr.Message)
	}
	fields := make([]string, 0, len(appErr.Fields))
	for field := range appErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(a.errOut, "  %s: %s\n", field, appErr.Fields[field])
	}
	if a.verbose && appErr.Cause != nil {
		fmt.Fprintf(a.errOut, "  (%v)\n", appErr.Cause)
	}
}
