package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/motofleet/internal/client/iot"
	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
)

func newIoTCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iot",
		Short: "Telemetry dashboard, alerts and commands",
	}
	cmd.AddCommand(
		newIoTPingCmd(a),
		newIoTStatusCmd(a),
		newIoTDashboardCmd(a),
		newIoTAlertCmd(a),
		newIoTCommandCmd(a),
		newIoTRegisterDeviceCmd(a),
	)
	return cmd
}

func (a *app) level(l iot.Level) string {
	return a.tr.T("iot.level." + string(l))
}

func (a *app) number(v *float64, format string) string {
	if v == nil {
		return a.tr.T("iot.noData")
	}
	return fmt.Sprintf(format, *v)
}

func newIoTPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the IoT API answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.iot().Health(cmd.Context()); err != nil {
				return apperrors.ExternalError(a.tr.T("iot.errors.load"), err)
			}
			a.println("iot.healthy")
			return nil
		},
	}
}

func newIoTStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [moto]",
		Short: "Show the consolidated status of one moto or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := a.iot()

			var statuses []models.MotoStatus
			if len(args) == 1 {
				st, err := api.Status(cmd.Context(), args[0])
				if err != nil {
					return apperrors.ExternalError(a.tr.T("iot.errors.notFound"), err)
				}
				statuses = []models.MotoStatus{*st}
			} else {
				all, err := api.AllStatus(cmd.Context())
				if err != nil {
					return apperrors.ExternalError(a.tr.T("iot.errors.load"), err)
				}
				statuses = all
			}

			if len(statuses) == 0 {
				a.println("iot.noMotos")
				return nil
			}
			t := a.newTable("table.moto", "iot.status", "iot.battery", "table.reason", "table.time")
			for _, s := range statuses {
				t.row(s.MotoID,
					fmt.Sprintf("%s (%s)", s.Status, a.level(iot.StatusLevel(s.Status))),
					a.number(s.Battery, "%.1f%%"),
					orDash(strings.Join(s.Reasons, ", ")),
					orDash(s.LastUpdate))
			}
			return t.flush()
		},
	}
}

func newIoTDashboardCmd(a *app) *cobra.Command {
	var moto string
	var watch time.Duration
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard for one moto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash := iot.NewDashboard(a.iot(), a.tr, a.logger)
			ctx := cmd.Context()
			for {
				if err := dash.Load(ctx); err != nil {
					return err
				}
				if moto != "" {
					if err := dash.Select(moto); err != nil {
						return err
					}
				}
				a.printDashboard(dash)

				if watch <= 0 {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(watch):
					fmt.Fprintln(a.out)
				}
			}
		},
	}
	cmd.Flags().StringVarP(&moto, "moto", "m", "", "moto id (defaults to the first one)")
	cmd.Flags().DurationVarP(&watch, "watch", "w", 0, "refresh interval; 0 prints once")
	return cmd
}

func (a *app) printDashboard(dash *iot.Dashboard) {
	v := dash.View()
	if v.MotoID == "" {
		a.println("iot.noMotos")
		return
	}

	fmt.Fprintf(a.out, "%s\n%s\n\n", a.tr.T("iot.title"), a.tr.T("iot.selected", v.MotoID))

	status := a.tr.T("iot.noData")
	if v.Status != nil {
		status = v.Status.Status
	}
	location := a.tr.T("iot.noData")
	if v.Lat != nil && v.Lon != nil {
		location = fmt.Sprintf("%.5f, %.5f", *v.Lat, *v.Lon)
	}

	printLines(a.out,
		fmt.Sprintf("%s: %s (%s)", a.tr.T("iot.status"), status, a.level(v.StatusLevel)),
		fmt.Sprintf("%s: %s (%s)", a.tr.T("iot.battery"), a.number(v.Battery, "%.1f%%"), a.level(v.BatteryLevel)),
		fmt.Sprintf("%s: %s", a.tr.T("iot.accel"), a.number(v.Accel, "%.2f")),
		fmt.Sprintf("%s: %s", a.tr.T("iot.location"), location),
		fmt.Sprintf("%s: %s", a.tr.T("iot.map"), orDash(v.MapURL)),
	)
	if v.Status != nil && len(v.Status.Reasons) > 0 {
		fmt.Fprintf(a.out, "%s: %s\n", a.tr.T("table.reason"), strings.Join(v.Status.Reasons, ", "))
	}

	fmt.Fprintf(a.out, "\n%s\n", a.tr.T("iot.events"))
	if len(v.Events) == 0 {
		a.println("iot.noEvents")
		return
	}
	t := a.newTable("table.time", "table.type", "table.reason")
	for _, e := range v.Events {
		t.row(orDash(e.Timestamp), e.Type, orDash(e.Reason))
	}
	_ = t.flush()
}

func newIoTAlertCmd(a *app) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "alert <moto>",
		Short: "Record a manual alert for a moto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := iot.NewDashboard(a.iot(), a.tr, a.logger)
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}
			if err := dash.Select(args[0]); err != nil {
				return err
			}
			if _, err := dash.SendAlert(cmd.Context(), message); err != nil {
				return err
			}
			a.println("iot.alertSent", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "alert text (a default text is used when empty)")
	return cmd
}

func newIoTCommandCmd(a *app) *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "command <moto> <command>",
		Short: "Publish a command to a moto, e.g. force_maintenance or release_maintenance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseParams(params)
			if err != nil {
				return err
			}

			dash := iot.NewDashboard(a.iot(), a.tr, a.logger)
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}
			if err := dash.Select(args[0]); err != nil {
				return err
			}
			res, err := dash.SendCommand(cmd.Context(), args[1], parsed)
			if err != nil {
				return err
			}
			a.println("iot.commandSent", res.Payload.Command, args[0])
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "command parameter as key=value (repeatable)")
	return cmd
}

// parseParams turns key=value pairs into command params. Numbers and booleans keep
// their type.
func parseParams(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.ValidationError(fmt.Sprintf("invalid param %q, expected key=value", pair))
		}
		switch {
		case value == "true" || value == "false":
			out[key] = value == "true"
		default:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				out[key] = f
			} else {
				out[key] = value
			}
		}
	}
	return out, nil
}

func newIoTRegisterDeviceCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "register-device",
		Short: "Register this operator's push token for fleet alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idToken, err := a.token()
			if err != nil {
				return err
			}
			if token == "" {
				token = a.cfg.Push.DeviceToken
			}
			if strings.TrimSpace(token) == "" {
				return apperrors.ValidationError("no push token: pass --token or set EXPO_PUSH_TOKEN")
			}
			device := models.Device{Token: token, Email: a.sess.Email}
			if err := a.iot().RegisterDevice(cmd.Context(), idToken, device); err != nil {
				return apperrors.ExternalError(a.tr.T("iot.errors.load"), err)
			}
			a.println("iot.deviceRegistered")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Expo push token (defaults to EXPO_PUSH_TOKEN)")
	return cmd
}
