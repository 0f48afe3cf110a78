package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/cmd/util"
	"github.com/mpapenbr/irtelemetry/pkg/config"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/processing"
	"github.com/mpapenbr/irtelemetry/pkg/processing/laptiming"
	"github.com/mpapenbr/irtelemetry/pkg/render"
	"github.com/mpapenbr/irtelemetry/pkg/session"
)

var (
	errNotConnected = errors.New("no connected simulator data found")
	errNoData       = errors.New("no consistent data available")
)

var (
	withValues bool // vars: add the current value
	rawDoc     bool // session: print the raw document
	allCars    bool // timing: include cars not in the world
)

func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "shows the content of a shared memory dump",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.Source = util.SourceFile
			_, err := config.SetupLogger()
			return err
		},
	}
	cmd.PersistentFlags().StringVarP(&config.DumpFile,
		"dump-file",
		"f",
		"",
		"memory dump to inspect")
	cmd.AddCommand(newVarsCmd(), newTimingCmd(), newSessionCmd(), newTelemetryCmd())
	return cmd
}

func newVarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vars",
		Short: "lists the variable catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd.Context(), func(conn *irsdk.Connection) error {
				return showVars(cmd.OutOrStdout(), conn)
			})
		},
	}
	cmd.Flags().BoolVar(&withValues, "values", false, "show the current value of each variable")
	return cmd
}

func newTimingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timing",
		Short: "shows the ranked timing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFrame(cmd.Context(), func(frame *processing.Frame) error {
				rows := frame.Timing
				if !allCars {
					rows = laptiming.ActiveEntries(rows)
				}
				render.Timing(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&allCars, "all", false, "include cars which are not in the world")
	return cmd
}

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "shows the roster and camera groups of the session document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd.Context(), func(conn *irsdk.Connection) error {
				return showSession(cmd.Context(), cmd.OutOrStdout(), conn)
			})
		},
	}
	cmd.Flags().BoolVar(&rawDoc, "raw", false, "print the raw session document")
	return cmd
}

func newTelemetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telemetry",
		Short: "shows the telemetry of the player's car",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFrame(cmd.Context(), func(frame *processing.Frame) error {
				render.Telemetry(cmd.OutOrStdout(), &frame.Telemetry)
				return nil
			})
		},
	}
}

//nolint:whitespace // can't make both editor and linter happy
func withConnection(
	ctx context.Context, fn func(conn *irsdk.Connection) error,
) error {
	platform, err := util.NewPlatform(ctx)
	if err != nil {
		return err
	}
	conn := irsdk.NewConnection(platform,
		irsdk.WithLogger(log.Default().Named("irsdk.conn")))
	defer conn.Close()
	if !conn.IsConnected() {
		return errNotConnected
	}
	return fn(conn)
}

func withFrame(ctx context.Context, fn func(frame *processing.Frame) error) error {
	return withConnection(ctx, func(conn *irsdk.Connection) error {
		frame, err := processing.NewProcessor(conn).Poll(ctx)
		if err != nil {
			return err
		}
		if frame == nil {
			return errNoData
		}
		return fn(frame)
	})
}

func showVars(w io.Writer, conn *irsdk.Connection) error {
	cat, err := conn.Catalog()
	if err != nil {
		return err
	}
	var reader *irsdk.VarReader
	if withValues {
		h, _ := conn.Header()
		snap, ok := irsdk.NewBufferSelector().Select(h)
		if !ok {
			return errNoData
		}
		reader = irsdk.NewVarReader(cat, snap)
	}
	render.Vars(w, cat.Descriptors(), reader)
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func showSession(
	ctx context.Context, w io.Writer, conn *irsdk.Connection,
) error {
	h, ok := conn.Header()
	if !ok {
		return errNotConnected
	}
	if rawDoc {
		raw, err := irsdk.SessionDocument(h)
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	}
	cat, err := conn.Catalog()
	if err != nil {
		return err
	}
	info, err := session.NewProvider().Info(ctx, cat.Generation(), h)
	if err != nil {
		return err
	}
	wi := info.Doc.WeekendInfo
	fmt.Fprintf(w, "Track: %s (%s) id %d, session update %d\n",
		wi.TrackDisplayName, wi.TrackConfigName, wi.TrackID, info.Key.Update)
	render.Roster(w, info.Roster)
	render.Cameras(w, info.Doc.Cameras())
	return nil
}
