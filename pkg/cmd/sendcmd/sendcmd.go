package sendcmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/irtelemetry/pkg/config"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/broadcast"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/region/shm"
)

var (
	dryRun     bool
	floatValue float32
)

func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sendcmd <command> [var1] [var2] [var3]",
		Short: "sends a broadcast command to the simulator",
		Long: "sends a broadcast command to the simulator\n\nCommands: " +
			strings.Join(lo.Map(broadcast.Commands(),
				func(c broadcast.Command, _ int) string { return c.String() }), ", "),
		Args: cobra.RangeArgs(1, 4),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.SetupLogger()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := buildMessage(args, cmd.Flags().Changed("float"), floatValue)
			if err != nil {
				return err
			}
			return send(cmd, msg)
		},
	}
	cmd.Flags().BoolVar(&dryRun,
		"dry-run",
		false,
		"only print the encoded message")
	cmd.Flags().Float32Var(&floatValue,
		"float",
		0,
		"float parameter (sent scaled by 65536 instead of var2)")
	return cmd
}

func send(cmd *cobra.Command, msg broadcast.Message) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, msg.String())
	if dryRun {
		rec := &broadcast.Recorder{MsgID: 1}
		if err := broadcast.NewSender(rec).SendMessage(msg); err != nil {
			return err
		}
		for _, n := range rec.Messages {
			fmt.Fprintf(out, "notify msg=%d wParam=%d lParam=%d\n", n.MsgID, n.WParam, n.LParam)
		}
		return nil
	}
	ch, err := shm.NewChannel()
	if err != nil {
		return err
	}
	return broadcast.NewSender(ch).SendMessage(msg)
}

// buildMessage encodes args (command name or number followed by up to
// three integer parameters)
func buildMessage(args []string, useFloat bool, value float32) (broadcast.Message, error) {
	cmd, err := parseCommand(args[0])
	if err != nil {
		return broadcast.Message{}, err
	}
	vars := make([]int32, 3)
	for i, arg := range args[1:] {
		v, err := strconv.ParseInt(arg, 0, 32)
		if err != nil {
			return broadcast.Message{}, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		vars[i] = int32(v)
	}
	switch {
	case useFloat:
		if len(args) > 2 {
			return broadcast.Message{}, fmt.Errorf("--float replaces var2 and var3")
		}
		return broadcast.EncodeFloat(cmd, vars[0], value), nil
	case len(args) == 4:
		return broadcast.Encode3(cmd, vars[0], vars[1], vars[2]), nil
	default:
		return broadcast.Encode(cmd, vars[0], vars[1]), nil
	}
}

func parseCommand(arg string) (broadcast.Command, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		cmd := broadcast.Command(n)
		if !cmd.Valid() {
			return 0, fmt.Errorf("command %d out of range", n)
		}
		return cmd, nil
	}
	return broadcast.ParseCommand(arg)
}
