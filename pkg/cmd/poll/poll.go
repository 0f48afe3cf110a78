package poll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/cmd/util"
	"github.com/mpapenbr/irtelemetry/pkg/config"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/processing"
	"github.com/mpapenbr/irtelemetry/pkg/processing/laptiming"
	"github.com/mpapenbr/irtelemetry/pkg/publish"
	"github.com/mpapenbr/irtelemetry/pkg/publish/influx"
	"github.com/mpapenbr/irtelemetry/pkg/publish/mqtt"
	natsSink "github.com/mpapenbr/irtelemetry/pkg/publish/nats"
	"github.com/mpapenbr/irtelemetry/pkg/render"
	"github.com/mpapenbr/irtelemetry/pkg/utils/broadcast"
)

//nolint:funlen // by design
func NewPollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "polls the simulator and publishes timing and telemetry frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.Source,
		"source",
		util.SourceShm,
		"where to read the data from (shm, file)")
	cmd.Flags().StringVar(&config.DumpFile,
		"dump-file",
		"",
		"memory dump to read when source is file")
	cmd.Flags().BoolVar(&config.WatchDumpFile,
		"watch",
		false,
		"reload the dump file when it changes")
	cmd.Flags().StringVar(&config.PollInterval,
		"interval",
		"50ms",
		"duration between two poll cycles")
	cmd.Flags().IntVar(&config.Workers,
		"workers",
		8,
		"max concurrent per car reads")
	cmd.Flags().BoolVar(&config.SkipStale,
		"skip-stale",
		false,
		"don't publish a frame if the simulator did not write new data")
	cmd.Flags().StringVar(&config.NATSURL,
		"nats-url",
		"",
		"NATS server url (enables the nats sink)")
	cmd.Flags().StringVar(&config.NATSSubjectPrefix,
		"nats-subject-prefix",
		"irt",
		"prefix for NATS subjects")
	cmd.Flags().StringVar(&config.NATSKVBucket,
		"nats-kv-bucket",
		"irt_roster",
		"JetStream key value bucket for the roster (empty disables)")
	cmd.Flags().StringVar(&config.MQTTBroker,
		"mqtt-broker",
		"",
		"MQTT broker url (enables the mqtt sink)")
	cmd.Flags().StringVar(&config.MQTTTopic,
		"mqtt-topic",
		"irt",
		"base topic for MQTT messages")
	cmd.Flags().StringVar(&config.MQTTClientID,
		"mqtt-client-id",
		"",
		"MQTT client id (generated if empty)")
	cmd.Flags().StringVar(&config.InfluxURL,
		"influx-url",
		"",
		"InfluxDB url (enables the influx sink)")
	cmd.Flags().StringVar(&config.InfluxToken,
		"influx-token",
		"",
		"InfluxDB token")
	cmd.Flags().StringVar(&config.InfluxOrg,
		"influx-org",
		"",
		"InfluxDB organization")
	cmd.Flags().StringVar(&config.InfluxBucket,
		"influx-bucket",
		"irt",
		"InfluxDB bucket")
	cmd.Flags().BoolVar(&config.PrintFrames,
		"print",
		false,
		"print the timing table of each frame to stdout")
	return cmd
}

//nolint:funlen,cyclop // by design
func runPoll(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	if _, err := config.SetupLogger(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var telemetry *config.Telemetry
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(ctx); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}
	defer func() {
		if telemetry != nil {
			telemetry.Shutdown()
		}
	}()

	if err := util.WaitForServices(ctx,
		config.NATSURL, config.MQTTBroker, config.InfluxURL); err != nil {
		return err
	}

	platform, err := util.NewPlatform(ctx)
	if err != nil {
		return err
	}
	conn := irsdk.NewConnection(platform,
		irsdk.WithLogger(log.Default().Named("irsdk.conn")))
	defer conn.Close()

	sinks, err := setupSinks(ctx)
	if err != nil {
		return err
	}

	frames := make(chan *processing.Frame)
	bs := broadcast.NewBroadcastServer("frames", frames)
	wg := sync.WaitGroup{}
	for _, s := range sinks {
		ch := bs.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			publish.Run(ctx, s, ch, log.Default().Named("publish"))
		}()
	}
	if config.PrintFrames {
		ch := bs.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for frame := range ch {
				render.Timing(os.Stdout, frame.Timing)
			}
		}()
	}

	proc := processing.NewProcessor(conn,
		processing.WithOutput(frames),
		processing.WithSkipStale(config.SkipStale),
		processing.WithTimingEngine(laptiming.NewEngine(
			laptiming.WithWorkers(config.Workers))),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case v := <-sigChan:
			log.Debug("Got signal", log.Any("signal", v))
			cancel()
		case <-ctx.Done():
		}
	}()

	interval := util.ParseDuration(config.PollInterval, 50*time.Millisecond)
	log.Info("Start polling",
		log.String("source", config.Source),
		log.Duration("interval", interval),
		log.Int("sinks", len(sinks)))
	runErr := pollLoop(ctx, proc, interval)

	close(frames)
	wg.Wait()
	log.Info("Polling terminated")
	return runErr
}

// pollLoop runs one cycle per tick until ctx is done.
// Failed cycles are logged and the loop continues with the next tick.
// An error is logged again only when it differs from the previous one.
//
//nolint:whitespace // can't make both editor and linter happy
func pollLoop(
	ctx context.Context, proc *processing.Processor, interval time.Duration,
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastErr := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, err := proc.Poll(ctx)
			if err == nil {
				if lastErr != "" {
					log.Info("poll cycles recovered")
					lastErr = ""
				}
				continue
			}
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			if err.Error() != lastErr {
				log.Error("poll cycle failed", log.ErrorField(err))
				lastErr = err.Error()
			}
		}
	}
}

func setupSinks(ctx context.Context) (sinks []publish.Sink, err error) {
	ret := []publish.Sink{}
	defer func() {
		if err != nil {
			for _, s := range ret {
				s.Close()
			}
		}
	}()
	if config.NATSURL != "" {
		nc, err := nats.Connect(config.NATSURL, nats.Name("irt"))
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		s, err := natsSink.New(ctx, nc, config.NATSKVBucket,
			natsSink.WithSubjectPrefix(config.NATSSubjectPrefix))
		if err != nil {
			nc.Close()
			return nil, err
		}
		ret = append(ret, s)
	}
	if config.MQTTBroker != "" {
		client, err := mqtt.Connect(config.MQTTBroker, config.MQTTClientID,
			log.Default().Named("publish.mqtt"))
		if err != nil {
			return nil, err
		}
		ret = append(ret, mqtt.New(client, config.MQTTTopic))
	}
	if config.InfluxURL != "" {
		ret = append(ret, influx.New(config.InfluxURL, config.InfluxToken,
			config.InfluxOrg, config.InfluxBucket))
	}
	return ret, nil
}
