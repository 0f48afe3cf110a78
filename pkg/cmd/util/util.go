package util

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/config"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/region/file"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/region/shm"
	"github.com/mpapenbr/irtelemetry/pkg/utils"
)

const (
	SourceShm  = "shm"
	SourceFile = "file"
)

// NewPlatform returns the platform selected by config.Source
func NewPlatform(ctx context.Context) (irsdk.Platform, error) {
	switch strings.ToLower(config.Source) {
	case SourceShm:
		return shm.New(), nil
	case SourceFile:
		if config.DumpFile == "" {
			return nil, fmt.Errorf("source %s requires a dump file", SourceFile)
		}
		opts := []file.Option{file.WithLogger(log.Default().Named("irsdk.file"))}
		if config.WatchDumpFile {
			opts = append(opts, file.WithWatch(ctx))
		}
		return file.New(config.DumpFile, opts...), nil
	default:
		return nil, fmt.Errorf("unknown source %q", config.Source)
	}
}

// ParseDuration parses val, invalid values yield def
func ParseDuration(val string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Warn("Invalid duration value. Using default",
			log.String("value", val),
			log.Duration("default", def),
			log.ErrorField(err))
		return def
	}
	return d
}

// WaitForServices waits until all given broker urls accept connections.
// http(s) urls have to answer a request.
func WaitForServices(ctx context.Context, urls ...string) error {
	timeout := ParseDuration(config.WaitForServices, 60*time.Second)
	g, gCtx := errgroup.WithContext(ctx)
	for _, url := range urls {
		if url == "" {
			continue
		}
		addr, proto := utils.ExtractFromBrokerURL(url)
		if addr == "" {
			log.Warn("Could not extract address from url", log.String("url", url))
			continue
		}
		g.Go(func() error {
			log.Debug("Waiting for service",
				log.String("addr", addr), log.String("proto", proto))
			if proto == "http" || proto == "https" {
				return utils.WaitForHTTPResponse(gCtx, url, timeout)
			}
			return utils.WaitForTCP(gCtx, addr, timeout)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("required services not ready: %w", err)
	}
	log.Debug("Required services are available")
	return nil
}
