package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/mpapenbr/irtelemetry/log"
)

func WaitForTCP(ctx context.Context, addr string, timeout time.Duration) error {
	timeoutReached := time.Now().Add(timeout)
	start := time.Now()
	log.Debug("wait for tcp connection",
		log.String("addr", addr),
		log.String("timeout", timeout.String()))
	var d net.Dialer
	for time.Now().Before(timeoutReached) {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()

			log.Debug("tcp connection successful",
				log.String("addr", addr),
				log.String("duration", time.Since(start).String()))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return fmt.Errorf("%s could not be reached after %v", addr, timeout)
}

func WaitForHTTPResponse(ctx context.Context, url string, timeout time.Duration) error {
	timeoutReached := time.Now().Add(timeout)
	start := time.Now()
	log.Debug("wait for http request",
		log.String("url", url),
		log.String("timeout", timeout.String()))
	cli := &http.Client{}
	for time.Now().Before(timeoutReached) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		resp, err := cli.Do(req)
		if err == nil {
			resp.Body.Close()
			log.Debug("http request successful",
				log.String("url", url),
				log.String("duration", time.Since(start).String()))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("%s could not be reached after %v", url, timeout)
}

var defaultPorts = map[string]string{
	"nats":  "4222",
	"tls":   "4222",
	"tcp":   "1883",
	"mqtt":  "1883",
	"ssl":   "8883",
	"mqtts": "8883",
	"ws":    "80",
	"http":  "80",
	"wss":   "443",
	"https": "443",
}

// ExtractFromBrokerURL returns host:port of a broker url like
// nats://host:4222 or tcp://host. Missing ports are filled by scheme.
func ExtractFromBrokerURL(url string) (addr, proto string) {
	param := resolveRegex(
		"^(?P<proto>[a-z]+)://(.*@)?(?P<addr>(?P<host>[^:/]*?)(:(?P<port>\\d+))?)(/.*)?$", url)
	if len(param) == 0 || param["proto"] == "" {
		return "", ""
	}
	proto = param["proto"]
	if port, ok := param["port"]; ok && port != "" {
		// if port is found, the addr contains our wanted value
		return param["addr"], proto
	}
	if port, ok := defaultPorts[proto]; ok {
		return fmt.Sprintf("%s:%s", param["host"], port), proto
	}
	return "", proto
}

func resolveRegex(regEx, url string) (paramsMap map[string]string) {
	compRegEx := regexp.MustCompile(regEx)
	match := compRegEx.FindStringSubmatch(url)

	paramsMap = make(map[string]string)
	for i, name := range compRegEx.SubexpNames() {
		if i > 0 && i < len(match) && name != "" {
			paramsMap[name] = match[i]
		}
	}
	return paramsMap
}
