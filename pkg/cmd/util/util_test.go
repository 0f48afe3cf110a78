package util

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/irtelemetry/pkg/config"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/region/file"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/region/shm"
)

func TestNewPlatform(t *testing.T) {
	t.Cleanup(func() { config.Source, config.DumpFile = "", "" })
	dump := filepath.Join(t.TempDir(), "irsdk.bin")
	require.NoError(t, os.WriteFile(dump, make([]byte, 256), 0o600))

	config.Source = "FILE"
	config.DumpFile = dump
	p, err := NewPlatform(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &file.Platform{}, p)

	config.DumpFile = ""
	_, err = NewPlatform(context.Background())
	assert.Error(t, err)

	config.Source = "shm"
	p, err = NewPlatform(context.Background())
	require.NoError(t, err)
	assert.IsType(t, shm.Platform{}, p)

	config.Source = "udp"
	_, err = NewPlatform(context.Background())
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 20*time.Millisecond, ParseDuration("20ms", time.Second))
	assert.Equal(t, time.Second, ParseDuration("fast", time.Second))
}

func TestWaitForServices(t *testing.T) {
	t.Cleanup(func() { config.WaitForServices = "" })
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	config.WaitForServices = "1s"
	assert.NoError(t, WaitForServices(context.Background(),
		"nats://"+l.Addr().String(), ""))

	config.WaitForServices = "100ms"
	l2, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedAddr := l2.Addr().String()
	require.NoError(t, l2.Close())
	assert.Error(t, WaitForServices(context.Background(), "mqtt://"+closedAddr))
}

func TestWaitForServicesHTTP(t *testing.T) {
	t.Cleanup(func() { config.WaitForServices = "" })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	config.WaitForServices = "1s"
	assert.NoError(t, WaitForServices(context.Background(), srv.URL))
}
