package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromBrokerURL(t *testing.T) {
	tests := []struct {
		url       string
		wantAddr  string
		wantProto string
	}{
		{url: "nats://localhost:4222", wantAddr: "localhost:4222", wantProto: "nats"},
		{url: "nats://nats.example.com", wantAddr: "nats.example.com:4222", wantProto: "nats"},
		{url: "tcp://broker", wantAddr: "broker:1883", wantProto: "tcp"},
		{url: "ssl://user:pw@broker", wantAddr: "broker:8883", wantProto: "ssl"},
		{url: "http://influx:8086/api", wantAddr: "influx:8086", wantProto: "http"},
		{url: "https://influx.example.com", wantAddr: "influx.example.com:443", wantProto: "https"},
		{url: "unknown://host", wantAddr: "", wantProto: "unknown"},
		{url: "no url", wantAddr: "", wantProto: ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			addr, proto := ExtractFromBrokerURL(tt.url)
			assert.Equal(t, tt.wantAddr, addr)
			assert.Equal(t, tt.wantProto, proto)
		})
	}
}

func TestWaitForTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	assert.NoError(t, WaitForTCP(context.Background(), ln.Addr().String(), time.Second))
}

func TestWaitForTCPCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitForTCP(ctx, "127.0.0.1:1", time.Second)
	assert.Error(t, err)
}
