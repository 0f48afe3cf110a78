package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel          string // sets the log level (zap log level values)
	LogFormat         string // text vs json
	LogFile           string // if set, log output is also written (rotated) to this file
	LogFilter         string // zapfilter rules to restrict log output by logger name
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry ("stdout" prints to console)
	WaitForServices   string // duration to wait for brokers to be ready
	Source            string // where to read the shared memory from (shm, file)
	DumpFile          string // path to a raw memory dump (source file)
	WatchDumpFile     bool   // reload the dump file on change
	PollInterval      string // duration between two poll cycles
	Workers           int    // max concurrent per-car reads
	SkipStale         bool   // suppress frames if the tick did not advance
	NATSURL           string // nats server url, empty disables the nats sink
	NATSSubjectPrefix string // prefix for nats subjects
	NATSKVBucket      string // jetstream kv bucket for the roster
	MQTTBroker        string // mqtt broker url, empty disables the mqtt sink
	MQTTTopic         string // base topic for mqtt messages
	MQTTClientID      string // mqtt client id
	InfluxURL         string // influxdb url, empty disables the influx sink
	InfluxToken       string // influxdb token
	InfluxOrg         string // influxdb organization
	InfluxBucket      string // influxdb bucket
	PrintFrames       bool   // if true, each frame is printed as table to stdout
)
