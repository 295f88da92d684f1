package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort        = "4100"
	DefaultInterval    = 5 * time.Minute
	DefaultTimeout     = 10 * time.Second
	DefaultMaxLogBytes = 1 << 20
)

type Config struct {
	Addr            string        // API bind address, e.g. ":4100"
	LogDir          string        // up.log, down.log and the operational logs live here
	EndpointsFile   string        // registry file; empty means built-in endpoints
	Interval        time.Duration // time between probe cycles
	Timeout         time.Duration // per-probe deadline
	MaxLogBytes     int64         // down.log rotation / up.log truncation threshold
	Concurrency     int           // probes in flight per cycle
	DNSDiagnostics  bool          // resolve the host after network failures
	LogConsole      bool          // tee operational logs to stderr
	RateLimitRPM    int           // API requests per minute per IP, 0 disables
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

func FromEnv() Config {
	// API_ADDR wins over the bare port.
	addr := strings.TrimSpace(os.Getenv("API_ADDR"))
	if addr == "" {
		port := strings.TrimSpace(os.Getenv("PINGER_PORT"))
		if port == "" {
			port = DefaultPort
		}
		addr = ":" + port
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Config{
		Addr:            addr,
		LogDir:          logDir,
		EndpointsFile:   strings.TrimSpace(os.Getenv("ENDPOINTS_FILE")),
		Interval:        millis("PROBE_INTERVAL_MS", DefaultInterval),
		Timeout:         millis("PROBE_TIMEOUT_MS", DefaultTimeout),
		MaxLogBytes:     int64(positiveInt("LOG_MAX_BYTES", DefaultMaxLogBytes)),
		Concurrency:     positiveInt("MAX_CONCURRENT_PROBES", 1),
		DNSDiagnostics:  boolean("DNS_DIAGNOSTICS", true),
		LogConsole:      boolean("LOG_CONSOLE", true),
		RateLimitRPM:    nonNegativeInt("API_RPM", 0),
		RateLimitBurst:  positiveInt("API_BURST", 30),
		ShutdownTimeout: millis("SHUTDOWN_TIMEOUT_MS", 5*time.Second),
	}
}

// millis reads a positive millisecond count, falling back to def.
func millis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func nonNegativeInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func boolean(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
