// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hamed0406/pinger/internal/config"
	"github.com/hamed0406/pinger/internal/registry"
)

func main() {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	// Catch values FromEnv would silently replace with a default.
	for _, key := range []string{
		"PINGER_PORT", "PROBE_INTERVAL_MS", "PROBE_TIMEOUT_MS", "LOG_MAX_BYTES",
		"MAX_CONCURRENT_PROBES", "API_BURST", "SHUTDOWN_TIMEOUT_MS",
	} {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			warn(fmt.Sprintf("%s=%q is not a positive integer; the default will be used.", key, v))
		}
	}

	cfg := config.FromEnv()
	ok("API address " + cfg.Addr)

	if cfg.Timeout >= cfg.Interval {
		warn(fmt.Sprintf("probe timeout %s is not shorter than the interval %s; ticks will be skipped.", cfg.Timeout, cfg.Interval))
	}
	ok(fmt.Sprintf("interval=%s timeout=%s concurrency=%d", cfg.Interval, cfg.Timeout, cfg.Concurrency))

	if err := checkLogDir(cfg.LogDir); err != nil {
		fail(fmt.Sprintf("LOG_DIR %s is not writable: %v", cfg.LogDir, err))
	} else {
		ok("LOG_DIR=" + cfg.LogDir)
	}

	if cfg.EndpointsFile == "" {
		warn("ENDPOINTS_FILE empty; the built-in endpoints will be monitored.")
	} else if reg, err := registry.Load(cfg.EndpointsFile); err != nil {
		fail(err.Error())
	} else {
		ok(fmt.Sprintf("ENDPOINTS_FILE=%s (%d endpoints)", cfg.EndpointsFile, reg.Len()))
	}

	if cfg.RateLimitRPM == 0 {
		warn("API_RPM is 0; the API is not rate limited.")
	}

	if failed {
		os.Exit(1)
	}
	ok("preflight passed")
}

// checkLogDir creates the directory if needed and proves a file can be written there.
func checkLogDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
