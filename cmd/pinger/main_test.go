package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hamed0406/pinger/internal/config"
)

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	base := config.Config{
		Addr:          ":4100",
		LogDir:        "logs",
		EndpointsFile: "endpoints.yaml",
		Interval:      5 * time.Minute,
		Timeout:       10 * time.Second,
	}

	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--addr", "127.0.0.1:9000", "--interval", "30s"}))

	var f flags
	f.addr, _ = cmd.Flags().GetString("addr")
	f.interval, _ = cmd.Flags().GetDuration("interval")

	got := applyFlags(cmd, base, f)
	require.Equal(t, "127.0.0.1:9000", got.Addr)
	require.Equal(t, 30*time.Second, got.Interval)
	require.Equal(t, "logs", got.LogDir)
	require.Equal(t, "endpoints.yaml", got.EndpointsFile)
	require.Equal(t, 10*time.Second, got.Timeout)
}

func TestApplyFlags_EmptyEndpointsFallsBackToDefaults(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--endpoints", ""}))

	got := applyFlags(cmd, config.Config{EndpointsFile: "endpoints.yaml"}, flags{})
	require.Empty(t, got.EndpointsFile)
}
