package main

import (
	"testing"

	"github.com/gomlx/tfhecuda/backend/backendtest"
	"github.com/gomlx/tfhecuda/backend/emulator"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

func TestReport(t *testing.T) {
	emu := emulator.New(emulator.Config{NumGPUs: 2, MaxSharedMemory: 1024})
	info := buildReport(emu, true)
	m := info.AsMap()
	require.Equal(t, "emulator", m["backend"])
	require.Contains(t, m["registered"], "emulator")
	require.Equal(t, []any{"key-conversion", "linear", "integer"}, m["kernels"])
	require.Equal(t, false, m["failed"])
	devices := m["devices"].([]any)
	require.Len(t, devices, 2)
	for _, d := range devices {
		entry := d.(map[string]any)
		require.Equal(t, float64(1024), entry["max_shared_memory"])
		require.Equal(t, "ok", entry["round_trip"])
	}
	require.Equal(t, 0, emu.LiveAllocations(0))
	require.Equal(t, 0, emu.NumStreams(1))

	text, err := formatReport(info, "text")
	require.NoError(t, err)
	require.Contains(t, text, "GPU #1: max shared memory 1024 bytes, round trip: ok")
	for _, format := range []string{"json", "prototext"} {
		out, err := formatReport(info, format)
		require.NoError(t, err)
		require.Contains(t, out, "emulator")
	}
	_, err = formatReport(info, "yaml")
	require.Error(t, err)

	// Without -check no stream is created.
	rec := backendtest.New(emu)
	info = buildReport(rec, false)
	require.Zero(t, rec.Count("CreateStream"))
	_, checked := info.AsMap()["devices"].([]any)[0].(map[string]any)["round_trip"]
	require.False(t, checked)
}

func TestReportFailure(t *testing.T) {
	rec := backendtest.New(emulator.New(emulator.DefaultConfig()))
	rec.FailOn("MemcpyAsyncToGPU", errors.New("bus error"))
	m := buildReport(rec, true).AsMap()
	require.Equal(t, true, m["failed"])
	entry := m["devices"].([]any)[0].(map[string]any)
	require.Contains(t, entry["round_trip"], "bus error")
}
