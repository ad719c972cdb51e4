package backendtest

import (
	"testing"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/gomlx/tfhecuda/backend/emulator"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

func TestRecorder(t *testing.T) {
	emu := emulator.New(emulator.DefaultConfig())
	r := New(emu)
	require.Equal(t, "recorder(emulator)", r.Name())

	stream, err := r.CreateStream(0)
	require.NoError(t, err)
	ptr, err := r.MallocAsync(16, stream)
	require.NoError(t, err)
	require.NoError(t, r.MemsetAsync(ptr, 0, 16, stream))
	require.NoError(t, r.NegateLweCiphertextVector64(stream, ptr, ptr, 1, 1))
	require.NoError(t, r.SynchronizeStream(stream))
	require.Equal(t, []string{"CreateStream", "MallocAsync", "MemsetAsync", "NegateLweCiphertextVector64",
		"SynchronizeStream"}, r.CallNames())
	calls := r.Calls()
	require.Equal(t, []any{uint64(16), stream}, calls[1].Args)
	require.Equal(t, 1, r.Count("MallocAsync"))

	// Injected failures are one-shot, and the call is still logged.
	injected := errors.New("injected")
	r.FailOn("MemsetAsync", injected)
	require.ErrorIs(t, r.MemsetAsync(ptr, 0, 16, stream), injected)
	require.NoError(t, r.MemsetAsync(ptr, 0, 16, stream))
	require.Equal(t, 3, r.Count("MemsetAsync"))

	r.Reset()
	require.Empty(t, r.Calls())
	require.NoError(t, r.Drop(ptr))
	require.NoError(t, r.DestroyStream(stream))
	require.Equal(t, 0, emu.LiveAllocations(0))
}

func TestFakedScratch(t *testing.T) {
	emu := emulator.New(emulator.DefaultConfig())
	r := New(emu)
	stream, err := r.CreateStream(0)
	require.NoError(t, err)
	defer func() { require.NoError(t, r.DestroyStream(stream)) }()

	// The emulator doesn't implement the bootstrap kernels: they are faked with a real allocation.
	_, isBootstrap := backend.Backend(emu).(backend.BootstrapKernels)
	require.False(t, isBootstrap)
	buffer, err := r.ScratchBootstrapLowLatency64(stream, 1, 1024, 2, 10, 48*1024, true)
	require.NoError(t, err)
	require.NotZero(t, buffer)
	require.Equal(t, 1, emu.LiveAllocations(0))
	require.Equal(t, uint64(FakeScratchSize), emu.AllocatedBytes(0))

	require.NoError(t, r.BootstrapLowLatencyLweCiphertextVector64(stream, 1, 2, 3, 4, 5, 6, 7, buffer,
		742, 1, 1024, 23, 2, 10, 10, 0, 48*1024))
	require.NoError(t, r.CleanupBootstrapLowLatency(stream, &buffer))
	require.Zero(t, buffer)
	require.Equal(t, 0, emu.LiveAllocations(0))

	// Without allocating, the scratch handle is null and the cleanup is a no-op.
	buffer, err = r.ScratchIntegerRadixCmuxKB64(stream, 1, 1024, 1024, 742, 5, 3, 1, 23, 0, 4, 4, 4,
		backend.PBSTypeLowLatency, false)
	require.NoError(t, err)
	require.Zero(t, buffer)
	require.NoError(t, r.CleanupIntegerRadixCmux(stream, &buffer))

	require.Equal(t, []string{"CreateStream", "ScratchBootstrapLowLatency64",
		"BootstrapLowLatencyLweCiphertextVector64", "CleanupBootstrapLowLatency", "ScratchIntegerRadixCmuxKB64",
		"CleanupIntegerRadixCmux"}, r.CallNames())
	require.Equal(t, "CleanupIntegerRadixCmux[1048576 0]", r.Calls()[5].String())
}
