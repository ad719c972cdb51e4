package emulator

import (
	"runtime"
	"sync"
	"testing"
	"unsafe"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

func newTestBackend(t *testing.T, numGPUs int) *Backend {
	return New(Config{NumGPUs: numGPUs, MaxSharedMemory: 1024})
}

func newTestStream(t *testing.T, b *Backend, gpuIndex uint32) backend.StreamHandle {
	stream, err := b.CreateStream(gpuIndex)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, b.DestroyStream(stream)) })
	return stream
}

// upload allocates and copies values to the device, and waits for the copy.
func upload(t *testing.T, b *Backend, stream backend.StreamHandle, values []uint64) backend.DevicePtr {
	size := uint64(len(values) * 8)
	ptr, err := b.MallocAsync(size, stream)
	require.NoError(t, err)
	var pinner runtime.Pinner
	defer pinner.Unpin()
	var src unsafe.Pointer
	if len(values) > 0 {
		pinner.Pin(&values[0])
		src = unsafe.Pointer(&values[0])
	}
	require.NoError(t, b.MemcpyAsyncToGPU(ptr, src, size, stream))
	require.NoError(t, b.SynchronizeStream(stream))
	return ptr
}

// download synchronizes the stream and returns count 64-bit words from the device.
func download(t *testing.T, b *Backend, stream backend.StreamHandle, ptr backend.DevicePtr, count int) []uint64 {
	values := make([]uint64, count)
	if count == 0 {
		require.NoError(t, b.SynchronizeStream(stream))
		return values
	}
	require.NoError(t, b.MemcpyAsyncToCPU(unsafe.Pointer(&values[0]), ptr, uint64(count*8), stream))
	require.NoError(t, b.SynchronizeStream(stream))
	return values
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(NumGPUsEnv, "")
	t.Setenv(SharedMemoryEnv, "")
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	t.Setenv(NumGPUsEnv, "4")
	t.Setenv(SharedMemoryEnv, "65536")
	cfg, err = ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, Config{NumGPUs: 4, MaxSharedMemory: 65536}, cfg)

	t.Setenv(NumGPUsEnv, "zero")
	_, err = ConfigFromEnv()
	require.ErrorContains(t, err, NumGPUsEnv)
}

func TestRegistered(t *testing.T) {
	require.Contains(t, backend.Registered(), backend.EmulatorBackend)
	b0, err := backend.Get(backend.EmulatorBackend)
	require.NoError(t, err)
	b1, err := backend.Get(backend.EmulatorBackend)
	require.NoError(t, err)
	require.Same(t, b0, b1)
	require.Equal(t, backend.EmulatorBackend, b0.Name())
}

func TestQueries(t *testing.T) {
	b := newTestBackend(t, 2)
	require.Equal(t, int32(2), b.GetNumberOfGPUs())
	require.Equal(t, int32(1024), b.GetMaxSharedMemory(1))
	require.Equal(t, int32(0), b.GetMaxSharedMemory(2))
	_, err := b.CreateStream(2)
	require.Error(t, err)
	require.Error(t, b.SynchronizeDevice(5))
}

func TestRoundTrip(t *testing.T) {
	b := newTestBackend(t, 1)
	stream := newTestStream(t, b, 0)
	want := []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	ptr := upload(t, b, stream, want)
	require.Equal(t, 1, b.LiveAllocations(0))
	require.Equal(t, uint64(96), b.AllocatedBytes(0))

	// Device to device copy.
	ptr2, err := b.MallocAsync(96, stream)
	require.NoError(t, err)
	require.NoError(t, b.MemcpyAsyncGPUToGPU(ptr2, ptr, 96, stream))
	got := download(t, b, stream, ptr2, 12)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, b.Drop(ptr))
	require.NoError(t, b.Drop(ptr2))
	require.Equal(t, 0, b.LiveAllocations(0))
	require.Error(t, b.Drop(ptr), "double free must fail")
}

func TestAddressesNeverReused(t *testing.T) {
	b := newTestBackend(t, 1)
	stream := newTestStream(t, b, 0)
	seen := make(map[backend.DevicePtr]bool)
	for range 10 {
		ptr, err := b.MallocAsync(0, stream)
		require.NoError(t, err)
		require.False(t, seen[ptr])
		seen[ptr] = true
		require.NoError(t, b.Drop(ptr))
	}
}

func TestValidation(t *testing.T) {
	b := newTestBackend(t, 2)
	stream := newTestStream(t, b, 0)
	stream1 := newTestStream(t, b, 1)
	ptr := upload(t, b, stream, []uint64{1, 2, 3})
	host := make([]uint64, 4)

	// Out of bounds.
	require.Error(t, b.MemcpyAsyncToCPU(unsafe.Pointer(&host[0]), ptr, 32, stream))
	require.Error(t, b.MemsetAsync(ptr+8, 0, 24, stream))
	// Interior pointers are fine.
	require.NoError(t, b.MemsetAsync(ptr+8, 0, 16, stream))
	require.Equal(t, []uint64{1, 0, 0}, download(t, b, stream, ptr, 3))
	// Unknown addresses, wrong device, unknown stream.
	require.Error(t, b.MemsetAsync(0, 0, 8, stream))
	require.Error(t, b.MemsetAsync(ptr, 0, 8, stream1))
	require.Error(t, b.MemsetAsync(ptr, 0, 8, backend.StreamHandle(0xdead)))
	// Kernel arguments.
	require.Error(t, b.NegateLweCiphertextVector64(stream, ptr, ptr, 1, 2))
	require.Error(t, b.NegateLweCiphertextVector64(stream, ptr+1, ptr+1, 0, 1))
}

func TestMemset(t *testing.T) {
	b := newTestBackend(t, 1)
	stream := newTestStream(t, b, 0)
	ptr := upload(t, b, stream, []uint64{1, 2})
	require.NoError(t, b.MemsetAsync(ptr, 0x1ff, 16, stream))
	require.Equal(t, []uint64{0xffff_ffff_ffff_ffff, 0xffff_ffff_ffff_ffff}, download(t, b, stream, ptr, 2))
}

func TestFIFOOrder(t *testing.T) {
	b := newTestBackend(t, 1)
	stream := newTestStream(t, b, 0)
	const dim, count = 3, 2
	n := (dim + 1) * count
	ct, err := b.MallocAsync(uint64(n*8), stream)
	require.NoError(t, err)
	plaintexts := upload(t, b, stream, []uint64{100, 200})

	// Enqueue without synchronizing: fill with 1s, then add the plaintexts to the bodies.
	require.NoError(t, b.MemsetAsync(ct, 1, uint64(n*8), stream))
	require.NoError(t, b.AddLweCiphertextVectorPlaintextVector64(stream, ct, ct, plaintexts, dim, count))
	const ones = 0x0101_0101_0101_0101
	want := []uint64{ones, ones, ones, ones + 100, ones, ones, ones, ones + 200}
	require.Equal(t, want, download(t, b, stream, ct, n))
}

func TestLinearKernels(t *testing.T) {
	b := newTestBackend(t, 1)
	stream := newTestStream(t, b, 0)
	const dim, count = 1, 2
	in1 := upload(t, b, stream, []uint64{1, 2, 3, 4})
	in2 := upload(t, b, stream, []uint64{10, 20, 30, 1 << 63})
	cleartexts := upload(t, b, stream, []uint64{2, 3})
	out, err := b.MallocAsync(32, stream)
	require.NoError(t, err)

	require.NoError(t, b.AddLweCiphertextVector64(stream, out, in1, in2, dim, count))
	require.Equal(t, []uint64{11, 22, 33, 4 + 1<<63}, download(t, b, stream, out, 4))

	require.NoError(t, b.NegateLweCiphertextVector64(stream, out, in1, dim, count))
	require.Equal(t, []uint64{neg(1), neg(2), neg(3), neg(4)}, download(t, b, stream, out, 4))

	require.NoError(t, b.MultLweCiphertextVectorCleartextVector64(stream, out, in1, cleartexts, dim, count))
	require.Equal(t, []uint64{2, 4, 9, 12}, download(t, b, stream, out, 4))

	// Aliased output: in2 += in2 wraps around.
	require.NoError(t, b.AddLweCiphertextVector64(stream, in2, in2, in2, dim, count))
	require.Equal(t, []uint64{20, 40, 60, 0}, download(t, b, stream, in2, 4))
}

func TestKeyConversion(t *testing.T) {
	b := newTestBackend(t, 1)
	stream := newTestStream(t, b, 0)

	// Standard key: inputLweDim=2, glweDim=1, level=1, polySize=4 → 2*2*2*1*4 = 32 elements.
	key := make([]uint64, 32)
	for i := range key {
		key[i] = uint64(i) * 7
	}
	dest, err := b.MallocAsync(32*8, stream)
	require.NoError(t, err)
	require.NoError(t, b.ConvertLweBootstrapKey64(dest, unsafe.Pointer(&key[0]), stream, 2, 1, 1, 4))
	require.Equal(t, key, download(t, b, stream, dest, 32))
	runtime.KeepAlive(key)

	// Multi-bit key: inputLweDim=4, grouping 2 → 2 groups * 4 GGSW * (2*2*1*4) = 128 elements.
	mbKey := make([]uint64, 128)
	tooSmall, err := b.MallocAsync(127*8, stream)
	require.NoError(t, err)
	require.Error(t, b.ConvertLweMultiBitBootstrapKey64(tooSmall, unsafe.Pointer(&mbKey[0]), stream, 4, 1, 1, 4, 2))
	mbDest, err := b.MallocAsync(128*8, stream)
	require.NoError(t, err)
	require.NoError(t, b.ConvertLweMultiBitBootstrapKey64(mbDest, unsafe.Pointer(&mbKey[0]), stream, 4, 1, 1, 4, 2))
	require.Error(t, b.ConvertLweMultiBitBootstrapKey64(mbDest, unsafe.Pointer(&mbKey[0]), stream, 3, 1, 1, 4, 2))
	require.NoError(t, b.SynchronizeStream(stream))
	runtime.KeepAlive(mbKey)
}

func TestIntegerKernels(t *testing.T) {
	b := newTestBackend(t, 1)
	stream := newTestStream(t, b, 0)
	const dim, numBlocks = 1, 2
	const msgMod, carryMod = 4, 4
	const delta = uint64(1<<63) / (msgMod * carryMod)

	// Trivial blocks (zero mask) encoding the digits 3 and 1, i.e. 3 + 1*4 = 7.
	blocks := upload(t, b, stream, []uint64{0, 3 * delta, 0, 1 * delta})
	scalars := upload(t, b, stream, []uint64{1, 2})
	require.NoError(t, b.ScalarAdditionIntegerRadixCiphertext64Inplace(stream, blocks, scalars, dim, numBlocks,
		msgMod, carryMod))
	require.Equal(t, []uint64{0, 4 * delta, 0, 3 * delta}, download(t, b, stream, blocks, 4))

	require.NoError(t, b.SmallScalarMultiplicationIntegerRadixCiphertext64Inplace(stream, blocks, 2, dim, numBlocks))
	require.Equal(t, []uint64{0, 8 * delta, 0, 6 * delta}, download(t, b, stream, blocks, 4))

	// Negation of 3 + 1*4: the first block becomes 4-3 = 1, the second 4-(1+1) = 2.
	negated := upload(t, b, stream, []uint64{5, 3 * delta, 6, 1 * delta})
	require.NoError(t, b.NegateIntegerRadixCiphertext64Inplace(stream, negated, dim, numBlocks, msgMod, carryMod))
	require.Equal(t, []uint64{neg(5), 1 * delta, neg(6), 2 * delta}, download(t, b, stream, negated, 4))

	require.Error(t, b.NegateIntegerRadixCiphertext64Inplace(stream, negated, dim, numBlocks, 0, carryMod))
}

func TestStreamsAndDevices(t *testing.T) {
	b := newTestBackend(t, 2)
	const numStreams = 4
	streams := make([]backend.StreamHandle, numStreams)
	for i := range streams {
		streams[i] = newTestStream(t, b, uint32(i%2))
	}
	require.Equal(t, 2, b.NumStreams(0))
	require.Equal(t, 2, b.NumStreams(1))

	// Concurrent streams, each with its own buffer.
	const n = 1000
	results := make([][]uint64, numStreams)
	var wg sync.WaitGroup
	for i, stream := range streams {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gpuIndex := uint32(i % 2)
			values := make([]uint64, n)
			for j := range values {
				values[j] = uint64(i*n + j)
			}
			ptr, err := b.MallocAsync(n*8, stream)
			if err != nil {
				t.Error(err)
				return
			}
			if err := b.MemcpyAsyncToGPU(ptr, unsafe.Pointer(&values[0]), n*8, stream); err != nil {
				t.Error(err)
				return
			}
			if err := b.AddLweCiphertextVector64(stream, ptr, ptr, ptr, 0, n); err != nil {
				t.Error(err)
				return
			}
			results[i] = make([]uint64, n)
			if err := b.MemcpyAsyncToCPU(unsafe.Pointer(&results[i][0]), ptr, n*8, stream); err != nil {
				t.Error(err)
				return
			}
			if err := b.SynchronizeDevice(gpuIndex); err != nil {
				t.Error(err)
				return
			}
			runtime.KeepAlive(values)
			if err := b.Drop(ptr); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	for i, result := range results {
		require.Len(t, result, n)
		for j, v := range result {
			require.Equal(t, uint64(2*(i*n+j)), v)
		}
	}
	require.Equal(t, 0, b.LiveAllocations(0)+b.LiveAllocations(1))

	// Destroyed streams are rejected.
	stream, err := b.CreateStream(0)
	require.NoError(t, err)
	require.NoError(t, b.DestroyStream(stream))
	require.Error(t, b.SynchronizeStream(stream))
	require.Error(t, b.DestroyStream(stream))
	_, err = b.MallocAsync(8, stream)
	require.Error(t, err)
}

// neg returns the wrapping negation of x.
func neg(x uint64) uint64 { return -x }
