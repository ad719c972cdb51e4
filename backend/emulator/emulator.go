// Package emulator implements the backend contract in host memory, for tests and for machines without a GPU.
//
// Each stream is a FIFO command queue drained by its own goroutine, so the asynchronous semantics of the native
// backend are preserved: enqueuing returns immediately, and results are only guaranteed visible after a
// synchronization. Device memory is a set of host allocations identified by fake device addresses, which are
// monotonically increasing and never reused.
//
// All addresses and ranges are validated when the operation is enqueued, so an invalid operation fails
// synchronously and nothing is queued.
//
// Besides the core contract it implements the kernel families that are pure data movement or elementwise modular
// arithmetic: backend.LinearKernels, backend.KeyConversionKernels and backend.IntegerKernels. The bootstrap and
// key-switch families are not provided.
//
// Importing the package registers it as the "emulator" backend.
package emulator

import (
	"os"
	"slices"
	"strconv"
	"sync"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	// NumGPUsEnv is the name of the environment variable with the number of emulated devices.
	NumGPUsEnv = "TFHECUDA_EMULATOR_GPUS"

	// SharedMemoryEnv is the name of the environment variable with the emulated maximum shared memory per block,
	// in bytes.
	SharedMemoryEnv = "TFHECUDA_EMULATOR_SHARED_MEMORY"
)

// Config of the emulated devices.
type Config struct {
	// NumGPUs is the number of emulated devices.
	NumGPUs int

	// MaxSharedMemory is the value reported by GetMaxSharedMemory, in bytes.
	MaxSharedMemory int32
}

// DefaultConfig returns one device with 48KiB of shared memory, the usual value of current GPUs.
func DefaultConfig() Config {
	return Config{NumGPUs: 1, MaxSharedMemory: 48 * 1024}
}

// ConfigFromEnv returns DefaultConfig overwritten by the environment variables NumGPUsEnv and SharedMemoryEnv.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v, found := os.LookupEnv(NumGPUsEnv); found && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, errors.Errorf("invalid value %q for %s, it must be a positive integer", v, NumGPUsEnv)
		}
		cfg.NumGPUs = n
	}
	if v, found := os.LookupEnv(SharedMemoryEnv); found && v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return cfg, errors.Errorf("invalid value %q for %s, it must be a non-negative number of bytes",
				v, SharedMemoryEnv)
		}
		cfg.MaxSharedMemory = int32(n)
	}
	return cfg, nil
}

func init() {
	backend.Register(backend.EmulatorBackend, func() (backend.Backend, error) {
		cfg, err := ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		return New(cfg), nil
	})
}

// Fake address space: allocations are placed at increasing addresses, separated by a guard gap, so that an
// access past the end of one never lands in another one.
const (
	firstAddress   = 0x7f00_0000_0000
	addressAlign   = 256
	addressGuard   = 4096
	firstStream    = 0x10_0000
	streamInterval = 0x10
)

// Backend is the host-memory emulation of the native backend. Create it with New, or get the process wide one
// with backend.Get("emulator").
//
// It is safe for concurrent use.
type Backend struct {
	cfg Config

	// mu protects the fields below. It is never held while waiting on a stream.
	mu          sync.Mutex
	nextAddress backend.DevicePtr
	bases       []backend.DevicePtr // Sorted, since addresses are monotonic.
	allocations map[backend.DevicePtr]*allocation
	nextStream  backend.StreamHandle
	streams     map[backend.StreamHandle]*stream
}

// Compile time checks of the implemented interfaces.
var (
	_ backend.Backend              = (*Backend)(nil)
	_ backend.LinearKernels        = (*Backend)(nil)
	_ backend.KeyConversionKernels = (*Backend)(nil)
	_ backend.IntegerKernels       = (*Backend)(nil)
)

// New creates an emulated backend. It is independent of the one registered as "emulator".
func New(cfg Config) *Backend {
	if cfg.NumGPUs <= 0 {
		klog.Warningf("emulator configured with %d GPUs, using 1", cfg.NumGPUs)
		cfg.NumGPUs = 1
	}
	return &Backend{
		cfg:         cfg,
		nextAddress: firstAddress,
		allocations: make(map[backend.DevicePtr]*allocation),
		nextStream:  firstStream,
		streams:     make(map[backend.StreamHandle]*stream),
	}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.EmulatorBackend }

// Config returns the configuration of the emulated devices.
func (b *Backend) Config() Config { return b.cfg }

// GetNumberOfGPUs implements backend.Backend.
func (b *Backend) GetNumberOfGPUs() int32 { return int32(b.cfg.NumGPUs) }

// GetMaxSharedMemory implements backend.Backend. It returns 0 for an invalid device.
func (b *Backend) GetMaxSharedMemory(gpuIndex uint32) int32 {
	if b.checkGPU(gpuIndex) != nil {
		return 0
	}
	return b.cfg.MaxSharedMemory
}

func (b *Backend) checkGPU(gpuIndex uint32) error {
	if int(gpuIndex) >= b.cfg.NumGPUs {
		return errors.Errorf("invalid gpu index %d, emulator has %d devices", gpuIndex, b.cfg.NumGPUs)
	}
	return nil
}

// CreateStream implements backend.Backend.
func (b *Backend) CreateStream(gpuIndex uint32) (backend.StreamHandle, error) {
	if err := b.checkGPU(gpuIndex); err != nil {
		return 0, errors.WithMessage(err, "emulator CreateStream")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.nextStream
	b.nextStream += streamInterval
	s := newStream(handle, gpuIndex)
	b.streams[handle] = s
	klog.V(2).Infof("emulator: created stream %#x on gpu %d", uintptr(handle), gpuIndex)
	return handle, nil
}

// DestroyStream implements backend.Backend. Pending operations are drained before the stream is released.
func (b *Backend) DestroyStream(handle backend.StreamHandle) error {
	b.mu.Lock()
	s, found := b.streams[handle]
	delete(b.streams, handle)
	b.mu.Unlock()
	if !found {
		return errors.Errorf("emulator DestroyStream: unknown stream %#x", uintptr(handle))
	}
	s.close()
	klog.V(2).Infof("emulator: destroyed stream %#x", uintptr(handle))
	return nil
}

func (b *Backend) lookupStream(handle backend.StreamHandle) (*stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lookupStreamLocked(handle)
}

func (b *Backend) lookupStreamLocked(handle backend.StreamHandle) (*stream, error) {
	s, found := b.streams[handle]
	if !found {
		return nil, errors.Errorf("unknown or destroyed stream %#x", uintptr(handle))
	}
	return s, nil
}

// SynchronizeStream implements backend.Backend.
func (b *Backend) SynchronizeStream(handle backend.StreamHandle) error {
	s, err := b.lookupStream(handle)
	if err != nil {
		return errors.WithMessage(err, "emulator SynchronizeStream")
	}
	s.synchronize()
	return nil
}

// SynchronizeDevice implements backend.Backend: it waits for every stream of the device.
func (b *Backend) SynchronizeDevice(gpuIndex uint32) error {
	if err := b.checkGPU(gpuIndex); err != nil {
		return errors.WithMessage(err, "emulator SynchronizeDevice")
	}
	for _, s := range b.deviceStreams(gpuIndex) {
		s.synchronize()
	}
	return nil
}

// deviceStreams returns a snapshot of the streams of the device.
func (b *Backend) deviceStreams(gpuIndex uint32) []*stream {
	b.mu.Lock()
	defer b.mu.Unlock()
	var streams []*stream
	for _, s := range b.streams {
		if s.gpuIndex == gpuIndex {
			streams = append(streams, s)
		}
	}
	return streams
}

// NumStreams returns the number of live streams on the device.
func (b *Backend) NumStreams(gpuIndex uint32) int {
	return len(b.deviceStreams(gpuIndex))
}

// LiveAllocations returns the number of allocations not yet dropped on the device.
func (b *Backend) LiveAllocations(gpuIndex uint32) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	var count int
	for _, a := range b.allocations {
		if a.gpuIndex == gpuIndex {
			count++
		}
	}
	return count
}

// AllocatedBytes returns the total size of the allocations not yet dropped on the device.
func (b *Backend) AllocatedBytes(gpuIndex uint32) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total uint64
	for _, a := range b.allocations {
		if a.gpuIndex == gpuIndex {
			total += uint64(len(a.data))
		}
	}
	return total
}

// enqueue validates the operation with the lock held, and if it succeeds queues the returned function on the
// stream.
func (b *Backend) enqueue(opName string, handle backend.StreamHandle,
	prepare func(s *stream) (func(), error)) error {
	b.mu.Lock()
	s, err := b.lookupStreamLocked(handle)
	var op func()
	if err == nil {
		op, err = prepare(s)
	}
	b.mu.Unlock()
	if err != nil {
		return errors.WithMessagef(err, "emulator %s", opName)
	}
	s.enqueue(op)
	return nil
}

// sortedInsert keeps bases sorted. Addresses are monotonic, so it is always an append.
func sortedInsert(bases []backend.DevicePtr, ptr backend.DevicePtr) []backend.DevicePtr {
	idx, _ := slices.BinarySearch(bases, ptr)
	return slices.Insert(bases, idx, ptr)
}
