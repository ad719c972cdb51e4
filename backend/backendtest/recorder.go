// Package backendtest provides a recording and fault-injecting backend for tests.
//
// Recorder wraps another backend: every call is logged with its arguments, in order, and then forwarded. Kernel
// families the wrapped backend doesn't implement are faked: scratch calls make a small real allocation through
// the wrapped backend (so leaked scratch buffers are observable), run calls are only logged, and cleanup calls
// drop the allocation and zero the handle.
package backendtest

import (
	"fmt"
	"slices"
	"sync"
	"unsafe"

	"github.com/gomlx/tfhecuda/backend"
)

// FakeScratchSize is the size in bytes of the allocations returned by faked scratch calls.
const FakeScratchSize = 64

// Call is one logged call.
type Call struct {
	Name string
	Args []any
}

// String implements fmt.Stringer.
func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// Recorder is a backend.Backend that logs every call and forwards it to an inner backend.
// It implements all kernel families, see package documentation.
//
// It is safe for concurrent use.
type Recorder struct {
	inner backend.Backend

	mu     sync.Mutex
	calls  []Call
	failOn map[string][]error
}

var (
	_ backend.Backend              = (*Recorder)(nil)
	_ backend.BootstrapKernels     = (*Recorder)(nil)
	_ backend.KeyswitchKernels     = (*Recorder)(nil)
	_ backend.KeyConversionKernels = (*Recorder)(nil)
	_ backend.LinearKernels        = (*Recorder)(nil)
	_ backend.IntegerKernels       = (*Recorder)(nil)
	_ backend.IntegerPBSKernels    = (*Recorder)(nil)
)

// New creates a Recorder wrapping inner.
func New(inner backend.Backend) *Recorder {
	return &Recorder{inner: inner, failOn: make(map[string][]error)}
}

// Inner returns the wrapped backend.
func (r *Recorder) Inner() backend.Backend { return r.inner }

// Calls returns a copy of the log of calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallNames returns the names of the logged calls, in order.
func (r *Recorder) CallNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.calls))
	for i, c := range r.calls {
		names[i] = c.Name
	}
	return names
}

// Count returns how many calls with the given name were logged.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int
	for _, c := range r.calls {
		if c.Name == name {
			count++
		}
	}
	return count
}

// Reset clears the log of calls and the pending failures.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	clear(r.failOn)
}

// FailOn makes the next call named name fail with err, without forwarding it.
// Calling it more than once for the same name queues the failures for the following calls.
func (r *Recorder) FailOn(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[name] = append(r.failOn[name], err)
}

// record logs the call and returns the failure injected for it, if any.
func (r *Recorder) record(name string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Name: name, Args: args})
	if errs := r.failOn[name]; len(errs) > 0 {
		r.failOn[name] = errs[1:]
		return errs[0]
	}
	return nil
}

// Name implements backend.Backend.
func (r *Recorder) Name() string { return "recorder(" + r.inner.Name() + ")" }

// CreateStream implements backend.Backend.
func (r *Recorder) CreateStream(gpuIndex uint32) (backend.StreamHandle, error) {
	if err := r.record("CreateStream", gpuIndex); err != nil {
		return 0, err
	}
	return r.inner.CreateStream(gpuIndex)
}

// DestroyStream implements backend.Backend.
func (r *Recorder) DestroyStream(stream backend.StreamHandle) error {
	if err := r.record("DestroyStream", stream); err != nil {
		return err
	}
	return r.inner.DestroyStream(stream)
}

// SynchronizeStream implements backend.Backend.
func (r *Recorder) SynchronizeStream(stream backend.StreamHandle) error {
	if err := r.record("SynchronizeStream", stream); err != nil {
		return err
	}
	return r.inner.SynchronizeStream(stream)
}

// SynchronizeDevice implements backend.Backend.
func (r *Recorder) SynchronizeDevice(gpuIndex uint32) error {
	if err := r.record("SynchronizeDevice", gpuIndex); err != nil {
		return err
	}
	return r.inner.SynchronizeDevice(gpuIndex)
}

// MallocAsync implements backend.Backend.
func (r *Recorder) MallocAsync(size uint64, stream backend.StreamHandle) (backend.DevicePtr, error) {
	if err := r.record("MallocAsync", size, stream); err != nil {
		return 0, err
	}
	return r.inner.MallocAsync(size, stream)
}

// Drop implements backend.Backend.
func (r *Recorder) Drop(ptr backend.DevicePtr) error {
	if err := r.record("Drop", ptr); err != nil {
		return err
	}
	return r.inner.Drop(ptr)
}

// MemsetAsync implements backend.Backend.
func (r *Recorder) MemsetAsync(dest backend.DevicePtr, value uint64, size uint64, stream backend.StreamHandle) error {
	if err := r.record("MemsetAsync", dest, value, size, stream); err != nil {
		return err
	}
	return r.inner.MemsetAsync(dest, value, size, stream)
}

// MemcpyAsyncToGPU implements backend.Backend.
func (r *Recorder) MemcpyAsyncToGPU(dest backend.DevicePtr, src unsafe.Pointer, size uint64,
	stream backend.StreamHandle) error {
	if err := r.record("MemcpyAsyncToGPU", dest, uintptr(src), size, stream); err != nil {
		return err
	}
	return r.inner.MemcpyAsyncToGPU(dest, src, size, stream)
}

// MemcpyAsyncGPUToGPU implements backend.Backend.
func (r *Recorder) MemcpyAsyncGPUToGPU(dest backend.DevicePtr, src backend.DevicePtr, size uint64,
	stream backend.StreamHandle) error {
	if err := r.record("MemcpyAsyncGPUToGPU", dest, src, size, stream); err != nil {
		return err
	}
	return r.inner.MemcpyAsyncGPUToGPU(dest, src, size, stream)
}

// MemcpyAsyncToCPU implements backend.Backend.
func (r *Recorder) MemcpyAsyncToCPU(dest unsafe.Pointer, src backend.DevicePtr, size uint64,
	stream backend.StreamHandle) error {
	if err := r.record("MemcpyAsyncToCPU", uintptr(dest), src, size, stream); err != nil {
		return err
	}
	return r.inner.MemcpyAsyncToCPU(dest, src, size, stream)
}

// GetMaxSharedMemory implements backend.Backend.
func (r *Recorder) GetMaxSharedMemory(gpuIndex uint32) int32 {
	_ = r.record("GetMaxSharedMemory", gpuIndex)
	return r.inner.GetMaxSharedMemory(gpuIndex)
}

// GetNumberOfGPUs implements backend.Backend.
func (r *Recorder) GetNumberOfGPUs() int32 {
	_ = r.record("GetNumberOfGPUs")
	return r.inner.GetNumberOfGPUs()
}

// fakeScratch allocates a small buffer on the device of the stream, standing for a scratch buffer.
func (r *Recorder) fakeScratch(stream backend.StreamHandle, allocateGPUMemory bool) (backend.DevicePtr, error) {
	if !allocateGPUMemory {
		return 0, nil
	}
	return r.inner.MallocAsync(FakeScratchSize, stream)
}

// fakeCleanup drops a buffer created by fakeScratch and zeroes the handle.
func (r *Recorder) fakeCleanup(ptr *backend.DevicePtr) error {
	if *ptr == 0 {
		return nil
	}
	err := r.inner.Drop(*ptr)
	*ptr = 0
	return err
}
