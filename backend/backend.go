// Package backend defines the contract with the native accelerator backend that executes the TFHE kernels.
//
// The contract mirrors the C entry points of the precompiled CUDA backend: parameter order and units are kept
// bit-exact, so an implementation can forward each method to the corresponding native call. Dimensions and counts
// are unsigned 32-bit values, device buffers and streams are opaque addresses, and the shared memory size is a
// signed capability value.
//
// The core interface Backend covers devices, streams, memory and data movement. The kernels are grouped in
// families (BootstrapKernels, KeyswitchKernels, KeyConversionKernels, LinearKernels, IntegerKernels and
// IntegerPBSKernels) that a backend may or may not implement: callers type-assert for the family they need.
//
// Backends are process-wide capability objects: they are registered by name (see Register) and created once
// (see Get and Default).
package backend

import (
	"unsafe"

	"github.com/pkg/errors"
)

// DevicePtr is the opaque address of a region of device memory.
type DevicePtr uintptr

// StreamHandle is the opaque address of a native stream.
type StreamHandle uintptr

// ErrNotImplemented is returned by backends for a kernel they don't provide.
var ErrNotImplemented = errors.New("not implemented by backend")

// Backend is the core capability contract: streams, memory and data movement.
//
// All "Async" methods only enqueue the operation on the stream and return. Operations on a stream execute in the
// order they were enqueued. Nothing is ordered across streams, except by SynchronizeStream or SynchronizeDevice.
type Backend interface {
	// Name of the backend, as registered.
	Name() string

	// CreateStream creates a native stream bound to the given device.
	CreateStream(gpuIndex uint32) (StreamHandle, error)

	// DestroyStream releases the native stream. The caller must have synchronized it.
	DestroyStream(stream StreamHandle) error

	// SynchronizeStream blocks until every operation enqueued on the stream has completed.
	SynchronizeStream(stream StreamHandle) error

	// SynchronizeDevice blocks until all outstanding work on all streams of the device has completed.
	SynchronizeDevice(gpuIndex uint32) error

	// MallocAsync reserves size bytes of memory on the device of the stream.
	MallocAsync(size uint64, stream StreamHandle) (DevicePtr, error)

	// Drop frees memory allocated by MallocAsync. It is synchronous.
	Drop(ptr DevicePtr) error

	// MemsetAsync sets size bytes at dest to the lower byte of value.
	MemsetAsync(dest DevicePtr, value uint64, size uint64, stream StreamHandle) error

	// MemcpyAsyncToGPU copies size bytes from host memory at src to dest.
	// The host memory must stay valid and unchanged until the stream is synchronized.
	MemcpyAsyncToGPU(dest DevicePtr, src unsafe.Pointer, size uint64, stream StreamHandle) error

	// MemcpyAsyncGPUToGPU copies size bytes from src to dest, both on the device of the stream.
	MemcpyAsyncGPUToGPU(dest DevicePtr, src DevicePtr, size uint64, stream StreamHandle) error

	// MemcpyAsyncToCPU copies size bytes from src into host memory at dest.
	// The host memory must stay valid until the stream is synchronized.
	MemcpyAsyncToCPU(dest unsafe.Pointer, src DevicePtr, size uint64, stream StreamHandle) error

	// GetMaxSharedMemory returns the maximum amount of shared memory per block of the device.
	GetMaxSharedMemory(gpuIndex uint32) int32

	// GetNumberOfGPUs returns the number of devices available.
	GetNumberOfGPUs() int32
}
