//go:build cgo && cuda

package cudalib

/*
#cgo LDFLAGS: -ltfhe_cuda_backend -lcudart -lstdc++ -lm
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

// CUDA runtime: error reporting only.
int cudaGetLastError(void);
const char *cudaGetErrorString(int error);

// Device and streams.
void *cuda_create_stream(uint32_t gpu_index);
void cuda_destroy_stream(void *stream);
void cuda_synchronize_stream(void *stream);
void cuda_synchronize_device(uint32_t gpu_index);
int cuda_get_max_shared_memory(uint32_t gpu_index);
int cuda_get_number_of_gpus();

// Memory.
void *cuda_malloc_async(uint64_t size, void *stream);
void cuda_drop(void *ptr);
void cuda_memset_async(void *dest, uint64_t val, uint64_t size, void *stream);
void cuda_memcpy_async_to_gpu(void *dest, void *src, uint64_t size, void *stream);
void cuda_memcpy_async_gpu_to_gpu(void *dest, void *src, uint64_t size, void *stream);
void cuda_memcpy_async_to_cpu(void *dest, const void *src, uint64_t size, void *stream);
*/
import "C"
import (
	"unsafe"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Available reports whether the native backend was compiled in. It requires cgo and the "cuda" build tag.
const Available = true

func init() {
	backend.Register(backend.CUDABackend, func() (backend.Backend, error) {
		b, err := New()
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// Backend forwards the backend contract to libtfhe_cuda_backend.
//
// It holds no state: the native library keeps its own per-device state.
type Backend struct{}

var (
	_ backend.Backend              = (*Backend)(nil)
	_ backend.BootstrapKernels     = (*Backend)(nil)
	_ backend.KeyswitchKernels     = (*Backend)(nil)
	_ backend.KeyConversionKernels = (*Backend)(nil)
	_ backend.LinearKernels        = (*Backend)(nil)
	_ backend.IntegerKernels       = (*Backend)(nil)
	_ backend.IntegerPBSKernels    = (*Backend)(nil)
)

// New returns the native backend. It fails if no CUDA device is available.
func New() (*Backend, error) {
	b := &Backend{}
	numGPUs := b.GetNumberOfGPUs()
	if err := toError("cuda_get_number_of_gpus"); err != nil {
		return nil, err
	}
	if numGPUs <= 0 {
		return nil, errors.New("no CUDA device available")
	}
	klog.V(1).Infof("cuda backend: %d device(s) available", numGPUs)
	return b, nil
}

// toError returns the last error of the CUDA runtime, if any, and resets it.
func toError(op string) error {
	code := C.cudaGetLastError()
	if code == 0 {
		return nil
	}
	return errors.Errorf("%s failed: CUDA error %d (%s)", op, int(code), C.GoString(C.cudaGetErrorString(code)))
}

// cPtr converts a device address to the pointer type of the native calls.
//
// Device addresses and stream handles are values returned by the CUDA runtime, never Go memory: the garbage
// collector neither owns nor moves what they point to, so the uintptr to unsafe.Pointer conversion is safe even
// though go vet reports it as a possible misuse of unsafe.Pointer.
func cPtr(ptr backend.DevicePtr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(ptr))
}

// cStream converts a stream handle to the pointer type of the native calls. See cPtr.
func cStream(stream backend.StreamHandle) unsafe.Pointer {
	return unsafe.Pointer(uintptr(stream))
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.CUDABackend }

// CreateStream implements backend.Backend.
func (b *Backend) CreateStream(gpuIndex uint32) (backend.StreamHandle, error) {
	stream := C.cuda_create_stream(C.uint32_t(gpuIndex))
	if err := toError("cuda_create_stream"); err != nil {
		return 0, err
	}
	if stream == nil {
		return 0, errors.Errorf("cuda_create_stream(gpu_index=%d) returned a null stream", gpuIndex)
	}
	return backend.StreamHandle(uintptr(stream)), nil
}

// DestroyStream implements backend.Backend.
func (b *Backend) DestroyStream(stream backend.StreamHandle) error {
	C.cuda_destroy_stream(cStream(stream))
	return toError("cuda_destroy_stream")
}

// SynchronizeStream implements backend.Backend.
func (b *Backend) SynchronizeStream(stream backend.StreamHandle) error {
	C.cuda_synchronize_stream(cStream(stream))
	return toError("cuda_synchronize_stream")
}

// SynchronizeDevice implements backend.Backend.
func (b *Backend) SynchronizeDevice(gpuIndex uint32) error {
	C.cuda_synchronize_device(C.uint32_t(gpuIndex))
	return toError("cuda_synchronize_device")
}

// GetMaxSharedMemory implements backend.Backend.
func (b *Backend) GetMaxSharedMemory(gpuIndex uint32) int32 {
	return int32(C.cuda_get_max_shared_memory(C.uint32_t(gpuIndex)))
}

// GetNumberOfGPUs implements backend.Backend.
func (b *Backend) GetNumberOfGPUs() int32 {
	return int32(C.cuda_get_number_of_gpus())
}

// MallocAsync implements backend.Backend.
func (b *Backend) MallocAsync(size uint64, stream backend.StreamHandle) (backend.DevicePtr, error) {
	ptr := C.cuda_malloc_async(C.uint64_t(size), cStream(stream))
	if err := toError("cuda_malloc_async"); err != nil {
		return 0, errors.WithMessagef(err, "allocating %d bytes", size)
	}
	if ptr == nil && size > 0 {
		return 0, errors.Errorf("cuda_malloc_async(%d bytes) returned a null pointer", size)
	}
	return backend.DevicePtr(uintptr(ptr)), nil
}

// Drop implements backend.Backend.
func (b *Backend) Drop(ptr backend.DevicePtr) error {
	C.cuda_drop(cPtr(ptr))
	return toError("cuda_drop")
}

// MemsetAsync implements backend.Backend.
func (b *Backend) MemsetAsync(dest backend.DevicePtr, value uint64, size uint64, stream backend.StreamHandle) error {
	C.cuda_memset_async(cPtr(dest), C.uint64_t(value), C.uint64_t(size), cStream(stream))
	return toError("cuda_memset_async")
}

// MemcpyAsyncToGPU implements backend.Backend.
func (b *Backend) MemcpyAsyncToGPU(dest backend.DevicePtr, src unsafe.Pointer, size uint64,
	stream backend.StreamHandle) error {
	C.cuda_memcpy_async_to_gpu(cPtr(dest), src, C.uint64_t(size), cStream(stream))
	return toError("cuda_memcpy_async_to_gpu")
}

// MemcpyAsyncGPUToGPU implements backend.Backend.
func (b *Backend) MemcpyAsyncGPUToGPU(dest backend.DevicePtr, src backend.DevicePtr, size uint64,
	stream backend.StreamHandle) error {
	C.cuda_memcpy_async_gpu_to_gpu(cPtr(dest), cPtr(src), C.uint64_t(size), cStream(stream))
	return toError("cuda_memcpy_async_gpu_to_gpu")
}

// MemcpyAsyncToCPU implements backend.Backend.
func (b *Backend) MemcpyAsyncToCPU(dest unsafe.Pointer, src backend.DevicePtr, size uint64,
	stream backend.StreamHandle) error {
	C.cuda_memcpy_async_to_cpu(dest, cPtr(src), C.uint64_t(size), cStream(stream))
	return toError("cuda_memcpy_async_to_cpu")
}
