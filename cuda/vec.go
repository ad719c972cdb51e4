package cuda

import (
	"fmt"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/gomlx/tfhecuda/dtypes"
	"golang.org/x/exp/constraints"
)

// UnsignedInteger is the constraint of the torus elements of ciphertexts and keys.
//
// The kernels work on the native 64-bit torus only: using them with another width panics.
type UnsignedInteger interface {
	constraints.Unsigned
	dtypes.Supported
}

// Vec is a device buffer of Len() elements of type T.
//
// It owns the Ptr it was created with: Destroy frees it.
type Vec[T dtypes.Supported] struct {
	ptr    *Ptr
	length int
	device Device
}

// sizeOf returns the size in bytes of one T.
func sizeOf[T dtypes.Supported]() int {
	return dtypes.FromGenericsType[T]().Size()
}

// NewVec creates a Vec of length elements over the memory of ptr, which must be large enough, on device.
func NewVec[T dtypes.Supported](ptr *Ptr, length int, device Device) *Vec[T] {
	assertf(ptr.IsValid(), "cuda.NewVec with a destroyed cuda.Ptr")
	assertf(length >= 0, "cuda.NewVec with negative length %d", length)
	size := uint64(length) * uint64(sizeOf[T]())
	assertf(size <= ptr.Size(), "cuda.NewVec of %d x %s (%d bytes) over a cuda.Ptr of %d bytes",
		length, dtypes.FromGenericsType[T](), size, ptr.Size())
	assertf(ptr.Device() == device, "cuda.NewVec on %s over memory of %s", device, ptr.Device())
	return &Vec[T]{ptr: ptr, length: length, device: device}
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int { return v.length }

// IsEmpty returns whether Len() is 0.
func (v *Vec[T]) IsEmpty() bool { return v.length == 0 }

// DType returns the element type.
func (v *Vec[T]) DType() dtypes.DType { return dtypes.FromGenericsType[T]() }

// SizeBytes returns the size of the contents in bytes, Len() * sizeof(T).
func (v *Vec[T]) SizeBytes() uint64 { return uint64(v.length) * uint64(sizeOf[T]()) }

// Device where the memory is allocated.
func (v *Vec[T]) Device() Device { return v.device }

// Ptr returns the owned memory.
func (v *Vec[T]) Ptr() *Ptr { return v.ptr }

// Addr returns the device address for reading. It panics if the Vec was destroyed.
func (v *Vec[T]) Addr() backend.DevicePtr { return v.ptr.Addr() }

// MutAddr returns the device address for writing. It panics if the Vec was destroyed.
func (v *Vec[T]) MutAddr() backend.DevicePtr { return v.ptr.MutAddr() }

// IsValid returns whether the memory is still allocated.
func (v *Vec[T]) IsValid() bool { return v != nil && v.ptr.IsValid() }

// Destroy synchronizes the device and frees the memory. Further calls are no-ops.
func (v *Vec[T]) Destroy() {
	if v == nil {
		return
	}
	v.ptr.Destroy()
}

// String implements fmt.Stringer.
func (v *Vec[T]) String() string {
	return fmt.Sprintf("cuda.Vec[%s](len=%d, %s)", v.DType(), v.length, v.ptr)
}

// torus64 panics unless T is a 64-bit integer: the native kernels only exist for the 64-bit torus.
func torus64[T UnsignedInteger](op string) {
	dtype := dtypes.FromGenericsType[T]()
	assertf(dtype.Size() == 8, "%s: only 64-bit torus elements are supported, got %s", op, dtype)
}

// hasLen panics unless v holds at least n elements.
func hasLen[T dtypes.Supported](op, name string, v *Vec[T], n uint64) {
	assertf(v != nil, "%s: %s is nil", op, name)
	assertf(uint64(v.Len()) >= n, "%s: %s has %d elements, at least %d are required", op, name, v.Len(), n)
}
