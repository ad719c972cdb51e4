package cuda

import (
	"unsafe"

	"github.com/gomlx/tfhecuda/dtypes"
)

// MallocAsync allocates count elements of type T on the device of the stream.
//
// The allocation is ordered on the stream: it can be used right away by later work on the same stream, but other
// streams must wait for a synchronization of this one.
func MallocAsync[T dtypes.Supported](s *Stream, count uint32) *Vec[T] {
	b := s.activeBackend("MallocAsync")
	size := uint64(count) * uint64(sizeOf[T]())
	addr, err := b.MallocAsync(size, s.wrapper.handle)
	check(err, "allocating %d x %s (%d bytes) on %s", count, dtypes.FromGenericsType[T](), size, s.wrapper.device)
	device := s.wrapper.device
	return NewVec[T](newPtr(device, addr, size), int(count), device)
}

// bytesOf returns the memory representation of value.
func bytesOf[T dtypes.Supported](value *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(value)), sizeOf[T]())
}

// uniformByte returns the byte repeated in all the bytes of value, if there is one.
func uniformByte[T dtypes.Supported](value T) (byte, bool) {
	raw := bytesOf(&value)
	for _, c := range raw[1:] {
		if c != raw[0] {
			return 0, false
		}
	}
	return raw[0], true
}

// MemsetAsync sets all the bytes of dest to the single byte repeated in value.
//
// It maps directly to the native byte memset, so every byte of value must be the same (e.g. 0, or 0xFFFF for
// uint16), otherwise it panics. FillAsync accepts any value.
func MemsetAsync[T dtypes.Supported](s *Stream, dest *Vec[T], value T) {
	b := s.activeBackend("MemsetAsync")
	c, ok := uniformByte(value)
	assertf(ok, "MemsetAsync with value %v: its bytes are not all the same, use FillAsync", value)
	check(b.MemsetAsync(dest.MutAddr(), uint64(c), dest.SizeBytes(), s.wrapper.handle),
		"MemsetAsync of %s", dest)
}

// FillAsync sets every element of dest to value.
//
// Values whose bytes are all the same use the native memset, other values are copied from a host buffer with the
// repeated value, which is kept pinned until the stream is synchronized.
func FillAsync[T dtypes.Supported](s *Stream, dest *Vec[T], value T) {
	if _, ok := uniformByte(value); ok {
		MemsetAsync(s, dest, value)
		return
	}
	pattern := make([]T, dest.Len())
	for i := range pattern {
		pattern[i] = value
	}
	CopyToGPUAsync(s, dest, pattern)
}

// hostPointer pins the first element of host on the stream and returns its address, or nil for an empty slice.
func hostPointer[T dtypes.Supported](s *Stream, host []T) unsafe.Pointer {
	if len(host) == 0 {
		return nil
	}
	s.pin(&host[0])
	return unsafe.Pointer(&host[0])
}

// CopyToGPUAsync copies src into the first len(src) elements of dest.
//
// It panics if dest is smaller than src, before anything is transferred. src must not be modified until the
// stream is synchronized.
func CopyToGPUAsync[T dtypes.Supported](s *Stream, dest *Vec[T], src []T) {
	b := s.activeBackend("CopyToGPUAsync")
	assertf(dest.Len() >= len(src), "CopyToGPUAsync of %d elements into %s", len(src), dest)
	size := uint64(len(src)) * uint64(sizeOf[T]())
	check(b.MemcpyAsyncToGPU(dest.MutAddr(), hostPointer(s, src), size, s.wrapper.handle),
		"CopyToGPUAsync of %d bytes into %s", size, dest)
}

// CopyGPUToGPUAsync copies all of src into the first src.Len() elements of dest. Both must be on the device of
// the stream.
//
// It panics if dest is smaller than src, before anything is transferred.
func CopyGPUToGPUAsync[T dtypes.Supported](s *Stream, dest, src *Vec[T]) {
	b := s.activeBackend("CopyGPUToGPUAsync")
	assertf(dest.Len() >= src.Len(), "CopyGPUToGPUAsync of %s into %s", src, dest)
	check(b.MemcpyAsyncGPUToGPU(dest.MutAddr(), src.Addr(), src.SizeBytes(), s.wrapper.handle),
		"CopyGPUToGPUAsync of %s into %s", src, dest)
}

// CopyToCPUAsync copies all of src into the first src.Len() elements of dest.
//
// It panics if dest is smaller than src, before anything is transferred. dest is only valid after the stream is
// synchronized.
func CopyToCPUAsync[T dtypes.Supported](s *Stream, dest []T, src *Vec[T]) {
	b := s.activeBackend("CopyToCPUAsync")
	assertf(len(dest) >= src.Len(), "CopyToCPUAsync of %s into %d elements", src, len(dest))
	check(b.MemcpyAsyncToCPU(hostPointer(s, dest), src.Addr(), src.SizeBytes(), s.wrapper.handle),
		"CopyToCPUAsync of %s", src)
}

// VecFromHost allocates a Vec with the contents of src. src must not be modified until the stream is synchronized.
func VecFromHost[T dtypes.Supported](s *Stream, src []T) *Vec[T] {
	assertf(uint64(len(src)) <= uint64(^uint32(0)), "VecFromHost of %d elements", len(src))
	v := MallocAsync[T](s, uint32(len(src)))
	CopyToGPUAsync(s, v, src)
	return v
}

// VecToHost copies src to a new slice. It synchronizes the stream.
func VecToHost[T dtypes.Supported](s *Stream, src *Vec[T]) []T {
	dest := make([]T, src.Len())
	CopyToCPUAsync(s, dest, src)
	s.Synchronize()
	return dest
}
