package emulator

import (
	"slices"
	"unsafe"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// allocation is the emulated device memory of one MallocAsync.
// data is backed by a []uint64, so it is 8 bytes aligned.
type allocation struct {
	gpuIndex uint32
	data     []byte
}

func newAllocation(gpuIndex uint32, size uint64) *allocation {
	a := &allocation{gpuIndex: gpuIndex}
	if size > 0 {
		words := make([]uint64, (size+7)/8)
		a.data = unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
	}
	return a
}

// MallocAsync implements backend.Backend. The allocation is reserved immediately, and its contents are zero.
//
// A zero size allocation returns a valid and distinct address, which can only be used with zero size transfers.
func (b *Backend) MallocAsync(size uint64, handle backend.StreamHandle) (backend.DevicePtr, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookupStreamLocked(handle)
	if err != nil {
		return 0, errors.WithMessagef(err, "emulator MallocAsync(%d bytes)", size)
	}
	ptr := b.nextAddress
	b.nextAddress += backend.DevicePtr((size+addressAlign-1)/addressAlign*addressAlign + addressGuard)
	b.allocations[ptr] = newAllocation(s.gpuIndex, size)
	b.bases = sortedInsert(b.bases, ptr)
	klog.V(2).Infof("emulator: allocated %d bytes at %#x on gpu %d", size, uintptr(ptr), s.gpuIndex)
	return ptr, nil
}

// Drop implements backend.Backend. Like the native free, it first waits for the outstanding work on the device.
func (b *Backend) Drop(ptr backend.DevicePtr) error {
	b.mu.Lock()
	a, found := b.allocations[ptr]
	b.mu.Unlock()
	if !found {
		return errors.Errorf("emulator Drop: address %#x is not an allocation, or it was already dropped", uintptr(ptr))
	}
	for _, s := range b.deviceStreams(a.gpuIndex) {
		s.synchronize()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found = b.allocations[ptr]; !found {
		return errors.Errorf("emulator Drop: address %#x dropped concurrently", uintptr(ptr))
	}
	delete(b.allocations, ptr)
	if idx, found := slices.BinarySearch(b.bases, ptr); found {
		b.bases = slices.Delete(b.bases, idx, idx+1)
	}
	klog.V(2).Infof("emulator: dropped %#x", uintptr(ptr))
	return nil
}

// resolveLocked returns the host memory backing the size bytes at ptr. The range must be within one allocation
// of the given device. b.mu must be held.
func (b *Backend) resolveLocked(ptr backend.DevicePtr, size uint64, gpuIndex uint32) ([]byte, error) {
	idx, found := slices.BinarySearch(b.bases, ptr)
	if !found {
		// Interior address: the allocation is the one with the largest base below ptr.
		idx--
	}
	if idx < 0 {
		return nil, errors.Errorf("address %#x is not in device memory", uintptr(ptr))
	}
	base := b.bases[idx]
	a := b.allocations[base]
	offset := uint64(ptr - base)
	if offset+size < offset || offset+size > uint64(len(a.data)) {
		return nil, errors.Errorf("range [%#x, +%d bytes) out of bounds of the allocation at %#x of %d bytes",
			uintptr(ptr), size, uintptr(base), len(a.data))
	}
	if a.gpuIndex != gpuIndex {
		return nil, errors.Errorf("address %#x is on gpu %d, but it is used from a stream of gpu %d",
			uintptr(ptr), a.gpuIndex, gpuIndex)
	}
	if size == 0 {
		return nil, nil
	}
	return a.data[offset : offset+size : offset+size], nil
}

// resolveWordsLocked is like resolveLocked, but returns the memory as count 64-bit words.
func (b *Backend) resolveWordsLocked(ptr backend.DevicePtr, count uint64, gpuIndex uint32) ([]uint64, error) {
	if ptr%8 != 0 {
		return nil, errors.Errorf("address %#x is not aligned to 8 bytes", uintptr(ptr))
	}
	data, err := b.resolveLocked(ptr, count*8, gpuIndex)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), count), nil
}

// hostBytes views the host memory at src as a byte slice.
func hostBytes(src unsafe.Pointer, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if src == nil {
		return nil, errors.Errorf("nil host pointer for a transfer of %d bytes", size)
	}
	return unsafe.Slice((*byte)(src), size), nil
}

// MemsetAsync implements backend.Backend: it sets every byte to the lower byte of value.
func (b *Backend) MemsetAsync(dest backend.DevicePtr, value uint64, size uint64, handle backend.StreamHandle) error {
	return b.enqueue("MemsetAsync", handle, func(s *stream) (func(), error) {
		data, err := b.resolveLocked(dest, size, s.gpuIndex)
		if err != nil {
			return nil, err
		}
		v := byte(value)
		return func() {
			for i := range data {
				data[i] = v
			}
		}, nil
	})
}

// MemcpyAsyncToGPU implements backend.Backend.
func (b *Backend) MemcpyAsyncToGPU(dest backend.DevicePtr, src unsafe.Pointer, size uint64,
	handle backend.StreamHandle) error {
	return b.enqueue("MemcpyAsyncToGPU", handle, func(s *stream) (func(), error) {
		data, err := b.resolveLocked(dest, size, s.gpuIndex)
		if err != nil {
			return nil, err
		}
		host, err := hostBytes(src, size)
		if err != nil {
			return nil, err
		}
		return func() { copy(data, host) }, nil
	})
}

// MemcpyAsyncGPUToGPU implements backend.Backend. Overlapping ranges are copied as if through a temporary buffer.
func (b *Backend) MemcpyAsyncGPUToGPU(dest backend.DevicePtr, src backend.DevicePtr, size uint64,
	handle backend.StreamHandle) error {
	return b.enqueue("MemcpyAsyncGPUToGPU", handle, func(s *stream) (func(), error) {
		destData, err := b.resolveLocked(dest, size, s.gpuIndex)
		if err != nil {
			return nil, err
		}
		srcData, err := b.resolveLocked(src, size, s.gpuIndex)
		if err != nil {
			return nil, err
		}
		return func() { copy(destData, srcData) }, nil
	})
}

// MemcpyAsyncToCPU implements backend.Backend.
func (b *Backend) MemcpyAsyncToCPU(dest unsafe.Pointer, src backend.DevicePtr, size uint64,
	handle backend.StreamHandle) error {
	return b.enqueue("MemcpyAsyncToCPU", handle, func(s *stream) (func(), error) {
		data, err := b.resolveLocked(src, size, s.gpuIndex)
		if err != nil {
			return nil, err
		}
		host, err := hostBytes(dest, size)
		if err != nil {
			return nil, err
		}
		return func() { copy(host, data) }, nil
	})
}
