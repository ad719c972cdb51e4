package cuda

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/gomlx/tfhecuda/backend"
	"k8s.io/klog/v2"
)

// LeakStacksEnv is the environment variable that, if set to a non-empty value, makes every Ptr capture the stack
// where it was allocated, so it can be reported if the Ptr is garbage collected without being destroyed.
const LeakStacksEnv = "TFHECUDA_LEAK_STACKS"

var leakStacks = os.Getenv(LeakStacksEnv) != ""

// Ptr owns one allocation of device memory.
//
// The allocation belongs to the device where it was made, and it is freed exactly once, by Destroy: the address
// is never used again after that. Ptr must not be copied by value; share the *Ptr instead.
//
// If a Ptr is garbage collected without being destroyed, it is freed then (with the same device synchronization)
// and the leak is logged.
type Ptr struct {
	wrapper *ptrWrapper
}

// ptrWrapper holds the state that requires clean up, so it can be reached by the garbage collection cleanup.
type ptrWrapper struct {
	device    Device
	addr      backend.DevicePtr
	size      uint64
	destroyed bool
	stack     []byte
}

var ptrsAlive atomic.Int64

// PtrsAlive returns the number of Ptr allocated and not yet destroyed.
func PtrsAlive() int64 {
	return ptrsAlive.Load()
}

// newPtr takes ownership of the allocation of size bytes at addr on device.
func newPtr(device Device, addr backend.DevicePtr, size uint64) *Ptr {
	p := &Ptr{wrapper: &ptrWrapper{device: device, addr: addr, size: size}}
	if leakStacks {
		buf := make([]byte, 10*1024)
		n := runtime.Stack(buf, false)
		p.wrapper.stack = buf[:n]
	}
	ptrsAlive.Add(1)
	runtime.AddCleanup(p, func(wrapper *ptrWrapper) {
		if wrapper.destroyed {
			return
		}
		if wrapper.stack == nil {
			klog.Errorf("cuda.Ptr of %d bytes on %s garbage collected without being destroyed", wrapper.size,
				wrapper.device)
		} else {
			klog.Errorf("cuda.Ptr of %d bytes on %s garbage collected without being destroyed. Stack:\n%s\n",
				wrapper.size, wrapper.device, wrapper.stack)
		}
		if err := wrapper.destroy(); err != nil {
			klog.Errorf("cuda.Ptr cleanup failed: %+v", err)
		}
	}, p.wrapper)
	return p
}

// destroy synchronizes the whole device, since any of its streams may still use the memory, and frees it. The
// memory is freed even if the synchronization fails.
func (wrapper *ptrWrapper) destroy() error {
	if wrapper.destroyed {
		return nil
	}
	wrapper.destroyed = true
	ptrsAlive.Add(-1)
	b := wrapper.device.backend
	return releaseAfterSync(b.SynchronizeDevice(wrapper.device.gpuIndex), func() error {
		return b.Drop(wrapper.addr)
	})
}

// Destroy synchronizes the device and frees the memory. Further calls are no-ops.
//
// If the backend fails to synchronize, the memory is still freed and then Destroy panics with the failure.
func (p *Ptr) Destroy() {
	if p == nil || p.wrapper.destroyed {
		return
	}
	w := p.wrapper
	check(w.destroy(), "destroying cuda.Ptr %#x (%d bytes) on %s", uintptr(w.addr), w.size, w.device)
}

// IsValid returns whether the memory is allocated, that is, Destroy was not called yet.
func (p *Ptr) IsValid() bool {
	return p != nil && !p.wrapper.destroyed
}

// Device where the memory is allocated.
func (p *Ptr) Device() Device { return p.wrapper.device }

// Size of the allocation in bytes.
func (p *Ptr) Size() uint64 { return p.wrapper.size }

// Addr returns the device address, for kernels that read the memory. It panics if the Ptr was destroyed.
func (p *Ptr) Addr() backend.DevicePtr {
	assertf(p.IsValid(), "use of a destroyed cuda.Ptr")
	return p.wrapper.addr
}

// MutAddr returns the device address, for kernels that write the memory. It panics if the Ptr was destroyed.
func (p *Ptr) MutAddr() backend.DevicePtr {
	assertf(p.IsValid(), "use of a destroyed cuda.Ptr")
	return p.wrapper.addr
}

// String implements fmt.Stringer.
func (p *Ptr) String() string {
	if !p.IsValid() {
		return "cuda.Ptr(destroyed)"
	}
	return fmt.Sprintf("cuda.Ptr(%#x, %d bytes, %s)", uintptr(p.wrapper.addr), p.wrapper.size, p.wrapper.device)
}
