package cuda

import (
	"fmt"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/pkg/errors"
)

// Device identifies one accelerator of a backend by its index.
//
// It is a plain value: it holds no resources and it is never mutated. Queries hit the backend on every call.
type Device struct {
	backend  backend.Backend
	gpuIndex uint32
}

// NewDevice returns the device gpuIndex of the backend b. It doesn't check that the device exists.
func NewDevice(b backend.Backend, gpuIndex uint32) Device {
	return Device{backend: b, gpuIndex: gpuIndex}
}

// DefaultDevice returns the device gpuIndex of the default backend, see backend.Default.
func DefaultDevice(gpuIndex uint32) (Device, error) {
	b, err := backend.Default()
	if err != nil {
		return Device{}, errors.WithMessagef(err, "cuda.DefaultDevice(%d)", gpuIndex)
	}
	return NewDevice(b, gpuIndex), nil
}

// GPUIndex returns the index of the device within its backend.
func (d Device) GPUIndex() uint32 { return d.gpuIndex }

// Backend returns the backend executing the work of the device.
func (d Device) Backend() backend.Backend { return d.backend }

// MaxSharedMemory returns the maximum shared memory per block of the device, in bytes. It is used to size the
// launch configuration of the bootstrap kernels.
func (d Device) MaxSharedMemory() int32 {
	return d.backend.GetMaxSharedMemory(d.gpuIndex)
}

// NumberOfGPUs returns the number of devices of the backend. It doesn't depend on the device, and it's here for
// convenience.
func (d Device) NumberOfGPUs() int32 {
	return d.backend.GetNumberOfGPUs()
}

// Synchronize blocks until all the outstanding work of the device, on all its streams, has completed.
func (d Device) Synchronize() {
	check(d.backend.SynchronizeDevice(d.gpuIndex), "synchronizing %s", d)
}

// String implements fmt.Stringer.
func (d Device) String() string {
	if d.backend == nil {
		return fmt.Sprintf("Device(<nil backend>, gpu=%d)", d.gpuIndex)
	}
	return fmt.Sprintf("Device(%s, gpu=%d)", d.backend.Name(), d.gpuIndex)
}
