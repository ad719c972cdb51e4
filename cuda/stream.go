package cuda

import (
	"fmt"
	"runtime"

	"github.com/gomlx/tfhecuda/backend"
	"k8s.io/klog/v2"
)

// Stream is an ordered queue of asynchronous work bound to one device. Memory allocation, transfers and kernels
// are all issued through a Stream.
//
// A Stream is created active, and it accepts any number of operations until Destroy synchronizes it and releases
// the native stream. Using it after that panics.
//
// Host memory given to asynchronous transfers is pinned until the next Synchronize (or Destroy): the Go slices
// must not be modified (or read, for transfers to the host) before then.
//
// A Stream is not safe for concurrent use: use one Stream per goroutine.
type Stream struct {
	wrapper *streamWrapper
}

type streamWrapper struct {
	device    Device
	handle    backend.StreamHandle
	destroyed bool
	pinner    runtime.Pinner
}

// NewStream creates a stream on the device. It panics if the backend fails to create it.
func NewStream(device Device) *Stream {
	handle, err := device.backend.CreateStream(device.gpuIndex)
	check(err, "creating a stream on %s", device)
	s := &Stream{wrapper: &streamWrapper{device: device, handle: handle}}
	runtime.AddCleanup(s, func(wrapper *streamWrapper) {
		if wrapper.destroyed {
			return
		}
		klog.Errorf("cuda.Stream on %s garbage collected without being destroyed", wrapper.device)
		if err := wrapper.destroy(); err != nil {
			klog.Errorf("cuda.Stream cleanup failed: %+v", err)
		}
	}, s.wrapper)
	return s
}

func (wrapper *streamWrapper) synchronize() error {
	defer wrapper.pinner.Unpin()
	return wrapper.device.backend.SynchronizeStream(wrapper.handle)
}

func (wrapper *streamWrapper) destroy() error {
	if wrapper.destroyed {
		return nil
	}
	wrapper.destroyed = true
	return releaseAfterSync(wrapper.synchronize(), func() error {
		return wrapper.device.backend.DestroyStream(wrapper.handle)
	})
}

// Device the stream is bound to.
func (s *Stream) Device() Device { return s.wrapper.device }

// Handle returns the native stream. It panics if the stream was destroyed.
func (s *Stream) Handle() backend.StreamHandle {
	s.checkActive("Handle")
	return s.wrapper.handle
}

// IsActive returns whether the stream accepts work, that is, Destroy was not called yet.
func (s *Stream) IsActive() bool {
	return s != nil && !s.wrapper.destroyed
}

func (s *Stream) checkActive(op string) {
	assertf(s.IsActive(), "%s on a destroyed cuda.Stream", op)
}

// activeBackend returns the backend of the stream's device, after checking the stream is still active.
func (s *Stream) activeBackend(op string) backend.Backend {
	s.checkActive(op)
	return s.wrapper.device.backend
}

// pin keeps the host memory at ptr in place until the stream is synchronized.
func (s *Stream) pin(ptr any) {
	s.wrapper.pinner.Pin(ptr)
}

// Synchronize blocks until all the work enqueued on this stream has completed. Other streams are not affected.
func (s *Stream) Synchronize() {
	s.checkActive("Synchronize")
	check(s.wrapper.synchronize(), "synchronizing stream of %s", s.wrapper.device)
}

// Destroy synchronizes the stream and releases the native stream. Further calls are no-ops.
//
// If the backend fails to synchronize, the native stream is still released and then Destroy panics with the
// failure.
func (s *Stream) Destroy() {
	if !s.IsActive() {
		return
	}
	check(s.wrapper.destroy(), "destroying stream of %s", s.wrapper.device)
}

// String implements fmt.Stringer.
func (s *Stream) String() string {
	if !s.IsActive() {
		return "cuda.Stream(destroyed)"
	}
	return fmt.Sprintf("cuda.Stream(%#x, %s)", uintptr(s.wrapper.handle), s.wrapper.device)
}
