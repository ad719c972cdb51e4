package cuda

import (
	"github.com/gomlx/tfhecuda/backend"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// scratch is the kernel-internal working memory of a scratch/run/cleanup kernel.
type scratch struct {
	stream   *Stream
	kernel   string
	buffer   backend.DevicePtr
	cleanup  func(stream backend.StreamHandle, buffer *backend.DevicePtr) error
	released bool
}

// newScratch runs the scratch phase of kernel: alloc returns the working buffer, and cleanup will release it.
func newScratch(s *Stream, kernel string, alloc func(stream backend.StreamHandle) (backend.DevicePtr, error),
	cleanup func(stream backend.StreamHandle, buffer *backend.DevicePtr) error) *scratch {
	s.checkActive(kernel)
	buffer, err := alloc(s.wrapper.handle)
	check(err, "allocating scratch for %s on %s", kernel, s.wrapper.device)
	return &scratch{stream: s, kernel: kernel, buffer: buffer, cleanup: cleanup}
}

// release runs the cleanup phase once. Later calls are no-ops.
func (sc *scratch) release() error {
	if sc == nil || sc.released {
		return nil
	}
	sc.released = true
	s := sc.stream
	if !s.IsActive() {
		return errors.Errorf("releasing scratch of %s: the stream was destroyed first", sc.kernel)
	}
	err := sc.cleanup(s.wrapper.handle, &sc.buffer)
	if err != nil {
		return errors.WithMessagef(err, "releasing scratch of %s on %s", sc.kernel, s.wrapper.device)
	}
	return nil
}

// releaseOnExit is deferred by the one-shot kernels, so the scratch is released on every exit path.
//
// If a panic is already unwinding, a failure to release is only logged and the original panic continues.
func releaseOnExit(sc *scratch) {
	err := sc.release()
	if err == nil {
		return
	}
	if r := recover(); r != nil {
		klog.Errorf("%+v (while failing with: %v)", err, r)
		panic(r)
	}
	panic(err)
}
