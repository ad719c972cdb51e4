package cuda

import (
	"github.com/gomlx/tfhecuda/backend"
	"github.com/pkg/errors"
)

// ErrContractViolation is wrapped by the panics raised on misuse of the API, e.g. copying into a buffer too small
// for the source, or using a destroyed stream.
var ErrContractViolation = errors.New("contract violation")

// assertf panics with an ErrContractViolation if cond is false.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(errors.Wrapf(ErrContractViolation, format, args...))
	}
}

// check panics if the backend reported a failure, naming the operation.
func check(err error, format string, args ...any) {
	if err != nil {
		panic(errors.WithMessagef(err, format, args...))
	}
}

// kernelsOf returns the kernel family K of the backend, or panics if the backend doesn't implement it.
func kernelsOf[K any](b backend.Backend, family string) K {
	k, ok := b.(K)
	if !ok {
		panic(errors.Wrapf(backend.ErrNotImplemented, "backend %q doesn't implement the %s", b.Name(), family))
	}
	return k
}

// releaseAfterSync runs release even if the synchronization before it failed, so the native resource is not
// leaked. The synchronization failure takes precedence in the returned error.
func releaseAfterSync(syncErr error, release func() error) error {
	releaseErr := release()
	switch {
	case syncErr == nil:
		return releaseErr
	case releaseErr != nil:
		return errors.WithMessagef(syncErr, "release after the failed synchronization also failed: %v", releaseErr)
	}
	return syncErr
}
