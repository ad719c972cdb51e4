// Package cuda owns the GPU resources used by the TFHE kernels (streams and device memory), and dispatches the
// kernels to a backend.
//
// The typical flow is:
//
//	device := cuda.NewDevice(b, 0)       // b is a backend.Backend, e.g. from backend.Default().
//	stream := cuda.NewStream(device)
//	defer stream.Destroy()
//	vec := cuda.VecFromHost(stream, values)
//	defer vec.Destroy()
//	cuda.AddLweCiphertextVectorPlaintextVectorAssignAsync(stream, vec, plaintexts, lweDim, count)
//	results := cuda.VecToHost(stream, vec) // Synchronizes the stream.
//
// Operations with the "Async" suffix only enqueue work on the stream and return. Work on one stream runs in the
// order it was enqueued, and nothing is ordered across streams unless one synchronizes. A Stream must be used by
// one goroutine at a time, independent streams can be used concurrently.
//
// Memory is freed synchronously: Ptr.Destroy (and Vec.Destroy) first wait for all the work of the device, on
// every stream, and then free the allocation.
//
// Errors: this package panics on misuse (ContractViolation, e.g. a destination smaller than the source of a
// copy), detected before any work is issued. It also panics when the backend reports a failure: there is no
// recovery for driver or hardware failures. Panics carry errors from github.com/pkg/errors, which can be checked
// with errors.Is against ErrContractViolation or against the error returned by the backend.
package cuda
