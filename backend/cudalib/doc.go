// Package cudalib binds the precompiled TFHE CUDA backend (libtfhe_cuda_backend) with cgo, and registers it as
// the "cuda" backend.
//
// It is only compiled with cgo and the "cuda" build tag, e.g.:
//
//	CGO_LDFLAGS="-L/usr/local/cuda/lib64 -L/path/to/tfhe_cuda_backend" go build -tags cuda ./...
//
// Without the tag the package is empty and Available is false, so it can always be imported:
//
//	import _ "github.com/gomlx/tfhecuda/backend/cudalib"
//
// Every method forwards to the native entry point with the same arguments, in the same order. Failures are
// detected with cudaGetLastError after each call, and returned as errors carrying the CUDA error string.
package cudalib
