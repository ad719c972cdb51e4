package cuda

import (
	"fmt"

	"github.com/gomlx/tfhecuda/params"
)

// LweList is a list of Count LWE ciphertexts of the same dimension, stored contiguously on the device: each one
// is its mask followed by its body.
type LweList[T UnsignedInteger] struct {
	Vec       *Vec[T]
	Count     params.LweCiphertextCount
	Dimension params.LweDimension
	Modulus   params.CiphertextModulus
}

// NewLweList allocates a list of count LWE ciphertexts of the given dimension. Its contents are undefined until
// written.
func NewLweList[T UnsignedInteger](s *Stream, count params.LweCiphertextCount, dim params.LweDimension,
	modulus params.CiphertextModulus) *LweList[T] {
	n := uint64(count) * uint64(dim.ToLweSize())
	assertf(n <= uint64(^uint32(0)), "NewLweList of %d ciphertexts of dimension %d is too large", count, dim)
	return &LweList[T]{Vec: MallocAsync[T](s, uint32(n)), Count: count, Dimension: dim, Modulus: modulus}
}

// LweListFromHost copies the ciphertexts in host, count ciphertexts of dimension dim, to the device.
func LweListFromHost[T UnsignedInteger](s *Stream, host []T, dim params.LweDimension,
	modulus params.CiphertextModulus) *LweList[T] {
	lweSize := dim.ToLweSize()
	assertf(len(host)%lweSize == 0, "LweListFromHost: %d elements is not a whole number of ciphertexts of size %d",
		len(host), lweSize)
	return &LweList[T]{Vec: VecFromHost(s, host), Count: params.LweCiphertextCount(len(host) / lweSize),
		Dimension: dim, Modulus: modulus}
}

// ToHost copies the ciphertexts back to the host. It synchronizes the stream.
func (l *LweList[T]) ToHost(s *Stream) []T {
	return VecToHost(s, l.Vec)
}

// Destroy frees the device memory, see Vec.Destroy.
func (l *LweList[T]) Destroy() { l.Vec.Destroy() }

// String implements fmt.Stringer.
func (l *LweList[T]) String() string {
	return fmt.Sprintf("LweList(%d x LWE(dim=%d), %s)", l.Count, l.Dimension, l.Modulus)
}

// GlweList is a list of Count GLWE ciphertexts stored contiguously on the device, e.g. lookup tables.
type GlweList[T UnsignedInteger] struct {
	Vec            *Vec[T]
	Count          params.GlweCiphertextCount
	GlweDimension  params.GlweDimension
	PolynomialSize params.PolynomialSize
	Modulus        params.CiphertextModulus
}

// glweLen is the number of torus elements of count GLWE ciphertexts.
func glweLen(count params.GlweCiphertextCount, dim params.GlweDimension, polySize params.PolynomialSize) uint64 {
	return uint64(count) * uint64(dim.ToGlweSize()) * uint64(polySize)
}

// NewGlweList allocates a list of count GLWE ciphertexts. Its contents are undefined until written.
func NewGlweList[T UnsignedInteger](s *Stream, count params.GlweCiphertextCount, dim params.GlweDimension,
	polySize params.PolynomialSize, modulus params.CiphertextModulus) *GlweList[T] {
	n := glweLen(count, dim, polySize)
	assertf(n <= uint64(^uint32(0)), "NewGlweList of %d ciphertexts is too large", count)
	return &GlweList[T]{Vec: MallocAsync[T](s, uint32(n)), Count: count, GlweDimension: dim,
		PolynomialSize: polySize, Modulus: modulus}
}

// GlweListFromHost copies the GLWE ciphertexts in host to the device.
func GlweListFromHost[T UnsignedInteger](s *Stream, host []T, dim params.GlweDimension,
	polySize params.PolynomialSize, modulus params.CiphertextModulus) *GlweList[T] {
	size := glweLen(1, dim, polySize)
	assertf(size > 0 && uint64(len(host))%size == 0,
		"GlweListFromHost: %d elements is not a whole number of ciphertexts of size %d", len(host), size)
	return &GlweList[T]{Vec: VecFromHost(s, host), Count: params.GlweCiphertextCount(uint64(len(host)) / size),
		GlweDimension: dim, PolynomialSize: polySize, Modulus: modulus}
}

// ToHost copies the ciphertexts back to the host. It synchronizes the stream.
func (l *GlweList[T]) ToHost(s *Stream) []T {
	return VecToHost(s, l.Vec)
}

// Destroy frees the device memory, see Vec.Destroy.
func (l *GlweList[T]) Destroy() { l.Vec.Destroy() }

// String implements fmt.Stringer.
func (l *GlweList[T]) String() string {
	return fmt.Sprintf("GlweList(%d x GLWE(dim=%d, poly=%d), %s)", l.Count, l.GlweDimension, l.PolynomialSize,
		l.Modulus)
}
