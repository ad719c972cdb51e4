package emulator

import (
	"unsafe"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/pkg/errors"
)

// All kernels work on the native 64-bit torus, with wrapping arithmetic (modulo 2^64).

// lweBatchSize returns the number of torus elements of count LWE ciphertexts of the given dimension.
func lweBatchSize(lweDimension, count uint32) uint64 {
	return (uint64(lweDimension) + 1) * uint64(count)
}

// AddLweCiphertextVector64 implements backend.LinearKernels.
func (b *Backend) AddLweCiphertextVector64(handle backend.StreamHandle, lweArrayOut, lweArrayIn1,
	lweArrayIn2 backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	n := lweBatchSize(inputLweDimension, inputLweCiphertextCount)
	return b.enqueue("AddLweCiphertextVector64", handle, func(s *stream) (func(), error) {
		out, in1, in2, err := b.resolve3Locked(s, n, lweArrayOut, n, lweArrayIn1, n, lweArrayIn2)
		if err != nil {
			return nil, err
		}
		return func() {
			for i := range out {
				out[i] = in1[i] + in2[i]
			}
		}, nil
	})
}

// AddLweCiphertextVectorPlaintextVector64 implements backend.LinearKernels: the plaintext i is added to the body
// of the ciphertext i.
func (b *Backend) AddLweCiphertextVectorPlaintextVector64(handle backend.StreamHandle, lweArrayOut, lweArrayIn,
	plaintextArrayIn backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	n := lweBatchSize(inputLweDimension, inputLweCiphertextCount)
	count := uint64(inputLweCiphertextCount)
	lweSize := int(inputLweDimension) + 1
	return b.enqueue("AddLweCiphertextVectorPlaintextVector64", handle, func(s *stream) (func(), error) {
		out, in, plaintexts, err := b.resolve3Locked(s, n, lweArrayOut, n, lweArrayIn, count, plaintextArrayIn)
		if err != nil {
			return nil, err
		}
		return func() {
			for i := range out {
				out[i] = in[i]
			}
			for ct, p := range plaintexts {
				out[(ct+1)*lweSize-1] += p
			}
		}, nil
	})
}

// NegateLweCiphertextVector64 implements backend.LinearKernels.
func (b *Backend) NegateLweCiphertextVector64(handle backend.StreamHandle, lweArrayOut, lweArrayIn backend.DevicePtr,
	inputLweDimension, inputLweCiphertextCount uint32) error {
	n := lweBatchSize(inputLweDimension, inputLweCiphertextCount)
	return b.enqueue("NegateLweCiphertextVector64", handle, func(s *stream) (func(), error) {
		out, in, _, err := b.resolve3Locked(s, n, lweArrayOut, n, lweArrayIn, 0, 0)
		if err != nil {
			return nil, err
		}
		return func() {
			for i := range out {
				out[i] = -in[i]
			}
		}, nil
	})
}

// MultLweCiphertextVectorCleartextVector64 implements backend.LinearKernels: every element of the ciphertext i is
// multiplied by the cleartext i.
func (b *Backend) MultLweCiphertextVectorCleartextVector64(handle backend.StreamHandle, lweArrayOut, lweArrayIn,
	cleartextArrayIn backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	n := lweBatchSize(inputLweDimension, inputLweCiphertextCount)
	count := uint64(inputLweCiphertextCount)
	lweSize := int(inputLweDimension) + 1
	return b.enqueue("MultLweCiphertextVectorCleartextVector64", handle, func(s *stream) (func(), error) {
		out, in, cleartexts, err := b.resolve3Locked(s, n, lweArrayOut, n, lweArrayIn, count, cleartextArrayIn)
		if err != nil {
			return nil, err
		}
		return func() {
			for i := range out {
				out[i] = in[i] * cleartexts[i/lweSize]
			}
		}, nil
	})
}

// resolve3Locked resolves up to three word ranges on the device of the stream. Ranges with count 0 are skipped.
func (b *Backend) resolve3Locked(s *stream, n0 uint64, p0 backend.DevicePtr, n1 uint64, p1 backend.DevicePtr,
	n2 uint64, p2 backend.DevicePtr) (w0, w1, w2 []uint64, err error) {
	ranges := []struct {
		n   uint64
		ptr backend.DevicePtr
		w   *[]uint64
	}{{n0, p0, &w0}, {n1, p1, &w1}, {n2, p2, &w2}}
	for i, r := range ranges {
		if r.n == 0 {
			continue
		}
		*r.w, err = b.resolveWordsLocked(r.ptr, r.n, s.gpuIndex)
		if err != nil {
			return nil, nil, nil, errors.WithMessagef(err, "argument #%d", i)
		}
	}
	return
}

// bootstrapKeySize returns the number of torus elements of a standard bootstrapping key.
func bootstrapKeySize(inputLweDim, glweDim, levelCount, polynomialSize uint32) uint64 {
	glweSize := uint64(glweDim) + 1
	return uint64(inputLweDim) * glweSize * glweSize * uint64(levelCount) * uint64(polynomialSize)
}

// ConvertLweBootstrapKey64 implements backend.KeyConversionKernels.
//
// The emulated kernels don't use a frequency domain, so the key is kept in its standard layout: the torus
// elements are copied bit for bit into the 64-bit words of dest.
func (b *Backend) ConvertLweBootstrapKey64(dest backend.DevicePtr, src unsafe.Pointer, handle backend.StreamHandle,
	inputLweDim, glweDim, levelCount, polynomialSize uint32) error {
	size := 8 * bootstrapKeySize(inputLweDim, glweDim, levelCount, polynomialSize)
	return b.convertKey("ConvertLweBootstrapKey64", dest, src, size, handle)
}

// ConvertLweMultiBitBootstrapKey64 implements backend.KeyConversionKernels, see ConvertLweBootstrapKey64.
func (b *Backend) ConvertLweMultiBitBootstrapKey64(dest backend.DevicePtr, src unsafe.Pointer,
	handle backend.StreamHandle, inputLweDim, glweDim, levelCount, polynomialSize, groupingFactor uint32) error {
	if groupingFactor == 0 || inputLweDim%groupingFactor != 0 {
		return errors.Errorf("emulator ConvertLweMultiBitBootstrapKey64: input LWE dimension %d is not a multiple "+
			"of the grouping factor %d", inputLweDim, groupingFactor)
	}
	numGroups := inputLweDim / groupingFactor
	size := 8 * bootstrapKeySize(numGroups, glweDim, levelCount, polynomialSize) * (uint64(1) << groupingFactor)
	return b.convertKey("ConvertLweMultiBitBootstrapKey64", dest, src, size, handle)
}

func (b *Backend) convertKey(opName string, dest backend.DevicePtr, src unsafe.Pointer, size uint64,
	handle backend.StreamHandle) error {
	return b.enqueue(opName, handle, func(s *stream) (func(), error) {
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

// radixDelta returns the scaling factor of the messages of radix blocks with the given moduli: one bit of padding
// is reserved.
func radixDelta(messageModulus, carryModulus uint32) (uint64, error) {
	product := uint64(messageModulus) * uint64(carryModulus)
	if product == 0 {
		return 0, errors.Errorf("invalid radix moduli: message modulus %d, carry modulus %d",
			messageModulus, carryModulus)
	}
	return (uint64(1) << 63) / product, nil
}

// NegateIntegerRadixCiphertext64Inplace implements backend.IntegerKernels.
//
// Each block is negated as z·Δ - block, where z is the smallest multiple of the message modulus above the maximum
// degree of a clean block, and the z/message_modulus borrowed this way is subtracted from the next block.
func (b *Backend) NegateIntegerRadixCiphertext64Inplace(handle backend.StreamHandle, lweArray backend.DevicePtr,
	lweDimension, lweCiphertextCount, messageModulus, carryModulus uint32) error {
	delta, err := radixDelta(messageModulus, carryModulus)
	if err != nil {
		return errors.WithMessage(err, "emulator NegateIntegerRadixCiphertext64Inplace")
	}
	n := lweBatchSize(lweDimension, lweCiphertextCount)
	lweSize := int(lweDimension) + 1
	msgMod := uint64(messageModulus)
	return b.enqueue("NegateIntegerRadixCiphertext64Inplace", handle, func(s *stream) (func(), error) {
		blocks, _, _, err := b.resolve3Locked(s, n, lweArray, 0, 0, 0, 0)
		if err != nil {
			return nil, err
		}
		return func() {
			z := (2*msgMod - 1) / msgMod * msgMod
			encodedZ := z * delta
			encodedBorrow := z / msgMod * delta
			for blockIdx := 0; blockIdx < int(lweCiphertextCount); blockIdx++ {
				block := blocks[blockIdx*lweSize : (blockIdx+1)*lweSize]
				body := len(block) - 1
				for i := range body {
					block[i] = -block[i]
				}
				if blockIdx == 0 {
					block[body] = encodedZ - block[body]
				} else {
					block[body] = encodedZ - (block[body] + encodedBorrow)
				}
			}
		}, nil
	})
}

// ScalarAdditionIntegerRadixCiphertext64Inplace implements backend.IntegerKernels: the scalar digit i, scaled
// by Δ, is added to the body of block i.
func (b *Backend) ScalarAdditionIntegerRadixCiphertext64Inplace(handle backend.StreamHandle, lweArray,
	scalarInput backend.DevicePtr, lweDimension, lweCiphertextCount, messageModulus, carryModulus uint32) error {
	delta, err := radixDelta(messageModulus, carryModulus)
	if err != nil {
		return errors.WithMessage(err, "emulator ScalarAdditionIntegerRadixCiphertext64Inplace")
	}
	n := lweBatchSize(lweDimension, lweCiphertextCount)
	lweSize := int(lweDimension) + 1
	return b.enqueue("ScalarAdditionIntegerRadixCiphertext64Inplace", handle, func(s *stream) (func(), error) {
		blocks, scalars, _, err := b.resolve3Locked(s, n, lweArray, uint64(lweCiphertextCount), scalarInput, 0, 0)
		if err != nil {
			return nil, err
		}
		return func() {
			for blockIdx, digit := range scalars {
				blocks[(blockIdx+1)*lweSize-1] += digit * delta
			}
		}, nil
	})
}

// SmallScalarMultiplicationIntegerRadixCiphertext64 implements backend.IntegerKernels.
func (b *Backend) SmallScalarMultiplicationIntegerRadixCiphertext64(handle backend.StreamHandle, outputLweArray,
	inputLweArray backend.DevicePtr, scalar uint64, lweDimension, lweCiphertextCount uint32) error {
	n := lweBatchSize(lweDimension, lweCiphertextCount)
	return b.enqueue("SmallScalarMultiplicationIntegerRadixCiphertext64", handle, func(s *stream) (func(), error) {
		out, in, _, err := b.resolve3Locked(s, n, outputLweArray, n, inputLweArray, 0, 0)
		if err != nil {
			return nil, err
		}
		return func() {
			for i := range out {
				out[i] = in[i] * scalar
			}
		}, nil
	})
}

// SmallScalarMultiplicationIntegerRadixCiphertext64Inplace implements backend.IntegerKernels.
func (b *Backend) SmallScalarMultiplicationIntegerRadixCiphertext64Inplace(handle backend.StreamHandle,
	lweArray backend.DevicePtr, scalar uint64, lweDimension, lweCiphertextCount uint32) error {
	return b.SmallScalarMultiplicationIntegerRadixCiphertext64(handle, lweArray, lweArray, scalar, lweDimension,
		lweCiphertextCount)
}
