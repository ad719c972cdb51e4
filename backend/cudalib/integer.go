//go:build cgo && cuda

package cudalib

/*
#include <stdbool.h>
#include <stdint.h>

// Enums of the native API are passed as uint32_t.

void cuda_negate_integer_radix_ciphertext_64_inplace(void *stream, void *lwe_array, uint32_t lwe_dimension,
    uint32_t lwe_ciphertext_count, uint32_t message_modulus, uint32_t carry_modulus);
void cuda_scalar_addition_integer_radix_ciphertext_64_inplace(void *stream, void *lwe_array, void *scalar_input,
    uint32_t lwe_dimension, uint32_t lwe_ciphertext_count, uint32_t message_modulus, uint32_t carry_modulus);
void cuda_small_scalar_multiplication_integer_radix_ciphertext_64(void *stream, void *output_lwe_array,
    void *input_lwe_array, uint64_t scalar, uint32_t lwe_dimension, uint32_t lwe_ciphertext_count);
void cuda_small_scalar_multiplication_integer_radix_ciphertext_64_inplace(void *stream, void *lwe_array,
    uint64_t scalar, uint32_t lwe_dimension, uint32_t lwe_ciphertext_count);

void scratch_cuda_full_propagation_64(void *stream, int8_t **mem_ptr, uint32_t lwe_dimension,
    uint32_t glwe_dimension, uint32_t polynomial_size, uint32_t level_count, uint32_t grouping_factor,
    uint32_t input_lwe_ciphertext_count, uint32_t message_modulus, uint32_t carry_modulus, uint32_t pbs_type,
    bool allocate_gpu_memory);
void cuda_full_propagation_64_inplace(void *stream, void *input_blocks, int8_t *mem_ptr, void *ksk, void *bsk,
    uint32_t lwe_dimension, uint32_t glwe_dimension, uint32_t polynomial_size, uint32_t ks_base_log,
    uint32_t ks_level, uint32_t pbs_base_log, uint32_t pbs_level, uint32_t grouping_factor, uint32_t num_blocks);
void cleanup_cuda_full_propagation(void *stream, int8_t **mem_ptr);

void scratch_cuda_integer_mult_radix_ciphertext_kb_64(void *stream, int8_t **mem_ptr, uint32_t message_modulus,
    uint32_t carry_modulus, uint32_t glwe_dimension, uint32_t lwe_dimension, uint32_t polynomial_size,
    uint32_t pbs_base_log, uint32_t pbs_level, uint32_t ks_base_log, uint32_t ks_level, uint32_t grouping_factor,
    uint32_t num_blocks, uint32_t pbs_type, uint32_t max_shared_memory, bool allocate_gpu_memory);
void cuda_integer_mult_radix_ciphertext_kb_64(void *stream, void *radix_lwe_out, void *radix_lwe_left,
    void *radix_lwe_right, void *bsk, void *ksk, int8_t *mem_ptr, uint32_t message_modulus,
    uint32_t carry_modulus, uint32_t glwe_dimension, uint32_t lwe_dimension, uint32_t polynomial_size,
    uint32_t pbs_base_log, uint32_t pbs_level, uint32_t ks_base_log, uint32_t ks_level, uint32_t grouping_factor,
    uint32_t num_blocks, uint32_t pbs_type, uint32_t max_shared_memory);
void cleanup_cuda_integer_mult(void *stream, int8_t **mem_ptr);

void scratch_cuda_integer_radix_bitop_kb_64(void *stream, int8_t **mem_ptr, uint32_t glwe_dimension,
    uint32_t polynomial_size, uint32_t big_lwe_dimension, uint32_t small_lwe_dimension, uint32_t ks_level,
    uint32_t ks_base_log, uint32_t pbs_level, uint32_t pbs_base_log, uint32_t grouping_factor,
    uint32_t lwe_ciphertext_count, uint32_t message_modulus, uint32_t carry_modulus, uint32_t pbs_type,
    uint32_t op_type, bool allocate_gpu_memory);
void cuda_bitop_integer_radix_ciphertext_kb_64(void *stream, void *lwe_array_out, void *lwe_array_1,
    void *lwe_array_2, int8_t *mem_ptr, void *bsk, void *ksk, uint32_t lwe_ciphertext_count);
void cuda_bitnot_integer_radix_ciphertext_kb_64(void *stream, void *lwe_array_out, void *lwe_array_in,
    int8_t *mem_ptr, void *bsk, void *ksk, uint32_t lwe_ciphertext_count);
void cleanup_cuda_integer_bitop(void *stream, int8_t **mem_ptr);

void scratch_cuda_integer_radix_comparison_kb_64(void *stream, int8_t **mem_ptr, uint32_t glwe_dimension,
    uint32_t polynomial_size, uint32_t big_lwe_dimension, uint32_t small_lwe_dimension, uint32_t ks_level,
    uint32_t ks_base_log, uint32_t pbs_level, uint32_t pbs_base_log, uint32_t grouping_factor,
    uint32_t lwe_ciphertext_count, uint32_t message_modulus, uint32_t carry_modulus, uint32_t pbs_type,
    uint32_t op_type, bool allocate_gpu_memory);
void cuda_comparison_integer_radix_ciphertext_kb_64(void *stream, void *lwe_array_out, void *lwe_array_1,
    void *lwe_array_2, int8_t *mem_ptr, void *bsk, void *ksk, uint32_t lwe_ciphertext_count);
void cleanup_cuda_integer_comparison(void *stream, int8_t **mem_ptr);

void scratch_cuda_integer_radix_scalar_shift_kb_64(void *stream, int8_t **mem_ptr, uint32_t glwe_dimension,
    uint32_t polynomial_size, uint32_t big_lwe_dimension, uint32_t small_lwe_dimension, uint32_t ks_level,
    uint32_t ks_base_log, uint32_t pbs_level, uint32_t pbs_base_log, uint32_t grouping_factor,
    uint32_t num_blocks, uint32_t message_modulus, uint32_t carry_modulus, uint32_t pbs_type,
    uint32_t shift_type, bool allocate_gpu_memory);
void cuda_integer_radix_scalar_shift_kb_64_inplace(void *stream, void *lwe_array, uint32_t shift,
    int8_t *mem_ptr, void *bsk, void *ksk, uint32_t num_blocks);
void cleanup_cuda_integer_radix_scalar_shift(void *stream, int8_t **mem_ptr);

void scratch_cuda_integer_radix_cmux_kb_64(void *stream, int8_t **mem_ptr, uint32_t glwe_dimension,
    uint32_t polynomial_size, uint32_t big_lwe_dimension, uint32_t small_lwe_dimension, uint32_t ks_level,
    uint32_t ks_base_log, uint32_t pbs_level, uint32_t pbs_base_log, uint32_t grouping_factor,
    uint32_t lwe_ciphertext_count, uint32_t message_modulus, uint32_t carry_modulus, uint32_t pbs_type,
    bool allocate_gpu_memory);
void cuda_cmux_integer_radix_ciphertext_kb_64(void *stream, void *lwe_array_out, void *lwe_condition,
    void *lwe_array_true, void *lwe_array_false, int8_t *mem_ptr, void *bsk, void *ksk,
    uint32_t lwe_ciphertext_count);
void cleanup_cuda_integer_radix_cmux(void *stream, int8_t **mem_ptr);
*/
import "C"
import (
	"unsafe"

	"github.com/gomlx/tfhecuda/backend"
)

type u32 = C.uint32_t

// cleanupWith runs a native cleanup call, and stores the zeroed handle back in memPtr.
func cleanupWith(op string, memPtr *backend.DevicePtr, cleanup func(buffer **C.int8_t)) error {
	buffer := cBuffer(*memPtr)
	cleanup(&buffer)
	*memPtr = backend.DevicePtr(uintptr(unsafe.Pointer(buffer)))
	return toError(op)
}

// NegateIntegerRadixCiphertext64Inplace implements backend.IntegerKernels.
func (b *Backend) NegateIntegerRadixCiphertext64Inplace(stream backend.StreamHandle, lweArray backend.DevicePtr,
	lweDimension, lweCiphertextCount, messageModulus, carryModulus uint32) error {
	C.cuda_negate_integer_radix_ciphertext_64_inplace(cStream(stream), cPtr(lweArray), u32(lweDimension),
		u32(lweCiphertextCount), u32(messageModulus), u32(carryModulus))
	return toError("cuda_negate_integer_radix_ciphertext_64_inplace")
}

// ScalarAdditionIntegerRadixCiphertext64Inplace implements backend.IntegerKernels.
func (b *Backend) ScalarAdditionIntegerRadixCiphertext64Inplace(stream backend.StreamHandle, lweArray,
	scalarInput backend.DevicePtr, lweDimension, lweCiphertextCount, messageModulus, carryModulus uint32) error {
	C.cuda_scalar_addition_integer_radix_ciphertext_64_inplace(cStream(stream), cPtr(lweArray), cPtr(scalarInput),
		u32(lweDimension), u32(lweCiphertextCount), u32(messageModulus), u32(carryModulus))
	return toError("cuda_scalar_addition_integer_radix_ciphertext_64_inplace")
}

// SmallScalarMultiplicationIntegerRadixCiphertext64 implements backend.IntegerKernels.
func (b *Backend) SmallScalarMultiplicationIntegerRadixCiphertext64(stream backend.StreamHandle, outputLweArray,
	inputLweArray backend.DevicePtr, scalar uint64, lweDimension, lweCiphertextCount uint32) error {
	C.cuda_small_scalar_multiplication_integer_radix_ciphertext_64(cStream(stream), cPtr(outputLweArray),
		cPtr(inputLweArray), C.uint64_t(scalar), u32(lweDimension), u32(lweCiphertextCount))
	return toError("cuda_small_scalar_multiplication_integer_radix_ciphertext_64")
}

// SmallScalarMultiplicationIntegerRadixCiphertext64Inplace implements backend.IntegerKernels.
func (b *Backend) SmallScalarMultiplicationIntegerRadixCiphertext64Inplace(stream backend.StreamHandle,
	lweArray backend.DevicePtr, scalar uint64, lweDimension, lweCiphertextCount uint32) error {
	C.cuda_small_scalar_multiplication_integer_radix_ciphertext_64_inplace(cStream(stream), cPtr(lweArray),
		C.uint64_t(scalar), u32(lweDimension), u32(lweCiphertextCount))
	return toError("cuda_small_scalar_multiplication_integer_radix_ciphertext_64_inplace")
}

// ScratchFullPropagation64 implements backend.IntegerPBSKernels.
func (b *Backend) ScratchFullPropagation64(stream backend.StreamHandle, lweDimension, glweDimension,
	polynomialSize, levelCount, groupingFactor, inputLweCiphertextCount, messageModulus, carryModulus uint32,
	pbsType backend.PBSType, allocateGPUMemory bool) (backend.DevicePtr, error) {
	var buffer *C.int8_t
	C.scratch_cuda_full_propagation_64(cStream(stream), &buffer, u32(lweDimension), u32(glweDimension),
		u32(polynomialSize), u32(levelCount), u32(groupingFactor), u32(inputLweCiphertextCount),
		u32(messageModulus), u32(carryModulus), u32(pbsType), C.bool(allocateGPUMemory))
	return scratchResult("scratch_cuda_full_propagation_64", buffer)
}

// FullPropagation64Inplace implements backend.IntegerPBSKernels.
func (b *Backend) FullPropagation64Inplace(stream backend.StreamHandle, inputBlocks, memPtr, ksk,
	bsk backend.DevicePtr, lweDimension, glweDimension, polynomialSize, ksBaseLog, ksLevel, pbsBaseLog, pbsLevel,
	groupingFactor, numBlocks uint32) error {
	C.cuda_full_propagation_64_inplace(cStream(stream), cPtr(inputBlocks), cBuffer(memPtr), cPtr(ksk), cPtr(bsk),
		u32(lweDimension), u32(glweDimension), u32(polynomialSize), u32(ksBaseLog), u32(ksLevel), u32(pbsBaseLog),
		u32(pbsLevel), u32(groupingFactor), u32(numBlocks))
	return toError("cuda_full_propagation_64_inplace")
}

// CleanupFullPropagation implements backend.IntegerPBSKernels.
func (b *Backend) CleanupFullPropagation(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return cleanupWith("cleanup_cuda_full_propagation", memPtr, func(buffer **C.int8_t) {
		C.cleanup_cuda_full_propagation(cStream(stream), buffer)
	})
}

// ScratchIntegerMultRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (b *Backend) ScratchIntegerMultRadixCiphertextKB64(stream backend.StreamHandle, messageModulus,
	carryModulus, glweDimension, lweDimension, polynomialSize, pbsBaseLog, pbsLevel, ksBaseLog, ksLevel,
	groupingFactor, numBlocks uint32, pbsType backend.PBSType, maxSharedMemory uint32,
	allocateGPUMemory bool) (backend.DevicePtr, error) {
	var buffer *C.int8_t
	C.scratch_cuda_integer_mult_radix_ciphertext_kb_64(cStream(stream), &buffer, u32(messageModulus),
		u32(carryModulus), u32(glweDimension), u32(lweDimension), u32(polynomialSize), u32(pbsBaseLog),
		u32(pbsLevel), u32(ksBaseLog), u32(ksLevel), u32(groupingFactor), u32(numBlocks), u32(pbsType),
		u32(maxSharedMemory), C.bool(allocateGPUMemory))
	return scratchResult("scratch_cuda_integer_mult_radix_ciphertext_kb_64", buffer)
}

// IntegerMultRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (b *Backend) IntegerMultRadixCiphertextKB64(stream backend.StreamHandle, radixLweOut, radixLweLeft,
	radixLweRight, bsk, ksk, memPtr backend.DevicePtr, messageModulus, carryModulus, glweDimension, lweDimension,
	polynomialSize, pbsBaseLog, pbsLevel, ksBaseLog, ksLevel, groupingFactor, numBlocks uint32,
	pbsType backend.PBSType, maxSharedMemory uint32) error {
	C.cuda_integer_mult_radix_ciphertext_kb_64(cStream(stream), cPtr(radixLweOut), cPtr(radixLweLeft),
		cPtr(radixLweRight), cPtr(bsk), cPtr(ksk), cBuffer(memPtr), u32(messageModulus), u32(carryModulus),
		u32(glweDimension), u32(lweDimension), u32(polynomialSize), u32(pbsBaseLog), u32(pbsLevel), u32(ksBaseLog),
		u32(ksLevel), u32(groupingFactor), u32(numBlocks), u32(pbsType), u32(maxSharedMemory))
	return toError("cuda_integer_mult_radix_ciphertext_kb_64")
}

// CleanupIntegerMult implements backend.IntegerPBSKernels.
func (b *Backend) CleanupIntegerMult(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return cleanupWith("cleanup_cuda_integer_mult", memPtr, func(buffer **C.int8_t) {
		C.cleanup_cuda_integer_mult(cStream(stream), buffer)
	})
}

// ScratchIntegerRadixBitopKB64 implements backend.IntegerPBSKernels.
func (b *Backend) ScratchIntegerRadixBitopKB64(stream backend.StreamHandle, glweDimension, polynomialSize,
	bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor,
	lweCiphertextCount, messageModulus, carryModulus uint32, pbsType backend.PBSType, opType backend.BitOpType,
	allocateGPUMemory bool) (backend.DevicePtr, error) {
	var buffer *C.int8_t
	C.scratch_cuda_integer_radix_bitop_kb_64(cStream(stream), &buffer, u32(glweDimension), u32(polynomialSize),
		u32(bigLweDimension), u32(smallLweDimension), u32(ksLevel), u32(ksBaseLog), u32(pbsLevel), u32(pbsBaseLog),
		u32(groupingFactor), u32(lweCiphertextCount), u32(messageModulus), u32(carryModulus), u32(pbsType),
		u32(opType), C.bool(allocateGPUMemory))
	return scratchResult("scratch_cuda_integer_radix_bitop_kb_64", buffer)
}

// BitopIntegerRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (b *Backend) BitopIntegerRadixCiphertextKB64(stream backend.StreamHandle, lweArrayOut, lweArray1, lweArray2,
	memPtr, bsk, ksk backend.DevicePtr, lweCiphertextCount uint32) error {
	C.cuda_bitop_integer_radix_ciphertext_kb_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweArray1),
		cPtr(lweArray2), cBuffer(memPtr), cPtr(bsk), cPtr(ksk), u32(lweCiphertextCount))
	return toError("cuda_bitop_integer_radix_ciphertext_kb_64")
}

// BitnotIntegerRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (b *Backend) BitnotIntegerRadixCiphertextKB64(stream backend.StreamHandle, lweArrayOut, lweArrayIn, memPtr,
	bsk, ksk backend.DevicePtr, lweCiphertextCount uint32) error {
	C.cuda_bitnot_integer_radix_ciphertext_kb_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweArrayIn),
		cBuffer(memPtr), cPtr(bsk), cPtr(ksk), u32(lweCiphertextCount))
	return toError("cuda_bitnot_integer_radix_ciphertext_kb_64")
}

// CleanupIntegerBitop implements backend.IntegerPBSKernels.
func (b *Backend) CleanupIntegerBitop(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return cleanupWith("cleanup_cuda_integer_bitop", memPtr, func(buffer **C.int8_t) {
		C.cleanup_cuda_integer_bitop(cStream(stream), buffer)
	})
}

// ScratchIntegerRadixComparisonKB64 implements backend.IntegerPBSKernels.
func (b *Backend) ScratchIntegerRadixComparisonKB64(stream backend.StreamHandle, glweDimension, polynomialSize,
	bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor,
	lweCiphertextCount, messageModulus, carryModulus uint32, pbsType backend.PBSType,
	opType backend.ComparisonType, allocateGPUMemory bool) (backend.DevicePtr, error) {
	var buffer *C.int8_t
	C.scratch_cuda_integer_radix_comparison_kb_64(cStream(stream), &buffer, u32(glweDimension),
		u32(polynomialSize), u32(bigLweDimension), u32(smallLweDimension), u32(ksLevel), u32(ksBaseLog),
		u32(pbsLevel), u32(pbsBaseLog), u32(groupingFactor), u32(lweCiphertextCount), u32(messageModulus),
		u32(carryModulus), u32(pbsType), u32(opType), C.bool(allocateGPUMemory))
	return scratchResult("scratch_cuda_integer_radix_comparison_kb_64", buffer)
}

// ComparisonIntegerRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (b *Backend) ComparisonIntegerRadixCiphertextKB64(stream backend.StreamHandle, lweArrayOut, lweArray1,
	lweArray2, memPtr, bsk, ksk backend.DevicePtr, lweCiphertextCount uint32) error {
	C.cuda_comparison_integer_radix_ciphertext_kb_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweArray1),
		cPtr(lweArray2), cBuffer(memPtr), cPtr(bsk), cPtr(ksk), u32(lweCiphertextCount))
	return toError("cuda_comparison_integer_radix_ciphertext_kb_64")
}

// CleanupIntegerComparison implements backend.IntegerPBSKernels.
func (b *Backend) CleanupIntegerComparison(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return cleanupWith("cleanup_cuda_integer_comparison", memPtr, func(buffer **C.int8_t) {
		C.cleanup_cuda_integer_comparison(cStream(stream), buffer)
	})
}

// ScratchIntegerRadixScalarShiftKB64 implements backend.IntegerPBSKernels.
func (b *Backend) ScratchIntegerRadixScalarShiftKB64(stream backend.StreamHandle, glweDimension, polynomialSize,
	bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, numBlocks,
	messageModulus, carryModulus uint32, pbsType backend.PBSType, shiftType backend.ShiftType,
	allocateGPUMemory bool) (backend.DevicePtr, error) {
	var buffer *C.int8_t
	C.scratch_cuda_integer_radix_scalar_shift_kb_64(cStream(stream), &buffer, u32(glweDimension),
		u32(polynomialSize), u32(bigLweDimension), u32(smallLweDimension), u32(ksLevel), u32(ksBaseLog),
		u32(pbsLevel), u32(pbsBaseLog), u32(groupingFactor), u32(numBlocks), u32(messageModulus),
		u32(carryModulus), u32(pbsType), u32(shiftType), C.bool(allocateGPUMemory))
	return scratchResult("scratch_cuda_integer_radix_scalar_shift_kb_64", buffer)
}

// IntegerRadixScalarShiftKB64Inplace implements backend.IntegerPBSKernels.
func (b *Backend) IntegerRadixScalarShiftKB64Inplace(stream backend.StreamHandle, lweArray backend.DevicePtr,
	shift uint32, memPtr, bsk, ksk backend.DevicePtr, numBlocks uint32) error {
	C.cuda_integer_radix_scalar_shift_kb_64_inplace(cStream(stream), cPtr(lweArray), u32(shift), cBuffer(memPtr),
		cPtr(bsk), cPtr(ksk), u32(numBlocks))
	return toError("cuda_integer_radix_scalar_shift_kb_64_inplace")
}

// CleanupIntegerRadixScalarShift implements backend.IntegerPBSKernels.
func (b *Backend) CleanupIntegerRadixScalarShift(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return cleanupWith("cleanup_cuda_integer_radix_scalar_shift", memPtr, func(buffer **C.int8_t) {
		C.cleanup_cuda_integer_radix_scalar_shift(cStream(stream), buffer)
	})
}

// ScratchIntegerRadixCmuxKB64 implements backend.IntegerPBSKernels.
func (b *Backend) ScratchIntegerRadixCmuxKB64(stream backend.StreamHandle, glweDimension, polynomialSize,
	bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor,
	lweCiphertextCount, messageModulus, carryModulus uint32, pbsType backend.PBSType,
	allocateGPUMemory bool) (backend.DevicePtr, error) {
	var buffer *C.int8_t
	C.scratch_cuda_integer_radix_cmux_kb_64(cStream(stream), &buffer, u32(glweDimension), u32(polynomialSize),
		u32(bigLweDimension), u32(smallLweDimension), u32(ksLevel), u32(ksBaseLog), u32(pbsLevel), u32(pbsBaseLog),
		u32(groupingFactor), u32(lweCiphertextCount), u32(messageModulus), u32(carryModulus), u32(pbsType),
		C.bool(allocateGPUMemory))
	return scratchResult("scratch_cuda_integer_radix_cmux_kb_64", buffer)
}

// CmuxIntegerRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (b *Backend) CmuxIntegerRadixCiphertextKB64(stream backend.StreamHandle, lweArrayOut, lweCondition,
	lweArrayTrue, lweArrayFalse, memPtr, bsk, ksk backend.DevicePtr, lweCiphertextCount uint32) error {
	C.cuda_cmux_integer_radix_ciphertext_kb_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweCondition),
		cPtr(lweArrayTrue), cPtr(lweArrayFalse), cBuffer(memPtr), cPtr(bsk), cPtr(ksk), u32(lweCiphertextCount))
	return toError("cuda_cmux_integer_radix_ciphertext_kb_64")
}

// CleanupIntegerRadixCmux implements backend.IntegerPBSKernels.
func (b *Backend) CleanupIntegerRadixCmux(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return cleanupWith("cleanup_cuda_integer_radix_cmux", memPtr, func(buffer **C.int8_t) {
		C.cleanup_cuda_integer_radix_cmux(cStream(stream), buffer)
	})
}
