//go:build cgo && cuda

package cudalib

/*
#include <stdbool.h>
#include <stdint.h>

// Programmable bootstrap.
void scratch_cuda_bootstrap_low_latency_64(void *stream, int8_t **pbs_buffer, uint32_t glwe_dimension,
    uint32_t polynomial_size, uint32_t level_count, uint32_t input_lwe_ciphertext_count,
    uint32_t max_shared_memory, bool allocate_gpu_memory);
void cuda_bootstrap_low_latency_lwe_ciphertext_vector_64(void *stream, void *lwe_array_out,
    void *lwe_output_indexes, void *lut_vector, void *lut_vector_indexes, void *lwe_array_in,
    void *lwe_input_indexes, void *bootstrapping_key, int8_t *pbs_buffer, uint32_t lwe_dimension,
    uint32_t glwe_dimension, uint32_t polynomial_size, uint32_t base_log, uint32_t level_count,
    uint32_t num_samples, uint32_t num_lut_vectors, uint32_t lwe_idx, uint32_t max_shared_memory);
void cleanup_cuda_bootstrap_low_latency(void *stream, int8_t **pbs_buffer);

void scratch_cuda_multi_bit_pbs_64(void *stream, int8_t **pbs_buffer, uint32_t lwe_dimension,
    uint32_t glwe_dimension, uint32_t polynomial_size, uint32_t level_count, uint32_t grouping_factor,
    uint32_t input_lwe_ciphertext_count, uint32_t max_shared_memory, bool allocate_gpu_memory,
    uint32_t lwe_chunk_size);
void cuda_multi_bit_pbs_lwe_ciphertext_vector_64(void *stream, void *lwe_array_out,
    void *lwe_output_indexes, void *lut_vector, void *lut_vector_indexes, void *lwe_array_in,
    void *lwe_input_indexes, void *bootstrapping_key, int8_t *pbs_buffer, uint32_t lwe_dimension,
    uint32_t glwe_dimension, uint32_t polynomial_size, uint32_t grouping_factor, uint32_t base_log,
    uint32_t level_count, uint32_t num_samples, uint32_t num_lut_vectors, uint32_t lwe_idx,
    uint32_t max_shared_memory, uint32_t lwe_chunk_size);
void cleanup_cuda_multi_bit_pbs(void *stream, int8_t **pbs_buffer);

// Key-switch.
void cuda_keyswitch_lwe_ciphertext_vector_64(void *stream, void *lwe_array_out, void *lwe_output_indexes,
    void *lwe_array_in, void *lwe_input_indexes, void *ksk, uint32_t lwe_dimension_in,
    uint32_t lwe_dimension_out, uint32_t base_log, uint32_t level_count, uint32_t num_samples);

// Key conversion.
void cuda_convert_lwe_bootstrap_key_64(void *dest, void *src, void *stream, uint32_t input_lwe_dim,
    uint32_t glwe_dim, uint32_t level_count, uint32_t polynomial_size);
void cuda_convert_lwe_multi_bit_bootstrap_key_64(void *dest, void *src, void *stream, uint32_t input_lwe_dim,
    uint32_t glwe_dim, uint32_t level_count, uint32_t polynomial_size, uint32_t grouping_factor);

// Linear algebra.
void cuda_add_lwe_ciphertext_vector_64(void *stream, void *lwe_array_out, void *lwe_array_in_1,
    void *lwe_array_in_2, uint32_t input_lwe_dimension, uint32_t input_lwe_ciphertext_count);
void cuda_add_lwe_ciphertext_vector_plaintext_vector_64(void *stream, void *lwe_array_out, void *lwe_array_in,
    void *plaintext_array_in, uint32_t input_lwe_dimension, uint32_t input_lwe_ciphertext_count);
void cuda_negate_lwe_ciphertext_vector_64(void *stream, void *lwe_array_out, void *lwe_array_in,
    uint32_t input_lwe_dimension, uint32_t input_lwe_ciphertext_count);
void cuda_mult_lwe_ciphertext_vector_cleartext_vector_64(void *stream, void *lwe_array_out,
    void *lwe_array_in, void *cleartext_array_in, uint32_t input_lwe_dimension,
    uint32_t input_lwe_ciphertext_count);
*/
import "C"
import (
	"unsafe"

	"github.com/gomlx/tfhecuda/backend"
)

// scratchResult converts the buffer returned by a native scratch call, and checks for errors.
func scratchResult(op string, buffer *C.int8_t) (backend.DevicePtr, error) {
	if err := toError(op); err != nil {
		return 0, err
	}
	return backend.DevicePtr(uintptr(unsafe.Pointer(buffer))), nil
}

// cBuffer converts a scratch handle to the pointer type of the native calls.
func cBuffer(ptr backend.DevicePtr) *C.int8_t {
	return (*C.int8_t)(cPtr(ptr))
}

// ScratchBootstrapLowLatency64 implements backend.BootstrapKernels.
func (b *Backend) ScratchBootstrapLowLatency64(stream backend.StreamHandle, glweDimension, polynomialSize,
	levelCount, inputLweCiphertextCount, maxSharedMemory uint32, allocateGPUMemory bool) (backend.DevicePtr, error) {
	var buffer *C.int8_t
	C.scratch_cuda_bootstrap_low_latency_64(cStream(stream), &buffer, C.uint32_t(glweDimension),
		C.uint32_t(polynomialSize), C.uint32_t(levelCount), C.uint32_t(inputLweCiphertextCount),
		C.uint32_t(maxSharedMemory), C.bool(allocateGPUMemory))
	return scratchResult("scratch_cuda_bootstrap_low_latency_64", buffer)
}

// BootstrapLowLatencyLweCiphertextVector64 implements backend.BootstrapKernels.
func (b *Backend) BootstrapLowLatencyLweCiphertextVector64(stream backend.StreamHandle,
	lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
	bootstrappingKey, pbsBuffer backend.DevicePtr,
	lweDimension, glweDimension, polynomialSize, baseLog, levelCount,
	numSamples, numLutVectors, lweIdx, maxSharedMemory uint32) error {
	C.cuda_bootstrap_low_latency_lwe_ciphertext_vector_64(cStream(stream), cPtr(lweArrayOut),
		cPtr(lweOutputIndexes), cPtr(lutVector), cPtr(lutVectorIndexes), cPtr(lweArrayIn), cPtr(lweInputIndexes),
		cPtr(bootstrappingKey), cBuffer(pbsBuffer), C.uint32_t(lweDimension), C.uint32_t(glweDimension),
		C.uint32_t(polynomialSize), C.uint32_t(baseLog), C.uint32_t(levelCount), C.uint32_t(numSamples),
		C.uint32_t(numLutVectors), C.uint32_t(lweIdx), C.uint32_t(maxSharedMemory))
	return toError("cuda_bootstrap_low_latency_lwe_ciphertext_vector_64")
}

// CleanupBootstrapLowLatency implements backend.BootstrapKernels.
func (b *Backend) CleanupBootstrapLowLatency(stream backend.StreamHandle, pbsBuffer *backend.DevicePtr) error {
	buffer := cBuffer(*pbsBuffer)
	C.cleanup_cuda_bootstrap_low_latency(cStream(stream), &buffer)
	*pbsBuffer = backend.DevicePtr(uintptr(unsafe.Pointer(buffer)))
	return toError("cleanup_cuda_bootstrap_low_latency")
}

// ScratchMultiBitPBS64 implements backend.BootstrapKernels.
func (b *Backend) ScratchMultiBitPBS64(stream backend.StreamHandle, lweDimension, glweDimension, polynomialSize,
	levelCount, groupingFactor, inputLweCiphertextCount, maxSharedMemory uint32, allocateGPUMemory bool,
	lweChunkSize uint32) (backend.DevicePtr, error) {
	var buffer *C.int8_t
	C.scratch_cuda_multi_bit_pbs_64(cStream(stream), &buffer, C.uint32_t(lweDimension), C.uint32_t(glweDimension),
		C.uint32_t(polynomialSize), C.uint32_t(levelCount), C.uint32_t(groupingFactor),
		C.uint32_t(inputLweCiphertextCount), C.uint32_t(maxSharedMemory), C.bool(allocateGPUMemory),
		C.uint32_t(lweChunkSize))
	return scratchResult("scratch_cuda_multi_bit_pbs_64", buffer)
}

// MultiBitPBSLweCiphertextVector64 implements backend.BootstrapKernels.
func (b *Backend) MultiBitPBSLweCiphertextVector64(stream backend.StreamHandle,
	lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
	bootstrappingKey, pbsBuffer backend.DevicePtr,
	lweDimension, glweDimension, polynomialSize, groupingFactor, baseLog, levelCount,
	numSamples, numLutVectors, lweIdx, maxSharedMemory, lweChunkSize uint32) error {
	C.cuda_multi_bit_pbs_lwe_ciphertext_vector_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweOutputIndexes),
		cPtr(lutVector), cPtr(lutVectorIndexes), cPtr(lweArrayIn), cPtr(lweInputIndexes), cPtr(bootstrappingKey),
		cBuffer(pbsBuffer), C.uint32_t(lweDimension), C.uint32_t(glweDimension), C.uint32_t(polynomialSize),
		C.uint32_t(groupingFactor), C.uint32_t(baseLog), C.uint32_t(levelCount), C.uint32_t(numSamples),
		C.uint32_t(numLutVectors), C.uint32_t(lweIdx), C.uint32_t(maxSharedMemory), C.uint32_t(lweChunkSize))
	return toError("cuda_multi_bit_pbs_lwe_ciphertext_vector_64")
}

// CleanupMultiBitPBS implements backend.BootstrapKernels.
func (b *Backend) CleanupMultiBitPBS(stream backend.StreamHandle, pbsBuffer *backend.DevicePtr) error {
	buffer := cBuffer(*pbsBuffer)
	C.cleanup_cuda_multi_bit_pbs(cStream(stream), &buffer)
	*pbsBuffer = backend.DevicePtr(uintptr(unsafe.Pointer(buffer)))
	return toError("cleanup_cuda_multi_bit_pbs")
}

// KeyswitchLweCiphertextVector64 implements backend.KeyswitchKernels.
func (b *Backend) KeyswitchLweCiphertextVector64(stream backend.StreamHandle,
	lweArrayOut, lweOutputIndexes, lweArrayIn, lweInputIndexes, ksk backend.DevicePtr,
	lweDimensionIn, lweDimensionOut, baseLog, levelCount, numSamples uint32) error {
	C.cuda_keyswitch_lwe_ciphertext_vector_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweOutputIndexes),
		cPtr(lweArrayIn), cPtr(lweInputIndexes), cPtr(ksk), C.uint32_t(lweDimensionIn), C.uint32_t(lweDimensionOut),
		C.uint32_t(baseLog), C.uint32_t(levelCount), C.uint32_t(numSamples))
	return toError("cuda_keyswitch_lwe_ciphertext_vector_64")
}

// ConvertLweBootstrapKey64 implements backend.KeyConversionKernels.
func (b *Backend) ConvertLweBootstrapKey64(dest backend.DevicePtr, src unsafe.Pointer, stream backend.StreamHandle,
	inputLweDim, glweDim, levelCount, polynomialSize uint32) error {
	C.cuda_convert_lwe_bootstrap_key_64(cPtr(dest), src, cStream(stream), C.uint32_t(inputLweDim),
		C.uint32_t(glweDim), C.uint32_t(levelCount), C.uint32_t(polynomialSize))
	return toError("cuda_convert_lwe_bootstrap_key_64")
}

// ConvertLweMultiBitBootstrapKey64 implements backend.KeyConversionKernels.
func (b *Backend) ConvertLweMultiBitBootstrapKey64(dest backend.DevicePtr, src unsafe.Pointer,
	stream backend.StreamHandle, inputLweDim, glweDim, levelCount, polynomialSize, groupingFactor uint32) error {
	C.cuda_convert_lwe_multi_bit_bootstrap_key_64(cPtr(dest), src, cStream(stream), C.uint32_t(inputLweDim),
		C.uint32_t(glweDim), C.uint32_t(levelCount), C.uint32_t(polynomialSize), C.uint32_t(groupingFactor))
	return toError("cuda_convert_lwe_multi_bit_bootstrap_key_64")
}

// AddLweCiphertextVector64 implements backend.LinearKernels.
func (b *Backend) AddLweCiphertextVector64(stream backend.StreamHandle, lweArrayOut, lweArrayIn1,
	lweArrayIn2 backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	C.cuda_add_lwe_ciphertext_vector_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweArrayIn1), cPtr(lweArrayIn2),
		C.uint32_t(inputLweDimension), C.uint32_t(inputLweCiphertextCount))
	return toError("cuda_add_lwe_ciphertext_vector_64")
}

// AddLweCiphertextVectorPlaintextVector64 implements backend.LinearKernels.
func (b *Backend) AddLweCiphertextVectorPlaintextVector64(stream backend.StreamHandle, lweArrayOut, lweArrayIn,
	plaintextArrayIn backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	C.cuda_add_lwe_ciphertext_vector_plaintext_vector_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweArrayIn),
		cPtr(plaintextArrayIn), C.uint32_t(inputLweDimension), C.uint32_t(inputLweCiphertextCount))
	return toError("cuda_add_lwe_ciphertext_vector_plaintext_vector_64")
}

// NegateLweCiphertextVector64 implements backend.LinearKernels.
func (b *Backend) NegateLweCiphertextVector64(stream backend.StreamHandle, lweArrayOut,
	lweArrayIn backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	C.cuda_negate_lwe_ciphertext_vector_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweArrayIn),
		C.uint32_t(inputLweDimension), C.uint32_t(inputLweCiphertextCount))
	return toError("cuda_negate_lwe_ciphertext_vector_64")
}

// MultLweCiphertextVectorCleartextVector64 implements backend.LinearKernels.
func (b *Backend) MultLweCiphertextVectorCleartextVector64(stream backend.StreamHandle, lweArrayOut, lweArrayIn,
	cleartextArrayIn backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	C.cuda_mult_lwe_ciphertext_vector_cleartext_vector_64(cStream(stream), cPtr(lweArrayOut), cPtr(lweArrayIn),
		cPtr(cleartextArrayIn), C.uint32_t(inputLweDimension), C.uint32_t(inputLweCiphertextCount))
	return toError("cuda_mult_lwe_ciphertext_vector_cleartext_vector_64")
}
