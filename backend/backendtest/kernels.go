package backendtest

import (
	"unsafe"

	"github.com/gomlx/tfhecuda/backend"
)

// Bootstrap family.

func (r *Recorder) bootstrapKernels() (backend.BootstrapKernels, bool) {
	k, ok := r.inner.(backend.BootstrapKernels)
	return k, ok
}

// ScratchBootstrapLowLatency64 implements backend.BootstrapKernels.
func (r *Recorder) ScratchBootstrapLowLatency64(stream backend.StreamHandle, glweDimension, polynomialSize,
	levelCount, inputLweCiphertextCount, maxSharedMemory uint32, allocateGPUMemory bool) (backend.DevicePtr, error) {
	if err := r.record("ScratchBootstrapLowLatency64", stream, glweDimension, polynomialSize, levelCount,
		inputLweCiphertextCount, maxSharedMemory, allocateGPUMemory); err != nil {
		return 0, err
	}
	if k, ok := r.bootstrapKernels(); ok {
		return k.ScratchBootstrapLowLatency64(stream, glweDimension, polynomialSize, levelCount,
			inputLweCiphertextCount, maxSharedMemory, allocateGPUMemory)
	}
	return r.fakeScratch(stream, allocateGPUMemory)
}

// BootstrapLowLatencyLweCiphertextVector64 implements backend.BootstrapKernels.
func (r *Recorder) BootstrapLowLatencyLweCiphertextVector64(stream backend.StreamHandle,
	lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
	bootstrappingKey, pbsBuffer backend.DevicePtr,
	lweDimension, glweDimension, polynomialSize, baseLog, levelCount,
	numSamples, numLutVectors, lweIdx, maxSharedMemory uint32) error {
	if err := r.record("BootstrapLowLatencyLweCiphertextVector64", stream,
		lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
		bootstrappingKey, pbsBuffer, lweDimension, glweDimension, polynomialSize, baseLog, levelCount,
		numSamples, numLutVectors, lweIdx, maxSharedMemory); err != nil {
		return err
	}
	if k, ok := r.bootstrapKernels(); ok {
		return k.BootstrapLowLatencyLweCiphertextVector64(stream,
			lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
			bootstrappingKey, pbsBuffer, lweDimension, glweDimension, polynomialSize, baseLog, levelCount,
			numSamples, numLutVectors, lweIdx, maxSharedMemory)
	}
	return nil
}

// CleanupBootstrapLowLatency implements backend.BootstrapKernels.
func (r *Recorder) CleanupBootstrapLowLatency(stream backend.StreamHandle, pbsBuffer *backend.DevicePtr) error {
	if err := r.record("CleanupBootstrapLowLatency", stream, *pbsBuffer); err != nil {
		return err
	}
	if k, ok := r.bootstrapKernels(); ok {
		return k.CleanupBootstrapLowLatency(stream, pbsBuffer)
	}
	return r.fakeCleanup(pbsBuffer)
}

// ScratchMultiBitPBS64 implements backend.BootstrapKernels.
func (r *Recorder) ScratchMultiBitPBS64(stream backend.StreamHandle, lweDimension, glweDimension, polynomialSize,
	levelCount, groupingFactor, inputLweCiphertextCount, maxSharedMemory uint32, allocateGPUMemory bool,
	lweChunkSize uint32) (backend.DevicePtr, error) {
	if err := r.record("ScratchMultiBitPBS64", stream, lweDimension, glweDimension, polynomialSize, levelCount,
		groupingFactor, inputLweCiphertextCount, maxSharedMemory, allocateGPUMemory, lweChunkSize); err != nil {
		return 0, err
	}
	if k, ok := r.bootstrapKernels(); ok {
		return k.ScratchMultiBitPBS64(stream, lweDimension, glweDimension, polynomialSize, levelCount,
			groupingFactor, inputLweCiphertextCount, maxSharedMemory, allocateGPUMemory, lweChunkSize)
	}
	return r.fakeScratch(stream, allocateGPUMemory)
}

// MultiBitPBSLweCiphertextVector64 implements backend.BootstrapKernels.
func (r *Recorder) MultiBitPBSLweCiphertextVector64(stream backend.StreamHandle,
	lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
	bootstrappingKey, pbsBuffer backend.DevicePtr,
	lweDimension, glweDimension, polynomialSize, groupingFactor, baseLog, levelCount,
	numSamples, numLutVectors, lweIdx, maxSharedMemory, lweChunkSize uint32) error {
	if err := r.record("MultiBitPBSLweCiphertextVector64", stream,
		lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
		bootstrappingKey, pbsBuffer, lweDimension, glweDimension, polynomialSize, groupingFactor, baseLog,
		levelCount, numSamples, numLutVectors, lweIdx, maxSharedMemory, lweChunkSize); err != nil {
		return err
	}
	if k, ok := r.bootstrapKernels(); ok {
		return k.MultiBitPBSLweCiphertextVector64(stream,
			lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
			bootstrappingKey, pbsBuffer, lweDimension, glweDimension, polynomialSize, groupingFactor, baseLog,
			levelCount, numSamples, numLutVectors, lweIdx, maxSharedMemory, lweChunkSize)
	}
	return nil
}

// CleanupMultiBitPBS implements backend.BootstrapKernels.
func (r *Recorder) CleanupMultiBitPBS(stream backend.StreamHandle, pbsBuffer *backend.DevicePtr) error {
	if err := r.record("CleanupMultiBitPBS", stream, *pbsBuffer); err != nil {
		return err
	}
	if k, ok := r.bootstrapKernels(); ok {
		return k.CleanupMultiBitPBS(stream, pbsBuffer)
	}
	return r.fakeCleanup(pbsBuffer)
}

// Key-switch family.

// KeyswitchLweCiphertextVector64 implements backend.KeyswitchKernels.
func (r *Recorder) KeyswitchLweCiphertextVector64(stream backend.StreamHandle,
	lweArrayOut, lweOutputIndexes, lweArrayIn, lweInputIndexes, ksk backend.DevicePtr,
	lweDimensionIn, lweDimensionOut, baseLog, levelCount, numSamples uint32) error {
	if err := r.record("KeyswitchLweCiphertextVector64", stream, lweArrayOut, lweOutputIndexes, lweArrayIn,
		lweInputIndexes, ksk, lweDimensionIn, lweDimensionOut, baseLog, levelCount, numSamples); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.KeyswitchKernels); ok {
		return k.KeyswitchLweCiphertextVector64(stream, lweArrayOut, lweOutputIndexes, lweArrayIn,
			lweInputIndexes, ksk, lweDimensionIn, lweDimensionOut, baseLog, levelCount, numSamples)
	}
	return nil
}

// Key conversion family.

// ConvertLweBootstrapKey64 implements backend.KeyConversionKernels.
func (r *Recorder) ConvertLweBootstrapKey64(dest backend.DevicePtr, src unsafe.Pointer, stream backend.StreamHandle,
	inputLweDim, glweDim, levelCount, polynomialSize uint32) error {
	if err := r.record("ConvertLweBootstrapKey64", dest, uintptr(src), stream, inputLweDim, glweDim, levelCount,
		polynomialSize); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.KeyConversionKernels); ok {
		return k.ConvertLweBootstrapKey64(dest, src, stream, inputLweDim, glweDim, levelCount, polynomialSize)
	}
	return nil
}

// ConvertLweMultiBitBootstrapKey64 implements backend.KeyConversionKernels.
func (r *Recorder) ConvertLweMultiBitBootstrapKey64(dest backend.DevicePtr, src unsafe.Pointer,
	stream backend.StreamHandle, inputLweDim, glweDim, levelCount, polynomialSize, groupingFactor uint32) error {
	if err := r.record("ConvertLweMultiBitBootstrapKey64", dest, uintptr(src), stream, inputLweDim, glweDim,
		levelCount, polynomialSize, groupingFactor); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.KeyConversionKernels); ok {
		return k.ConvertLweMultiBitBootstrapKey64(dest, src, stream, inputLweDim, glweDim, levelCount,
			polynomialSize, groupingFactor)
	}
	return nil
}

// Linear family.

// AddLweCiphertextVector64 implements backend.LinearKernels.
func (r *Recorder) AddLweCiphertextVector64(stream backend.StreamHandle, lweArrayOut, lweArrayIn1,
	lweArrayIn2 backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	if err := r.record("AddLweCiphertextVector64", stream, lweArrayOut, lweArrayIn1, lweArrayIn2,
		inputLweDimension, inputLweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.LinearKernels); ok {
		return k.AddLweCiphertextVector64(stream, lweArrayOut, lweArrayIn1, lweArrayIn2, inputLweDimension,
			inputLweCiphertextCount)
	}
	return nil
}

// AddLweCiphertextVectorPlaintextVector64 implements backend.LinearKernels.
func (r *Recorder) AddLweCiphertextVectorPlaintextVector64(stream backend.StreamHandle, lweArrayOut, lweArrayIn,
	plaintextArrayIn backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	if err := r.record("AddLweCiphertextVectorPlaintextVector64", stream, lweArrayOut, lweArrayIn,
		plaintextArrayIn, inputLweDimension, inputLweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.LinearKernels); ok {
		return k.AddLweCiphertextVectorPlaintextVector64(stream, lweArrayOut, lweArrayIn, plaintextArrayIn,
			inputLweDimension, inputLweCiphertextCount)
	}
	return nil
}

// NegateLweCiphertextVector64 implements backend.LinearKernels.
func (r *Recorder) NegateLweCiphertextVector64(stream backend.StreamHandle, lweArrayOut,
	lweArrayIn backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	if err := r.record("NegateLweCiphertextVector64", stream, lweArrayOut, lweArrayIn, inputLweDimension,
		inputLweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.LinearKernels); ok {
		return k.NegateLweCiphertextVector64(stream, lweArrayOut, lweArrayIn, inputLweDimension,
			inputLweCiphertextCount)
	}
	return nil
}

// MultLweCiphertextVectorCleartextVector64 implements backend.LinearKernels.
func (r *Recorder) MultLweCiphertextVectorCleartextVector64(stream backend.StreamHandle, lweArrayOut, lweArrayIn,
	cleartextArrayIn backend.DevicePtr, inputLweDimension, inputLweCiphertextCount uint32) error {
	if err := r.record("MultLweCiphertextVectorCleartextVector64", stream, lweArrayOut, lweArrayIn,
		cleartextArrayIn, inputLweDimension, inputLweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.LinearKernels); ok {
		return k.MultLweCiphertextVectorCleartextVector64(stream, lweArrayOut, lweArrayIn, cleartextArrayIn,
			inputLweDimension, inputLweCiphertextCount)
	}
	return nil
}

// Integer family.

// NegateIntegerRadixCiphertext64Inplace implements backend.IntegerKernels.
func (r *Recorder) NegateIntegerRadixCiphertext64Inplace(stream backend.StreamHandle, lweArray backend.DevicePtr,
	lweDimension, lweCiphertextCount, messageModulus, carryModulus uint32) error {
	if err := r.record("NegateIntegerRadixCiphertext64Inplace", stream, lweArray, lweDimension,
		lweCiphertextCount, messageModulus, carryModulus); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.IntegerKernels); ok {
		return k.NegateIntegerRadixCiphertext64Inplace(stream, lweArray, lweDimension, lweCiphertextCount,
			messageModulus, carryModulus)
	}
	return nil
}

// ScalarAdditionIntegerRadixCiphertext64Inplace implements backend.IntegerKernels.
func (r *Recorder) ScalarAdditionIntegerRadixCiphertext64Inplace(stream backend.StreamHandle, lweArray,
	scalarInput backend.DevicePtr, lweDimension, lweCiphertextCount, messageModulus, carryModulus uint32) error {
	if err := r.record("ScalarAdditionIntegerRadixCiphertext64Inplace", stream, lweArray, scalarInput,
		lweDimension, lweCiphertextCount, messageModulus, carryModulus); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.IntegerKernels); ok {
		return k.ScalarAdditionIntegerRadixCiphertext64Inplace(stream, lweArray, scalarInput, lweDimension,
			lweCiphertextCount, messageModulus, carryModulus)
	}
	return nil
}

// SmallScalarMultiplicationIntegerRadixCiphertext64 implements backend.IntegerKernels.
func (r *Recorder) SmallScalarMultiplicationIntegerRadixCiphertext64(stream backend.StreamHandle, outputLweArray,
	inputLweArray backend.DevicePtr, scalar uint64, lweDimension, lweCiphertextCount uint32) error {
	if err := r.record("SmallScalarMultiplicationIntegerRadixCiphertext64", stream, outputLweArray, inputLweArray,
		scalar, lweDimension, lweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.IntegerKernels); ok {
		return k.SmallScalarMultiplicationIntegerRadixCiphertext64(stream, outputLweArray, inputLweArray, scalar,
			lweDimension, lweCiphertextCount)
	}
	return nil
}

// SmallScalarMultiplicationIntegerRadixCiphertext64Inplace implements backend.IntegerKernels.
func (r *Recorder) SmallScalarMultiplicationIntegerRadixCiphertext64Inplace(stream backend.StreamHandle,
	lweArray backend.DevicePtr, scalar uint64, lweDimension, lweCiphertextCount uint32) error {
	if err := r.record("SmallScalarMultiplicationIntegerRadixCiphertext64Inplace", stream, lweArray, scalar,
		lweDimension, lweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.inner.(backend.IntegerKernels); ok {
		return k.SmallScalarMultiplicationIntegerRadixCiphertext64Inplace(stream, lweArray, scalar, lweDimension,
			lweCiphertextCount)
	}
	return nil
}
