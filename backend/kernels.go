package backend

import "unsafe"

// BootstrapKernels are the programmable bootstrap entry points, low-latency and multi-bit.
//
// Each one follows a three-phase protocol: the Scratch call returns an opaque working buffer sized for the
// given batch configuration, the run call uses it, and the Cleanup call releases it and zeroes the handle.
type BootstrapKernels interface {
	ScratchBootstrapLowLatency64(stream StreamHandle, glweDimension, polynomialSize, levelCount,
		inputLweCiphertextCount, maxSharedMemory uint32, allocateGPUMemory bool) (DevicePtr, error)

	BootstrapLowLatencyLweCiphertextVector64(stream StreamHandle,
		lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
		bootstrappingKey, pbsBuffer DevicePtr,
		lweDimension, glweDimension, polynomialSize, baseLog, levelCount,
		numSamples, numLutVectors, lweIdx, maxSharedMemory uint32) error

	CleanupBootstrapLowLatency(stream StreamHandle, pbsBuffer *DevicePtr) error

	ScratchMultiBitPBS64(stream StreamHandle, lweDimension, glweDimension, polynomialSize, levelCount,
		groupingFactor, inputLweCiphertextCount, maxSharedMemory uint32, allocateGPUMemory bool,
		lweChunkSize uint32) (DevicePtr, error)

	MultiBitPBSLweCiphertextVector64(stream StreamHandle,
		lweArrayOut, lweOutputIndexes, lutVector, lutVectorIndexes, lweArrayIn, lweInputIndexes,
		bootstrappingKey, pbsBuffer DevicePtr,
		lweDimension, glweDimension, polynomialSize, groupingFactor, baseLog, levelCount,
		numSamples, numLutVectors, lweIdx, maxSharedMemory, lweChunkSize uint32) error

	CleanupMultiBitPBS(stream StreamHandle, pbsBuffer *DevicePtr) error
}

// KeyswitchKernels holds the LWE key-switch entry point.
type KeyswitchKernels interface {
	KeyswitchLweCiphertextVector64(stream StreamHandle,
		lweArrayOut, lweOutputIndexes, lweArrayIn, lweInputIndexes, ksk DevicePtr,
		lweDimensionIn, lweDimensionOut, baseLog, levelCount, numSamples uint32) error
}

// KeyConversionKernels convert host-resident bootstrapping keys into the device layout the kernels expect.
type KeyConversionKernels interface {
	ConvertLweBootstrapKey64(dest DevicePtr, src unsafe.Pointer, stream StreamHandle,
		inputLweDim, glweDim, levelCount, polynomialSize uint32) error

	ConvertLweMultiBitBootstrapKey64(dest DevicePtr, src unsafe.Pointer, stream StreamHandle,
		inputLweDim, glweDim, levelCount, polynomialSize, groupingFactor uint32) error
}

// LinearKernels are the elementwise operations over batches of LWE ciphertexts.
//
// The output may alias the first input of each operation: the "assign" forms of the dispatch layer rely on it.
type LinearKernels interface {
	AddLweCiphertextVector64(stream StreamHandle, lweArrayOut, lweArrayIn1, lweArrayIn2 DevicePtr,
		inputLweDimension, inputLweCiphertextCount uint32) error

	AddLweCiphertextVectorPlaintextVector64(stream StreamHandle, lweArrayOut, lweArrayIn, plaintextArrayIn DevicePtr,
		inputLweDimension, inputLweCiphertextCount uint32) error

	NegateLweCiphertextVector64(stream StreamHandle, lweArrayOut, lweArrayIn DevicePtr,
		inputLweDimension, inputLweCiphertextCount uint32) error

	MultLweCiphertextVectorCleartextVector64(stream StreamHandle, lweArrayOut, lweArrayIn, cleartextArrayIn DevicePtr,
		inputLweDimension, inputLweCiphertextCount uint32) error
}

// IntegerKernels are the radix integer entry points that don't need a bootstrap.
type IntegerKernels interface {
	NegateIntegerRadixCiphertext64Inplace(stream StreamHandle, lweArray DevicePtr,
		lweDimension, lweCiphertextCount, messageModulus, carryModulus uint32) error

	ScalarAdditionIntegerRadixCiphertext64Inplace(stream StreamHandle, lweArray, scalarInput DevicePtr,
		lweDimension, lweCiphertextCount, messageModulus, carryModulus uint32) error

	SmallScalarMultiplicationIntegerRadixCiphertext64(stream StreamHandle, outputLweArray, inputLweArray DevicePtr,
		scalar uint64, lweDimension, lweCiphertextCount uint32) error

	SmallScalarMultiplicationIntegerRadixCiphertext64Inplace(stream StreamHandle, lweArray DevicePtr,
		scalar uint64, lweDimension, lweCiphertextCount uint32) error
}

// IntegerPBSKernels are the radix integer entry points built on bootstraps. They follow the same three-phase
// protocol as BootstrapKernels.
type IntegerPBSKernels interface {
	ScratchFullPropagation64(stream StreamHandle, lweDimension, glweDimension, polynomialSize, levelCount,
		groupingFactor, inputLweCiphertextCount, messageModulus, carryModulus uint32, pbsType PBSType,
		allocateGPUMemory bool) (DevicePtr, error)

	FullPropagation64Inplace(stream StreamHandle, inputBlocks, memPtr, ksk, bsk DevicePtr,
		lweDimension, glweDimension, polynomialSize, ksBaseLog, ksLevel, pbsBaseLog, pbsLevel,
		groupingFactor, numBlocks uint32) error

	CleanupFullPropagation(stream StreamHandle, memPtr *DevicePtr) error

	ScratchIntegerMultRadixCiphertextKB64(stream StreamHandle, messageModulus, carryModulus, glweDimension,
		lweDimension, polynomialSize, pbsBaseLog, pbsLevel, ksBaseLog, ksLevel, groupingFactor, numBlocks uint32,
		pbsType PBSType, maxSharedMemory uint32, allocateGPUMemory bool) (DevicePtr, error)

	IntegerMultRadixCiphertextKB64(stream StreamHandle, radixLweOut, radixLweLeft, radixLweRight, bsk, ksk,
		memPtr DevicePtr, messageModulus, carryModulus, glweDimension, lweDimension, polynomialSize,
		pbsBaseLog, pbsLevel, ksBaseLog, ksLevel, groupingFactor, numBlocks uint32, pbsType PBSType,
		maxSharedMemory uint32) error

	CleanupIntegerMult(stream StreamHandle, memPtr *DevicePtr) error

	ScratchIntegerRadixBitopKB64(stream StreamHandle, glweDimension, polynomialSize, bigLweDimension,
		smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, lweCiphertextCount,
		messageModulus, carryModulus uint32, pbsType PBSType, opType BitOpType,
		allocateGPUMemory bool) (DevicePtr, error)

	BitopIntegerRadixCiphertextKB64(stream StreamHandle, lweArrayOut, lweArray1, lweArray2, memPtr, bsk,
		ksk DevicePtr, lweCiphertextCount uint32) error

	BitnotIntegerRadixCiphertextKB64(stream StreamHandle, lweArrayOut, lweArrayIn, memPtr, bsk, ksk DevicePtr,
		lweCiphertextCount uint32) error

	CleanupIntegerBitop(stream StreamHandle, memPtr *DevicePtr) error

	ScratchIntegerRadixComparisonKB64(stream StreamHandle, glweDimension, polynomialSize, bigLweDimension,
		smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, lweCiphertextCount,
		messageModulus, carryModulus uint32, pbsType PBSType, opType ComparisonType,
		allocateGPUMemory bool) (DevicePtr, error)

	ComparisonIntegerRadixCiphertextKB64(stream StreamHandle, lweArrayOut, lweArray1, lweArray2, memPtr, bsk,
		ksk DevicePtr, lweCiphertextCount uint32) error

	CleanupIntegerComparison(stream StreamHandle, memPtr *DevicePtr) error

	ScratchIntegerRadixScalarShiftKB64(stream StreamHandle, glweDimension, polynomialSize, bigLweDimension,
		smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, numBlocks,
		messageModulus, carryModulus uint32, pbsType PBSType, shiftType ShiftType,
		allocateGPUMemory bool) (DevicePtr, error)

	IntegerRadixScalarShiftKB64Inplace(stream StreamHandle, lweArray DevicePtr, shift uint32, memPtr, bsk,
		ksk DevicePtr, numBlocks uint32) error

	CleanupIntegerRadixScalarShift(stream StreamHandle, memPtr *DevicePtr) error

	ScratchIntegerRadixCmuxKB64(stream StreamHandle, glweDimension, polynomialSize, bigLweDimension,
		smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, lweCiphertextCount,
		messageModulus, carryModulus uint32, pbsType PBSType, allocateGPUMemory bool) (DevicePtr, error)

	CmuxIntegerRadixCiphertextKB64(stream StreamHandle, lweArrayOut, lweCondition, lweArrayTrue,
		lweArrayFalse, memPtr, bsk, ksk DevicePtr, lweCiphertextCount uint32) error

	CleanupIntegerRadixCmux(stream StreamHandle, memPtr *DevicePtr) error
}
