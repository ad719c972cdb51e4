package backendtest

import (
	"github.com/gomlx/tfhecuda/backend"
)

func (r *Recorder) integerPBSKernels() (backend.IntegerPBSKernels, bool) {
	k, ok := r.inner.(backend.IntegerPBSKernels)
	return k, ok
}

// cleanup logs and forwards (or fakes) one of the integer cleanup calls.
func (r *Recorder) cleanup(name string, stream backend.StreamHandle, memPtr *backend.DevicePtr,
	forward func(k backend.IntegerPBSKernels) error) error {
	if err := r.record(name, stream, *memPtr); err != nil {
		return err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return forward(k)
	}
	return r.fakeCleanup(memPtr)
}

// ScratchFullPropagation64 implements backend.IntegerPBSKernels.
func (r *Recorder) ScratchFullPropagation64(stream backend.StreamHandle, lweDimension, glweDimension,
	polynomialSize, levelCount, groupingFactor, inputLweCiphertextCount, messageModulus, carryModulus uint32,
	pbsType backend.PBSType, allocateGPUMemory bool) (backend.DevicePtr, error) {
	if err := r.record("ScratchFullPropagation64", stream, lweDimension, glweDimension, polynomialSize, levelCount,
		groupingFactor, inputLweCiphertextCount, messageModulus, carryModulus, pbsType,
		allocateGPUMemory); err != nil {
		return 0, err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.ScratchFullPropagation64(stream, lweDimension, glweDimension, polynomialSize, levelCount,
			groupingFactor, inputLweCiphertextCount, messageModulus, carryModulus, pbsType, allocateGPUMemory)
	}
	return r.fakeScratch(stream, allocateGPUMemory)
}

// FullPropagation64Inplace implements backend.IntegerPBSKernels.
func (r *Recorder) FullPropagation64Inplace(stream backend.StreamHandle, inputBlocks, memPtr, ksk,
	bsk backend.DevicePtr, lweDimension, glweDimension, polynomialSize, ksBaseLog, ksLevel, pbsBaseLog, pbsLevel,
	groupingFactor, numBlocks uint32) error {
	if err := r.record("FullPropagation64Inplace", stream, inputBlocks, memPtr, ksk, bsk, lweDimension,
		glweDimension, polynomialSize, ksBaseLog, ksLevel, pbsBaseLog, pbsLevel, groupingFactor,
		numBlocks); err != nil {
		return err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.FullPropagation64Inplace(stream, inputBlocks, memPtr, ksk, bsk, lweDimension, glweDimension,
			polynomialSize, ksBaseLog, ksLevel, pbsBaseLog, pbsLevel, groupingFactor, numBlocks)
	}
	return nil
}

// CleanupFullPropagation implements backend.IntegerPBSKernels.
func (r *Recorder) CleanupFullPropagation(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return r.cleanup("CleanupFullPropagation", stream, memPtr, func(k backend.IntegerPBSKernels) error {
		return k.CleanupFullPropagation(stream, memPtr)
	})
}

// ScratchIntegerMultRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) ScratchIntegerMultRadixCiphertextKB64(stream backend.StreamHandle, messageModulus,
	carryModulus, glweDimension, lweDimension, polynomialSize, pbsBaseLog, pbsLevel, ksBaseLog, ksLevel,
	groupingFactor, numBlocks uint32, pbsType backend.PBSType, maxSharedMemory uint32,
	allocateGPUMemory bool) (backend.DevicePtr, error) {
	if err := r.record("ScratchIntegerMultRadixCiphertextKB64", stream, messageModulus, carryModulus,
		glweDimension, lweDimension, polynomialSize, pbsBaseLog, pbsLevel, ksBaseLog, ksLevel, groupingFactor,
		numBlocks, pbsType, maxSharedMemory, allocateGPUMemory); err != nil {
		return 0, err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.ScratchIntegerMultRadixCiphertextKB64(stream, messageModulus, carryModulus, glweDimension,
			lweDimension, polynomialSize, pbsBaseLog, pbsLevel, ksBaseLog, ksLevel, groupingFactor, numBlocks,
			pbsType, maxSharedMemory, allocateGPUMemory)
	}
	return r.fakeScratch(stream, allocateGPUMemory)
}

// IntegerMultRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) IntegerMultRadixCiphertextKB64(stream backend.StreamHandle, radixLweOut, radixLweLeft,
	radixLweRight, bsk, ksk, memPtr backend.DevicePtr, messageModulus, carryModulus, glweDimension, lweDimension,
	polynomialSize, pbsBaseLog, pbsLevel, ksBaseLog, ksLevel, groupingFactor, numBlocks uint32,
	pbsType backend.PBSType, maxSharedMemory uint32) error {
	if err := r.record("IntegerMultRadixCiphertextKB64", stream, radixLweOut, radixLweLeft, radixLweRight, bsk,
		ksk, memPtr, messageModulus, carryModulus, glweDimension, lweDimension, polynomialSize, pbsBaseLog,
		pbsLevel, ksBaseLog, ksLevel, groupingFactor, numBlocks, pbsType, maxSharedMemory); err != nil {
		return err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.IntegerMultRadixCiphertextKB64(stream, radixLweOut, radixLweLeft, radixLweRight, bsk, ksk, memPtr,
			messageModulus, carryModulus, glweDimension, lweDimension, polynomialSize, pbsBaseLog, pbsLevel,
			ksBaseLog, ksLevel, groupingFactor, numBlocks, pbsType, maxSharedMemory)
	}
	return nil
}

// CleanupIntegerMult implements backend.IntegerPBSKernels.
func (r *Recorder) CleanupIntegerMult(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return r.cleanup("CleanupIntegerMult", stream, memPtr, func(k backend.IntegerPBSKernels) error {
		return k.CleanupIntegerMult(stream, memPtr)
	})
}

// ScratchIntegerRadixBitopKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) ScratchIntegerRadixBitopKB64(stream backend.StreamHandle, glweDimension, polynomialSize,
	bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor,
	lweCiphertextCount, messageModulus, carryModulus uint32, pbsType backend.PBSType, opType backend.BitOpType,
	allocateGPUMemory bool) (backend.DevicePtr, error) {
	if err := r.record("ScratchIntegerRadixBitopKB64", stream, glweDimension, polynomialSize, bigLweDimension,
		smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, lweCiphertextCount,
		messageModulus, carryModulus, pbsType, opType, allocateGPUMemory); err != nil {
		return 0, err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.ScratchIntegerRadixBitopKB64(stream, glweDimension, polynomialSize, bigLweDimension,
			smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, lweCiphertextCount,
			messageModulus, carryModulus, pbsType, opType, allocateGPUMemory)
	}
	return r.fakeScratch(stream, allocateGPUMemory)
}

// BitopIntegerRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) BitopIntegerRadixCiphertextKB64(stream backend.StreamHandle, lweArrayOut, lweArray1, lweArray2,
	memPtr, bsk, ksk backend.DevicePtr, lweCiphertextCount uint32) error {
	if err := r.record("BitopIntegerRadixCiphertextKB64", stream, lweArrayOut, lweArray1, lweArray2, memPtr, bsk,
		ksk, lweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.BitopIntegerRadixCiphertextKB64(stream, lweArrayOut, lweArray1, lweArray2, memPtr, bsk, ksk,
			lweCiphertextCount)
	}
	return nil
}

// BitnotIntegerRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) BitnotIntegerRadixCiphertextKB64(stream backend.StreamHandle, lweArrayOut, lweArrayIn, memPtr,
	bsk, ksk backend.DevicePtr, lweCiphertextCount uint32) error {
	if err := r.record("BitnotIntegerRadixCiphertextKB64", stream, lweArrayOut, lweArrayIn, memPtr, bsk, ksk,
		lweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.BitnotIntegerRadixCiphertextKB64(stream, lweArrayOut, lweArrayIn, memPtr, bsk, ksk,
			lweCiphertextCount)
	}
	return nil
}

// CleanupIntegerBitop implements backend.IntegerPBSKernels.
func (r *Recorder) CleanupIntegerBitop(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return r.cleanup("CleanupIntegerBitop", stream, memPtr, func(k backend.IntegerPBSKernels) error {
		return k.CleanupIntegerBitop(stream, memPtr)
	})
}

// ScratchIntegerRadixComparisonKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) ScratchIntegerRadixComparisonKB64(stream backend.StreamHandle, glweDimension, polynomialSize,
	bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor,
	lweCiphertextCount, messageModulus, carryModulus uint32, pbsType backend.PBSType,
	opType backend.ComparisonType, allocateGPUMemory bool) (backend.DevicePtr, error) {
	if err := r.record("ScratchIntegerRadixComparisonKB64", stream, glweDimension, polynomialSize,
		bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor,
		lweCiphertextCount, messageModulus, carryModulus, pbsType, opType, allocateGPUMemory); err != nil {
		return 0, err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.ScratchIntegerRadixComparisonKB64(stream, glweDimension, polynomialSize, bigLweDimension,
			smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, lweCiphertextCount,
			messageModulus, carryModulus, pbsType, opType, allocateGPUMemory)
	}
	return r.fakeScratch(stream, allocateGPUMemory)
}

// ComparisonIntegerRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) ComparisonIntegerRadixCiphertextKB64(stream backend.StreamHandle, lweArrayOut, lweArray1,
	lweArray2, memPtr, bsk, ksk backend.DevicePtr, lweCiphertextCount uint32) error {
	if err := r.record("ComparisonIntegerRadixCiphertextKB64", stream, lweArrayOut, lweArray1, lweArray2, memPtr,
		bsk, ksk, lweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.ComparisonIntegerRadixCiphertextKB64(stream, lweArrayOut, lweArray1, lweArray2, memPtr, bsk, ksk,
			lweCiphertextCount)
	}
	return nil
}

// CleanupIntegerComparison implements backend.IntegerPBSKernels.
func (r *Recorder) CleanupIntegerComparison(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return r.cleanup("CleanupIntegerComparison", stream, memPtr, func(k backend.IntegerPBSKernels) error {
		return k.CleanupIntegerComparison(stream, memPtr)
	})
}

// ScratchIntegerRadixScalarShiftKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) ScratchIntegerRadixScalarShiftKB64(stream backend.StreamHandle, glweDimension, polynomialSize,
	bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, numBlocks,
	messageModulus, carryModulus uint32, pbsType backend.PBSType, shiftType backend.ShiftType,
	allocateGPUMemory bool) (backend.DevicePtr, error) {
	if err := r.record("ScratchIntegerRadixScalarShiftKB64", stream, glweDimension, polynomialSize,
		bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, numBlocks,
		messageModulus, carryModulus, pbsType, shiftType, allocateGPUMemory); err != nil {
		return 0, err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.ScratchIntegerRadixScalarShiftKB64(stream, glweDimension, polynomialSize, bigLweDimension,
			smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, numBlocks,
			messageModulus, carryModulus, pbsType, shiftType, allocateGPUMemory)
	}
	return r.fakeScratch(stream, allocateGPUMemory)
}

// IntegerRadixScalarShiftKB64Inplace implements backend.IntegerPBSKernels.
func (r *Recorder) IntegerRadixScalarShiftKB64Inplace(stream backend.StreamHandle, lweArray backend.DevicePtr,
	shift uint32, memPtr, bsk, ksk backend.DevicePtr, numBlocks uint32) error {
	if err := r.record("IntegerRadixScalarShiftKB64Inplace", stream, lweArray, shift, memPtr, bsk, ksk,
		numBlocks); err != nil {
		return err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.IntegerRadixScalarShiftKB64Inplace(stream, lweArray, shift, memPtr, bsk, ksk, numBlocks)
	}
	return nil
}

// CleanupIntegerRadixScalarShift implements backend.IntegerPBSKernels.
func (r *Recorder) CleanupIntegerRadixScalarShift(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return r.cleanup("CleanupIntegerRadixScalarShift", stream, memPtr, func(k backend.IntegerPBSKernels) error {
		return k.CleanupIntegerRadixScalarShift(stream, memPtr)
	})
}

// ScratchIntegerRadixCmuxKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) ScratchIntegerRadixCmuxKB64(stream backend.StreamHandle, glweDimension, polynomialSize,
	bigLweDimension, smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor,
	lweCiphertextCount, messageModulus, carryModulus uint32, pbsType backend.PBSType,
	allocateGPUMemory bool) (backend.DevicePtr, error) {
	if err := r.record("ScratchIntegerRadixCmuxKB64", stream, glweDimension, polynomialSize, bigLweDimension,
		smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, lweCiphertextCount,
		messageModulus, carryModulus, pbsType, allocateGPUMemory); err != nil {
		return 0, err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.ScratchIntegerRadixCmuxKB64(stream, glweDimension, polynomialSize, bigLweDimension,
			smallLweDimension, ksLevel, ksBaseLog, pbsLevel, pbsBaseLog, groupingFactor, lweCiphertextCount,
			messageModulus, carryModulus, pbsType, allocateGPUMemory)
	}
	return r.fakeScratch(stream, allocateGPUMemory)
}

// CmuxIntegerRadixCiphertextKB64 implements backend.IntegerPBSKernels.
func (r *Recorder) CmuxIntegerRadixCiphertextKB64(stream backend.StreamHandle, lweArrayOut, lweCondition,
	lweArrayTrue, lweArrayFalse, memPtr, bsk, ksk backend.DevicePtr, lweCiphertextCount uint32) error {
	if err := r.record("CmuxIntegerRadixCiphertextKB64", stream, lweArrayOut, lweCondition, lweArrayTrue,
		lweArrayFalse, memPtr, bsk, ksk, lweCiphertextCount); err != nil {
		return err
	}
	if k, ok := r.integerPBSKernels(); ok {
		return k.CmuxIntegerRadixCiphertextKB64(stream, lweArrayOut, lweCondition, lweArrayTrue, lweArrayFalse,
			memPtr, bsk, ksk, lweCiphertextCount)
	}
	return nil
}

// CleanupIntegerRadixCmux implements backend.IntegerPBSKernels.
func (r *Recorder) CleanupIntegerRadixCmux(stream backend.StreamHandle, memPtr *backend.DevicePtr) error {
	return r.cleanup("CleanupIntegerRadixCmux", stream, memPtr, func(k backend.IntegerPBSKernels) error {
		return k.CleanupIntegerRadixCmux(stream, memPtr)
	})
}
