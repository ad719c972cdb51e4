package cuda

import (
	"github.com/gomlx/tfhecuda/backend"
	"github.com/gomlx/tfhecuda/params"
)

// RadixParams are the parameters of radix integers: numbers split in blocks of MessageModulus values, each block
// encrypted in its own LWE ciphertext under the big key.
type RadixParams struct {
	// BigLweDimension of the blocks, the output dimension of the bootstraps (glweDimension * polynomialSize).
	BigLweDimension params.LweDimension
	// SmallLweDimension is the output dimension of the key-switch, and the input one of the bootstraps.
	SmallLweDimension params.LweDimension
	GlweDimension     params.GlweDimension
	PolynomialSize    params.PolynomialSize
	KsBaseLog         params.DecompositionBaseLog
	KsLevel           params.DecompositionLevelCount
	PbsBaseLog        params.DecompositionBaseLog
	PbsLevel          params.DecompositionLevelCount
	GroupingFactor    params.LweBskGroupingFactor
	MessageModulus    params.MessageModulus
	CarryModulus      params.CarryModulus
	PBSType           backend.PBSType
}

// blocksLen is the number of torus elements of numBlocks blocks.
func (p RadixParams) blocksLen(numBlocks params.LweCiphertextCount) uint64 {
	return uint64(numBlocks) * uint64(p.BigLweDimension.ToLweSize())
}

// bootstrapKeyBytes is the size of the bootstrapping key of the PBS type.
func (p RadixParams) bootstrapKeyBytes() uint64 {
	if p.PBSType == backend.PBSTypeMultiBit {
		return 8 * lweMultiBitBootstrapKeyLen(p.SmallLweDimension, p.GlweDimension, p.PbsLevel, p.PolynomialSize,
			p.GroupingFactor)
	}
	return 8 * lweBootstrapKeyLen(p.SmallLweDimension, p.GlweDimension, p.PbsLevel, p.PolynomialSize)
}

// BootstrapKey is a bootstrapping key on the device: a *Vec[float64] for the low-latency and amortized
// bootstraps, a *Vec[uint64] for the multi-bit one.
type BootstrapKey interface {
	Addr() backend.DevicePtr
	SizeBytes() uint64
}

// checkRadixKeys panics unless the keys are large enough for the parameters.
func checkRadixKeys[T UnsignedInteger](op string, p RadixParams, bsk BootstrapKey, ksk *Vec[T]) {
	assertf(bsk != nil, "%s: bootstrapping key is nil", op)
	assertf(bsk.SizeBytes() >= p.bootstrapKeyBytes(), "%s: bootstrapping key of %d bytes, at least %d are required",
		op, bsk.SizeBytes(), p.bootstrapKeyBytes())
	hasLen(op, "key-switching key", ksk, lweKeyswitchKeyLen(p.BigLweDimension, p.SmallLweDimension, p.KsLevel))
}

func integerKernels[T UnsignedInteger](s *Stream, op string) backend.IntegerKernels {
	torus64[T](op)
	return kernelsOf[backend.IntegerKernels](s.activeBackend(op), "integer kernels")
}

func integerPBSKernels[T UnsignedInteger](s *Stream, op string) backend.IntegerPBSKernels {
	torus64[T](op)
	return kernelsOf[backend.IntegerPBSKernels](s.activeBackend(op), "integer bootstrap kernels")
}

// NegateIntegerRadixAssignAsync negates the radix integer of numBlocks blocks in place.
func NegateIntegerRadixAssignAsync[T UnsignedInteger](s *Stream, blocks *Vec[T], p RadixParams,
	numBlocks params.LweCiphertextCount) {
	const op = "NegateIntegerRadixAssignAsync"
	k := integerKernels[T](s, op)
	hasLen(op, "blocks", blocks, p.blocksLen(numBlocks))
	check(k.NegateIntegerRadixCiphertext64Inplace(s.wrapper.handle, blocks.MutAddr(), p.BigLweDimension.U32(),
		numBlocks.U32(), p.MessageModulus.U32(), p.CarryModulus.U32()), "%s of %d blocks", op, numBlocks)
}

// ScalarAddIntegerRadixAssignAsync adds a clear integer to the radix integer in place. digits holds one digit
// (in base MessageModulus) of the clear integer per block, least significant first.
func ScalarAddIntegerRadixAssignAsync[T UnsignedInteger](s *Stream, blocks, digits *Vec[T], p RadixParams,
	numBlocks params.LweCiphertextCount) {
	const op = "ScalarAddIntegerRadixAssignAsync"
	k := integerKernels[T](s, op)
	hasLen(op, "blocks", blocks, p.blocksLen(numBlocks))
	hasLen(op, "digits", digits, uint64(numBlocks))
	check(k.ScalarAdditionIntegerRadixCiphertext64Inplace(s.wrapper.handle, blocks.MutAddr(), digits.Addr(),
		p.BigLweDimension.U32(), numBlocks.U32(), p.MessageModulus.U32(), p.CarryModulus.U32()),
		"%s of %d blocks", op, numBlocks)
}

// SmallScalarMulIntegerRadixAsync sets output to the radix integer in multiplied by scalar, block by block. The
// carries are not propagated, see FullPropagationAssignAsync.
func SmallScalarMulIntegerRadixAsync[T UnsignedInteger](s *Stream, output, in *Vec[T], scalar uint64,
	p RadixParams, numBlocks params.LweCiphertextCount) {
	const op = "SmallScalarMulIntegerRadixAsync"
	k := integerKernels[T](s, op)
	hasLen(op, "output", output, p.blocksLen(numBlocks))
	hasLen(op, "input", in, p.blocksLen(numBlocks))
	check(k.SmallScalarMultiplicationIntegerRadixCiphertext64(s.wrapper.handle, output.MutAddr(), in.Addr(), scalar,
		p.BigLweDimension.U32(), numBlocks.U32()), "%s of %d blocks", op, numBlocks)
}

// SmallScalarMulIntegerRadixAssignAsync multiplies the radix integer by scalar in place, block by block.
func SmallScalarMulIntegerRadixAssignAsync[T UnsignedInteger](s *Stream, blocks *Vec[T], scalar uint64,
	p RadixParams, numBlocks params.LweCiphertextCount) {
	const op = "SmallScalarMulIntegerRadixAssignAsync"
	k := integerKernels[T](s, op)
	hasLen(op, "blocks", blocks, p.blocksLen(numBlocks))
	check(k.SmallScalarMultiplicationIntegerRadixCiphertext64Inplace(s.wrapper.handle, blocks.MutAddr(), scalar,
		p.BigLweDimension.U32(), numBlocks.U32()), "%s of %d blocks", op, numBlocks)
}

// FullPropagationAssignAsync propagates the carries of all the blocks of the radix integer, in place.
func FullPropagationAssignAsync[T UnsignedInteger](s *Stream, blocks *Vec[T], bsk BootstrapKey, ksk *Vec[T],
	p RadixParams, numBlocks params.LweCiphertextCount) {
	const op = "FullPropagationAssignAsync"
	k := integerPBSKernels[T](s, op)
	hasLen(op, "blocks", blocks, p.blocksLen(numBlocks))
	checkRadixKeys(op, p, bsk, ksk)
	sc := newScratch(s, op, func(stream backend.StreamHandle) (backend.DevicePtr, error) {
		return k.ScratchFullPropagation64(stream, p.SmallLweDimension.U32(), p.GlweDimension.U32(),
			p.PolynomialSize.U32(), p.PbsLevel.U32(), p.GroupingFactor.U32(), numBlocks.U32(),
			p.MessageModulus.U32(), p.CarryModulus.U32(), p.PBSType, true)
	}, k.CleanupFullPropagation)
	defer releaseOnExit(sc)
	check(k.FullPropagation64Inplace(s.wrapper.handle, blocks.MutAddr(), sc.buffer, ksk.Addr(), bsk.Addr(),
		p.SmallLweDimension.U32(), p.GlweDimension.U32(), p.PolynomialSize.U32(), p.KsBaseLog.U32(), p.KsLevel.U32(),
		p.PbsBaseLog.U32(), p.PbsLevel.U32(), p.GroupingFactor.U32(), numBlocks.U32()),
		"%s of %d blocks", op, numBlocks)
}

// MulIntegerRadixAsync sets output to the product of the radix integers left and right, with carries propagated.
func MulIntegerRadixAsync[T UnsignedInteger](s *Stream, output, left, right *Vec[T], bsk BootstrapKey,
	ksk *Vec[T], p RadixParams, numBlocks params.LweCiphertextCount) {
	const op = "MulIntegerRadixAsync"
	k := integerPBSKernels[T](s, op)
	n := p.blocksLen(numBlocks)
	hasLen(op, "output", output, n)
	hasLen(op, "left", left, n)
	hasLen(op, "right", right, n)
	checkRadixKeys(op, p, bsk, ksk)
	maxSharedMemory := uint32(s.wrapper.device.MaxSharedMemory())
	sc := newScratch(s, op, func(stream backend.StreamHandle) (backend.DevicePtr, error) {
		return k.ScratchIntegerMultRadixCiphertextKB64(stream, p.MessageModulus.U32(), p.CarryModulus.U32(),
			p.GlweDimension.U32(), p.SmallLweDimension.U32(), p.PolynomialSize.U32(), p.PbsBaseLog.U32(),
			p.PbsLevel.U32(), p.KsBaseLog.U32(), p.KsLevel.U32(), p.GroupingFactor.U32(), numBlocks.U32(),
			p.PBSType, maxSharedMemory, true)
	}, k.CleanupIntegerMult)
	defer releaseOnExit(sc)
	check(k.IntegerMultRadixCiphertextKB64(s.wrapper.handle, output.MutAddr(), left.Addr(), right.Addr(),
		bsk.Addr(), ksk.Addr(), sc.buffer, p.MessageModulus.U32(), p.CarryModulus.U32(), p.GlweDimension.U32(),
		p.SmallLweDimension.U32(), p.PolynomialSize.U32(), p.PbsBaseLog.U32(), p.PbsLevel.U32(), p.KsBaseLog.U32(),
		p.KsLevel.U32(), p.GroupingFactor.U32(), numBlocks.U32(), p.PBSType, maxSharedMemory),
		"%s of %d blocks", op, numBlocks)
}

// bitopScratch runs the scratch phase of the bitwise kernels.
func bitopScratch(s *Stream, op string, k backend.IntegerPBSKernels, bitop backend.BitOpType, p RadixParams,
	numBlocks params.LweCiphertextCount) *scratch {
	return newScratch(s, op, func(stream backend.StreamHandle) (backend.DevicePtr, error) {
		return k.ScratchIntegerRadixBitopKB64(stream, p.GlweDimension.U32(), p.PolynomialSize.U32(),
			p.BigLweDimension.U32(), p.SmallLweDimension.U32(), p.KsLevel.U32(), p.KsBaseLog.U32(), p.PbsLevel.U32(),
			p.PbsBaseLog.U32(), p.GroupingFactor.U32(), numBlocks.U32(), p.MessageModulus.U32(),
			p.CarryModulus.U32(), p.PBSType, bitop, true)
	}, k.CleanupIntegerBitop)
}

// BitopIntegerRadixAsync sets output to the bitwise operation bitop (BitAnd, BitOr or BitXor) of the radix
// integers in1 and in2.
func BitopIntegerRadixAsync[T UnsignedInteger](s *Stream, output, in1, in2 *Vec[T], bitop backend.BitOpType,
	bsk BootstrapKey, ksk *Vec[T], p RadixParams, numBlocks params.LweCiphertextCount) {
	const op = "BitopIntegerRadixAsync"
	k := integerPBSKernels[T](s, op)
	assertf(bitop == backend.BitAnd || bitop == backend.BitOr || bitop == backend.BitXor,
		"%s: %s is not a bitwise operation of two radix integers", op, bitop)
	n := p.blocksLen(numBlocks)
	hasLen(op, "output", output, n)
	hasLen(op, "first input", in1, n)
	hasLen(op, "second input", in2, n)
	checkRadixKeys(op, p, bsk, ksk)
	sc := bitopScratch(s, op, k, bitop, p, numBlocks)
	defer releaseOnExit(sc)
	check(k.BitopIntegerRadixCiphertextKB64(s.wrapper.handle, output.MutAddr(), in1.Addr(), in2.Addr(), sc.buffer,
		bsk.Addr(), ksk.Addr(), numBlocks.U32()), "%s(%s) of %d blocks", op, bitop, numBlocks)
}

// BitnotIntegerRadixAsync sets output to the bitwise negation of the radix integer in.
func BitnotIntegerRadixAsync[T UnsignedInteger](s *Stream, output, in *Vec[T], bsk BootstrapKey, ksk *Vec[T],
	p RadixParams, numBlocks params.LweCiphertextCount) {
	const op = "BitnotIntegerRadixAsync"
	k := integerPBSKernels[T](s, op)
	n := p.blocksLen(numBlocks)
	hasLen(op, "output", output, n)
	hasLen(op, "input", in, n)
	checkRadixKeys(op, p, bsk, ksk)
	sc := bitopScratch(s, op, k, backend.BitNot, p, numBlocks)
	defer releaseOnExit(sc)
	check(k.BitnotIntegerRadixCiphertextKB64(s.wrapper.handle, output.MutAddr(), in.Addr(), sc.buffer, bsk.Addr(),
		ksk.Addr(), numBlocks.U32()), "%s of %d blocks", op, numBlocks)
}

// CompareIntegerRadixAsync sets output to the comparison cmp of the radix integers in1 and in2. For
// ComparisonMax and ComparisonMin output is a radix integer, for the other comparisons its first block holds the
// boolean result. output must hold numBlocks blocks in both cases.
func CompareIntegerRadixAsync[T UnsignedInteger](s *Stream, output, in1, in2 *Vec[T], cmp backend.ComparisonType,
	bsk BootstrapKey, ksk *Vec[T], p RadixParams, numBlocks params.LweCiphertextCount) {
	const op = "CompareIntegerRadixAsync"
	k := integerPBSKernels[T](s, op)
	n := p.blocksLen(numBlocks)
	hasLen(op, "output", output, n)
	hasLen(op, "first input", in1, n)
	hasLen(op, "second input", in2, n)
	checkRadixKeys(op, p, bsk, ksk)
	sc := newScratch(s, op, func(stream backend.StreamHandle) (backend.DevicePtr, error) {
		return k.ScratchIntegerRadixComparisonKB64(stream, p.GlweDimension.U32(), p.PolynomialSize.U32(),
			p.BigLweDimension.U32(), p.SmallLweDimension.U32(), p.KsLevel.U32(), p.KsBaseLog.U32(), p.PbsLevel.U32(),
			p.PbsBaseLog.U32(), p.GroupingFactor.U32(), numBlocks.U32(), p.MessageModulus.U32(),
			p.CarryModulus.U32(), p.PBSType, cmp, true)
	}, k.CleanupIntegerComparison)
	defer releaseOnExit(sc)
	check(k.ComparisonIntegerRadixCiphertextKB64(s.wrapper.handle, output.MutAddr(), in1.Addr(), in2.Addr(),
		sc.buffer, bsk.Addr(), ksk.Addr(), numBlocks.U32()), "%s(%s) of %d blocks", op, cmp, numBlocks)
}

// ScalarShiftIntegerRadixAssignAsync shifts the radix integer by shift bits in the given direction, in place.
func ScalarShiftIntegerRadixAssignAsync[T UnsignedInteger](s *Stream, blocks *Vec[T], shift uint32,
	direction backend.ShiftType, bsk BootstrapKey, ksk *Vec[T], p RadixParams,
	numBlocks params.LweCiphertextCount) {
	const op = "ScalarShiftIntegerRadixAssignAsync"
	k := integerPBSKernels[T](s, op)
	hasLen(op, "blocks", blocks, p.blocksLen(numBlocks))
	checkRadixKeys(op, p, bsk, ksk)
	sc := newScratch(s, op, func(stream backend.StreamHandle) (backend.DevicePtr, error) {
		return k.ScratchIntegerRadixScalarShiftKB64(stream, p.GlweDimension.U32(), p.PolynomialSize.U32(),
			p.BigLweDimension.U32(), p.SmallLweDimension.U32(), p.KsLevel.U32(), p.KsBaseLog.U32(), p.PbsLevel.U32(),
			p.PbsBaseLog.U32(), p.GroupingFactor.U32(), numBlocks.U32(), p.MessageModulus.U32(),
			p.CarryModulus.U32(), p.PBSType, direction, true)
	}, k.CleanupIntegerRadixScalarShift)
	defer releaseOnExit(sc)
	check(k.IntegerRadixScalarShiftKB64Inplace(s.wrapper.handle, blocks.MutAddr(), shift, sc.buffer, bsk.Addr(),
		ksk.Addr(), numBlocks.U32()), "%s(%s by %d) of %d blocks", op, direction, shift, numBlocks)
}

// CmuxIntegerRadixAsync sets output to ifTrue if the encrypted boolean condition (a single block) is true, and
// to ifFalse otherwise.
func CmuxIntegerRadixAsync[T UnsignedInteger](s *Stream, output, condition, ifTrue, ifFalse *Vec[T],
	bsk BootstrapKey, ksk *Vec[T], p RadixParams, numBlocks params.LweCiphertextCount) {
	const op = "CmuxIntegerRadixAsync"
	k := integerPBSKernels[T](s, op)
	n := p.blocksLen(numBlocks)
	hasLen(op, "output", output, n)
	hasLen(op, "condition", condition, p.blocksLen(1))
	hasLen(op, "true branch", ifTrue, n)
	hasLen(op, "false branch", ifFalse, n)
	checkRadixKeys(op, p, bsk, ksk)
	sc := newScratch(s, op, func(stream backend.StreamHandle) (backend.DevicePtr, error) {
		return k.ScratchIntegerRadixCmuxKB64(stream, p.GlweDimension.U32(), p.PolynomialSize.U32(),
			p.BigLweDimension.U32(), p.SmallLweDimension.U32(), p.KsLevel.U32(), p.KsBaseLog.U32(), p.PbsLevel.U32(),
			p.PbsBaseLog.U32(), p.GroupingFactor.U32(), numBlocks.U32(), p.MessageModulus.U32(),
			p.CarryModulus.U32(), p.PBSType, true)
	}, k.CleanupIntegerRadixCmux)
	defer releaseOnExit(sc)
	check(k.CmuxIntegerRadixCiphertextKB64(s.wrapper.handle, output.MutAddr(), condition.Addr(), ifTrue.Addr(),
		ifFalse.Addr(), sc.buffer, bsk.Addr(), ksk.Addr(), numBlocks.U32()), "%s of %d blocks", op, numBlocks)
}
