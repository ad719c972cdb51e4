package cuda

import (
	"github.com/gomlx/tfhecuda/backend"
	"github.com/gomlx/tfhecuda/params"
)

// lweBootstrapKeyLen is the number of torus elements of a standard bootstrapping key: one GGSW ciphertext per
// input LWE key element.
func lweBootstrapKeyLen(inputLweDim params.LweDimension, glweDim params.GlweDimension,
	level params.DecompositionLevelCount, polySize params.PolynomialSize) uint64 {
	glweSize := uint64(glweDim.ToGlweSize())
	return uint64(inputLweDim) * glweSize * glweSize * uint64(level) * uint64(polySize)
}

// lweMultiBitBootstrapKeyLen is the number of torus elements of a multi-bit bootstrapping key: 2^g GGSW
// ciphertexts per group of g input LWE key elements.
func lweMultiBitBootstrapKeyLen(inputLweDim params.LweDimension, glweDim params.GlweDimension,
	level params.DecompositionLevelCount, polySize params.PolynomialSize,
	groupingFactor params.LweBskGroupingFactor) uint64 {
	if groupingFactor == 0 {
		return 0
	}
	groups := params.LweDimension(uint32(inputLweDim) / uint32(groupingFactor))
	return lweBootstrapKeyLen(groups, glweDim, level, polySize) * uint64(groupingFactor.GgswPerMultiBitElement())
}

// lweKeyswitchKeyLen is the number of torus elements of a key-switching key.
func lweKeyswitchKeyLen(inputLweDim, outputLweDim params.LweDimension, level params.DecompositionLevelCount) uint64 {
	return uint64(inputLweDim) * uint64(level) * uint64(outputLweDim.ToLweSize())
}

// KeyswitchAsync switches numSamples LWE ciphertexts of inputLweDim, addressed by inputIndexes in input, to
// outputLweDim, writing them to the positions outputIndexes of output. ksk is the key-switching key on the device,
// see ConvertLweKeyswitchKeyAsync.
func KeyswitchAsync[T UnsignedInteger](s *Stream, output, outputIndexes, input, inputIndexes *Vec[T],
	inputLweDim, outputLweDim params.LweDimension, ksk *Vec[T], baseLog params.DecompositionBaseLog,
	level params.DecompositionLevelCount, numSamples params.LweCiphertextCount) {
	const op = "KeyswitchAsync"
	torus64[T](op)
	k := kernelsOf[backend.KeyswitchKernels](s.activeBackend(op), "key-switch kernels")
	n := uint64(numSamples)
	hasLen(op, "output", output, n*uint64(outputLweDim.ToLweSize()))
	hasLen(op, "output indexes", outputIndexes, n)
	hasLen(op, "input", input, n*uint64(inputLweDim.ToLweSize()))
	hasLen(op, "input indexes", inputIndexes, n)
	hasLen(op, "key-switching key", ksk, lweKeyswitchKeyLen(inputLweDim, outputLweDim, level))
	check(k.KeyswitchLweCiphertextVector64(s.wrapper.handle, output.MutAddr(), outputIndexes.Addr(), input.Addr(),
		inputIndexes.Addr(), ksk.Addr(), inputLweDim.U32(), outputLweDim.U32(), baseLog.U32(), level.U32(),
		numSamples.U32()), "%s of %d samples", op, numSamples)
}

// ConvertLweKeyswitchKeyAsync copies the key-switching key src to dest: the kernels use the standard layout.
// dest must have exactly the size of src.
func ConvertLweKeyswitchKeyAsync[T UnsignedInteger](s *Stream, dest *Vec[T], src []T) {
	const op = "ConvertLweKeyswitchKeyAsync"
	torus64[T](op)
	assertf(dest.Len() == len(src), "%s: %s doesn't match the key of %d elements", op, dest, len(src))
	CopyToGPUAsync(s, dest, src)
}

// checkKeySizes panics unless dest and src have exactly the same size in bytes, and src the expected length.
func checkKeySizes[T UnsignedInteger, D dtypes64](op string, dest *Vec[D], src []T, expectedLen uint64) {
	torus64[T](op)
	srcBytes := uint64(len(src)) * uint64(sizeOf[T]())
	assertf(dest.SizeBytes() == srcBytes, "%s: destination of %d bytes for a key of %d bytes", op,
		dest.SizeBytes(), srcBytes)
	assertf(uint64(len(src)) == expectedLen, "%s: key of %d elements, the parameters require %d", op, len(src),
		expectedLen)
}

// dtypes64 are the element types of converted bootstrapping keys.
type dtypes64 interface {
	uint64 | float64
}

// ConvertLweBootstrapKeyAsync converts the standard bootstrapping key src into the layout of the low-latency
// bootstrap kernel, in dest. dest must have exactly the size of src. src must not be modified until the stream
// is synchronized.
func ConvertLweBootstrapKeyAsync[T UnsignedInteger](s *Stream, dest *Vec[float64], src []T,
	inputLweDim params.LweDimension, glweDim params.GlweDimension, level params.DecompositionLevelCount,
	polySize params.PolynomialSize) {
	const op = "ConvertLweBootstrapKeyAsync"
	k := kernelsOf[backend.KeyConversionKernels](s.activeBackend(op), "key conversion kernels")
	checkKeySizes(op, dest, src, lweBootstrapKeyLen(inputLweDim, glweDim, level, polySize))
	check(k.ConvertLweBootstrapKey64(dest.MutAddr(), hostPointer(s, src), s.wrapper.handle, inputLweDim.U32(),
		glweDim.U32(), level.U32(), polySize.U32()), "%s into %s", op, dest)
}

// ConvertLweMultiBitBootstrapKeyAsync converts the multi-bit bootstrapping key src into the layout of the
// multi-bit bootstrap kernel, in dest. dest must have exactly the size of src. src must not be modified until the
// stream is synchronized.
func ConvertLweMultiBitBootstrapKeyAsync[T UnsignedInteger](s *Stream, dest *Vec[uint64], src []T,
	inputLweDim params.LweDimension, glweDim params.GlweDimension, level params.DecompositionLevelCount,
	polySize params.PolynomialSize, groupingFactor params.LweBskGroupingFactor) {
	const op = "ConvertLweMultiBitBootstrapKeyAsync"
	k := kernelsOf[backend.KeyConversionKernels](s.activeBackend(op), "key conversion kernels")
	checkKeySizes(op, dest, src, lweMultiBitBootstrapKeyLen(inputLweDim, glweDim, level, polySize, groupingFactor))
	check(k.ConvertLweMultiBitBootstrapKey64(dest.MutAddr(), hostPointer(s, src), s.wrapper.handle,
		inputLweDim.U32(), glweDim.U32(), level.U32(), polySize.U32(), groupingFactor.U32()), "%s into %s", op, dest)
}
