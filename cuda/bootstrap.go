package cuda

import (
	"fmt"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/gomlx/tfhecuda/params"
)

// PBSParams are the parameters of a programmable bootstrap.
type PBSParams struct {
	// LweDimension of the input ciphertexts (the small LWE dimension).
	LweDimension   params.LweDimension
	GlweDimension  params.GlweDimension
	PolynomialSize params.PolynomialSize
	BaseLog        params.DecompositionBaseLog
	Level          params.DecompositionLevelCount

	// GroupingFactor is only used by the multi-bit bootstrap.
	GroupingFactor params.LweBskGroupingFactor
}

// OutputLweDimension is the dimension of the bootstrapped ciphertexts: glweDimension * polynomialSize.
func (p PBSParams) OutputLweDimension() params.LweDimension {
	return p.GlweDimension.ToEquivalentLweDimension(p.PolynomialSize)
}

// lutSize is the number of torus elements of one lookup table, a GLWE ciphertext.
func (p PBSParams) lutSize() uint64 {
	return uint64(p.GlweDimension.ToGlweSize()) * uint64(p.PolynomialSize)
}

// BootstrapBatch holds the buffers of one bootstrap launch.
//
// Index vectors address the ciphertexts (and lookup tables) inside their buffers: the ciphertext at logical
// position i of the batch is the one at physical position Indexes[i].
type BootstrapBatch[T UnsignedInteger] struct {
	Output, OutputIndexes *Vec[T]
	LUT, LUTIndexes       *Vec[T]
	Input, InputIndexes   *Vec[T]

	NumSamples params.LweCiphertextCount
	LweIdx     params.LweCiphertextIndex
}

// validate panics if any buffer is too small for the batch.
func (batch *BootstrapBatch[T]) validate(op string, p PBSParams) {
	torus64[T](op)
	n := uint64(batch.NumSamples)
	hasLen(op, "output", batch.Output, n*uint64(p.OutputLweDimension().ToLweSize()))
	hasLen(op, "output indexes", batch.OutputIndexes, n)
	hasLen(op, "lookup tables", batch.LUT, p.lutSize())
	hasLen(op, "lookup table indexes", batch.LUTIndexes, n)
	hasLen(op, "input", batch.Input, n*uint64(p.LweDimension.ToLweSize()))
	hasLen(op, "input indexes", batch.InputIndexes, n)
}

type pbsVariant int

const (
	lowLatencyPBS pbsVariant = iota
	multiBitPBS
)

func (v pbsVariant) String() string {
	if v == multiBitPBS {
		return "multi-bit bootstrap"
	}
	return "low-latency bootstrap"
}

// BootstrapScratch is the working memory of a bootstrap kernel, sized for a batch configuration.
//
// It can be reused for any batch with the same parameters and at most NumSamples() ciphertexts, on the stream it
// was created on. Release it when done.
type BootstrapScratch struct {
	*scratch
	variant    pbsVariant
	params     PBSParams
	numSamples params.LweCiphertextCount
}

// ScratchBootstrapLowLatency allocates the working memory of the low-latency bootstrap for batches of up to
// numSamples ciphertexts.
func (s *Stream) ScratchBootstrapLowLatency(p PBSParams, numSamples params.LweCiphertextCount) *BootstrapScratch {
	k := kernelsOf[backend.BootstrapKernels](s.activeBackend("ScratchBootstrapLowLatency"), "bootstrap kernels")
	maxSharedMemory := uint32(s.wrapper.device.MaxSharedMemory())
	sc := newScratch(s, lowLatencyPBS.String(),
		func(stream backend.StreamHandle) (backend.DevicePtr, error) {
			return k.ScratchBootstrapLowLatency64(stream, p.GlweDimension.U32(), p.PolynomialSize.U32(),
				p.Level.U32(), numSamples.U32(), maxSharedMemory, true)
		}, k.CleanupBootstrapLowLatency)
	return &BootstrapScratch{scratch: sc, variant: lowLatencyPBS, params: p, numSamples: numSamples}
}

// ScratchBootstrapMultiBit allocates the working memory of the multi-bit bootstrap for batches of up to
// numSamples ciphertexts. The chunk size is left for the backend to choose.
func (s *Stream) ScratchBootstrapMultiBit(p PBSParams, numSamples params.LweCiphertextCount) *BootstrapScratch {
	k := kernelsOf[backend.BootstrapKernels](s.activeBackend("ScratchBootstrapMultiBit"), "bootstrap kernels")
	maxSharedMemory := uint32(s.wrapper.device.MaxSharedMemory())
	sc := newScratch(s, multiBitPBS.String(),
		func(stream backend.StreamHandle) (backend.DevicePtr, error) {
			return k.ScratchMultiBitPBS64(stream, p.LweDimension.U32(), p.GlweDimension.U32(),
				p.PolynomialSize.U32(), p.Level.U32(), p.GroupingFactor.U32(), numSamples.U32(), maxSharedMemory,
				true, 0)
		}, k.CleanupMultiBitPBS)
	return &BootstrapScratch{scratch: sc, variant: multiBitPBS, params: p, numSamples: numSamples}
}

// Params returns the parameters the scratch was sized for.
func (sc *BootstrapScratch) Params() PBSParams { return sc.params }

// NumSamples returns the largest batch the scratch was sized for.
func (sc *BootstrapScratch) NumSamples() params.LweCiphertextCount { return sc.numSamples }

// Release frees the working memory. Further calls are no-ops. It panics if the backend fails to release it.
func (sc *BootstrapScratch) Release() {
	check(sc.release(), "BootstrapScratch.Release")
}

// String implements fmt.Stringer.
func (sc *BootstrapScratch) String() string {
	return fmt.Sprintf("BootstrapScratch(%s, %d samples, released=%v)", sc.variant, sc.numSamples, sc.released)
}

// checkUsable panics unless the scratch can serve batch with the given variant.
func (sc *BootstrapScratch) checkUsable(op string, variant pbsVariant, numSamples params.LweCiphertextCount) {
	assertf(!sc.released, "%s with a released scratch", op)
	assertf(sc.variant == variant, "%s with the scratch of a %s", op, sc.variant)
	assertf(numSamples <= sc.numSamples, "%s of %d samples with a scratch sized for %d", op, numSamples,
		sc.numSamples)
}

// BootstrapLowLatencyWithScratchAsync runs the low-latency bootstrap on the batch, using the working memory of sc.
// bsk is the bootstrapping key converted by ConvertLweBootstrapKeyAsync.
func BootstrapLowLatencyWithScratchAsync[T UnsignedInteger](sc *BootstrapScratch, batch BootstrapBatch[T],
	bsk *Vec[float64]) {
	const op = "BootstrapLowLatencyAsync"
	sc.checkUsable(op, lowLatencyPBS, batch.NumSamples)
	s, p := sc.stream, sc.params
	k := kernelsOf[backend.BootstrapKernels](s.activeBackend(op), "bootstrap kernels")
	batch.validate(op, p)
	hasLen(op, "bootstrapping key", bsk, lweBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize))
	maxSharedMemory := uint32(s.wrapper.device.MaxSharedMemory())
	n := batch.NumSamples.U32()
	check(k.BootstrapLowLatencyLweCiphertextVector64(s.wrapper.handle,
		batch.Output.MutAddr(), batch.OutputIndexes.Addr(), batch.LUT.Addr(), batch.LUTIndexes.Addr(),
		batch.Input.Addr(), batch.InputIndexes.Addr(), bsk.Addr(), sc.buffer,
		p.LweDimension.U32(), p.GlweDimension.U32(), p.PolynomialSize.U32(), p.BaseLog.U32(), p.Level.U32(),
		n, n, batch.LweIdx.U32(), maxSharedMemory), "%s of %d samples", op, n)
}

// BootstrapMultiBitWithScratchAsync runs the multi-bit bootstrap on the batch, using the working memory of sc.
// bsk is the bootstrapping key converted by ConvertLweMultiBitBootstrapKeyAsync.
func BootstrapMultiBitWithScratchAsync[T UnsignedInteger](sc *BootstrapScratch, batch BootstrapBatch[T],
	bsk *Vec[uint64]) {
	const op = "BootstrapMultiBitAsync"
	sc.checkUsable(op, multiBitPBS, batch.NumSamples)
	s, p := sc.stream, sc.params
	k := kernelsOf[backend.BootstrapKernels](s.activeBackend(op), "bootstrap kernels")
	batch.validate(op, p)
	hasLen(op, "bootstrapping key", bsk, lweMultiBitBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize, p.GroupingFactor))
	maxSharedMemory := uint32(s.wrapper.device.MaxSharedMemory())
	n := batch.NumSamples.U32()
	check(k.MultiBitPBSLweCiphertextVector64(s.wrapper.handle,
		batch.Output.MutAddr(), batch.OutputIndexes.Addr(), batch.LUT.Addr(), batch.LUTIndexes.Addr(),
		batch.Input.Addr(), batch.InputIndexes.Addr(), bsk.Addr(), sc.buffer,
		p.LweDimension.U32(), p.GlweDimension.U32(), p.PolynomialSize.U32(), p.GroupingFactor.U32(),
		p.BaseLog.U32(), p.Level.U32(), n, n, batch.LweIdx.U32(), maxSharedMemory, 0), "%s of %d samples", op, n)
}

// BootstrapLowLatencyAsync runs the low-latency bootstrap on the batch, with working memory allocated for this
// call only. Buffers are validated before any native call, and the working memory is released on every exit
// path, panics included.
func BootstrapLowLatencyAsync[T UnsignedInteger](s *Stream, batch BootstrapBatch[T], bsk *Vec[float64],
	p PBSParams) {
	const op = "BootstrapLowLatencyAsync"
	batch.validate(op, p)
	hasLen(op, "bootstrapping key", bsk, lweBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize))
	sc := s.ScratchBootstrapLowLatency(p, batch.NumSamples)
	defer releaseOnExit(sc.scratch)
	BootstrapLowLatencyWithScratchAsync(sc, batch, bsk)
}

// BootstrapMultiBitAsync runs the multi-bit bootstrap on the batch, with working memory allocated for this call
// only. Buffers are validated before any native call, and the working memory is released on every exit path,
// panics included.
func BootstrapMultiBitAsync[T UnsignedInteger](s *Stream, batch BootstrapBatch[T], bsk *Vec[uint64],
	p PBSParams) {
	const op = "BootstrapMultiBitAsync"
	batch.validate(op, p)
	hasLen(op, "bootstrapping key", bsk, lweMultiBitBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize, p.GroupingFactor))
	sc := s.ScratchBootstrapMultiBit(p, batch.NumSamples)
	defer releaseOnExit(sc.scratch)
	BootstrapMultiBitWithScratchAsync(sc, batch, bsk)
}
