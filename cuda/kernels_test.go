package cuda

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gomlx/tfhecuda/backend"
	"github.com/gomlx/tfhecuda/backend/backendtest"
	"github.com/gomlx/tfhecuda/params"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func randomTorus(rng *rand.Rand, n int) []uint64 {
	values := make([]uint64, n)
	for i := range values {
		values[i] = rng.Uint64()
	}
	return values
}

// TestAssignAliasing checks that the Assign forms, which pass the accumulator as both output and input, give the
// same results as the out-of-place forms.
func TestAssignAliasing(t *testing.T) {
	device, _, _ := newTestDevice(t, 1)
	s := newTestStream(t, device)
	rng := rand.New(rand.NewPCG(42, 7))
	const lweDim = params.LweDimension(5)

	for _, count := range []params.LweCiphertextCount{1, 2, 1000} {
		n := int(count) * lweDim.ToLweSize()
		acc := VecFromHost(s, randomTorus(rng, n))
		accCopy := MallocAsync[uint64](s, uint32(n))
		in := VecFromHost(s, randomTorus(rng, n))
		perCiphertext := VecFromHost(s, randomTorus(rng, int(count)))
		out := MallocAsync[uint64](s, uint32(n))

		type testCase struct {
			name       string
			outOfPlace func()
			assign     func()
		}
		cases := []testCase{
			{"add",
				func() { AddLweCiphertextVectorAsync(s, out, accCopy, in, lweDim, count) },
				func() { AddLweCiphertextVectorAssignAsync(s, acc, in, lweDim, count) }},
			{"add-plaintext",
				func() { AddLweCiphertextVectorPlaintextVectorAsync(s, out, accCopy, perCiphertext, lweDim, count) },
				func() { AddLweCiphertextVectorPlaintextVectorAssignAsync(s, acc, perCiphertext, lweDim, count) }},
			{"negate",
				func() { NegateLweCiphertextVectorAsync(s, out, accCopy, lweDim, count) },
				func() { NegateLweCiphertextVectorAssignAsync(s, acc, lweDim, count) }},
			{"mult-cleartext",
				func() { MultLweCiphertextVectorCleartextVectorAsync(s, out, accCopy, perCiphertext, lweDim, count) },
				func() { MultLweCiphertextVectorCleartextVectorAssignAsync(s, acc, perCiphertext, lweDim, count) }},
		}
		for _, tc := range cases {
			CopyGPUToGPUAsync(s, accCopy, acc)
			tc.outOfPlace()
			tc.assign()
			if diff := cmp.Diff(VecToHost(s, out), VecToHost(s, acc)); diff != "" {
				t.Fatalf("%s of %d ciphertexts: assign differs from out-of-place (-out +acc):\n%s", tc.name, count,
					diff)
			}
		}
		for _, v := range []*Vec[uint64]{acc, accCopy, in, perCiphertext, out} {
			v.Destroy()
		}
	}
}

func TestLinearKernelsValidation(t *testing.T) {
	device, rec, _ := newTestDevice(t, 1)
	s := newTestStream(t, device)
	small := MallocAsync[uint64](s, 7)
	defer small.Destroy()
	large := MallocAsync[uint64](s, 8)
	defer large.Destroy()

	rec.Reset()
	// 2 ciphertexts of dimension 3 need 8 elements.
	requirePanicsWith(t, ErrContractViolation, func() { AddLweCiphertextVectorAsync(s, small, large, large, 3, 2) })
	requirePanicsWith(t, ErrContractViolation, func() { AddLweCiphertextVectorAssignAsync(s, large, small, 3, 2) })
	requirePanicsWith(t, ErrContractViolation, func() { NegateLweCiphertextVectorAssignAsync(s, small, 3, 2) })
	plaintexts := MallocAsync[uint64](s, 1)
	defer plaintexts.Destroy()
	rec.Reset()
	requirePanicsWith(t, ErrContractViolation, func() {
		AddLweCiphertextVectorPlaintextVectorAssignAsync(s, large, plaintexts, 3, 2)
	})
	requirePanicsWith(t, ErrContractViolation, func() {
		MultLweCiphertextVectorCleartextVectorAssignAsync(s, large, plaintexts, 3, 2)
	})
	require.Empty(t, rec.Calls())

	// Kernels are only defined for the 64-bit torus.
	narrow := MallocAsync[uint32](s, 8)
	defer narrow.Destroy()
	requirePanicsWith(t, ErrContractViolation, func() { NegateLweCiphertextVectorAssignAsync(s, narrow, 3, 2) })
}

var testPBSParams = PBSParams{
	LweDimension:   4,
	GlweDimension:  1,
	PolynomialSize: 8,
	BaseLog:        10,
	Level:          2,
	GroupingFactor: 2,
}

// newTestBatch allocates the buffers of a bootstrap of numSamples ciphertexts.
func newTestBatch(t *testing.T, s *Stream, p PBSParams, numSamples params.LweCiphertextCount) BootstrapBatch[uint64] {
	n := uint32(numSamples)
	batch := BootstrapBatch[uint64]{
		Output:        MallocAsync[uint64](s, n*uint32(p.OutputLweDimension().ToLweSize())),
		OutputIndexes: MallocAsync[uint64](s, n),
		LUT:           MallocAsync[uint64](s, uint32(p.lutSize())),
		LUTIndexes:    MallocAsync[uint64](s, n),
		Input:         MallocAsync[uint64](s, n*uint32(p.LweDimension.ToLweSize())),
		InputIndexes:  MallocAsync[uint64](s, n),
		NumSamples:    numSamples,
		LweIdx:        0,
	}
	t.Cleanup(func() {
		for _, v := range []*Vec[uint64]{batch.Output, batch.OutputIndexes, batch.LUT, batch.LUTIndexes, batch.Input,
			batch.InputIndexes} {
			v.Destroy()
		}
	})
	return batch
}

func TestBootstrapScratchProtocol(t *testing.T) {
	device, rec, emu := newTestDevice(t, 1)
	s := newTestStream(t, device)
	p := testPBSParams
	batch := newTestBatch(t, s, p, 3)
	bsk := MallocAsync[float64](s, uint32(lweBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize)))
	defer bsk.Destroy()
	liveBefore := emu.LiveAllocations(0)

	rec.Reset()
	BootstrapLowLatencyAsync(s, batch, bsk, p)
	var kernelCalls []backendtest.Call
	for _, c := range rec.Calls() {
		if c.Name != "GetMaxSharedMemory" {
			kernelCalls = append(kernelCalls, c)
		}
	}
	require.Len(t, kernelCalls, 3)
	scratchCall, runCall, cleanupCall := kernelCalls[0], kernelCalls[1], kernelCalls[2]
	require.Equal(t, "ScratchBootstrapLowLatency64", scratchCall.Name)
	require.Equal(t, "BootstrapLowLatencyLweCiphertextVector64", runCall.Name)
	require.Equal(t, "CleanupBootstrapLowLatency", cleanupCall.Name)

	// stream, glwe dim, poly size, level, count, max shared memory, allocate.
	require.Equal(t, []any{s.Handle(), uint32(1), uint32(8), uint32(2), uint32(3), uint32(testSharedMemory), true},
		scratchCall.Args)
	// The scratch buffer flows from the scratch phase to the run and cleanup phases.
	buffer := runCall.Args[8]
	require.NotZero(t, buffer)
	require.Equal(t, []any{s.Handle(), buffer}, cleanupCall.Args)
	require.Equal(t, []any{s.Handle(),
		batch.Output.Addr(), batch.OutputIndexes.Addr(), batch.LUT.Addr(), batch.LUTIndexes.Addr(),
		batch.Input.Addr(), batch.InputIndexes.Addr(), bsk.Addr(), buffer,
		uint32(4), uint32(1), uint32(8), uint32(10), uint32(2), // lwe dim, glwe dim, poly size, base log, level.
		uint32(3), uint32(3), uint32(0), uint32(testSharedMemory), // samples, LUT vectors, lwe idx, shared memory.
	}, runCall.Args)
	require.Equal(t, liveBefore, emu.LiveAllocations(0), "scratch buffer leaked")

	// Multi-bit: the chunk size is left to the backend (0).
	mbsk := MallocAsync[uint64](s, uint32(lweMultiBitBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize, p.GroupingFactor)))
	defer mbsk.Destroy()
	liveBefore = emu.LiveAllocations(0)
	rec.Reset()
	BootstrapMultiBitAsync(s, batch, mbsk, p)
	require.Equal(t, 1, rec.Count("ScratchMultiBitPBS64"))
	require.Equal(t, 1, rec.Count("CleanupMultiBitPBS"))
	for _, c := range rec.Calls() {
		switch c.Name {
		case "ScratchMultiBitPBS64":
			require.Equal(t, []any{s.Handle(), uint32(4), uint32(1), uint32(8), uint32(2), uint32(2), uint32(3),
				uint32(testSharedMemory), true, uint32(0)}, c.Args)
		case "MultiBitPBSLweCiphertextVector64":
			require.Equal(t, []any{uint32(4), uint32(1), uint32(8), uint32(2), uint32(10), uint32(2), uint32(3),
				uint32(3), uint32(0), uint32(testSharedMemory), uint32(0)}, c.Args[9:])
		}
	}
	require.Equal(t, liveBefore, emu.LiveAllocations(0), "scratch buffer leaked")
}

func TestBootstrapScratchReuse(t *testing.T) {
	device, rec, emu := newTestDevice(t, 1)
	s := newTestStream(t, device)
	p := testPBSParams
	bsk := MallocAsync[float64](s, uint32(lweBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize)))
	defer bsk.Destroy()
	batch := newTestBatch(t, s, p, 4)
	liveBefore := emu.LiveAllocations(0)

	rec.Reset()
	sc := s.ScratchBootstrapLowLatency(p, 4)
	require.Equal(t, params.LweCiphertextCount(4), sc.NumSamples())
	require.Equal(t, p, sc.Params())
	for _, n := range []params.LweCiphertextCount{4, 2, 1} {
		batch.NumSamples = n
		BootstrapLowLatencyWithScratchAsync(sc, batch, bsk)
	}
	require.Equal(t, 1, rec.Count("ScratchBootstrapLowLatency64"))
	require.Equal(t, 3, rec.Count("BootstrapLowLatencyLweCiphertextVector64"))

	// Larger batches, or the other variant, need another scratch.
	batch.NumSamples = 5
	requirePanicsWith(t, ErrContractViolation, func() { BootstrapLowLatencyWithScratchAsync(sc, batch, bsk) })
	batch.NumSamples = 1
	requirePanicsWith(t, ErrContractViolation, func() { BootstrapMultiBitWithScratchAsync(sc, batch, nil) })

	sc.Release()
	sc.Release()
	require.Equal(t, 1, rec.Count("CleanupBootstrapLowLatency"))
	require.Equal(t, liveBefore, emu.LiveAllocations(0), "scratch buffer leaked")
	requirePanicsWith(t, ErrContractViolation, func() { BootstrapLowLatencyWithScratchAsync(sc, batch, bsk) })
}

func TestBootstrapReleasesScratchOnFailure(t *testing.T) {
	device, rec, emu := newTestDevice(t, 1)
	s := newTestStream(t, device)
	p := testPBSParams
	bsk := MallocAsync[float64](s, uint32(lweBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize)))
	defer bsk.Destroy()
	wrongKey := MallocAsync[float64](s, 1)
	defer wrongKey.Destroy()
	batch := newTestBatch(t, s, p, 2)
	liveBefore := emu.LiveAllocations(0)

	// The run phase fails: cleanup still runs.
	injected := errors.New("kernel launch failed")
	rec.FailOn("BootstrapLowLatencyLweCiphertextVector64", injected)
	requirePanicsWith(t, injected, func() { BootstrapLowLatencyAsync(s, batch, bsk, p) })
	require.Equal(t, 1, rec.Count("CleanupBootstrapLowLatency"))
	require.Equal(t, liveBefore, emu.LiveAllocations(0))

	// Undersized keys or buffers are rejected before the scratch phase.
	wrongMultiBitKey := MallocAsync[uint64](s, 1)
	defer wrongMultiBitKey.Destroy()
	rec.Reset()
	requirePanicsWith(t, ErrContractViolation, func() { BootstrapLowLatencyAsync(s, batch, wrongKey, p) })
	requirePanicsWith(t, ErrContractViolation, func() { BootstrapMultiBitAsync(s, batch, wrongMultiBitKey, p) })
	shortBatch := batch
	shortBatch.NumSamples = 3
	requirePanicsWith(t, ErrContractViolation, func() { BootstrapLowLatencyAsync(s, shortBatch, bsk, p) })
	require.Empty(t, rec.Calls())
	require.Equal(t, liveBefore+1, emu.LiveAllocations(0), "only the multi-bit key above is new")

	// Both the run and the cleanup phases fail: the run failure is reported.
	rec.Reset()
	cleanupErr := errors.New("cleanup failed")
	rec.FailOn("BootstrapLowLatencyLweCiphertextVector64", injected)
	rec.FailOn("CleanupBootstrapLowLatency", cleanupErr)
	requirePanicsWith(t, injected, func() { BootstrapLowLatencyAsync(s, batch, bsk, p) })

	// Only the cleanup fails.
	rec.FailOn("CleanupBootstrapLowLatency", cleanupErr)
	requirePanicsWith(t, cleanupErr, func() { BootstrapLowLatencyAsync(s, batch, bsk, p) })
}

func TestKeyswitch(t *testing.T) {
	device, rec, _ := newTestDevice(t, 1)
	s := newTestStream(t, device)
	const (
		inDim  = params.LweDimension(8)
		outDim = params.LweDimension(4)
		level  = params.DecompositionLevelCount(3)
		n      = params.LweCiphertextCount(2)
	)
	out := MallocAsync[uint64](s, uint32(n)*uint32(outDim.ToLweSize()))
	defer out.Destroy()
	in := MallocAsync[uint64](s, uint32(n)*uint32(inDim.ToLweSize()))
	defer in.Destroy()
	indexes := VecFromHost(s, []uint64{0, 1})
	defer indexes.Destroy()
	kskHost := make([]uint64, lweKeyswitchKeyLen(inDim, outDim, level))
	ksk := MallocAsync[uint64](s, uint32(len(kskHost)))
	defer ksk.Destroy()
	ConvertLweKeyswitchKeyAsync(s, ksk, kskHost)
	requirePanicsWith(t, ErrContractViolation, func() { ConvertLweKeyswitchKeyAsync(s, ksk, kskHost[1:]) })

	rec.Reset()
	KeyswitchAsync(s, out, indexes, in, indexes, inDim, outDim, ksk, 5, level, n)
	require.Equal(t, []string{"KeyswitchLweCiphertextVector64"}, rec.CallNames())
	require.Equal(t, []any{s.Handle(), out.Addr(), indexes.Addr(), in.Addr(), indexes.Addr(), ksk.Addr(),
		uint32(8), uint32(4), uint32(5), uint32(3), uint32(2)}, rec.Calls()[0].Args)

	rec.Reset()
	requirePanicsWith(t, ErrContractViolation, func() {
		KeyswitchAsync(s, in, indexes, out, indexes, inDim, outDim, ksk, 5, level, n)
	})
	require.Empty(t, rec.Calls())
}

func TestKeyConversion(t *testing.T) {
	device, rec, _ := newTestDevice(t, 1)
	s := newTestStream(t, device)
	p := testPBSParams
	rng := rand.New(rand.NewPCG(1, 2))

	// Standard key: bits copied into the float64 words by the emulator.
	key := randomTorus(rng, int(lweBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level, p.PolynomialSize)))
	dest := MallocAsync[float64](s, uint32(len(key)))
	defer dest.Destroy()
	ConvertLweBootstrapKeyAsync(s, dest, key, p.LweDimension, p.GlweDimension, p.Level, p.PolynomialSize)
	converted := VecToHost(s, dest)
	for i, k := range key {
		require.Equal(t, k, math.Float64bits(converted[i]))
	}

	// Sizes must match exactly.
	rec.Reset()
	requirePanicsWith(t, ErrContractViolation, func() {
		ConvertLweBootstrapKeyAsync(s, dest, key[1:], p.LweDimension, p.GlweDimension, p.Level, p.PolynomialSize)
	})
	larger := MallocAsync[float64](s, uint32(len(key)+1))
	defer larger.Destroy()
	rec.Reset()
	requirePanicsWith(t, ErrContractViolation, func() {
		ConvertLweBootstrapKeyAsync(s, larger, key, p.LweDimension, p.GlweDimension, p.Level, p.PolynomialSize)
	})
	require.Empty(t, rec.Calls())

	// Multi-bit key: 2^g GGSW per group of g key elements.
	mkey := randomTorus(rng, int(lweMultiBitBootstrapKeyLen(p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize, p.GroupingFactor)))
	require.Len(t, mkey, 2*4*2*8*4)
	mdest := MallocAsync[uint64](s, uint32(len(mkey)))
	defer mdest.Destroy()
	ConvertLweMultiBitBootstrapKeyAsync(s, mdest, mkey, p.LweDimension, p.GlweDimension, p.Level,
		p.PolynomialSize, p.GroupingFactor)
	require.Equal(t, mkey, VecToHost(s, mdest))
	requirePanicsWith(t, ErrContractViolation, func() {
		ConvertLweMultiBitBootstrapKeyAsync(s, mdest, mkey, p.LweDimension, p.GlweDimension, p.Level,
			p.PolynomialSize, 4)
	})
}

var testRadixParams = RadixParams{
	BigLweDimension:   8,
	SmallLweDimension: 4,
	GlweDimension:     1,
	PolynomialSize:    8,
	KsBaseLog:         3,
	KsLevel:           2,
	PbsBaseLog:        10,
	PbsLevel:          2,
	GroupingFactor:    2,
	MessageModulus:    4,
	CarryModulus:      4,
	PBSType:           backend.PBSTypeLowLatency,
}

func TestIntegerKernels(t *testing.T) {
	device, _, _ := newTestDevice(t, 1)
	s := newTestStream(t, device)
	p := testRadixParams
	const numBlocks = 2
	lweSize := p.BigLweDimension.ToLweSize()
	delta := (uint64(1) << 63) / (uint64(p.MessageModulus) * uint64(p.CarryModulus))

	// Trivial encryptions (zero mask) of the digits 3 and 1, that is 3 + 1*4 = 7.
	host := make([]uint64, numBlocks*lweSize)
	host[lweSize-1] = 3 * delta
	host[2*lweSize-1] = 1 * delta
	blocks := VecFromHost(s, host)
	defer blocks.Destroy()

	digits := VecFromHost(s, []uint64{2, 1})
	defer digits.Destroy()
	ScalarAddIntegerRadixAssignAsync(s, blocks, digits, p, numBlocks)
	got := VecToHost(s, blocks)
	require.Equal(t, 5*delta, got[lweSize-1])
	require.Equal(t, 2*delta, got[2*lweSize-1])

	doubled := MallocAsync[uint64](s, uint32(len(host)))
	defer doubled.Destroy()
	SmallScalarMulIntegerRadixAsync(s, doubled, blocks, 2, p, numBlocks)
	SmallScalarMulIntegerRadixAssignAsync(s, blocks, 2, p, numBlocks)
	require.Equal(t, VecToHost(s, doubled), VecToHost(s, blocks))
	require.Equal(t, 10*delta, VecToHost(s, blocks)[lweSize-1])

	// Negation of the trivial encryption of 0: z = 4, so the blocks become 4 and 4 - 1 = 3 (times delta).
	zero := MallocAsync[uint64](s, uint32(len(host)))
	defer zero.Destroy()
	FillAsync(s, zero, 0)
	NegateIntegerRadixAssignAsync(s, zero, p, numBlocks)
	got = VecToHost(s, zero)
	require.Equal(t, 4*delta, got[lweSize-1])
	require.Equal(t, 3*delta, got[2*lweSize-1])

	requirePanicsWith(t, ErrContractViolation, func() { NegateIntegerRadixAssignAsync(s, zero, p, numBlocks+1) })
}

func TestIntegerPBSKernels(t *testing.T) {
	device, rec, emu := newTestDevice(t, 1)
	s := newTestStream(t, device)
	p := testRadixParams
	const numBlocks = params.LweCiphertextCount(3)
	n := uint32(p.blocksLen(numBlocks))
	bsk := MallocAsync[float64](s, uint32(p.bootstrapKeyBytes()/8))
	defer bsk.Destroy()
	ksk := MallocAsync[uint64](s, uint32(lweKeyswitchKeyLen(p.BigLweDimension, p.SmallLweDimension, p.KsLevel)))
	defer ksk.Destroy()
	a, b, out := MallocAsync[uint64](s, n), MallocAsync[uint64](s, n), MallocAsync[uint64](s, n)
	defer a.Destroy()
	defer b.Destroy()
	defer out.Destroy()
	liveBefore := emu.LiveAllocations(0)

	testCases := []struct {
		name                 string
		run                  func()
		scratch, op, cleanup string
	}{
		{"full-propagation", func() { FullPropagationAssignAsync(s, a, bsk, ksk, p, numBlocks) },
			"ScratchFullPropagation64", "FullPropagation64Inplace", "CleanupFullPropagation"},
		{"mult", func() { MulIntegerRadixAsync(s, out, a, b, bsk, ksk, p, numBlocks) },
			"ScratchIntegerMultRadixCiphertextKB64", "IntegerMultRadixCiphertextKB64", "CleanupIntegerMult"},
		{"bitxor", func() { BitopIntegerRadixAsync(s, out, a, b, backend.BitXor, bsk, ksk, p, numBlocks) },
			"ScratchIntegerRadixBitopKB64", "BitopIntegerRadixCiphertextKB64", "CleanupIntegerBitop"},
		{"bitnot", func() { BitnotIntegerRadixAsync(s, out, a, bsk, ksk, p, numBlocks) },
			"ScratchIntegerRadixBitopKB64", "BitnotIntegerRadixCiphertextKB64", "CleanupIntegerBitop"},
		{"comparison", func() {
			CompareIntegerRadixAsync(s, out, a, b, backend.ComparisonGE, bsk, ksk, p, numBlocks)
		}, "ScratchIntegerRadixComparisonKB64", "ComparisonIntegerRadixCiphertextKB64", "CleanupIntegerComparison"},
		{"shift", func() {
			ScalarShiftIntegerRadixAssignAsync(s, a, 3, backend.RightShift, bsk, ksk, p, numBlocks)
		}, "ScratchIntegerRadixScalarShiftKB64", "IntegerRadixScalarShiftKB64Inplace",
			"CleanupIntegerRadixScalarShift"},
		{"cmux", func() { CmuxIntegerRadixAsync(s, out, b, a, b, bsk, ksk, p, numBlocks) },
			"ScratchIntegerRadixCmuxKB64", "CmuxIntegerRadixCiphertextKB64", "CleanupIntegerRadixCmux"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec.Reset()
			tc.run()
			var names []string
			for _, name := range rec.CallNames() {
				if name != "GetMaxSharedMemory" {
					names = append(names, name)
				}
			}
			require.Equal(t, []string{tc.scratch, tc.op, tc.cleanup}, names)
			require.Equal(t, liveBefore, emu.LiveAllocations(0), "scratch buffer leaked")

			// Scratch is released when the run phase fails.
			injected := errors.Errorf("%s failed", tc.op)
			rec.FailOn(tc.op, injected)
			requirePanicsWith(t, injected, tc.run)
			require.Equal(t, 2, rec.Count(tc.cleanup))
			require.Equal(t, liveBefore, emu.LiveAllocations(0), "scratch buffer leaked")
		})
	}

	// Bitop checks its operation, and every kernel checks its keys before the scratch phase.
	rec.Reset()
	requirePanicsWith(t, ErrContractViolation, func() {
		BitopIntegerRadixAsync(s, out, a, b, backend.ScalarBitAnd, bsk, ksk, p, numBlocks)
	})
	mp := p
	mp.PBSType = backend.PBSTypeMultiBit
	mp.GroupingFactor = 1
	requirePanicsWith(t, ErrContractViolation, func() { MulIntegerRadixAsync(s, out, a, b, bsk, ksk, mp, numBlocks) })
	require.Empty(t, rec.Calls())
}
