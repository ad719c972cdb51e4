package cuda

import (
	"fmt"
	"testing"

	"github.com/gomlx/tfhecuda/dtypes"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestVec(t *testing.T) {
	device, _, emu := newTestDevice(t, 1)
	s := newTestStream(t, device)

	v := MallocAsync[uint32](s, 10)
	require.Equal(t, 10, v.Len())
	require.False(t, v.IsEmpty())
	require.Equal(t, dtypes.Uint32, v.DType())
	require.Equal(t, uint64(40), v.SizeBytes())
	require.Equal(t, device, v.Device())
	require.Equal(t, uint64(40), v.Ptr().Size())
	require.Equal(t, v.Addr(), v.MutAddr())
	require.Equal(t, 1, emu.LiveAllocations(0))
	fmt.Printf("%s\n", v)

	empty := MallocAsync[float32](s, 0)
	require.True(t, empty.IsEmpty())
	require.NotEqual(t, v.Addr(), empty.Addr())
	empty.Destroy()

	// A Vec can't be larger than its memory, nor on another device.
	requirePanicsWith(t, ErrContractViolation, func() { NewVec[uint64](v.Ptr(), 6, device) })
	requirePanicsWith(t, ErrContractViolation, func() { NewVec[uint8](v.Ptr(), 4, NewDevice(device.Backend(), 1)) })
	narrower := NewVec[uint8](v.Ptr(), 40, device)
	require.Equal(t, 40, narrower.Len())

	v.Destroy()
	require.False(t, v.IsValid())
	require.False(t, narrower.IsValid())
	require.Equal(t, 0, emu.LiveAllocations(0))
}

func TestPtrDestroy(t *testing.T) {
	device, rec, emu := newTestDevice(t, 1)
	s := newTestStream(t, device)
	alive := PtrsAlive()

	v := MallocAsync[uint64](s, 16)
	require.Equal(t, alive+1, PtrsAlive())
	addr := v.Addr()

	// Destroy synchronizes the whole device first, then frees.
	rec.Reset()
	v.Destroy()
	require.Equal(t, []string{"SynchronizeDevice", "Drop"}, rec.CallNames())
	require.Equal(t, addr, rec.Calls()[1].Args[0])
	require.Equal(t, alive, PtrsAlive())
	require.Equal(t, 0, emu.LiveAllocations(0))

	// Destroyed exactly once.
	v.Destroy()
	v.Ptr().Destroy()
	require.Equal(t, 1, rec.Count("Drop"))
	requirePanicsWith(t, ErrContractViolation, func() { v.Addr() })
	requirePanicsWith(t, ErrContractViolation, func() { v.MutAddr() })
	requirePanicsWith(t, ErrContractViolation, func() { CopyToGPUAsync(s, v, []uint64{1}) })
	require.Equal(t, "cuda.Ptr(destroyed)", v.Ptr().String())

	// Never reused.
	w := MallocAsync[uint64](s, 16)
	defer w.Destroy()
	require.NotEqual(t, addr, w.Addr())
}

// TestTeardownSafety allocates and frees many buffers from several streams of one device concurrently, and checks
// that the buffers still alive keep their contents.
func TestTeardownSafety(t *testing.T) {
	device, rec, emu := newTestDevice(t, 1)
	const (
		numStreams = 4
		numRounds  = 20
		bufLen     = 257
	)
	var g errgroup.Group
	for streamIdx := range numStreams {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("stream #%d: %v", streamIdx, r)
				}
			}()
			s := NewStream(device)
			defer s.Destroy()

			// A long-lived buffer, checked at the end.
			pattern := func(round, i int) uint64 { return uint64(streamIdx)<<48 | uint64(round)<<32 | uint64(i) }
			keep := make([]uint64, bufLen)
			for i := range keep {
				keep[i] = pattern(numRounds, i)
			}
			kept := VecFromHost(s, keep)
			defer kept.Destroy()

			for round := range numRounds {
				values := make([]uint64, bufLen)
				for i := range values {
					values[i] = pattern(round, i)
				}
				v := VecFromHost(s, values)
				got := VecToHost(s, v)
				if diff := cmp.Diff(values, got); diff != "" {
					return fmt.Errorf("stream #%d, round %d: unexpected contents (-want +got):\n%s",
						streamIdx, round, diff)
				}
				v.Destroy()
			}
			if diff := cmp.Diff(keep, VecToHost(s, kept)); diff != "" {
				return fmt.Errorf("stream #%d: long-lived buffer corrupted (-want +got):\n%s", streamIdx, diff)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 0, emu.LiveAllocations(0))
	require.Equal(t, 0, emu.NumStreams(0))
	require.Equal(t, numStreams*(numRounds+1), rec.Count("Drop"))
	require.GreaterOrEqual(t, rec.Count("SynchronizeDevice"), rec.Count("Drop"))
}
