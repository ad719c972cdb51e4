package backend

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

// nullBackend implements only the naming part of the contract, enough to exercise the registry.
type nullBackend struct {
	name string
	id   int
}

func (b *nullBackend) Name() string { return b.name }
func (b *nullBackend) CreateStream(uint32) (StreamHandle, error) { return 0, ErrNotImplemented }
func (b *nullBackend) DestroyStream(StreamHandle) error { return ErrNotImplemented }
func (b *nullBackend) SynchronizeStream(StreamHandle) error { return ErrNotImplemented }
func (b *nullBackend) SynchronizeDevice(uint32) error { return ErrNotImplemented }
func (b *nullBackend) MallocAsync(uint64, StreamHandle) (DevicePtr, error) {
	return 0, ErrNotImplemented
}
func (b *nullBackend) Drop(DevicePtr) error { return ErrNotImplemented }
func (b *nullBackend) MemsetAsync(DevicePtr, uint64, uint64, StreamHandle) error {
	return ErrNotImplemented
}
func (b *nullBackend) MemcpyAsyncToGPU(DevicePtr, unsafe.Pointer, uint64, StreamHandle) error {
	return ErrNotImplemented
}
func (b *nullBackend) MemcpyAsyncGPUToGPU(DevicePtr, DevicePtr, uint64, StreamHandle) error {
	return ErrNotImplemented
}
func (b *nullBackend) MemcpyAsyncToCPU(unsafe.Pointer, DevicePtr, uint64, StreamHandle) error {
	return ErrNotImplemented
}
func (b *nullBackend) GetMaxSharedMemory(uint32) int32 { return 0 }
func (b *nullBackend) GetNumberOfGPUs() int32 { return 0 }

// resetRegistry empties the registry, and returns a function that restores it.
func resetRegistry() (restore func()) {
	muBackends.Lock()
	defer muBackends.Unlock()
	savedConstructors, savedLoaded := constructors, loadedBackends
	constructors = make(map[string]Constructor)
	loadedBackends = make(map[string]Backend)
	return func() {
		muBackends.Lock()
		defer muBackends.Unlock()
		constructors, loadedBackends = savedConstructors, savedLoaded
	}
}

func TestRegistry(t *testing.T) {
	defer resetRegistry()()

	var numCreated int
	Register("null", func() (Backend, error) {
		numCreated++
		return &nullBackend{name: "null", id: numCreated}, nil
	})
	Register("broken", func() (Backend, error) {
		return nil, errors.New("no device")
	})
	require.Equal(t, []string{"broken", "null"}, Registered())

	b0, err := Get("null")
	require.NoError(t, err)
	b1, err := Get("null")
	require.NoError(t, err)
	require.Same(t, b0, b1)
	require.Equal(t, 1, numCreated)
	require.Equal(t, "null", b0.Name())

	_, err = Get("broken")
	require.ErrorContains(t, err, "no device")
	_, err = Get("unknown")
	require.ErrorContains(t, err, `backend "unknown" not registered`)

	// Re-registering drops the cached instance.
	Register("null", func() (Backend, error) { return &nullBackend{name: "null", id: 100}, nil })
	b2, err := Get("null")
	require.NoError(t, err)
	require.Equal(t, 100, b2.(*nullBackend).id)
}

func TestDefault(t *testing.T) {
	defer resetRegistry()()

	t.Setenv(BackendEnv, "")
	_, err := Default()
	require.ErrorContains(t, err, "no default backend")

	Register(EmulatorBackend, func() (Backend, error) { return &nullBackend{name: EmulatorBackend}, nil })
	b, err := Default()
	require.NoError(t, err)
	require.Equal(t, EmulatorBackend, b.Name())

	Register(CUDABackend, func() (Backend, error) { return &nullBackend{name: CUDABackend}, nil })
	b, err = Default()
	require.NoError(t, err)
	require.Equal(t, CUDABackend, b.Name())

	t.Setenv(BackendEnv, EmulatorBackend)
	b, err = Default()
	require.NoError(t, err)
	require.Equal(t, EmulatorBackend, b.Name())

	t.Setenv(BackendEnv, "missing")
	_, err = Default()
	require.Error(t, err)
}

func TestEnumStrings(t *testing.T) {
	require.Equal(t, "LowLatency", PBSTypeLowLatency.String())
	require.Equal(t, "MultiBit", PBSTypeMultiBit.String())
	require.Equal(t, "PBSType(7)", PBSType(7).String())
	require.Equal(t, uint32(1), uint32(PBSTypeLowLatency))
	require.Equal(t, uint32(6), uint32(ScalarBitXor))
	require.Equal(t, uint32(7), uint32(ComparisonMin))
	require.Equal(t, uint32(1), uint32(RightShift))
	require.Equal(t, "ComparisonGE", ComparisonGE.String())
	require.Equal(t, "BitXor", BitXor.String())
	require.Equal(t, "RightShift", fmt.Sprint(RightShift))

	// Parsing back, case-insensitive.
	cmp, err := ComparisonTypeString("comparisonmax")
	require.NoError(t, err)
	require.Equal(t, ComparisonMax, cmp)
	pbs, err := PBSTypeString("Amortized")
	require.NoError(t, err)
	require.Equal(t, PBSTypeAmortized, pbs)
	_, err = BitOpTypeString("BitNand")
	require.Error(t, err)
	require.Len(t, BitOpTypeValues(), 7)
	require.Equal(t, []string{"LeftShift", "RightShift"}, ShiftTypeStrings())
	require.False(t, PBSType(7).IsAPBSType())
}
