package dtypes

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromGenericsType(t *testing.T) {
	require.Equal(t, Uint64, FromGenericsType[uint64]())
	require.Equal(t, Uint32, FromGenericsType[uint32]())
	require.Equal(t, Float64, FromGenericsType[float64]())
	require.Equal(t, Float16, FromGenericsType[float16.Float16]())
	require.Equal(t, Bool, FromGenericsType[bool]())
	require.Equal(t, Int8, FromGenericsType[int8]())
}

func TestSize(t *testing.T) {
	require.Equal(t, 8, Uint64.Size())
	require.Equal(t, 2, Float16.Size())
	require.Equal(t, 1, Bool.Size())
	require.Equal(t, 0, InvalidDType.Size())
	require.Equal(t, 96, Uint64.SizeForCount(12))
}

func TestGoType(t *testing.T) {
	require.Equal(t, reflect.TypeOf(float16.Float16(0)), Float16.GoType())
	require.Nil(t, InvalidDType.GoType())
	for dtype := Bool; dtype <= Float64; dtype++ {
		require.Equal(t, dtype, FromGoType(dtype.GoType()), "round trip of %s", dtype)
	}
	require.Equal(t, Uint32, FromAny(uint32(7)))
	require.Equal(t, InvalidDType, FromAny("string"))
}

func TestMapOfNames(t *testing.T) {
	require.Equal(t, Float16, MapOfNames["Float16"])
	require.Equal(t, Float16, MapOfNames["float16"])
	require.Equal(t, Float16, MapOfNames["F16"])
	require.Equal(t, Float16, MapOfNames["f16"])

	require.Equal(t, Uint64, MapOfNames["u64"])
	require.Equal(t, Uint64, MapOfNames["U64"])
	require.Equal(t, Uint64, MapOfNames["uint64"])
	_, found := MapOfNames["InvalidDType"]
	require.False(t, found)
}

func TestPredicates(t *testing.T) {
	require.True(t, Uint8.IsUnsigned())
	require.False(t, Int64.IsUnsigned())
	require.True(t, Float16.IsFloat())
	require.False(t, Uint16.IsFloat())
	require.Equal(t, "DType(99)", DType(99).String())
	require.Equal(t, "DType(-1)", DType(-1).String())
	require.Equal(t, "Float16", Float16.String())
	require.False(t, DType(99).IsADType())
}

func TestDTypeString(t *testing.T) {
	dtype, err := DTypeString("uint64")
	require.NoError(t, err)
	require.Equal(t, Uint64, dtype)
	_, err = DTypeString("u64")
	require.Error(t, err, "short aliases are only in MapOfNames")
	require.Len(t, DTypeValues(), 13)
}
