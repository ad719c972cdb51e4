// Package dtypes lists the element types that can be stored in device buffers, and maps them to and from Go types.
package dtypes

import (
	"reflect"
	"strings"

	"github.com/x448/float16"
)

// DType is the element type of a device buffer.
type DType int32

//go:generate go tool enumer -type=DType dtypes.go

const (
	// InvalidDType represents an invalid (or not set) dtype.
	InvalidDType DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16
	Float32
	Float64
)

// Supported lists the Go types that can be used as elements of device buffers.
type Supported interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float16.Float16 | float32 | float64
}

var dtypeGoTypes = map[DType]reflect.Type{
	Bool:    reflect.TypeOf(false),
	Int8:    reflect.TypeOf(int8(0)),
	Int16:   reflect.TypeOf(int16(0)),
	Int32:   reflect.TypeOf(int32(0)),
	Int64:   reflect.TypeOf(int64(0)),
	Uint8:   reflect.TypeOf(uint8(0)),
	Uint16:  reflect.TypeOf(uint16(0)),
	Uint32:  reflect.TypeOf(uint32(0)),
	Uint64:  reflect.TypeOf(uint64(0)),
	Float16: reflect.TypeOf(float16.Float16(0)),
	Float32: reflect.TypeOf(float32(0)),
	Float64: reflect.TypeOf(float64(0)),
}

// MapOfNames maps names (and common short aliases, in lower and upper case) to the DType.
var MapOfNames = make(map[string]DType)

func init() {
	aliases := map[DType][]string{
		Bool:    {"pred"},
		Int8:    {"s8", "i8"},
		Int16:   {"s16", "i16"},
		Int32:   {"s32", "i32"},
		Int64:   {"s64", "i64"},
		Uint8:   {"u8"},
		Uint16:  {"u16"},
		Uint32:  {"u32"},
		Uint64:  {"u64"},
		Float16: {"f16", "half"},
		Float32: {"f32"},
		Float64: {"f64"},
	}
	for _, dtype := range DTypeValues() {
		if dtype == InvalidDType {
			continue
		}
		name := dtype.String()
		MapOfNames[name] = dtype
		MapOfNames[strings.ToLower(name)] = dtype
		for _, alias := range aliases[dtype] {
			MapOfNames[alias] = dtype
			MapOfNames[strings.ToUpper(alias)] = dtype
		}
	}
}

// GoType returns the Go type used to hold values of dtype, or nil for an invalid dtype.
func (dtype DType) GoType() reflect.Type {
	return dtypeGoTypes[dtype]
}

// Size returns the number of bytes of one element of the dtype, or 0 if it is invalid.
func (dtype DType) Size() int {
	goType := dtype.GoType()
	if goType == nil {
		return 0
	}
	return int(goType.Size())
}

// SizeForCount returns the number of bytes used by count elements of the dtype.
func (dtype DType) SizeForCount(count int) int {
	return dtype.Size() * count
}

// IsUnsigned returns whether dtype is one of the unsigned integer types.
func (dtype DType) IsUnsigned() bool {
	switch dtype {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	default:
		return false
	}
}

// IsFloat returns whether dtype is one of the floating point types.
func (dtype DType) IsFloat() bool {
	return dtype == Float16 || dtype == Float32 || dtype == Float64
}

// FromGoType returns the DType for the given Go type, or InvalidDType if it is not supported.
func FromGoType(t reflect.Type) DType {
	for dtype, goType := range dtypeGoTypes {
		if goType == t {
			return dtype
		}
	}
	return InvalidDType
}

// FromGenericsType returns the DType corresponding to the generic type T.
func FromGenericsType[T Supported]() DType {
	var v T
	switch any(v).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return InvalidDType
}

// FromAny returns the DType of the given value, or InvalidDType if it is not a supported type.
func FromAny(value any) DType {
	return FromGoType(reflect.TypeOf(value))
}
