package backend

// Enums of the integer kernels are kept in their own file for enumer. Values match the native enums.

// PBSType selects the bootstrap variant used by the integer kernels.
type PBSType uint32

//go:generate go tool enumer -type=PBSType -trimprefix=PBSType enums.go

const (
	PBSTypeMultiBit   PBSType = 0
	PBSTypeLowLatency PBSType = 1
	PBSTypeAmortized  PBSType = 2
)

// BitOpType selects the bitwise operation of the integer bitop kernels.
type BitOpType uint32

//go:generate go tool enumer -type=BitOpType enums.go

const (
	BitAnd BitOpType = iota
	BitOr
	BitXor
	BitNot
	ScalarBitAnd
	ScalarBitOr
	ScalarBitXor
)

// ComparisonType selects the operation of the integer comparison kernels.
type ComparisonType uint32

//go:generate go tool enumer -type=ComparisonType enums.go

const (
	ComparisonEQ ComparisonType = iota
	ComparisonNE
	ComparisonGT
	ComparisonGE
	ComparisonLT
	ComparisonLE
	ComparisonMax
	ComparisonMin
)

// ShiftType selects the direction of the integer shift and rotate kernels.
type ShiftType uint32

//go:generate go tool enumer -type=ShiftType enums.go

const (
	LeftShift  ShiftType = 0
	RightShift ShiftType = 1
)
