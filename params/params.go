// Package params holds the cryptographic parameter types consumed by the GPU dispatch layer.
//
// They are plain numeric newtypes: no validation of their cryptographic soundness is done here, they are only
// converted to the unsigned 32-bit arguments of the native calls.
package params

import "fmt"

// LweDimension is the number of mask elements of an LWE ciphertext.
type LweDimension uint32

// ToLweSize returns the number of elements of an LWE ciphertext: the mask plus the body.
func (d LweDimension) ToLweSize() int { return int(d) + 1 }

// U32 returns the native argument.
func (d LweDimension) U32() uint32 { return uint32(d) }

// GlweDimension is the number of mask polynomials of a GLWE ciphertext.
type GlweDimension uint32

// ToGlweSize returns the number of polynomials of a GLWE ciphertext: the mask plus the body.
func (d GlweDimension) ToGlweSize() int { return int(d) + 1 }

// U32 returns the native argument.
func (d GlweDimension) U32() uint32 { return uint32(d) }

// ToEquivalentLweDimension returns the dimension of the LWE ciphertexts sample-extracted from GLWE ciphertexts
// with the given polynomial size.
func (d GlweDimension) ToEquivalentLweDimension(polySize PolynomialSize) LweDimension {
	return LweDimension(uint32(d) * uint32(polySize))
}

// PolynomialSize is the number of coefficients of the polynomials.
type PolynomialSize uint32

// U32 returns the native argument.
func (p PolynomialSize) U32() uint32 { return uint32(p) }

// DecompositionBaseLog is the log2 of the decomposition base.
type DecompositionBaseLog uint32

// U32 returns the native argument.
func (b DecompositionBaseLog) U32() uint32 { return uint32(b) }

// DecompositionLevelCount is the number of levels of the decomposition.
type DecompositionLevelCount uint32

// U32 returns the native argument.
func (l DecompositionLevelCount) U32() uint32 { return uint32(l) }

// LweBskGroupingFactor is the number of key bits combined in each step of the multi-bit bootstrap.
type LweBskGroupingFactor uint32

// U32 returns the native argument.
func (g LweBskGroupingFactor) U32() uint32 { return uint32(g) }

// GgswPerMultiBitElement returns the number of GGSW ciphertexts in the multi-bit key for each group of key bits:
// one per combination of the bits of the group.
func (g LweBskGroupingFactor) GgswPerMultiBitElement() int { return 1 << g }

// LweCiphertextCount is a number of LWE ciphertexts.
type LweCiphertextCount uint32

// U32 returns the native argument.
func (c LweCiphertextCount) U32() uint32 { return uint32(c) }

// LweCiphertextIndex is the index of an LWE ciphertext in a list.
type LweCiphertextIndex uint32

// U32 returns the native argument.
func (i LweCiphertextIndex) U32() uint32 { return uint32(i) }

// GlweCiphertextCount is a number of GLWE ciphertexts.
type GlweCiphertextCount uint32

// U32 returns the native argument.
func (c GlweCiphertextCount) U32() uint32 { return uint32(c) }

// MessageModulus is the modulus of the message part of a radix block.
type MessageModulus uint32

// U32 returns the native argument.
func (m MessageModulus) U32() uint32 { return uint32(m) }

// CarryModulus is the modulus of the carry part of a radix block.
type CarryModulus uint32

// U32 returns the native argument.
func (c CarryModulus) U32() uint32 { return uint32(c) }

// CiphertextModulus of the ciphertexts: 0 means the native modulus (2^64 for 64-bit integers).
type CiphertextModulus uint64

// NativeModulus is the native modulus of the underlying unsigned integer.
const NativeModulus CiphertextModulus = 0

// IsNative returns whether the modulus is the native one of the underlying integer type.
func (m CiphertextModulus) IsNative() bool { return m == NativeModulus }

// IsPowerOfTwo returns whether the modulus is a power of two, the native one included.
func (m CiphertextModulus) IsPowerOfTwo() bool { return m&(m-1) == 0 }

// String implements fmt.Stringer.
func (m CiphertextModulus) String() string {
	if m.IsNative() {
		return "CiphertextModulus(native)"
	}
	return fmt.Sprintf("CiphertextModulus(%d)", uint64(m))
}
