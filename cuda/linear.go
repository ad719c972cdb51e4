package cuda

import (
	"github.com/gomlx/tfhecuda/backend"
	"github.com/gomlx/tfhecuda/params"
)

// The linear kernels accept their output as the first input: the Assign forms pass the accumulator as both.

func linearKernels[T UnsignedInteger](s *Stream, op string) backend.LinearKernels {
	torus64[T](op)
	return kernelsOf[backend.LinearKernels](s.activeBackend(op), "linear kernels")
}

// AddLweCiphertextVectorAsync sets output to the sum of the count LWE ciphertexts of in1 and in2.
func AddLweCiphertextVectorAsync[T UnsignedInteger](s *Stream, output, in1, in2 *Vec[T],
	lweDim params.LweDimension, count params.LweCiphertextCount) {
	const op = "AddLweCiphertextVectorAsync"
	k := linearKernels[T](s, op)
	n := uint64(count) * uint64(lweDim.ToLweSize())
	hasLen(op, "output", output, n)
	hasLen(op, "first input", in1, n)
	hasLen(op, "second input", in2, n)
	check(k.AddLweCiphertextVector64(s.wrapper.handle, output.MutAddr(), in1.Addr(), in2.Addr(), lweDim.U32(),
		count.U32()), "%s of %d ciphertexts", op, count)
}

// AddLweCiphertextVectorAssignAsync adds the count LWE ciphertexts of in to those of acc.
func AddLweCiphertextVectorAssignAsync[T UnsignedInteger](s *Stream, acc, in *Vec[T], lweDim params.LweDimension,
	count params.LweCiphertextCount) {
	const op = "AddLweCiphertextVectorAssignAsync"
	k := linearKernels[T](s, op)
	n := uint64(count) * uint64(lweDim.ToLweSize())
	hasLen(op, "accumulator", acc, n)
	hasLen(op, "input", in, n)
	check(k.AddLweCiphertextVector64(s.wrapper.handle, acc.MutAddr(), acc.Addr(), in.Addr(), lweDim.U32(),
		count.U32()), "%s of %d ciphertexts", op, count)
}

// AddLweCiphertextVectorPlaintextVectorAsync sets output to the count LWE ciphertexts of in, with plaintext i
// added to the body of ciphertext i.
func AddLweCiphertextVectorPlaintextVectorAsync[T UnsignedInteger](s *Stream, output, in, plaintexts *Vec[T],
	lweDim params.LweDimension, count params.LweCiphertextCount) {
	const op = "AddLweCiphertextVectorPlaintextVectorAsync"
	k := linearKernels[T](s, op)
	n := uint64(count) * uint64(lweDim.ToLweSize())
	hasLen(op, "output", output, n)
	hasLen(op, "input", in, n)
	hasLen(op, "plaintexts", plaintexts, uint64(count))
	check(k.AddLweCiphertextVectorPlaintextVector64(s.wrapper.handle, output.MutAddr(), in.Addr(), plaintexts.Addr(),
		lweDim.U32(), count.U32()), "%s of %d ciphertexts", op, count)
}

// AddLweCiphertextVectorPlaintextVectorAssignAsync adds plaintext i to the body of the ciphertext i of acc.
func AddLweCiphertextVectorPlaintextVectorAssignAsync[T UnsignedInteger](s *Stream, acc, plaintexts *Vec[T],
	lweDim params.LweDimension, count params.LweCiphertextCount) {
	const op = "AddLweCiphertextVectorPlaintextVectorAssignAsync"
	k := linearKernels[T](s, op)
	hasLen(op, "accumulator", acc, uint64(count)*uint64(lweDim.ToLweSize()))
	hasLen(op, "plaintexts", plaintexts, uint64(count))
	check(k.AddLweCiphertextVectorPlaintextVector64(s.wrapper.handle, acc.MutAddr(), acc.Addr(), plaintexts.Addr(),
		lweDim.U32(), count.U32()), "%s of %d ciphertexts", op, count)
}

// NegateLweCiphertextVectorAsync sets output to the negation of the count LWE ciphertexts of in.
func NegateLweCiphertextVectorAsync[T UnsignedInteger](s *Stream, output, in *Vec[T], lweDim params.LweDimension,
	count params.LweCiphertextCount) {
	const op = "NegateLweCiphertextVectorAsync"
	k := linearKernels[T](s, op)
	n := uint64(count) * uint64(lweDim.ToLweSize())
	hasLen(op, "output", output, n)
	hasLen(op, "input", in, n)
	check(k.NegateLweCiphertextVector64(s.wrapper.handle, output.MutAddr(), in.Addr(), lweDim.U32(), count.U32()),
		"%s of %d ciphertexts", op, count)
}

// NegateLweCiphertextVectorAssignAsync negates the count LWE ciphertexts of acc.
func NegateLweCiphertextVectorAssignAsync[T UnsignedInteger](s *Stream, acc *Vec[T], lweDim params.LweDimension,
	count params.LweCiphertextCount) {
	const op = "NegateLweCiphertextVectorAssignAsync"
	k := linearKernels[T](s, op)
	hasLen(op, "accumulator", acc, uint64(count)*uint64(lweDim.ToLweSize()))
	check(k.NegateLweCiphertextVector64(s.wrapper.handle, acc.MutAddr(), acc.Addr(), lweDim.U32(), count.U32()),
		"%s of %d ciphertexts", op, count)
}

// MultLweCiphertextVectorCleartextVectorAsync sets output to the count LWE ciphertexts of in, ciphertext i
// multiplied by cleartext i.
func MultLweCiphertextVectorCleartextVectorAsync[T UnsignedInteger](s *Stream, output, in, cleartexts *Vec[T],
	lweDim params.LweDimension, count params.LweCiphertextCount) {
	const op = "MultLweCiphertextVectorCleartextVectorAsync"
	k := linearKernels[T](s, op)
	n := uint64(count) * uint64(lweDim.ToLweSize())
	hasLen(op, "output", output, n)
	hasLen(op, "input", in, n)
	hasLen(op, "cleartexts", cleartexts, uint64(count))
	check(k.MultLweCiphertextVectorCleartextVector64(s.wrapper.handle, output.MutAddr(), in.Addr(), cleartexts.Addr(),
		lweDim.U32(), count.U32()), "%s of %d ciphertexts", op, count)
}

// MultLweCiphertextVectorCleartextVectorAssignAsync multiplies the ciphertext i of acc by cleartext i.
func MultLweCiphertextVectorCleartextVectorAssignAsync[T UnsignedInteger](s *Stream, acc, cleartexts *Vec[T],
	lweDim params.LweDimension, count params.LweCiphertextCount) {
	const op = "MultLweCiphertextVectorCleartextVectorAssignAsync"
	k := linearKernels[T](s, op)
	hasLen(op, "accumulator", acc, uint64(count)*uint64(lweDim.ToLweSize()))
	hasLen(op, "cleartexts", cleartexts, uint64(count))
	check(k.MultLweCiphertextVectorCleartextVector64(s.wrapper.handle, acc.MutAddr(), acc.Addr(), cleartexts.Addr(),
		lweDim.U32(), count.U32()), "%s of %d ciphertexts", op, count)
}
