package encops

// Scheme is the homomorphic arithmetic surface the ledger side depends on.
// Operands stay opaque; only the oracle process ever sees cleartext.
//
// Numeric semantics across all profiles: uint64 wrap-around addition and
// multiplication, truncating integer division.
type Scheme interface {
	// Encrypt produces a fresh operand for a cleartext value.
	Encrypt(value uint64) (Operand, error)

	// Add returns a ⊕ b.
	Add(a, b Operand) (Operand, error)

	// Mul returns a ⊗ b.
	Mul(a, b Operand) (Operand, error)

	// DivPlain divides an operand by a plaintext divisor.
	DivPlain(a Operand, divisor uint64) (Operand, error)
}

// Decryptor is held only by the oracle process.
type Decryptor interface {
	Decrypt(o Operand) (uint64, error)
}
