package encops

import (
	"encoding/base64"
	"errors"
)

var (
	ErrMalformedOperand = errors.New("encops: malformed operand")
	ErrZeroDivisor      = errors.New("encops: division by zero plaintext divisor")
)

// minOperandLen is nonce (12) + ciphertext (8) + GCM tag (16) for the sealed
// profile; anything shorter cannot be a well-formed operand of any profile.
const minOperandLen = 36

// Operand is an opaque encrypted integer. The zero value is the
// "never written" operand: IsInitialized reports false for it, which is how
// the protocol distinguishes a missing proof from a real (possibly zero)
// score.
type Operand struct {
	blob []byte
}

func FromBytes(b []byte) Operand {
	blob := make([]byte, len(b))
	copy(blob, b)
	return Operand{blob: blob}
}

// ParseBase64 decodes an operand submitted over the API and rejects blobs
// that cannot possibly be well-formed ciphertexts.
func ParseBase64(s string) (Operand, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Operand{}, ErrMalformedOperand
	}
	if len(raw) < minOperandLen {
		return Operand{}, ErrMalformedOperand
	}
	return Operand{blob: raw}, nil
}

func (o Operand) IsInitialized() bool {
	return len(o.blob) > 0
}

// Handle serializes the operand into the form the decryption oracle
// consumes.
func (o Operand) Handle() []byte {
	out := make([]byte, len(o.blob))
	copy(out, o.blob)
	return out
}

func (o Operand) Bytes() []byte {
	return o.Handle()
}

func (o Operand) Base64() string {
	return base64.StdEncoding.EncodeToString(o.blob)
}
