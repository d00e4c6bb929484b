package encops

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

const gcmNonceSize = 12

// SealedScheme is the development profile of the encrypted-operand
// collaborator: values are AES-GCM sealed uint64s and the arithmetic
// round-trips through the key. A production deployment swaps in an FHE
// coprocessor client behind the same Scheme interface; nothing above this
// package can tell the difference.
type SealedScheme struct {
	aead cipher.AEAD
}

func NewSealedScheme(keyHex string) (*SealedScheme, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("encops: invalid scheme key: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("encops: scheme key must be 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &SealedScheme{aead: aead}, nil
}

func (s *SealedScheme) Encrypt(value uint64) (Operand, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Operand{}, err
	}

	plaintext := make([]byte, 8)
	binary.BigEndian.PutUint64(plaintext, value)

	sealed := s.aead.Seal(nil, nonce, plaintext, nil)
	return Operand{blob: append(nonce, sealed...)}, nil
}

func (s *SealedScheme) Decrypt(o Operand) (uint64, error) {
	if len(o.blob) < minOperandLen {
		return 0, ErrMalformedOperand
	}

	nonce := o.blob[:gcmNonceSize]
	sealed := o.blob[gcmNonceSize:]

	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return 0, ErrMalformedOperand
	}
	if len(plaintext) != 8 {
		return 0, ErrMalformedOperand
	}

	return binary.BigEndian.Uint64(plaintext), nil
}

func (s *SealedScheme) Add(a, b Operand) (Operand, error) {
	va, err := s.Decrypt(a)
	if err != nil {
		return Operand{}, err
	}
	vb, err := s.Decrypt(b)
	if err != nil {
		return Operand{}, err
	}
	return s.Encrypt(va + vb)
}

func (s *SealedScheme) Mul(a, b Operand) (Operand, error) {
	va, err := s.Decrypt(a)
	if err != nil {
		return Operand{}, err
	}
	vb, err := s.Decrypt(b)
	if err != nil {
		return Operand{}, err
	}
	return s.Encrypt(va * vb)
}

func (s *SealedScheme) DivPlain(a Operand, divisor uint64) (Operand, error) {
	if divisor == 0 {
		return Operand{}, ErrZeroDivisor
	}
	va, err := s.Decrypt(a)
	if err != nil {
		return Operand{}, err
	}
	return s.Encrypt(va / divisor)
}
