package encops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func newScheme(t *testing.T) *SealedScheme {
	t.Helper()
	s, err := NewSealedScheme(testKey)
	require.NoError(t, err)
	return s
}

func TestNewSealedSchemeRejectsBadKeys(t *testing.T) {
	_, err := NewSealedScheme("not-hex")
	assert.Error(t, err)

	_, err = NewSealedScheme("00ff") // 2 bytes
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := newScheme(t)

	for _, v := range []uint64{0, 1, 12, ^uint64(0)} {
		op, err := s.Encrypt(v)
		require.NoError(t, err)
		assert.True(t, op.IsInitialized())

		got, err := s.Decrypt(op)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestEncryptIsNotDeterministic(t *testing.T) {
	s := newScheme(t)

	a, err := s.Encrypt(42)
	require.NoError(t, err)
	b, err := s.Encrypt(42)
	require.NoError(t, err)

	// fresh nonce per encryption; equal values must not produce equal blobs
	assert.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestArithmeticWrapsAround(t *testing.T) {
	s := newScheme(t)

	max, err := s.Encrypt(^uint64(0))
	require.NoError(t, err)
	one, err := s.Encrypt(1)
	require.NoError(t, err)

	sum, err := s.Add(max, one)
	require.NoError(t, err)
	v, err := s.Decrypt(sum)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	two, err := s.Encrypt(2)
	require.NoError(t, err)
	product, err := s.Mul(max, two)
	require.NoError(t, err)
	v, err = s.Decrypt(product)
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0)-1, v)
}

func TestDivPlainTruncates(t *testing.T) {
	s := newScheme(t)

	seven, err := s.Encrypt(7)
	require.NoError(t, err)

	q, err := s.DivPlain(seven, 2)
	require.NoError(t, err)
	v, err := s.Decrypt(q)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}

func TestDivPlainRejectsZeroDivisor(t *testing.T) {
	s := newScheme(t)

	op, err := s.Encrypt(7)
	require.NoError(t, err)

	_, err = s.DivPlain(op, 0)
	assert.ErrorIs(t, err, ErrZeroDivisor)
}

func TestDecryptRejectsTamperedOperand(t *testing.T) {
	s := newScheme(t)

	op, err := s.Encrypt(7)
	require.NoError(t, err)

	raw := op.Bytes()
	raw[len(raw)-1] ^= 0xff

	_, err = s.Decrypt(FromBytes(raw))
	assert.ErrorIs(t, err, ErrMalformedOperand)
}

func TestParseBase64(t *testing.T) {
	s := newScheme(t)

	op, err := s.Encrypt(12)
	require.NoError(t, err)

	parsed, err := ParseBase64(op.Base64())
	require.NoError(t, err)

	v, err := s.Decrypt(parsed)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)

	_, err = ParseBase64("%%%")
	assert.ErrorIs(t, err, ErrMalformedOperand)

	_, err = ParseBase64("dG9vIHNob3J0") // well-formed base64, too short
	assert.ErrorIs(t, err, ErrMalformedOperand)
}

func TestZeroOperandIsUninitialized(t *testing.T) {
	var op Operand
	assert.False(t, op.IsInitialized())
	assert.Empty(t, op.Handle())
}
