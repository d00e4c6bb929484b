package oracle

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decryptionStatement is a minimal stand-in for the oracle's attestation
// circuit. Its public inputs are laid out the way the attestor expects every
// attestation circuit to lay them out: the request id field element first,
// then the cleartext batch in callback order.
type decryptionStatement struct {
	RequestId  frontend.Variable    `gnark:",public"`
	Cleartexts [2]frontend.Variable `gnark:",public"`
	Sum        frontend.Variable
}

func (c *decryptionStatement) Define(api frontend.API) error {
	sum := api.Add(c.RequestId, c.Cleartexts[0], c.Cleartexts[1])
	api.AssertIsEqual(c.Sum, sum)
	return nil
}

type groth16Fixture struct {
	attestor *Groth16Attestor
	blob     []byte
}

// newGroth16Fixture compiles the statement circuit, runs the trusted setup,
// proves it for (requestId, cleartexts) and packs the proof the way the
// oracle's callback does. The attestor is loaded with the matching verifying
// key.
func newGroth16Fixture(t *testing.T, requestId string, cleartexts [2]uint64) *groth16Fixture {
	t.Helper()

	ccs, err := frontend.Compile(EllipticCurveID.ScalarField(), r1cs.NewBuilder, &decryptionStatement{})
	require.NoError(t, err)

	pk, vk, err := groth16.Setup(ccs)
	require.NoError(t, err)

	idField := RequestIdToField(requestId)
	sum := new(big.Int).Add(idField, new(big.Int).SetUint64(cleartexts[0]))
	sum.Add(sum, new(big.Int).SetUint64(cleartexts[1]))
	sum.Mod(sum, ecc.BN254.ScalarField())

	fullWitness, err := frontend.NewWitness(&decryptionStatement{
		RequestId:  idField,
		Cleartexts: [2]frontend.Variable{cleartexts[0], cleartexts[1]},
		Sum:        sum,
	}, EllipticCurveID.ScalarField())
	require.NoError(t, err)

	prf, err := groth16.Prove(ccs, pk, fullWitness)
	require.NoError(t, err)

	publicWitness, err := fullWitness.Public()
	require.NoError(t, err)

	var proofBuf, witnessBuf, vkBuf bytes.Buffer
	_, err = prf.WriteTo(&proofBuf)
	require.NoError(t, err)
	_, err = publicWitness.WriteTo(&witnessBuf)
	require.NoError(t, err)
	_, err = vk.WriteTo(&vkBuf)
	require.NoError(t, err)

	blob, err := borsh.Serialize(attestationBlob{
		Proof:         proofBuf.Bytes(),
		PublicWitness: witnessBuf.Bytes(),
	})
	require.NoError(t, err)

	attestor, err := NewGroth16Attestor(vkBuf.Bytes())
	require.NoError(t, err)

	return &groth16Fixture{attestor: attestor, blob: blob}
}

func TestGroth16AttestationRoundTrip(t *testing.T) {
	f := newGroth16Fixture(t, "request-a", [2]uint64{3, 4})

	assert.NoError(t, f.attestor.Verify("request-a", []uint64{3, 4}, f.blob))
}

func TestGroth16AttestationBoundToRequestId(t *testing.T) {
	f := newGroth16Fixture(t, "request-a", [2]uint64{3, 4})

	err := f.attestor.Verify("request-b", []uint64{3, 4}, f.blob)
	assert.ErrorIs(t, err, ErrAttestationInvalid)
}

func TestGroth16AttestationBoundToCleartexts(t *testing.T) {
	f := newGroth16Fixture(t, "request-a", [2]uint64{3, 4})

	// same length, one value off
	err := f.attestor.Verify("request-a", []uint64{3, 5}, f.blob)
	assert.ErrorIs(t, err, ErrAttestationInvalid)

	// batch longer than the proven one
	err = f.attestor.Verify("request-a", []uint64{3, 4, 9_999_999_999}, f.blob)
	assert.ErrorIs(t, err, ErrAttestationInvalid)

	// batch shorter than the proven one
	err = f.attestor.Verify("request-a", []uint64{42}, f.blob)
	assert.ErrorIs(t, err, ErrAttestationInvalid)
}

func TestGroth16AttestationRejectsMalformedBlob(t *testing.T) {
	f := newGroth16Fixture(t, "request-a", [2]uint64{3, 4})

	err := f.attestor.Verify("request-a", []uint64{3, 4}, []byte("not a blob"))
	assert.ErrorIs(t, err, ErrAttestationInvalid)
}

func TestNewGroth16AttestorRejectsGarbageKey(t *testing.T) {
	_, err := NewGroth16Attestor([]byte("not a verifying key"))
	assert.Error(t, err)

	_, err = NewGroth16Attestor(nil)
	assert.Error(t, err)
}

func TestGroth16SchemeName(t *testing.T) {
	assert.Equal(t, "groth16", SchemeGroth16)
	assert.NotEqual(t, SchemeGroth16, SchemeHmacSha256)
}
