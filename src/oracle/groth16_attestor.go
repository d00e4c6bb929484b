package oracle

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/near/borsh-go"
)

const SchemeGroth16 = "groth16"

// EllipticCurveID pins the curve every attestation circuit is compiled for.
const EllipticCurveID = ecc.BN254

type attestationBlob struct {
	Proof         []byte `borsh:"proof"`
	PublicWitness []byte `borsh:"public_witness"`
}

// Groth16Attestor verifies a verifiable-decryption attestation: a groth16
// proof that the oracle decrypted the batch correctly, checked against the
// server-held verifying key. The blob is attacker-controlled, so the proof is
// never accepted against the witness it carries: the statement is rebuilt
// from the callback's request id and cleartexts and the blob's witness must
// match it.
type Groth16Attestor struct {
	vk groth16.VerifyingKey
}

func NewGroth16Attestor(vkBytes []byte) (*Groth16Attestor, error) {
	vk := groth16.NewVerifyingKey(EllipticCurveID)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return nil, fmt.Errorf("oracle: cannot load verifying key: %w", err)
	}
	return &Groth16Attestor{vk: vk}, nil
}

func (a *Groth16Attestor) Scheme() string {
	return SchemeGroth16
}

func (a *Groth16Attestor) Verify(requestId string, cleartexts []uint64, attestation []byte) error {
	proof, submitted, err := reconstructAttestation(attestation)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAttestationInvalid, err)
	}

	expected, err := statementWitness(requestId, cleartexts)
	if err != nil {
		return fmt.Errorf("oracle: cannot build statement witness: %w", err)
	}

	// A proof transplanted from another request carries that request's public
	// inputs; it fails the cross-check before it ever reaches the verifier.
	if !witnessEqual(expected, submitted) {
		return ErrAttestationInvalid
	}

	if err := groth16.Verify(proof, a.vk, expected); err != nil {
		return ErrAttestationInvalid
	}
	return nil
}

// statementWitness builds the public witness the attestation circuit must
// have been proven against: the request id mapped into the scalar field,
// followed by the cleartext batch in callback order.
func statementWitness(requestId string, cleartexts []uint64) (witness.Witness, error) {
	w, err := witness.New(EllipticCurveID.ScalarField())
	if err != nil {
		return nil, err
	}

	values := make(chan any, 1+len(cleartexts))
	values <- RequestIdToField(requestId)
	for _, v := range cleartexts {
		values <- v
	}
	close(values)

	if err := w.Fill(1+len(cleartexts), 0, values); err != nil {
		return nil, err
	}
	return w, nil
}

// RequestIdToField maps a request id into the scalar field via SHA-256. The
// oracle's prover assigns the circuit's first public input with the same
// mapping.
func RequestIdToField(requestId string) *big.Int {
	digest := sha256.Sum256([]byte(requestId))
	return new(big.Int).Mod(new(big.Int).SetBytes(digest[:]), EllipticCurveID.ScalarField())
}

func witnessEqual(a, b witness.Witness) bool {
	aBytes, err := a.MarshalBinary()
	if err != nil {
		return false
	}
	bBytes, err := b.MarshalBinary()
	if err != nil {
		return false
	}
	return bytes.Equal(aBytes, bBytes)
}

func reconstructAttestation(blob []byte) (groth16.Proof, witness.Witness, error) {
	var deserialized attestationBlob
	if err := borsh.Deserialize(&deserialized, blob); err != nil {
		return nil, nil, err
	}

	proof := groth16.NewProof(EllipticCurveID)
	if _, err := proof.ReadFrom(bytes.NewReader(deserialized.Proof)); err != nil {
		return nil, nil, err
	}

	publicWitness, err := witness.New(EllipticCurveID.ScalarField())
	if err != nil {
		return nil, nil, err
	}
	if _, err := publicWitness.ReadFrom(bytes.NewReader(deserialized.PublicWitness)); err != nil {
		return nil, nil, err
	}

	return proof, publicWitness, nil
}
