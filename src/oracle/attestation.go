package oracle

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

var ErrAttestationInvalid = errors.New("oracle: attestation does not verify")

// Attestor verifies the authenticity proof an oracle callback carries over
// its cleartext batch. Verification MUST succeed before any cleartext value
// is consumed.
type Attestor interface {
	Scheme() string
	Verify(requestId string, cleartexts []uint64, attestation []byte) error
}

const SchemeHmacSha256 = "hmac-sha256"

// HmacAttestor authenticates callbacks with an HMAC-SHA256 digest over the
// request id and the cleartext batch, keyed by the secret shared with the
// oracle.
type HmacAttestor struct {
	secret []byte
}

func NewHmacAttestor(secret []byte) *HmacAttestor {
	return &HmacAttestor{secret: secret}
}

func (a *HmacAttestor) Scheme() string {
	return SchemeHmacSha256
}

// Sign is used by the oracle process (and tests) to produce the attestation
// the Verify side expects.
func (a *HmacAttestor) Sign(requestId string, cleartexts []uint64) []byte {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write(attestationMessage(requestId, cleartexts))
	return mac.Sum(nil)
}

func (a *HmacAttestor) Verify(requestId string, cleartexts []uint64, attestation []byte) error {
	expected := a.Sign(requestId, cleartexts)
	if !hmac.Equal(expected, attestation) {
		return ErrAttestationInvalid
	}
	return nil
}

func attestationMessage(requestId string, cleartexts []uint64) []byte {
	msg := make([]byte, 0, len(requestId)+8*len(cleartexts))
	msg = append(msg, requestId...)
	for _, v := range cleartexts {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], v)
		msg = append(msg, buf[:]...)
	}
	return msg
}
