package oracled

import (
	"fmt"

	"credential-ledger/src/encops"
	"credential-ledger/src/oracle"
)

// Signer produces the attestation the ledger side verifies. The HMAC
// attestor satisfies it with the shared secret; a hardened deployment signs
// inside the enclave instead.
type Signer interface {
	Scheme() string
	Sign(requestId string, cleartexts []uint64) []byte
}

// Service is the decryption oracle's core: it holds the only decryption
// capability in the system and answers handle batches with attested
// cleartexts.
type Service struct {
	decryptor encops.Decryptor
	signer    Signer
}

func NewService(decryptor encops.Decryptor, signer Signer) *Service {
	return &Service{
		decryptor: decryptor,
		signer:    signer,
	}
}

// Fulfill decrypts every handle in the request, in order, and signs the
// cleartext batch together with the request id so the callback cannot be
// replayed against another request.
func (s *Service) Fulfill(req oracle.DecryptionRequestDto) (oracle.DecryptionResultDto, error) {
	cleartexts := make([]uint64, 0, len(req.Handles))
	for i, handle := range req.Handles {
		value, err := s.decryptor.Decrypt(encops.FromBytes(handle))
		if err != nil {
			return oracle.DecryptionResultDto{}, fmt.Errorf("decrypt handle %d of request %s: %w", i, req.RequestId, err)
		}
		cleartexts = append(cleartexts, value)
	}

	return oracle.DecryptionResultDto{
		RequestId:   req.RequestId,
		Cleartexts:  cleartexts,
		Scheme:      s.signer.Scheme(),
		Attestation: s.signer.Sign(req.RequestId, cleartexts),
	}, nil
}
