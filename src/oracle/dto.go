package oracle

import (
	"credential-ledger/pkg/utilities"
	"credential-ledger/src/model"
)

// DecryptionRequestDto is published to the oracle's request queue. Handles
// are base64 through the JSON []byte encoding.
type DecryptionRequestDto struct {
	RequestId string            `json:"request_id"`
	Kind      model.RequestKind `json:"kind"`
	Handles   [][]byte          `json:"handles"`
}

func (d DecryptionRequestDto) Serialize() ([]byte, error) {
	return utilities.Serialize[DecryptionRequestDto](d)
}

// DecryptionResultDto is the oracle's callback message. Attestation must be
// verified before any cleartext in the batch is trusted.
type DecryptionResultDto struct {
	RequestId   string   `json:"request_id"`
	Cleartexts  []uint64 `json:"cleartexts"`
	Scheme      string   `json:"attestation_scheme"`
	Attestation []byte   `json:"attestation"`
}

func (d DecryptionResultDto) Serialize() ([]byte, error) {
	return utilities.Serialize[DecryptionResultDto](d)
}
