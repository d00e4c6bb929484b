package model

import "credential-ledger/pkg/utilities"

// Domain event names, consumed by the dashboard feed.
const (
	EventCredentialAdded          = "CredentialAdded"
	EventProofGenerationRequested = "ProofGenerationRequested"
	EventProofGenerated           = "ProofGenerated"
	EventProofRevealed            = "ProofRevealed"
)

type CredentialAddedEvent struct {
	HolderId string `json:"holder_id"`
	Issuer   string `json:"issuer"`
}

func (e CredentialAddedEvent) Serialize() ([]byte, error) {
	return utilities.Serialize[CredentialAddedEvent](e)
}

type ProofGenerationRequestedEvent struct {
	HolderId string `json:"holder_id"`
}

func (e ProofGenerationRequestedEvent) Serialize() ([]byte, error) {
	return utilities.Serialize[ProofGenerationRequestedEvent](e)
}

type ProofGeneratedEvent struct {
	HolderId string `json:"holder_id"`
}

func (e ProofGeneratedEvent) Serialize() ([]byte, error) {
	return utilities.Serialize[ProofGeneratedEvent](e)
}

type ProofRevealedEvent struct {
	HolderId string `json:"holder_id"`
}

func (e ProofRevealedEvent) Serialize() ([]byte, error) {
	return utilities.Serialize[ProofRevealedEvent](e)
}
