package protocol

import (
	"errors"
	"fmt"

	"credential-ledger/pkg/events"
	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/timeutil"
	"credential-ledger/src/aggregation"
	"credential-ledger/src/credential"
	"credential-ledger/src/encops"
	"credential-ledger/src/model"
	"credential-ledger/src/oracle"
	"credential-ledger/src/outbox"
	"credential-ledger/src/proof"
	"credential-ledger/src/registry"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HolderState is the derived per-holder protocol state. It is computed from
// the stored rows on demand, never persisted.
type HolderState string

const (
	StateNoCredentials   HolderState = "NO_CREDENTIALS"
	StateHasCredentials  HolderState = "HAS_CREDENTIALS"
	StateProofRequested  HolderState = "PROOF_REQUESTED"
	StateProofReady      HolderState = "PROOF_READY"
	StateRevealRequested HolderState = "REVEAL_REQUESTED"
	StateRevealed        HolderState = "REVEALED"
)

type HolderStatusDto struct {
	HolderId        string      `json:"holder_id"`
	State           HolderState `json:"state"`
	CredentialCount int64       `json:"credential_count"`
	HasProof        bool        `json:"has_proof"`
	Revealed        bool        `json:"revealed"`
	ProofComputedAt int64       `json:"proof_computed_at,omitempty"`
}

// Service orchestrates the credential ledger's oracle protocol: it issues
// decryption requests, correlates callbacks through the pending-request
// registry and applies the aggregation and reveal transitions atomically.
type Service struct {
	db       *gorm.DB
	oracle   oracle.Client
	attestor oracle.Attestor
	engine   *aggregation.Engine
	bus      *events.Bus
	clock    func() timeutil.TimeUTC
}

func NewService(db *gorm.DB, oracleClient oracle.Client, attestor oracle.Attestor, engine *aggregation.Engine, bus *events.Bus) *Service {
	return &Service{
		db:       db,
		oracle:   oracleClient,
		attestor: attestor,
		engine:   engine,
		bus:      bus,
		clock:    timeutil.NowUTC,
	}
}

// WithClock swaps the ledger clock; tests use it to control expiry filtering.
func (s *Service) WithClock(clock func() timeutil.TimeUTC) *Service {
	s.clock = clock
	return s
}

// RequestProofGeneration submits every credential of the holder to the
// decryption oracle as one flat handle batch (type, attributes, expiry per
// credential, in sequence order) and registers the minted request id. The
// aggregation itself happens later, when the oracle's callback lands.
//
// Nothing deduplicates concurrent requests for the same holder: each call
// registers its own request id and the callbacks resolve last-writer-wins on
// the proof row.
func (s *Service) RequestProofGeneration(holderId string) (string, error) {
	now := s.clock()
	requestId := uuid.NewString()

	var handles [][]byte
	err := s.db.Transaction(func(tx *gorm.DB) error {
		credentials, err := credential.NewRepository(tx).ListByHolder(holderId)
		if err != nil {
			return err
		}
		if len(credentials) == 0 {
			return ErrNoCredentials
		}

		handles = make([][]byte, 0, 3*len(credentials))
		for _, c := range credentials {
			handles = append(handles, c.EncType, c.EncAttributes, c.EncExpiry)
		}

		if err := registry.NewRepository(tx).Register(requestId, holderId, model.RequestKindAggregate, now.T); err != nil {
			return err
		}

		_, err = outbox.NewRepo(tx).NewEvent(model.EventProofGenerationRequested,
			model.ProofGenerationRequestedEvent{HolderId: holderId}, now.T)
		return err
	})
	if err != nil {
		return "", err
	}

	// The queue publish happens outside the transaction: a rolled-back
	// registration never puts a request on the wire. When the publish itself
	// fails the committed pending request stays unanswered, which is already a
	// legal protocol state; the holder simply requests again.
	if err := s.oracle.RequestDecryption(requestId, handles, model.RequestKindAggregate); err != nil {
		return "", err
	}

	s.bus.Publish(model.EventProofGenerationRequested, model.ProofGenerationRequestedEvent{HolderId: holderId})
	return requestId, nil
}

// RequestReveal submits the holder's composite score to the oracle for
// authenticated disclosure. The cleartext score travels back to the holder
// over the oracle's channel; the ledger only flips the revealed flag when the
// callback lands.
func (s *Service) RequestReveal(holderId string) (string, error) {
	now := s.clock()
	requestId := uuid.NewString()

	var scoreHandle []byte
	err := s.db.Transaction(func(tx *gorm.DB) error {
		count, err := credential.NewRepository(tx).CountByHolder(holderId)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNoCredentials
		}

		p, err := proof.NewRepository(tx).GetByHolder(holderId)
		if errors.Is(err, proof.ErrNotFound) {
			return ErrNoProof
		}
		if err != nil {
			return err
		}

		score := encops.FromBytes(p.Score)
		if !score.IsInitialized() {
			return ErrNoProof
		}
		if p.Revealed {
			return ErrAlreadyRevealed
		}

		scoreHandle = score.Handle()
		return registry.NewRepository(tx).Register(requestId, holderId, model.RequestKindReveal, now.T)
	})
	if err != nil {
		return "", err
	}

	if err := s.oracle.RequestDecryption(requestId, [][]byte{scoreHandle}, model.RequestKindReveal); err != nil {
		return "", err
	}

	return requestId, nil
}

// HandleDecryptionResult is the oracle callback entry point. The attestation
// is verified before any cleartext in the batch is trusted, and the whole
// fulfillment commits atomically: registry consume, proof write and outbox
// event land together or not at all.
func (s *Service) HandleDecryptionResult(result oracle.DecryptionResultDto) error {
	now := s.clock()

	var fulfilled model.PendingRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reg := registry.NewRepository(tx)

		pending, err := reg.Resolve(result.RequestId)
		if errors.Is(err, registry.ErrUnknownRequest) {
			return ErrInvalidRequest
		}
		if err != nil {
			return err
		}

		if err := s.attestor.Verify(result.RequestId, result.Cleartexts, result.Attestation); err != nil {
			return ErrProofVerificationFailed
		}

		if err := reg.Consume(result.RequestId); err != nil {
			return err
		}

		fulfilled = *pending
		switch pending.Kind {
		case model.RequestKindAggregate:
			return s.fulfillAggregate(tx, pending.HolderId, result.Cleartexts, now)
		case model.RequestKindReveal:
			return s.finalizeReveal(tx, pending.HolderId, now)
		default:
			return ErrInvalidRequest
		}
	})
	if err != nil {
		return err
	}

	switch fulfilled.Kind {
	case model.RequestKindAggregate:
		s.bus.Publish(model.EventProofGenerated, model.ProofGeneratedEvent{HolderId: fulfilled.HolderId})
	case model.RequestKindReveal:
		s.bus.Publish(model.EventProofRevealed, model.ProofRevealedEvent{HolderId: fulfilled.HolderId})
	}

	logger.Default().Infof("Fulfilled %s request %s for holder %s", fulfilled.Kind, fulfilled.RequestId, fulfilled.HolderId)
	return nil
}

// fulfillAggregate recomputes the composite score from the decrypted batch.
// When no credential survives the expiry filter the prior proof row is left
// untouched; the generated event is emitted either way.
func (s *Service) fulfillAggregate(tx *gorm.DB, holderId string, cleartexts []uint64, now timeutil.TimeUTC) error {
	triples, err := aggregation.ParseTriples(cleartexts)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	score, valid, err := s.engine.Aggregate(triples, now)
	if err != nil {
		return err
	}

	if valid > 0 {
		err = proof.NewRepository(tx).Upsert(&model.CompositeProof{
			HolderId:   holderId,
			Score:      score.Bytes(),
			Revealed:   false,
			ComputedAt: now.T,
		})
		if err != nil {
			return err
		}
	}

	_, err = outbox.NewRepo(tx).NewEvent(model.EventProofGenerated,
		model.ProofGeneratedEvent{HolderId: holderId}, now.T)
	return err
}

// finalizeReveal flips the revealed flag. The callback's cleartext is not
// consumed beyond attestation: the score reaches the holder through the
// oracle's channel, not through the ledger.
func (s *Service) finalizeReveal(tx *gorm.DB, holderId string, now timeutil.TimeUTC) error {
	proofs := proof.NewRepository(tx)

	if _, err := proofs.GetByHolder(holderId); errors.Is(err, proof.ErrNotFound) {
		return ErrNoProof
	} else if err != nil {
		return err
	}

	if err := proofs.MarkRevealed(holderId); err != nil {
		return err
	}

	_, err := outbox.NewRepo(tx).NewEvent(model.EventProofRevealed,
		model.ProofRevealedEvent{HolderId: holderId}, now.T)
	return err
}

// GetHolderStatus derives the holder's protocol state from the stored rows.
// Pending requests outrank stored results so a dashboard shows in-flight work
// first.
func (s *Service) GetHolderStatus(holderId string) (HolderStatusDto, error) {
	status := HolderStatusDto{HolderId: holderId, State: StateNoCredentials}

	count, err := credential.NewRepository(s.db).CountByHolder(holderId)
	if err != nil {
		return status, err
	}
	status.CredentialCount = count

	p, err := proof.NewRepository(s.db).GetByHolder(holderId)
	if err != nil && !errors.Is(err, proof.ErrNotFound) {
		return status, err
	}
	if err == nil {
		status.HasProof = encops.FromBytes(p.Score).IsInitialized()
		status.Revealed = p.Revealed
		status.ProofComputedAt = p.ComputedAt
	}

	reg := registry.NewRepository(s.db)
	aggregatePending, err := reg.HasPending(holderId, model.RequestKindAggregate)
	if err != nil {
		return status, err
	}
	revealPending, err := reg.HasPending(holderId, model.RequestKindReveal)
	if err != nil {
		return status, err
	}

	switch {
	case status.Revealed:
		status.State = StateRevealed
	case revealPending:
		status.State = StateRevealRequested
	case aggregatePending:
		status.State = StateProofRequested
	case status.HasProof:
		status.State = StateProofReady
	case count > 0:
		status.State = StateHasCredentials
	}
	return status, nil
}
