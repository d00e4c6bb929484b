package credential

import (
	"credential-ledger/pkg/events"
	"credential-ledger/pkg/timeutil"
	"credential-ledger/src/encops"
	"credential-ledger/src/model"
	"credential-ledger/src/outbox"

	"gorm.io/gorm"
)

// Service appends encrypted credentials to holder ledgers. Anyone may add a
// credential for any holder; the issuer field is caller-asserted attribution,
// not an authorization boundary.
type Service struct {
	db    *gorm.DB
	bus   *events.Bus
	clock func() timeutil.TimeUTC
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{
		db:    db,
		bus:   bus,
		clock: timeutil.NowUTC,
	}
}

func (s *Service) WithClock(clock func() timeutil.TimeUTC) *Service {
	s.clock = clock
	return s
}

// AddCredential validates the three encrypted operands and appends the
// credential with seq = the holder's current count. Rows are never updated or
// deleted afterwards.
func (s *Service) AddCredential(holderId, issuer, encTypeB64, encAttributesB64, encExpiryB64 string) (*model.Credential, error) {
	encType, err := encops.ParseBase64(encTypeB64)
	if err != nil {
		return nil, err
	}
	encAttributes, err := encops.ParseBase64(encAttributesB64)
	if err != nil {
		return nil, err
	}
	encExpiry, err := encops.ParseBase64(encExpiryB64)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	stored := &model.Credential{
		HolderId:      holderId,
		Issuer:        issuer,
		EncType:       encType.Bytes(),
		EncAttributes: encAttributes.Bytes(),
		EncExpiry:     encExpiry.Bytes(),
		CreatedAt:     now.T,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		count, err := repo.CountByHolder(holderId)
		if err != nil {
			return err
		}
		stored.Seq = int(count)

		if err := repo.Create(stored); err != nil {
			return err
		}

		_, err = outbox.NewRepo(tx).NewEvent(model.EventCredentialAdded,
			model.CredentialAddedEvent{HolderId: holderId, Issuer: issuer}, now.T)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(model.EventCredentialAdded, model.CredentialAddedEvent{HolderId: holderId, Issuer: issuer})
	return stored, nil
}

func (s *Service) Count(holderId string) (int64, error) {
	return NewRepository(s.db).CountByHolder(holderId)
}
