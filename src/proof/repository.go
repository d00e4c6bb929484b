package proof

import (
	"errors"

	"credential-ledger/src/model"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a holder has no composite proof row.
var ErrNotFound = errors.New("proof: no composite proof for holder")

type Repository interface {
	GetByHolder(holderId string) (*model.CompositeProof, error)
	// Upsert replaces the holder's proof wholesale: score, revealed flag and
	// timestamp. Aggregation overwrites are not merges.
	Upsert(p *model.CompositeProof) error
	MarkRevealed(holderId string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetByHolder(holderId string) (*model.CompositeProof, error) {
	var p model.CompositeProof
	err := r.db.Where("holder_id = ?", holderId).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) Upsert(p *model.CompositeProof) error {
	var existing model.CompositeProof
	err := r.db.Where("holder_id = ?", p.HolderId).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(p).Error
	}
	if err != nil {
		return err
	}

	// Map updates so a false revealed flag is written too.
	return r.db.Model(&model.CompositeProof{}).
		Where("holder_id = ?", p.HolderId).
		Updates(map[string]interface{}{
			"score":       p.Score,
			"revealed":    p.Revealed,
			"computed_at": p.ComputedAt,
		}).Error
}

func (r *gormRepository) MarkRevealed(holderId string) error {
	return r.db.Model(&model.CompositeProof{}).
		Where("holder_id = ?", holderId).
		Update("revealed", true).Error
}
