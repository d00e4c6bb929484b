package registry

import (
	"errors"

	"credential-ledger/src/model"

	"gorm.io/gorm"
)

// ErrUnknownRequest is returned when a request id has never been registered
// or was already consumed.
var ErrUnknownRequest = errors.New("registry: unknown request id")

// Repository maps in-flight oracle request ids to the holders who issued
// them. Request ids are oracle-minted uuids and never reused, so a consumed
// row can be deleted outright.
type Repository interface {
	Register(requestId, holderId string, kind model.RequestKind, now int64) error
	Resolve(requestId string) (*model.PendingRequest, error)
	Consume(requestId string) error
	HasPending(holderId string, kind model.RequestKind) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Register(requestId, holderId string, kind model.RequestKind, now int64) error {
	return r.db.Create(&model.PendingRequest{
		RequestId: requestId,
		HolderId:  holderId,
		Kind:      kind,
		CreatedAt: now,
	}).Error
}

func (r *gormRepository) Resolve(requestId string) (*model.PendingRequest, error) {
	var pending model.PendingRequest
	err := r.db.Where("request_id = ?", requestId).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownRequest
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *gormRepository) Consume(requestId string) error {
	return r.db.Where("request_id = ?", requestId).Delete(&model.PendingRequest{}).Error
}

func (r *gormRepository) HasPending(holderId string, kind model.RequestKind) (bool, error) {
	var count int64
	err := r.db.Model(&model.PendingRequest{}).
		Where("holder_id = ? AND kind = ?", holderId, kind).
		Count(&count).Error
	return count > 0, err
}
