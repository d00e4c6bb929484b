package credential

import (
	"credential-ledger/src/model"

	"gorm.io/gorm"
)

type Repository interface {
	Create(credential *model.Credential) error
	CountByHolder(holderId string) (int64, error)
	ListByHolder(holderId string) ([]model.Credential, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(credential *model.Credential) error {
	return r.db.Create(credential).Error
}

func (r *gormRepository) CountByHolder(holderId string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Credential{}).Where("holder_id = ?", holderId).Count(&count).Error
	return count, err
}

func (r *gormRepository) ListByHolder(holderId string) ([]model.Credential, error) {
	var credentials []model.Credential
	err := r.db.Where("holder_id = ?", holderId).Order("seq asc").Find(&credentials).Error
	return credentials, err
}
