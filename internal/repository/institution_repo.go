package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/models"
)

// InstitutionRepository provides access to institution reference records.
type InstitutionRepository interface {
	List(ctx context.Context) ([]models.Institution, error)
	GetByID(ctx context.Context, id uint) (models.Institution, error)
	Create(ctx context.Context, institution *models.Institution) error
	Update(ctx context.Context, institution *models.Institution) error
	Delete(ctx context.Context, id uint) error
}

type institutionRepository struct {
	db *gorm.DB
}

// NewInstitutionRepository instantiates a GORM-backed repository.
func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &institutionRepository{db: db}
}

func (r *institutionRepository) List(ctx context.Context) ([]models.Institution, error) {
	var institutions []models.Institution
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&institutions).Error; err != nil {
		return nil, err
	}

	return institutions, nil
}

func (r *institutionRepository) GetByID(ctx context.Context, id uint) (models.Institution, error) {
	var institution models.Institution
	if err := r.db.WithContext(ctx).First(&institution, id).Error; err != nil {
		return models.Institution{}, err
	}

	return institution, nil
}

func (r *institutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	return r.db.WithContext(ctx).Create(institution).Error
}

func (r *institutionRepository) Update(ctx context.Context, institution *models.Institution) error {
	return r.db.WithContext(ctx).Save(institution).Error
}

func (r *institutionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Institution{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
