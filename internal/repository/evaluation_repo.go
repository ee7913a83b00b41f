package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/models"
)

// EvaluationRepository provides access to evaluation submissions. Evaluations
// are immutable once created; there is no update operation.
type EvaluationRepository interface {
	List(ctx context.Context) ([]models.Evaluation, error)
	GetByID(ctx context.Context, id uint) (models.Evaluation, error)
	Create(ctx context.Context, evaluation *models.Evaluation) error
	Delete(ctx context.Context, id uint) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates a GORM-backed repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) List(ctx context.Context) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if err := r.db.WithContext(ctx).Preload("User").Order("created_at DESC").Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

func (r *evaluationRepository) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).Preload("User").Preload("Questions").First(&evaluation, id).Error; err != nil {
		return models.Evaluation{}, err
	}

	return evaluation, nil
}

// Create inserts the evaluation row and all of its question rows in a single
// transaction; a failure on any question rolls back the parent row.
func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := evaluation.Questions
		evaluation.Questions = nil

		if err := tx.Create(evaluation).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].EvaluationID = evaluation.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}

		evaluation.Questions = questions
		return nil
	})
}

// Delete removes the evaluation and its question rows in one transaction.
func (r *evaluationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("evaluation_id = ?", id).Delete(&models.EvaluationQuestion{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Evaluation{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
