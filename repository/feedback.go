package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skillswap-server/models"
)

type FeedbackRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
	GetBySwapAndRater(ctx context.Context, swapID, raterID uuid.UUID) (*models.Feedback, error)
	Insert(ctx context.Context, feedback *models.Feedback) error
	Update(ctx context.Context, feedback *models.Feedback) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRatedUser(ctx context.Context, userID uuid.UUID, publicOnly bool, page, limit int) ([]models.Feedback, int64, error)
	ListByRater(ctx context.Context, raterID uuid.UUID, page, limit int) ([]models.Feedback, int64, error)
	CountAndSumByRatedUser(ctx context.Context, userID uuid.UUID) (count int64, sum int64, err error)
	Histogram(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]models.RatingBucket, error)
	Stats(ctx context.Context) (total int64, average float64, err error)
}

type feedbackRepo struct {
	db *gorm.DB
}

func (r *feedbackRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).First(&feedback, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &feedback, nil
}

func (r *feedbackRepo) GetBySwapAndRater(ctx context.Context, swapID, raterID uuid.UUID) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).
		Where("swap_id = ? AND rater_id = ?", swapID, raterID).
		First(&feedback).Error
	if err != nil {
		return nil, translate(err)
	}
	return &feedback, nil
}

func (r *feedbackRepo) Insert(ctx context.Context, feedback *models.Feedback) error {
	return translate(r.db.WithContext(ctx).Create(feedback).Error)
}

func (r *feedbackRepo) Update(ctx context.Context, feedback *models.Feedback) error {
	return translate(r.db.WithContext(ctx).Save(feedback).Error)
}

func (r *feedbackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Feedback{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *feedbackRepo) ListByRatedUser(ctx context.Context, userID uuid.UUID, publicOnly bool, page, limit int) ([]models.Feedback, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Feedback{}).Where("rated_user_id = ?", userID)
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var feedback []models.Feedback
	err := query.
		Preload("Rater").
		Preload("Swap").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&feedback).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return feedback, total, nil
}

func (r *feedbackRepo) ListByRater(ctx context.Context, raterID uuid.UUID, page, limit int) ([]models.Feedback, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Feedback{}).Where("rater_id = ?", raterID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var feedback []models.Feedback
	err := query.
		Preload("RatedUser").
		Preload("Swap").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&feedback).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return feedback, total, nil
}

func (r *feedbackRepo) CountAndSumByRatedUser(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	var row struct {
		Count int64
		Sum   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("COUNT(*) as count, COALESCE(SUM(rating), 0) as sum").
		Where("rated_user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, translate(err)
	}
	return row.Count, row.Sum, nil
}

func (r *feedbackRepo) Histogram(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]models.RatingBucket, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("rating, COUNT(*) as count").
		Where("rated_user_id = ?", userID)
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}

	var buckets []models.RatingBucket
	err := query.Group("rating").Order("rating ASC").Scan(&buckets).Error
	if err != nil {
		return nil, translate(err)
	}
	return buckets, nil
}

func (r *feedbackRepo) Stats(ctx context.Context) (int64, float64, error) {
	var row struct {
		Total   int64
		Average float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("COUNT(*) as total, COALESCE(AVG(CAST(rating AS DECIMAL(3,2))), 0) as average").
		Scan(&row).Error
	if err != nil {
		return 0, 0, translate(err)
	}
	return row.Total, row.Average, nil
}
