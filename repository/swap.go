package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skillswap-server/models"
)

type SwapRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Swap, error)
	FindPendingDuplicate(ctx context.Context, requesterID, recipientID uuid.UUID, requesterSkill, recipientSkill string) (*models.Swap, error)
	Insert(ctx context.Context, swap *models.Swap) error
	// UpdateStatus performs the conditional write that backs every status
	// transition: the row is only touched when its status still equals
	// expected. A miss surfaces as ErrStaleStatus.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next models.SwapStatus, notes *string) error
	ListForUser(ctx context.Context, userID uuid.UUID, filter models.SwapListFilter) ([]models.Swap, int64, error)
	ListAll(ctx context.Context, status models.SwapStatus, page, limit int) ([]models.Swap, int64, error)
	CountByStatus(ctx context.Context) (map[models.SwapStatus]int64, error)
}

type swapRepo struct {
	db *gorm.DB
}

func (r *swapRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Swap, error) {
	var swap models.Swap
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Recipient").
		First(&swap, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &swap, nil
}

func (r *swapRepo) FindPendingDuplicate(ctx context.Context, requesterID, recipientID uuid.UUID, requesterSkill, recipientSkill string) (*models.Swap, error) {
	var swap models.Swap
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND recipient_id = ? AND requester_skill = ? AND recipient_skill = ? AND status = ?",
			requesterID, recipientID, requesterSkill, recipientSkill, models.SwapStatusPending).
		First(&swap).Error
	if err != nil {
		return nil, translate(err)
	}
	return &swap, nil
}

func (r *swapRepo) Insert(ctx context.Context, swap *models.Swap) error {
	return translate(r.db.WithContext(ctx).Create(swap).Error)
}

func (r *swapRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next models.SwapStatus, notes *string) error {
	updates := map[string]interface{}{"status": next}
	if notes != nil {
		updates["notes"] = *notes
	}

	result := r.db.WithContext(ctx).
		Model(&models.Swap{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *swapRepo) ListForUser(ctx context.Context, userID uuid.UUID, filter models.SwapListFilter) ([]models.Swap, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Swap{})

	switch filter.Type {
	case "sent":
		query = query.Where("requester_id = ?", userID)
	case "received":
		query = query.Where("recipient_id = ?", userID)
	default:
		query = query.Where("requester_id = ? OR recipient_id = ?", userID, userID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var swaps []models.Swap
	err := query.
		Preload("Requester").
		Preload("Recipient").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&swaps).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return swaps, total, nil
}

func (r *swapRepo) ListAll(ctx context.Context, status models.SwapStatus, page, limit int) ([]models.Swap, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Swap{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var swaps []models.Swap
	err := query.
		Preload("Requester").
		Preload("Recipient").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&swaps).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return swaps, total, nil
}

func (r *swapRepo) CountByStatus(ctx context.Context) (map[models.SwapStatus]int64, error) {
	var rows []struct {
		Status models.SwapStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Swap{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	counts := make(map[models.SwapStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
