package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillswap-server/models"
)

// UserListFilter narrows the public user directory. SkillType restricts the
// skill match to one side of the exchange: "offered", "wanted", or empty for
// both.
type UserListFilter struct {
	Search    string
	Skill     string
	SkillType string
	Location  string
	Page      int
	Limit     int
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByIDForUpdate takes a row-level lock on the user for the duration
	// of the enclosing transaction. Concurrent rating recomputations for the
	// same user serialize on this lock.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserListFilter) ([]models.User, int64, error)
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
	UpdateRatingAggregate(ctx context.Context, id uuid.UUID, rating float64, totalRatings int) error
	Counts(ctx context.Context) (total, banned int64, err error)
}

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Insert(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepo) List(ctx context.Context, filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_public = ? AND is_banned = ?", true, false)

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Skill != "" {
		switch filter.SkillType {
		case "offered":
			query = query.Where("? = ANY(skills_offered)", filter.Skill)
		case "wanted":
			query = query.Where("? = ANY(skills_wanted)", filter.Skill)
		default:
			query = query.Where("? = ANY(skills_offered) OR ? = ANY(skills_wanted)", filter.Skill, filter.Skill)
		}
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var users []models.User
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return users, total, nil
}

func (r *userRepo) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_banned", banned)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdateRatingAggregate(ctx context.Context, id uuid.UUID, rating float64, totalRatings int) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":        rating,
			"total_ratings": totalRatings,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) Counts(ctx context.Context) (int64, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, 0, translate(err)
	}
	var banned int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("is_banned = ?", true).Count(&banned).Error; err != nil {
		return 0, 0, translate(err)
	}
	return total, banned, nil
}
