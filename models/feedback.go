package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is one participant's rating of the other after a completed swap.
// The unique index on (swap_id, rater_id) backs the one-feedback-per-rater
// rule at the storage layer; the application pre-check alone is racy.
type Feedback struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SwapID      uuid.UUID `json:"swap_id" gorm:"type:uuid;not null;uniqueIndex:idx_feedback_swap_rater"`
	Swap        *Swap     `json:"swap,omitempty" gorm:"foreignKey:SwapID"`
	RaterID     uuid.UUID `json:"rater_id" gorm:"type:uuid;not null;uniqueIndex:idx_feedback_swap_rater;index"`
	Rater       *User     `json:"rater,omitempty" gorm:"foreignKey:RaterID"`
	RatedUserID uuid.UUID `json:"rated_user_id" gorm:"type:uuid;not null;index"`
	RatedUser   *User     `json:"rated_user,omitempty" gorm:"foreignKey:RatedUserID"`
	Rating      int       `json:"rating" gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	Comment     *string   `json:"comment" gorm:"type:text"`
	IsPublic    bool      `json:"is_public" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets custom table name
func (Feedback) TableName() string { return "feedback" }

// BeforeCreate is a GORM hook that assigns the primary key
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FeedbackCreate represents the request structure for leaving feedback
type FeedbackCreate struct {
	SwapID   uuid.UUID `json:"swap_id" binding:"required"`
	Rating   int       `json:"rating" binding:"required"`
	Comment  *string   `json:"comment"`
	IsPublic *bool     `json:"is_public"`
}

// FeedbackUpdate enumerates the fields the original rater may change.
type FeedbackUpdate struct {
	Rating   *int    `json:"rating"`
	Comment  *string `json:"comment"`
	IsPublic *bool   `json:"is_public"`
}

// RatingBucket is one row of a rating-value histogram
type RatingBucket struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}
