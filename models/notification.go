package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationSwapRequest      NotificationType = "swap_request"
	NotificationSwapAccepted     NotificationType = "swap_accepted"
	NotificationSwapRejected     NotificationType = "swap_rejected"
	NotificationFeedbackReceived NotificationType = "feedback_received"
	NotificationPlatformUpdate   NotificationType = "platform_update"
	NotificationSystemAlert      NotificationType = "system_alert"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    *uuid.UUID       `json:"user_id" gorm:"type:uuid;index"` // nil means platform-wide
	Message   string           `json:"message" gorm:"type:text;not null"`
	Type      NotificationType `json:"type" gorm:"type:varchar(30);not null;default:'system_alert';index"`
	IsRead    bool             `json:"is_read" gorm:"default:false;index"`
	RelatedID *uuid.UUID       `json:"related_id" gorm:"type:uuid"` // related swap or feedback
	CreatedAt time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate is a GORM hook that assigns the primary key
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
