package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SwapStatus represents the current status of a swap request
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCancelled SwapStatus = "cancelled"
	SwapStatusCompleted SwapStatus = "completed"
)

// Swap represents a proposed skill exchange between two users. Swaps are
// never hard-deleted; cancellation and rejection are terminal statuses.
type Swap struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	RequesterID    uuid.UUID  `json:"requester_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_swaps_pending,where:status = 'pending'"`
	Requester      *User      `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	RecipientID    uuid.UUID  `json:"recipient_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_swaps_pending,where:status = 'pending'"`
	Recipient      *User      `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	RequesterSkill string     `json:"requester_skill" gorm:"size:255;not null;uniqueIndex:idx_swaps_pending,where:status = 'pending'"`
	RecipientSkill string     `json:"recipient_skill" gorm:"size:255;not null;uniqueIndex:idx_swaps_pending,where:status = 'pending'"`
	Status         SwapStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Message        *string    `json:"message" gorm:"type:text"`
	ScheduledDate  *time.Time `json:"scheduled_date"`
	Duration       *int       `json:"duration"` // minutes
	Notes          *string    `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Swap model
func (Swap) TableName() string {
	return "swaps"
}

// BeforeCreate is a GORM hook that assigns the primary key
func (s *Swap) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsParticipant reports whether userID is the requester or the recipient.
func (s *Swap) IsParticipant(userID uuid.UUID) bool {
	return s.RequesterID == userID || s.RecipientID == userID
}

// OtherParticipant returns the counterpart of userID in this swap.
func (s *Swap) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if s.RequesterID == userID {
		return s.RecipientID
	}
	return s.RequesterID
}

// IsTerminal reports whether no further transitions are permitted.
func (s SwapStatus) IsTerminal() bool {
	switch s {
	case SwapStatusRejected, SwapStatusCancelled, SwapStatusCompleted:
		return true
	default:
		return false
	}
}

// SwapCreate represents the request structure for creating a swap
type SwapCreate struct {
	RecipientID    uuid.UUID  `json:"recipient_id" binding:"required"`
	RequesterSkill string     `json:"requester_skill" binding:"required"`
	RecipientSkill string     `json:"recipient_skill" binding:"required"`
	Message        *string    `json:"message"`
	ScheduledDate  *time.Time `json:"scheduled_date"`
	Duration       *int       `json:"duration"`
}

// SwapRespond represents the recipient's decision on a pending swap
type SwapRespond struct {
	Status string  `json:"status" binding:"required,oneof=accepted rejected"`
	Notes  *string `json:"notes"`
}

// SwapListFilter narrows the my-swaps listing
type SwapListFilter struct {
	Type   string // "sent", "received" or "all"
	Status SwapStatus
	Page   int
	Limit  int
}
