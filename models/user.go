package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string         `json:"name" gorm:"size:100;not null"`
	Email         string         `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash  string         `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	Location      *string        `json:"location" gorm:"size:255"`
	AvatarURL     *string        `json:"avatar_url" gorm:"size:255"`
	SkillsOffered pq.StringArray `json:"skills_offered" gorm:"type:text[]"`
	SkillsWanted  pq.StringArray `json:"skills_wanted" gorm:"type:text[]"`
	Availability  *string        `json:"availability" gorm:"size:255"`
	Bio           *string        `json:"bio" gorm:"type:text"`
	IsPublic      bool           `json:"is_public" gorm:"default:true"`
	IsBanned      bool           `json:"is_banned" gorm:"default:false"`
	IsAdmin       bool           `json:"is_admin" gorm:"default:false"`

	// Aggregate rating fields, written only by the rating aggregator.
	Rating       float64 `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalRatings int     `json:"total_ratings" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that assigns the primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PublicProfile strips credentials and moderation flags from a user.
type PublicProfile struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Location      *string        `json:"location"`
	AvatarURL     *string        `json:"avatar_url"`
	SkillsOffered pq.StringArray `json:"skills_offered"`
	SkillsWanted  pq.StringArray `json:"skills_wanted"`
	Availability  *string        `json:"availability"`
	Bio           *string        `json:"bio"`
	IsPublic      bool           `json:"is_public"`
	Rating        float64        `json:"rating"`
	TotalRatings  int            `json:"total_ratings"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Location:      u.Location,
		AvatarURL:     u.AvatarURL,
		SkillsOffered: u.SkillsOffered,
		SkillsWanted:  u.SkillsWanted,
		Availability:  u.Availability,
		Bio:           u.Bio,
		IsPublic:      u.IsPublic,
		Rating:        u.Rating,
		TotalRatings:  u.TotalRatings,
		CreatedAt:     u.CreatedAt,
	}
}

// UserProfileUpdate enumerates exactly the fields a user may patch on their
// own profile. Status, rating and moderation flags are not settable here.
type UserProfileUpdate struct {
	Name          *string   `json:"name"`
	Location      *string   `json:"location"`
	AvatarURL     *string   `json:"avatar_url"`
	SkillsOffered *[]string `json:"skills_offered"`
	SkillsWanted  *[]string `json:"skills_wanted"`
	Availability  *string   `json:"availability"`
	Bio           *string   `json:"bio"`
	IsPublic      *bool     `json:"is_public"`
}
