package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationKeyResultAdopted = "key_result_adopted"
	NotificationCommentReceived  = "comment_received"
	NotificationMemberJoined     = "member_joined"
)

type Notification struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ProfileID uuid.UUID      `json:"profileId" gorm:"type:uuid;index;not null"`
	Type      string         `json:"type" gorm:"not null"`
	Title     string         `json:"title" gorm:"not null"`
	Body      string         `json:"body"`
	Read      bool           `json:"read" gorm:"default:false"`
	Metadata  *string        `json:"metadata"` // JSON string for navigation context (objectiveId, keyResultId, etc.)
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type RegisterDeviceTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
