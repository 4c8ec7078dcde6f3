package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ObjectiveID uuid.UUID      `json:"objectiveId" gorm:"type:uuid;index;not null"`
	ProfileID   uuid.UUID      `json:"profileId" gorm:"type:uuid;not null"`
	Text        string         `json:"text" gorm:"type:text;not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Profile Profile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}
