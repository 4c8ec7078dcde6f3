package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityObjectiveCreated  = "objective_created"
	ActivityObjectiveUpdated  = "objective_updated"
	ActivityObjectiveDeleted  = "objective_deleted"
	ActivityKeyResultAdopted  = "key_result_adopted"
	ActivityCoachingRequested = "coaching_requested"
	ActivityMemberJoined      = "member_joined"
	ActivityCommentAdded      = "comment_added"
)

type Activity struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID      `json:"organizationId" gorm:"type:uuid;index;not null"`
	ProfileID      uuid.UUID      `json:"profileId" gorm:"type:uuid;index;not null"`
	ActionType     string         `json:"actionType" gorm:"not null"`
	TargetID       *uuid.UUID     `json:"targetId" gorm:"type:uuid"` // objective or key result ID depending on action
	Metadata       *string        `json:"metadata"`                  // JSON string for extra context
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Profile Profile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
