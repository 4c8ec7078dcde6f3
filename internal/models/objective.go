package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryBusiness = "Business"
	CategoryPersonal = "Personal"
	CategoryHealth   = "Health"
	CategoryLearning = "Learning"
)

type Objective struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID        uuid.UUID      `json:"ownerId" gorm:"type:uuid;index;not null"`
	OrganizationID uuid.UUID      `json:"organizationId" gorm:"type:uuid;index;not null"`
	Title          string         `json:"title" gorm:"not null"`
	Description    *string        `json:"description"`
	Category       string         `json:"category" gorm:"not null;default:'Business'"`
	LastCoachingAt *time.Time     `json:"lastCoachingAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
	KeyResults     []KeyResult    `json:"keyResults" gorm:"foreignKey:ObjectiveID;constraint:OnDelete:CASCADE"`
}

func (o *Objective) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Category == "" {
		o.Category = CategoryBusiness
	}
	return nil
}

// Progress is the rounded mean of the key results' progress, 0 without key results.
func (o *Objective) Progress() int {
	if len(o.KeyResults) == 0 {
		return 0
	}
	total := 0.0
	for i := range o.KeyResults {
		total += o.KeyResults[i].Progress()
	}
	return int(math.Round(total / float64(len(o.KeyResults))))
}

// FindKeyResult returns the key result with the given ID, nil if absent.
func (o *Objective) FindKeyResult(id uuid.UUID) *KeyResult {
	for i := range o.KeyResults {
		if o.KeyResults[i].ID == id {
			return &o.KeyResults[i]
		}
	}
	return nil
}

// Objective DTOs
type CreateObjectiveRequest struct {
	Title       string                   `json:"title" validate:"required,max=300"`
	Description *string                  `json:"description" validate:"omitempty,max=2000"`
	Category    string                   `json:"category" validate:"omitempty,oneof=Business Personal Health Learning"`
	KeyResults  []CreateKeyResultRequest `json:"keyResults" validate:"required,min=1,dive"`
}

type UpdateObjectiveRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=300"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category" validate:"omitempty,oneof=Business Personal Health Learning"`
}

// ObjectiveView is an objective as rendered for a particular viewer.
type ObjectiveView struct {
	Objective
	Progress  int         `json:"progress"`
	Owner     *PersonInfo `json:"owner,omitempty"`
	Adoptable bool        `json:"adoptable"`
}

// ObjectiveSummary is the per-objective line of a monthly report.
type ObjectiveSummary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Progress   int       `json:"progress"`
	KeyResults int       `json:"keyResults"`
}
