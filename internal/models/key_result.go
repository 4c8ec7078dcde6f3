package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KeyResult struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ObjectiveID       uuid.UUID      `json:"objectiveId" gorm:"type:uuid;index;not null"`
	Title             string         `json:"title" gorm:"not null"`
	CurrentValue      float64        `json:"currentValue" gorm:"not null;default:0"`
	TargetValue       float64        `json:"targetValue" gorm:"not null"`
	Unit              string         `json:"unit"`
	ParentKeyResultID *uuid.UUID     `json:"parentKeyResultId" gorm:"type:uuid;index"`
	Adopted           bool           `json:"adopted" gorm:"default:false"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

func (k *KeyResult) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// Progress is current/target as a percentage clamped to [0, 100].
// A zero target counts as no progress.
func (k *KeyResult) Progress() float64 {
	if k.TargetValue == 0 {
		return 0
	}
	p := k.CurrentValue / k.TargetValue * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// KeyResult DTOs
type CreateKeyResultRequest struct {
	Title        string  `json:"title" validate:"required,max=300"`
	CurrentValue float64 `json:"currentValue"`
	TargetValue  float64 `json:"targetValue" validate:"required,ne=0"`
	Unit         string  `json:"unit" validate:"max=32"`
}

type UpdateKeyResultRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=1,max=300"`
	CurrentValue *float64 `json:"currentValue"`
	TargetValue  *float64 `json:"targetValue" validate:"omitempty,ne=0"`
	Unit         *string  `json:"unit" validate:"omitempty,max=32"`
}

// AdoptKeyResultRequest selects how the adopted objective gets its title:
// "manual" keeps the key result title, "ai" asks the coach for a rephrasing.
type AdoptKeyResultRequest struct {
	Mode  string `json:"mode" validate:"omitempty,oneof=manual ai"`
	Title string `json:"title" validate:"max=300"`
}
