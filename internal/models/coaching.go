package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coaching verdicts returned by the AI coach.
const (
	CoachingOnTrack  = "On Track"
	CoachingAtRisk   = "At Risk"
	CoachingOffTrack = "Off Track"
)

// CoachingSession stores one AI coaching verdict for an objective.
type CoachingSession struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ObjectiveID uuid.UUID      `json:"objectiveId" gorm:"type:uuid;index;not null"`
	Status      string         `json:"status" gorm:"not null"`
	Summary     string         `json:"summary" gorm:"type:text"`
	Tips        []string       `json:"tips" gorm:"serializer:json"`
	Progress    int            `json:"progress"` // objective progress when the coaching was requested
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (cs *CoachingSession) BeforeCreate(tx *gorm.DB) error {
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	return nil
}

// AI payloads

type SuggestedKeyResult struct {
	Title       string  `json:"title" validate:"required"`
	TargetValue float64 `json:"targetValue"`
	Unit        string  `json:"unit"`
}

type Suggestion struct {
	ObjectiveTitle string               `json:"objectiveTitle" validate:"required"`
	KeyResults     []SuggestedKeyResult `json:"keyResults" validate:"required,min=1,dive"`
}

type Coaching struct {
	Status  string   `json:"status" validate:"required,oneof='On Track' 'At Risk' 'Off Track'"`
	Summary string   `json:"summary" validate:"required"`
	Tips    []string `json:"tips"`
}

type Adjustment struct {
	ObjectiveID *string `json:"objectiveId"` // nil for general advice
	Suggestion  string  `json:"suggestion" validate:"required"`
	Reason      string  `json:"reason" validate:"required"`
}

type MonthlyReport struct {
	ExecutiveSummary string       `json:"executiveSummary" validate:"required"`
	NextMonthActions []string     `json:"nextMonthActions"`
	Adjustments      []Adjustment `json:"adjustments" validate:"dive"`
}

type SuggestionRequest struct {
	Idea string `json:"idea" validate:"required,max=2000"`
}
