package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationInvite lets a new profile join an organization with a preset
// app role and manager.
type OrganizationInvite struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID      `json:"organizationId" gorm:"type:uuid;index;not null"`
	InviterID      uuid.UUID      `json:"inviterId" gorm:"type:uuid;not null"`
	InviteCode     string         `json:"inviteCode" gorm:"uniqueIndex;not null"`
	AppRole        string         `json:"appRole" gorm:"not null;default:'employee'"`
	ManagerID      *uuid.UUID     `json:"managerId" gorm:"type:uuid"`
	ExpiresAt      *time.Time     `json:"expiresAt"`
	MaxUses        int            `json:"maxUses" gorm:"default:0"` // 0 = unlimited
	UsedCount      int            `json:"usedCount" gorm:"default:0"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (oi *OrganizationInvite) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	if oi.InviteCode == "" {
		oi.InviteCode = generateInviteCode()
	}
	if oi.AppRole == "" {
		oi.AppRole = AppRoleEmployee
	}
	return nil
}

// IsValid checks if the invite is still usable
func (oi *OrganizationInvite) IsValid(now time.Time) bool {
	if oi.ExpiresAt != nil && now.After(*oi.ExpiresAt) {
		return false
	}
	if oi.MaxUses > 0 && oi.UsedCount >= oi.MaxUses {
		return false
	}
	return true
}

func generateInviteCode() string {
	b := make([]byte, 6) // 12 hex chars
	rand.Read(b)
	return hex.EncodeToString(b)
}

type CreateInviteRequest struct {
	MaxUses   int        `json:"maxUses" validate:"min=0"`   // 0 = unlimited
	ExpiresIn int        `json:"expiresIn" validate:"min=0"` // hours, 0 = never
	AppRole   string     `json:"appRole" validate:"omitempty,oneof=manager hr_director employee"`
	ManagerID *uuid.UUID `json:"managerId"`
}
