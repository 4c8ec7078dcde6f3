package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// App roles as stored in profiles.app_role. Parsing into the closed policy
// variant lives in the okr package.
const (
	AppRoleOwner      = "owner"
	AppRoleManager    = "manager"
	AppRoleHRDirector = "hr_director"
	AppRoleEmployee   = "employee"
)

type Profile struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email          string         `json:"email" gorm:"uniqueIndex;not null"`
	Password       string         `json:"-"`
	Name           string         `json:"name"`
	JobTitle       string         `json:"jobTitle"`
	AppRole        string         `json:"appRole" gorm:"not null;default:'employee'"`
	OrganizationID *uuid.UUID     `json:"organizationId" gorm:"type:uuid;index"`
	ManagerID      *uuid.UUID     `json:"managerId" gorm:"type:uuid;index"`
	Avatar         string         `json:"avatar"`
	Color          string         `json:"color"`
	FCMToken       string         `json:"-" gorm:"column:fcm_token"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.AppRole == "" {
		p.AppRole = AppRoleEmployee
	}
	if p.Avatar == "" {
		p.Avatar = Initials(p.Name)
	}
	if p.Color == "" {
		p.Color = "bg-slate-600"
	}
	return nil
}

// InOrganization reports whether the profile belongs to orgID.
func (p *Profile) InOrganization(orgID uuid.UUID) bool {
	return p.OrganizationID != nil && *p.OrganizationID == orgID
}

// Initials returns the upper-case initials of the first and last word of a
// display name, "U" when empty.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "U"
	}
	first := []rune(fields[0])
	out := strings.ToUpper(string(first[0]))
	if len(fields) > 1 {
		last := []rune(fields[len(fields)-1])
		out += strings.ToUpper(string(last[0]))
	}
	return out
}

// Auth DTOs
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	JobTitle *string `json:"jobTitle" validate:"omitempty,max=120"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=4"`
	Color    *string `json:"color" validate:"omitempty,max=64"`
}

// AssignProfileRequest is the administrative write on the reporting graph.
// ClearManager detaches the person from their manager.
type AssignProfileRequest struct {
	AppRole      *string    `json:"appRole" validate:"omitempty,oneof=owner manager hr_director employee"`
	ManagerID    *uuid.UUID `json:"managerId"`
	ClearManager bool       `json:"clearManager"`
}

type AuthResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// PersonInfo is the public directory view of a profile.
type PersonInfo struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	JobTitle  string     `json:"jobTitle"`
	AppRole   string     `json:"appRole"`
	ManagerID *uuid.UUID `json:"managerId"`
	Avatar    string     `json:"avatar"`
	Color     string     `json:"color"`
}

func (p *Profile) Info() PersonInfo {
	return PersonInfo{
		ID:        p.ID,
		Name:      p.Name,
		JobTitle:  p.JobTitle,
		AppRole:   p.AppRole,
		ManagerID: p.ManagerID,
		Avatar:    p.Avatar,
		Color:     p.Color,
	}
}
