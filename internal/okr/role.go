package okr

import (
	"strings"

	"github.com/arnold/okrmaster-api/internal/models"
)

// Role is the closed set of app roles the policy understands.
// The zero value is RoleEmployee so unknown input never gains visibility.
type Role int

const (
	RoleEmployee Role = iota
	RoleTeamLead
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleTeamLead:
		return "team_lead"
	default:
		return "employee"
	}
}

// ParseRole maps a stored app role onto the policy variant. Manager and HR
// director spellings collapse into RoleTeamLead; anything unrecognized is an
// employee.
func ParseRole(appRole string) Role {
	key := strings.ToLower(strings.TrimSpace(appRole))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "owner":
		return RoleOwner
	case "manager", "hrdirector", "teamlead":
		return RoleTeamLead
	default:
		return RoleEmployee
	}
}

// RoleOf returns the policy role of a profile.
func RoleOf(p *models.Profile) Role {
	return ParseRole(p.AppRole)
}
