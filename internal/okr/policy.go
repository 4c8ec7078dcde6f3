// Package okr holds the visibility and adoption rules of the OKR model.
// Everything here is a pure function of an already loaded Directory and
// objective set; callers pass the viewer explicitly.
package okr

import (
	"sort"

	"github.com/google/uuid"

	"github.com/arnold/okrmaster-api/internal/models"
)

// IDSet is a set of profile IDs.
type IDSet map[uuid.UUID]struct{}

func (s IDSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) add(id uuid.UUID) {
	s[id] = struct{}{}
}

// Slice returns the IDs sorted by their string form.
func (s IDSet) Slice() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Policy answers visibility and adoption questions against one Directory.
type Policy struct {
	dir *Directory
}

func NewPolicy(dir *Directory) *Policy {
	return &Policy{dir: dir}
}

func (p *Policy) Directory() *Directory {
	return p.dir
}

// organizationOwner resolves the owner of the viewer's organization.
func (p *Policy) organizationOwner(viewer *models.Profile) (*models.Profile, bool) {
	if viewer.OrganizationID == nil {
		return nil, false
	}
	return p.dir.Owner(*viewer.OrganizationID)
}

// VisibleOwnerIDs returns the people whose objectives viewerID may see.
// An unknown viewer sees nothing.
func (p *Policy) VisibleOwnerIDs(viewerID uuid.UUID) IDSet {
	ids := IDSet{}
	viewer, ok := p.dir.Person(viewerID)
	if !ok {
		return ids
	}
	ids.add(viewer.ID)

	role := RoleOf(viewer)
	if role == RoleOwner {
		if viewer.OrganizationID != nil {
			for _, person := range p.dir.All(*viewer.OrganizationID) {
				ids.add(person.ID)
			}
		}
		return ids
	}

	if owner, ok := p.organizationOwner(viewer); ok {
		ids.add(owner.ID)
	}

	switch role {
	case RoleTeamLead:
		for _, r := range p.dir.DirectReports(viewer.ID) {
			ids.add(r.ID)
		}
	default:
		if m, ok := p.dir.ManagerOf(viewer.ID); ok {
			ids.add(m.ID)
		}
	}
	return ids
}

// CanView reports whether viewerID may see objectives owned by ownerID.
func (p *Policy) CanView(viewerID, ownerID uuid.UUID) bool {
	return p.VisibleOwnerIDs(viewerID).Has(ownerID)
}

// CanAdopt reports whether viewerID may copy a key result owned by
// sourceOwnerID into a personal objective. Adoption only flows upward: from
// the organization owner for every non-owner, and additionally from the
// direct manager for employees.
func (p *Policy) CanAdopt(viewerID, sourceOwnerID uuid.UUID) bool {
	viewer, ok := p.dir.Person(viewerID)
	if !ok {
		return false
	}
	role := RoleOf(viewer)
	if role == RoleOwner {
		return false
	}
	source, ok := p.dir.Person(sourceOwnerID)
	if !ok || source.ID == viewer.ID || !sameOrganization(viewer, source) {
		return false
	}
	if owner, ok := p.organizationOwner(viewer); ok && owner.ID == source.ID {
		return true
	}
	if role == RoleEmployee {
		m, ok := p.dir.ManagerOf(viewer.ID)
		return ok && m.ID == source.ID
	}
	return false
}
