package okr

import (
	"github.com/google/uuid"

	"github.com/arnold/okrmaster-api/internal/models"
)

// Tab names a slice of the objective list shown to a viewer.
type Tab string

const (
	TabAll      Tab = "all"
	TabMine     Tab = "mine"
	TabTeam     Tab = "team"
	TabSuperior Tab = "superior"
)

// Buckets is the objective set partitioned for one viewer. Every slice keeps
// the input order. All is only filled for owners.
type Buckets struct {
	Mine     []models.Objective `json:"mine"`
	Team     []models.Objective `json:"team"`
	Superior []models.Objective `json:"superior"`
	All      []models.Objective `json:"all,omitempty"`
}

// Tab returns the bucket backing a tab, nil for an unknown tab.
func (b Buckets) Tab(t Tab) []models.Objective {
	switch t {
	case TabMine:
		return b.Mine
	case TabTeam:
		return b.Team
	case TabSuperior:
		return b.Superior
	case TabAll:
		return b.All
	}
	return nil
}

// FilterForViewer partitions objectives for viewerID.
func (p *Policy) FilterForViewer(objectives []models.Objective, viewerID uuid.UUID) Buckets {
	b := Buckets{
		Mine:     []models.Objective{},
		Team:     []models.Objective{},
		Superior: []models.Objective{},
	}
	viewer, ok := p.dir.Person(viewerID)
	if !ok {
		return b
	}

	visible := p.VisibleOwnerIDs(viewerID)
	superiors := IDSet{}
	if m, ok := p.dir.ManagerOf(viewer.ID); ok {
		superiors.add(m.ID)
	}
	if owner, ok := p.organizationOwner(viewer); ok && owner.ID != viewer.ID {
		superiors.add(owner.ID)
	}

	for _, o := range objectives {
		switch {
		case o.OwnerID == viewer.ID:
			b.Mine = append(b.Mine, o)
		case visible.Has(o.OwnerID):
			b.Team = append(b.Team, o)
			if superiors.Has(o.OwnerID) {
				b.Superior = append(b.Superior, o)
			}
		}
	}

	if RoleOf(viewer) == RoleOwner {
		b.All = append([]models.Objective{}, objectives...)
	}
	return b
}

// AvailableTabs lists the tabs offered to viewerID. Mine is always present.
func (p *Policy) AvailableTabs(viewerID uuid.UUID) []Tab {
	viewer, ok := p.dir.Person(viewerID)
	if !ok {
		return []Tab{TabMine}
	}
	if RoleOf(viewer) == RoleOwner {
		return []Tab{TabAll, TabMine}
	}
	return []Tab{TabMine, TabTeam, TabSuperior}
}

// HasTab reports whether t is offered to viewerID.
func (p *Policy) HasTab(viewerID uuid.UUID, t Tab) bool {
	for _, available := range p.AvailableTabs(viewerID) {
		if available == t {
			return true
		}
	}
	return false
}
