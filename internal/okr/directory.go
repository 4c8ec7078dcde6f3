package okr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/arnold/okrmaster-api/internal/models"
)

// Directory is an immutable snapshot of people and their reporting lines.
// Returned profiles point into the snapshot and must be treated as read-only.
type Directory struct {
	people  map[uuid.UUID]*models.Profile
	order   []uuid.UUID
	reports map[uuid.UUID][]uuid.UUID
}

// NewDirectory copies people into a new snapshot. When an ID repeats, the
// first occurrence wins.
func NewDirectory(people []models.Profile) *Directory {
	d := &Directory{
		people:  make(map[uuid.UUID]*models.Profile, len(people)),
		order:   make([]uuid.UUID, 0, len(people)),
		reports: make(map[uuid.UUID][]uuid.UUID),
	}
	for i := range people {
		if _, dup := d.people[people[i].ID]; dup {
			continue
		}
		p := people[i]
		d.people[p.ID] = &p
		d.order = append(d.order, p.ID)
	}
	for _, id := range d.order {
		if m, ok := d.ManagerOf(id); ok {
			d.reports[m.ID] = append(d.reports[m.ID], id)
		}
	}
	return d
}

// Person looks up a profile by ID.
func (d *Directory) Person(id uuid.UUID) (*models.Profile, bool) {
	p, ok := d.people[id]
	return p, ok
}

// ManagerOf resolves the manager of id. Self references, unknown managers and
// managers outside the person's organization resolve to none.
func (d *Directory) ManagerOf(id uuid.UUID) (*models.Profile, bool) {
	p, ok := d.people[id]
	if !ok || p.ManagerID == nil || *p.ManagerID == id {
		return nil, false
	}
	m, ok := d.people[*p.ManagerID]
	if !ok || !sameOrganization(p, m) {
		return nil, false
	}
	return m, true
}

// DirectReports returns everyone whose manager resolves to id, in load order.
func (d *Directory) DirectReports(id uuid.UUID) []*models.Profile {
	ids := d.reports[id]
	out := make([]*models.Profile, 0, len(ids))
	for _, rid := range ids {
		out = append(out, d.people[rid])
	}
	return out
}

// All returns the members of an organization in load order.
func (d *Directory) All(orgID uuid.UUID) []*models.Profile {
	var out []*models.Profile
	for _, id := range d.order {
		if p := d.people[id]; p.InOrganization(orgID) {
			out = append(out, p)
		}
	}
	return out
}

// Owners returns every member of orgID flagged as owner.
func (d *Directory) Owners(orgID uuid.UUID) []*models.Profile {
	var out []*models.Profile
	for _, p := range d.All(orgID) {
		if RoleOf(p) == RoleOwner {
			out = append(out, p)
		}
	}
	return out
}

// Owner returns the organization owner. With several owners flagged the
// first one in load order is used; Validate reports the conflict.
func (d *Directory) Owner(orgID uuid.UUID) (*models.Profile, bool) {
	owners := d.Owners(orgID)
	if len(owners) == 0 {
		return nil, false
	}
	return owners[0], true
}

// WouldCycle reports whether making managerID the manager of personID would
// create a self loop or a cycle in the reporting graph.
func (d *Directory) WouldCycle(personID, managerID uuid.UUID) bool {
	if personID == managerID {
		return true
	}
	seen := map[uuid.UUID]bool{}
	cur := managerID
	for {
		if cur == personID {
			return true
		}
		if seen[cur] {
			// pre-existing loop above the new manager that does not include personID
			return false
		}
		seen[cur] = true
		p, ok := d.people[cur]
		if !ok || p.ManagerID == nil {
			return false
		}
		cur = *p.ManagerID
	}
}

// Validate reports configuration problems in an organization's reporting
// graph. Every returned error wraps ErrConfiguration.
func (d *Directory) Validate(orgID uuid.UUID) error {
	var errs []error
	if owners := d.Owners(orgID); len(owners) > 1 {
		errs = append(errs, fmt.Errorf("%w: %d owners in organization %s", ErrConfiguration, len(owners), orgID))
	}
	for _, p := range d.All(orgID) {
		if p.ManagerID == nil {
			continue
		}
		mid := *p.ManagerID
		switch m, ok := d.people[mid]; {
		case mid == p.ID:
			errs = append(errs, fmt.Errorf("%w: %s manages themself", ErrConfiguration, p.ID))
		case !ok:
			errs = append(errs, fmt.Errorf("%w: %s reports to unknown %s", ErrConfiguration, p.ID, mid))
		case !sameOrganization(p, m):
			errs = append(errs, fmt.Errorf("%w: %s reports to %s in another organization", ErrConfiguration, p.ID, mid))
		case d.WouldCycle(p.ID, mid):
			errs = append(errs, fmt.Errorf("%w: reporting cycle through %s", ErrConfiguration, p.ID))
		}
	}
	return errors.Join(errs...)
}

func sameOrganization(a, b *models.Profile) bool {
	return a.OrganizationID != nil && b.OrganizationID != nil && *a.OrganizationID == *b.OrganizationID
}
