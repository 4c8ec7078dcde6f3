package okr

import (
	"testing"

	"github.com/google/uuid"

	"github.com/arnold/okrmaster-api/internal/models"
)

// org is a small organization used across the tests:
//
//	owner
//	├── manager
//	│   ├── employee
//	│   └── intern (unrecognized app role)
//	└── hr (hr director, no reports)
//
// plus outsider, an owner of a second organization.
type org struct {
	id       uuid.UUID
	owner    models.Profile
	manager  models.Profile
	hr       models.Profile
	employee models.Profile
	intern   models.Profile
	outsider models.Profile
}

func person(name, role string, orgID uuid.UUID, manager *models.Profile) models.Profile {
	p := models.Profile{
		ID:             uuid.New(),
		Name:           name,
		JobTitle:       "Owner", // job title must never influence policy
		AppRole:        role,
		OrganizationID: &orgID,
	}
	if manager != nil {
		mid := manager.ID
		p.ManagerID = &mid
	}
	return p
}

func newOrg(t *testing.T) *org {
	t.Helper()
	o := &org{id: uuid.New()}
	o.owner = person("Olivia", models.AppRoleOwner, o.id, nil)
	o.manager = person("Marco", models.AppRoleManager, o.id, &o.owner)
	o.hr = person("Hana", "HR Director", o.id, &o.owner)
	o.employee = person("Elena", models.AppRoleEmployee, o.id, &o.manager)
	o.intern = person("Ivan", "intern", o.id, &o.manager)
	o.outsider = person("Zed", models.AppRoleOwner, uuid.New(), nil)
	return o
}

func (o *org) people() []models.Profile {
	return []models.Profile{o.owner, o.manager, o.hr, o.employee, o.intern, o.outsider}
}

func (o *org) policy() *Policy {
	return NewPolicy(NewDirectory(o.people()))
}

func objective(owner models.Profile, title string, krs ...models.KeyResult) models.Objective {
	obj := models.Objective{
		ID:             uuid.New(),
		OwnerID:        owner.ID,
		OrganizationID: *owner.OrganizationID,
		Title:          title,
		Category:       models.CategoryBusiness,
	}
	for _, kr := range krs {
		kr.ID = uuid.New()
		kr.ObjectiveID = obj.ID
		obj.KeyResults = append(obj.KeyResults, kr)
	}
	return obj
}

func ids(objs []models.Objective) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.ID)
	}
	return out
}
