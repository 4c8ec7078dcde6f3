package okr

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/arnold/okrmaster-api/internal/models"
)

func TestParseRole(t *testing.T) {
	tests := map[string]Role{
		"owner":       RoleOwner,
		"Owner":       RoleOwner,
		"manager":     RoleTeamLead,
		"hr_director": RoleTeamLead,
		"HR Director": RoleTeamLead,
		"hr-director": RoleTeamLead,
		"employee":    RoleEmployee,
		"":            RoleEmployee,
		"ceo":         RoleEmployee,
		"superadmin":  RoleEmployee,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseRole(in), "ParseRole(%q)", in)
	}
}

func TestVisibleOwnerIDs_AlwaysIncludesSelfAndOwner(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	for _, viewer := range []models.Profile{o.owner, o.manager, o.hr, o.employee, o.intern} {
		ids := p.VisibleOwnerIDs(viewer.ID)
		assert.True(t, ids.Has(viewer.ID), "%s sees self", viewer.Name)
		assert.True(t, ids.Has(o.owner.ID), "%s sees owner", viewer.Name)
		assert.False(t, ids.Has(o.outsider.ID), "%s never sees another organization", viewer.Name)
	}
}

func TestVisibleOwnerIDs_Owner(t *testing.T) {
	o := newOrg(t)
	ids := o.policy().VisibleOwnerIDs(o.owner.ID)

	assert.ElementsMatch(t,
		[]uuid.UUID{o.owner.ID, o.manager.ID, o.hr.ID, o.employee.ID, o.intern.ID},
		ids.Slice())
}

func TestVisibleOwnerIDs_TeamLead(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	assert.ElementsMatch(t,
		[]uuid.UUID{o.manager.ID, o.owner.ID, o.employee.ID, o.intern.ID},
		p.VisibleOwnerIDs(o.manager.ID).Slice())

	// an hr director without reports sees self and owner only
	assert.ElementsMatch(t,
		[]uuid.UUID{o.hr.ID, o.owner.ID},
		p.VisibleOwnerIDs(o.hr.ID).Slice())
}

func TestVisibleOwnerIDs_Employee(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	assert.ElementsMatch(t,
		[]uuid.UUID{o.employee.ID, o.owner.ID, o.manager.ID},
		p.VisibleOwnerIDs(o.employee.ID).Slice())

	// unrecognized roles fall back to employee visibility
	assert.ElementsMatch(t,
		[]uuid.UUID{o.intern.ID, o.owner.ID, o.manager.ID},
		p.VisibleOwnerIDs(o.intern.ID).Slice())
}

func TestVisibleOwnerIDs_ManagerIsOwnerDeduplicated(t *testing.T) {
	o := newOrg(t)
	direct := person("Dina", models.AppRoleEmployee, o.id, &o.owner)
	p := NewPolicy(NewDirectory(append(o.people(), direct)))

	assert.ElementsMatch(t, []uuid.UUID{direct.ID, o.owner.ID}, p.VisibleOwnerIDs(direct.ID).Slice())
}

func TestVisibleOwnerIDs_NoOwnerIsNoop(t *testing.T) {
	orgID := uuid.New()
	lead := person("Lead", models.AppRoleManager, orgID, nil)
	member := person("Member", models.AppRoleEmployee, orgID, &lead)
	p := NewPolicy(NewDirectory([]models.Profile{lead, member}))

	assert.ElementsMatch(t, []uuid.UUID{member.ID, lead.ID}, p.VisibleOwnerIDs(member.ID).Slice())
	assert.ElementsMatch(t, []uuid.UUID{lead.ID, member.ID}, p.VisibleOwnerIDs(lead.ID).Slice())
}

func TestVisibleOwnerIDs_UnknownViewer(t *testing.T) {
	o := newOrg(t)
	assert.Empty(t, o.policy().VisibleOwnerIDs(uuid.New()))
}

func TestVisibleOwnerIDs_SelfManagedSeesNoManager(t *testing.T) {
	orgID := uuid.New()
	owner := person("Owner", models.AppRoleOwner, orgID, nil)
	loop := person("Loop", models.AppRoleEmployee, orgID, nil)
	loop.ManagerID = &loop.ID
	p := NewPolicy(NewDirectory([]models.Profile{owner, loop}))

	assert.ElementsMatch(t, []uuid.UUID{loop.ID, owner.ID}, p.VisibleOwnerIDs(loop.ID).Slice())
}

func TestVisibleOwnerIDs_Idempotent(t *testing.T) {
	o := newOrg(t)
	p := o.policy()
	for _, viewer := range o.people() {
		assert.Equal(t, p.VisibleOwnerIDs(viewer.ID), p.VisibleOwnerIDs(viewer.ID))
	}
}

func TestCanAdopt(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	tests := []struct {
		name   string
		viewer uuid.UUID
		source uuid.UUID
		want   bool
	}{
		{"owner never adopts from manager", o.owner.ID, o.manager.ID, false},
		{"owner never adopts from self", o.owner.ID, o.owner.ID, false},
		{"owner never adopts from employee", o.owner.ID, o.employee.ID, false},
		{"employee from direct manager", o.employee.ID, o.manager.ID, true},
		{"employee from owner", o.employee.ID, o.owner.ID, true},
		{"employee from hr (not their manager)", o.employee.ID, o.hr.ID, false},
		{"employee from peer", o.employee.ID, o.intern.ID, false},
		{"employee from self", o.employee.ID, o.employee.ID, false},
		{"intern behaves as employee", o.intern.ID, o.manager.ID, true},
		{"manager from owner", o.manager.ID, o.owner.ID, true},
		{"manager from own report is downward", o.manager.ID, o.employee.ID, false},
		{"hr director from owner", o.hr.ID, o.owner.ID, true},
		{"hr director from manager", o.hr.ID, o.manager.ID, false},
		{"unknown source", o.employee.ID, uuid.New(), false},
		{"unknown viewer", uuid.New(), o.owner.ID, false},
		{"other organization owner", o.employee.ID, o.outsider.ID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanAdopt(tt.viewer, tt.source))
		})
	}
}

func TestCanAdopt_TeamLeadUnderTeamLead(t *testing.T) {
	o := newOrg(t)
	sub := person("Sub", models.AppRoleManager, o.id, &o.manager)
	p := NewPolicy(NewDirectory(append(o.people(), sub)))

	assert.False(t, p.CanAdopt(sub.ID, o.manager.ID), "team leads adopt from the owner only")
	assert.True(t, p.CanAdopt(sub.ID, o.owner.ID))
}

func TestCanView(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	assert.True(t, p.CanView(o.employee.ID, o.manager.ID))
	assert.False(t, p.CanView(o.employee.ID, o.hr.ID))
	assert.True(t, p.CanView(o.manager.ID, o.intern.ID))
	assert.True(t, p.CanView(o.owner.ID, o.intern.ID))
}
