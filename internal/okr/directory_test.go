package okr

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/okrmaster-api/internal/models"
)

func TestDirectory_ManagerOfAndReports(t *testing.T) {
	o := newOrg(t)
	d := NewDirectory(o.people())

	m, ok := d.ManagerOf(o.employee.ID)
	require.True(t, ok)
	assert.Equal(t, o.manager.ID, m.ID)

	_, ok = d.ManagerOf(o.owner.ID)
	assert.False(t, ok)

	reports := d.DirectReports(o.manager.ID)
	require.Len(t, reports, 2)
	assert.Equal(t, o.employee.ID, reports[0].ID)
	assert.Equal(t, o.intern.ID, reports[1].ID)

	// every direct report resolves back to its manager
	for _, p := range d.All(o.id) {
		for _, r := range d.DirectReports(p.ID) {
			back, ok := d.ManagerOf(r.ID)
			require.True(t, ok)
			assert.Equal(t, p.ID, back.ID)
		}
	}

	assert.Empty(t, d.DirectReports(o.employee.ID))
	assert.Len(t, d.All(o.id), 5)
}

func TestDirectory_SelfManagerResolvesToNone(t *testing.T) {
	orgID := uuid.New()
	p := person("Loop", models.AppRoleEmployee, orgID, nil)
	p.ManagerID = &p.ID
	d := NewDirectory([]models.Profile{p})

	_, ok := d.ManagerOf(p.ID)
	assert.False(t, ok)
	assert.Empty(t, d.DirectReports(p.ID))

	err := d.Validate(orgID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestDirectory_CrossOrganizationManagerIgnored(t *testing.T) {
	o := newOrg(t)
	stray := person("Stray", models.AppRoleEmployee, o.id, &o.outsider)
	d := NewDirectory(append(o.people(), stray))

	_, ok := d.ManagerOf(stray.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, d.Validate(o.id), ErrConfiguration)
}

func TestDirectory_Owner(t *testing.T) {
	o := newOrg(t)
	d := NewDirectory(o.people())

	owner, ok := d.Owner(o.id)
	require.True(t, ok)
	assert.Equal(t, o.owner.ID, owner.ID)
	assert.NoError(t, d.Validate(o.id))

	_, ok = d.Owner(uuid.New())
	assert.False(t, ok)

	second := person("Second", models.AppRoleOwner, o.id, nil)
	d = NewDirectory(append(o.people(), second))
	owner, ok = d.Owner(o.id)
	require.True(t, ok)
	assert.Equal(t, o.owner.ID, owner.ID, "first owner in load order wins")
	assert.ErrorIs(t, d.Validate(o.id), ErrConfiguration)
}

func TestDirectory_WouldCycle(t *testing.T) {
	o := newOrg(t)
	d := NewDirectory(o.people())

	assert.True(t, d.WouldCycle(o.employee.ID, o.employee.ID))
	assert.True(t, d.WouldCycle(o.owner.ID, o.employee.ID), "owner under their own grand-report")
	assert.True(t, d.WouldCycle(o.manager.ID, o.intern.ID))
	assert.False(t, d.WouldCycle(o.employee.ID, o.hr.ID))
	assert.False(t, d.WouldCycle(o.hr.ID, o.manager.ID))
}

func TestDirectory_DuplicateIDsKeepFirst(t *testing.T) {
	o := newOrg(t)
	dup := o.employee
	dup.Name = "Impostor"
	d := NewDirectory(append(o.people(), dup))

	p, ok := d.Person(o.employee.ID)
	require.True(t, ok)
	assert.Equal(t, "Elena", p.Name)
}

func TestDirectory_TwoNodeCycle(t *testing.T) {
	orgID := uuid.New()
	owner := person("Olga", models.AppRoleOwner, orgID, nil)
	a := person("Ada", models.AppRoleManager, orgID, nil)
	b := person("Ben", models.AppRoleEmployee, orgID, &a)
	a.ManagerID = &b.ID
	d := NewDirectory([]models.Profile{owner, a, b})

	err := d.Validate(orgID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "reporting cycle through "+a.ID.String())
	assert.Contains(t, err.Error(), "reporting cycle through "+b.ID.String())

	assert.True(t, d.WouldCycle(a.ID, b.ID))
	assert.True(t, d.WouldCycle(b.ID, a.ID))

	// policy queries still terminate on the malformed graph
	p := NewPolicy(d)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID, owner.ID}, p.VisibleOwnerIDs(a.ID).Slice())
	assert.ElementsMatch(t, []uuid.UUID{b.ID, a.ID, owner.ID}, p.VisibleOwnerIDs(b.ID).Slice())
}
