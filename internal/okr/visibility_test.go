package okr

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/okrmaster-api/internal/models"
)

func TestFilterForViewer_Employee(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	ownerObj := objective(o.owner, "Win the market")
	managerObj := objective(o.manager, "Scale sales")
	hrObj := objective(o.hr, "Hire well")
	mine := objective(o.employee, "Close deals")
	peerObj := objective(o.intern, "Learn the product")
	all := []models.Objective{mine, managerObj, peerObj, hrObj, ownerObj}

	b := p.FilterForViewer(all, o.employee.ID)

	assert.Equal(t, []uuid.UUID{mine.ID}, ids(b.Mine))
	assert.Equal(t, []uuid.UUID{managerObj.ID, ownerObj.ID}, ids(b.Team), "source order is kept")
	assert.Equal(t, []uuid.UUID{managerObj.ID, ownerObj.ID}, ids(b.Superior))
	assert.Nil(t, b.All)
}

func TestFilterForViewer_TeamLead(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	ownerObj := objective(o.owner, "Win the market")
	managerObj := objective(o.manager, "Scale sales")
	empObj := objective(o.employee, "Close deals")
	internObj := objective(o.intern, "Learn the product")
	hrObj := objective(o.hr, "Hire well")
	all := []models.Objective{ownerObj, managerObj, empObj, internObj, hrObj}

	b := p.FilterForViewer(all, o.manager.ID)

	assert.Equal(t, []uuid.UUID{managerObj.ID}, ids(b.Mine))
	assert.Equal(t, []uuid.UUID{ownerObj.ID, empObj.ID, internObj.ID}, ids(b.Team))
	assert.Equal(t, []uuid.UUID{ownerObj.ID}, ids(b.Superior))
	assert.Nil(t, b.All)
	assert.Equal(t, []Tab{TabMine, TabTeam, TabSuperior}, p.AvailableTabs(o.manager.ID))
}

func TestFilterForViewer_Owner(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	ownerObj := objective(o.owner, "Win the market")
	managerObj := objective(o.manager, "Scale sales")
	empObj := objective(o.employee, "Close deals")
	all := []models.Objective{empObj, ownerObj, managerObj}

	b := p.FilterForViewer(all, o.owner.ID)

	assert.Equal(t, []uuid.UUID{ownerObj.ID}, ids(b.Mine))
	assert.Equal(t, []uuid.UUID{empObj.ID, managerObj.ID}, ids(b.Team))
	assert.Empty(t, b.Superior)
	assert.Equal(t, ids(all), ids(b.All))
	assert.Equal(t, []Tab{TabAll, TabMine}, p.AvailableTabs(o.owner.ID))
	assert.Equal(t, ids(all), ids(b.Tab(TabAll)))
}

func TestFilterForViewer_MineAlwaysSelfOwned(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	var all []models.Objective
	for _, person := range o.people() {
		all = append(all, objective(person, person.Name+"'s goal"))
	}
	for _, viewer := range o.people() {
		b := p.FilterForViewer(all, viewer.ID)
		require.Len(t, b.Mine, 1)
		assert.Equal(t, viewer.ID, b.Mine[0].OwnerID)
		for _, obj := range b.Team {
			assert.NotEqual(t, viewer.ID, obj.OwnerID)
		}
		assert.True(t, p.HasTab(viewer.ID, TabMine))
	}
}

func TestFilterForViewer_EmptyAndUnknown(t *testing.T) {
	o := newOrg(t)
	p := o.policy()

	b := p.FilterForViewer(nil, o.owner.ID)
	assert.Empty(t, b.Mine)
	assert.Empty(t, b.Team)
	assert.Empty(t, b.Superior)
	assert.Empty(t, b.All)

	b = p.FilterForViewer([]models.Objective{objective(o.owner, "x")}, uuid.New())
	assert.Empty(t, b.Mine)
	assert.Empty(t, b.Team)
	assert.Nil(t, b.All)
	assert.Equal(t, []Tab{TabMine}, p.AvailableTabs(uuid.New()))
}

func TestFilterForViewer_Idempotent(t *testing.T) {
	o := newOrg(t)
	p := o.policy()
	all := []models.Objective{objective(o.owner, "a"), objective(o.manager, "b"), objective(o.employee, "c")}

	first := p.FilterForViewer(all, o.employee.ID)
	second := p.FilterForViewer(all, o.employee.ID)
	assert.Equal(t, first, second)
}

func TestBuckets_TabUnknown(t *testing.T) {
	assert.Nil(t, Buckets{}.Tab(Tab("bogus")))
}
