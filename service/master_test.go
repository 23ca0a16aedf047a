package service

import (
	"testing"
	"time"

	"dmc-inventory/apperr"
	"dmc-inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasterCreateDefaultsToActive(t *testing.T) {
	f := newFixture(t)
	it := models.Item{Name: "  Rice ", Unit: "kg"}
	require.NoError(t, f.items.Create(f.ctx, &it))

	assert.NotZero(t, it.ID)
	assert.Equal(t, models.StatusActive, it.Status)
	assert.Equal(t, "Rice", it.Name)
}

func TestMasterCreateRejectsMissingFields(t *testing.T) {
	f := newFixture(t)
	err := f.items.Create(f.ctx, &models.Item{Name: "Rice"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = f.centers.Create(f.ctx, &models.Center{Name: "   "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMasterListOrderAndSoftDelete(t *testing.T) {
	f := newFixture(t)
	sugar := f.item(t, "Sugar", "0")
	f.item(t, "Dhal", "0")
	f.item(t, "Rice", "0")

	require.NoError(t, f.items.SoftDelete(f.ctx, sugar))

	active, err := f.items.ListActive(f.ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Dhal", active[0].Name)
	assert.Equal(t, "Rice", active[1].Name)

	all, err := f.items.List(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.StatusInactive, all[2].Status)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.items.SoftDelete(f.ctx, 999)))
}

func TestMasterUpdate(t *testing.T) {
	f := newFixture(t)
	div := f.division(t, "Kadawatha North")
	id := f.center(t, "Temple Hall")
	before, err := f.centers.Get(f.ctx, id)
	require.NoError(t, err)
	require.NoError(t, f.centers.SoftDelete(f.ctx, id))

	time.Sleep(10 * time.Millisecond)
	updated, err := f.centers.Update(f.ctx, id, &models.Center{Name: "Temple Hall East", DivisionID: &div})
	require.NoError(t, err)

	assert.Equal(t, "Temple Hall East", updated.Name)
	require.NotNil(t, updated.DivisionID)
	assert.Equal(t, div, *updated.DivisionID)
	assert.Empty(t, updated.ContactPerson, "editable columns are overwritten")
	assert.Equal(t, models.StatusInactive, updated.Status, "blank status keeps the stored one")
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))

	_, err = f.centers.Update(f.ctx, 4242, &models.Center{Name: "Ghost"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMasterUnknownDivisionIsReferenceError(t *testing.T) {
	f := newFixture(t)
	missing := uint(77)
	err := f.centers.Create(f.ctx, &models.Center{Name: "Hall", DivisionID: &missing})
	assert.Equal(t, apperr.KindReference, apperr.KindOf(err))
}

func TestMasterListCacheInvalidatedOnWrite(t *testing.T) {
	f := newFixture(t)
	f.items.Cache = NewListCache[models.Item](time.Minute)
	f.item(t, "Rice", "0")

	first, err := f.items.ListActive(f.ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	cached, _, ok := f.items.Cache.Get(false)
	require.True(t, ok)
	assert.Len(t, cached, 1)

	f.item(t, "Dhal", "0")
	_, _, ok = f.items.Cache.Get(false)
	assert.False(t, ok, "create purges the cache")

	second, err := f.items.ListActive(f.ctx)
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestNilListCache(t *testing.T) {
	var c *ListCache[models.Item]
	assert.Nil(t, NewListCache[models.Item](0))
	assert.False(t, c.Put(0, true, []models.Item{{Name: "x"}}))
	_, _, ok := c.Get(true)
	assert.False(t, ok)
	c.Invalidate()
}

func TestListCacheDropsListReadBeforeInvalidate(t *testing.T) {
	c := NewListCache[models.Item](time.Minute)

	_, gen, ok := c.Get(false)
	require.False(t, ok)
	// a write lands between the read and the Put
	c.Invalidate()
	assert.False(t, c.Put(gen, false, []models.Item{{Name: "stale"}}))
	_, _, ok = c.Get(false)
	assert.False(t, ok, "stale list must not be cached")

	_, gen, _ = c.Get(false)
	assert.True(t, c.Put(gen, false, []models.Item{{Name: "fresh"}}))
	rows, _, ok := c.Get(false)
	require.True(t, ok)
	assert.Equal(t, "fresh", rows[0].Name)
}
