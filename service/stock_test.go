package service

import (
	"path/filepath"
	"testing"

	"dmc-inventory/apperr"
	"dmc-inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// riceScenario: 100 in, 20 donated, 30 dispatched, 2 packages of 5.
func riceScenario(t *testing.T, f *fixture) (rice uint) {
	t.Helper()
	rice = f.item(t, "Rice", "10")
	dhal := f.item(t, "Dhal", "5")
	hall := f.center(t, "Temple Hall")

	f.receive(t, day(2024, 3, 1), "CWE", map[uint]string{rice: "60", dhal: "10"})
	f.receive(t, day(2024, 3, 2), "Sathosa", map[uint]string{rice: "40"})
	f.donate(t, day(2024, 3, 3), "Red Cross", rice, "20")
	f.dispatch(t, day(2024, 3, 4), hall, rice, "35", "30")
	tpl := f.template(t, "Family pack", map[uint]string{rice: "5", dhal: "1"})
	f.issueToCenter(t, day(2024, 3, 5), tpl, hall, "2")
	return rice
}

func TestCurrentQuantityIsSignedSum(t *testing.T) {
	f := newFixture(t)
	rice := riceScenario(t, f)

	lvl := f.levelOf(t, rice)
	assert.True(t, lvl.TotalIncoming.Equal(dec("100")))
	assert.True(t, lvl.TotalDonations.Equal(dec("20")))
	assert.True(t, lvl.TotalOutgoing.Equal(dec("30")))
	assert.True(t, lvl.TotalCarePackages.Equal(dec("10")))
	assert.True(t, lvl.CurrentQuantity.Equal(dec("80")), lvl.CurrentQuantity.String())
	assert.Equal(t, StockOK, lvl.StockStatus)
}

func TestLowStockBoundary(t *testing.T) {
	f := newFixture(t)
	exact := f.item(t, "Water", "20")
	above := f.item(t, "Soap", "20")
	f.receive(t, day(2024, 3, 1), "CWE", map[uint]string{exact: "20", above: "20.5"})

	assert.Equal(t, StockLow, f.levelOf(t, exact).StockStatus)
	assert.Equal(t, StockOK, f.levelOf(t, above).StockStatus)

	low, err := f.stock.GetLowStock(f.ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, exact, low[0].ItemID)
}

func TestSoftDeleteKeepsHistory(t *testing.T) {
	f := newFixture(t)
	rice := riceScenario(t, f)
	before, err := f.stock.GetItemHistory(f.ctx, rice)
	require.NoError(t, err)

	require.NoError(t, f.items.SoftDelete(f.ctx, rice))

	levels, err := f.stock.GetCurrent(f.ctx)
	require.NoError(t, err)
	for _, l := range levels {
		assert.NotEqual(t, rice, l.ItemID, "inactive items are not listed")
	}
	after, err := f.stock.GetItemHistory(f.ctx, rice)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	all, err := f.items.List(f.ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// reactivating brings back the same figure
	restored := all[1]
	require.Equal(t, "Rice", restored.Name)
	restored.Status = models.StatusActive
	_, err = f.items.Update(f.ctx, rice, &restored)
	require.NoError(t, err)
	assert.True(t, f.levelOf(t, rice).CurrentQuantity.Equal(dec("80")))
}

func TestItemHistory(t *testing.T) {
	f := newFixture(t)
	rice := riceScenario(t, f)

	hist, err := f.stock.GetItemHistory(f.ctx, rice)
	require.NoError(t, err)
	require.Len(t, hist, 5)

	assert.Equal(t, MovementCarePackage, hist[0].Type)
	assert.Equal(t, "Family pack", hist[0].Reference)
	assert.Equal(t, "Temple Hall", hist[0].Party)
	assert.True(t, hist[0].Quantity.Equal(dec("10")))

	assert.Equal(t, MovementOutgoing, hist[1].Type)
	assert.Equal(t, MovementDonation, hist[2].Type)
	assert.Equal(t, "Red Cross", hist[2].Party)
	assert.Equal(t, MovementIncoming, hist[3].Type)
	assert.Equal(t, "Sathosa", hist[3].Party)
	assert.Equal(t, MovementIncoming, hist[4].Type)

	_, err = f.stock.GetItemHistory(f.ctx, 999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestExportImportKeepsStock(t *testing.T) {
	f := newFixture(t)
	riceScenario(t, f)
	before, err := f.stock.GetCurrent(f.ctx)
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "export.db")
	require.NoError(t, f.st.Export(f.ctx, dst))
	_, err = f.st.Import(f.ctx, dst)
	require.NoError(t, err)

	after, err := f.stock.GetCurrent(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
