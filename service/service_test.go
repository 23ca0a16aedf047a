package service

import (
	"testing"
	"time"

	"dmc-inventory/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerReportsInclusiveRange(t *testing.T) {
	f := newFixture(t)
	rice, dhal := f.item(t, "Rice", "0"), f.item(t, "Dhal", "0")
	hall := f.center(t, "Temple Hall")

	f.receive(t, day(2024, 3, 1), "CWE", map[uint]string{rice: "10"})
	f.receive(t, day(2024, 3, 3), "Sathosa", map[uint]string{rice: "5", dhal: "2"})
	f.receive(t, day(2024, 3, 4), "CWE", map[uint]string{dhal: "1"})
	f.donate(t, day(2024, 3, 3), "Red Cross", rice, "7")
	f.dispatch(t, day(2024, 3, 3), hall, dhal, "3", "2")

	rows, err := f.reports.IncomingReport(f.ctx, ReportFilter{From: day(2024, 3, 1), To: day(2024, 3, 3)})
	require.NoError(t, err)
	require.Len(t, rows, 3, "both end days are included")
	assert.Equal(t, "CWE", rows[0].Counterparty)
	assert.Equal(t, "kg", rows[0].Unit)
	assert.NotEmpty(t, rows[0].BillNumber)

	// a timestamp late in the last day still covers that whole day
	rows, err = f.reports.IncomingReport(f.ctx, ReportFilter{
		From:    day(2024, 3, 2),
		To:      day(2024, 3, 4).Add(23 * time.Hour),
		ItemIDs: []uint{dhal},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "Dhal", r.ItemName)
	}

	don, err := f.reports.DonationsReport(f.ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, don, 1)
	assert.Equal(t, "Red Cross", don[0].Counterparty)
	assert.True(t, don[0].QtyReceived.Equal(dec("7")))

	out, err := f.reports.OutgoingReport(f.ctx, ReportFilter{From: day(2024, 3, 3), To: day(2024, 3, 3)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Temple Hall", out[0].CenterName)
	assert.True(t, out[0].QtyRequested.Equal(dec("3")))
	assert.True(t, out[0].QtyIssued.Equal(dec("2")))

	_, err = f.reports.IncomingReport(f.ctx, ReportFilter{From: day(2024, 3, 4), To: day(2024, 3, 1)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCarePackageIssuesReport(t *testing.T) {
	f := newFixture(t)
	rice, dhal := f.item(t, "Rice", "0"), f.item(t, "Dhal", "0")
	hall := f.center(t, "Temple Hall")
	tpl := f.template(t, "Family pack", map[uint]string{rice: "5", dhal: "0.5"})

	f.issueToCenter(t, day(2024, 3, 2), tpl, hall, "3")
	f.issueToCenter(t, day(2024, 3, 9), tpl, hall, "1")

	rows, err := f.reports.CarePackageIssuesReport(f.ctx, day(2024, 3, 1), day(2024, 3, 5))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "Family pack", r.PackageName)
		assert.Equal(t, "Center", r.RecipientType)
		assert.Equal(t, "Temple Hall", r.RecipientName)
		switch r.ItemName {
		case "Rice":
			assert.True(t, r.TotalQuantity.Equal(dec("15")))
		case "Dhal":
			assert.True(t, r.TotalQuantity.Equal(dec("1.5")))
		default:
			t.Fatalf("unexpected item %s", r.ItemName)
		}
	}
}

func TestCurrentStockReportFiltersItems(t *testing.T) {
	f := newFixture(t)
	rice := riceScenario(t, f)

	all, err := f.reports.CurrentStockReport(f.ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := f.reports.CurrentStockReport(f.ctx, []uint{rice})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.True(t, only[0].CurrentQuantity.Equal(dec("80")))
}
