package service

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"dmc-inventory/config"
	"dmc-inventory/models"
	"dmc-inventory/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	ctx       context.Context
	st        *store.Store
	items     *ItemStore
	centers   *CenterStore
	divisions *DivisionStore
	incoming  *IncomingLedger
	donations *DonationLedger
	outgoing  *OutgoingLedger
	packages  *CarePackages
	stock     *Stock
	reports   Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "dmc.db"),
		LogLevel: "silent",
	}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := func() time.Time { return testToday }
	f := &fixture{
		ctx:       context.Background(),
		st:        st,
		items:     NewItemStore(st),
		centers:   NewCenterStore(st),
		divisions: NewDivisionStore(st),
		incoming:  NewIncomingLedger(st),
		donations: NewDonationLedger(st),
		outgoing:  NewOutgoingLedger(st),
		packages:  NewCarePackages(st),
		stock:     NewStock(st),
		reports:   NewService(st),
	}
	f.incoming.Now = clock
	f.donations.Now = clock
	f.outgoing.Now = clock
	f.packages.Now = clock
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func (f *fixture) item(t *testing.T, name, reorder string) uint {
	t.Helper()
	it := models.Item{Name: name, Unit: "kg", Category: "Dry ration", ReorderLevel: dec(reorder)}
	require.NoError(t, f.items.Create(f.ctx, &it))
	return it.ID
}

func (f *fixture) center(t *testing.T, name string) uint {
	t.Helper()
	c := models.Center{Name: name, ContactPerson: "Nimal", ContactPhone: "0771234567"}
	require.NoError(t, f.centers.Create(f.ctx, &c))
	return c.ID
}

func (f *fixture) division(t *testing.T, name string) uint {
	t.Helper()
	d := models.Division{Name: name, ParentDivision: "Galle Four Gravets"}
	require.NoError(t, f.divisions.Create(f.ctx, &d))
	return d.ID
}

func (f *fixture) receive(t *testing.T, date time.Time, supplier string, lines map[uint]string) *models.IncomingBill {
	t.Helper()
	b := &models.IncomingBill{BillHeader: models.BillHeader{BillDate: date}, SupplierName: supplier}
	for id, qty := range lines {
		b.Lines = append(b.Lines, models.IncomingLine{LineRef: models.LineRef{ItemID: id}, QtyReceived: dec(qty)})
	}
	require.NoError(t, f.incoming.Create(f.ctx, b))
	return b
}

func (f *fixture) donate(t *testing.T, date time.Time, donor string, itemID uint, qty string) *models.DonationBill {
	t.Helper()
	b := &models.DonationBill{
		BillHeader: models.BillHeader{BillDate: date},
		DonorName:  donor,
		Lines:      []models.DonationLine{{LineRef: models.LineRef{ItemID: itemID}, QtyReceived: dec(qty)}},
	}
	require.NoError(t, f.donations.Create(f.ctx, b))
	return b
}

func (f *fixture) dispatch(t *testing.T, date time.Time, centerID, itemID uint, requested, issued string) *models.OutgoingBill {
	t.Helper()
	b := &models.OutgoingBill{
		BillHeader:  models.BillHeader{BillDate: date},
		CenterID:    centerID,
		OfficerName: "S. Silva",
		OfficerNIC:  "851234567V",
		Lines: []models.OutgoingLine{{
			LineRef:      models.LineRef{ItemID: itemID},
			QtyRequested: dec(requested),
			QtyIssued:    dec(issued),
		}},
	}
	require.NoError(t, f.outgoing.Create(f.ctx, b))
	return b
}

// template creates an active template with the given item quantities.
func (f *fixture) template(t *testing.T, name string, recipe map[uint]string) uint {
	t.Helper()
	tpl := models.CarePackageTemplate{Name: name, Description: "family pack"}
	require.NoError(t, f.packages.Templates.Create(f.ctx, &tpl))
	for id, qty := range recipe {
		require.NoError(t, f.packages.AddItem(f.ctx, &models.CarePackageTemplateItem{
			TemplateID: tpl.ID, ItemID: id, QuantityPerPackage: dec(qty),
		}))
	}
	return tpl.ID
}

func (f *fixture) issueToCenter(t *testing.T, date time.Time, templateID, centerID uint, packages string) *models.CarePackageIssue {
	t.Helper()
	is := &models.CarePackageIssue{
		TemplateID:     templateID,
		IssueDate:      date,
		PackagesIssued: dec(packages),
		RecipientType:  models.RecipientCenter,
		CenterID:       &centerID,
		OfficerName:    "R. Fernando",
		OfficerNIC:     "781234567V",
	}
	require.NoError(t, f.packages.CreateIssue(f.ctx, is))
	return is
}

func (f *fixture) levelOf(t *testing.T, itemID uint) StockLevel {
	t.Helper()
	levels, err := f.stock.GetCurrent(f.ctx)
	require.NoError(t, err)
	for _, l := range levels {
		if l.ItemID == itemID {
			return l
		}
	}
	t.Fatalf("item %d missing from stock levels", itemID)
	return StockLevel{}
}
