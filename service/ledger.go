package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dmc-inventory/apperr"
	"dmc-inventory/models"
	"dmc-inventory/store"
	"dmc-inventory/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BillRecord is a bill header type owning lines of type L.
type BillRecord[L any] interface {
	Header() *models.BillHeader
	GetLines() []L
	SetLines([]L)
	Validate() error
}

// LineRecord is a bill line.
type LineRecord interface {
	Ref() *models.LineRef
	Validate() error
}

// ledgerDef holds what differs between the incoming, donation and outgoing
// ledgers.
type ledgerDef struct {
	label       string
	prefix      string
	headerTable string
	lineTable   string
	qtyColumn   string // summed into total_quantity
	partyColumn string // free-text counterparty, empty for outgoing
	partySelect string
	extraSelect string
	joins       string
	preloads    []string
}

// BillSummary is one row of a ledger listing.
type BillSummary struct {
	ID            uint            `json:"id"`
	BillNumber    string          `json:"bill_number"`
	BillDate      time.Time       `json:"bill_date"`
	Counterparty  string          `json:"counterparty"`
	CenterID      *uint           `json:"center_id,omitempty"`
	OfficerName   string          `json:"officer_name,omitempty"`
	OfficerNIC    string          `json:"officer_nic,omitempty"`
	Remarks       string          `json:"remarks"`
	LineCount     int64           `json:"line_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Ledger is the bill store shared by the three ledgers. Header and lines are
// always written in one store.Atomic unit; update and delete are serialized
// per bill.
type Ledger[B any, L any, PB interface {
	*B
	BillRecord[L]
}, PL interface {
	*L
	LineRecord
}] struct {
	store *store.Store
	def   ledgerDef
	locks store.KeyedMutex[uint]

	// Now supplies "today" for generated bill numbers and missing dates.
	Now func() time.Time
}

type (
	IncomingLedger = Ledger[models.IncomingBill, models.IncomingLine, *models.IncomingBill, *models.IncomingLine]
	DonationLedger = Ledger[models.DonationBill, models.DonationLine, *models.DonationBill, *models.DonationLine]
	OutgoingLedger = Ledger[models.OutgoingBill, models.OutgoingLine, *models.OutgoingBill, *models.OutgoingLine]
)

func NewIncomingLedger(st *store.Store) *IncomingLedger {
	return &IncomingLedger{store: st, Now: time.Now, def: ledgerDef{
		label:       "incoming bill",
		prefix:      models.PrefixIncoming,
		headerTable: "incoming_bills",
		lineTable:   "incoming_lines",
		qtyColumn:   "qty_received",
		partyColumn: "supplier_name",
		partySelect: "b.supplier_name",
	}}
}

func NewDonationLedger(st *store.Store) *DonationLedger {
	return &DonationLedger{store: st, Now: time.Now, def: ledgerDef{
		label:       "donation bill",
		prefix:      models.PrefixDonation,
		headerTable: "donation_bills",
		lineTable:   "donation_lines",
		qtyColumn:   "qty_received",
		partyColumn: "donor_name",
		partySelect: "b.donor_name",
	}}
}

func NewOutgoingLedger(st *store.Store) *OutgoingLedger {
	return &OutgoingLedger{store: st, Now: time.Now, def: ledgerDef{
		label:       "outgoing bill",
		prefix:      models.PrefixOutgoing,
		headerTable: "outgoing_bills",
		lineTable:   "outgoing_lines",
		qtyColumn:   "qty_issued",
		partySelect: "c.name",
		extraSelect: "b.center_id, b.officer_name, b.officer_nic",
		joins:       "LEFT JOIN centers c ON c.id = b.center_id",
		preloads:    []string{"Center"},
	}}
}

func (l *Ledger[B, L, PB, PL]) Prefix() string { return l.def.prefix }

func (l *Ledger[B, L, PB, PL]) today() time.Time { return utils.DateOnly(l.Now().UTC()) }

// List returns every bill, newest first, with line count and total quantity
// computed from the lines.
func (l *Ledger[B, L, PB, PL]) List(ctx context.Context) ([]BillSummary, error) {
	sp := l.def
	cols := []string{
		"b.id", "b.bill_number", "b.bill_date", "b.remarks", "b.created_at", "b.updated_at",
		sp.partySelect + " AS counterparty",
		"COALESCE(agg.line_count, 0) AS line_count",
		"COALESCE(agg.total_quantity, 0) AS total_quantity",
	}
	if sp.extraSelect != "" {
		cols = append(cols, sp.extraSelect)
	}
	agg := fmt.Sprintf(
		"LEFT JOIN (SELECT bill_id, COUNT(*) AS line_count, SUM(%s) AS total_quantity FROM %s GROUP BY bill_id) agg ON agg.bill_id = b.id",
		sp.qtyColumn, sp.lineTable,
	)

	var rows []BillSummary
	err := l.store.Read(ctx, func(db *gorm.DB) error {
		q := db.Table(sp.headerTable + " b").Select(strings.Join(cols, ", ")).Joins(agg)
		if sp.joins != "" {
			q = q.Joins(sp.joins)
		}
		return q.Order("b.bill_date DESC, b.id DESC").Scan(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "list "+sp.label+"s")
	}
	for i := range rows {
		rows[i].TotalQuantity = rows[i].TotalQuantity.Round(4)
	}
	return rows, nil
}

// GetDetails loads one bill with its lines in entry order, each carrying its
// item.
func (l *Ledger[B, L, PB, PL]) GetDetails(ctx context.Context, id uint) (*B, error) {
	bill := new(B)
	err := l.store.Read(ctx, func(db *gorm.DB) error {
		q := db.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Preload("Lines.Item")
		for _, p := range l.def.preloads {
			q = q.Preload(p)
		}
		return q.First(bill, id).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, l.def.label+" not found")
	}
	return bill, nil
}

func (l *Ledger[B, L, PB, PL]) validate(bill PB) error {
	if err := bill.Validate(); err != nil {
		return apperr.Validation("%v", err)
	}
	lines := bill.GetLines()
	if len(lines) == 0 {
		return apperr.Validation("%s needs at least one line item", l.def.label)
	}
	for i := range lines {
		if err := PL(&lines[i]).Validate(); err != nil {
			return apperr.Validation("line %d: %v", i+1, err)
		}
	}
	return nil
}

// prepareLines points every line at billID and clears ids and loaded items.
func prepareLines[L any, PL interface {
	*L
	LineRecord
}](lines []L, billID uint) {
	for i := range lines {
		ref := PL(&lines[i]).Ref()
		ref.ID = 0
		ref.BillID = billID
		ref.Remarks = strings.TrimSpace(ref.Remarks)
	}
}

// Create validates bill and writes the header and all lines as one unit.
// A blank bill number is generated from today's date.
func (l *Ledger[B, L, PB, PL]) Create(ctx context.Context, bill PB) error {
	if err := l.validate(bill); err != nil {
		return err
	}
	h := bill.Header()
	h.BillNumber = strings.TrimSpace(h.BillNumber)
	h.Remarks = strings.TrimSpace(h.Remarks)
	if h.BillDate.IsZero() {
		h.BillDate = l.today()
	}
	h.BillDate = utils.DateOnly(h.BillDate)
	generated := h.BillNumber == ""

	err := l.store.Atomic(ctx, func(tx *gorm.DB) error {
		if generated {
			n, err := nextBillNumber(tx, l.def.prefix, l.def.headerTable, l.today())
			if err != nil {
				return err
			}
			h.BillNumber = n
		}
		h.ID = 0
		if err := tx.Omit(clause.Associations).Create(bill).Error; err != nil {
			return err
		}
		lines := bill.GetLines()
		prepareLines[L, PL](lines, h.ID)
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		bill.SetLines(lines)
		return nil
	})
	if err != nil {
		h.ID = 0
		if generated {
			h.BillNumber = ""
		}
		return apperr.FromDB(err, "create "+l.def.label)
	}
	return nil
}

// Update replaces the header and the whole line set of bill id. Lines not in
// the new set are gone afterwards.
func (l *Ledger[B, L, PB, PL]) Update(ctx context.Context, id uint, bill PB) error {
	if err := l.validate(bill); err != nil {
		return err
	}
	unlock := l.locks.Lock(id)
	defer unlock()

	err := l.store.Atomic(ctx, func(tx *gorm.DB) error {
		existing := PB(new(B))
		if err := tx.First(existing, id).Error; err != nil {
			return err
		}
		h, old := bill.Header(), existing.Header()
		h.ID = id
		h.CreatedAt = old.CreatedAt
		h.BillNumber = strings.TrimSpace(h.BillNumber)
		if h.BillNumber == "" {
			h.BillNumber = old.BillNumber
		}
		if h.BillDate.IsZero() {
			h.BillDate = old.BillDate
		}
		h.BillDate = utils.DateOnly(h.BillDate)
		h.Remarks = strings.TrimSpace(h.Remarks)

		if err := tx.Omit(clause.Associations).Save(bill).Error; err != nil {
			return err
		}
		if err := tx.Where("bill_id = ?", id).Delete(new(L)).Error; err != nil {
			return err
		}
		lines := bill.GetLines()
		prepareLines[L, PL](lines, id)
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		bill.SetLines(lines)
		return nil
	})
	if err != nil {
		return apperr.FromDB(err, "update "+l.def.label)
	}
	return nil
}

// Delete removes bill id; its lines go with it through the cascade.
func (l *Ledger[B, L, PB, PL]) Delete(ctx context.Context, id uint) error {
	unlock := l.locks.Lock(id)
	defer unlock()

	err := l.store.Read(ctx, func(db *gorm.DB) error {
		res := db.Delete(new(B), id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return apperr.FromDB(err, "delete "+l.def.label)
	}
	return nil
}

// Counterparties lists the distinct supplier or donor names used so far.
func (l *Ledger[B, L, PB, PL]) Counterparties(ctx context.Context) ([]string, error) {
	col := l.def.partyColumn
	if col == "" {
		return nil, apperr.Unsupported("%s has no free-text counterparty", l.def.label)
	}
	var names []string
	err := l.store.Read(ctx, func(db *gorm.DB) error {
		return db.Table(l.def.headerTable).
			Where(col + " <> ''").
			Distinct(col).
			Order(col + " ASC").
			Pluck(col, &names).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "list "+col+"s")
	}
	return names, nil
}
