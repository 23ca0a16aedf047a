package service

import (
	"context"
	"time"

	"dmc-inventory/apperr"
	"dmc-inventory/store"
	"dmc-inventory/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ===== Report DTOs =====

// ReceiptReportRow is one incoming or donation line.
type ReceiptReportRow struct {
	BillID       uint            `json:"bill_id"`
	BillNumber   string          `json:"bill_number"`
	BillDate     time.Time       `json:"bill_date"`
	Counterparty string          `json:"counterparty"` // supplier or donor
	ItemID       uint            `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Unit         string          `json:"unit"`
	QtyReceived  decimal.Decimal `json:"qty_received"`
	Remarks      string          `json:"remarks"`
}

// DispatchReportRow is one outgoing line.
type DispatchReportRow struct {
	BillID       uint            `json:"bill_id"`
	BillNumber   string          `json:"bill_number"`
	BillDate     time.Time       `json:"bill_date"`
	CenterName   string          `json:"center_name"`
	OfficerName  string          `json:"officer_name"`
	OfficerNIC   string          `json:"officer_nic"`
	ItemID       uint            `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Unit         string          `json:"unit"`
	QtyRequested decimal.Decimal `json:"qty_requested"`
	QtyIssued    decimal.Decimal `json:"qty_issued"`
	Remarks      string          `json:"remarks"`
}

// CarePackageReportRow is one item of one issue, expanded by packages issued.
type CarePackageReportRow struct {
	IssueID            uint            `json:"issue_id"`
	IssueDate          time.Time       `json:"issue_date"`
	PackageName        string          `json:"package_name"`
	RecipientType      string          `json:"recipient_type"`
	RecipientName      string          `json:"recipient_name"`
	OfficerName        string          `json:"officer_name"`
	PackagesIssued     decimal.Decimal `json:"packages_issued"`
	ItemID             uint            `json:"item_id"`
	ItemName           string          `json:"item_name"`
	Unit               string          `json:"unit"`
	QuantityPerPackage decimal.Decimal `json:"quantity_per_package"`
	TotalQuantity      decimal.Decimal `json:"total_quantity"`
}

// ReportFilter bounds a ledger report. From and To are calendar days, both
// included; a zero value leaves that side open. An empty ItemIDs means all.
type ReportFilter struct {
	From    time.Time
	To      time.Time
	ItemIDs []uint
}

// ===== Service =====

type Service interface {
	// 1) Current stock, optionally for selected items
	CurrentStockReport(ctx context.Context, itemIDs []uint) ([]StockLevel, error)

	// 2) Ledger listings per line
	IncomingReport(ctx context.Context, f ReportFilter) ([]ReceiptReportRow, error)
	DonationsReport(ctx context.Context, f ReportFilter) ([]ReceiptReportRow, error)
	OutgoingReport(ctx context.Context, f ReportFilter) ([]DispatchReportRow, error)

	// 3) Care package issues per item
	CarePackageIssuesReport(ctx context.Context, from, to time.Time) ([]CarePackageReportRow, error)
}

type service struct{ store *store.Store }

func NewService(st *store.Store) Service { return &service{store: st} }

// dateRange applies an inclusive day range to column.
func dateRange(q *gorm.DB, column string, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where(column+" >= ?", utils.DateOnly(from))
	}
	if !to.IsZero() {
		q = q.Where(column+" < ?", utils.DateOnly(to).AddDate(0, 0, 1))
	}
	return q
}

func checkRange(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && utils.DateOnly(to).Before(utils.DateOnly(from)) {
		return apperr.Validation("date range ends before it starts")
	}
	return nil
}

// ===== Implementations =====

// 1) Current stock
func (s *service) CurrentStockReport(ctx context.Context, itemIDs []uint) ([]StockLevel, error) {
	var rows []StockLevel
	err := s.store.Read(ctx, func(db *gorm.DB) error {
		var err error
		rows, err = stockLevels(db, itemIDs)
		return err
	})
	if err != nil {
		return nil, apperr.FromDB(err, "current stock report")
	}
	return rows, nil
}

// 2) Incoming / donations share the receipt shape
func (s *service) receipts(ctx context.Context, f ReportFilter, bills, lines, party, label string) ([]ReceiptReportRow, error) {
	if err := checkRange(f.From, f.To); err != nil {
		return nil, err
	}
	var rows []ReceiptReportRow
	err := s.store.Read(ctx, func(db *gorm.DB) error {
		q := db.Table(lines + " l").
			Select(`
				b.id AS bill_id,
				b.bill_number,
				b.bill_date,
				b.` + party + ` AS counterparty,
				i.id AS item_id,
				i.name AS item_name,
				i.unit,
				l.qty_received,
				l.remarks
			`).
			Joins("INNER JOIN " + bills + " b ON b.id = l.bill_id").
			Joins("INNER JOIN items i ON i.id = l.item_id")
		q = dateRange(q, "b.bill_date", f.From, f.To)
		if len(f.ItemIDs) > 0 {
			q = q.Where("l.item_id IN ?", f.ItemIDs)
		}
		return q.Order("b.bill_date ASC, b.id ASC, l.id ASC").Scan(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, label)
	}
	return rows, nil
}

func (s *service) IncomingReport(ctx context.Context, f ReportFilter) ([]ReceiptReportRow, error) {
	return s.receipts(ctx, f, "incoming_bills", "incoming_lines", "supplier_name", "incoming report")
}

func (s *service) DonationsReport(ctx context.Context, f ReportFilter) ([]ReceiptReportRow, error) {
	return s.receipts(ctx, f, "donation_bills", "donation_lines", "donor_name", "donations report")
}

func (s *service) OutgoingReport(ctx context.Context, f ReportFilter) ([]DispatchReportRow, error) {
	if err := checkRange(f.From, f.To); err != nil {
		return nil, err
	}
	var rows []DispatchReportRow
	err := s.store.Read(ctx, func(db *gorm.DB) error {
		q := db.Table("outgoing_lines l").
			Select(`
				b.id AS bill_id,
				b.bill_number,
				b.bill_date,
				c.name AS center_name,
				b.officer_name,
				b.officer_nic,
				i.id AS item_id,
				i.name AS item_name,
				i.unit,
				l.qty_requested,
				l.qty_issued,
				l.remarks
			`).
			Joins("INNER JOIN outgoing_bills b ON b.id = l.bill_id").
			Joins("INNER JOIN items i ON i.id = l.item_id").
			Joins("LEFT JOIN centers c ON c.id = b.center_id")
		q = dateRange(q, "b.bill_date", f.From, f.To)
		if len(f.ItemIDs) > 0 {
			q = q.Where("l.item_id IN ?", f.ItemIDs)
		}
		return q.Order("b.bill_date ASC, b.id ASC, l.id ASC").Scan(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "outgoing report")
	}
	return rows, nil
}

// 3) Care package issues
func (s *service) CarePackageIssuesReport(ctx context.Context, from, to time.Time) ([]CarePackageReportRow, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	var rows []CarePackageReportRow
	err := s.store.Read(ctx, func(db *gorm.DB) error {
		q := db.Table("care_package_issue_lines l").
			Select(`
				ci.id AS issue_id,
				ci.issue_date,
				t.name AS package_name,
				ci.recipient_type,
				CASE WHEN ci.recipient_type = 'Center' THEN c.name ELSE d.name END AS recipient_name,
				ci.officer_name,
				ci.packages_issued,
				i.id AS item_id,
				i.name AS item_name,
				i.unit,
				l.quantity_per_package
			`).
			Joins("INNER JOIN care_package_issues ci ON ci.id = l.issue_id").
			Joins("INNER JOIN care_package_templates t ON t.id = ci.template_id").
			Joins("INNER JOIN items i ON i.id = l.item_id").
			Joins("LEFT JOIN centers c ON c.id = ci.center_id").
			Joins("LEFT JOIN gn_divisions d ON d.id = ci.division_id")
		q = dateRange(q, "ci.issue_date", from, to)
		return q.Order("ci.issue_date ASC, ci.id ASC, l.id ASC").Scan(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "care package issues report")
	}
	for i := range rows {
		rows[i].TotalQuantity = rows[i].QuantityPerPackage.Mul(rows[i].PackagesIssued).Round(4)
	}
	return rows, nil
}
