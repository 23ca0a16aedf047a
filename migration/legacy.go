// Package migration converts a database written by the original desktop
// application, where every ledger row stood alone, into bills with lines.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"dmc-inventory/apperr"
	"dmc-inventory/config"
	"dmc-inventory/models"
	"dmc-inventory/store"
	"dmc-inventory/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotNeeded is returned by Run when there are no legacy rows.
var ErrNotNeeded = errors.New("no legacy ledger rows to migrate")

const (
	legacyIncoming  = "incoming_stock"
	legacyDonations = "donations"
	legacyOutgoing  = "outgoing_stock"
	legacyItems     = "items_master"
	legacyCenters   = "centers_master"
)

// Verification counts rows in the bill tables after migration.
type Verification struct {
	IncomingBills int64 `json:"incoming_bills"`
	IncomingLines int64 `json:"incoming_lines"`
	DonationBills int64 `json:"donation_bills"`
	DonationLines int64 `json:"donation_lines"`
	OutgoingBills int64 `json:"outgoing_bills"`
	OutgoingLines int64 `json:"outgoing_lines"`
}

type Result struct {
	BackupPath    string       `json:"backup_path"`
	ItemsCopied   int          `json:"items_copied"`
	CentersCopied int          `json:"centers_copied"`
	Verification  Verification `json:"verification"`
}

// Needed reports whether the store holds a legacy incoming_stock table
// without bill_id that still has rows.
func Needed(ctx context.Context, st *store.Store) (bool, error) {
	if st.Driver() != config.DriverSQLite {
		return false, nil
	}
	needed := false
	err := st.Read(ctx, func(db *gorm.DB) error {
		ok, err := hasTable(db, legacyIncoming)
		if err != nil || !ok {
			return err
		}
		var hasBillID int64
		if err := db.Raw("SELECT COUNT(*) FROM pragma_table_info(?) WHERE lower(name) = 'bill_id'", legacyIncoming).
			Scan(&hasBillID).Error; err != nil {
			return err
		}
		if hasBillID > 0 {
			return nil
		}
		var rows int64
		if err := db.Table(legacyIncoming).Count(&rows).Error; err != nil {
			return err
		}
		needed = rows > 0
		return nil
	})
	return needed, apperr.FromDB(err, "check legacy schema")
}

// Run backs the file up, then regroups the legacy rows in one transaction.
// Bills are grouped by day and counterparty (outgoing also by officer) and
// numbered PREFIX-YYYYMMDD-<bill id>. Legacy tables are renamed to *_old.
func Run(ctx context.Context, st *store.Store, logger *log.Logger) (*Result, error) {
	if st.Driver() != config.DriverSQLite {
		return nil, apperr.Unsupported("legacy migration only applies to sqlite files")
	}
	needed, err := Needed(ctx, st)
	if err != nil {
		return nil, err
	}
	if !needed {
		return nil, ErrNotNeeded
	}

	backup, err := st.Backup("pre-migration")
	if err != nil {
		return nil, err
	}
	logger.Printf("migration: backup written to %s", backup)

	res := &Result{BackupPath: backup}
	err = st.Atomic(ctx, func(tx *gorm.DB) error {
		m := &migrator{tx: tx, seq: map[string]int{}}
		var err error
		if res.ItemsCopied, err = m.copyItems(); err != nil {
			return fmt.Errorf("copy items: %w", err)
		}
		if res.CentersCopied, err = m.copyCenters(); err != nil {
			return fmt.Errorf("copy centers: %w", err)
		}
		if err := m.incoming(); err != nil {
			return fmt.Errorf("incoming: %w", err)
		}
		if err := m.donations(); err != nil {
			return fmt.Errorf("donations: %w", err)
		}
		if err := m.outgoing(); err != nil {
			return fmt.Errorf("outgoing: %w", err)
		}
		if err := m.seedSequences(); err != nil {
			return fmt.Errorf("bill sequences: %w", err)
		}
		for _, t := range []string{legacyIncoming, legacyDonations, legacyOutgoing} {
			ok, err := hasTable(tx, t)
			if err != nil {
				return fmt.Errorf("look up %s: %w", t, err)
			}
			if !ok {
				continue
			}
			if err := tx.Migrator().RenameTable(t, t+"_old"); err != nil {
				return fmt.Errorf("rename %s: %w", t, err)
			}
		}
		return verify(tx, &res.Verification)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "legacy migration failed, database left unchanged")
	}
	logger.Printf("migration: done %+v", res.Verification)
	return res, nil
}

type migrator struct {
	tx  *gorm.DB
	seq map[string]int // prefix|day -> highest number used
}

func (m *migrator) has(table string) (bool, error) { return hasTable(m.tx, table) }

// hasTable ignores case; the desktop app created its tables in upper case.
func hasTable(db *gorm.DB, name string) (bool, error) {
	var n int64
	err := db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND lower(name) = lower(?)", name).Scan(&n).Error
	if err != nil {
		return false, fmt.Errorf("look up table %s: %w", name, err)
	}
	return n > 0, nil
}

func (m *migrator) copyItems() (int, error) {
	if ok, err := m.has(legacyItems); err != nil || !ok {
		return 0, err
	}
	var rows []struct {
		ItemID       uint
		ItemName     string
		UnitMeasure  string
		Category     *string
		ReorderLevel decimal.NullDecimal
		Status       *string
	}
	if err := m.tx.Raw(`SELECT item_id, item_name, unit_measure, category, reorder_level, status FROM ` + legacyItems).
		Scan(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	items := make([]models.Item, len(rows))
	for i, r := range rows {
		items[i] = models.Item{
			ID:           r.ItemID,
			Name:         strings.TrimSpace(r.ItemName),
			Unit:         strings.TrimSpace(r.UnitMeasure),
			Category:     deref(r.Category),
			ReorderLevel: r.ReorderLevel.Decimal,
			Status:       legacyStatus(r.Status),
		}
	}
	res := m.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&items)
	return int(res.RowsAffected), res.Error
}

func (m *migrator) copyCenters() (int, error) {
	if ok, err := m.has(legacyCenters); err != nil || !ok {
		return 0, err
	}
	var rows []struct {
		CenterID      uint
		CenterName    string
		ContactPerson *string
		ContactPhone  *string
		Status        *string
	}
	if err := m.tx.Raw(`SELECT center_id, center_name, contact_person, contact_phone, status FROM ` + legacyCenters).
		Scan(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	centers := make([]models.Center, len(rows))
	for i, r := range rows {
		centers[i] = models.Center{
			ID:            r.CenterID,
			Name:          strings.TrimSpace(r.CenterName),
			ContactPerson: deref(r.ContactPerson),
			ContactPhone:  deref(r.ContactPhone),
			Status:        legacyStatus(r.Status),
		}
	}
	res := m.tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&centers)
	return int(res.RowsAffected), res.Error
}

// legacyRow covers the columns of all three flat ledgers.
type legacyRow struct {
	ItemID       uint
	Day          string
	Party        string
	CenterID     uint
	OfficerName  string
	OfficerNIC   string
	QtyReceived  decimal.NullDecimal
	QtyRequested decimal.NullDecimal
	QtyIssued    decimal.NullDecimal
	Remarks      *string
}

type rowGroup struct {
	day  time.Time
	rows []legacyRow
}

// groupRows keeps first-seen order so bill ids follow the legacy row order.
func groupRows(rows []legacyRow, key func(legacyRow) string) ([]*rowGroup, error) {
	var order []*rowGroup
	byKey := map[string]*rowGroup{}
	for _, r := range rows {
		if r.Day == "" {
			return nil, fmt.Errorf("row for item %d has an unreadable date", r.ItemID)
		}
		k := r.Day + "|" + key(r)
		g, ok := byKey[k]
		if !ok {
			d, err := utils.ParseDate(r.Day)
			if err != nil {
				return nil, err
			}
			g = &rowGroup{day: d}
			byKey[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}
	return order, nil
}

func (m *migrator) load(query string) ([]legacyRow, error) {
	var rows []legacyRow
	err := m.tx.Raw(query).Scan(&rows).Error
	return rows, err
}

// number swaps the placeholder number of a freshly inserted bill for the
// final one derived from its id.
func (m *migrator) number(table, prefix string, id uint, day time.Time) error {
	n := int(id)
	k := prefix + "|" + utils.BillDay(day)
	m.seq[k] = max(m.seq[k], n)
	return m.tx.Table(table).Where("id = ?", id).Update("bill_number", utils.GenBillNumber(prefix, day, n)).Error
}

func placeholder(prefix string, i int) string { return fmt.Sprintf("MIG-%s-%d", prefix, i) }

func (m *migrator) incoming() error {
	if ok, err := m.has(legacyIncoming); err != nil || !ok {
		return err
	}
	rows, err := m.load(`SELECT item_id, COALESCE(strftime('%Y-%m-%d', date_received), '') AS day,
		supplier_name AS party, qty_received, remarks FROM ` + legacyIncoming + ` ORDER BY rowid`)
	if err != nil {
		return err
	}
	groups, err := groupRows(rows, func(r legacyRow) string { return r.Party })
	if err != nil {
		return err
	}
	for i, g := range groups {
		bill := models.IncomingBill{
			BillHeader:   models.BillHeader{BillNumber: placeholder(models.PrefixIncoming, i), BillDate: g.day},
			SupplierName: g.rows[0].Party,
		}
		if err := m.tx.Omit(clause.Associations).Create(&bill).Error; err != nil {
			return err
		}
		lines := make([]models.IncomingLine, len(g.rows))
		for j, r := range g.rows {
			lines[j] = models.IncomingLine{
				LineRef:     models.LineRef{BillID: bill.ID, ItemID: r.ItemID, Remarks: deref(r.Remarks)},
				QtyReceived: r.QtyReceived.Decimal,
			}
		}
		if err := m.tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		if err := m.number("incoming_bills", models.PrefixIncoming, bill.ID, g.day); err != nil {
			return err
		}
	}
	return nil
}

func (m *migrator) donations() error {
	if ok, err := m.has(legacyDonations); err != nil || !ok {
		return err
	}
	rows, err := m.load(`SELECT item_id, COALESCE(strftime('%Y-%m-%d', date_received), '') AS day,
		donor_name AS party, qty_received, remarks FROM ` + legacyDonations + ` ORDER BY rowid`)
	if err != nil {
		return err
	}
	groups, err := groupRows(rows, func(r legacyRow) string { return r.Party })
	if err != nil {
		return err
	}
	for i, g := range groups {
		bill := models.DonationBill{
			BillHeader: models.BillHeader{BillNumber: placeholder(models.PrefixDonation, i), BillDate: g.day},
			DonorName:  g.rows[0].Party,
		}
		if err := m.tx.Omit(clause.Associations).Create(&bill).Error; err != nil {
			return err
		}
		lines := make([]models.DonationLine, len(g.rows))
		for j, r := range g.rows {
			lines[j] = models.DonationLine{
				LineRef:     models.LineRef{BillID: bill.ID, ItemID: r.ItemID, Remarks: deref(r.Remarks)},
				QtyReceived: r.QtyReceived.Decimal,
			}
		}
		if err := m.tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		if err := m.number("donation_bills", models.PrefixDonation, bill.ID, g.day); err != nil {
			return err
		}
	}
	return nil
}

func (m *migrator) outgoing() error {
	if ok, err := m.has(legacyOutgoing); err != nil || !ok {
		return err
	}
	rows, err := m.load(`SELECT item_id, COALESCE(strftime('%Y-%m-%d', date_issued), '') AS day,
		center_id, officer_name, officer_nic, qty_requested, qty_issued, remarks
		FROM ` + legacyOutgoing + ` ORDER BY rowid`)
	if err != nil {
		return err
	}
	groups, err := groupRows(rows, func(r legacyRow) string {
		return fmt.Sprintf("%d|%s|%s", r.CenterID, r.OfficerName, r.OfficerNIC)
	})
	if err != nil {
		return err
	}
	for i, g := range groups {
		first := g.rows[0]
		bill := models.OutgoingBill{
			BillHeader:  models.BillHeader{BillNumber: placeholder(models.PrefixOutgoing, i), BillDate: g.day},
			CenterID:    first.CenterID,
			OfficerName: first.OfficerName,
			OfficerNIC:  first.OfficerNIC,
		}
		if err := m.tx.Omit(clause.Associations).Create(&bill).Error; err != nil {
			return err
		}
		lines := make([]models.OutgoingLine, len(g.rows))
		for j, r := range g.rows {
			lines[j] = models.OutgoingLine{
				LineRef:      models.LineRef{BillID: bill.ID, ItemID: r.ItemID, Remarks: deref(r.Remarks)},
				QtyRequested: r.QtyRequested.Decimal,
				QtyIssued:    r.QtyIssued.Decimal,
			}
		}
		if err := m.tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		if err := m.number("outgoing_bills", models.PrefixOutgoing, bill.ID, g.day); err != nil {
			return err
		}
	}
	return nil
}

// seedSequences stores the highest number used per prefix and day so new
// bills on those days continue after the migrated ones.
func (m *migrator) seedSequences() error {
	for k, last := range m.seq {
		prefix, day, _ := strings.Cut(k, "|")
		err := m.tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "prefix"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{"last_seq": gorm.Expr("MAX(last_seq, ?)", last)}),
		}).Create(&models.BillSequence{Prefix: prefix, Day: day, LastSeq: last}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func verify(tx *gorm.DB, v *Verification) error {
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.IncomingBill{}, &v.IncomingBills},
		{&models.IncomingLine{}, &v.IncomingLines},
		{&models.DonationBill{}, &v.DonationBills},
		{&models.DonationLine{}, &v.DonationLines},
		{&models.OutgoingBill{}, &v.OutgoingBills},
		{&models.OutgoingLine{}, &v.OutgoingLines},
	}
	for _, c := range counts {
		if err := tx.Model(c.model).Count(c.dst).Error; err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func legacyStatus(s *string) models.Status {
	st, err := models.ParseStatus(deref(s))
	if err != nil {
		return models.StatusActive
	}
	return st
}
