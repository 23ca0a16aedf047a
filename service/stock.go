package service

import (
	"context"
	"slices"
	"time"

	"dmc-inventory/apperr"
	"dmc-inventory/models"
	"dmc-inventory/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StockLow = "Low Stock"
	StockOK  = "OK"
)

// StockLevel is the derived on-hand quantity of one active item.
type StockLevel struct {
	ItemID            uint            `json:"item_id"`
	ItemName          string          `json:"item_name"`
	Unit              string          `json:"unit"`
	Category          string          `json:"category"`
	ReorderLevel      decimal.Decimal `json:"reorder_level"`
	TotalIncoming     decimal.Decimal `json:"total_incoming"`
	TotalDonations    decimal.Decimal `json:"total_donations"`
	TotalOutgoing     decimal.Decimal `json:"total_outgoing"`
	TotalCarePackages decimal.Decimal `json:"total_care_packages"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	StockStatus       string          `json:"stock_status"`
}

// Movement types in an item history.
const (
	MovementIncoming    = "Incoming"
	MovementDonation    = "Donation"
	MovementOutgoing    = "Outgoing"
	MovementCarePackage = "Care Package"
)

// Movement is one ledger entry touching an item.
type Movement struct {
	Type      string          `json:"type"`
	Date      time.Time       `json:"date" gorm:"column:entry_date"`
	Reference string          `json:"reference"`
	Party     string          `json:"party"`
	Quantity  decimal.Decimal `json:"quantity"`
	Remarks   string          `json:"remarks"`
	EntryID   uint            `json:"entry_id"`
}

// Stock derives quantities from the ledgers on every call; nothing is cached
// or stored.
type Stock struct {
	store *store.Store
}

func NewStock(st *store.Store) *Stock { return &Stock{store: st} }

const stockLevelsSQL = `
SELECT i.id AS item_id, i.name AS item_name, i.unit, i.category, i.reorder_level,
	COALESCE(inc.qty, 0) AS total_incoming,
	COALESCE(don.qty, 0) AS total_donations,
	COALESCE(outg.qty, 0) AS total_outgoing,
	COALESCE(cp.qty, 0) AS total_care_packages
FROM items i
LEFT JOIN (SELECT item_id, SUM(qty_received) AS qty FROM incoming_lines GROUP BY item_id) inc ON inc.item_id = i.id
LEFT JOIN (SELECT item_id, SUM(qty_received) AS qty FROM donation_lines GROUP BY item_id) don ON don.item_id = i.id
LEFT JOIN (SELECT item_id, SUM(qty_issued) AS qty FROM outgoing_lines GROUP BY item_id) outg ON outg.item_id = i.id
LEFT JOIN (
	SELECT l.item_id, SUM(l.quantity_per_package * ci.packages_issued) AS qty
	FROM care_package_issue_lines l
	JOIN care_package_issues ci ON ci.id = l.issue_id
	GROUP BY l.item_id
) cp ON cp.item_id = i.id
WHERE i.status = ?`

// stockLevels computes levels for active items, optionally limited to itemIDs.
func stockLevels(db *gorm.DB, itemIDs []uint) ([]StockLevel, error) {
	query, args := stockLevelsSQL, []any{models.StatusActive}
	if len(itemIDs) > 0 {
		query += " AND i.id IN ?"
		args = append(args, itemIDs)
	}
	query += " ORDER BY i.name ASC, i.id ASC"

	var rows []StockLevel
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		r := &rows[i]
		r.ReorderLevel = r.ReorderLevel.Round(4)
		r.TotalIncoming = r.TotalIncoming.Round(4)
		r.TotalDonations = r.TotalDonations.Round(4)
		r.TotalOutgoing = r.TotalOutgoing.Round(4)
		r.TotalCarePackages = r.TotalCarePackages.Round(4)
		r.CurrentQuantity = r.TotalIncoming.Add(r.TotalDonations).Sub(r.TotalOutgoing).Sub(r.TotalCarePackages)
		r.StockStatus = stockStatus(r.CurrentQuantity, r.ReorderLevel)
	}
	return rows, nil
}

// stockStatus is Low Stock at or below the reorder level.
func stockStatus(current, reorder decimal.Decimal) string {
	if current.LessThanOrEqual(reorder) {
		return StockLow
	}
	return StockOK
}

func (s *Stock) GetCurrent(ctx context.Context) ([]StockLevel, error) {
	var rows []StockLevel
	err := s.store.Read(ctx, func(db *gorm.DB) error {
		var err error
		rows, err = stockLevels(db, nil)
		return err
	})
	if err != nil {
		return nil, apperr.FromDB(err, "compute current stock")
	}
	return rows, nil
}

func (s *Stock) GetLowStock(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(rows, func(r StockLevel) bool { return r.StockStatus != StockLow }), nil
}

// GetItemHistory lists every movement of itemID across the four ledgers,
// newest first.
func (s *Stock) GetItemHistory(ctx context.Context, itemID uint) ([]Movement, error) {
	var out []Movement
	err := s.store.Read(ctx, func(db *gorm.DB) error {
		var n int64
		if err := db.Model(&models.Item{}).Where("id = ?", itemID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("item %d not found", itemID)
		}

		queries := []struct {
			kind  string
			build func() *gorm.DB
		}{
			{MovementIncoming, func() *gorm.DB {
				return db.Table("incoming_lines l").
					Select("l.id AS entry_id, b.bill_date AS entry_date, b.bill_number AS reference, b.supplier_name AS party, l.qty_received AS quantity, l.remarks").
					Joins("JOIN incoming_bills b ON b.id = l.bill_id")
			}},
			{MovementDonation, func() *gorm.DB {
				return db.Table("donation_lines l").
					Select("l.id AS entry_id, b.bill_date AS entry_date, b.bill_number AS reference, b.donor_name AS party, l.qty_received AS quantity, l.remarks").
					Joins("JOIN donation_bills b ON b.id = l.bill_id")
			}},
			{MovementOutgoing, func() *gorm.DB {
				return db.Table("outgoing_lines l").
					Select("l.id AS entry_id, b.bill_date AS entry_date, b.bill_number AS reference, c.name AS party, l.qty_issued AS quantity, l.remarks").
					Joins("JOIN outgoing_bills b ON b.id = l.bill_id").
					Joins("LEFT JOIN centers c ON c.id = b.center_id")
			}},
			{MovementCarePackage, func() *gorm.DB {
				return db.Table("care_package_issue_lines l").
					Select(`l.id AS entry_id, ci.issue_date AS entry_date, t.name AS reference,
						CASE WHEN ci.recipient_type = 'Center' THEN c.name ELSE d.name END AS party,
						l.quantity_per_package * ci.packages_issued AS quantity, ci.remarks`).
					Joins("JOIN care_package_issues ci ON ci.id = l.issue_id").
					Joins("JOIN care_package_templates t ON t.id = ci.template_id").
					Joins("LEFT JOIN centers c ON c.id = ci.center_id").
					Joins("LEFT JOIN gn_divisions d ON d.id = ci.division_id")
			}},
		}
		for _, q := range queries {
			var rows []Movement
			if err := q.build().Where("l.item_id = ?", itemID).Scan(&rows).Error; err != nil {
				return err
			}
			for i := range rows {
				rows[i].Type = q.kind
				rows[i].Quantity = rows[i].Quantity.Round(4)
			}
			out = append(out, rows...)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, "load item history")
	}
	slices.SortStableFunc(out, func(a, b Movement) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return int(b.EntryID) - int(a.EntryID)
	})
	return out, nil
}
