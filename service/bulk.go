package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dmc-inventory/apperr"
	"dmc-inventory/models"

	"github.com/shopspring/decimal"
)

// BulkResult is the outcome of a bulk upload. Row failures never abort the
// batch; they are counted and described in Messages.
type BulkResult struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Messages     []string `json:"messages"`
}

func (r *BulkResult) fail(row int, format string, args ...any) {
	r.FailureCount++
	r.Messages = append(r.Messages, fmt.Sprintf("row %d: ", row)+fmt.Sprintf(format, args...))
}

func (r *BulkResult) warn(row int, format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf("row %d: ", row)+fmt.Sprintf(format, args...))
}

// Importer loads loosely typed rows (CSV records keyed by header) into the
// master stores. Every accepted row goes through the store's Create.
type Importer struct {
	Items     *ItemStore
	Centers   *CenterStore
	Divisions *DivisionStore
}

// bulkRow looks values up by header, ignoring case, spaces and underscores.
type bulkRow map[string]string

func newBulkRow(raw map[string]string) bulkRow {
	row := make(bulkRow, len(raw))
	for k, v := range raw {
		row[headerKey(k)] = strings.TrimSpace(v)
	}
	return row
}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(h)
}

func (r bulkRow) get(aliases ...string) string {
	for _, a := range aliases {
		if v, ok := r[headerKey(a)]; ok && v != "" {
			return v
		}
	}
	return ""
}

func (im *Importer) ImportItems(ctx context.Context, rows []map[string]string) (BulkResult, error) {
	var res BulkResult
	for i, raw := range rows {
		n := i + 1
		r := newBulkRow(raw)

		item := models.Item{
			Name:     r.get("Item_Name", "name"),
			Unit:     r.get("Unit_Measure", "unit", "unit_of_measure"),
			Category: r.get("Category"),
		}
		if item.Name == "" {
			res.fail(n, "Item_Name is required")
			continue
		}
		if item.Unit == "" {
			res.fail(n, "Unit_Measure is required")
			continue
		}
		if lvl := r.get("Reorder_Level", "reorder"); lvl != "" {
			d, err := decimal.NewFromString(lvl)
			if err != nil || d.IsNegative() {
				res.fail(n, "Reorder_Level %q must be a number >= 0", lvl)
				continue
			}
			item.ReorderLevel = d
		}
		st, err := models.ParseStatus(r.get("Status"))
		if err != nil {
			res.fail(n, "%v", err)
			continue
		}
		item.Status = st

		if err := im.Items.Create(ctx, &item); err != nil {
			res.fail(n, "%s", messageOf(err))
			continue
		}
		res.SuccessCount++
	}
	return res, nil
}

func (im *Importer) ImportDivisions(ctx context.Context, rows []map[string]string) (BulkResult, error) {
	var res BulkResult
	for i, raw := range rows {
		n := i + 1
		r := newBulkRow(raw)

		div := models.Division{
			Name:           r.get("GN_Division_Name", "name", "gn_division"),
			ParentDivision: r.get("DS_Division", "parent_division"),
		}
		if div.Name == "" {
			res.fail(n, "GN_Division_Name is required")
			continue
		}
		st, err := models.ParseStatus(r.get("Status"))
		if err != nil {
			res.fail(n, "%v", err)
			continue
		}
		div.Status = st

		if err := im.Divisions.Create(ctx, &div); err != nil {
			res.fail(n, "%s", messageOf(err))
			continue
		}
		res.SuccessCount++
	}
	return res, nil
}

// ImportCenters resolves GN_Division_Name against active divisions by
// trimmed, case-insensitive equality. An unknown name is a warning and the
// center is saved without a division.
func (im *Importer) ImportCenters(ctx context.Context, rows []map[string]string) (BulkResult, error) {
	divisions, err := im.Divisions.List(ctx, false)
	if err != nil {
		return BulkResult{}, err
	}
	byName := make(map[string]uint, len(divisions))
	for _, d := range divisions {
		key := strings.ToLower(strings.TrimSpace(d.Name))
		if _, dup := byName[key]; !dup {
			byName[key] = d.ID
		}
	}

	var res BulkResult
	for i, raw := range rows {
		n := i + 1
		r := newBulkRow(raw)

		center := models.Center{
			Name:          r.get("Center_Name", "name"),
			ContactPerson: r.get("Contact_Person"),
			ContactPhone:  r.get("Contact_Phone", "phone"),
		}
		if center.Name == "" {
			res.fail(n, "Center_Name is required")
			continue
		}
		st, err := models.ParseStatus(r.get("Status"))
		if err != nil {
			res.fail(n, "%v", err)
			continue
		}
		center.Status = st

		if gn := r.get("GN_Division_Name", "gn_division", "division"); gn != "" {
			if id, ok := byName[strings.ToLower(gn)]; ok {
				center.DivisionID = &id
			} else {
				res.warn(n, "GN division %q not found, center saved without a division", gn)
			}
		}

		if err := im.Centers.Create(ctx, &center); err != nil {
			res.fail(n, "%s", messageOf(err))
			continue
		}
		res.SuccessCount++
	}
	return res, nil
}

func messageOf(err error) string {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}
