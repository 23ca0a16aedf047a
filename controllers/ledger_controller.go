package controllers

import (
	"dmc-inventory/models"
	"dmc-inventory/service"
	"dmc-inventory/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ===== Request bodies =====

type billLineInput struct {
	ItemID       uint            `json:"item_id"`
	QtyReceived  decimal.Decimal `json:"qty_received"`
	QtyRequested decimal.Decimal `json:"qty_requested"`
	QtyIssued    decimal.Decimal `json:"qty_issued"`
	Remarks      string          `json:"remarks"`
}

// billInput is the body of POST/PUT on any ledger. Fields that do not apply
// to a ledger are ignored. An empty bill_number is generated; an empty
// bill_date means today on create and "unchanged" on update.
type billInput struct {
	BillNumber   string          `json:"bill_number"`
	BillDate     string          `json:"bill_date"`
	SupplierName string          `json:"supplier_name"`
	DonorName    string          `json:"donor_name"`
	CenterID     uint            `json:"center_id"`
	OfficerName  string          `json:"officer_name"`
	OfficerNIC   string          `json:"officer_nic"`
	Remarks      string          `json:"remarks"`
	Lines        []billLineInput `json:"lines"`
}

func (in billInput) header() (models.BillHeader, error) {
	d, err := parseOptionalDate(in.BillDate)
	if err != nil {
		return models.BillHeader{}, err
	}
	return models.BillHeader{BillNumber: in.BillNumber, BillDate: d, Remarks: in.Remarks}, nil
}

func (l billLineInput) ref() models.LineRef {
	return models.LineRef{ItemID: l.ItemID, Remarks: l.Remarks}
}

func (in billInput) incoming() (*models.IncomingBill, error) {
	h, err := in.header()
	if err != nil {
		return nil, err
	}
	b := &models.IncomingBill{BillHeader: h, SupplierName: in.SupplierName}
	for _, l := range in.Lines {
		b.Lines = append(b.Lines, models.IncomingLine{LineRef: l.ref(), QtyReceived: l.QtyReceived})
	}
	return b, nil
}

func (in billInput) donation() (*models.DonationBill, error) {
	h, err := in.header()
	if err != nil {
		return nil, err
	}
	b := &models.DonationBill{BillHeader: h, DonorName: in.DonorName}
	for _, l := range in.Lines {
		b.Lines = append(b.Lines, models.DonationLine{LineRef: l.ref(), QtyReceived: l.QtyReceived})
	}
	return b, nil
}

func (in billInput) outgoing() (*models.OutgoingBill, error) {
	h, err := in.header()
	if err != nil {
		return nil, err
	}
	b := &models.OutgoingBill{
		BillHeader:  h,
		CenterID:    in.CenterID,
		OfficerName: in.OfficerName,
		OfficerNIC:  in.OfficerNIC,
	}
	for _, l := range in.Lines {
		b.Lines = append(b.Lines, models.OutgoingLine{
			LineRef:      l.ref(),
			QtyRequested: l.QtyRequested,
			QtyIssued:    l.QtyIssued,
		})
	}
	return b, nil
}

// ===== Handlers =====

// LedgerHandlers serves one bill ledger.
type LedgerHandlers[B any, L any, PB interface {
	*B
	service.BillRecord[L]
}, PL interface {
	*L
	service.LineRecord
}] struct {
	ledger *service.Ledger[B, L, PB, PL]
	decode func(billInput) (PB, error)
}

type (
	IncomingHandlers = LedgerHandlers[models.IncomingBill, models.IncomingLine, *models.IncomingBill, *models.IncomingLine]
	DonationHandlers = LedgerHandlers[models.DonationBill, models.DonationLine, *models.DonationBill, *models.DonationLine]
	OutgoingHandlers = LedgerHandlers[models.OutgoingBill, models.OutgoingLine, *models.OutgoingBill, *models.OutgoingLine]
)

func (h *LedgerHandlers[B, L, PB, PL]) bind(c *gin.Context) (PB, bool) {
	var in billInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "invalid bill payload", err)
		var zero PB
		return zero, false
	}
	bill, err := h.decode(in)
	if err != nil {
		utils.Fail(c, "invalid bill payload", err)
		return bill, false
	}
	return bill, true
}

func (h *LedgerHandlers[B, L, PB, PL]) List(c *gin.Context) {
	rows, err := h.ledger.List(c.Request.Context())
	if err != nil {
		utils.Fail(c, "could not list bills", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *LedgerHandlers[B, L, PB, PL]) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	bill, err := h.ledger.GetDetails(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, "bill not found", err)
		return
	}
	utils.Success(c, "ok", bill)
}

func (h *LedgerHandlers[B, L, PB, PL]) Create(c *gin.Context) {
	bill, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.ledger.Create(c.Request.Context(), bill); err != nil {
		utils.Fail(c, "could not save bill", err)
		return
	}
	utils.Created(c, "bill "+bill.Header().BillNumber+" saved", bill)
}

func (h *LedgerHandlers[B, L, PB, PL]) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	bill, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.ledger.Update(c.Request.Context(), id, bill); err != nil {
		utils.Fail(c, "could not update bill", err)
		return
	}
	utils.Success(c, "bill "+bill.Header().BillNumber+" updated", bill)
}

func (h *LedgerHandlers[B, L, PB, PL]) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok || !confirmed(c) {
		return
	}
	if err := h.ledger.Delete(c.Request.Context(), id); err != nil {
		utils.Fail(c, "could not delete bill", err)
		return
	}
	utils.Success(c, "bill deleted", gin.H{"id": id})
}

// Counterparties lists known supplier or donor names for autocomplete.
func (h *LedgerHandlers[B, L, PB, PL]) Counterparties(c *gin.Context) {
	names, err := h.ledger.Counterparties(c.Request.Context())
	if err != nil {
		utils.Fail(c, "could not list names", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	utils.Success(c, "ok", names)
}
