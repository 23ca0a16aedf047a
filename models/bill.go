package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bill number prefixes, one per ledger.
const (
	PrefixIncoming = "GRN"
	PrefixDonation = "DON"
	PrefixOutgoing = "DSP"
)

// BillHeader is shared by the three ledgers. BillDate is a calendar day kept
// at UTC midnight.
type BillHeader struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BillNumber string    `json:"bill_number" gorm:"size:32;not null;uniqueIndex"`
	BillDate   time.Time `json:"bill_date" gorm:"not null;index"`
	Remarks    string    `json:"remarks"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (h *BillHeader) Header() *BillHeader { return h }

// LineRef is shared by every bill line.
type LineRef struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	BillID  uint   `json:"bill_id" gorm:"not null;index"`
	ItemID  uint   `json:"item_id" gorm:"not null;index"`
	Remarks string `json:"remarks"`
}

func (r *LineRef) Ref() *LineRef { return r }

// ===== Incoming (GRN) =====

type IncomingBill struct {
	BillHeader
	SupplierName string         `json:"supplier_name" gorm:"size:200;not null;index"`
	Lines        []IncomingLine `json:"lines,omitempty" gorm:"foreignKey:BillID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type IncomingLine struct {
	LineRef
	QtyReceived decimal.Decimal `json:"qty_received" gorm:"type:decimal(18,4);not null"`
	Item        *Item           `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

func (b *IncomingBill) GetLines() []IncomingLine { return b.Lines }
func (b *IncomingBill) SetLines(lines []IncomingLine) { b.Lines = lines }

func (b *IncomingBill) Validate() error {
	b.SupplierName = strings.TrimSpace(b.SupplierName)
	if b.SupplierName == "" {
		return errors.New("supplier name is required")
	}
	return nil
}

func (l *IncomingLine) Validate() error { return positiveReceived(l.ItemID, l.QtyReceived) }

// ===== Donation (DON) =====

type DonationBill struct {
	BillHeader
	DonorName string         `json:"donor_name" gorm:"size:200;not null;index"`
	Lines     []DonationLine `json:"lines,omitempty" gorm:"foreignKey:BillID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type DonationLine struct {
	LineRef
	QtyReceived decimal.Decimal `json:"qty_received" gorm:"type:decimal(18,4);not null"`
	Item        *Item           `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

func (b *DonationBill) GetLines() []DonationLine { return b.Lines }
func (b *DonationBill) SetLines(lines []DonationLine) { b.Lines = lines }

func (b *DonationBill) Validate() error {
	b.DonorName = strings.TrimSpace(b.DonorName)
	if b.DonorName == "" {
		return errors.New("donor name is required")
	}
	return nil
}

func (l *DonationLine) Validate() error { return positiveReceived(l.ItemID, l.QtyReceived) }

// ===== Outgoing (DSP) =====

type OutgoingBill struct {
	BillHeader
	CenterID    uint           `json:"center_id" gorm:"not null;index"`
	Center      *Center        `json:"center,omitempty" gorm:"foreignKey:CenterID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	OfficerName string         `json:"officer_name" gorm:"size:200;not null"`
	OfficerNIC  string         `json:"officer_nic" gorm:"size:32;not null"`
	Lines       []OutgoingLine `json:"lines,omitempty" gorm:"foreignKey:BillID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type OutgoingLine struct {
	LineRef
	QtyRequested decimal.Decimal `json:"qty_requested" gorm:"type:decimal(18,4);not null"`
	QtyIssued    decimal.Decimal `json:"qty_issued" gorm:"type:decimal(18,4);not null"`
	Item         *Item           `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

func (b *OutgoingBill) GetLines() []OutgoingLine { return b.Lines }
func (b *OutgoingBill) SetLines(lines []OutgoingLine) { b.Lines = lines }

func (b *OutgoingBill) Validate() error {
	b.OfficerName = strings.TrimSpace(b.OfficerName)
	b.OfficerNIC = strings.TrimSpace(b.OfficerNIC)
	switch {
	case b.CenterID == 0:
		return errors.New("center is required")
	case b.OfficerName == "":
		return errors.New("officer name is required")
	case b.OfficerNIC == "":
		return errors.New("officer NIC is required")
	}
	b.Center = nil
	return nil
}

func (l *OutgoingLine) Validate() error {
	switch {
	case l.ItemID == 0:
		return errors.New("item is required")
	case !l.QtyRequested.IsPositive():
		return fmt.Errorf("item %d: requested quantity must be greater than zero", l.ItemID)
	case l.QtyIssued.IsNegative():
		return fmt.Errorf("item %d: issued quantity must not be negative", l.ItemID)
	case l.QtyIssued.GreaterThan(l.QtyRequested):
		return fmt.Errorf("item %d: issued quantity %s exceeds requested %s", l.ItemID, l.QtyIssued, l.QtyRequested)
	}
	return nil
}

func positiveReceived(itemID uint, qty decimal.Decimal) error {
	if itemID == 0 {
		return errors.New("item is required")
	}
	if !qty.IsPositive() {
		return fmt.Errorf("item %d: received quantity must be greater than zero", itemID)
	}
	return nil
}

// BillSequence is the per (prefix, day) counter behind bill numbers.
type BillSequence struct {
	Prefix  string `gorm:"primaryKey;size:8"`
	Day     string `gorm:"primaryKey;size:8"` // YYYYMMDD
	LastSeq int    `gorm:"not null;default:0"`
}
