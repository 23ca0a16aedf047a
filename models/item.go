package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"size:200;not null;index"`
	Unit         string          `json:"unit" gorm:"size:50;not null"`
	Category     string          `json:"category" gorm:"size:100"`
	ReorderLevel decimal.Decimal `json:"reorder_level" gorm:"type:decimal(18,4);not null;default:0"`
	Status       Status          `json:"status" gorm:"size:16;not null;default:Active;index"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (i *Item) GetID() uint { return i.ID }
func (i *Item) SetStatus(s Status) { i.Status = s }
func (i *Item) CurrentStatus() Status { return i.Status }

func (i *Item) EditableColumns() []string {
	return []string{"name", "unit", "category", "reorder_level", "status"}
}

func (i *Item) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Unit = strings.TrimSpace(i.Unit)
	i.Category = strings.TrimSpace(i.Category)
}

func (i *Item) Validate() error {
	switch {
	case i.Name == "":
		return errors.New("item name is required")
	case i.Unit == "":
		return errors.New("unit of measure is required")
	case i.ReorderLevel.IsNegative():
		return errors.New("reorder level must not be negative")
	case !i.Status.Valid():
		return errors.New("status must be Active or Inactive")
	}
	return nil
}
