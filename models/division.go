package models

import (
	"errors"
	"strings"
	"time"
)

// Division is a Grama Niladhari division. ParentDivision holds the DS
// division label as free text.
type Division struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:200;not null;index"`
	ParentDivision string    `json:"parent_division" gorm:"size:200"`
	Status         Status    `json:"status" gorm:"size:16;not null;default:Active;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Division) TableName() string { return "gn_divisions" }

func (d *Division) GetID() uint { return d.ID }
func (d *Division) SetStatus(s Status) { d.Status = s }
func (d *Division) CurrentStatus() Status { return d.Status }

func (d *Division) EditableColumns() []string {
	return []string{"name", "parent_division", "status"}
}

func (d *Division) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.ParentDivision = strings.TrimSpace(d.ParentDivision)
}

func (d *Division) Validate() error {
	if d.Name == "" {
		return errors.New("division name is required")
	}
	if !d.Status.Valid() {
		return errors.New("status must be Active or Inactive")
	}
	return nil
}
