package models

import (
	"errors"
	"strings"
	"time"
)

// Center is a storage or distribution point, optionally inside a GN division.
type Center struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:200;not null;index"`
	DivisionID    *uint     `json:"division_id" gorm:"index"`
	Division      *Division `json:"division,omitempty" gorm:"foreignKey:DivisionID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	ContactPerson string    `json:"contact_person" gorm:"size:200"`
	ContactPhone  string    `json:"contact_phone" gorm:"size:50"`
	Status        Status    `json:"status" gorm:"size:16;not null;default:Active;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c *Center) GetID() uint { return c.ID }
func (c *Center) SetStatus(s Status) { c.Status = s }
func (c *Center) CurrentStatus() Status { return c.Status }

func (c *Center) EditableColumns() []string {
	return []string{"name", "division_id", "contact_person", "contact_phone", "status"}
}

func (c *Center) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.ContactPerson = strings.TrimSpace(c.ContactPerson)
	c.ContactPhone = strings.TrimSpace(c.ContactPhone)
	if c.DivisionID != nil && *c.DivisionID == 0 {
		c.DivisionID = nil
	}
	c.Division = nil
}

func (c *Center) Validate() error {
	if c.Name == "" {
		return errors.New("center name is required")
	}
	if !c.Status.Valid() {
		return errors.New("status must be Active or Inactive")
	}
	return nil
}
