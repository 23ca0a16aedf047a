package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CarePackageTemplate is a named recipe of item quantities per package.
type CarePackageTemplate struct {
	ID          uint                      `json:"id" gorm:"primaryKey"`
	Name        string                    `json:"name" gorm:"size:200;not null;index"`
	Description string                    `json:"description"`
	Status      Status                    `json:"status" gorm:"size:16;not null;default:Active;index"`
	Items       []CarePackageTemplateItem `json:"items,omitempty" gorm:"foreignKey:TemplateID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

func (t *CarePackageTemplate) GetID() uint { return t.ID }
func (t *CarePackageTemplate) SetStatus(s Status) { t.Status = s }
func (t *CarePackageTemplate) CurrentStatus() Status { return t.Status }

func (t *CarePackageTemplate) EditableColumns() []string {
	return []string{"name", "description", "status"}
}

func (t *CarePackageTemplate) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	t.Items = nil
}

func (t *CarePackageTemplate) Validate() error {
	if t.Name == "" {
		return errors.New("package name is required")
	}
	if !t.Status.Valid() {
		return errors.New("status must be Active or Inactive")
	}
	return nil
}

type CarePackageTemplateItem struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	TemplateID         uint            `json:"template_id" gorm:"not null;index"`
	ItemID             uint            `json:"item_id" gorm:"not null;index"`
	Item               *Item           `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	QuantityPerPackage decimal.Decimal `json:"quantity_per_package" gorm:"type:decimal(18,4);not null"`
	Remarks            string          `json:"remarks"`
}

func (ti *CarePackageTemplateItem) Validate() error {
	switch {
	case ti.TemplateID == 0:
		return errors.New("template is required")
	case ti.ItemID == 0:
		return errors.New("item is required")
	case !ti.QuantityPerPackage.IsPositive():
		return errors.New("quantity per package must be greater than zero")
	}
	return nil
}

type RecipientType string

const (
	RecipientCenter   RecipientType = "Center"
	RecipientDivision RecipientType = "Division"
)

// CarePackageIssue records packages handed to one recipient. Lines hold the
// recipe as it was when the issue was recorded.
type CarePackageIssue struct {
	ID             uint                   `json:"id" gorm:"primaryKey"`
	TemplateID     uint                   `json:"template_id" gorm:"not null;index"`
	Template       *CarePackageTemplate   `json:"template,omitempty" gorm:"foreignKey:TemplateID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	IssueDate      time.Time              `json:"issue_date" gorm:"not null;index"`
	PackagesIssued decimal.Decimal        `json:"packages_issued" gorm:"type:decimal(18,4);not null"`
	RecipientType  RecipientType          `json:"recipient_type" gorm:"size:16;not null"`
	CenterID       *uint                  `json:"center_id" gorm:"index"`
	Center         *Center                `json:"center,omitempty" gorm:"foreignKey:CenterID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	DivisionID     *uint                  `json:"division_id" gorm:"index"`
	Division       *Division              `json:"division,omitempty" gorm:"foreignKey:DivisionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	OfficerName    string                 `json:"officer_name" gorm:"size:200;not null"`
	OfficerNIC     string                 `json:"officer_nic" gorm:"size:32;not null"`
	Remarks        string                 `json:"remarks"`
	Lines          []CarePackageIssueLine `json:"lines,omitempty" gorm:"foreignKey:IssueID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Validate checks the issue and clears the recipient reference that does not
// match RecipientType.
func (is *CarePackageIssue) Validate() error {
	is.OfficerName = strings.TrimSpace(is.OfficerName)
	is.OfficerNIC = strings.TrimSpace(is.OfficerNIC)
	switch {
	case is.TemplateID == 0:
		return errors.New("care package template is required")
	case !is.PackagesIssued.IsPositive():
		return errors.New("packages issued must be greater than zero")
	case is.OfficerName == "":
		return errors.New("officer name is required")
	case is.OfficerNIC == "":
		return errors.New("officer NIC is required")
	}
	switch is.RecipientType {
	case RecipientCenter:
		if is.CenterID == nil || *is.CenterID == 0 {
			return errors.New("center is required for a Center recipient")
		}
		is.DivisionID = nil
	case RecipientDivision:
		if is.DivisionID == nil || *is.DivisionID == 0 {
			return errors.New("GN division is required for a Division recipient")
		}
		is.CenterID = nil
	default:
		return errors.New("recipient type must be Center or Division")
	}
	is.Template, is.Center, is.Division = nil, nil, nil
	return nil
}

type CarePackageIssueLine struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	IssueID            uint            `json:"issue_id" gorm:"not null;index"`
	ItemID             uint            `json:"item_id" gorm:"not null;index"`
	Item               *Item           `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	QuantityPerPackage decimal.Decimal `json:"quantity_per_package" gorm:"type:decimal(18,4);not null"`
}
