package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"dmc-inventory/apperr"
	"dmc-inventory/models"
	"dmc-inventory/store"
	"dmc-inventory/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TemplateStore = Master[models.CarePackageTemplate, *models.CarePackageTemplate]

// CarePackages manages templates, their recipes and issues. An issue copies
// the template recipe into its own lines when it is recorded, so later
// recipe edits do not change past issues.
type CarePackages struct {
	store     *store.Store
	locks     store.KeyedMutex[uint]
	Templates *TemplateStore

	Now func() time.Time
}

func NewCarePackages(st *store.Store) *CarePackages {
	return &CarePackages{
		store:     st,
		Templates: NewMaster[models.CarePackageTemplate](st, "care package template"),
		Now:       time.Now,
	}
}

// ===== Templates =====

// GetTemplate returns the template with its recipe.
func (cp *CarePackages) GetTemplate(ctx context.Context, id uint) (*models.CarePackageTemplate, error) {
	var t models.CarePackageTemplate
	err := cp.store.Read(ctx, func(db *gorm.DB) error {
		return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Preload("Items.Item").
			First(&t, id).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "care package template not found")
	}
	return &t, nil
}

func (cp *CarePackages) ListItems(ctx context.Context, templateID uint) ([]models.CarePackageTemplateItem, error) {
	var rows []models.CarePackageTemplateItem
	err := cp.store.Read(ctx, func(db *gorm.DB) error {
		return db.Preload("Item").Where("template_id = ?", templateID).Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "list template items")
	}
	return rows, nil
}

func (cp *CarePackages) AddItem(ctx context.Context, ti *models.CarePackageTemplateItem) error {
	ti.Remarks = strings.TrimSpace(ti.Remarks)
	if err := ti.Validate(); err != nil {
		return apperr.Validation("%v", err)
	}
	ti.ID = 0
	err := cp.store.Read(ctx, func(db *gorm.DB) error {
		return db.Omit(clause.Associations).Create(ti).Error
	})
	return apperr.FromDB(err, "add template item")
}

// UpdateItem changes quantity and remarks only. To change the item, remove
// the line and add a new one.
func (cp *CarePackages) UpdateItem(ctx context.Context, id uint, qty decimal.Decimal, remarks string) (*models.CarePackageTemplateItem, error) {
	if !qty.IsPositive() {
		return nil, apperr.Validation("quantity per package must be greater than zero")
	}
	var ti models.CarePackageTemplateItem
	err := cp.store.Read(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.CarePackageTemplateItem{}).Where("id = ?", id).Updates(map[string]any{
			"quantity_per_package": qty,
			"remarks":              strings.TrimSpace(remarks),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return db.Preload("Item").First(&ti, id).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "update template item")
	}
	return &ti, nil
}

func (cp *CarePackages) RemoveItem(ctx context.Context, id uint) error {
	err := cp.store.Read(ctx, func(db *gorm.DB) error {
		res := db.Delete(&models.CarePackageTemplateItem{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return apperr.FromDB(err, "remove template item")
}

// CopyAllItems appends every recipe line of sourceID to targetID and returns
// how many were copied.
func (cp *CarePackages) CopyAllItems(ctx context.Context, sourceID, targetID uint) (int, error) {
	if sourceID == targetID {
		return 0, apperr.Validation("source and target template must differ")
	}
	copied := 0
	err := cp.store.Atomic(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.CarePackageTemplate{}).Where("id = ?", targetID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.Reference("target template %d does not exist", targetID)
		}
		if err := tx.Model(&models.CarePackageTemplate{}).Where("id = ?", sourceID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("source template %d does not exist", sourceID)
		}

		var src []models.CarePackageTemplateItem
		if err := tx.Where("template_id = ?", sourceID).Order("id ASC").Find(&src).Error; err != nil {
			return err
		}
		if len(src) == 0 {
			return nil
		}
		dst := make([]models.CarePackageTemplateItem, len(src))
		for i, s := range src {
			dst[i] = models.CarePackageTemplateItem{
				TemplateID:         targetID,
				ItemID:             s.ItemID,
				QuantityPerPackage: s.QuantityPerPackage,
				Remarks:            s.Remarks,
			}
		}
		if err := tx.Omit(clause.Associations).Create(&dst).Error; err != nil {
			return err
		}
		copied = len(dst)
		return nil
	})
	if err != nil {
		return 0, apperr.FromDB(err, "copy template items")
	}
	return copied, nil
}

// ===== Issues =====

func (cp *CarePackages) ListIssues(ctx context.Context) ([]models.CarePackageIssue, error) {
	var rows []models.CarePackageIssue
	err := cp.store.Read(ctx, func(db *gorm.DB) error {
		return db.Preload("Template").Preload("Center").Preload("Division").
			Order("issue_date DESC, id DESC").
			Find(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "list care package issues")
	}
	return rows, nil
}

func (cp *CarePackages) GetIssue(ctx context.Context, id uint) (*models.CarePackageIssue, error) {
	var is models.CarePackageIssue
	err := cp.store.Read(ctx, func(db *gorm.DB) error {
		return db.Preload("Template").Preload("Center").Preload("Division").
			Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Preload("Lines.Item").
			First(&is, id).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "care package issue not found")
	}
	return &is, nil
}

func (cp *CarePackages) prepareIssue(is *models.CarePackageIssue) error {
	if err := is.Validate(); err != nil {
		return apperr.Validation("%v", err)
	}
	is.Remarks = strings.TrimSpace(is.Remarks)
	if is.IssueDate.IsZero() {
		is.IssueDate = cp.Now().UTC()
	}
	is.IssueDate = utils.DateOnly(is.IssueDate)
	return nil
}

// snapshot copies the current recipe of templateID into issue lines.
func snapshot(tx *gorm.DB, templateID uint) ([]models.CarePackageIssueLine, error) {
	var t models.CarePackageTemplate
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).First(&t, templateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Reference("care package template %d does not exist", templateID)
		}
		return nil, err
	}
	if t.Status != models.StatusActive {
		return nil, apperr.Validation("care package template %q is inactive", t.Name)
	}
	if len(t.Items) == 0 {
		return nil, apperr.Validation("care package template %q has no items", t.Name)
	}
	lines := make([]models.CarePackageIssueLine, len(t.Items))
	for i, ti := range t.Items {
		lines[i] = models.CarePackageIssueLine{ItemID: ti.ItemID, QuantityPerPackage: ti.QuantityPerPackage}
	}
	return lines, nil
}

// CreateIssue records an issue together with the recipe snapshot.
func (cp *CarePackages) CreateIssue(ctx context.Context, is *models.CarePackageIssue) error {
	if err := cp.prepareIssue(is); err != nil {
		return err
	}
	err := cp.store.Atomic(ctx, func(tx *gorm.DB) error {
		lines, err := snapshot(tx, is.TemplateID)
		if err != nil {
			return err
		}
		is.ID = 0
		if err := tx.Omit(clause.Associations).Create(is).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].IssueID = is.ID
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		is.Lines = lines
		return nil
	})
	if err != nil {
		is.ID = 0
		return apperr.FromDB(err, "create care package issue")
	}
	return nil
}

// UpdateIssue rewrites issue id. The recipe snapshot is only retaken when
// the template changes.
func (cp *CarePackages) UpdateIssue(ctx context.Context, id uint, is *models.CarePackageIssue) error {
	if err := cp.prepareIssue(is); err != nil {
		return err
	}
	unlock := cp.locks.Lock(id)
	defer unlock()

	err := cp.store.Atomic(ctx, func(tx *gorm.DB) error {
		var existing models.CarePackageIssue
		if err := tx.First(&existing, id).Error; err != nil {
			return err
		}
		is.ID = id
		is.CreatedAt = existing.CreatedAt

		var lines []models.CarePackageIssueLine
		if is.TemplateID != existing.TemplateID {
			var err error
			if lines, err = snapshot(tx, is.TemplateID); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Save(is).Error; err != nil {
			return err
		}
		if lines == nil {
			is.Lines = nil
			return nil
		}
		if err := tx.Where("issue_id = ?", id).Delete(&models.CarePackageIssueLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].IssueID = id
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		is.Lines = lines
		return nil
	})
	return apperr.FromDB(err, "update care package issue")
}

// DeleteIssue removes the issue and its snapshot lines.
func (cp *CarePackages) DeleteIssue(ctx context.Context, id uint) error {
	unlock := cp.locks.Lock(id)
	defer unlock()

	err := cp.store.Read(ctx, func(db *gorm.DB) error {
		res := db.Delete(&models.CarePackageIssue{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return apperr.FromDB(err, "delete care package issue")
}
