package service

import (
	"context"
	"slices"

	"dmc-inventory/apperr"
	"dmc-inventory/models"
	"dmc-inventory/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MasterRecord is implemented by the soft-deletable reference tables.
type MasterRecord interface {
	GetID() uint
	SetStatus(models.Status)
	CurrentStatus() models.Status
	EditableColumns() []string
	Normalize()
	Validate() error
}

// Master is the list/create/update/soft-delete store shared by items,
// centers, GN divisions and care package templates.
type Master[T any, PT interface {
	*T
	MasterRecord
}] struct {
	store *store.Store
	label string

	Cache *ListCache[T]
}

func NewMaster[T any, PT interface {
	*T
	MasterRecord
}](st *store.Store, label string) *Master[T, PT] {
	return &Master[T, PT]{store: st, label: label}
}

type (
	ItemStore     = Master[models.Item, *models.Item]
	CenterStore   = Master[models.Center, *models.Center]
	DivisionStore = Master[models.Division, *models.Division]
)

func NewItemStore(st *store.Store) *ItemStore { return NewMaster[models.Item](st, "item") }
func NewCenterStore(st *store.Store) *CenterStore { return NewMaster[models.Center](st, "center") }
func NewDivisionStore(st *store.Store) *DivisionStore { return NewMaster[models.Division](st, "GN division") }

// List returns records ordered by name; inactive ones only when asked.
func (m *Master[T, PT]) List(ctx context.Context, includeInactive bool) ([]T, error) {
	rows, gen, ok := m.Cache.Get(includeInactive)
	if ok {
		return rows, nil
	}
	err := m.store.Read(ctx, func(db *gorm.DB) error {
		q := db.Model(new(T))
		if !includeInactive {
			q = q.Where("status = ?", models.StatusActive)
		}
		return q.Order("name ASC, id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "list "+m.label+"s")
	}
	m.Cache.Put(gen, includeInactive, rows)
	return rows, nil
}

func (m *Master[T, PT]) ListActive(ctx context.Context) ([]T, error) {
	return m.List(ctx, false)
}

func (m *Master[T, PT]) Get(ctx context.Context, id uint) (*T, error) {
	rec := new(T)
	err := m.store.Read(ctx, func(db *gorm.DB) error {
		return db.First(rec, id).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, m.label+" not found")
	}
	return rec, nil
}

// Create inserts rec; a blank status becomes Active.
func (m *Master[T, PT]) Create(ctx context.Context, rec *T) error {
	p := PT(rec)
	p.Normalize()
	if p.CurrentStatus() == "" {
		p.SetStatus(models.StatusActive)
	}
	if err := p.Validate(); err != nil {
		return apperr.Validation("%v", err)
	}
	err := m.store.Read(ctx, func(db *gorm.DB) error {
		return db.Omit(clause.Associations).Create(rec).Error
	})
	if err != nil {
		return apperr.FromDB(err, "create "+m.label)
	}
	m.Cache.Invalidate()
	return nil
}

// Update overwrites the editable columns of id with rec and refreshes
// updated_at. A blank status keeps the stored one.
func (m *Master[T, PT]) Update(ctx context.Context, id uint, rec *T) (*T, error) {
	p := PT(rec)
	p.Normalize()

	out := new(T)
	err := m.store.Read(ctx, func(db *gorm.DB) error {
		if err := db.First(out, id).Error; err != nil {
			return err
		}
		if p.CurrentStatus() == "" {
			p.SetStatus(PT(out).CurrentStatus())
		}
		if err := p.Validate(); err != nil {
			return apperr.Validation("%v", err)
		}
		cols := append(slices.Clone(p.EditableColumns()), "updated_at")
		res := db.Model(out).Select(cols).Updates(rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return db.First(out, id).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "update "+m.label)
	}
	m.Cache.Invalidate()
	return out, nil
}

// SoftDelete flips status to Inactive. Rows are never removed.
func (m *Master[T, PT]) SoftDelete(ctx context.Context, id uint) error {
	err := m.store.Read(ctx, func(db *gorm.DB) error {
		res := db.Model(new(T)).Where("id = ?", id).Update("status", models.StatusInactive)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return apperr.FromDB(err, "deactivate "+m.label)
	}
	m.Cache.Invalidate()
	return nil
}
