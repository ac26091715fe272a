package medication

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("medication not found")

type Repository interface {
	List(ctx context.Context) ([]Medication, error)
	Get(ctx context.Context, id uint) (*Medication, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, m *Medication) error
	// CreateIfAbsent inserts m unless a medication with the same name exists,
	// in which case m is filled from the stored row.
	CreateIfAbsent(ctx context.Context, m *Medication) (bool, error)
	Update(ctx context.Context, id uint, changes map[string]interface{}) (*Medication, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Medication, error) {
	var meds []Medication
	err := r.db.WithContext(ctx).Order("id").Find(&meds).Error
	return meds, err
}

func (r *repository) Get(ctx context.Context, id uint) (*Medication, error) {
	var m Medication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Medication{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) Create(ctx context.Context, m *Medication) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) CreateIfAbsent(ctx context.Context, m *Medication) (bool, error) {
	res := r.db.WithContext(ctx).Where(Medication{Name: m.Name}).FirstOrCreate(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Update writes only the columns named in changes.
func (r *repository) Update(ctx context.Context, id uint, changes map[string]interface{}) (*Medication, error) {
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&Medication{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Medication{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
