package refill

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("refill request not found")

type Repository interface {
	// List returns every request when userID is nil, else only that user's.
	List(ctx context.Context, userID *uint) ([]RefillRequest, error)
	Get(ctx context.Context, id uint) (*RefillRequest, error)
	Create(ctx context.Context, r *RefillRequest) error
	UpdateStatus(ctx context.Context, id uint, status Status) (*RefillRequest, error)
	Aggregate(ctx context.Context, userID *uint) ([]AggregateRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, userID *uint) ([]RefillRequest, error) {
	q := r.db.WithContext(ctx).Preload("User").Preload("Medication").Order("requested_at DESC, id DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var out []RefillRequest
	err := q.Find(&out).Error
	return out, err
}

func (r *repository) Get(ctx context.Context, id uint) (*RefillRequest, error) {
	var req RefillRequest
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) Create(ctx context.Context, req *RefillRequest) error {
	return r.db.WithContext(ctx).Omit("User", "Medication").Create(req).Error
}

// UpdateStatus touches only the status column.
func (r *repository) UpdateStatus(ctx context.Context, id uint, status Status) (*RefillRequest, error) {
	res := r.db.WithContext(ctx).Model(&RefillRequest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Aggregate counts requests per medication, including medications nobody
// has asked to refill.
func (r *repository) Aggregate(ctx context.Context, userID *uint) ([]AggregateRow, error) {
	join := "LEFT JOIN refill_requests ON refill_requests.medication_id = medications.id"
	args := []interface{}{}
	if userID != nil {
		join += " AND refill_requests.user_id = ?"
		args = append(args, *userID)
	}

	var rows []AggregateRow
	err := r.db.WithContext(ctx).
		Table("medications").
		Select("medications.name AS name, COUNT(refill_requests.id) AS refill_request_count").
		Joins(join, args...).
		Group("medications.id, medications.name").
		Order("medications.id").
		Scan(&rows).Error
	return rows, err
}
