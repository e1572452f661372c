package repository

import (
	"context"
	"time"

	"github.com/slamora/lupanes/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlbaranRepository defines data access for delivery notes. Month listings
// run against a live table that may be appended to concurrently; callers
// accept eventual rather than snapshot consistency.
type AlbaranRepository interface {
	Create(ctx context.Context, a *model.Albaran) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Albaran, error)
	Update(ctx context.Context, a *model.Albaran) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByCustomerAndDay backs the "today" screen and the same-day edit
	// window check.
	ListByCustomerAndDay(ctx context.Context, customerID uuid.UUID, day time.Time) ([]model.Albaran, error)
	ListByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, year, month int) ([]model.Albaran, error)
	ListByMonth(ctx context.Context, year, month int) ([]model.Albaran, error)
}

type albaranRepo struct{ db *gorm.DB }

func NewAlbaranRepository(db *gorm.DB) AlbaranRepository { return &albaranRepo{db: db} }

func (r *albaranRepo) Create(ctx context.Context, a *model.Albaran) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *albaranRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Albaran, error) {
	var a model.Albaran
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Preload("Customer").
		First(&a, id).Error
	return &a, err
}

func (r *albaranRepo) Update(ctx context.Context, a *model.Albaran) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *albaranRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Albaran{}, id).Error
}

func (r *albaranRepo) ListByCustomerAndDay(ctx context.Context, customerID uuid.UUID, day time.Time) ([]model.Albaran, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var albaranes []model.Albaran
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Where("customer_id = ? AND fecha >= ? AND fecha < ?", customerID, start, end).
		Order("fecha ASC").
		Find(&albaranes).Error
	return albaranes, err
}

func (r *albaranRepo) ListByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, year, month int) ([]model.Albaran, error) {
	start, end := monthBounds(year, month)

	var albaranes []model.Albaran
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Where("customer_id = ? AND fecha >= ? AND fecha < ?", customerID, start, end).
		Order("fecha ASC").
		Find(&albaranes).Error
	return albaranes, err
}

func (r *albaranRepo) ListByMonth(ctx context.Context, year, month int) ([]model.Albaran, error) {
	start, end := monthBounds(year, month)

	var albaranes []model.Albaran
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Preload("Customer").
		Where("fecha >= ? AND fecha < ?", start, end).
		Order("fecha ASC").
		Find(&albaranes).Error
	return albaranes, err
}

func monthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
