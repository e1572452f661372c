package repository

import (
	"context"
	"time"

	"github.com/slamora/lupanes/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrecioRepository stores the append-only price history.
type PrecioRepository interface {
	Create(ctx context.Context, p *model.PrecioProducto) error
	// ListByProducto returns every price of one product, newest start date
	// first. Histories are short (a handful of rows per product), so the
	// resolver works over the full list.
	ListByProducto(ctx context.Context, productoID uuid.UUID) ([]model.PrecioProducto, error)
	ExistsOn(ctx context.Context, productoID uuid.UUID, startDate time.Time) (bool, error)
}

type precioRepo struct{ db *gorm.DB }

func NewPrecioRepository(db *gorm.DB) PrecioRepository { return &precioRepo{db: db} }

func (r *precioRepo) Create(ctx context.Context, p *model.PrecioProducto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *precioRepo) ListByProducto(ctx context.Context, productoID uuid.UUID) ([]model.PrecioProducto, error) {
	var precios []model.PrecioProducto
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("start_date DESC").
		Find(&precios).Error
	return precios, err
}

func (r *precioRepo) ExistsOn(ctx context.Context, productoID uuid.UUID, startDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PrecioProducto{}).
		Where("producto_id = ? AND start_date = ?", productoID, startDate).
		Count(&count).Error
	return count > 0, err
}
