package repository

import (
	"context"

	"github.com/slamora/lupanes/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM
// implementation, enabling unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Producto, error)
	// List orders case-insensitively by name; soloActivos filters to the
	// catalog customers can pick from.
	List(ctx context.Context, soloActivos bool) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Producer").First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByNombre(ctx context.Context, nombre string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Producer").Where("nombre = ?", nombre).First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, soloActivos bool) ([]model.Producto, error) {
	q := r.db.WithContext(ctx).Preload("Producer").Order("lower(nombre) ASC")
	if soloActivos {
		q = q.Where("activo = true")
	}
	var productos []model.Producto
	err := q.Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}
