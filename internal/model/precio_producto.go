package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrecioProducto is one entry of a product's price history. Rows are
// append-only and unique per (producto, start_date); the applicable price at
// a moment in time is the row with the greatest StartDate not after it.
type PrecioProducto struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_precio_producto_fecha"`
	Valor      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	// StartDate is a calendar date; the time part is always midnight UTC.
	StartDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_precio_producto_fecha"`
	CreatedAt time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (PrecioProducto) TableName() string { return "precios_producto" }
