package model

import (
	"time"

	"github.com/google/uuid"
)

// Unidad is the unit of measure a product is delivered in.
type Unidad string

const (
	UnidadBote    Unidad = "bote"
	UnidadBotella Unidad = "botella"
	UnidadDocena  Unidad = "docena"
	UnidadGarrafa Unidad = "garrafa"
	UnidadKg      Unidad = "Kg"
	UnidadPaquete Unidad = "paquete"
	UnidadLitro   Unidad = "litro"
	UnidadUnidad  Unidad = "unidad"
)

// Unidades lists every valid unit of measure.
var Unidades = []Unidad{
	UnidadBote, UnidadBotella, UnidadDocena, UnidadGarrafa,
	UnidadKg, UnidadPaquete, UnidadLitro, UnidadUnidad,
}

// Valid reports whether u is a known unit.
func (u Unidad) Valid() bool {
	for _, known := range Unidades {
		if u == known {
			return true
		}
	}
	return false
}

// AcceptsDecimals reports whether fractional quantities make sense for this
// unit. Only Kg does — a customer cannot take half a bottle.
func (u Unidad) AcceptsDecimals() bool { return u == UnidadKg }

// Producto is a product supplied by a producer. Its price lives in the
// append-only PrecioProducto history, never on the product row itself.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Descripcion string
	ProducerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Unidad      Unidad    `gorm:"type:varchar(16);not null"`
	Activo      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Producer *Producer        `gorm:"foreignKey:ProducerID"`
	Precios  []PrecioProducto `gorm:"foreignKey:ProductoID;constraint:OnDelete:CASCADE"`
}

func (Producto) TableName() string { return "productos" }
