package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Albaran is a delivery note: a quantity of one product taken by one
// customer on a date. Its monetary amount is never stored — it is derived
// from the price history at the note's own timestamp, so customers and
// products referenced by notes must not be deleted (RESTRICT).
type Albaran struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad   decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	// Fecha defaults to creation time but managers may back-date it when
	// digitalizing paper notes.
	Fecha time.Time `gorm:"not null;index"`
	// CreadorID is set when someone other than the customer recorded the note.
	CreadorID *uuid.UUID `gorm:"type:uuid"`
	// NumHoja is the sheet number of the paper albaran, when digitalized.
	NumHoja   *int
	CreatedAt time.Time
	UpdatedAt time.Time

	Customer *Usuario  `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
	Creador  *Usuario  `gorm:"foreignKey:CreadorID"`
}

func (Albaran) TableName() string { return "albaranes" }
