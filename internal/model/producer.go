package model

import (
	"time"

	"github.com/google/uuid"
)

// Producer is the supplier/manufacturer of a product.
type Producer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Productos []Producto `gorm:"foreignKey:ProducerID;constraint:OnDelete:RESTRICT"`
}

func (Producer) TableName() string { return "producers" }
