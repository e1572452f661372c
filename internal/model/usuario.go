package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles. Resolved once at login and carried in the JWT claims — handlers
// never re-query group membership.
const (
	RolNevera = "nevera" // customer
	RolTienda = "tienda" // manager
)

// Usuario stores both customers (neveras) and managers (tienda).
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }

// EsNevera reports whether the user is a customer.
func (u *Usuario) EsNevera() bool { return u.Rol == RolNevera }

// EsTienda reports whether the user is a manager.
func (u *Usuario) EsTienda() bool { return u.Rol == RolTienda }
