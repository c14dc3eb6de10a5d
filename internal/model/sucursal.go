package model

import (
	"time"

	"github.com/google/uuid"
)

// Sucursal es una sede de la operación. Todas las operaciones mutantes
// llevan la sucursal explícita (viaja en los claims del token, nunca en
// estado global).
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Cajas []Caja `gorm:"foreignKey:SucursalID"`
}

func (Sucursal) TableName() string { return "sucursales" }

// Caja es el canal de efectivo de una sucursal.
type Caja struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre     string    `gorm:"not null"`
	Activo     bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CuentaBancaria es el canal bancario para métodos distintos de efectivo.
type CuentaBancaria struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"not null"`
	Banco        string    `gorm:"not null"`
	NumeroCuenta string    `gorm:"uniqueIndex;not null"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
