package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recepcion es un lote de unidades recibidas contra una compra.
// Inmutable una vez creada: nunca se actualiza, sólo se referencia.
// Cuando nace junto a un pago de cuota, PagoCuotaID enlaza ambos eventos.
type Recepcion struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	SucursalID    uuid.UUID  `gorm:"type:uuid;not null"`
	UsuarioID     uuid.UUID  `gorm:"type:uuid;not null"`
	PagoCuotaID   *uuid.UUID `gorm:"type:uuid;index"`
	Fecha         time.Time  `gorm:"not null"`
	FueTotal      bool       `gorm:"not null;default:false"`
	Observaciones *string
	CreatedAt     time.Time

	Lineas []RecepcionLinea `gorm:"foreignKey:RecepcionID"`
}

// RecepcionLinea es el delta recibido de una línea de compra.
type RecepcionLinea struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecepcionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompraDetalleID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo             string          `gorm:"type:varchar(20);not null"`
	RefID            uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad         int             `gorm:"not null"`
	PrecioCosto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaVencimiento *time.Time
	CreatedAt        time.Time
}
