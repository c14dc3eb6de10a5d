package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una requisición.
const (
	RequisicionPendiente = "PENDIENTE"
	RequisicionProcesada = "PROCESADA"
	RequisicionAnulada   = "ANULADA"
)

// Requisicion es un pedido de reposición construido desde los candidatos
// stock-vs-mínimo. Los faltantes los calcula el servidor; el cliente sólo
// elige cantidades y costos.
type Requisicion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID     uuid.UUID `gorm:"type:uuid;not null"`
	Estado        string    `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	Observaciones *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Lineas []RequisicionLinea `gorm:"foreignKey:RequisicionID"`
}

func (Requisicion) TableName() string { return "requisiciones" }

// RequisicionLinea referencia un producto o una presentación, nunca ambos.
type RequisicionLinea struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequisicionID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductoID          *uuid.UUID `gorm:"type:uuid;index"`
	PresentacionID      *uuid.UUID `gorm:"type:uuid;index"`
	CantidadSugerida    int        `gorm:"not null"`
	FechaExpiracion     *time.Time
	PrecioCostoUnitario *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// ActualizarCosto propaga el costo unitario elegido al costo maestro
	// del producto/presentación al crear la requisición.
	ActualizarCosto bool `gorm:"not null;default:false"`
	CreatedAt       time.Time
}

func (RequisicionLinea) TableName() string { return "requisicion_lineas" }
