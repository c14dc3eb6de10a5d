package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento financiero.
const (
	MovPagoCuota        = "PAGO_CUOTA"
	MovReversaPagoCuota = "REVERSA_PAGO_CUOTA"
	MovPagoCompra       = "PAGO_COMPRA"
	MovCostoAsociado    = "COSTO_ASOCIADO"
)

// Motivos y clasificaciones fijas del costo asociado.
const (
	MotivoCostoAsociado     = "COSTO_ASOCIADO"
	ClasificacionCostoVenta = "COSTO_VENTA"
	CostoVentaFlete         = "FLETE"
)

// Bases de prorrateo soportadas por el worker.
const (
	ProrrateoBaseCosto = "COSTO"
)

// Estados del prorrateo asíncrono de un costo asociado.
const (
	ProrrateoPendiente = "pendiente"
	ProrrateoAplicado  = "aplicado"
	ProrrateoError     = "error"
)

// MovimientoFinanciero es un asiento inmutable del libro financiero.
// Las anulaciones NUNCA modifican un asiento existente: generan el asiento
// inverso (DeltaCaja/DeltaBanco negados) referenciando al original.
type MovimientoFinanciero struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo               string          `gorm:"type:varchar(30);not null"`
	Motivo             string          `gorm:"not null"`
	ClasificacionAdmin *string         `gorm:"type:varchar(30)"`
	CostoVentaTipo     *string         `gorm:"type:varchar(30)"`
	AfectaInventario   bool            `gorm:"not null;default:false"`
	Monto              decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// DeltaCaja / DeltaBanco son la proyección mínima que consumen las vistas:
	// cuánto varió cada canal. Exactamente uno es distinto de cero.
	DeltaCaja        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	DeltaBanco       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CajaID           *uuid.UUID      `gorm:"type:uuid"`
	CuentaBancariaID *uuid.UUID      `gorm:"type:uuid"`
	CompraID         *uuid.UUID      `gorm:"type:uuid;index"`
	SucursalID       uuid.UUID       `gorm:"type:uuid;not null"`
	RegistradoPorID  uuid.UUID       `gorm:"type:uuid;not null"`
	// ReferenciaID enlaza el pago de cuota originante, o el movimiento
	// original cuando este asiento es una reversa.
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	Descripcion  string     `gorm:"not null"`

	// Prorrateo del costo asociado hacia el costo unitario del inventario.
	// Lo aplica el worker; los campos de retry siguen el mismo esquema que
	// usa el cron de reintentos.
	ProrratearBase            *string `gorm:"type:varchar(20)"`
	ProrratearIncluirAntiguos bool    `gorm:"not null;default:false"`
	EstadoProrrateo           *string `gorm:"type:varchar(20)"`
	RetryCount                int     `gorm:"not null;default:0"`
	NextRetryAt               *time.Time
	LastError                 *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName evita la pluralización por defecto de GORM.
func (MovimientoFinanciero) TableName() string { return "movimientos_financieros" }
