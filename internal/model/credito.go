package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de un crédito por compra.
const (
	CreditoPendiente = "PENDIENTE"
	CreditoParcial   = "PARCIAL"
	CreditoPagado    = "PAGADO"
	CreditoAnulado   = "ANULADO"
)

// Estados de una cuota.
const (
	CuotaPendiente = "PENDIENTE"
	CuotaParcial   = "PARCIAL"
	CuotaPagada    = "PAGADA"
	CuotaVencida   = "VENCIDA"
)

// Tipos de interés de las condiciones de pago.
const (
	InteresNinguno = "SIN_INTERES"
	InteresSimple  = "SIMPLE"
)

// Métodos de pago aceptados. EFECTIVO canaliza por caja; todos los demás
// canalizan por cuenta bancaria.
const (
	MetodoEfectivo      = "EFECTIVO"
	MetodoTransferencia = "TRANSFERENCIA"
	MetodoTarjeta       = "TARJETA"
	MetodoCheque        = "CHEQUE"
	MetodoCredito       = "CREDITO"
	MetodoOtro          = "OTRO"
)

// CreditoCompra existe uno a uno con una compra a crédito. Los campos de
// rollup (TotalPagado, Saldo, CuotasPagadas) se recalculan en la misma
// transacción que cada pago o reversa.
type CreditoCompra struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Estado   string    `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`

	// Condiciones de pago
	TipoInteres     string          `gorm:"type:varchar(20);not null;default:'SIN_INTERES'"`
	InteresPct      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiasEntreCuotas int             `gorm:"not null"`
	CantidadCuotas  int             `gorm:"not null"`

	// Rollup
	MontoTotal    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalPagado   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Saldo         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CuotasPagadas int             `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Cuotas []Cuota `gorm:"foreignKey:CreditoID"`
}

// Cuota es una obligación programada del crédito, ordenada por Numero.
// Saldo arranca igual a Monto; cuando llega a cero la cuota pasa a PAGADA.
type Cuota struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditoID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Numero           int             `gorm:"not null"`
	FechaVencimiento time.Time       `gorm:"not null"`
	Monto            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Saldo            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Pagos []PagoCuota `gorm:"foreignKey:CuotaID"`
}

// EstadoPorSaldo deriva el estado de la cuota de su saldo restante.
// VENCIDA la determina la fecha, no el saldo, y sólo aplica a cuotas impagas.
func (c *Cuota) EstadoPorSaldo(hoy time.Time) string {
	switch {
	case c.Saldo.IsZero():
		return CuotaPagada
	case c.Saldo.LessThan(c.Monto):
		return CuotaParcial
	case hoy.After(c.FechaVencimiento):
		return CuotaVencida
	default:
		return CuotaPendiente
	}
}

// PagoCuota registra un pago aplicado a una cuota. Los pagos no se borran:
// la reversa marca Anulado y genera el movimiento financiero inverso.
type PagoCuota struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CuotaID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FechaPago        time.Time       `gorm:"not null"`
	Metodo           string          `gorm:"type:varchar(20);not null"`
	CajaID           *uuid.UUID      `gorm:"type:uuid"`
	CuentaBancariaID *uuid.UUID      `gorm:"type:uuid"`
	// MovimientoFinancieroID enlaza el asiento generado por este pago.
	MovimientoFinancieroID *uuid.UUID `gorm:"type:uuid"`
	// RecepcionID enlaza la recepción parcial empaquetada con el pago, si hubo.
	RecepcionID     *uuid.UUID `gorm:"type:uuid"`
	RegistradoPorID uuid.UUID  `gorm:"type:uuid;not null"`
	Referencia      *string
	Observaciones   *string
	Anulado         bool `gorm:"not null;default:false"`
	AnuladoAt       *time.Time
	AnuladoPorID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
