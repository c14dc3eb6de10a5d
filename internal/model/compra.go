package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una compra. RECIBIDO_PARCIAL se alcanza cuando al menos una
// línea recibió unidades pero el total ordenado aún no está completo.
const (
	CompraEsperandoEntrega = "ESPERANDO_ENTREGA"
	CompraRecibido         = "RECIBIDO"
	CompraRecibidoParcial  = "RECIBIDO_PARCIAL"
	CompraAnulado          = "ANULADO"
)

// Estados derivados de una línea de compra.
const (
	DetallePendiente = "PENDIENTE"
	DetalleParcial   = "PARCIAL"
	DetalleRecibido  = "RECIBIDO"
)

// Scope de una línea: referencia a un producto o a una presentación,
// nunca ambos.
const (
	RefProducto     = "producto"
	RefPresentacion = "presentacion"
)

// Compra representa una orden de compra a un proveedor.
type Compra struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero      int64     `gorm:"uniqueIndex;autoIncrement:false"`
	ProveedorID uuid.UUID `gorm:"type:uuid;not null;index"`
	SucursalID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Fecha       time.Time `gorm:"not null"`
	Estado      string    `gorm:"type:varchar(30);not null;default:'ESPERANDO_ENTREGA'"`
	// EsCredito indica que la compra se pactó en cuotas; en ese caso existe
	// exactamente un CreditoCompra asociado.
	EsCredito     bool            `gorm:"not null;default:false"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Observaciones *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Proveedor *Proveedor      `gorm:"foreignKey:ProveedorID"`
	Detalles  []CompraDetalle `gorm:"foreignKey:CompraID"`
	Credito   *CreditoCompra  `gorm:"foreignKey:CompraID"`
}

// CompraDetalle es una línea ordenada. CantidadRecibida acumula todas las
// recepciones históricas; nunca supera Cantidad.
type CompraDetalle struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Tipo + RefID identifican el ítem: producto o presentación (excluyente).
	Tipo             string          `gorm:"type:varchar(20);not null"`
	RefID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad         int             `gorm:"not null"`
	CantidadRecibida int             `gorm:"not null;default:0"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	PrecioCosto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FechaVencimiento *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Pendiente devuelve las unidades aún no recibidas (siempre ≥ 0).
func (d *CompraDetalle) Pendiente() int {
	p := d.Cantidad - d.CantidadRecibida
	if p < 0 {
		return 0
	}
	return p
}

// EstadoCalculado deriva el estado de la línea de sus cantidades.
func (d *CompraDetalle) EstadoCalculado() string {
	switch {
	case d.CantidadRecibida == 0:
		return DetallePendiente
	case d.Pendiente() > 0:
		return DetalleParcial
	default:
		return DetalleRecibido
	}
}

// EstadoCalculado deriva el estado global de la compra de sus líneas.
// Una compra anulada conserva su estado.
func (c *Compra) EstadoCalculado() string {
	if c.Estado == CompraAnulado {
		return CompraAnulado
	}
	recibidas, pendientes := 0, 0
	for _, d := range c.Detalles {
		recibidas += d.CantidadRecibida
		pendientes += d.Pendiente()
	}
	switch {
	case pendientes == 0 && len(c.Detalles) > 0:
		return CompraRecibido
	case recibidas > 0:
		return CompraRecibidoParcial
	default:
		return CompraEsperandoEntrega
	}
}
