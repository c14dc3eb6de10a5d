package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto es el artículo base del catálogo. El stock se lleva en unidades
// del producto; las presentaciones convierten a esta unidad vía su factor.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	Categoria    string          `gorm:"not null"`
	PrecioCosto  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual  int             `gorm:"not null;default:0"`
	StockMinimo  int             `gorm:"not null;default:5"`
	UnidadMedida string          `gorm:"not null;default:'unidad'"`
	ProveedorID  *uuid.UUID      `gorm:"type:uuid;index"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Proveedor      *Proveedor     `gorm:"foreignKey:ProveedorID"`
	Presentaciones []Presentacion `gorm:"foreignKey:ProductoID"`
}

// Faltante devuelve las unidades por debajo del mínimo (≥ 0).
func (p *Producto) Faltante() int {
	f := p.StockMinimo - p.StockActual
	if f < 0 {
		return 0
	}
	return f
}

// Presentacion es una forma de compra/venta alternativa de un producto
// (caja, pack, fardo). FactorConversion expresa cuántas unidades base
// contiene una presentación. CostoReferencial, cuando existe, manda sobre
// el costo derivado del producto.
type Presentacion struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Nombre           string           `gorm:"not null"`
	CodigoBarras     *string          `gorm:"uniqueIndex"`
	FactorConversion decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:1"`
	CostoReferencial *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PrecioVenta      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	StockActual      int              `gorm:"not null;default:0"`
	StockMinimo      int              `gorm:"not null;default:0"`
	Activo           bool             `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// Faltante devuelve las presentaciones por debajo del mínimo (≥ 0).
func (p *Presentacion) Faltante() int {
	f := p.StockMinimo - p.StockActual
	if f < 0 {
		return 0
	}
	return f
}

func (Presentacion) TableName() string { return "presentaciones" }
