package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoBarras string  `json:"codigo_barras" validate:"required,max=50"`
	Nombre       string  `json:"nombre"        validate:"required,min=2,max=150"`
	Categoria    string  `json:"categoria"     validate:"omitempty,max=80"`
	PrecioCosto  string  `json:"precio_costo"  validate:"required"`
	PrecioVenta  string  `json:"precio_venta"  validate:"required"`
	StockMinimo  int     `json:"stock_minimo"  validate:"omitempty,min=0"`
	UnidadMedida string  `json:"unidad_medida" validate:"omitempty,max=20"`
	ProveedorID  *string `json:"proveedor_id" validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre       *string `json:"nombre"        validate:"omitempty,min=2,max=150"`
	Categoria    *string `json:"categoria"     validate:"omitempty,max=80"`
	PrecioCosto  *string `json:"precio_costo"`
	PrecioVenta  *string `json:"precio_venta"`
	StockMinimo  *int    `json:"stock_minimo"  validate:"omitempty,min=0"`
	UnidadMedida *string `json:"unidad_medida" validate:"omitempty,max=20"`
	ProveedorID  *string `json:"proveedor_id"  validate:"omitempty,uuid"`
	Activo       *bool   `json:"activo"`
}

type CrearPresentacionRequest struct {
	Nombre           string  `json:"nombre"            validate:"required,min=2,max=100"`
	CodigoBarras     *string `json:"codigo_barras"     validate:"omitempty,max=50"`
	FactorConversion string  `json:"factor_conversion" validate:"required"`
	CostoReferencial *string `json:"costo_referencial"`
	PrecioVenta      *string `json:"precio_venta"`
	StockMinimo      int     `json:"stock_minimo"      validate:"omitempty,min=0"`
}

type ActualizarPresentacionRequest struct {
	Nombre           *string `json:"nombre"            validate:"omitempty,min=2,max=100"`
	CodigoBarras     *string `json:"codigo_barras"     validate:"omitempty,max=50"`
	FactorConversion *string `json:"factor_conversion"`
	CostoReferencial *string `json:"costo_referencial"`
	PrecioVenta      *string `json:"precio_venta"`
	StockMinimo      *int    `json:"stock_minimo"      validate:"omitempty,min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PresentacionResponse struct {
	ID               string  `json:"id"`
	ProductoID       string  `json:"producto_id"`
	Nombre           string  `json:"nombre"`
	CodigoBarras     *string `json:"codigo_barras,omitempty"`
	FactorConversion string  `json:"factor_conversion"`
	CostoReferencial *string `json:"costo_referencial,omitempty"`
	PrecioVenta      *string `json:"precio_venta,omitempty"`
	StockActual      int     `json:"stock_actual"`
	StockMinimo      int     `json:"stock_minimo"`
	Activo           bool    `json:"activo"`
}

type ProductoResponse struct {
	ID             string                 `json:"id"`
	CodigoBarras   string                 `json:"codigo_barras"`
	Nombre         string                 `json:"nombre"`
	Categoria      string                 `json:"categoria"`
	PrecioCosto    string                 `json:"precio_costo"`
	PrecioVenta    string                 `json:"precio_venta"`
	StockActual    int                    `json:"stock_actual"`
	StockMinimo    int                    `json:"stock_minimo"`
	UnidadMedida   string                 `json:"unidad_medida"`
	ProveedorID    *string                `json:"proveedor_id,omitempty"`
	Activo         bool                   `json:"activo"`
	Presentaciones []PresentacionResponse `json:"presentaciones,omitempty"`
}

type ProductosResponse struct {
	Productos []ProductoResponse `json:"productos"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

type ProductosFilter struct {
	Q     string `form:"q"`
	Page  int    `form:"page"  validate:"omitempty,min=1"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}
