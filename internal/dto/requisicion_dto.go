package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CandidatosFilter pagina los productos con faltante de stock para armar
// una requisición. Se bindea por query string.
type CandidatosFilter struct {
	Q       string `form:"q"`
	SortBy  string `form:"sortBy"  validate:"omitempty,oneof=nombre stock_actual faltante"`
	SortDir string `form:"sortDir" validate:"omitempty,oneof=asc desc"`
	Page    int    `form:"page"    validate:"omitempty,min=1"`
	Limit   int    `form:"limit"   validate:"omitempty,min=1,max=100"`
}

// RequisicionLineaRequest describe una línea: exactamente uno de
// producto_id o presentacion_id debe venir. La exclusividad se verifica
// en el servicio porque el validador no expresa xor entre punteros.
type RequisicionLineaRequest struct {
	ProductoID          *string `json:"producto_id"          validate:"omitempty,uuid"`
	PresentacionID      *string `json:"presentacion_id"      validate:"omitempty,uuid"`
	CantidadSugerida    int     `json:"cantidad_sugerida"    validate:"required,min=1"`
	FechaExpiracion     *string `json:"fecha_expiracion"     validate:"omitempty,datetime=2006-01-02"`
	PrecioCostoUnitario *string `json:"precio_costo_unitario" validate:"omitempty"`
	ActualizarCosto     bool    `json:"actualizar_costo"`
}

type CrearRequisicionRequest struct {
	SucursalID    string                    `json:"sucursal_id"  validate:"required,uuid"`
	Observaciones string                    `json:"observaciones" validate:"omitempty,max=500"`
	Lineas        []RequisicionLineaRequest `json:"lineas"       validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PresentacionCandidatoResponse acompaña a cada producto candidato con sus
// presentaciones activas; costo_unitario ya trae aplicado el fallback
// costo referencial > costo base x factor > "0".
type PresentacionCandidatoResponse struct {
	ID               string `json:"id"`
	Nombre           string `json:"nombre"`
	FactorConversion string `json:"factor_conversion"`
	CostoUnitario    string `json:"costo_unitario"`
	StockActual      int    `json:"stock_actual"`
	StockMinimo      int    `json:"stock_minimo"`
	Faltante         int    `json:"faltante"`
}

type CandidatoResponse struct {
	ProductoID     string                          `json:"producto_id"`
	CodigoBarras   string                          `json:"codigo_barras"`
	Nombre         string                          `json:"nombre"`
	PrecioCosto    string                          `json:"precio_costo"`
	StockActual    int                             `json:"stock_actual"`
	StockMinimo    int                             `json:"stock_minimo"`
	Faltante       int                             `json:"faltante"`
	Presentaciones []PresentacionCandidatoResponse `json:"presentaciones"`
}

type CandidatosResponse struct {
	Candidatos []CandidatoResponse `json:"candidatos"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}

type RequisicionLineaResponse struct {
	ID                  string  `json:"id"`
	ProductoID          *string `json:"producto_id,omitempty"`
	PresentacionID      *string `json:"presentacion_id,omitempty"`
	CantidadSugerida    int     `json:"cantidad_sugerida"`
	FechaExpiracion     *string `json:"fecha_expiracion,omitempty"`
	PrecioCostoUnitario *string `json:"precio_costo_unitario,omitempty"`
	ActualizarCosto     bool    `json:"actualizar_costo"`
}

type RequisicionResponse struct {
	ID            string                     `json:"id"`
	SucursalID    string                     `json:"sucursal_id"`
	UsuarioID     string                     `json:"usuario_id"`
	Estado        string                     `json:"estado"`
	Observaciones string                     `json:"observaciones"`
	Lineas        []RequisicionLineaResponse `json:"lineas"`
	CreatedAt     string                     `json:"created_at"`
}
