package dto

// Los montos viajan SIEMPRE como strings de 2 decimales (nunca floats) para
// evitar pérdida de precisión; las fechas como instantes ISO-8601.

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetalleCompraRequest struct {
	Tipo             string  `json:"tipo"              validate:"required,oneof=producto presentacion"`
	RefID            string  `json:"ref_id"            validate:"required,uuid"`
	Cantidad         int     `json:"cantidad"          validate:"required,min=1"`
	PrecioCosto      string  `json:"precio_costo"      validate:"required"`
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

// CondicionesCreditoRequest define las condiciones de pago de una compra a
// crédito: tipo de interés, días entre cuotas y cantidad de cuotas.
type CondicionesCreditoRequest struct {
	TipoInteres     string `json:"tipo_interes"      validate:"required,oneof=SIN_INTERES SIMPLE"`
	InteresPct      string `json:"interes_pct"       validate:"omitempty"`
	DiasEntreCuotas int    `json:"dias_entre_cuotas" validate:"required,min=1"`
	CantidadCuotas  int    `json:"cantidad_cuotas"   validate:"required,min=1,max=60"`
}

type CrearCompraRequest struct {
	ProveedorID   string                     `json:"proveedor_id" validate:"required,uuid"`
	Fecha         *string                    `json:"fecha"        validate:"omitempty,datetime=2006-01-02"`
	Observaciones *string                    `json:"observaciones"`
	EsCredito     bool                       `json:"es_credito"`
	Condiciones   *CondicionesCreditoRequest `json:"condiciones"  validate:"required_if=EsCredito true,omitempty"`
	Detalles      []DetalleCompraRequest     `json:"detalles"     validate:"required,min=1,dive"`
}

type AnularCompraRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleCompraResponse struct {
	ID               string  `json:"id"`
	Tipo             string  `json:"tipo"`
	RefID            string  `json:"ref_id"`
	Nombre           string  `json:"nombre"`
	Cantidad         int     `json:"unidades_ordenadas"`
	CantidadRecibida int     `json:"unidades_recibidas"`
	Pendiente        int     `json:"unidades_pendientes"`
	Estado           string  `json:"estado"`
	PrecioCosto      string  `json:"precio_costo"`
	Subtotal         string  `json:"subtotal"`
	FechaVencimiento *string `json:"fecha_vencimiento,omitempty"`
}

type CompraResponse struct {
	ID        string                  `json:"id"`
	Numero    int64                   `json:"numero"`
	Proveedor string                  `json:"proveedor"`
	Sucursal  string                  `json:"sucursal_id"`
	Fecha     string                  `json:"fecha"`
	Estado    string                  `json:"estado"`
	EsCredito bool                    `json:"es_credito"`
	Subtotal  string                  `json:"subtotal"`
	Total     string                  `json:"total"`
	Detalles  []DetalleCompraResponse `json:"detalles"`
	CreatedAt string                  `json:"created_at"`
}

// DetalleParcialResponse es la proyección mínima por línea de
// GET /v1/compras/:id/parcial.
type DetalleParcialResponse struct {
	ID         string `json:"id"`
	Ordenadas  int    `json:"unidades_ordenadas"`
	Recibidas  int    `json:"unidades_recibidas"`
	Pendientes int    `json:"unidades_pendientes"`
	Estado     string `json:"estado"`
}

type CompraParcialResponse struct {
	ID              string                   `json:"id"`
	Estado          string                   `json:"estado"`
	EstadoCalculado string                   `json:"estado_calculado"`
	Detalles        []DetalleParcialResponse `json:"detalles"`
}
