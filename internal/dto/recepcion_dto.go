package dto

// ─── Picker / view DTOs ──────────────────────────────────────────────────────

// LineaRecepcionable es la línea normalizada que consume el selector de
// recepción parcial: cantidades ordenada/recibida/pendiente y el vencimiento
// preexistente si la línea ya traía uno.
type LineaRecepcionable struct {
	CompraDetalleID  string  `json:"compra_detalle_id"`
	Tipo             string  `json:"tipo"`
	RefID            string  `json:"ref_id"`
	Nombre           string  `json:"nombre"`
	Ordenadas        int     `json:"unidades_ordenadas"`
	Recibidas        int     `json:"unidades_recibidas"`
	Pendientes       int     `json:"unidades_pendientes"`
	PrecioCosto      string  `json:"precio_costo"`
	FechaVencimiento *string `json:"fecha_vencimiento,omitempty"`
}

type RecepcionablesResponse struct {
	CompraID string               `json:"compra_id"`
	Estado   string               `json:"estado"`
	Lineas   []LineaRecepcionable `json:"lineas"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecepcionLineaRequest struct {
	CompraDetalleID  string  `json:"compra_detalle_id" validate:"required,uuid"`
	RefID            string  `json:"ref_id"            validate:"required,uuid"`
	Tipo             string  `json:"tipo"              validate:"required,oneof=producto presentacion"`
	Cantidad         int     `json:"cantidad"          validate:"required,min=1"`
	PrecioCosto      *string `json:"precio_costo"`
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

type RecepcionParcialRequest struct {
	Observaciones *string                 `json:"observaciones"`
	Lineas        []RecepcionLineaRequest `json:"lineas" validate:"required,min=1,dive"`
}

// RecepcionTotalRequest recibe todo lo pendiente y registra el pago al
// proveedor por el canal que corresponde al método.
type RecepcionTotalRequest struct {
	MetodoPago       string  `json:"metodo_pago"        validate:"required,oneof=EFECTIVO TRANSFERENCIA TARJETA CHEQUE CREDITO OTRO"`
	CajaID           *string `json:"caja_id"            validate:"omitempty,uuid"`
	CuentaBancariaID *string `json:"cuenta_bancaria_id" validate:"omitempty,uuid"`
	Observaciones    *string `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RecepcionLineaResponse struct {
	CompraDetalleID  string  `json:"compra_detalle_id"`
	Tipo             string  `json:"tipo"`
	RefID            string  `json:"ref_id"`
	Cantidad         int     `json:"cantidad"`
	PrecioCosto      string  `json:"precio_costo"`
	FechaVencimiento *string `json:"fecha_vencimiento,omitempty"`
}

type RecepcionResponse struct {
	ID           string                   `json:"id"`
	CompraID     string                   `json:"compra_id"`
	FueTotal     bool                     `json:"fue_total"`
	EstadoCompra string                   `json:"estado_compra"`
	Fecha        string                   `json:"fecha"`
	Lineas       []RecepcionLineaResponse `json:"lineas"`
}
