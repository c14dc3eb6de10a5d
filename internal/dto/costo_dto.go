package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CostoAsociadoRequest captura un costo accesorio (flete, etc.) de una
// compra. Motivo, clasificación y tipo de costo son fijos del lado del
// servidor; el canal sigue la misma regla que los pagos: EFECTIVO por caja,
// el resto por cuenta bancaria.
type CostoAsociadoRequest struct {
	Monto            string  `json:"monto"              validate:"required"`
	MetodoPago       string  `json:"metodo_pago"        validate:"required,oneof=EFECTIVO TRANSFERENCIA TARJETA CHEQUE CREDITO OTRO"`
	CajaID           *string `json:"caja_id"            validate:"omitempty,uuid"`
	CuentaBancariaID *string `json:"cuenta_bancaria_id" validate:"omitempty,uuid"`
	Descripcion      string  `json:"descripcion"        validate:"required,min=3"`
	// Aplicar dispara el prorrateo asíncrono hacia el costo unitario del
	// inventario recibido. Base e incluir_antiguos quedan fijos (COSTO,
	// false) aunque el modelo soporte otros valores.
	Aplicar bool `json:"aplicar"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProrrateoMeta struct {
	Aplicar         bool    `json:"aplicar"`
	Base            string  `json:"base"`
	IncluirAntiguos bool    `json:"incluir_antiguos"`
	Estado          *string `json:"estado,omitempty"`
}

type CostoAsociadoResponse struct {
	MovimientoID       string        `json:"movimiento_id"`
	CompraID           string        `json:"compra_id"`
	Motivo             string        `json:"motivo"`
	ClasificacionAdmin string        `json:"clasificacion_admin"`
	CostoVentaTipo     string        `json:"costo_venta_tipo"`
	AfectaInventario   bool          `json:"afecta_inventario"`
	Monto              string        `json:"monto"`
	DeltaCaja          string        `json:"delta_caja"`
	DeltaBanco         string        `json:"delta_banco"`
	Prorrateo          ProrrateoMeta `json:"prorrateo"`
}

// MovimientoFinancieroResponse es la proyección mínima del libro que
// consumen las vistas: deltas por canal, motivo y clasificación.
type MovimientoFinancieroResponse struct {
	ID                 string  `json:"id"`
	Tipo               string  `json:"tipo"`
	Motivo             string  `json:"motivo"`
	ClasificacionAdmin *string `json:"clasificacion_admin,omitempty"`
	DeltaCaja          string  `json:"delta_caja"`
	DeltaBanco         string  `json:"delta_banco"`
	Descripcion        string  `json:"descripcion"`
	CreatedAt          string  `json:"created_at"`
}
