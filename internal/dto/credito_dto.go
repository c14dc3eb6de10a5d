package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RecepcionItemRequest es un renglón del bloque de recepción que puede viajar
// junto al pago de una cuota.
type RecepcionItemRequest struct {
	CompraDetalleID  string  `json:"compra_detalle_id" validate:"required,uuid"`
	RefID            string  `json:"ref_id"            validate:"required,uuid"`
	Tipo             string  `json:"tipo"              validate:"required,oneof=producto presentacion"`
	Cantidad         int     `json:"cantidad"          validate:"required,min=1"`
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

type RecepcionBlockRequest struct {
	CompraID string                 `json:"compra_id" validate:"required,uuid"`
	Items    []RecepcionItemRequest `json:"items"     validate:"required,min=1,dive"`
}

// CrearPagoConRecepcionRequest es el payload combinado pago + recepción.
// ExpectedCuotaSaldo es el saldo que el cliente vio al enviar: si difiere del
// saldo vigente el pago se rechaza (control optimista de concurrencia).
// Exactamente uno de caja_id / cuenta_bancaria_id debe venir, según el método.
type CrearPagoConRecepcionRequest struct {
	DocumentoID        string  `json:"documento_id"        validate:"required,uuid"`
	SucursalID         string  `json:"sucursal_id"         validate:"required,uuid"`
	CuotaID            string  `json:"cuota_id"            validate:"required,uuid"`
	MetodoPago         string  `json:"metodo_pago"         validate:"required,oneof=EFECTIVO TRANSFERENCIA TARJETA CHEQUE CREDITO OTRO"`
	Monto              string  `json:"monto"               validate:"required"`
	FechaPago          string  `json:"fecha_pago"          validate:"required"`
	ExpectedCuotaSaldo string  `json:"expected_cuota_saldo" validate:"required"`
	CajaID             *string `json:"caja_id"             validate:"omitempty,uuid"`
	CuentaBancariaID   *string `json:"cuenta_bancaria_id"  validate:"omitempty,uuid"`
	Referencia         *string `json:"referencia"`
	Observaciones      *string `json:"observaciones"`
	// NotificarEmail dispara el envío asíncrono del recibo PDF.
	NotificarEmail *string                `json:"notificar_email" validate:"omitempty,email"`
	Recepcion      *RecepcionBlockRequest `json:"recepcion"       validate:"omitempty"`
}

// ReversarPagoRequest deshace el último pago vigente de la cuota. La reversa
// genera el movimiento financiero inverso pero NO devuelve stock de una
// recepción empaquetada: pago y recepción son independientes una vez
// confirmados.
type ReversarPagoRequest struct {
	DocumentoID   string  `json:"documento_id" validate:"required,uuid"`
	CuotaID       string  `json:"cuota_id"     validate:"required,uuid"`
	Observaciones *string `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoCuotaResponse struct {
	ID               string  `json:"id"`
	CuotaID          string  `json:"cuota_id"`
	Monto            string  `json:"monto"`
	FechaPago        string  `json:"fecha_pago"`
	Metodo           string  `json:"metodo"`
	CajaID           *string `json:"caja_id,omitempty"`
	CuentaBancariaID *string `json:"cuenta_bancaria_id,omitempty"`
	Referencia       *string `json:"referencia,omitempty"`
	Anulado          bool    `json:"anulado"`
}

type CuotaResponse struct {
	ID               string              `json:"id"`
	Numero           int                 `json:"numero"`
	FechaVencimiento string              `json:"fecha_vencimiento"`
	Monto            string              `json:"monto"`
	Saldo            string              `json:"saldo"`
	Estado           string              `json:"estado"`
	Pagos            []PagoCuotaResponse `json:"pagos"`
}

type CreditoResponse struct {
	ID               string          `json:"id"`
	CompraID         string          `json:"compra_id"`
	Estado           string          `json:"estado"`
	TipoInteres      string          `json:"tipo_interes"`
	InteresPct       string          `json:"interes_pct"`
	DiasEntreCuotas  int             `json:"dias_entre_cuotas"`
	CantidadCuotas   int             `json:"cantidad_cuotas"`
	MontoTotal       string          `json:"monto_total"`
	TotalPagado      string          `json:"total_pagado"`
	Saldo            string          `json:"saldo"`
	CuotasPagadas    int             `json:"cuotas_pagadas"`
	CuotasPendientes int             `json:"cuotas_pendientes"`
	Cuotas           []CuotaResponse `json:"cuotas"`
}

type RegistrarPagoResponse struct {
	Pago          PagoCuotaResponse `json:"pago"`
	CuotaEstado   string            `json:"cuota_estado"`
	CuotaSaldo    string            `json:"cuota_saldo"`
	CreditoEstado string            `json:"credito_estado"`
	CreditoSaldo  string            `json:"credito_saldo"`
	// RecepcionID y FueTotal sólo vienen cuando el pago empaquetó recepción.
	RecepcionID *string `json:"recepcion_id,omitempty"`
	FueTotal    *bool   `json:"fue_total,omitempty"`
}
