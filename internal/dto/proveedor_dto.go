package dto

type CrearProveedorRequest struct {
	RazonSocial   string  `json:"razon_social"   validate:"required,min=2,max=150"`
	CUIT          string  `json:"cuit"           validate:"required,max=20"`
	Telefono      *string `json:"telefono"       validate:"omitempty,max=30"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Direccion     *string `json:"direccion"      validate:"omitempty,max=200"`
	CondicionPago *string `json:"condicion_pago" validate:"omitempty,max=100"`
}

type ActualizarProveedorRequest struct {
	RazonSocial   *string `json:"razon_social"   validate:"omitempty,min=2,max=150"`
	Telefono      *string `json:"telefono"       validate:"omitempty,max=30"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Direccion     *string `json:"direccion"      validate:"omitempty,max=200"`
	CondicionPago *string `json:"condicion_pago" validate:"omitempty,max=100"`
	Activo        *bool   `json:"activo"`
}

type ProveedorResponse struct {
	ID            string  `json:"id"`
	RazonSocial   string  `json:"razon_social"`
	CUIT          string  `json:"cuit"`
	Telefono      *string `json:"telefono,omitempty"`
	Email         *string `json:"email,omitempty"`
	Direccion     *string `json:"direccion,omitempty"`
	CondicionPago *string `json:"condicion_pago,omitempty"`
	Activo        bool    `json:"activo"`
}
