package dto

type SucursalResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Direccion *string `json:"direccion,omitempty"`
	Activo    bool    `json:"activo"`
}

type CajaResponse struct {
	ID         string `json:"id"`
	SucursalID string `json:"sucursal_id"`
	Nombre     string `json:"nombre"`
	Activo     bool   `json:"activo"`
}

type CuentaBancariaResponse struct {
	ID           string `json:"id"`
	Nombre       string `json:"nombre"`
	Banco        string `json:"banco"`
	NumeroCuenta string `json:"numero_cuenta"`
	Activo       bool   `json:"activo"`
}
