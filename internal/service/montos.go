package service

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// FormatearMonto renderiza un monto con dos decimales para el wire.
// Un valor no inicializado degrada a "0.00" en lugar de fallar: el
// formateo es frontera de presentación, nunca de validación.
func FormatearMonto(m decimal.Decimal) string {
	return m.StringFixed(2)
}

// ParseMonto interpreta un monto decimal del wire. Rechaza vacío y
// valores no numéricos; el rango se valida en el servicio que lo usa.
func ParseMonto(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, errors.New("monto vacío")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("monto inválido: " + s)
	}
	return d, nil
}

// Round2 redondea half-up a dos decimales, la precisión de todo el
// dinero del sistema.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FechaDesdeYMD interpreta una fecha YYYY-MM-DD como inicio de día UTC.
// Devuelve nil para cadena vacía.
func FechaDesdeYMD(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, errors.New("fecha inválida, se espera YYYY-MM-DD: " + s)
	}
	return &t, nil
}

// ParseFechaISO acepta un instante RFC 3339 o una fecha YYYY-MM-DD
// (normalizada a inicio de día UTC).
func ParseFechaISO(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("fecha inválida: " + s)
	}
	return t, nil
}
