package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCuotaEstadoPorSaldo(t *testing.T) {
	hoy := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	antes := hoy.AddDate(0, 0, -5)
	despues := hoy.AddDate(0, 0, 5)

	casos := []struct {
		nombre      string
		monto       string
		saldo       string
		vencimiento time.Time
		esperado    string
	}{
		{"saldada", "500.00", "0.00", antes, CuotaPagada},
		{"pago parcial vigente", "500.00", "300.00", despues, CuotaParcial},
		// el pago parcial manda sobre la fecha vencida
		{"pago parcial vencida", "500.00", "300.00", antes, CuotaParcial},
		{"impaga vencida", "500.00", "500.00", antes, CuotaVencida},
		{"impaga al dia", "500.00", "500.00", despues, CuotaPendiente},
		// vence recién pasada la fecha, no el mismo día
		{"impaga el dia del vencimiento", "500.00", "500.00", hoy, CuotaPendiente},
	}

	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			cuota := Cuota{
				Monto:            decimal.RequireFromString(c.monto),
				Saldo:            decimal.RequireFromString(c.saldo),
				FechaVencimiento: c.vencimiento,
			}
			assert.Equal(t, c.esperado, cuota.EstadoPorSaldo(hoy))
		})
	}
}
