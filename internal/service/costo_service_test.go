package service

import (
	"context"
	"testing"
	"time"

	"gestcom/internal/dto"
	"gestcom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrarCostoAsociado(t *testing.T) {
	e := nuevoEntorno()
	svc := NewCostoService(e.compraRepo, e.movFinRepo, e.sucursalRepo, nil, nil)

	prod := e.nuevoProducto("Cemento", 900, 0)
	compra := e.nuevaCompra(t, prod, 10, "900.00")
	cuentaID := e.cuenta.ID.String()

	resp, err := svc.RegistrarCostoAsociado(context.Background(), compra.ID, e.sucursal.ID, uuid.New(), dto.CostoAsociadoRequest{
		Monto:            "350.00",
		MetodoPago:       model.MetodoTransferencia,
		CuentaBancariaID: &cuentaID,
		Descripcion:      "flete desde depósito",
	})
	require.NoError(t, err)

	assert.Equal(t, model.MotivoCostoAsociado, resp.Motivo)
	assert.Equal(t, model.ClasificacionCostoVenta, resp.ClasificacionAdmin)
	assert.Equal(t, model.CostoVentaFlete, resp.CostoVentaTipo)
	// el costo asociado siempre afecta inventario; aplicar sólo decide
	// si se agenda el prorrateo
	assert.True(t, resp.AfectaInventario)
	assert.Equal(t, "350.00", resp.Monto)
	assert.Equal(t, "0.00", resp.DeltaCaja)
	assert.Equal(t, "-350.00", resp.DeltaBanco)

	// sin aplicar no se agenda prorrateo
	assert.False(t, resp.Prorrateo.Aplicar)
	assert.Nil(t, resp.Prorrateo.Estado)

	require.Len(t, e.movFinRepo.movimientos, 1)
	mov := e.movFinRepo.movimientos[0]
	assert.Equal(t, model.MovCostoAsociado, mov.Tipo)
	assert.Nil(t, mov.EstadoProrrateo)
	require.NotNil(t, mov.CompraID)
	assert.Equal(t, compra.ID, *mov.CompraID)
}

func TestRegistrarCostoAsociadoConProrrateo(t *testing.T) {
	e := nuevoEntorno()
	svc := NewCostoService(e.compraRepo, e.movFinRepo, e.sucursalRepo, nil, nil)

	prod := e.nuevoProducto("Hierro", 1200, 0)
	compra := e.nuevaCompra(t, prod, 5, "1200.00")
	cajaID := e.caja.ID.String()

	resp, err := svc.RegistrarCostoAsociado(context.Background(), compra.ID, e.sucursal.ID, uuid.New(), dto.CostoAsociadoRequest{
		Monto:       "500.00",
		MetodoPago:  model.MetodoEfectivo,
		CajaID:      &cajaID,
		Descripcion: "flete con prorrateo",
		Aplicar:     true,
	})
	require.NoError(t, err)

	assert.True(t, resp.AfectaInventario)
	assert.True(t, resp.Prorrateo.Aplicar)
	assert.Equal(t, model.ProrrateoBaseCosto, resp.Prorrateo.Base)
	assert.False(t, resp.Prorrateo.IncluirAntiguos)
	require.NotNil(t, resp.Prorrateo.Estado)
	assert.Equal(t, model.ProrrateoPendiente, *resp.Prorrateo.Estado)

	mov := e.movFinRepo.movimientos[0]
	require.NotNil(t, mov.ProrratearBase)
	assert.Equal(t, model.ProrrateoBaseCosto, *mov.ProrratearBase)
	assert.False(t, mov.ProrratearIncluirAntiguos)
	assert.True(t, mov.DeltaCaja.Equal(decimal.NewFromInt(-500)))
}

func TestRegistrarCostoAsociadoValidaciones(t *testing.T) {
	e := nuevoEntorno()
	svc := NewCostoService(e.compraRepo, e.movFinRepo, e.sucursalRepo, nil, nil)

	prod := e.nuevoProducto("Arena", 50, 0)
	compra := e.nuevaCompra(t, prod, 2, "50.00")
	cajaID := e.caja.ID.String()

	// monto cero
	_, err := svc.RegistrarCostoAsociado(context.Background(), compra.ID, e.sucursal.ID, uuid.New(), dto.CostoAsociadoRequest{
		Monto: "0", MetodoPago: model.MetodoEfectivo, CajaID: &cajaID, Descripcion: "nada",
	})
	assert.Error(t, err)

	// canal incoherente: efectivo sin caja
	_, err = svc.RegistrarCostoAsociado(context.Background(), compra.ID, e.sucursal.ID, uuid.New(), dto.CostoAsociadoRequest{
		Monto: "10.00", MetodoPago: model.MetodoEfectivo, Descripcion: "sin caja",
	})
	assert.Error(t, err)

	// compra anulada
	compra.Estado = model.CompraAnulado
	_, err = svc.RegistrarCostoAsociado(context.Background(), compra.ID, e.sucursal.ID, uuid.New(), dto.CostoAsociadoRequest{
		Monto: "10.00", MetodoPago: model.MetodoEfectivo, CajaID: &cajaID, Descripcion: "tarde",
	})
	assert.Error(t, err)
}

func TestRegistrarCostoAsociadoCanalInexistente(t *testing.T) {
	e := nuevoEntorno()
	svc := NewCostoService(e.compraRepo, e.movFinRepo, e.sucursalRepo, nil, nil)

	prod := e.nuevoProducto("Cal", 80, 0)
	compra := e.nuevaCompra(t, prod, 4, "80.00")

	// cuenta bancaria que no figura en el catálogo
	fantasma := uuid.New().String()
	_, err := svc.RegistrarCostoAsociado(context.Background(), compra.ID, e.sucursal.ID, uuid.New(), dto.CostoAsociadoRequest{
		Monto: "90.00", MetodoPago: model.MetodoTransferencia, CuentaBancariaID: &fantasma, Descripcion: "flete",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cuenta")

	// sucursal desconocida
	cajaID := e.caja.ID.String()
	_, err = svc.RegistrarCostoAsociado(context.Background(), compra.ID, uuid.New(), uuid.New(), dto.CostoAsociadoRequest{
		Monto: "90.00", MetodoPago: model.MetodoEfectivo, CajaID: &cajaID, Descripcion: "flete",
	})
	require.Error(t, err)

	assert.Empty(t, e.movFinRepo.movimientos)
}

func TestListarMovimientos(t *testing.T) {
	e := nuevoEntorno()
	svc := NewCostoService(e.compraRepo, e.movFinRepo, e.sucursalRepo, nil, nil)

	prod := e.nuevoProducto("Ladrillos", 30, 0)
	compra := e.nuevaCompra(t, prod, 100, "30.00")
	cajaID := e.caja.ID.String()

	_, err := svc.RegistrarCostoAsociado(context.Background(), compra.ID, e.sucursal.ID, uuid.New(), dto.CostoAsociadoRequest{
		Monto: "200.00", MetodoPago: model.MetodoEfectivo, CajaID: &cajaID, Descripcion: "flete",
	})
	require.NoError(t, err)

	movs, err := svc.ListarMovimientos(context.Background(), compra.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovCostoAsociado, movs[0].Tipo)
	assert.Equal(t, "-200.00", movs[0].DeltaCaja)
	assert.Equal(t, "0.00", movs[0].DeltaBanco)

	// el timestamp sale en RFC3339 con el offset real del asiento
	zona := time.FixedZone("-03:00", -3*60*60)
	e.movFinRepo.movimientos[0].CreatedAt = time.Date(2026, 5, 1, 10, 30, 0, 0, zona)
	movs, err = svc.ListarMovimientos(context.Background(), compra.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01T10:30:00-03:00", movs[0].CreatedAt)

	// otra compra no ve estos movimientos
	otros, err := svc.ListarMovimientos(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, otros)
}
