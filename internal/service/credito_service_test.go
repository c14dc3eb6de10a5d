package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gestcom/internal/dto"
	"gestcom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// compraCreditoDePrueba arma una compra a crédito de 2 cuotas sin interés
// por un total de 1000.
func compraCreditoDePrueba(t *testing.T, e *entorno) (*model.Compra, *model.Producto) {
	t.Helper()
	prod := e.nuevoProducto("Heladera", 500, 0)
	compra := e.nuevaCompraCredito(t, prod, 2, "500.00", dto.CondicionesCreditoRequest{
		TipoInteres:     model.InteresNinguno,
		DiasEntreCuotas: 30,
		CantidadCuotas:  2,
	})
	return compra, prod
}

func pagoRequest(e *entorno, compra *model.Compra, cuota *model.Cuota, monto string) dto.CrearPagoConRecepcionRequest {
	cajaID := e.caja.ID.String()
	return dto.CrearPagoConRecepcionRequest{
		DocumentoID:        compra.ID.String(),
		SucursalID:         e.sucursal.ID.String(),
		CuotaID:            cuota.ID.String(),
		MetodoPago:         model.MetodoEfectivo,
		Monto:              monto,
		FechaPago:          "2026-05-01",
		ExpectedCuotaSaldo: FormatearMonto(cuota.Saldo),
		CajaID:             &cajaID,
	}
}

// ── RegistrarPago ─────────────────────────────────────────────────────────────

func TestRegistrarPagoParcial(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	credito := compra.Credito
	cuota := &credito.Cuotas[0]

	resp, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), pagoRequest(e, compra, cuota, "200.00"))
	require.NoError(t, err)

	assert.Equal(t, "300.00", resp.CuotaSaldo)
	assert.Equal(t, model.CuotaParcial, resp.CuotaEstado)
	assert.Equal(t, "800.00", resp.CreditoSaldo)
	assert.Equal(t, model.CreditoParcial, resp.CreditoEstado)
	assert.Nil(t, resp.RecepcionID)

	// rollups sobre el agregado
	assert.Equal(t, "300.00", cuota.Saldo.StringFixed(2))
	assert.Equal(t, "200.00", credito.TotalPagado.StringFixed(2))
	assert.Equal(t, 0, credito.CuotasPagadas)

	// asiento financiero por caja con el delta negado
	require.Len(t, e.movFinRepo.movimientos, 1)
	mov := e.movFinRepo.movimientos[0]
	assert.Equal(t, model.MovPagoCuota, mov.Tipo)
	assert.True(t, mov.DeltaCaja.Equal(decimal.NewFromInt(-200)))
	assert.True(t, mov.DeltaBanco.IsZero())
	require.NotNil(t, mov.CompraID)
	assert.Equal(t, compra.ID, *mov.CompraID)

	// el pago queda enlazado al asiento
	require.Len(t, e.creditoRepo.pagos, 1)
	pago := e.creditoRepo.pagos[0]
	require.NotNil(t, pago.MovimientoFinancieroID)
	assert.Equal(t, mov.ID, *pago.MovimientoFinancieroID)
	require.NotNil(t, mov.ReferenciaID)
	assert.Equal(t, pago.ID, *mov.ReferenciaID)
}

func TestRegistrarPagoSaldaCredito(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	credito := compra.Credito

	for i := range credito.Cuotas {
		cuota := &credito.Cuotas[i]
		resp, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), pagoRequest(e, compra, cuota, FormatearMonto(cuota.Saldo)))
		require.NoError(t, err)
		assert.Equal(t, model.CuotaPagada, resp.CuotaEstado)
	}

	assert.Equal(t, model.CreditoPagado, credito.Estado)
	assert.True(t, credito.Saldo.IsZero())
	assert.Equal(t, 2, credito.CuotasPagadas)
}

func TestRegistrarPagoSaldoDesactualizado(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	req := pagoRequest(e, compra, cuota, "100.00")
	req.ExpectedCuotaSaldo = "450.00" // el cliente vio un saldo viejo

	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSaldoDesactualizado))

	// nada se tocó
	assert.Equal(t, "500.00", cuota.Saldo.StringFixed(2))
	assert.Empty(t, e.movFinRepo.movimientos)
	assert.Empty(t, e.creditoRepo.pagos)
}

func TestRegistrarPagoCanalInexistente(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	// caja que no figura en el catálogo
	req := pagoRequest(e, compra, cuota, "100.00")
	fantasma := uuid.New().String()
	req.CajaID = &fantasma
	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "caja")

	// sucursal desconocida
	req = pagoRequest(e, compra, cuota, "100.00")
	req.SucursalID = uuid.New().String()
	_, err = e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sucursal")

	// nada quedó asentado en el libro
	assert.Empty(t, e.movFinRepo.movimientos)
	assert.Empty(t, e.creditoRepo.pagos)
	assert.Equal(t, "500.00", cuota.Saldo.StringFixed(2))
}

func TestRegistrarPagoCajaInactiva(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	apagada := e.sucursalRepo.agregarCaja(&model.Caja{SucursalID: e.sucursal.ID, Nombre: "Caja 2", Activo: false})
	req := pagoRequest(e, compra, cuota, "100.00")
	id := apagada.ID.String()
	req.CajaID = &id

	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Empty(t, e.creditoRepo.pagos)
}

// creditoRepoSaldoCorrido simula un pago ajeno que compromete la cuota entre
// el snapshot inicial y la toma del lock dentro de la transacción.
type creditoRepoSaldoCorrido struct {
	*stubCreditoRepo
	ajuste   decimal.Decimal
	aplicado bool
}

func (r *creditoRepoSaldoCorrido) LockCuotaTx(tx *gorm.DB, id uuid.UUID) (*model.Cuota, error) {
	cuota, err := r.stubCreditoRepo.LockCuotaTx(tx, id)
	if err != nil {
		return nil, err
	}
	if !r.aplicado {
		cuota.Saldo = cuota.Saldo.Sub(r.ajuste)
		r.aplicado = true
	}
	return cuota, nil
}

func TestRegistrarPagoSaldoCambiaDentroDeLaTransaccion(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	corrido := &creditoRepoSaldoCorrido{
		stubCreditoRepo: e.creditoRepo,
		ajuste:          decimal.NewFromInt(200),
	}
	svc := NewCreditoService(e.compraRepo, corrido, e.movFinRepo, e.sucursalRepo, e.recepcionSvc, nil, nil)

	// el expected coincide con el snapshot, pero al tomar el lock el saldo
	// ya corrió: el control optimista debe cortar dentro de la transacción
	_, err := svc.RegistrarPago(context.Background(), uuid.New(), pagoRequest(e, compra, cuota, "500.00"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSaldoDesactualizado))

	assert.Empty(t, e.creditoRepo.pagos)
	assert.Empty(t, e.movFinRepo.movimientos)
	assert.True(t, compra.Credito.TotalPagado.IsZero())
}

func TestRegistrarPagoValidaciones(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	// monto por encima del saldo
	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), pagoRequest(e, compra, cuota, "500.01"))
	assert.Error(t, err)

	// monto cero
	_, err = e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), pagoRequest(e, compra, cuota, "0"))
	assert.Error(t, err)

	// cuota ajena al crédito
	req := pagoRequest(e, compra, cuota, "100.00")
	req.CuotaID = uuid.New().String()
	_, err = e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req)
	assert.Error(t, err)
}

func TestRegistrarPagoCompraContado(t *testing.T) {
	e := nuevoEntorno()
	prod := e.nuevoProducto("Microondas", 300, 0)
	compra := e.nuevaCompra(t, prod, 1, "300.00")

	cajaID := e.caja.ID.String()
	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), dto.CrearPagoConRecepcionRequest{
		DocumentoID:        compra.ID.String(),
		SucursalID:         e.sucursal.ID.String(),
		CuotaID:            uuid.New().String(),
		MetodoPago:         model.MetodoEfectivo,
		Monto:              "100.00",
		FechaPago:          "2026-05-01",
		ExpectedCuotaSaldo: "100.00",
		CajaID:             &cajaID,
	})
	assert.Error(t, err)
}

func TestRegistrarPagoCreditoAnulado(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	compra.Credito.Estado = model.CreditoAnulado
	cuota := &compra.Credito.Cuotas[0]

	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), pagoRequest(e, compra, cuota, "100.00"))
	assert.Error(t, err)
}

// ── Pago con recepción empaquetada ────────────────────────────────────────────

func TestRegistrarPagoConRecepcion(t *testing.T) {
	e := nuevoEntorno()
	compra, prod := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]
	detalle := &compra.Detalles[0]

	req := pagoRequest(e, compra, cuota, "500.00")
	req.Recepcion = &dto.RecepcionBlockRequest{
		CompraID: compra.ID.String(),
		Items: []dto.RecepcionItemRequest{
			{CompraDetalleID: detalle.ID.String(), RefID: prod.ID.String(), Tipo: model.RefProducto, Cantidad: 2},
		},
	}

	resp, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.RecepcionID)
	require.NotNil(t, resp.FueTotal)
	assert.True(t, *resp.FueTotal)

	// mercadería y pago en el mismo commit
	assert.Equal(t, 2, detalle.CantidadRecibida)
	assert.Equal(t, 2, prod.StockActual)
	assert.Equal(t, model.CompraRecibido, compra.Estado)

	// la recepción referencia al pago y viceversa
	require.Len(t, e.recepcionRepo.recepciones, 1)
	rec := e.recepcionRepo.recepciones[0]
	pago := e.creditoRepo.pagos[0]
	require.NotNil(t, rec.PagoCuotaID)
	assert.Equal(t, pago.ID, *rec.PagoCuotaID)
	require.NotNil(t, pago.RecepcionID)
	assert.Equal(t, rec.ID, *pago.RecepcionID)
}

func TestRegistrarPagoConRecepcionDeOtraCompra(t *testing.T) {
	e := nuevoEntorno()
	compra, prod := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	req := pagoRequest(e, compra, cuota, "100.00")
	req.Recepcion = &dto.RecepcionBlockRequest{
		CompraID: uuid.New().String(),
		Items: []dto.RecepcionItemRequest{
			{CompraDetalleID: compra.Detalles[0].ID.String(), RefID: prod.ID.String(), Tipo: model.RefProducto, Cantidad: 1},
		},
	}

	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req)
	assert.Error(t, err)
	assert.Empty(t, e.creditoRepo.pagos)
}

// ── ReversarPago ──────────────────────────────────────────────────────────────

func TestReversarPago(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	credito := compra.Credito
	cuota := &credito.Cuotas[0]
	usuarioID := uuid.New()

	_, err := e.creditoSvc.RegistrarPago(context.Background(), usuarioID, pagoRequest(e, compra, cuota, "200.00"))
	require.NoError(t, err)
	pago := e.creditoRepo.pagos[0]

	resp, err := e.creditoSvc.ReversarPago(context.Background(), usuarioID, dto.ReversarPagoRequest{
		DocumentoID: compra.ID.String(),
		CuotaID:     cuota.ID.String(),
	})
	require.NoError(t, err)

	// el pago se marca anulado, no se borra
	assert.True(t, pago.Anulado)
	require.NotNil(t, pago.AnuladoAt)
	require.Len(t, e.creditoRepo.pagos, 1)
	assert.True(t, resp.Pago.Anulado)

	// rollups restaurados
	assert.Equal(t, "500.00", resp.CuotaSaldo)
	assert.Equal(t, model.CreditoPendiente, credito.Estado)
	assert.True(t, credito.TotalPagado.IsZero())

	// asiento inverso: mismo canal, delta positivo, referencia al original
	require.Len(t, e.movFinRepo.movimientos, 2)
	reversa := e.movFinRepo.movimientos[1]
	assert.Equal(t, model.MovReversaPagoCuota, reversa.Tipo)
	assert.True(t, reversa.DeltaCaja.Equal(decimal.NewFromInt(200)))
	assert.True(t, reversa.DeltaBanco.IsZero())
	assert.Equal(t, pago.CajaID, reversa.CajaID)
	require.NotNil(t, reversa.ReferenciaID)
	assert.Equal(t, *pago.MovimientoFinancieroID, *reversa.ReferenciaID)
}

func TestReversarPagoNoDevuelveStock(t *testing.T) {
	e := nuevoEntorno()
	compra, prod := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	req := pagoRequest(e, compra, cuota, "500.00")
	req.Recepcion = &dto.RecepcionBlockRequest{
		CompraID: compra.ID.String(),
		Items: []dto.RecepcionItemRequest{
			{CompraDetalleID: compra.Detalles[0].ID.String(), RefID: prod.ID.String(), Tipo: model.RefProducto, Cantidad: 2},
		},
	}
	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	require.Equal(t, 2, prod.StockActual)

	_, err = e.creditoSvc.ReversarPago(context.Background(), uuid.New(), dto.ReversarPagoRequest{
		DocumentoID: compra.ID.String(),
		CuotaID:     cuota.ID.String(),
	})
	require.NoError(t, err)

	// la mercadería recibida queda: pago y recepción son independientes
	assert.Equal(t, 2, prod.StockActual)
	assert.Equal(t, 2, compra.Detalles[0].CantidadRecibida)
}

func TestReversarPagoSinPagosVigentes(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	_, err := e.creditoSvc.ReversarPago(context.Background(), uuid.New(), dto.ReversarPagoRequest{
		DocumentoID: compra.ID.String(),
		CuotaID:     cuota.ID.String(),
	})
	assert.Error(t, err)
}

func TestReversarPagoTomaElUltimoVigente(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	req1 := pagoRequest(e, compra, cuota, "100.00")
	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req1)
	require.NoError(t, err)

	req2 := pagoRequest(e, compra, cuota, "150.00")
	req2.ExpectedCuotaSaldo = "400.00"
	_, err = e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), req2)
	require.NoError(t, err)

	resp, err := e.creditoSvc.ReversarPago(context.Background(), uuid.New(), dto.ReversarPagoRequest{
		DocumentoID: compra.ID.String(),
		CuotaID:     cuota.ID.String(),
	})
	require.NoError(t, err)

	// se reversó el segundo pago; el primero sigue vigente
	assert.Equal(t, "150.00", resp.Pago.Monto)
	assert.False(t, e.creditoRepo.pagos[0].Anulado)
	assert.True(t, e.creditoRepo.pagos[1].Anulado)
	assert.Equal(t, "400.00", resp.CuotaSaldo)
	assert.Equal(t, model.CreditoParcial, compra.Credito.Estado)
}

func TestReversarPagoCuotaVencidaVuelveAVencida(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	// la cuota venció sin pagos
	cuota.FechaVencimiento = time.Now().UTC().AddDate(0, 0, -10)
	cuota.Estado = cuota.EstadoPorSaldo(time.Now().UTC())
	require.Equal(t, model.CuotaVencida, cuota.Estado)

	// pagarla completa la salda
	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), pagoRequest(e, compra, cuota, "500.00"))
	require.NoError(t, err)
	assert.Equal(t, model.CuotaPagada, cuota.Estado)

	// la reversa restaura el saldo y la cuota vuelve a estar vencida
	_, err = e.creditoSvc.ReversarPago(context.Background(), uuid.New(), dto.ReversarPagoRequest{
		DocumentoID: compra.ID.String(),
		CuotaID:     cuota.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.CuotaVencida, cuota.Estado)
	assert.Equal(t, "500.00", cuota.Saldo.StringFixed(2))
}

// ── ObtenerCredito ────────────────────────────────────────────────────────────

func TestObtenerCredito(t *testing.T) {
	e := nuevoEntorno()
	compra, _ := compraCreditoDePrueba(t, e)
	cuota := &compra.Credito.Cuotas[0]

	_, err := e.creditoSvc.RegistrarPago(context.Background(), uuid.New(), pagoRequest(e, compra, cuota, "200.00"))
	require.NoError(t, err)

	resp, err := e.creditoSvc.ObtenerCredito(context.Background(), compra.ID)
	require.NoError(t, err)

	assert.Equal(t, "1000.00", resp.MontoTotal)
	assert.Equal(t, "200.00", resp.TotalPagado)
	assert.Equal(t, 2, resp.CuotasPendientes)
	require.Len(t, resp.Cuotas, 2)
	assert.Equal(t, "300.00", resp.Cuotas[0].Saldo)
	require.Len(t, resp.Cuotas[0].Pagos, 1)
	assert.Equal(t, "200.00", resp.Cuotas[0].Pagos[0].Monto)
	assert.Empty(t, resp.Cuotas[1].Pagos)
}

func TestObtenerCreditoCompraContado(t *testing.T) {
	e := nuevoEntorno()
	prod := e.nuevoProducto("Licuadora", 150, 0)
	compra := e.nuevaCompra(t, prod, 1, "150.00")

	_, err := e.creditoSvc.ObtenerCredito(context.Background(), compra.ID)
	assert.Error(t, err)
}
