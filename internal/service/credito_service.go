package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestcom/internal/cache"
	"gestcom/internal/dto"
	"gestcom/internal/model"
	"gestcom/internal/repository"
	"gestcom/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrSaldoDesactualizado señala que el saldo que vio el cliente ya no es el
// vigente: otro pago se aplicó en el medio. El cliente debe refrescar la
// vista y reintentar.
var ErrSaldoDesactualizado = errors.New("el saldo de la cuota cambió desde que se cargó la vista")

type CreditoService interface {
	ObtenerCredito(ctx context.Context, compraID uuid.UUID) (*dto.CreditoResponse, error)
	RegistrarPago(ctx context.Context, usuarioID uuid.UUID, req dto.CrearPagoConRecepcionRequest) (*dto.RegistrarPagoResponse, error)
	ReversarPago(ctx context.Context, usuarioID uuid.UUID, req dto.ReversarPagoRequest) (*dto.RegistrarPagoResponse, error)
}

type creditoService struct {
	compraRepo   repository.CompraRepository
	repo         repository.CreditoRepository
	movFinRepo   repository.MovimientoFinancieroRepository
	sucursalRepo repository.SucursalRepository
	recepcion    RecepcionService
	vistas       *cache.Vistas
	dispatcher   *worker.Dispatcher
}

func NewCreditoService(
	compraRepo repository.CompraRepository,
	repo repository.CreditoRepository,
	movFinRepo repository.MovimientoFinancieroRepository,
	sucursalRepo repository.SucursalRepository,
	recepcion RecepcionService,
	vistas *cache.Vistas,
	dispatcher *worker.Dispatcher,
) CreditoService {
	return &creditoService{
		compraRepo:   compraRepo,
		repo:         repo,
		movFinRepo:   movFinRepo,
		sucursalRepo: sucursalRepo,
		recepcion:    recepcion,
		vistas:       vistas,
		dispatcher:   dispatcher,
	}
}

// ── ObtenerCredito ────────────────────────────────────────────────────────────

func (s *creditoService) ObtenerCredito(ctx context.Context, compraID uuid.UUID) (*dto.CreditoResponse, error) {
	var cached dto.CreditoResponse
	if s.vistas.Get(ctx, cache.ClaveCredito(compraID), &cached) {
		return &cached, nil
	}

	credito, err := s.repo.FindByCompraID(ctx, compraID)
	if err != nil {
		return nil, errors.New("la compra no tiene crédito asociado")
	}

	resp := s.creditoToResponse(ctx, credito)
	s.vistas.Set(ctx, cache.ClaveCredito(compraID), resp)
	return resp, nil
}

// ── RegistrarPago ─────────────────────────────────────────────────────────────
// Un solo commit cubre: el pago, su asiento financiero, la recepción
// empaquetada (si vino) y los rollups de cuota y crédito. El control
// optimista corre dentro de la transacción, contra la cuota releída con
// FOR UPDATE: si el saldo que vio el cliente ya no es el vigente el pago
// se rechaza sin tocar nada.

func (s *creditoService) RegistrarPago(ctx context.Context, usuarioID uuid.UUID, req dto.CrearPagoConRecepcionRequest) (*dto.RegistrarPagoResponse, error) {
	compraID, err := uuid.Parse(req.DocumentoID)
	if err != nil {
		return nil, errors.New("documento_id inválido")
	}
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, errors.New("sucursal_id inválido")
	}
	cuotaID, err := uuid.Parse(req.CuotaID)
	if err != nil {
		return nil, errors.New("cuota_id inválido")
	}

	compra, err := s.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		return nil, errors.New("compra no encontrada")
	}
	if !compra.EsCredito || compra.Credito == nil {
		return nil, errors.New("la compra no es a crédito")
	}
	credito := compra.Credito
	if credito.Estado == model.CreditoAnulado {
		return nil, errors.New("el crédito está anulado")
	}

	cuota := buscarCuota(credito, cuotaID)
	if cuota == nil {
		return nil, errors.New("la cuota no pertenece al crédito de esta compra")
	}

	monto, err := ParseMonto(req.Monto)
	if err != nil {
		return nil, err
	}
	if !monto.IsPositive() {
		return nil, errors.New("el monto debe ser mayor a cero")
	}
	if monto.GreaterThan(cuota.Saldo) {
		return nil, fmt.Errorf("el monto %s supera el saldo de la cuota (%s)", FormatearMonto(monto), FormatearMonto(cuota.Saldo))
	}

	expected, err := ParseMonto(req.ExpectedCuotaSaldo)
	if err != nil {
		return nil, err
	}
	if !expected.Equal(cuota.Saldo) {
		return nil, ErrSaldoDesactualizado
	}

	canal, err := ResolverCanal(req.MetodoPago, req.CajaID, req.CuentaBancariaID)
	if err != nil {
		return nil, err
	}
	if err := ValidarDestino(ctx, s.sucursalRepo, sucursalID, canal); err != nil {
		return nil, err
	}

	fechaPago, err := ParseFechaISO(req.FechaPago)
	if err != nil {
		return nil, err
	}

	// Selección de la recepción empaquetada, clampeada fuera de la tx
	var confirmadas []LineaConfirmada
	var fueTotal bool
	if req.Recepcion != nil {
		if req.Recepcion.CompraID != req.DocumentoID {
			return nil, errors.New("la recepción empaquetada refiere a otra compra")
		}
		sel, err := armarSeleccion(compra, recepcionItemsALineas(req.Recepcion.Items))
		if err != nil {
			return nil, err
		}
		confirmadas, fueTotal = sel.Confirmar()
		if len(confirmadas) == 0 {
			return nil, errors.New("la recepción empaquetada no tiene líneas válidas")
		}
	}

	deltaCaja, deltaBanco := canal.Deltas(monto)
	pago := &model.PagoCuota{
		CuotaID:          cuotaID,
		Monto:            monto,
		FechaPago:        fechaPago,
		Metodo:           req.MetodoPago,
		CajaID:           canal.CajaID,
		CuentaBancariaID: canal.CuentaBancariaID,
		RegistradoPorID:  usuarioID,
		Referencia:       req.Referencia,
		Observaciones:    req.Observaciones,
	}

	var recepcion *model.Recepcion
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Releer bajo lock: el saldo esperado se compara contra la fila
		// vigente, no contra el snapshot previo a la transacción. Dos
		// pagos concurrentes serializan acá y el segundo ve el saldo
		// ya descontado.
		creditoVivo, err := s.repo.LockCreditoTx(tx, credito.ID)
		if err != nil {
			return err
		}
		cuotaViva, err := s.repo.LockCuotaTx(tx, cuotaID)
		if err != nil {
			return err
		}
		if !expected.Equal(cuotaViva.Saldo) {
			return ErrSaldoDesactualizado
		}
		if monto.GreaterThan(cuotaViva.Saldo) {
			return fmt.Errorf("el monto %s supera el saldo de la cuota (%s)", FormatearMonto(monto), FormatearMonto(cuotaViva.Saldo))
		}

		if err := s.repo.CreatePagoTx(tx, pago); err != nil {
			return err
		}

		compraRef := compra.ID
		movFin := &model.MovimientoFinanciero{
			Tipo:             model.MovPagoCuota,
			Motivo:           fmt.Sprintf("Pago cuota %d de compra #%d", cuotaViva.Numero, compra.Numero),
			Monto:            monto,
			DeltaCaja:        deltaCaja,
			DeltaBanco:       deltaBanco,
			CajaID:           canal.CajaID,
			CuentaBancariaID: canal.CuentaBancariaID,
			CompraID:         &compraRef,
			SucursalID:       sucursalID,
			RegistradoPorID:  usuarioID,
			ReferenciaID:     &pago.ID,
			Descripcion:      descripcionPago(req, cuotaViva),
		}
		if err := s.movFinRepo.CreateTx(tx, movFin); err != nil {
			return err
		}
		pago.MovimientoFinancieroID = &movFin.ID

		if len(confirmadas) > 0 {
			recepcion, err = s.recepcion.AplicarRecepcionTx(ctx, tx, compra, sucursalID, usuarioID, confirmadas, fueTotal, req.Observaciones, &pago.ID)
			if err != nil {
				return err
			}
			pago.RecepcionID = &recepcion.ID
		}

		if err := s.repo.UpdatePagoRefsTx(tx, pago); err != nil {
			return err
		}

		aplicarPagoRollup(creditoVivo, cuotaViva, monto)
		if err := s.repo.UpdateCuotaTx(tx, cuotaViva); err != nil {
			return err
		}
		if err := s.repo.UpdateCreditoTx(tx, creditoVivo); err != nil {
			return err
		}
		credito, cuota = creditoVivo, cuotaViva
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.vistas.InvalidarCompra(ctx, compraID)

	if req.NotificarEmail != nil && s.dispatcher != nil {
		payload := map[string]interface{}{
			"pago_id": pago.ID.String(),
			"email":   *req.NotificarEmail,
		}
		_ = s.dispatcher.EnqueueEmail(ctx, payload)
	}

	resp := &dto.RegistrarPagoResponse{
		Pago:          pagoToResponse(pago),
		CuotaEstado:   cuota.Estado,
		CuotaSaldo:    FormatearMonto(cuota.Saldo),
		CreditoEstado: credito.Estado,
		CreditoSaldo:  FormatearMonto(credito.Saldo),
	}
	if recepcion != nil {
		recID := recepcion.ID.String()
		resp.RecepcionID = &recID
		resp.FueTotal = &recepcion.FueTotal
	}
	return resp, nil
}

// ── ReversarPago ──────────────────────────────────────────────────────────────
// Deshace el último pago vigente de la cuota: lo marca anulado, asienta el
// movimiento financiero inverso y revierte los rollups. El stock de una
// recepción empaquetada NO se devuelve: pago y recepción son independientes
// una vez confirmados.

func (s *creditoService) ReversarPago(ctx context.Context, usuarioID uuid.UUID, req dto.ReversarPagoRequest) (*dto.RegistrarPagoResponse, error) {
	compraID, err := uuid.Parse(req.DocumentoID)
	if err != nil {
		return nil, errors.New("documento_id inválido")
	}
	cuotaID, err := uuid.Parse(req.CuotaID)
	if err != nil {
		return nil, errors.New("cuota_id inválido")
	}

	compra, err := s.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		return nil, errors.New("compra no encontrada")
	}
	if compra.Credito == nil {
		return nil, errors.New("la compra no es a crédito")
	}
	credito := compra.Credito
	cuota := buscarCuota(credito, cuotaID)
	if cuota == nil {
		return nil, errors.New("la cuota no pertenece al crédito de esta compra")
	}

	pago, err := s.ultimoPagoVigente(ctx, cuotaID)
	if err != nil {
		return nil, err
	}

	ahora := time.Now().UTC()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		creditoVivo, err := s.repo.LockCreditoTx(tx, credito.ID)
		if err != nil {
			return err
		}
		cuotaViva, err := s.repo.LockCuotaTx(tx, cuotaID)
		if err != nil {
			return err
		}

		pago.Anulado = true
		pago.AnuladoAt = &ahora
		pago.AnuladoPorID = &usuarioID
		if err := s.repo.AnularPagoTx(tx, pago); err != nil {
			return err
		}

		// Asiento inverso: mismo canal, deltas negados respecto del original
		deltaCaja, deltaBanco := decimal.Zero, decimal.Zero
		if pago.CajaID != nil {
			deltaCaja = pago.Monto
		} else {
			deltaBanco = pago.Monto
		}
		compraRef := compra.ID
		reversa := &model.MovimientoFinanciero{
			Tipo:             model.MovReversaPagoCuota,
			Motivo:           fmt.Sprintf("Reversa pago cuota %d de compra #%d", cuota.Numero, compra.Numero),
			Monto:            pago.Monto,
			DeltaCaja:        deltaCaja,
			DeltaBanco:       deltaBanco,
			CajaID:           pago.CajaID,
			CuentaBancariaID: pago.CuentaBancariaID,
			CompraID:         &compraRef,
			SucursalID:       compra.SucursalID,
			RegistradoPorID:  usuarioID,
			ReferenciaID:     pago.MovimientoFinancieroID,
			Descripcion:      descripcionReversa(req),
		}
		if err := s.movFinRepo.CreateTx(tx, reversa); err != nil {
			return err
		}

		revertirPagoRollup(creditoVivo, cuotaViva, pago.Monto)
		if err := s.repo.UpdateCuotaTx(tx, cuotaViva); err != nil {
			return err
		}
		if err := s.repo.UpdateCreditoTx(tx, creditoVivo); err != nil {
			return err
		}
		credito, cuota = creditoVivo, cuotaViva
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.vistas.InvalidarCompra(ctx, compraID)

	return &dto.RegistrarPagoResponse{
		Pago:          pagoToResponse(pago),
		CuotaEstado:   cuota.Estado,
		CuotaSaldo:    FormatearMonto(cuota.Saldo),
		CreditoEstado: credito.Estado,
		CreditoSaldo:  FormatearMonto(credito.Saldo),
	}, nil
}

// ultimoPagoVigente devuelve el pago no anulado más reciente de la cuota.
func (s *creditoService) ultimoPagoVigente(ctx context.Context, cuotaID uuid.UUID) (*model.PagoCuota, error) {
	pagos, err := s.repo.ListPagosByCuota(ctx, cuotaID)
	if err != nil {
		return nil, err
	}
	for i := range pagos {
		if !pagos[i].Anulado {
			return &pagos[i], nil
		}
	}
	return nil, errors.New("la cuota no tiene pagos vigentes para reversar")
}

// ── Rollups ───────────────────────────────────────────────────────────────────

// aplicarPagoRollup descuenta el pago del saldo de la cuota y del crédito y
// recalcula ambos estados. CuotasPagadas se lleva por transición de la
// cuota tocada: el crédito releído bajo lock no trae las demás cuotas.
func aplicarPagoRollup(credito *model.CreditoCompra, cuota *model.Cuota, monto decimal.Decimal) {
	cuota.Saldo = cuota.Saldo.Sub(monto)
	cuota.Estado = cuota.EstadoPorSaldo(time.Now().UTC())

	credito.TotalPagado = credito.TotalPagado.Add(monto)
	credito.Saldo = credito.Saldo.Sub(monto)
	if cuota.Saldo.IsZero() {
		credito.CuotasPagadas++
	}
	recalcularEstadoCredito(credito)
}

func revertirPagoRollup(credito *model.CreditoCompra, cuota *model.Cuota, monto decimal.Decimal) {
	if cuota.Saldo.IsZero() {
		credito.CuotasPagadas--
	}
	cuota.Saldo = cuota.Saldo.Add(monto)
	cuota.Estado = cuota.EstadoPorSaldo(time.Now().UTC())

	credito.TotalPagado = credito.TotalPagado.Sub(monto)
	credito.Saldo = credito.Saldo.Add(monto)
	recalcularEstadoCredito(credito)
}

func recalcularEstadoCredito(credito *model.CreditoCompra) {
	switch {
	case credito.Saldo.IsZero():
		credito.Estado = model.CreditoPagado
	case credito.TotalPagado.IsPositive():
		credito.Estado = model.CreditoParcial
	default:
		credito.Estado = model.CreditoPendiente
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func buscarCuota(credito *model.CreditoCompra, cuotaID uuid.UUID) *model.Cuota {
	for i := range credito.Cuotas {
		if credito.Cuotas[i].ID == cuotaID {
			return &credito.Cuotas[i]
		}
	}
	return nil
}

func recepcionItemsALineas(items []dto.RecepcionItemRequest) []dto.RecepcionLineaRequest {
	lineas := make([]dto.RecepcionLineaRequest, 0, len(items))
	for _, it := range items {
		lineas = append(lineas, dto.RecepcionLineaRequest{
			CompraDetalleID:  it.CompraDetalleID,
			RefID:            it.RefID,
			Tipo:             it.Tipo,
			Cantidad:         it.Cantidad,
			FechaVencimiento: it.FechaVencimiento,
		})
	}
	return lineas
}

func descripcionPago(req dto.CrearPagoConRecepcionRequest, cuota *model.Cuota) string {
	desc := fmt.Sprintf("Pago de cuota %d (%s)", cuota.Numero, req.MetodoPago)
	if req.Referencia != nil && *req.Referencia != "" {
		desc += " ref " + *req.Referencia
	}
	return desc
}

func descripcionReversa(req dto.ReversarPagoRequest) string {
	desc := "Reversa de pago de cuota"
	if req.Observaciones != nil && *req.Observaciones != "" {
		desc += ": " + *req.Observaciones
	}
	return desc
}

func pagoToResponse(p *model.PagoCuota) dto.PagoCuotaResponse {
	var cajaID, cuentaID *string
	if p.CajaID != nil {
		s := p.CajaID.String()
		cajaID = &s
	}
	if p.CuentaBancariaID != nil {
		s := p.CuentaBancariaID.String()
		cuentaID = &s
	}
	return dto.PagoCuotaResponse{
		ID:               p.ID.String(),
		CuotaID:          p.CuotaID.String(),
		Monto:            FormatearMonto(p.Monto),
		FechaPago:        p.FechaPago.Format(time.RFC3339),
		Metodo:           p.Metodo,
		CajaID:           cajaID,
		CuentaBancariaID: cuentaID,
		Referencia:       p.Referencia,
		Anulado:          p.Anulado,
	}
}

func (s *creditoService) creditoToResponse(ctx context.Context, credito *model.CreditoCompra) *dto.CreditoResponse {
	hoy := time.Now().UTC()
	cuotas := make([]dto.CuotaResponse, 0, len(credito.Cuotas))
	for i := range credito.Cuotas {
		c := &credito.Cuotas[i]
		pagos, _ := s.repo.ListPagosByCuota(ctx, c.ID)
		pagosResp := make([]dto.PagoCuotaResponse, 0, len(pagos))
		for j := range pagos {
			pagosResp = append(pagosResp, pagoToResponse(&pagos[j]))
		}
		cuotas = append(cuotas, dto.CuotaResponse{
			ID:               c.ID.String(),
			Numero:           c.Numero,
			FechaVencimiento: c.FechaVencimiento.Format(time.RFC3339),
			Monto:            FormatearMonto(c.Monto),
			Saldo:            FormatearMonto(c.Saldo),
			Estado:           c.EstadoPorSaldo(hoy),
			Pagos:            pagosResp,
		})
	}
	return &dto.CreditoResponse{
		ID:               credito.ID.String(),
		CompraID:         credito.CompraID.String(),
		Estado:           credito.Estado,
		TipoInteres:      credito.TipoInteres,
		InteresPct:       FormatearMonto(credito.InteresPct),
		DiasEntreCuotas:  credito.DiasEntreCuotas,
		CantidadCuotas:   credito.CantidadCuotas,
		MontoTotal:       FormatearMonto(credito.MontoTotal),
		TotalPagado:      FormatearMonto(credito.TotalPagado),
		Saldo:            FormatearMonto(credito.Saldo),
		CuotasPagadas:    credito.CuotasPagadas,
		CuotasPendientes: credito.CantidadCuotas - credito.CuotasPagadas,
		Cuotas:           cuotas,
	}
}
