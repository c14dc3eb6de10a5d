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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecepcionService interface {
	ListarRecepcionables(ctx context.Context, compraID uuid.UUID) (*dto.RecepcionablesResponse, error)
	RegistrarParcial(ctx context.Context, compraID, sucursalID, usuarioID uuid.UUID, req dto.RecepcionParcialRequest) (*dto.RecepcionResponse, error)
	RecepcionTotal(ctx context.Context, compraID, sucursalID, usuarioID uuid.UUID, req dto.RecepcionTotalRequest) (*dto.RecepcionResponse, error)

	// AplicarRecepcionTx corre la recepción dentro de una transacción ajena.
	// Lo usa el pago de cuota con recepción empaquetada.
	AplicarRecepcionTx(ctx context.Context, tx *gorm.DB, compra *model.Compra, sucursalID, usuarioID uuid.UUID, confirmadas []LineaConfirmada, fueTotal bool, observaciones *string, pagoCuotaID *uuid.UUID) (*model.Recepcion, error)
}

type recepcionService struct {
	compraRepo    repository.CompraRepository
	recepcionRepo repository.RecepcionRepository
	productoRepo  repository.ProductoRepository
	movStockRepo  repository.MovimientoStockRepository
	movFinRepo    repository.MovimientoFinancieroRepository
	sucursalRepo  repository.SucursalRepository
	vistas        *cache.Vistas
}

func NewRecepcionService(
	compraRepo repository.CompraRepository,
	recepcionRepo repository.RecepcionRepository,
	productoRepo repository.ProductoRepository,
	movStockRepo repository.MovimientoStockRepository,
	movFinRepo repository.MovimientoFinancieroRepository,
	sucursalRepo repository.SucursalRepository,
	vistas *cache.Vistas,
) RecepcionService {
	return &recepcionService{
		compraRepo:    compraRepo,
		recepcionRepo: recepcionRepo,
		productoRepo:  productoRepo,
		movStockRepo:  movStockRepo,
		movFinRepo:    movFinRepo,
		sucursalRepo:  sucursalRepo,
		vistas:        vistas,
	}
}

// ── ListarRecepcionables ──────────────────────────────────────────────────────
// Vista del selector de recepción parcial: líneas con pendiente positivo,
// normalizadas con ordenadas/recibidas/pendientes. Cacheada por compra.

func (s *recepcionService) ListarRecepcionables(ctx context.Context, compraID uuid.UUID) (*dto.RecepcionablesResponse, error) {
	var cached dto.RecepcionablesResponse
	if s.vistas.Get(ctx, cache.ClaveRecepcionable(compraID), &cached) {
		return &cached, nil
	}

	compra, err := s.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		return nil, errors.New("compra no encontrada")
	}
	if compra.Estado == model.CompraAnulado {
		return nil, errors.New("la compra está anulada")
	}

	lineas := make([]dto.LineaRecepcionable, 0, len(compra.Detalles))
	for i := range compra.Detalles {
		d := &compra.Detalles[i]
		if d.Pendiente() == 0 {
			continue
		}
		lineas = append(lineas, dto.LineaRecepcionable{
			CompraDetalleID:  d.ID.String(),
			Tipo:             d.Tipo,
			RefID:            d.RefID.String(),
			Nombre:           s.nombreRef(ctx, d.Tipo, d.RefID),
			Ordenadas:        d.Cantidad,
			Recibidas:        d.CantidadRecibida,
			Pendientes:       d.Pendiente(),
			PrecioCosto:      FormatearMonto(d.PrecioCosto),
			FechaVencimiento: fechaOpcionalString(d.FechaVencimiento),
		})
	}

	resp := &dto.RecepcionablesResponse{
		CompraID: compra.ID.String(),
		Estado:   compra.EstadoCalculado(),
		Lineas:   lineas,
	}
	s.vistas.Set(ctx, cache.ClaveRecepcionable(compraID), resp)
	return resp, nil
}

// ── RegistrarParcial ──────────────────────────────────────────────────────────
// Las cantidades pedidas pasan por el selector, que las clampea al
// pendiente de cada línea y descarta ceros. Todo lo persistente (recepción,
// acumulados, stock, estado de la compra) ocurre en una transacción; al
// commit se invalidan las tres vistas de la compra.

func (s *recepcionService) RegistrarParcial(ctx context.Context, compraID, sucursalID, usuarioID uuid.UUID, req dto.RecepcionParcialRequest) (*dto.RecepcionResponse, error) {
	compra, err := s.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		return nil, errors.New("compra no encontrada")
	}
	if err := validarSucursal(ctx, s.sucursalRepo, sucursalID); err != nil {
		return nil, err
	}

	sel, err := armarSeleccion(compra, req.Lineas)
	if err != nil {
		return nil, err
	}
	confirmadas, fueTotal := sel.Confirmar()
	if len(confirmadas) == 0 {
		return nil, errors.New("ninguna línea con cantidad válida para recibir")
	}

	rec, err := s.ejecutarRecepcion(ctx, compra, sucursalID, usuarioID, confirmadas, fueTotal, req.Observaciones, nil)
	if err != nil {
		return nil, err
	}

	s.vistas.InvalidarCompra(ctx, compraID)
	return s.recepcionToResponse(rec, compra.EstadoCalculado()), nil
}

// ── RecepcionTotal ────────────────────────────────────────────────────────────
// Recibe todo lo pendiente y asienta el pago al proveedor por el canal del
// método elegido, en la misma transacción que la mercadería.

func (s *recepcionService) RecepcionTotal(ctx context.Context, compraID, sucursalID, usuarioID uuid.UUID, req dto.RecepcionTotalRequest) (*dto.RecepcionResponse, error) {
	compra, err := s.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		return nil, errors.New("compra no encontrada")
	}
	if compra.EsCredito {
		return nil, errors.New("una compra a crédito se paga por cuotas, no por recepción total")
	}

	canal, err := ResolverCanal(req.MetodoPago, req.CajaID, req.CuentaBancariaID)
	if err != nil {
		return nil, err
	}
	if err := ValidarDestino(ctx, s.sucursalRepo, sucursalID, canal); err != nil {
		return nil, err
	}

	sel := NuevaSeleccion(lineasPendientes(compra))
	sel.RecibirTodoPendiente()
	confirmadas, fueTotal := sel.Confirmar()
	if len(confirmadas) == 0 {
		return nil, errors.New("la compra no tiene unidades pendientes")
	}

	movFin := s.armarPagoCompra(compra, sucursalID, usuarioID, canal, req.MetodoPago)
	rec, err := s.ejecutarRecepcion(ctx, compra, sucursalID, usuarioID, confirmadas, fueTotal, req.Observaciones, movFin)
	if err != nil {
		return nil, err
	}

	s.vistas.InvalidarCompra(ctx, compraID)
	return s.recepcionToResponse(rec, compra.EstadoCalculado()), nil
}

func (s *recepcionService) armarPagoCompra(compra *model.Compra, sucursalID, usuarioID uuid.UUID, canal *CanalPago, metodo string) *model.MovimientoFinanciero {
	deltaCaja, deltaBanco := canal.Deltas(compra.Total)
	compraRef := compra.ID
	return &model.MovimientoFinanciero{
		Tipo:             model.MovPagoCompra,
		Motivo:           fmt.Sprintf("Pago compra #%d (%s)", compra.Numero, metodo),
		Monto:            compra.Total,
		DeltaCaja:        deltaCaja,
		DeltaBanco:       deltaBanco,
		CajaID:           canal.CajaID,
		CuentaBancariaID: canal.CuentaBancariaID,
		CompraID:         &compraRef,
		SucursalID:       sucursalID,
		RegistradoPorID:  usuarioID,
		Descripcion:      fmt.Sprintf("Recepción total y pago de compra #%d", compra.Numero),
	}
}

// AplicarRecepcionTx persiste una recepción dentro de una transacción ya
// abierta: recepción + líneas, acumulados por detalle, stock con su
// movimiento y el estado recalculado de la compra.
func (s *recepcionService) AplicarRecepcionTx(
	ctx context.Context,
	tx *gorm.DB,
	compra *model.Compra,
	sucursalID, usuarioID uuid.UUID,
	confirmadas []LineaConfirmada,
	fueTotal bool,
	observaciones *string,
	pagoCuotaID *uuid.UUID,
) (*model.Recepcion, error) {
	detallesPorID := make(map[uuid.UUID]*model.CompraDetalle, len(compra.Detalles))
	for i := range compra.Detalles {
		detallesPorID[compra.Detalles[i].ID] = &compra.Detalles[i]
	}

	rec := &model.Recepcion{
		CompraID:      compra.ID,
		SucursalID:    sucursalID,
		UsuarioID:     usuarioID,
		PagoCuotaID:   pagoCuotaID,
		Fecha:         time.Now().UTC(),
		FueTotal:      fueTotal,
		Observaciones: observaciones,
	}
	for _, c := range confirmadas {
		det := detallesPorID[c.DetalleID]
		rec.Lineas = append(rec.Lineas, model.RecepcionLinea{
			CompraDetalleID:  c.DetalleID,
			Tipo:             c.Tipo,
			RefID:            c.RefID,
			Cantidad:         c.Cantidad,
			PrecioCosto:      det.PrecioCosto,
			FechaVencimiento: c.FechaVencimiento,
		})
	}

	if err := s.recepcionRepo.CreateTx(tx, rec); err != nil {
		return nil, err
	}

	for _, c := range confirmadas {
		det := detallesPorID[c.DetalleID]
		det.CantidadRecibida += c.Cantidad
		if c.FechaVencimiento != nil {
			det.FechaVencimiento = c.FechaVencimiento
		}
		det.Estado = det.EstadoCalculado()
		if err := s.compraRepo.AcumularRecibidoTx(tx, det, c.Cantidad); err != nil {
			return nil, err
		}
		if err := s.aplicarStockTx(ctx, tx, rec.ID, compra.Numero, c); err != nil {
			return nil, err
		}
	}

	if err := s.compraRepo.UpdateEstadoTx(tx, compra.ID, compra.EstadoCalculado()); err != nil {
		return nil, err
	}
	return rec, nil
}

// ejecutarRecepcion envuelve AplicarRecepcionTx en su propia transacción,
// sumando el asiento financiero cuando la recepción viene con pago.
func (s *recepcionService) ejecutarRecepcion(
	ctx context.Context,
	compra *model.Compra,
	sucursalID, usuarioID uuid.UUID,
	confirmadas []LineaConfirmada,
	fueTotal bool,
	observaciones *string,
	movFin *model.MovimientoFinanciero,
) (*model.Recepcion, error) {
	var rec *model.Recepcion
	txErr := runTx(ctx, s.compraRepo.DB(), func(tx *gorm.DB) error {
		var err error
		rec, err = s.AplicarRecepcionTx(ctx, tx, compra, sucursalID, usuarioID, confirmadas, fueTotal, observaciones, nil)
		if err != nil {
			return err
		}
		if movFin != nil {
			return s.movFinRepo.CreateTx(tx, movFin)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return rec, nil
}

// aplicarStockTx impacta el inventario de una línea recibida. El stock base
// se lleva en unidades del producto: una presentación suma su propio stock
// y además convierte al producto padre vía el factor.
func (s *recepcionService) aplicarStockTx(ctx context.Context, tx *gorm.DB, recepcionID uuid.UUID, numeroCompra int64, c LineaConfirmada) error {
	recRef := recepcionID
	motivo := fmt.Sprintf("Recepción compra #%d", numeroCompra)

	switch c.Tipo {
	case model.RefProducto:
		prod, err := s.productoRepo.FindByID(ctx, c.RefID)
		if err != nil {
			return fmt.Errorf("producto %s no encontrado", c.RefID)
		}
		if err := s.productoRepo.UpdateStockTx(tx, c.RefID, c.Cantidad); err != nil {
			return err
		}
		return s.movStockRepo.CreateTx(tx, &model.MovimientoStock{
			ProductoID:    c.RefID,
			Tipo:          model.StockRecepcion,
			Cantidad:      c.Cantidad,
			StockAnterior: prod.StockActual,
			StockNuevo:    prod.StockActual + c.Cantidad,
			Motivo:        motivo,
			ReferenciaID:  &recRef,
		})

	case model.RefPresentacion:
		pres, err := s.productoRepo.FindPresentacionByID(ctx, c.RefID)
		if err != nil {
			return fmt.Errorf("presentación %s no encontrada", c.RefID)
		}
		if err := s.productoRepo.UpdateStockPresentacionTx(tx, c.RefID, c.Cantidad); err != nil {
			return err
		}
		unidadesBase := int(pres.FactorConversion.Mul(decimal.NewFromInt(int64(c.Cantidad))).Round(0).IntPart())
		prod, err := s.productoRepo.FindByID(ctx, pres.ProductoID)
		if err != nil {
			return fmt.Errorf("producto base de la presentación %s no encontrado", c.RefID)
		}
		if err := s.productoRepo.UpdateStockTx(tx, pres.ProductoID, unidadesBase); err != nil {
			return err
		}
		return s.movStockRepo.CreateTx(tx, &model.MovimientoStock{
			ProductoID:    pres.ProductoID,
			Tipo:          model.StockRecepcion,
			Cantidad:      unidadesBase,
			StockAnterior: prod.StockActual,
			StockNuevo:    prod.StockActual + unidadesBase,
			Motivo:        motivo + " (" + pres.Nombre + ")",
			ReferenciaID:  &recRef,
		})
	}
	return errors.New("tipo de línea desconocido: " + c.Tipo)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func lineasPendientes(compra *model.Compra) []LineaPendiente {
	lineas := make([]LineaPendiente, 0, len(compra.Detalles))
	for i := range compra.Detalles {
		d := &compra.Detalles[i]
		lineas = append(lineas, LineaPendiente{
			DetalleID: d.ID,
			Tipo:      d.Tipo,
			RefID:     d.RefID,
			Pendiente: d.Pendiente(),
		})
	}
	return lineas
}

// armarSeleccion proyecta el payload del cliente sobre el selector. Las
// cantidades se clampean al pendiente; las líneas desconocidas o ya
// completas se ignoran en lugar de fallar.
func armarSeleccion(compra *model.Compra, lineas []dto.RecepcionLineaRequest) (*SeleccionRecepcion, error) {
	if compra.Estado == model.CompraAnulado {
		return nil, errors.New("la compra está anulada")
	}
	sel := NuevaSeleccion(lineasPendientes(compra))
	for _, l := range lineas {
		detalleID, err := uuid.Parse(l.CompraDetalleID)
		if err != nil {
			return nil, errors.New("compra_detalle_id inválido")
		}
		sel.SetCantidad(detalleID, l.Cantidad)
		if l.FechaVencimiento != nil {
			venc, err := FechaDesdeYMD(*l.FechaVencimiento)
			if err != nil {
				return nil, err
			}
			sel.SetFechaVencimiento(detalleID, venc)
		}
	}
	return sel, nil
}

func (s *recepcionService) nombreRef(ctx context.Context, tipo string, refID uuid.UUID) string {
	switch tipo {
	case model.RefProducto:
		if p, err := s.productoRepo.FindByID(ctx, refID); err == nil {
			return p.Nombre
		}
	case model.RefPresentacion:
		if p, err := s.productoRepo.FindPresentacionByID(ctx, refID); err == nil {
			return p.Nombre
		}
	}
	return ""
}

func (s *recepcionService) recepcionToResponse(rec *model.Recepcion, estadoCompra string) *dto.RecepcionResponse {
	lineas := make([]dto.RecepcionLineaResponse, 0, len(rec.Lineas))
	for i := range rec.Lineas {
		l := &rec.Lineas[i]
		lineas = append(lineas, dto.RecepcionLineaResponse{
			CompraDetalleID:  l.CompraDetalleID.String(),
			Tipo:             l.Tipo,
			RefID:            l.RefID.String(),
			Cantidad:         l.Cantidad,
			PrecioCosto:      FormatearMonto(l.PrecioCosto),
			FechaVencimiento: fechaOpcionalString(l.FechaVencimiento),
		})
	}
	return &dto.RecepcionResponse{
		ID:           rec.ID.String(),
		CompraID:     rec.CompraID.String(),
		FueTotal:     rec.FueTotal,
		EstadoCompra: estadoCompra,
		Fecha:        rec.Fecha.Format(time.RFC3339),
		Lineas:       lineas,
	}
}
