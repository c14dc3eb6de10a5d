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
	"gorm.io/gorm"
)

type CostoService interface {
	RegistrarCostoAsociado(ctx context.Context, compraID, sucursalID, usuarioID uuid.UUID, req dto.CostoAsociadoRequest) (*dto.CostoAsociadoResponse, error)
	ListarMovimientos(ctx context.Context, compraID uuid.UUID) ([]dto.MovimientoFinancieroResponse, error)
}

type costoService struct {
	compraRepo   repository.CompraRepository
	movFinRepo   repository.MovimientoFinancieroRepository
	sucursalRepo repository.SucursalRepository
	vistas       *cache.Vistas
	dispatcher   *worker.Dispatcher
}

func NewCostoService(
	compraRepo repository.CompraRepository,
	movFinRepo repository.MovimientoFinancieroRepository,
	sucursalRepo repository.SucursalRepository,
	vistas *cache.Vistas,
	dispatcher *worker.Dispatcher,
) CostoService {
	return &costoService{
		compraRepo:   compraRepo,
		movFinRepo:   movFinRepo,
		sucursalRepo: sucursalRepo,
		vistas:       vistas,
		dispatcher:   dispatcher,
	}
}

// ── RegistrarCostoAsociado ────────────────────────────────────────────────────
// Asienta un costo accesorio de la compra (flete y similares). Motivo,
// clasificación, tipo de costo y la marca afecta-inventario son fijos; la API
// expone sólo el switch aplicar: cuando viene en true el prorrateo hacia el
// costo unitario del inventario recibido queda en cola para el worker, con
// base COSTO y sin incluir recepciones previas al asiento.

func (s *costoService) RegistrarCostoAsociado(ctx context.Context, compraID, sucursalID, usuarioID uuid.UUID, req dto.CostoAsociadoRequest) (*dto.CostoAsociadoResponse, error) {
	compra, err := s.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		return nil, errors.New("compra no encontrada")
	}
	if compra.Estado == model.CompraAnulado {
		return nil, errors.New("la compra está anulada")
	}

	monto, err := ParseMonto(req.Monto)
	if err != nil {
		return nil, err
	}
	if !monto.IsPositive() {
		return nil, errors.New("el monto debe ser mayor a cero")
	}

	canal, err := ResolverCanal(req.MetodoPago, req.CajaID, req.CuentaBancariaID)
	if err != nil {
		return nil, err
	}
	if err := ValidarDestino(ctx, s.sucursalRepo, sucursalID, canal); err != nil {
		return nil, err
	}
	deltaCaja, deltaBanco := canal.Deltas(monto)

	clasificacion := model.ClasificacionCostoVenta
	costoTipo := model.CostoVentaFlete
	compraRef := compra.ID
	mov := &model.MovimientoFinanciero{
		Tipo:               model.MovCostoAsociado,
		Motivo:             model.MotivoCostoAsociado,
		ClasificacionAdmin: &clasificacion,
		CostoVentaTipo:     &costoTipo,
		AfectaInventario:   true,
		Monto:              monto,
		DeltaCaja:          deltaCaja,
		DeltaBanco:         deltaBanco,
		CajaID:             canal.CajaID,
		CuentaBancariaID:   canal.CuentaBancariaID,
		CompraID:           &compraRef,
		SucursalID:         sucursalID,
		RegistradoPorID:    usuarioID,
		Descripcion:        fmt.Sprintf("Costo asociado compra #%d: %s", compra.Numero, req.Descripcion),
	}
	if req.Aplicar {
		base := model.ProrrateoBaseCosto
		estado := model.ProrrateoPendiente
		mov.ProrratearBase = &base
		mov.ProrratearIncluirAntiguos = false
		mov.EstadoProrrateo = &estado
	}

	txErr := runTx(ctx, s.movFinRepo.DB(), func(tx *gorm.DB) error {
		return s.movFinRepo.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.vistas.InvalidarCompra(ctx, compraID)

	if req.Aplicar && s.dispatcher != nil {
		_ = s.dispatcher.EnqueueProrrateo(ctx, map[string]interface{}{
			"movimiento_id": mov.ID.String(),
		})
	}

	return &dto.CostoAsociadoResponse{
		MovimientoID:       mov.ID.String(),
		CompraID:           compra.ID.String(),
		Motivo:             mov.Motivo,
		ClasificacionAdmin: clasificacion,
		CostoVentaTipo:     costoTipo,
		AfectaInventario:   mov.AfectaInventario,
		Monto:              FormatearMonto(monto),
		DeltaCaja:          FormatearMonto(deltaCaja),
		DeltaBanco:         FormatearMonto(deltaBanco),
		Prorrateo: dto.ProrrateoMeta{
			Aplicar:         req.Aplicar,
			Base:            model.ProrrateoBaseCosto,
			IncluirAntiguos: false,
			Estado:          mov.EstadoProrrateo,
		},
	}, nil
}

func (s *costoService) ListarMovimientos(ctx context.Context, compraID uuid.UUID) ([]dto.MovimientoFinancieroResponse, error) {
	movs, err := s.movFinRepo.ListByCompra(ctx, compraID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovimientoFinancieroResponse, 0, len(movs))
	for i := range movs {
		m := &movs[i]
		resp = append(resp, dto.MovimientoFinancieroResponse{
			ID:                 m.ID.String(),
			Tipo:               m.Tipo,
			Motivo:             m.Motivo,
			ClasificacionAdmin: m.ClasificacionAdmin,
			DeltaCaja:          FormatearMonto(m.DeltaCaja),
			DeltaBanco:         FormatearMonto(m.DeltaBanco),
			Descripcion:        m.Descripcion,
			CreatedAt:          m.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}
