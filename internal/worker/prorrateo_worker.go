package worker

// prorrateo_worker.go
// Processes cost-allocation jobs from QueueProrrateo.
// Distributes an associated cost (freight and the like) across the units
// received for the purchase, proportionally to the value of each line
// (unit cost x received units), and bumps the master unit costs.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gestcom/internal/model"
	"gestcom/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const MaxProrrateoRetries = 5

// ProrrateoJobPayload is the job envelope sent to QueueProrrateo.
type ProrrateoJobPayload struct {
	MovimientoID string `json:"movimiento_id"`
}

type ProrrateoWorker struct {
	movFinRepo    repository.MovimientoFinancieroRepository
	compraRepo    repository.CompraRepository
	recepcionRepo repository.RecepcionRepository
	productoRepo  repository.ProductoRepository
	movStockRepo  repository.MovimientoStockRepository
	rdb           *redis.Client
}

func NewProrrateoWorker(
	movFinRepo repository.MovimientoFinancieroRepository,
	compraRepo repository.CompraRepository,
	recepcionRepo repository.RecepcionRepository,
	productoRepo repository.ProductoRepository,
	movStockRepo repository.MovimientoStockRepository,
	rdb *redis.Client,
) *ProrrateoWorker {
	return &ProrrateoWorker{
		movFinRepo:    movFinRepo,
		compraRepo:    compraRepo,
		recepcionRepo: recepcionRepo,
		productoRepo:  productoRepo,
		movStockRepo:  movStockRepo,
		rdb:           rdb,
	}
}

// Process applies one allocation end to end. On failure the movement keeps
// estado_prorrateo='pendiente' with a scheduled next_retry_at; past the
// retry budget it lands in the DLQ with estado 'error'.
func (w *ProrrateoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ProrrateoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("prorrateo_worker: invalid payload")
		return
	}
	movID, err := uuid.Parse(payload.MovimientoID)
	if err != nil {
		log.Error().Str("movimiento_id", payload.MovimientoID).Msg("prorrateo_worker: invalid movimiento_id")
		return
	}

	mov, err := w.movFinRepo.FindByID(ctx, movID)
	if err != nil {
		log.Error().Err(err).Str("movimiento_id", payload.MovimientoID).Msg("prorrateo_worker: movimiento not found")
		return
	}
	if mov.EstadoProrrateo == nil || *mov.EstadoProrrateo != model.ProrrateoPendiente {
		log.Debug().Str("movimiento_id", payload.MovimientoID).Msg("prorrateo_worker: nothing to apply, skipping")
		return
	}

	if err := w.aplicar(ctx, mov); err != nil {
		w.programarReintento(ctx, mov, raw, err)
		return
	}

	if err := w.movFinRepo.MarcarProrrateoAplicado(ctx, mov.ID); err != nil {
		log.Error().Err(err).Str("movimiento_id", mov.ID.String()).Msg("prorrateo_worker: failed to mark as applied")
		return
	}
	log.Info().Str("movimiento_id", mov.ID.String()).Msg("prorrateo_worker: cost allocated")
}

// aplicar runs the proportional allocation in a single transaction.
func (w *ProrrateoWorker) aplicar(ctx context.Context, mov *model.MovimientoFinanciero) error {
	if mov.CompraID == nil {
		return errors.New("el movimiento no referencia una compra")
	}
	compra, err := w.compraRepo.FindByID(ctx, *mov.CompraID)
	if err != nil {
		return fmt.Errorf("compra no encontrada: %w", err)
	}

	unidades, err := w.unidadesRecibidas(ctx, compra, mov)
	if err != nil {
		return err
	}

	// Valor por línea = costo unitario x unidades alcanzadas
	type lineaProrrateo struct {
		detalle  *model.CompraDetalle
		unidades int
		valor    decimal.Decimal
	}
	var lineas []lineaProrrateo
	totalValor := decimal.Zero
	for i := range compra.Detalles {
		d := &compra.Detalles[i]
		u := unidades[d.ID]
		if u == 0 {
			continue
		}
		valor := d.PrecioCosto.Mul(decimal.NewFromInt(int64(u)))
		totalValor = totalValor.Add(valor)
		lineas = append(lineas, lineaProrrateo{detalle: d, unidades: u, valor: valor})
	}
	if len(lineas) == 0 || !totalValor.IsPositive() {
		return errors.New("la compra no tiene unidades recibidas alcanzadas por el prorrateo")
	}

	return w.compraRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, l := range lineas {
			share := l.valor.Div(totalValor)
			extraPorUnidad := mov.Monto.Mul(share).Div(decimal.NewFromInt(int64(l.unidades))).Round(2)
			if !extraPorUnidad.IsPositive() {
				continue
			}
			if err := w.ajustarCostoTx(ctx, tx, mov, l.detalle, extraPorUnidad); err != nil {
				return err
			}
		}
		return nil
	})
}

// unidadesRecibidas acumula por línea las unidades de las recepciones
// alcanzadas: todas, o sólo las posteriores al asiento del costo según
// prorratear_incluir_antiguos.
func (w *ProrrateoWorker) unidadesRecibidas(ctx context.Context, compra *model.Compra, mov *model.MovimientoFinanciero) (map[uuid.UUID]int, error) {
	recepciones, err := w.recepcionRepo.ListByCompra(ctx, compra.ID)
	if err != nil {
		return nil, err
	}
	unidades := make(map[uuid.UUID]int)
	for i := range recepciones {
		rec := &recepciones[i]
		if !mov.ProrratearIncluirAntiguos && rec.Fecha.Before(mov.CreatedAt) {
			continue
		}
		for j := range rec.Lineas {
			l := &rec.Lineas[j]
			unidades[l.CompraDetalleID] += l.Cantidad
		}
	}
	return unidades, nil
}

// ajustarCostoTx suma el extra por unidad al costo maestro de la línea y
// deja rastro en movimientos_stock (cantidad cero: sólo cambió el costo).
func (w *ProrrateoWorker) ajustarCostoTx(ctx context.Context, tx *gorm.DB, mov *model.MovimientoFinanciero, d *model.CompraDetalle, extra decimal.Decimal) error {
	movRef := mov.ID
	switch d.Tipo {
	case model.RefProducto:
		prod, err := w.productoRepo.FindByID(ctx, d.RefID)
		if err != nil {
			return fmt.Errorf("producto %s no encontrado", d.RefID)
		}
		nuevo := prod.PrecioCosto.Add(extra)
		if err := w.productoRepo.UpdatePrecioCostoTx(tx, d.RefID, nuevo); err != nil {
			return err
		}
		return w.movStockRepo.CreateTx(tx, &model.MovimientoStock{
			ProductoID:    d.RefID,
			Tipo:          model.StockAjusteCosto,
			Cantidad:      0,
			StockAnterior: prod.StockActual,
			StockNuevo:    prod.StockActual,
			Motivo:        fmt.Sprintf("Prorrateo costo asociado: +%s por unidad", extra.StringFixed(2)),
			ReferenciaID:  &movRef,
		})

	case model.RefPresentacion:
		pres, err := w.productoRepo.FindPresentacionByID(ctx, d.RefID)
		if err != nil {
			return fmt.Errorf("presentación %s no encontrada", d.RefID)
		}
		base := decimal.Zero
		if pres.CostoReferencial != nil {
			base = *pres.CostoReferencial
		} else if prod, err := w.productoRepo.FindByID(ctx, pres.ProductoID); err == nil {
			base = prod.PrecioCosto.Mul(pres.FactorConversion).Round(2)
		}
		return w.productoRepo.UpdateCostoReferencialTx(tx, d.RefID, base.Add(extra))
	}
	return errors.New("tipo de línea desconocido: " + d.Tipo)
}

// programarReintento agenda el próximo intento o, agotado el presupuesto,
// mueve el job a la DLQ.
func (w *ProrrateoWorker) programarReintento(ctx context.Context, mov *model.MovimientoFinanciero, raw json.RawMessage, cause error) {
	retries := mov.RetryCount + 1
	if retries >= MaxProrrateoRetries {
		if err := w.movFinRepo.MarcarProrrateoError(ctx, mov.ID, cause.Error(), retries, nil); err != nil {
			log.Error().Err(err).Str("movimiento_id", mov.ID.String()).Msg("prorrateo_worker: failed to mark error state")
		}
		SendToDLQ(ctx, w.rdb, QueueProrrateo, "prorrateo", raw,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxProrrateoRetries, cause.Error()), retries)
		return
	}

	next := time.Now().Add(computeRetryBackoff(retries))
	if err := w.movFinRepo.MarcarProrrateoError(ctx, mov.ID, cause.Error(), retries, &next); err != nil {
		log.Error().Err(err).Str("movimiento_id", mov.ID.String()).Msg("prorrateo_worker: failed to schedule retry")
		return
	}
	log.Warn().
		Str("movimiento_id", mov.ID.String()).
		Int("retry_count", retries).
		Time("next_retry_at", next).
		Err(cause).
		Msg("prorrateo_worker: allocation failed, scheduled next attempt")
}

// computeRetryBackoff: 1m, 2m, 4m, 8m …
func computeRetryBackoff(retryCount int) time.Duration {
	return time.Duration(1<<uint(retryCount-1)) * time.Minute
}
