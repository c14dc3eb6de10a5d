package repository

import (
	"context"
	"time"

	"gestcom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoFinancieroRepository persiste el libro financiero. Los
// movimientos son inmutables: una reversa es un asiento inverso nuevo,
// nunca un UPDATE del original. Solo los campos de prorrateo mutan.
type MovimientoFinancieroRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoFinanciero) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MovimientoFinanciero, error)
	ListByCompra(ctx context.Context, compraID uuid.UUID) ([]model.MovimientoFinanciero, error)

	// Prorrateo state machine
	MarcarProrrateoAplicado(ctx context.Context, id uuid.UUID) error
	MarcarProrrateoError(ctx context.Context, id uuid.UUID, lastError string, retryCount int, nextRetry *time.Time) error
	ListProrrateosPendientes(ctx context.Context, ahora time.Time, limit int) ([]model.MovimientoFinanciero, error)

	DB() *gorm.DB
}

type movFinRepo struct{ db *gorm.DB }

func NewMovimientoFinancieroRepository(db *gorm.DB) MovimientoFinancieroRepository {
	return &movFinRepo{db: db}
}

func (r *movFinRepo) DB() *gorm.DB { return r.db }

func (r *movFinRepo) CreateTx(tx *gorm.DB, m *model.MovimientoFinanciero) error {
	return tx.Create(m).Error
}

func (r *movFinRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MovimientoFinanciero, error) {
	var m model.MovimientoFinanciero
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *movFinRepo) ListByCompra(ctx context.Context, compraID uuid.UUID) ([]model.MovimientoFinanciero, error) {
	var movs []model.MovimientoFinanciero
	err := r.db.WithContext(ctx).
		Where("compra_id = ?", compraID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *movFinRepo) MarcarProrrateoAplicado(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.MovimientoFinanciero{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado_prorrateo": model.ProrrateoAplicado,
			"next_retry_at":    nil,
			"last_error":       "",
		}).Error
}

func (r *movFinRepo) MarcarProrrateoError(ctx context.Context, id uuid.UUID, lastError string, retryCount int, nextRetry *time.Time) error {
	estado := model.ProrrateoPendiente
	if nextRetry == nil {
		// retries exhausted
		estado = model.ProrrateoError
	}
	return r.db.WithContext(ctx).Model(&model.MovimientoFinanciero{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado_prorrateo": estado,
			"retry_count":      retryCount,
			"next_retry_at":    nextRetry,
			"last_error":       lastError,
		}).Error
}

func (r *movFinRepo) ListProrrateosPendientes(ctx context.Context, ahora time.Time, limit int) ([]model.MovimientoFinanciero, error) {
	var movs []model.MovimientoFinanciero
	err := r.db.WithContext(ctx).
		Where("estado_prorrateo = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.ProrrateoPendiente, ahora).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&movs).Error
	return movs, err
}
