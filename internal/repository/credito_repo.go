package repository

import (
	"context"
	"errors"

	"gestcom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditoRepository interface {
	FindByCompraID(ctx context.Context, compraID uuid.UUID) (*model.CreditoCompra, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CreditoCompra, error)
	FindCuotaByID(ctx context.Context, id uuid.UUID) (*model.Cuota, error)
	FindPagoByID(ctx context.Context, id uuid.UUID) (*model.PagoCuota, error)
	ListPagosByCuota(ctx context.Context, cuotaID uuid.UUID) ([]model.PagoCuota, error)

	// Used inside transactions — callers must pass the tx instance.
	// Los Lock* releen la fila con FOR UPDATE: los rollups se calculan
	// sobre el valor vigente, no sobre el snapshot previo a la tx.
	LockCreditoTx(tx *gorm.DB, id uuid.UUID) (*model.CreditoCompra, error)
	LockCuotaTx(tx *gorm.DB, id uuid.UUID) (*model.Cuota, error)
	CreatePagoTx(tx *gorm.DB, p *model.PagoCuota) error
	UpdatePagoRefsTx(tx *gorm.DB, p *model.PagoCuota) error
	UpdateCuotaTx(tx *gorm.DB, c *model.Cuota) error
	UpdateCreditoTx(tx *gorm.DB, cr *model.CreditoCompra) error
	AnularCreditoTx(tx *gorm.DB, creditoID uuid.UUID) error
	AnularPagoTx(tx *gorm.DB, p *model.PagoCuota) error

	DB() *gorm.DB
}

type creditoRepo struct{ db *gorm.DB }

func NewCreditoRepository(db *gorm.DB) CreditoRepository { return &creditoRepo{db: db} }

func (r *creditoRepo) DB() *gorm.DB { return r.db }

func (r *creditoRepo) FindByCompraID(ctx context.Context, compraID uuid.UUID) (*model.CreditoCompra, error) {
	var cr model.CreditoCompra
	err := r.db.WithContext(ctx).
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		Where("compra_id = ?", compraID).
		First(&cr).Error
	return &cr, err
}

func (r *creditoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CreditoCompra, error) {
	var cr model.CreditoCompra
	err := r.db.WithContext(ctx).First(&cr, id).Error
	return &cr, err
}

func (r *creditoRepo) FindCuotaByID(ctx context.Context, id uuid.UUID) (*model.Cuota, error) {
	var c model.Cuota
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *creditoRepo) FindPagoByID(ctx context.Context, id uuid.UUID) (*model.PagoCuota, error) {
	var p model.PagoCuota
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *creditoRepo) ListPagosByCuota(ctx context.Context, cuotaID uuid.UUID) ([]model.PagoCuota, error) {
	var pagos []model.PagoCuota
	err := r.db.WithContext(ctx).
		Where("cuota_id = ?", cuotaID).
		Order("created_at DESC").
		Find(&pagos).Error
	return pagos, err
}

func (r *creditoRepo) LockCreditoTx(tx *gorm.DB, id uuid.UUID) (*model.CreditoCompra, error) {
	var cr model.CreditoCompra
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cr, id).Error
	return &cr, err
}

func (r *creditoRepo) LockCuotaTx(tx *gorm.DB, id uuid.UUID) (*model.Cuota, error) {
	var c model.Cuota
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *creditoRepo) CreatePagoTx(tx *gorm.DB, p *model.PagoCuota) error {
	return tx.Create(p).Error
}

// UpdatePagoRefsTx completa los enlaces del pago hacia el movimiento
// financiero y la recepción, creados después del pago en la misma tx.
func (r *creditoRepo) UpdatePagoRefsTx(tx *gorm.DB, p *model.PagoCuota) error {
	return tx.Model(&model.PagoCuota{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"movimiento_financiero_id": p.MovimientoFinancieroID,
		"recepcion_id":             p.RecepcionID,
	}).Error
}

func (r *creditoRepo) AnularCreditoTx(tx *gorm.DB, creditoID uuid.UUID) error {
	return tx.Model(&model.CreditoCompra{}).
		Where("id = ?", creditoID).
		Update("estado", model.CreditoAnulado).Error
}

func (r *creditoRepo) UpdateCuotaTx(tx *gorm.DB, c *model.Cuota) error {
	return tx.Model(&model.Cuota{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"saldo":  c.Saldo,
		"estado": c.Estado,
	}).Error
}

func (r *creditoRepo) UpdateCreditoTx(tx *gorm.DB, cr *model.CreditoCompra) error {
	return tx.Model(&model.CreditoCompra{}).Where("id = ?", cr.ID).Updates(map[string]interface{}{
		"total_pagado":   cr.TotalPagado,
		"saldo":          cr.Saldo,
		"cuotas_pagadas": cr.CuotasPagadas,
		"estado":         cr.Estado,
	}).Error
}

// AnularPagoTx marca el pago como anulado; los pagos nunca se borran.
// El guard sobre anulado evita que dos reversas concurrentes tomen el
// mismo pago.
func (r *creditoRepo) AnularPagoTx(tx *gorm.DB, p *model.PagoCuota) error {
	res := tx.Model(&model.PagoCuota{}).
		Where("id = ? AND anulado = false", p.ID).
		Updates(map[string]interface{}{
			"anulado":        true,
			"anulado_at":     p.AnuladoAt,
			"anulado_por_id": p.AnuladoPorID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("el pago ya fue anulado")
	}
	return nil
}
