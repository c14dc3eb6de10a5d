package repository

import (
	"context"

	"gestcom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecepcionRepository interface {
	CreateTx(tx *gorm.DB, r *model.Recepcion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recepcion, error)
	ListByCompra(ctx context.Context, compraID uuid.UUID) ([]model.Recepcion, error)
}

type recepcionRepo struct{ db *gorm.DB }

func NewRecepcionRepository(db *gorm.DB) RecepcionRepository { return &recepcionRepo{db: db} }

func (r *recepcionRepo) CreateTx(tx *gorm.DB, rec *model.Recepcion) error {
	return tx.Create(rec).Error
}

func (r *recepcionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Recepcion, error) {
	var rec model.Recepcion
	err := r.db.WithContext(ctx).Preload("Lineas").First(&rec, id).Error
	return &rec, err
}

func (r *recepcionRepo) ListByCompra(ctx context.Context, compraID uuid.UUID) ([]model.Recepcion, error) {
	var recs []model.Recepcion
	err := r.db.WithContext(ctx).
		Preload("Lineas").
		Where("compra_id = ?", compraID).
		Order("fecha DESC").
		Find(&recs).Error
	return recs, err
}
