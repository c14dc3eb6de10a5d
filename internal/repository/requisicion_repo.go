package repository

import (
	"context"

	"gestcom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequisicionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *model.Requisicion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Requisicion, error)
	List(ctx context.Context, sucursalID string, page, limit int) ([]model.Requisicion, int64, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
	DB() *gorm.DB
}

type requisicionRepo struct{ db *gorm.DB }

func NewRequisicionRepository(db *gorm.DB) RequisicionRepository {
	return &requisicionRepo{db: db}
}

func (r *requisicionRepo) DB() *gorm.DB { return r.db }

func (r *requisicionRepo) Create(ctx context.Context, tx *gorm.DB, req *model.Requisicion) error {
	return tx.WithContext(ctx).Create(req).Error
}

func (r *requisicionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Requisicion, error) {
	var req model.Requisicion
	err := r.db.WithContext(ctx).Preload("Lineas").First(&req, id).Error
	return &req, err
}

func (r *requisicionRepo) List(ctx context.Context, sucursalID string, page, limit int) ([]model.Requisicion, int64, error) {
	var reqs []model.Requisicion
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Requisicion{})
	if sucursalID != "" {
		q = q.Where("sucursal_id = ?", sucursalID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Lineas").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reqs).Error
	return reqs, total, err
}

func (r *requisicionRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Requisicion{}).Where("id = ?", id).Update("estado", estado).Error
}
