package repository

import (
	"context"

	"gestcom/internal/dto"
	"gestcom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductosFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	// ListCandidatos devuelve productos activos con stock por debajo del
	// mínimo (o que matchean el filtro de texto), con sus presentaciones
	// activas precargadas.
	ListCandidatos(ctx context.Context, filter dto.CandidatosFilter) ([]model.Producto, int64, error)

	// Presentaciones
	CreatePresentacion(ctx context.Context, p *model.Presentacion) error
	FindPresentacionByID(ctx context.Context, id uuid.UUID) (*model.Presentacion, error)
	UpdatePresentacion(ctx context.Context, p *model.Presentacion) error
	SoftDeletePresentacion(ctx context.Context, id uuid.UUID) error
	ReactivarPresentacion(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	UpdateStockPresentacionTx(tx *gorm.DB, id uuid.UUID, delta int) error
	UpdatePrecioCostoTx(tx *gorm.DB, id uuid.UUID, nuevoCosto interface{}) error
	UpdateCostoReferencialTx(tx *gorm.DB, id uuid.UUID, nuevoCosto interface{}) error

	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Presentaciones").First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo_barras = ? AND activo = true", barcode).First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductosFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("activo = true")

	if filter.Q != "" {
		q = q.Where("nombre ILIKE ? OR codigo_barras = ?", "%"+filter.Q+"%", filter.Q)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Presentaciones", "activo = true").
		Order("nombre ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", true).Error
}

func (r *productoRepo) ListCandidatos(ctx context.Context, filter dto.CandidatosFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("activo = true")

	if filter.Q != "" {
		q = q.Where("nombre ILIKE ? OR codigo_barras = ?", "%"+filter.Q+"%", filter.Q)
	} else {
		q = q.Where("stock_actual < stock_minimo")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderCol := "nombre"
	switch filter.SortBy {
	case "stock_actual":
		orderCol = "stock_actual"
	case "faltante":
		orderCol = "(stock_minimo - stock_actual)"
	}
	dir := "ASC"
	if filter.SortDir == "desc" {
		dir = "DESC"
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Presentaciones", "activo = true").
		Order(orderCol + " " + dir).
		Offset(offset).Limit(filter.Limit).
		Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) CreatePresentacion(ctx context.Context, p *model.Presentacion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindPresentacionByID(ctx context.Context, id uuid.UUID) (*model.Presentacion, error) {
	var p model.Presentacion
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) UpdatePresentacion(ctx context.Context, p *model.Presentacion) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDeletePresentacion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Presentacion{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) ReactivarPresentacion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Presentacion{}).Where("id = ?", id).Update("activo", true).Error
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta)).Error
}

func (r *productoRepo) UpdateStockPresentacionTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Presentacion{}).Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta)).Error
}

func (r *productoRepo) UpdatePrecioCostoTx(tx *gorm.DB, id uuid.UUID, nuevoCosto interface{}) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("precio_costo", nuevoCosto).Error
}

func (r *productoRepo) UpdateCostoReferencialTx(tx *gorm.DB, id uuid.UUID, nuevoCosto interface{}) error {
	return tx.Model(&model.Presentacion{}).Where("id = ?", id).
		Update("costo_referencial", nuevoCosto).Error
}
