package repository

import (
	"context"
	"errors"

	"gestcom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompraRepository defines the data access contract for purchases.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via mocks.
type CompraRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Compra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	NextNumero(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, proveedorID, estado string, page, limit int) ([]model.Compra, int64, error)

	// Used inside transactions — callers must pass the tx instance
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	AcumularRecibidoTx(tx *gorm.DB, d *model.CompraDetalle, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Compra) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).
		Preload("Detalles").
		Preload("Proveedor").
		Preload("Credito.Cuotas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		First(&c, id).Error
	return &c, err
}

func (r *compraRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int64, error) {
	// Uses a PostgreSQL sequence for atomic purchase number generation
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('compras_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *compraRepo) List(ctx context.Context, proveedorID, estado string, page, limit int) ([]model.Compra, int64, error) {
	var compras []model.Compra
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Compra{})

	if proveedorID != "" {
		q = q.Where("proveedor_id = ?", proveedorID)
	}
	if estado != "" && estado != "all" {
		q = q.Where("estado = ?", estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Detalles").Preload("Proveedor").
		Order("fecha DESC").
		Offset(offset).Limit(limit).
		Find(&compras).Error

	return compras, total, err
}

func (r *compraRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Compra{}).Where("id = ?", id).Update("estado", estado).Error
}

// AcumularRecibidoTx suma unidades recibidas como delta sobre la fila
// vigente, con el tope de lo ordenado en la misma sentencia: si otro
// proceso ya completó la línea no afecta filas y la transacción aborta.
func (r *compraRepo) AcumularRecibidoTx(tx *gorm.DB, d *model.CompraDetalle, delta int) error {
	res := tx.Model(&model.CompraDetalle{}).
		Where("id = ? AND cantidad_recibida + ? <= cantidad", d.ID, delta).
		Updates(map[string]interface{}{
			"cantidad_recibida": gorm.Expr("cantidad_recibida + ?", delta),
			"estado": gorm.Expr(
				"CASE WHEN cantidad_recibida + ? >= cantidad THEN ? ELSE ? END",
				delta, model.DetalleRecibido, model.DetalleParcial,
			),
			"fecha_vencimiento": d.FechaVencimiento,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("la cantidad recibida supera lo ordenado")
	}
	return nil
}
