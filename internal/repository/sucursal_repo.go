package repository

import (
	"context"

	"gestcom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SucursalRepository resuelve los catálogos de sucursales y sus canales de
// pago (cajas y cuentas bancarias).
type SucursalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
	List(ctx context.Context) ([]model.Sucursal, error)
	FindCajaByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	ListCajas(ctx context.Context, sucursalID uuid.UUID) ([]model.Caja, error)
	FindCuentaBancariaByID(ctx context.Context, id uuid.UUID) (*model.CuentaBancaria, error)
	ListCuentasBancarias(ctx context.Context) ([]model.CuentaBancaria, error)
}

type sucursalRepo struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository { return &sucursalRepo{db: db} }

func (r *sucursalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *sucursalRepo) List(ctx context.Context) ([]model.Sucursal, error) {
	var sucursales []model.Sucursal
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&sucursales).Error
	return sucursales, err
}

func (r *sucursalRepo) FindCajaByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *sucursalRepo) ListCajas(ctx context.Context, sucursalID uuid.UUID) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND activo = true", sucursalID).
		Order("nombre ASC").
		Find(&cajas).Error
	return cajas, err
}

func (r *sucursalRepo) FindCuentaBancariaByID(ctx context.Context, id uuid.UUID) (*model.CuentaBancaria, error) {
	var c model.CuentaBancaria
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *sucursalRepo) ListCuentasBancarias(ctx context.Context) ([]model.CuentaBancaria, error) {
	var cuentas []model.CuentaBancaria
	err := r.db.WithContext(ctx).Where("activo = true").Order("banco ASC").Find(&cuentas).Error
	return cuentas, err
}
