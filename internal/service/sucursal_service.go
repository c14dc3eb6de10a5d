package service

import (
	"context"
	"errors"

	"gestcom/internal/dto"
	"gestcom/internal/model"
	"gestcom/internal/repository"

	"github.com/google/uuid"
)

// SucursalService expone los catálogos de destino de los asientos
// financieros: sucursales, cajas por sucursal y cuentas bancarias.
type SucursalService interface {
	ListarSucursales(ctx context.Context) ([]dto.SucursalResponse, error)
	ListarCajas(ctx context.Context, sucursalID uuid.UUID) ([]dto.CajaResponse, error)
	ListarCuentasBancarias(ctx context.Context) ([]dto.CuentaBancariaResponse, error)
}

type sucursalService struct {
	repo repository.SucursalRepository
}

func NewSucursalService(repo repository.SucursalRepository) SucursalService {
	return &sucursalService{repo: repo}
}

func (s *sucursalService) ListarSucursales(ctx context.Context) ([]dto.SucursalResponse, error) {
	sucursales, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SucursalResponse, 0, len(sucursales))
	for i := range sucursales {
		resp = append(resp, *sucursalToResponse(&sucursales[i]))
	}
	return resp, nil
}

func (s *sucursalService) ListarCajas(ctx context.Context, sucursalID uuid.UUID) ([]dto.CajaResponse, error) {
	if _, err := s.repo.FindByID(ctx, sucursalID); err != nil {
		return nil, errors.New("sucursal no encontrada")
	}
	cajas, err := s.repo.ListCajas(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CajaResponse, 0, len(cajas))
	for i := range cajas {
		c := &cajas[i]
		resp = append(resp, dto.CajaResponse{
			ID:         c.ID.String(),
			SucursalID: c.SucursalID.String(),
			Nombre:     c.Nombre,
			Activo:     c.Activo,
		})
	}
	return resp, nil
}

func (s *sucursalService) ListarCuentasBancarias(ctx context.Context) ([]dto.CuentaBancariaResponse, error) {
	cuentas, err := s.repo.ListCuentasBancarias(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CuentaBancariaResponse, 0, len(cuentas))
	for i := range cuentas {
		cta := &cuentas[i]
		resp = append(resp, dto.CuentaBancariaResponse{
			ID:           cta.ID.String(),
			Nombre:       cta.Nombre,
			Banco:        cta.Banco,
			NumeroCuenta: cta.NumeroCuenta,
			Activo:       cta.Activo,
		})
	}
	return resp, nil
}

func sucursalToResponse(s *model.Sucursal) *dto.SucursalResponse {
	return &dto.SucursalResponse{
		ID:        s.ID.String(),
		Nombre:    s.Nombre,
		Direccion: s.Direccion,
		Activo:    s.Activo,
	}
}
