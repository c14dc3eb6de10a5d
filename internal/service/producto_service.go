package service

import (
	"context"
	"errors"

	"gestcom/internal/dto"
	"gestcom/internal/model"
	"gestcom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductosFilter) (*dto.ProductosResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	CrearPresentacion(ctx context.Context, productoID uuid.UUID, req dto.CrearPresentacionRequest) (*dto.PresentacionResponse, error)
	ActualizarPresentacion(ctx context.Context, id uuid.UUID, req dto.ActualizarPresentacionRequest) (*dto.PresentacionResponse, error)
	DesactivarPresentacion(ctx context.Context, id uuid.UUID) error
	ReactivarPresentacion(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	precioCosto, err := ParseMonto(req.PrecioCosto)
	if err != nil {
		return nil, err
	}
	precioVenta, err := ParseMonto(req.PrecioVenta)
	if err != nil {
		return nil, err
	}

	var proveedorID *uuid.UUID
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, errors.New("proveedor_id inválido")
		}
		proveedorID = &pid
	}

	p := &model.Producto{
		CodigoBarras: req.CodigoBarras,
		Nombre:       req.Nombre,
		Categoria:    req.Categoria,
		PrecioCosto:  precioCosto,
		PrecioVenta:  precioVenta,
		StockMinimo:  req.StockMinimo,
		UnidadMedida: req.UnidadMedida,
		ProveedorID:  proveedorID,
		Activo:       true,
	}
	if p.UnidadMedida == "" {
		p.UnidadMedida = "unidad"
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductosFilter) (*dto.ProductosResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		resp = append(resp, *productoToResponse(&productos[i]))
	}
	return &dto.ProductosResponse{
		Productos: resp,
		Total:     total,
		Page:      filter.Page,
		Limit:     filter.Limit,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.PrecioCosto != nil {
		costo, err := ParseMonto(*req.PrecioCosto)
		if err != nil {
			return nil, err
		}
		p.PrecioCosto = costo
	}
	if req.PrecioVenta != nil {
		venta, err := ParseMonto(*req.PrecioVenta)
		if err != nil {
			return nil, err
		}
		p.PrecioVenta = venta
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.UnidadMedida != nil {
		p.UnidadMedida = *req.UnidadMedida
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, errors.New("proveedor_id inválido")
		}
		p.ProveedorID = &pid
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

// ── Presentaciones ────────────────────────────────────────────────────────────

func (s *productoService) CrearPresentacion(ctx context.Context, productoID uuid.UUID, req dto.CrearPresentacionRequest) (*dto.PresentacionResponse, error) {
	if _, err := s.repo.FindByID(ctx, productoID); err != nil {
		return nil, errors.New("producto no encontrado")
	}
	factor, err := decimal.NewFromString(req.FactorConversion)
	if err != nil || !factor.IsPositive() {
		return nil, errors.New("factor_conversion debe ser un decimal positivo")
	}

	pres := &model.Presentacion{
		ProductoID:       productoID,
		Nombre:           req.Nombre,
		CodigoBarras:     req.CodigoBarras,
		FactorConversion: factor,
		StockMinimo:      req.StockMinimo,
		Activo:           true,
	}
	if req.CostoReferencial != nil {
		costo, err := ParseMonto(*req.CostoReferencial)
		if err != nil {
			return nil, err
		}
		pres.CostoReferencial = &costo
	}
	if req.PrecioVenta != nil {
		venta, err := ParseMonto(*req.PrecioVenta)
		if err != nil {
			return nil, err
		}
		pres.PrecioVenta = &venta
	}
	if err := s.repo.CreatePresentacion(ctx, pres); err != nil {
		return nil, err
	}
	return presentacionToResponse(pres), nil
}

func (s *productoService) ActualizarPresentacion(ctx context.Context, id uuid.UUID, req dto.ActualizarPresentacionRequest) (*dto.PresentacionResponse, error) {
	pres, err := s.repo.FindPresentacionByID(ctx, id)
	if err != nil {
		return nil, errors.New("presentación no encontrada")
	}
	if req.Nombre != nil {
		pres.Nombre = *req.Nombre
	}
	if req.CodigoBarras != nil {
		pres.CodigoBarras = req.CodigoBarras
	}
	if req.FactorConversion != nil {
		factor, err := decimal.NewFromString(*req.FactorConversion)
		if err != nil || !factor.IsPositive() {
			return nil, errors.New("factor_conversion debe ser un decimal positivo")
		}
		pres.FactorConversion = factor
	}
	if req.CostoReferencial != nil {
		costo, err := ParseMonto(*req.CostoReferencial)
		if err != nil {
			return nil, err
		}
		pres.CostoReferencial = &costo
	}
	if req.PrecioVenta != nil {
		venta, err := ParseMonto(*req.PrecioVenta)
		if err != nil {
			return nil, err
		}
		pres.PrecioVenta = &venta
	}
	if req.StockMinimo != nil {
		pres.StockMinimo = *req.StockMinimo
	}
	if err := s.repo.UpdatePresentacion(ctx, pres); err != nil {
		return nil, err
	}
	return presentacionToResponse(pres), nil
}

func (s *productoService) DesactivarPresentacion(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDeletePresentacion(ctx, id)
}

func (s *productoService) ReactivarPresentacion(ctx context.Context, id uuid.UUID) error {
	return s.repo.ReactivarPresentacion(ctx, id)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func presentacionToResponse(p *model.Presentacion) *dto.PresentacionResponse {
	var costo, venta *string
	if p.CostoReferencial != nil {
		s := FormatearMonto(*p.CostoReferencial)
		costo = &s
	}
	if p.PrecioVenta != nil {
		s := FormatearMonto(*p.PrecioVenta)
		venta = &s
	}
	return &dto.PresentacionResponse{
		ID:               p.ID.String(),
		ProductoID:       p.ProductoID.String(),
		Nombre:           p.Nombre,
		CodigoBarras:     p.CodigoBarras,
		FactorConversion: p.FactorConversion.String(),
		CostoReferencial: costo,
		PrecioVenta:      venta,
		StockActual:      p.StockActual,
		StockMinimo:      p.StockMinimo,
		Activo:           p.Activo,
	}
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	presentaciones := make([]dto.PresentacionResponse, 0, len(p.Presentaciones))
	for i := range p.Presentaciones {
		presentaciones = append(presentaciones, *presentacionToResponse(&p.Presentaciones[i]))
	}
	var proveedorID *string
	if p.ProveedorID != nil {
		s := p.ProveedorID.String()
		proveedorID = &s
	}
	return &dto.ProductoResponse{
		ID:             p.ID.String(),
		CodigoBarras:   p.CodigoBarras,
		Nombre:         p.Nombre,
		Categoria:      p.Categoria,
		PrecioCosto:    FormatearMonto(p.PrecioCosto),
		PrecioVenta:    FormatearMonto(p.PrecioVenta),
		StockActual:    p.StockActual,
		StockMinimo:    p.StockMinimo,
		UnidadMedida:   p.UnidadMedida,
		ProveedorID:    proveedorID,
		Activo:         p.Activo,
		Presentaciones: presentaciones,
	}
}
