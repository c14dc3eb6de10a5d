package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestcom/internal/dto"
	"gestcom/internal/model"
	"gestcom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RequisicionService interface {
	ListarCandidatos(ctx context.Context, filter dto.CandidatosFilter) (*dto.CandidatosResponse, error)
	CrearRequisicion(ctx context.Context, usuarioID uuid.UUID, req dto.CrearRequisicionRequest) (*dto.RequisicionResponse, error)
	ObtenerRequisicion(ctx context.Context, id uuid.UUID) (*dto.RequisicionResponse, error)
	ListarRequisiciones(ctx context.Context, sucursalID string, page, limit int) ([]dto.RequisicionResponse, int64, error)
}

type requisicionService struct {
	repo         repository.RequisicionRepository
	productoRepo repository.ProductoRepository
}

func NewRequisicionService(
	repo repository.RequisicionRepository,
	productoRepo repository.ProductoRepository,
) RequisicionService {
	return &requisicionService{repo: repo, productoRepo: productoRepo}
}

// CostoUnitarioPresentacion resuelve el costo por presentación con la
// cadena de fallback: costo referencial propio, sino costo del producto
// base por el factor de conversión (redondeado a 2), sino "0".
func CostoUnitarioPresentacion(pres *model.Presentacion, producto *model.Producto) string {
	if pres.CostoReferencial != nil {
		return FormatearMonto(*pres.CostoReferencial)
	}
	if producto != nil {
		return FormatearMonto(Round2(producto.PrecioCosto.Mul(pres.FactorConversion)))
	}
	return "0"
}

// ── ListarCandidatos ──────────────────────────────────────────────────────────
// Productos activos con stock bajo el mínimo (o que matchean la búsqueda),
// cada uno con sus presentaciones activas y el costo unitario ya resuelto.

func (s *requisicionService) ListarCandidatos(ctx context.Context, filter dto.CandidatosFilter) (*dto.CandidatosResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	productos, total, err := s.productoRepo.ListCandidatos(ctx, filter)
	if err != nil {
		return nil, err
	}

	candidatos := make([]dto.CandidatoResponse, 0, len(productos))
	for i := range productos {
		p := &productos[i]
		presentaciones := make([]dto.PresentacionCandidatoResponse, 0, len(p.Presentaciones))
		for j := range p.Presentaciones {
			pr := &p.Presentaciones[j]
			presentaciones = append(presentaciones, dto.PresentacionCandidatoResponse{
				ID:               pr.ID.String(),
				Nombre:           pr.Nombre,
				FactorConversion: pr.FactorConversion.String(),
				CostoUnitario:    CostoUnitarioPresentacion(pr, p),
				StockActual:      pr.StockActual,
				StockMinimo:      pr.StockMinimo,
				Faltante:         pr.Faltante(),
			})
		}
		candidatos = append(candidatos, dto.CandidatoResponse{
			ProductoID:     p.ID.String(),
			CodigoBarras:   p.CodigoBarras,
			Nombre:         p.Nombre,
			PrecioCosto:    FormatearMonto(p.PrecioCosto),
			StockActual:    p.StockActual,
			StockMinimo:    p.StockMinimo,
			Faltante:       p.Faltante(),
			Presentaciones: presentaciones,
		})
	}

	return &dto.CandidatosResponse{
		Candidatos: candidatos,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ── CrearRequisicion ──────────────────────────────────────────────────────────
// Cada línea referencia un producto o una presentación, nunca ambos ni
// ninguno. Las líneas con actualizar_costo propagan su costo unitario al
// maestro correspondiente dentro de la misma transacción.

func (s *requisicionService) CrearRequisicion(ctx context.Context, usuarioID uuid.UUID, req dto.CrearRequisicionRequest) (*dto.RequisicionResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, errors.New("sucursal_id inválido")
	}

	lineas := make([]model.RequisicionLinea, 0, len(req.Lineas))
	type actualizacionCosto struct {
		tipo  string
		refID uuid.UUID
		costo decimal.Decimal
	}
	var actualizaciones []actualizacionCosto

	for i, l := range req.Lineas {
		tieneProducto := l.ProductoID != nil && *l.ProductoID != ""
		tienePresentacion := l.PresentacionID != nil && *l.PresentacionID != ""
		if tieneProducto == tienePresentacion {
			return nil, errors.New("cada línea debe referenciar exactamente uno: producto_id o presentacion_id")
		}

		linea := model.RequisicionLinea{CantidadSugerida: l.CantidadSugerida}

		if tieneProducto {
			pid, err := uuid.Parse(*l.ProductoID)
			if err != nil {
				return nil, errors.New("producto_id inválido en la línea")
			}
			if _, err := s.productoRepo.FindByID(ctx, pid); err != nil {
				return nil, errors.New("producto no encontrado: " + *l.ProductoID)
			}
			linea.ProductoID = &pid
		} else {
			prid, err := uuid.Parse(*l.PresentacionID)
			if err != nil {
				return nil, errors.New("presentacion_id inválido en la línea")
			}
			if _, err := s.productoRepo.FindPresentacionByID(ctx, prid); err != nil {
				return nil, errors.New("presentación no encontrada: " + *l.PresentacionID)
			}
			linea.PresentacionID = &prid
		}

		if l.FechaExpiracion != nil {
			exp, err := FechaDesdeYMD(*l.FechaExpiracion)
			if err != nil {
				return nil, err
			}
			linea.FechaExpiracion = exp
		}

		if l.PrecioCostoUnitario != nil && *l.PrecioCostoUnitario != "" {
			costo, err := ParseMonto(*l.PrecioCostoUnitario)
			if err != nil {
				return nil, err
			}
			if costo.IsNegative() {
				return nil, errors.New("el costo unitario no puede ser negativo")
			}
			linea.PrecioCostoUnitario = &costo
			linea.ActualizarCosto = l.ActualizarCosto
			if l.ActualizarCosto {
				a := actualizacionCosto{costo: costo}
				if linea.ProductoID != nil {
					a.tipo = model.RefProducto
					a.refID = *linea.ProductoID
				} else {
					a.tipo = model.RefPresentacion
					a.refID = *linea.PresentacionID
				}
				actualizaciones = append(actualizaciones, a)
			}
		} else if l.ActualizarCosto {
			return nil, fmt.Errorf("actualizar_costo requiere precio_costo_unitario en la línea %d", i+1)
		}

		lineas = append(lineas, linea)
	}

	requisicion := &model.Requisicion{
		SucursalID:    sucursalID,
		UsuarioID:     usuarioID,
		Estado:        model.RequisicionPendiente,
		Observaciones: nilSiVacio(req.Observaciones),
		Lineas:        lineas,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, requisicion); err != nil {
			return err
		}
		for _, a := range actualizaciones {
			if a.tipo == model.RefProducto {
				if err := s.productoRepo.UpdatePrecioCostoTx(tx, a.refID, a.costo); err != nil {
					return err
				}
			} else {
				if err := s.productoRepo.UpdateCostoReferencialTx(tx, a.refID, a.costo); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return requisicionToResponse(requisicion), nil
}

func (s *requisicionService) ObtenerRequisicion(ctx context.Context, id uuid.UUID) (*dto.RequisicionResponse, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("requisición no encontrada")
	}
	return requisicionToResponse(req), nil
}

func (s *requisicionService) ListarRequisiciones(ctx context.Context, sucursalID string, page, limit int) ([]dto.RequisicionResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	reqs, total, err := s.repo.List(ctx, sucursalID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.RequisicionResponse, 0, len(reqs))
	for i := range reqs {
		resp = append(resp, *requisicionToResponse(&reqs[i]))
	}
	return resp, total, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func requisicionToResponse(r *model.Requisicion) *dto.RequisicionResponse {
	lineas := make([]dto.RequisicionLineaResponse, 0, len(r.Lineas))
	for i := range r.Lineas {
		l := &r.Lineas[i]
		var productoID, presentacionID, costo *string
		if l.ProductoID != nil {
			s := l.ProductoID.String()
			productoID = &s
		}
		if l.PresentacionID != nil {
			s := l.PresentacionID.String()
			presentacionID = &s
		}
		if l.PrecioCostoUnitario != nil {
			s := FormatearMonto(*l.PrecioCostoUnitario)
			costo = &s
		}
		lineas = append(lineas, dto.RequisicionLineaResponse{
			ID:                  l.ID.String(),
			ProductoID:          productoID,
			PresentacionID:      presentacionID,
			CantidadSugerida:    l.CantidadSugerida,
			FechaExpiracion:     fechaOpcionalString(l.FechaExpiracion),
			PrecioCostoUnitario: costo,
			ActualizarCosto:     l.ActualizarCosto,
		})
	}
	obs := ""
	if r.Observaciones != nil {
		obs = *r.Observaciones
	}
	return &dto.RequisicionResponse{
		ID:            r.ID.String(),
		SucursalID:    r.SucursalID.String(),
		UsuarioID:     r.UsuarioID.String(),
		Estado:        r.Estado,
		Observaciones: obs,
		Lineas:        lineas,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

func nilSiVacio(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
