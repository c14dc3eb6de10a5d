package service

import (
	"context"
	"errors"
	"time"

	"gestcom/internal/cache"
	"gestcom/internal/dto"
	"gestcom/internal/model"
	"gestcom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CompraService interface {
	CrearCompra(ctx context.Context, sucursalID uuid.UUID, req dto.CrearCompraRequest) (*dto.CompraResponse, error)
	ObtenerCompra(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
	ObtenerParcial(ctx context.Context, id uuid.UUID) (*dto.CompraParcialResponse, error)
	ListarCompras(ctx context.Context, proveedorID, estado string, page, limit int) ([]dto.CompraResponse, int64, error)
	AnularCompra(ctx context.Context, id uuid.UUID, motivo string) error
}

type compraService struct {
	repo         repository.CompraRepository
	creditoRepo  repository.CreditoRepository
	productoRepo repository.ProductoRepository
	vistas       *cache.Vistas
}

func NewCompraService(
	repo repository.CompraRepository,
	creditoRepo repository.CreditoRepository,
	productoRepo repository.ProductoRepository,
	vistas *cache.Vistas,
) CompraService {
	return &compraService{repo: repo, creditoRepo: creditoRepo, productoRepo: productoRepo, vistas: vistas}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CrearCompra ───────────────────────────────────────────────────────────────
// Registra la orden con sus líneas y, si es a crédito, genera el plan de
// cuotas en la misma transacción:
//   montoTotal = total * (1 + interesPct/100)  (interés simple)
//   cuota i    = montoTotal / n, redondeada; la última absorbe el resto
//   vence i    = fecha + i * diasEntreCuotas

func (s *compraService) CrearCompra(ctx context.Context, sucursalID uuid.UUID, req dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, errors.New("proveedor_id inválido")
	}

	fecha := time.Now().UTC()
	if req.Fecha != nil {
		f, err := FechaDesdeYMD(*req.Fecha)
		if err != nil {
			return nil, err
		}
		fecha = *f
	}

	// Resolve líneas fuera de la transacción
	subtotal := decimal.Zero
	detalles := make([]model.CompraDetalle, 0, len(req.Detalles))
	for _, d := range req.Detalles {
		refID, err := uuid.Parse(d.RefID)
		if err != nil {
			return nil, errors.New("ref_id inválido en detalle")
		}
		precio, err := ParseMonto(d.PrecioCosto)
		if err != nil {
			return nil, err
		}
		if precio.IsNegative() {
			return nil, errors.New("el precio de costo no puede ser negativo")
		}
		venc, err := fechaOpcional(d.FechaVencimiento)
		if err != nil {
			return nil, err
		}
		lineSubtotal := Round2(precio.Mul(decimal.NewFromInt(int64(d.Cantidad))))
		subtotal = subtotal.Add(lineSubtotal)
		detalles = append(detalles, model.CompraDetalle{
			Tipo:             d.Tipo,
			RefID:            refID,
			Cantidad:         d.Cantidad,
			PrecioCosto:      precio,
			Subtotal:         lineSubtotal,
			FechaVencimiento: venc,
			Estado:           model.DetallePendiente,
		})
	}
	total := subtotal

	var credito *model.CreditoCompra
	if req.EsCredito {
		if req.Condiciones == nil {
			return nil, errors.New("compra a crédito sin condiciones de pago")
		}
		credito, err = armarPlanCuotas(total, fecha, *req.Condiciones)
		if err != nil {
			return nil, err
		}
	}

	var compra model.Compra
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		compra = model.Compra{
			Numero:        numero,
			ProveedorID:   proveedorID,
			SucursalID:    sucursalID,
			Fecha:         fecha,
			Estado:        model.CompraEsperandoEntrega,
			EsCredito:     req.EsCredito,
			Subtotal:      subtotal,
			Total:         total,
			Observaciones: req.Observaciones,
			Detalles:      detalles,
			Credito:       credito,
		}
		return s.repo.Create(ctx, tx, &compra)
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.compraToResponse(ctx, &compra), nil
}

// armarPlanCuotas construye el crédito con su cronograma de cuotas.
func armarPlanCuotas(total decimal.Decimal, fecha time.Time, cond dto.CondicionesCreditoRequest) (*model.CreditoCompra, error) {
	interesPct := decimal.Zero
	if cond.TipoInteres == model.InteresSimple && cond.InteresPct != "" {
		var err error
		interesPct, err = ParseMonto(cond.InteresPct)
		if err != nil {
			return nil, err
		}
		if interesPct.IsNegative() {
			return nil, errors.New("el interés no puede ser negativo")
		}
	}

	montoTotal := Round2(total.Mul(decimal.NewFromInt(1).Add(interesPct.Div(decimal.NewFromInt(100)))))
	n := cond.CantidadCuotas
	base := Round2(montoTotal.Div(decimal.NewFromInt(int64(n))))

	cuotas := make([]model.Cuota, 0, n)
	acumulado := decimal.Zero
	for i := 1; i <= n; i++ {
		monto := base
		if i == n {
			// la última cuota absorbe el resto del redondeo
			monto = montoTotal.Sub(acumulado)
		}
		acumulado = acumulado.Add(monto)
		cuotas = append(cuotas, model.Cuota{
			Numero:           i,
			FechaVencimiento: fecha.AddDate(0, 0, i*cond.DiasEntreCuotas),
			Monto:            monto,
			Saldo:            monto,
			Estado:           model.CuotaPendiente,
		})
	}

	return &model.CreditoCompra{
		Estado:          model.CreditoPendiente,
		TipoInteres:     cond.TipoInteres,
		InteresPct:      interesPct,
		DiasEntreCuotas: cond.DiasEntreCuotas,
		CantidadCuotas:  n,
		MontoTotal:      montoTotal,
		TotalPagado:     decimal.Zero,
		Saldo:           montoTotal,
		Cuotas:          cuotas,
	}, nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *compraService) ObtenerCompra(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	var cached dto.CompraResponse
	if s.vistas.Get(ctx, cache.ClaveCompra(id), &cached) {
		return &cached, nil
	}

	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("compra no encontrada")
	}
	resp := s.compraToResponse(ctx, compra)
	s.vistas.Set(ctx, cache.ClaveCompra(id), resp)
	return resp, nil
}

func (s *compraService) ObtenerParcial(ctx context.Context, id uuid.UUID) (*dto.CompraParcialResponse, error) {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("compra no encontrada")
	}
	detalles := make([]dto.DetalleParcialResponse, 0, len(compra.Detalles))
	for i := range compra.Detalles {
		d := &compra.Detalles[i]
		detalles = append(detalles, dto.DetalleParcialResponse{
			ID:         d.ID.String(),
			Ordenadas:  d.Cantidad,
			Recibidas:  d.CantidadRecibida,
			Pendientes: d.Pendiente(),
			Estado:     d.EstadoCalculado(),
		})
	}
	return &dto.CompraParcialResponse{
		ID:              compra.ID.String(),
		Estado:          compra.Estado,
		EstadoCalculado: compra.EstadoCalculado(),
		Detalles:        detalles,
	}, nil
}

func (s *compraService) ListarCompras(ctx context.Context, proveedorID, estado string, page, limit int) ([]dto.CompraResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	compras, total, err := s.repo.List(ctx, proveedorID, estado, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.CompraResponse, 0, len(compras))
	for i := range compras {
		resp = append(resp, *s.compraToResponse(ctx, &compras[i]))
	}
	return resp, total, nil
}

// ── AnularCompra ──────────────────────────────────────────────────────────────
// Sólo se anula una compra sin mercadería recibida. La anulación marca
// compra y crédito como ANULADO; los pagos previos (si los hubo sobre el
// crédito) deben reversarse antes.

func (s *compraService) AnularCompra(ctx context.Context, id uuid.UUID, motivo string) error {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("compra no encontrada")
	}
	if compra.Estado == model.CompraAnulado {
		return errors.New("la compra ya está anulada")
	}
	for i := range compra.Detalles {
		if compra.Detalles[i].CantidadRecibida > 0 {
			return errors.New("no se puede anular una compra con mercadería recibida")
		}
	}
	if compra.Credito != nil && compra.Credito.TotalPagado.IsPositive() {
		return errors.New("no se puede anular una compra a crédito con pagos vigentes")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateEstadoTx(tx, id, model.CompraAnulado); err != nil {
			return err
		}
		if compra.Credito != nil {
			return s.creditoRepo.AnularCreditoTx(tx, compra.Credito.ID)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.vistas.InvalidarCompra(ctx, id)
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func fechaOpcional(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	return FechaDesdeYMD(*s)
}

func fechaOpcionalString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// nombreRef resuelve el nombre visible de una línea según su scope.
func (s *compraService) nombreRef(ctx context.Context, tipo string, refID uuid.UUID) string {
	switch tipo {
	case model.RefProducto:
		if p, err := s.productoRepo.FindByID(ctx, refID); err == nil {
			return p.Nombre
		}
	case model.RefPresentacion:
		if p, err := s.productoRepo.FindPresentacionByID(ctx, refID); err == nil {
			return p.Nombre
		}
	}
	return ""
}

func (s *compraService) compraToResponse(ctx context.Context, c *model.Compra) *dto.CompraResponse {
	detalles := make([]dto.DetalleCompraResponse, 0, len(c.Detalles))
	for i := range c.Detalles {
		d := &c.Detalles[i]
		detalles = append(detalles, dto.DetalleCompraResponse{
			ID:               d.ID.String(),
			Tipo:             d.Tipo,
			RefID:            d.RefID.String(),
			Nombre:           s.nombreRef(ctx, d.Tipo, d.RefID),
			Cantidad:         d.Cantidad,
			CantidadRecibida: d.CantidadRecibida,
			Pendiente:        d.Pendiente(),
			Estado:           d.EstadoCalculado(),
			PrecioCosto:      FormatearMonto(d.PrecioCosto),
			Subtotal:         FormatearMonto(d.Subtotal),
			FechaVencimiento: fechaOpcionalString(d.FechaVencimiento),
		})
	}
	proveedor := ""
	if c.Proveedor != nil {
		proveedor = c.Proveedor.RazonSocial
	}
	return &dto.CompraResponse{
		ID:        c.ID.String(),
		Numero:    c.Numero,
		Proveedor: proveedor,
		Sucursal:  c.SucursalID.String(),
		Fecha:     c.Fecha.Format(time.RFC3339),
		Estado:    c.EstadoCalculado(),
		EsCredito: c.EsCredito,
		Subtotal:  FormatearMonto(c.Subtotal),
		Total:     FormatearMonto(c.Total),
		Detalles:  detalles,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
