package service

import (
	"context"
	"errors"
	"time"

	"gestcom/internal/dto"
	"gestcom/internal/model"
	"gestcom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories. DB() devuelve nil para que runTx corra en modo
// unit test (sin transacción real).

type stubCompraRepo struct {
	compras map[uuid.UUID]*model.Compra
	seq     int64
}

func newStubCompraRepo() *stubCompraRepo {
	return &stubCompraRepo{compras: make(map[uuid.UUID]*model.Compra)}
}

func (r *stubCompraRepo) Create(_ context.Context, _ *gorm.DB, c *model.Compra) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now().UTC()
	for i := range c.Detalles {
		if c.Detalles[i].ID == uuid.Nil {
			c.Detalles[i].ID = uuid.New()
		}
		c.Detalles[i].CompraID = c.ID
	}
	if c.Credito != nil {
		if c.Credito.ID == uuid.Nil {
			c.Credito.ID = uuid.New()
		}
		c.Credito.CompraID = c.ID
		for i := range c.Credito.Cuotas {
			if c.Credito.Cuotas[i].ID == uuid.Nil {
				c.Credito.Cuotas[i].ID = uuid.New()
			}
			c.Credito.Cuotas[i].CreditoID = c.Credito.ID
		}
	}
	r.compras[c.ID] = c
	return nil
}

func (r *stubCompraRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Compra, error) {
	c, ok := r.compras[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubCompraRepo) NextNumero(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubCompraRepo) List(_ context.Context, _, _ string, _, _ int) ([]model.Compra, int64, error) {
	out := make([]model.Compra, 0, len(r.compras))
	for _, c := range r.compras {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCompraRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	c, ok := r.compras[id]
	if !ok {
		return errors.New("not found")
	}
	c.Estado = estado
	return nil
}

// AcumularRecibidoTx copia el detalle ya actualizado en memoria por el
// servicio y emula el guard del UPDATE real: nunca por encima de lo ordenado.
func (r *stubCompraRepo) AcumularRecibidoTx(_ *gorm.DB, d *model.CompraDetalle, _ int) error {
	if d.CantidadRecibida > d.Cantidad {
		return errors.New("la cantidad recibida supera lo ordenado")
	}
	for _, c := range r.compras {
		for i := range c.Detalles {
			if c.Detalles[i].ID == d.ID {
				c.Detalles[i] = *d
				return nil
			}
		}
	}
	return errors.New("detalle not found")
}

func (r *stubCompraRepo) DB() *gorm.DB { return nil }

var _ repository.CompraRepository = (*stubCompraRepo)(nil)

type stubCreditoRepo struct {
	compraRepo *stubCompraRepo
	pagos      []*model.PagoCuota
}

func newStubCreditoRepo(compraRepo *stubCompraRepo) *stubCreditoRepo {
	return &stubCreditoRepo{compraRepo: compraRepo}
}

func (r *stubCreditoRepo) buscarCredito(id uuid.UUID) *model.CreditoCompra {
	for _, c := range r.compraRepo.compras {
		if c.Credito != nil && c.Credito.ID == id {
			return c.Credito
		}
	}
	return nil
}

func (r *stubCreditoRepo) FindByCompraID(_ context.Context, compraID uuid.UUID) (*model.CreditoCompra, error) {
	c, ok := r.compraRepo.compras[compraID]
	if !ok || c.Credito == nil {
		return nil, errors.New("not found")
	}
	return c.Credito, nil
}

func (r *stubCreditoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CreditoCompra, error) {
	if cr := r.buscarCredito(id); cr != nil {
		return cr, nil
	}
	return nil, errors.New("not found")
}

func (r *stubCreditoRepo) FindCuotaByID(_ context.Context, id uuid.UUID) (*model.Cuota, error) {
	for _, c := range r.compraRepo.compras {
		if c.Credito == nil {
			continue
		}
		for i := range c.Credito.Cuotas {
			if c.Credito.Cuotas[i].ID == id {
				return &c.Credito.Cuotas[i], nil
			}
		}
	}
	return nil, errors.New("not found")
}

func (r *stubCreditoRepo) FindPagoByID(_ context.Context, id uuid.UUID) (*model.PagoCuota, error) {
	for _, p := range r.pagos {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

// ListPagosByCuota devuelve los pagos del más reciente al más antiguo,
// como la implementación real (created_at DESC).
func (r *stubCreditoRepo) ListPagosByCuota(_ context.Context, cuotaID uuid.UUID) ([]model.PagoCuota, error) {
	var out []model.PagoCuota
	for i := len(r.pagos) - 1; i >= 0; i-- {
		if r.pagos[i].CuotaID == cuotaID {
			out = append(out, *r.pagos[i])
		}
	}
	return out, nil
}

func (r *stubCreditoRepo) CreatePagoTx(_ *gorm.DB, p *model.PagoCuota) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	r.pagos = append(r.pagos, p)
	return nil
}

// Los Lock* devuelven el puntero vivo: en modo unit no hay otra transacción,
// así que la relectura ve el mismo objeto que el snapshot.
func (r *stubCreditoRepo) LockCreditoTx(_ *gorm.DB, id uuid.UUID) (*model.CreditoCompra, error) {
	if cr := r.buscarCredito(id); cr != nil {
		return cr, nil
	}
	return nil, errors.New("not found")
}

func (r *stubCreditoRepo) LockCuotaTx(_ *gorm.DB, id uuid.UUID) (*model.Cuota, error) {
	for _, c := range r.compraRepo.compras {
		if c.Credito == nil {
			continue
		}
		for i := range c.Credito.Cuotas {
			if c.Credito.Cuotas[i].ID == id {
				return &c.Credito.Cuotas[i], nil
			}
		}
	}
	return nil, errors.New("not found")
}

func (r *stubCreditoRepo) UpdatePagoRefsTx(_ *gorm.DB, _ *model.PagoCuota) error { return nil }
func (r *stubCreditoRepo) UpdateCuotaTx(_ *gorm.DB, _ *model.Cuota) error        { return nil }
func (r *stubCreditoRepo) UpdateCreditoTx(_ *gorm.DB, _ *model.CreditoCompra) error {
	return nil
}

func (r *stubCreditoRepo) AnularCreditoTx(_ *gorm.DB, creditoID uuid.UUID) error {
	if cr := r.buscarCredito(creditoID); cr != nil {
		cr.Estado = model.CreditoAnulado
		return nil
	}
	return errors.New("not found")
}

func (r *stubCreditoRepo) AnularPagoTx(_ *gorm.DB, p *model.PagoCuota) error {
	for _, stored := range r.pagos {
		if stored.ID == p.ID {
			if stored.Anulado {
				return errors.New("el pago ya fue anulado")
			}
			stored.Anulado = true
			stored.AnuladoAt = p.AnuladoAt
			stored.AnuladoPorID = p.AnuladoPorID
			return nil
		}
	}
	return errors.New("not found")
}

func (r *stubCreditoRepo) DB() *gorm.DB { return nil }

var _ repository.CreditoRepository = (*stubCreditoRepo)(nil)

type stubProductoRepo struct {
	productos      map[uuid.UUID]*model.Producto
	presentaciones map[uuid.UUID]*model.Presentacion
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos:      make(map[uuid.UUID]*model.Producto),
		presentaciones: make(map[uuid.UUID]*model.Presentacion),
	}
}

func (r *stubProductoRepo) agregar(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) agregarPresentacion(p *model.Presentacion) *model.Presentacion {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.presentaciones[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.agregar(p)
	return nil
}

// FindByID devuelve una copia, como haría una lectura real de la base:
// el snapshot no refleja updates posteriores sobre el registro.
func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras == barcode {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductosFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *stubProductoRepo) ListCandidatos(_ context.Context, _ dto.CandidatosFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.StockActual < p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) CreatePresentacion(_ context.Context, p *model.Presentacion) error {
	r.agregarPresentacion(p)
	return nil
}

func (r *stubProductoRepo) FindPresentacionByID(_ context.Context, id uuid.UUID) (*model.Presentacion, error) {
	p, ok := r.presentaciones[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) UpdatePresentacion(_ context.Context, p *model.Presentacion) error {
	r.presentaciones[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDeletePresentacion(_ context.Context, id uuid.UUID) error {
	if p, ok := r.presentaciones[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) ReactivarPresentacion(_ context.Context, id uuid.UUID) error {
	if p, ok := r.presentaciones[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.StockActual += delta
	return nil
}

func (r *stubProductoRepo) UpdateStockPresentacionTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.presentaciones[id]
	if !ok {
		return errors.New("not found")
	}
	p.StockActual += delta
	return nil
}

func (r *stubProductoRepo) UpdatePrecioCostoTx(_ *gorm.DB, id uuid.UUID, nuevoCosto interface{}) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.PrecioCosto = nuevoCosto.(decimal.Decimal)
	return nil
}

func (r *stubProductoRepo) UpdateCostoReferencialTx(_ *gorm.DB, id uuid.UUID, nuevoCosto interface{}) error {
	p, ok := r.presentaciones[id]
	if !ok {
		return errors.New("not found")
	}
	c := nuevoCosto.(decimal.Decimal)
	p.CostoReferencial = &c
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubRecepcionRepo struct {
	recepciones []*model.Recepcion
}

func (r *stubRecepcionRepo) CreateTx(_ *gorm.DB, rec *model.Recepcion) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	for i := range rec.Lineas {
		if rec.Lineas[i].ID == uuid.Nil {
			rec.Lineas[i].ID = uuid.New()
		}
		rec.Lineas[i].RecepcionID = rec.ID
	}
	r.recepciones = append(r.recepciones, rec)
	return nil
}

func (r *stubRecepcionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Recepcion, error) {
	for _, rec := range r.recepciones {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubRecepcionRepo) ListByCompra(_ context.Context, compraID uuid.UUID) ([]model.Recepcion, error) {
	var out []model.Recepcion
	for _, rec := range r.recepciones {
		if rec.CompraID == compraID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

var _ repository.RecepcionRepository = (*stubRecepcionRepo)(nil)

type stubMovStockRepo struct {
	movimientos []*model.MovimientoStock
}

func (r *stubMovStockRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, m)
	return nil
}

func (r *stubMovStockRepo) ListByProducto(_ context.Context, productoID uuid.UUID, _ int) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovStockRepo) ListByReferencia(_ context.Context, referenciaID uuid.UUID) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ReferenciaID != nil && *m.ReferenciaID == referenciaID {
			out = append(out, *m)
		}
	}
	return out, nil
}

var _ repository.MovimientoStockRepository = (*stubMovStockRepo)(nil)

type stubMovFinRepo struct {
	movimientos []*model.MovimientoFinanciero
}

func (r *stubMovFinRepo) CreateTx(_ *gorm.DB, m *model.MovimientoFinanciero) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()
	r.movimientos = append(r.movimientos, m)
	return nil
}

func (r *stubMovFinRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MovimientoFinanciero, error) {
	for _, m := range r.movimientos {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubMovFinRepo) ListByCompra(_ context.Context, compraID uuid.UUID) ([]model.MovimientoFinanciero, error) {
	var out []model.MovimientoFinanciero
	for _, m := range r.movimientos {
		if m.CompraID != nil && *m.CompraID == compraID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovFinRepo) MarcarProrrateoAplicado(_ context.Context, id uuid.UUID) error {
	for _, m := range r.movimientos {
		if m.ID == id {
			estado := model.ProrrateoAplicado
			m.EstadoProrrateo = &estado
			m.NextRetryAt = nil
			m.LastError = nil
			return nil
		}
	}
	return errors.New("not found")
}

func (r *stubMovFinRepo) MarcarProrrateoError(_ context.Context, id uuid.UUID, lastError string, retryCount int, nextRetry *time.Time) error {
	for _, m := range r.movimientos {
		if m.ID == id {
			estado := model.ProrrateoPendiente
			if nextRetry == nil {
				estado = model.ProrrateoError
			}
			m.EstadoProrrateo = &estado
			m.LastError = &lastError
			m.RetryCount = retryCount
			m.NextRetryAt = nextRetry
			return nil
		}
	}
	return errors.New("not found")
}

func (r *stubMovFinRepo) ListProrrateosPendientes(_ context.Context, ahora time.Time, limit int) ([]model.MovimientoFinanciero, error) {
	var out []model.MovimientoFinanciero
	for _, m := range r.movimientos {
		if len(out) >= limit {
			break
		}
		if m.EstadoProrrateo != nil && *m.EstadoProrrateo == model.ProrrateoPendiente &&
			m.NextRetryAt != nil && !m.NextRetryAt.After(ahora) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovFinRepo) DB() *gorm.DB { return nil }

var _ repository.MovimientoFinancieroRepository = (*stubMovFinRepo)(nil)

type stubRequisicionRepo struct {
	requisiciones map[uuid.UUID]*model.Requisicion
}

func newStubRequisicionRepo() *stubRequisicionRepo {
	return &stubRequisicionRepo{requisiciones: make(map[uuid.UUID]*model.Requisicion)}
}

func (r *stubRequisicionRepo) Create(_ context.Context, _ *gorm.DB, req *model.Requisicion) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now().UTC()
	for i := range req.Lineas {
		if req.Lineas[i].ID == uuid.Nil {
			req.Lineas[i].ID = uuid.New()
		}
		req.Lineas[i].RequisicionID = req.ID
	}
	r.requisiciones[req.ID] = req
	return nil
}

func (r *stubRequisicionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Requisicion, error) {
	req, ok := r.requisiciones[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return req, nil
}

func (r *stubRequisicionRepo) List(_ context.Context, _ string, _, _ int) ([]model.Requisicion, int64, error) {
	out := make([]model.Requisicion, 0, len(r.requisiciones))
	for _, req := range r.requisiciones {
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (r *stubRequisicionRepo) UpdateEstado(_ context.Context, id uuid.UUID, estado string) error {
	if req, ok := r.requisiciones[id]; ok {
		req.Estado = estado
	}
	return nil
}

func (r *stubRequisicionRepo) DB() *gorm.DB { return nil }

var _ repository.RequisicionRepository = (*stubRequisicionRepo)(nil)

type stubSucursalRepo struct {
	sucursales map[uuid.UUID]*model.Sucursal
	cajas      map[uuid.UUID]*model.Caja
	cuentas    map[uuid.UUID]*model.CuentaBancaria
}

func newStubSucursalRepo() *stubSucursalRepo {
	return &stubSucursalRepo{
		sucursales: make(map[uuid.UUID]*model.Sucursal),
		cajas:      make(map[uuid.UUID]*model.Caja),
		cuentas:    make(map[uuid.UUID]*model.CuentaBancaria),
	}
}

func (r *stubSucursalRepo) agregarSucursal(s *model.Sucursal) *model.Sucursal {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sucursales[s.ID] = s
	return s
}

func (r *stubSucursalRepo) agregarCaja(c *model.Caja) *model.Caja {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cajas[c.ID] = c
	return c
}

func (r *stubSucursalRepo) agregarCuenta(c *model.CuentaBancaria) *model.CuentaBancaria {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cuentas[c.ID] = c
	return c
}

func (r *stubSucursalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sucursal, error) {
	s, ok := r.sucursales[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *stubSucursalRepo) List(_ context.Context) ([]model.Sucursal, error) {
	out := make([]model.Sucursal, 0, len(r.sucursales))
	for _, s := range r.sucursales {
		if s.Activo {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSucursalRepo) FindCajaByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubSucursalRepo) ListCajas(_ context.Context, sucursalID uuid.UUID) ([]model.Caja, error) {
	var out []model.Caja
	for _, c := range r.cajas {
		if c.SucursalID == sucursalID && c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubSucursalRepo) FindCuentaBancariaByID(_ context.Context, id uuid.UUID) (*model.CuentaBancaria, error) {
	c, ok := r.cuentas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubSucursalRepo) ListCuentasBancarias(_ context.Context) ([]model.CuentaBancaria, error) {
	out := make([]model.CuentaBancaria, 0, len(r.cuentas))
	for _, c := range r.cuentas {
		out = append(out, *c)
	}
	return out, nil
}

var _ repository.SucursalRepository = (*stubSucursalRepo)(nil)
