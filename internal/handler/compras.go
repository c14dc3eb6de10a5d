package handler

import (
	"net/http"
	"strconv"

	"gestcom/internal/apierror"
	"gestcom/internal/dto"
	"gestcom/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct {
	svc       service.CompraService
	recepcion service.RecepcionService
	costos    service.CostoService
}

func NewComprasHandler(svc service.CompraService, recepcion service.RecepcionService, costos service.CostoService) *ComprasHandler {
	return &ComprasHandler{svc: svc, recepcion: recepcion, costos: costos}
}

// Crear godoc
// @Summary      Registrar una compra
// @Description  Crea una compra a proveedor con sus líneas y, si es a crédito, genera el plan de cuotas en la misma transacción.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCompraRequest true "Detalle de la compra"
// @Success      201  {object} dto.CompraResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/compras [post]
func (h *ComprasHandler) Crear(c *gin.Context) {
	var req dto.CrearCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sucursalID, ok := sucursalFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.CrearCompra(c.Request.Context(), sucursalID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary      Detalle de compra
// @Tags         compras
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la compra"
// @Success      200 {object} dto.CompraResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/compras/{id} [get]
func (h *ComprasHandler) Obtener(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerCompra(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Compra no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerParcial godoc
// @Summary      Vista de recepción parcial
// @Description  Proyección de la compra con cantidades pedidas, recibidas y pendientes por línea.
// @Tags         compras
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la compra"
// @Success      200 {object} dto.CompraParcialResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/compras/{id}/parcial [get]
func (h *ComprasHandler) ObtenerParcial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerParcial(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Compra no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar compras
// @Tags         compras
// @Produce      json
// @Security     BearerAuth
// @Param        proveedor_id query string false "Filtrar por proveedor"
// @Param        estado       query string false "PENDIENTE | PARCIAL | RECIBIDO | ANULADO"
// @Param        page         query int    false "Página (default 1)"
// @Param        limit        query int    false "Registros por página (default 50)"
// @Success      200 {object} map[string]interface{}
// @Router       /v1/compras [get]
func (h *ComprasHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	compras, total, err := h.svc.ListarCompras(c.Request.Context(),
		c.Query("proveedor_id"), c.Query("estado"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar compras"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"compras": compras,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// Anular godoc
// @Summary      Anular compra
// @Description  Solo compras sin recepciones ni pagos registrados pueden anularse.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la compra"
// @Param        body body dto.AnularCompraRequest true "Motivo de anulación"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/compras/{id} [delete]
func (h *ComprasHandler) Anular(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AnularCompra(c.Request.Context(), id, req.Motivo); err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Recepciones ──────────────────────────────────────────────────────────────

// Recepcionables godoc
// @Summary      Líneas recepcionables
// @Description  Líneas de la compra con cantidad pendiente mayor a cero.
// @Tags         recepciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la compra"
// @Success      200 {object} dto.RecepcionablesResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/compras/{id}/recepcionables [get]
func (h *ComprasHandler) Recepcionables(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.recepcion.ListarRecepcionables(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecepcionParcial godoc
// @Summary      Registrar recepción parcial
// @Description  Recibe cantidades por línea (recortadas al pendiente), actualiza stock y el estado de la compra.
// @Tags         recepciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la compra"
// @Param        body body dto.RecepcionParcialRequest true "Líneas a recibir"
// @Success      201 {object} dto.RecepcionResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/compras/{id}/recepciones-parciales [post]
func (h *ComprasHandler) RecepcionParcial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RecepcionParcialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sucursalID, ok := sucursalFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.recepcion.RegistrarParcial(c.Request.Context(), id, sucursalID, usuarioFromClaims(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecepcionTotal godoc
// @Summary      Recepción total con pago
// @Description  Recibe todo lo pendiente y registra el pago de contado por el canal elegido. Solo para compras que no son a crédito.
// @Tags         recepciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la compra"
// @Param        body body dto.RecepcionTotalRequest true "Canal de pago"
// @Success      201 {object} dto.RecepcionResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/compras/{id}/recepcionar [post]
func (h *ComprasHandler) RecepcionTotal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RecepcionTotalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sucursalID, ok := sucursalFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.recepcion.RecepcionTotal(c.Request.Context(), id, sucursalID, usuarioFromClaims(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Costos asociados ─────────────────────────────────────────────────────────

// RegistrarCosto godoc
// @Summary      Registrar costo asociado
// @Description  Registra un gasto vinculado a la compra (flete, aduana) y, si aplica, despacha el prorrateo asíncrono sobre los costos de los productos recibidos.
// @Tags         costos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la compra"
// @Param        body body dto.CostoAsociadoRequest true "Costo asociado"
// @Success      201 {object} dto.CostoAsociadoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/compras/{id}/costos-asociados [post]
func (h *ComprasHandler) RegistrarCosto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CostoAsociadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sucursalID, ok := sucursalFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.costos.RegistrarCostoAsociado(c.Request.Context(), id, sucursalID, usuarioFromClaims(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Movimientos godoc
// @Summary      Movimientos financieros de la compra
// @Tags         costos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la compra"
// @Success      200 {array} dto.MovimientoFinancieroResponse
// @Router       /v1/compras/{id}/movimientos [get]
func (h *ComprasHandler) Movimientos(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.costos.ListarMovimientos(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
