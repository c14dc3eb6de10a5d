package handler

import (
	"net/http"
	"strconv"

	"gestcom/internal/apierror"
	"gestcom/internal/dto"
	"gestcom/internal/service"

	"github.com/gin-gonic/gin"
)

type RequisicionesHandler struct{ svc service.RequisicionService }

func NewRequisicionesHandler(svc service.RequisicionService) *RequisicionesHandler {
	return &RequisicionesHandler{svc: svc}
}

// Candidatos godoc
// @Summary      Candidatos a reposición
// @Description  Productos activos bajo stock mínimo o filtrados por búsqueda, con el costo unitario resuelto por presentación.
// @Tags         requisiciones
// @Produce      json
// @Security     BearerAuth
// @Param        q        query string false "Búsqueda por nombre"
// @Param        sortBy   query string false "nombre | stock_actual | faltante"
// @Param        sortDir  query string false "asc | desc"
// @Param        page     query int    false "Página (default 1)"
// @Param        limit    query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.CandidatosResponse
// @Router       /v1/requisiciones/candidatos [get]
func (h *RequisicionesHandler) Candidatos(c *gin.Context) {
	var filter dto.CandidatosFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarCandidatos(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar candidatos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary      Crear requisición
// @Description  Registra una requisición de compra con líneas por producto o por presentación, y opcionalmente actualiza los costos de referencia.
// @Tags         requisiciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearRequisicionRequest true "Requisición"
// @Success      201 {object} dto.RequisicionResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/requisiciones [post]
func (h *RequisicionesHandler) Crear(c *gin.Context) {
	var req dto.CrearRequisicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearRequisicion(c.Request.Context(), usuarioFromClaims(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary      Detalle de requisición
// @Tags         requisiciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la requisición"
// @Success      200 {object} dto.RequisicionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/requisiciones/{id} [get]
func (h *RequisicionesHandler) Obtener(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerRequisicion(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Requisición no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar requisiciones
// @Tags         requisiciones
// @Produce      json
// @Security     BearerAuth
// @Param        sucursal_id query string false "Filtrar por sucursal"
// @Param        page        query int    false "Página (default 1)"
// @Param        limit       query int    false "Registros por página (default 50)"
// @Success      200 {object} map[string]interface{}
// @Router       /v1/requisiciones [get]
func (h *RequisicionesHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	requisiciones, total, err := h.svc.ListarRequisiciones(c.Request.Context(),
		c.Query("sucursal_id"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar requisiciones"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requisiciones": requisiciones,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}
