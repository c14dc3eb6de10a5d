package handler

import (
	"net/http"

	"gestcom/internal/apierror"
	"gestcom/internal/service"

	"github.com/gin-gonic/gin"
)

type SucursalesHandler struct{ svc service.SucursalService }

func NewSucursalesHandler(svc service.SucursalService) *SucursalesHandler {
	return &SucursalesHandler{svc: svc}
}

func (h *SucursalesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarSucursales(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar sucursales"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SucursalesHandler) Cajas(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarCajas(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SucursalesHandler) CuentasBancarias(c *gin.Context) {
	resp, err := h.svc.ListarCuentasBancarias(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar cuentas bancarias"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
