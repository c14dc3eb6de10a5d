package handler

import (
	"errors"
	"net/http"

	"gestcom/internal/apierror"
	"gestcom/internal/dto"
	"gestcom/internal/service"

	"github.com/gin-gonic/gin"
)

type CreditosHandler struct{ svc service.CreditoService }

func NewCreditosHandler(svc service.CreditoService) *CreditosHandler {
	return &CreditosHandler{svc: svc}
}

// Obtener godoc
// @Summary      Detalle del crédito de una compra
// @Description  Plan de cuotas con saldos, estado por vencimiento y pagos registrados por cuota.
// @Tags         creditos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la compra"
// @Success      200 {object} dto.CreditoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/compras/{id}/credito [get]
func (h *CreditosHandler) Obtener(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerCredito(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPago godoc
// @Summary      Registrar pago de cuota
// @Description  Aplica un pago sobre una cuota, registra el movimiento financiero por el canal elegido y opcionalmente empaqueta una recepción parcial en la misma transacción. El saldo esperado protege contra pagos concurrentes.
// @Tags         creditos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPagoConRecepcionRequest true "Pago con recepción opcional"
// @Success      201 {object} dto.RegistrarPagoResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError "El saldo de la cuota cambió desde que se consultó"
// @Router       /v1/pagos-creditos [post]
func (h *CreditosHandler) RegistrarPago(c *gin.Context) {
	var req dto.CrearPagoConRecepcionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.RegistrarPago(c.Request.Context(), usuarioFromClaims(c), req)
	if err != nil {
		if errors.Is(err, service.ErrSaldoDesactualizado) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ReversarPago godoc
// @Summary      Reversar último pago
// @Description  Anula el último pago vigente de la cuota y registra el movimiento financiero inverso. El stock recibido no se revierte.
// @Tags         creditos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ReversarPagoRequest true "Cuota a reversar"
// @Success      200 {object} dto.RegistrarPagoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/pagos-creditos/reversa [post]
func (h *CreditosHandler) ReversarPago(c *gin.Context) {
	var req dto.ReversarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.ReversarPago(c.Request.Context(), usuarioFromClaims(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
