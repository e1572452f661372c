package handler

import (
	"errors"
	"net/http"

	"github.com/slamora/lupanes/internal/apierror"
	"github.com/slamora/lupanes/internal/dto"
	"github.com/slamora/lupanes/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PreciosHandler struct{ svc service.PrecioService }

func NewPreciosHandler(svc service.PrecioService) *PreciosHandler {
	return &PreciosHandler{svc: svc}
}

// Crear appends a price to the product's history. Prices never change in
// place: a correction is a new record with a newer start date.
func (h *PreciosHandler) Crear(c *gin.Context) {
	productoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.NuevoPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.NuevoPrecio(c.Request.Context(), productoID, req)
	if err != nil {
		if errors.Is(err, service.ErrPrecioDuplicado) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Historial godoc
// @Summary Historial de precios de un producto
// @Tags precios
// @Produce json
// @Param id path string true "ID del producto"
// @Success 200 {object} dto.PrecioListResponse
// @Router /v1/productos/{id}/precios [get]
func (h *PreciosHandler) Historial(c *gin.Context) {
	productoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ListPrecios(c.Request.Context(), productoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar precios"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
