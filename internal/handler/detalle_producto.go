package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/slamora/lupanes/internal/apierror"
	"github.com/slamora/lupanes/internal/dto"
	"github.com/slamora/lupanes/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const detalleCacheTTL = 15 * time.Minute

// DetalleProductoHandler serves the AJAX lookup behind the albaran form:
// current price plus whether the quantity input admits decimals. Read-mostly
// and polled on every product change, so responses sit in Redis.
type DetalleProductoHandler struct {
	svc service.ProductoService
	rdb *redis.Client
}

func NewDetalleProductoHandler(svc service.ProductoService, rdb *redis.Client) *DetalleProductoHandler {
	return &DetalleProductoHandler{svc: svc, rdb: rdb}
}

// GetDetalle godoc
// @Summary Precio actual y unidad de un producto
// @Tags productos
// @Produce json
// @Param id path string true "ID del producto"
// @Success 200 {object} dto.ProductoDetalleResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/{id}/detalle [get]
func (h *DetalleProductoHandler) GetDetalle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	ctx := c.Request.Context()
	cacheKey := "producto_detalle:" + id.String()

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.ProductoDetalleResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	resp, err := h.svc.Detalle(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrPriceNotFoundOnDate) {
			c.JSON(http.StatusNotFound, apierror.New("El producto no tiene precio vigente"))
			return
		}
		c.JSON(http.StatusNotFound, apierror.NotFound("Producto"))
		return
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, detalleCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
