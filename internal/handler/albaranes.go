package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/slamora/lupanes/internal/apierror"
	"github.com/slamora/lupanes/internal/dto"
	"github.com/slamora/lupanes/internal/middleware"
	"github.com/slamora/lupanes/internal/model"
	"github.com/slamora/lupanes/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AlbaranesHandler struct{ svc service.AlbaranService }

func NewAlbaranesHandler(svc service.AlbaranService) *AlbaranesHandler {
	return &AlbaranesHandler{svc: svc}
}

// claimsUserID extracts the authenticated user's id from the JWT claims.
func claimsUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return uuid.Nil, false
	}
	return id, true
}

// Crear godoc
// @Summary Registrar un albaran (nevera)
// @Tags albaranes
// @Accept json
// @Produce json
// @Param body body dto.CrearAlbaranRequest true "Albaran"
// @Success 201 {object} dto.AlbaranResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/albaranes [post]
func (h *AlbaranesHandler) Crear(c *gin.Context) {
	customerID, ok := claimsUserID(c)
	if !ok {
		return
	}
	var req dto.CrearAlbaranRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), customerID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Digitalizar records a paper albaran on behalf of any customer. Manager
// only: admits back-dating, inactive products and the paper sheet number.
func (h *AlbaranesHandler) Digitalizar(c *gin.Context) {
	creadorID, ok := claimsUserID(c)
	if !ok {
		return
	}
	var req dto.DigitalizarAlbaranRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Digitalizar(c.Request.Context(), creadorID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Hoy lists the customer's albaranes registered today with their running
// total.
func (h *AlbaranesHandler) Hoy(c *gin.Context) {
	customerID, ok := claimsUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.AlbaranesHoy(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar albaranes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlbaranesHandler) Actualizar(c *gin.Context) {
	customerID, ok := claimsUserID(c)
	if !ok {
		return
	}
	albaranID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarAlbaranRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), customerID, albaranID, req)
	if err != nil {
		if errors.Is(err, service.ErrAlbaranNoEditable) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlbaranesHandler) Eliminar(c *gin.Context) {
	customerID, ok := claimsUserID(c)
	if !ok {
		return
	}
	albaranID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), customerID, albaranID); err != nil {
		if errors.Is(err, service.ErrAlbaranNoEditable) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Archivo returns a customer's albaranes for one calendar month. A nevera
// sees her own notes; a tienda user picks the customer with ?nevera_id.
func (h *AlbaranesHandler) Archivo(c *gin.Context) {
	customerID, ok := claimsUserID(c)
	if !ok {
		return
	}
	if middleware.GetClaims(c).Rol == model.RolTienda {
		id, err := uuid.Parse(c.Query("nevera_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("nevera_id invalido"))
			return
		}
		customerID = id
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, apierror.New("Año invalido"))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, apierror.New("Mes invalido"))
		return
	}
	resp, err := h.svc.ArchivoMensual(c.Request.Context(), customerID, year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar albaranes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
