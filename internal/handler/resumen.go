package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/slamora/lupanes/internal/apierror"
	"github.com/slamora/lupanes/internal/infra"
	"github.com/slamora/lupanes/internal/service"

	"github.com/gin-gonic/gin"
)

// ResumenHandler serves the manager's monthly consumption summary: one total
// per active customer, JSON for the screen and PDF for printing.
type ResumenHandler struct {
	svc service.AlbaranService
}

func NewResumenHandler(svc service.AlbaranService) *ResumenHandler {
	return &ResumenHandler{svc: svc}
}

// Mensual godoc
// @Summary Resumen mensual de consumo por nevera
// @Tags resumen
// @Produce json
// @Param month query int false "Mes (1-12, por defecto el actual)"
// @Success 200 {object} dto.ResumenMensualResponse
// @Router /v1/resumen [get]
func (h *ResumenHandler) Mensual(c *gin.Context) {
	year, month := service.CleanMonth(c.Query("month"), time.Now())
	resp, err := h.svc.ResumenMensual(c.Request.Context(), year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al calcular el resumen"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MensualPDF renders the same summary as a downloadable PDF.
func (h *ResumenHandler) MensualPDF(c *gin.Context) {
	year, month := service.CleanMonth(c.Query("month"), time.Now())
	resumen, err := h.svc.ResumenMensual(c.Request.Context(), year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al calcular el resumen"))
		return
	}

	rows := make([]infra.ResumenRow, 0, len(resumen.Data))
	for _, item := range resumen.Data {
		rows = append(rows, infra.ResumenRow{Nevera: item.Nombre, Total: item.Total})
	}

	var buf bytes.Buffer
	if err := infra.WriteResumenPDF(&buf, year, month, rows); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el PDF"))
		return
	}

	filename := fmt.Sprintf("resumen-%04d-%02d.pdf", year, month)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
