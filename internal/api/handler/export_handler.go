package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/api/metrics"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

type ExportHandler struct {
	exportService ports.ExportService
}

func NewExportHandler(exportService ports.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// CSV renders all of the caller's expenses as CSV text inside a JSON envelope.
//
// @Summary      Export expenses as CSV
// @Tags         export
// @Produce      json
// @Success      200  {object}  csvResponse
// @Failure      401  {object}  map[string][]string
// @Router       /api/export/csv [get]
func (h *ExportHandler) CSV(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	export, err := h.exportService.CSV(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	metrics.CSVExportsTotal.Inc()
	return c.JSON(http.StatusOK, csvResponse{CSVData: export.Data, Filename: export.Filename})
}
