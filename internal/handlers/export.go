package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/report"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
)

type ExportHandler struct {
	reportService *services.ReportService
}

func NewExportHandler(reportService *services.ReportService) *ExportHandler {
	return &ExportHandler{reportService: reportService}
}

// Export downloads one report sheet as csv, markdown or text.
func (h *ExportHandler) Export(c *gin.Context) {
	projectID, ok := parseOptionalUint(c, "project_id")
	if !ok {
		return
	}

	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	name := c.DefaultQuery("sheet", "threads")
	data, err := h.reportService.Snapshot(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sheet, ok := report.SheetByName(name, data)
	if !ok {
		apierrors.BadRequest(c, "Unknown sheet: "+name)
		return
	}

	var buf bytes.Buffer
	if err := sheet.Render(&buf, format); err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.%s", name, data.Today.Format("20060102"), format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
