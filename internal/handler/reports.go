package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"studentattendance/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportBuilder produces the joined attendance report.
type ReportBuilder interface {
	Build(ctx context.Context) ([]report.Row, error)
}

// ReportHandler serves the attendance report.
type ReportHandler struct {
	builder ReportBuilder
	logger  *slog.Logger
}

// NewReportHandler creates a handler.
func NewReportHandler(builder ReportBuilder, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{builder: builder, logger: logger}
}

// Register mounts the report routes.
func (h *ReportHandler) Register(r gin.IRouter) {
	r.GET("/reports/attendance", h.Attendance)
	r.GET("/reports/attendance/export", h.Export)
}

// Attendance handles GET /reports/attendance.
func (h *ReportHandler) Attendance(c *gin.Context) {
	rows, err := h.builder.Build(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Export handles GET /reports/attendance/export.
func (h *ReportHandler) Export(c *gin.Context) {
	rows, err := h.builder.Build(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rows); err != nil {
		h.logger.Error("render report export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="attendance-report.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
