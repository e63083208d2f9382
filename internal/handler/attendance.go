package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studentattendance/internal/attendance"
)

// AttendanceService is the attendance log behaviour the handler needs.
type AttendanceService interface {
	Create(ctx context.Context, in attendance.Input) (*attendance.Record, error)
	List(ctx context.Context, opts attendance.ListOptions) ([]attendance.Record, error)
	Get(ctx context.Context, id string) (*attendance.Record, error)
	Update(ctx context.Context, id string, in attendance.Input) (*attendance.Record, error)
	Delete(ctx context.Context, id string) error
}

// AttendanceHandler serves the attendance log API.
type AttendanceHandler struct {
	svc    AttendanceService
	logger *slog.Logger
}

// NewAttendanceHandler creates a handler.
func NewAttendanceHandler(svc AttendanceService, logger *slog.Logger) *AttendanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceHandler{svc: svc, logger: logger}
}

// Register mounts the attendance routes.
func (h *AttendanceHandler) Register(r gin.IRouter) {
	r.POST("/attendance", h.Create)
	r.GET("/attendance", h.List)
	r.GET("/attendance/:id", h.Get)
	r.PUT("/attendance/:id", h.Update)
	r.DELETE("/attendance/:id", h.Delete)
}

// recordRequest is the body of create and update. A missing or null day
// means today, a missing or null present means true.
type recordRequest struct {
	StudentID *int64  `json:"student_id" binding:"required"`
	Day       *string `json:"day"`
	Present   *bool   `json:"present"`
}

func (r recordRequest) input() attendance.Input {
	in := attendance.Input{StudentID: *r.StudentID, Present: r.Present}
	if r.Day != nil {
		in.Day = *r.Day
	}
	return in
}

// Create handles POST /attendance.
func (h *AttendanceHandler) Create(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindErrorMessage(err))
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// List handles GET /attendance?student_id=&limit=.
func (h *AttendanceHandler) List(c *gin.Context) {
	opts := attendance.ListOptions{}
	if raw := c.Query("student_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "student_id must be an integer")
			return
		}
		opts.StudentID = &id
	}
	limit, ok := limitParam(c, attendance.DefaultListLimit)
	if !ok {
		return
	}
	opts.Limit = limit

	records, err := h.svc.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Get handles GET /attendance/:id.
func (h *AttendanceHandler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update handles PUT /attendance/:id.
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindErrorMessage(err))
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /attendance/:id.
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
