package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studentattendance/internal/student"
)

// StudentService is the directory behaviour the handler needs.
type StudentService interface {
	Create(ctx context.Context, req student.CreateRequest) (*student.Student, error)
	List(ctx context.Context, limit int) ([]student.Student, error)
	Get(ctx context.Context, id int64) (*student.Student, error)
}

// StudentHandler serves the student directory API.
type StudentHandler struct {
	svc    StudentService
	logger *slog.Logger
}

// NewStudentHandler creates a handler.
func NewStudentHandler(svc StudentService, logger *slog.Logger) *StudentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudentHandler{svc: svc, logger: logger}
}

// Register mounts the directory routes.
func (h *StudentHandler) Register(r gin.IRouter) {
	r.POST("/students", h.Create)
	r.GET("/students", h.List)
	r.GET("/students/:id", h.Get)
}

type createStudentRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// Create handles POST /students.
func (h *StudentHandler) Create(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindErrorMessage(err))
		return
	}
	st, err := h.svc.Create(c.Request.Context(), student.CreateRequest{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// List handles GET /students?limit=N.
func (h *StudentHandler) List(c *gin.Context) {
	limit, ok := limitParam(c, student.DefaultListLimit)
	if !ok {
		return
	}
	students, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// Get handles GET /students/:id.
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id must be an integer")
		return
	}
	st, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// limitParam reads ?limit=, writing a 400 and returning false when it is
// not a positive integer.
func limitParam(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		badRequest(c, "limit must be a positive integer")
		return 0, false
	}
	return limit, true
}
