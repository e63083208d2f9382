package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"studentattendance/internal/repository"
)

const upstreamUnavailable = "upstream unavailable"

// respondError maps a service error onto the JSON error envelope. Anything
// that is not a domain error means a backing store failed; the cause is
// logged, never returned.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusServiceUnavailable {
		_ = c.Error(err)
		logger.Error("request failed", "route", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": upstreamUnavailable})
		return
	}

	msg := err.Error()
	var derr *repository.Error
	if errors.As(err, &derr) {
		msg = derr.Message
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
