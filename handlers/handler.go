package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"parcel-delivery-api/services"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc   *services.Services
	store Pinger
	log   *slog.Logger
}

func New(svc *services.Services, store Pinger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, store: store, log: log}
}

// respondError writes the status matching err's kind. Unclassified errors are
// logged and hidden behind a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		h.log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"message": "internal server error"})
		return
	}
	if status == http.StatusBadGateway {
		h.log.Warn("payment gateway call failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes the body into dst. An empty body leaves dst untouched
// when optional is set.
func bindJSON(c *gin.Context, dst any, optional bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
	return false
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
}
