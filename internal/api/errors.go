package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/dto"
)

func statusOf(err error) int {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStatusTransition), errors.Is(err, domain.ErrIdempotencyKeyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body. Internal errors are recorded on the
// context for the request logger and never leak to the client.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, dto.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(status, dto.NewErrorResponse(err))
}

func badRequest(c *gin.Context, field, msg string) {
	respondError(c, &domain.ValidationError{Fields: domain.FieldErrors{field: msg}})
}
