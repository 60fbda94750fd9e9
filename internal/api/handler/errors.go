package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/docclass/internal/api/middleware"
	"github.com/timmy/docclass/internal/repository"
	"github.com/timmy/docclass/internal/service"
)

// respondError writes a JSON error body with the request id attached.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":      message,
		"request_id": c.Writer.Header().Get(middleware.RequestIDHeader),
	})
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingDocumentID):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrItemRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
