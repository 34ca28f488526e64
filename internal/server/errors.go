package server

import (
	"errors"
	"net/http"

	orderdomain "github.com/ecomprotect/sentinel/internal/order/domain"
	"github.com/gin-gonic/gin"
)

// writeDomainError maps service sentinels onto HTTP status codes.
func writeDomainError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, orderdomain.ErrValidation),
		errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidPageToken),
		errors.Is(err, orderdomain.ErrInvalidAction):
		status = http.StatusBadRequest
	case errors.Is(err, orderdomain.ErrInvalidStore):
		status = http.StatusUnauthorized
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrStoreNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orderdomain.ErrInvalidState):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
