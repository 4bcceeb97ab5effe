package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a-manpathan/kata-frontend/internal/domain"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// mapErrorToStatus translates the domain's sentinel errors to HTTP statuses.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConfirmationRequired), domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
