package middlewares

import (
	"errors"
	"net/http"

	"citysense-be/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppError is the error shape every handler funnels failures into.
type AppError struct {
	Status  int
	Message string
	Details []string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func BadRequest(message string, details ...string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message, Details: details}
}

func Unauthorized(message string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: "Internal Server Error", Err: err}
}

// FromStoreError maps persistence errors onto the HTTP taxonomy.
func FromStoreError(err error, notFoundMessage string) *AppError {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidID):
		return NotFound(notFoundMessage)
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 16500 {
		return &AppError{Status: http.StatusTooManyRequests, Message: "Resource exhausted", Err: err}
	}
	return Internal(err)
}

// ErrorHandler funnels every error attached to the context into one
// response. Production mode never exposes internal error text.
func ErrorHandler(isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var app *AppError
		if !errors.As(err, &app) {
			app = Internal(err)
		}

		if app.Status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		}

		body := gin.H{"error": app.Message}
		if len(app.Details) > 0 {
			body["details"] = app.Details
		}
		if app.Status == http.StatusInternalServerError && !isProduction && app.Err != nil {
			body["detail"] = app.Err.Error()
		}

		c.JSON(app.Status, body)
	}
}
