package handlers

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// badRequest renders validation errors itemized per field and everything
// else as a single error string.
func badRequest(c echo.Context, err error) error {
	var fieldErrors validation.Errors
	if errors.As(err, &fieldErrors) {
		return c.JSON(http.StatusBadRequest, map[string]any{"errors": fieldErrors})
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
