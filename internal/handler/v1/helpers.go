package v1

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/glucotrack/glucotrack/internal/domain/doctor"
	"github.com/glucotrack/glucotrack/internal/domain/patient"
	"github.com/glucotrack/glucotrack/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

// respondServiceError maps the closed error set to HTTP codes in one place.
// Anything unrecognized is a persistence or internal failure and surfaces
// generically, with no internal detail leaked to the client.
func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, doctor.ErrDuplicateUsername),
		errors.Is(err, doctor.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// redirectWithError is the web-surface counterpart of respondServiceError:
// known errors carry their message back to the form page as a query param,
// anything else degrades to a generic message.
func redirectWithError(c *gin.Context, target string, err error) {
	msg := "something went wrong, try again"

	var validErr *service.ValidationError
	switch {
	case errors.As(err, &validErr):
		msg = validErr.Error()
	case errors.Is(err, doctor.ErrDuplicateUsername),
		errors.Is(err, doctor.ErrDuplicateEmail),
		errors.Is(err, patient.ErrPatientNotFound):
		msg = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		msg = "invalid credentials"
	}

	c.Redirect(http.StatusSeeOther, target+"?error="+url.QueryEscape(msg))
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}
