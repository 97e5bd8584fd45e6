package v1

import (
	"errors"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError is the single place service errors become HTTP statuses.
// Storage failures get a short notice; their cause is only logged.
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
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, patient.ErrPatientHasAppointments):
		respondError(c, http.StatusConflict, "PATIENT_HAS_APPOINTMENTS", err.Error())

	case errors.Is(err, appointment.ErrInvalidStatus),
		errors.Is(err, appointment.ErrInvalidDuration),
		errors.Is(err, appointment.ErrInvalidStart),
		errors.Is(err, appointment.ErrInvalidTimeRange),
		errors.Is(err, appointment.ErrInvalidView),
		errors.Is(err, patient.ErrInvalidDateOfBirth),
		errors.Is(err, patient.ErrUnparseableDateOfBirth):
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())

	case errors.Is(err, service.ErrFetchFailed):
		_ = c.Error(err)
		respondError(c, http.StatusBadGateway, "FETCH_FAILED", "Could not load data. Please try again.")

	case errors.Is(err, service.ErrWriteFailed):
		_ = c.Error(err)
		respondError(c, http.StatusBadGateway, "WRITE_FAILED", "Your change was not saved. Please try again.")

	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")

	case errors.Is(err, service.ErrAccountLocked):
		respondError(c, http.StatusTooManyRequests, "ACCOUNT_LOCKED", "account temporarily locked")

	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BODY", "invalid request: "+err.Error())
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+param+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
