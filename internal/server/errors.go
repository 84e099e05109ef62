package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
	invoiceformat "github.com/fitora/fitora/internal/invoice/format"
	invoiceservice "github.com/fitora/fitora/internal/invoice/service"
	memberdomain "github.com/fitora/fitora/internal/member/domain"
	settingsdomain "github.com/fitora/fitora/internal/settings/domain"
	"github.com/fitora/fitora/internal/tax"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	var vErrs *ValidationErrors
	if errors.As(err, &vErrs) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErrs.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, invoicedomain.ErrDuplicatePayment),
		errors.Is(err, invoiceservice.ErrCreationInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, memberdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, settingsdomain.ErrGeneralSettingsMissing):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "configuration_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	for _, candidate := range []error{
		invoicedomain.ErrInvalidInvoiceID,
		invoicedomain.ErrInvalidAmount,
		invoicedomain.ErrMissingPayment,
		invoicedomain.ErrMissingMember,
		invoicedomain.ErrInvalidPageToken,
		tax.ErrNegativeTotal,
		tax.ErrInvalidVATRate,
		invoiceformat.ErrAmountTooLarge,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
