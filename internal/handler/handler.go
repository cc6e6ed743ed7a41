package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gearhub/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, nothing useful left to do.
		return
	}
}

// stockErrorResponse itemizes every shortage so the customer can fix
// the whole cart in one pass.
type stockErrorResponse struct {
	Error     string                `json:"error"`
	Message   string                `json:"message"`
	Shortages []model.StockShortage `json:"shortages"`
}

// incompleteResponse tells the client which checkout step to return to.
type incompleteResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	NextStep string `json:"nextStep"`
}

// writeError maps a service error to an HTTP status and a standardised
// error body. Unrecognised errors become opaque 500s.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var (
		validationErr *model.ValidationError
		stockErr      *model.InsufficientStockError
		incompleteErr *model.CheckoutIncompleteError
		transitionErr *model.InvalidTransitionError
		domainErr     *model.DomainError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "Validation failed",
			Fields:  validationErr.Fields,
		})

	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, stockErrorResponse{
			Error:     model.ErrCodeInsufficientStock,
			Message:   stockErr.Error(),
			Shortages: stockErr.Shortages,
		})

	case errors.As(err, &incompleteErr):
		writeJSON(w, http.StatusConflict, incompleteResponse{
			Error:    model.ErrCodeCheckoutIncomplete,
			Message:  "Checkout is not complete",
			NextStep: incompleteErr.NextStep,
		})

	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:   model.ErrCodeInvalidTransition,
			Message: transitionErr.Error(),
		})

	case errors.As(err, &domainErr):
		writeJSON(w, domainStatus(domainErr.Code), model.ErrorResponse{
			Error:   domainErr.Code,
			Message: domainErr.Message,
		})

	default:
		logger.Error().Err(err).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "Internal server error",
		})
	}
}

// domainStatus maps domain error codes to HTTP statuses.
func domainStatus(code string) int {
	switch code {
	case model.ErrCodeProductNotFound,
		model.ErrCodeItemNotFound,
		model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeCartEmpty,
		model.ErrCodeNoCheckoutSession:
		return http.StatusConflict
	case model.ErrCodeTermsNotAccepted,
		model.ErrCodeInvalidDiscountCode,
		model.ErrCodeShippingMethod:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidQuantity,
		model.ErrCodeInvalidJSON,
		model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeOrderPlacement:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// badRequest writes a 400 with the given message.
func badRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error:   code,
		Message: message,
	})
}
