package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/ordering"
	"github.com/taskify/taskify-api/internal/service"
	"github.com/taskify/taskify-api/internal/service/auth"
	"github.com/taskify/taskify-api/internal/store"
)

// MapErrorToStatusCode maps an error returned by a service to the HTTP
// status it is reported with.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	case store.IsDuplicateError(err),
		store.IsConflictError(err),
		errors.Is(err, service.ErrLabelInUse):
		return http.StatusConflict

	case errors.Is(err, ordering.ErrInvalidRange),
		errors.Is(err, store.ErrInvalidEntity),
		domain.IsValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes driver or infrastructure detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var inUse *service.LabelInUseError
	var vErr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"
	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization header required"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrForbidden):
		return "Access denied"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrProjectNotFound):
		return "Project not found"
	case errors.Is(err, store.ErrBoardNotFound):
		return "Board not found"
	case errors.Is(err, store.ErrColumnNotFound):
		return "Column not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrLabelNotFound):
		return "Label not found"
	case errors.Is(err, store.ErrNotificationNotFound):
		return "Notification not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrLabelNameExists):
		return "Label with this name already exists in this project"
	case store.IsDuplicateError(err):
		return "Resource already exists"
	case store.IsConflictError(err):
		return "The resource was modified concurrently, please retry"
	case errors.As(err, &inUse):
		return inUse.Error()

	case errors.Is(err, ordering.ErrInvalidRange):
		return "Position out of range"
	case errors.As(err, &vErr):
		return fmt.Sprintf("Invalid %s: %s", vErr.Field, vErr.Message)
	case domain.IsValidationError(err):
		return upperFirst(validationDetail(err))
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// validationDetail returns the message of the innermost domain validation
// error in err.
func validationDetail(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil || !domain.IsValidationError(next) {
			break
		}
		err = next
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}

// SanitizeValidationError turns a request validation failure into a message
// naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", lowerFirst(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too short"
	case "max", "lte":
		return "too long"
	case "oneof":
		return "invalid value"
	case "hexcolor":
		return "must be a hex color"
	default:
		return "validation failed"
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message of a 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	var inUse *service.LabelInUseError
	if errors.As(err, &inUse) {
		opts = append(opts, shared.WithConfirmation(inUse.TaskCount))
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
