package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/platform/logger"
	"github.com/taskify/taskify-api/internal/redact"
	"github.com/taskify/taskify-api/internal/service/auth"
)

// actorFrom returns the authenticated actor of r, writing a 401 when the
// request did not pass through the auth middleware.
func actorFrom(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("actor not found in request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return domain.Actor{}, false
	}
	return actor, true
}

// getPathUUID parses the chi URL parameter paramName as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// actorAndPathUUID extracts the actor and the UUID path parameter
// paramName, writing the error response when either is missing.
func actorAndPathUUID(w http.ResponseWriter, r *http.Request, paramName string) (domain.Actor, uuid.UUID, bool) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return domain.Actor{}, uuid.Nil, false
	}
	id, err := getPathUUID(r, paramName)
	if err != nil {
		logger.FromContext(r.Context()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return domain.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

// decodeAndValidate decodes the JSON body of r into v and validates it,
// writing a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		if domain.IsValidationError(err) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// queryInt parses the query parameter name as an int. A missing value
// yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrInvalidFormat)
	}
	return n, nil
}

// queryUUID parses the query parameter name as a UUID. A missing value
// yields uuid.Nil.
func queryUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// pageParams reads the page and pageSize query parameters.
func pageParams(r *http.Request) (page, pageSize int, err error) {
	if page, err = queryInt(r, "page"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = queryInt(r, "pageSize"); err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

// logFailure logs err in redacted form under the request logger.
func logFailure(r *http.Request, msg string, err error, attrs ...any) {
	logger.FromContext(r.Context()).With(attrs...).Debug(msg, slog.String("error", redact.Error(err)))
}
