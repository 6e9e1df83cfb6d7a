package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/requestid"
)

// ErrorEvent is the htmx event raised (through HX-Trigger) when a fragment
// request fails; app.js shows its message as a flash.
const ErrorEvent = "tesis:error"

var statusByCode = map[string]int{
	domain.EINVALID:      http.StatusBadRequest,
	domain.EUNAUTHORIZED: http.StatusUnauthorized,
	domain.EFORBIDDEN:    http.StatusForbidden,
	domain.ENOTFOUND:     http.StatusNotFound,
	domain.ECONFLICT:     http.StatusConflict,
	domain.ERATELIMIT:    http.StatusTooManyRequests,
	domain.EUNAVAILABLE:  http.StatusBadGateway,
}

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status. Unknown
// codes are server errors.
func ErrorCodeToHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// JSONError is the body of every JSON error response.
type JSONError struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse maps err to a status and writes it in the form the client
// asked for: JSON, an htmx event, or plain text. Only domain.ErrorMessage
// reaches the client; ops and wrapped causes stay in the log.
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	logError(logger, r, err, code, status)

	writeError(w, r, status, ErrorBody{Code: code, Message: domain.ErrorMessage(err)})
}

// ValidationErrorResponse writes field errors. Errors that are not a
// *domain.ValidationError fall through to ErrorResponse.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		ErrorResponse(w, r, logger, err)
		return
	}

	logger.Info("validation error", "op", ve.Op, "fields", len(ve.Fields), "path", r.URL.Path)

	writeError(w, r, http.StatusBadRequest, ErrorBody{
		Code:    domain.EINVALID,
		Message: "Validation failed. Please check your input and try again.",
		Fields:  ve.Fields,
	})
}

func NotFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.NotFound("", "page", r.URL.Path))
}

func UnauthorizedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.Unauthorized("", "Authentication required"))
}

func ForbiddenResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.Forbidden("", "You don't have permission to open this list"))
}

// InternalErrorResponse hides err behind a generic 500.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ErrorResponse(w, r, logger, domain.Internal(err, "", "An unexpected error occurred"))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	switch {
	case acceptsJSON(r):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(JSONError{Error: body})
	case isHtmx(r):
		// htmx does not swap error responses; the event carries the message.
		trigger, _ := json.Marshal(map[string]ErrorBody{ErrorEvent: body})
		w.Header().Set("HX-Trigger", string(trigger))
		http.Error(w, body.Message, status)
	default:
		http.Error(w, body.Message, status)
	}
}

func logError(logger *slog.Logger, r *http.Request, err error, code string, status int) {
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}
	if id := requestid.From(r.Context()); id != "" {
		attrs = append(attrs, "request_id", id)
	}

	if status >= 500 {
		logger.Error("server error", attrs...)
		return
	}
	logger.Info("client error", attrs...)
}

// acceptsJSON reports whether the client wants JSON. htmx requests always
// get HTML.
func acceptsJSON(r *http.Request) bool {
	if isHtmx(r) {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

func isHtmx(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
