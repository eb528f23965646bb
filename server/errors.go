package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/nullinfo/middleware"
)

// ErrMemberNotFound is returned when a member or parameter key is not in the
// catalog.
var ErrMemberNotFound = errors.New("member not found")

// ErrorCode is the machine-readable kind of a lookup failure.
type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "invalid_argument"
	CodeNotFound         ErrorCode = "not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeCanceled         ErrorCode = "canceled"
	CodeDeadlineExceeded ErrorCode = "deadline_exceeded"
	CodeInternal         ErrorCode = "internal"
)

// 499 is the de facto "client closed request" status.
var codeStatus = map[ErrorCode]int{
	CodeInvalidArgument:  http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeCanceled:         499,
	CodeDeadlineExceeded: http.StatusGatewayTimeout,
}

// HTTPStatus returns the response status for c. Unknown codes are 500.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := codeStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is the body of an error response:
//
//	{"error": {"code": "not_found", "message": "...", "details": {...}}}
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewError returns an Error with no details.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf is NewError with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithDetail returns a copy of e with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := maps.Clone(e.Details)
	if details == nil {
		details = make(map[string]any, 1)
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// ErrorTransformer maps an error returned while serving a lookup to an
// Error. Returning nil defers to DefaultErrorTransformer.
type ErrorTransformer func(error) *Error

// DefaultErrorTransformer maps lookup, context, validation and query
// decoding errors to Errors. Anything else is internal.
func DefaultErrorTransformer(err error) *Error {
	var (
		svcErr  *Error
		valErrs validator.ValidationErrors
		multi   schema.MultiError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &svcErr):
		return svcErr
	case errors.Is(err, ErrMemberNotFound):
		return NewError(CodeNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(CodeDeadlineExceeded, "lookup timed out")
	case errors.Is(err, context.Canceled):
		return NewError(CodeCanceled, "lookup canceled")
	case errors.As(err, &valErrs):
		return fieldErrors(valErrs)
	case errors.As(err, &multi):
		details := make(map[string]any, len(multi))
		for key, e := range multi {
			details[key] = e.Error()
		}
		return &Error{Code: CodeInvalidArgument, Message: "invalid query: " + multi.Error(), Details: details}
	default:
		return NewError(CodeInternal, err.Error())
	}
}

// fieldErrors reports one detail per failed request field, keyed by the
// Go field name.
func fieldErrors(errs validator.ValidationErrors) *Error {
	details := make(map[string]any, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = describeField(fe)
	}
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s %s", strings.ToLower(f), details[f])
	}
	return &Error{Code: CodeInvalidArgument, Message: strings.Join(parts, "; "), Details: details}
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	if fe.Param() == "" {
		return "fails " + fe.Tag()
	}
	return "fails " + fe.Tag() + "=" + fe.Param()
}

type resultBody struct {
	Result any `json:"result"`
}

type errorBody struct {
	Error *Error `json:"error"`
}

func writeResult(w http.ResponseWriter, result any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resultBody{Result: result}); err != nil {
		logger.Error("failed to encode result", slog.Any("error", err))
	}
}

// handleError records err for the logging middleware and writes its
// envelope. The error transformer runs first, then the default one.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.RecordError(r.Context(), err)

	svcErr := s.transformer.apply(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.Code.HTTPStatus())
	if encErr := json.NewEncoder(w).Encode(errorBody{Error: svcErr}); encErr != nil {
		s.logger.Error("failed to encode error",
			slog.String("code", string(svcErr.Code)),
			slog.Any("error", encErr))
	}
}

func (fn ErrorTransformer) apply(err error) *Error {
	if fn != nil {
		if svcErr := fn(err); svcErr != nil {
			return svcErr
		}
	}
	return DefaultErrorTransformer(err)
}
