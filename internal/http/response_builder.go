package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"pennie/internal/core"
	"pennie/internal/csvio"
)

// ResponseBuilder is a fluent builder for JSON API responses.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewResponse creates a builder with a 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON marshals v as the body. A marshal failure turns the response into a
// 500 when written.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body, b.err = json.Marshal(v)
	return b
}

// Body sets a raw body with the given content type.
func (b *ResponseBuilder) Body(content []byte, contentType string) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.body = content
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		slog.Error("Failed to encode response", "error", b.err)
		b = ErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response of the form {"error": msg}.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

// MethodNotAllowedError lists the permitted methods in the Allow header.
func MethodNotAllowedError(allowedMethods string) *ResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", allowedMethods)
}

// requestError carries a status chosen while decoding a request.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{status: http.StatusBadRequest, msg: msg} }

var validationErrors = []error{
	core.ErrEmptyMerchant,
	core.ErrMerchantTooLong,
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrUnknownCategory,
	core.ErrSignMismatch,
	core.ErrEmptyName,
	core.ErrInvalidType,
	core.ErrInvalidTarget,
	core.ErrDuplicateName,
	core.ErrNegativeBudgeted,
	csvio.ErrEmptyFile,
	csvio.ErrMissingColumns,
}

// errorStatus maps err to an HTTP status and a client-safe message.
func errorStatus(err error) (int, string) {
	var re *requestError
	if errors.As(err, &re) {
		return re.status, re.msg
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "request body too large"
	}
	if errors.Is(err, core.ErrNotFound) {
		return http.StatusNotFound, err.Error()
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// FromError builds the error response for err.
func FromError(err error) *ResponseBuilder {
	status, msg := errorStatus(err)
	return ErrorResponse(status, msg)
}
