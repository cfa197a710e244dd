package httputil

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// ErrorBody is the "error" member of an error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// WriteError writes err as an error response. The status comes from
// [StatusFor].
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" || code == errors.ErrCodeInternal {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	WriteJSON(w, StatusFor(err), errorResponse{
		Error:     ErrorBody{Code: code, Message: msg},
		RequestID: RequestIDFrom(r.Context()),
	})
}

// StatusFor maps an error to an HTTP status code.
//
//   - MALFORMED_SCHEMA, INVALID_INPUT, INVALID_CONFIG, INVALID_FORMAT: 400
//   - INPUT_NOT_FOUND: 404
//   - TOO_LARGE: 413
//   - NO_START_NODE: 422
//   - anything else: 500
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeMalformedSchema, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeInputNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeNoStartNode:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// ReadBody reads at most limit bytes of the request body. Larger bodies fail
// with TOO_LARGE and empty ones with INVALID_INPUT.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrCodeTooLarge, err, "request body exceeds %d bytes", limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, nil
}
