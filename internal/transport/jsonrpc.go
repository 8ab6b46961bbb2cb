package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// JSON-RPC 2.0 error codes. Codes above -32099 are server-defined.
const (
	ErrParseCode        = -32700
	ErrInvalidReq       = -32600
	ErrMethodNotFound   = -32601
	ErrInvalidParams    = -32602
	ErrInternal         = -32603
	ErrDomain           = -32000
	ErrUnauthorizedCode = -32001
	ErrRateLimited      = -32029
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorData is the data member of domain errors.
type ErrorData struct {
	Code         string `json:"code"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

var (
	errParse          = errors.New("parse error")
	errInvalidRequest = errors.New("invalid request")
)

// ParseRequest parses and validates a JSON-RPC request payload.
func ParseRequest(body io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", errParse, err)
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return Request{}, errInvalidRequest
	}
	return req, nil
}

// codedError is satisfied by the API errors of the handler layer.
type codedError interface {
	error
	CodeValue() string
	MessageValue() string
	DetailsValue() any
	RecoveryHintValue() string
}

// errorObject converts a handler error to a JSON-RPC error.
func errorObject(err error) *Error {
	var coded codedError
	if !errors.As(err, &coded) {
		return &Error{Code: ErrInternal, Message: "internal error"}
	}
	data := ErrorData{
		Code:         coded.CodeValue(),
		Details:      coded.DetailsValue(),
		RecoveryHint: coded.RecoveryHintValue(),
	}
	code := ErrDomain
	switch coded.CodeValue() {
	case "UNKNOWN_METHOD":
		code = ErrMethodNotFound
	case "INVALID_PARAMS":
		code = ErrInvalidParams
	case "UNAUTHORIZED":
		code = ErrUnauthorizedCode
	case "RATE_LIMITED":
		code = ErrRateLimited
	case "INTERNAL":
		code = ErrInternal
	}
	return &Error{Code: code, Message: coded.MessageValue(), Data: data}
}

// WriteResult writes a JSON-RPC success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

// WriteError writes a JSON-RPC error response. Auth and rate limit
// failures also set the matching HTTP status.
func WriteError(w http.ResponseWriter, id any, code int, message string, data any) {
	status := http.StatusOK
	switch code {
	case ErrUnauthorizedCode:
		status = http.StatusUnauthorized
	case ErrRateLimited:
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
