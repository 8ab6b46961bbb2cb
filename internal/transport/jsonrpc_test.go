package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"test","params":{"a":1},"id":1}`)
	req, err := ParseRequest(body)
	require.NoError(t, err)
	require.Equal(t, "2.0", req.JSONRPC)
	require.Equal(t, "test", req.Method)
	require.Equal(t, json.RawMessage(`{"a":1}`), req.Params)
}

func TestParseRequest_Invalid(t *testing.T) {
	_, err := ParseRequest(bytes.NewBufferString(`{"jsonrpc":"2.0","id":1}`))
	require.ErrorIs(t, err, errInvalidRequest)

	_, err = ParseRequest(bytes.NewBufferString(`{"jsonrpc":`))
	require.ErrorIs(t, err, errParse)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 1, ErrInvalidParams, "bad params", nil)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `"error"`)

	rec = httptest.NewRecorder()
	WriteError(rec, nil, ErrRateLimited, "slow down", nil)
	require.Equal(t, 429, rec.Code)
}

type fakeAPIError struct {
	code string
}

func (e fakeAPIError) Error() string             { return e.code }
func (e fakeAPIError) CodeValue() string         { return e.code }
func (e fakeAPIError) MessageValue() string      { return "message for " + e.code }
func (e fakeAPIError) DetailsValue() any         { return nil }
func (e fakeAPIError) RecoveryHintValue() string { return "hint" }

func TestErrorObject(t *testing.T) {
	cases := map[string]int{
		"UNKNOWN_METHOD":    ErrMethodNotFound,
		"INVALID_PARAMS":    ErrInvalidParams,
		"UNAUTHORIZED":      ErrUnauthorizedCode,
		"VALIDATION_FAILED": ErrDomain,
		"MISSION_NOT_FOUND": ErrDomain,
	}
	for code, want := range cases {
		obj := errorObject(fakeAPIError{code: code})
		require.Equal(t, want, obj.Code, code)
		require.Equal(t, code, obj.Data.(ErrorData).Code)
	}

	obj := errorObject(errors.New("boom"))
	require.Equal(t, ErrInternal, obj.Code)
	require.Equal(t, "internal error", obj.Message)
}
