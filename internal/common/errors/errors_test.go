package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode_UnwrapsChain(t *testing.T) {
	base := NewEmptyResponseError()
	wrapped := fmt.Errorf("query round 2: %w", base)

	assert.True(t, HasCode(wrapped, ErrCodeEmptyResponse))
	assert.False(t, HasCode(wrapped, ErrCodeRemoteError))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeEmptyResponse))
	assert.False(t, HasCode(nil, ErrCodeEmptyResponse))
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewTransportFailureError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Message, "connection refused")
	assert.True(t, err.Retryable)
}

func TestProtocolMessages(t *testing.T) {
	assert.Equal(t, "Resposta vazia do servidor", NewEmptyResponseError().Message)
	assert.Equal(t, "Falha ao parsear resposta: bad json",
		NewProtocolDecodeError(stderrors.New("bad json")).Message)

	remote := NewRemoteError("Mensagem não é 'query'.", nil)
	assert.Equal(t, "Mensagem não é 'query'.", remote.Message)
	assert.Empty(t, remote.Details)

	remote = NewRemoteError("boom", map[string]interface{}{"field": "limit"})
	assert.NotEmpty(t, remote.Details)
	assert.Contains(t, remote.Metadata, "remoteDetails")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Resposta vazia do servidor", UserMessage(fmt.Errorf("x: %w", NewEmptyResponseError())))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name    string
		err     *StandardError
		code    string
		retries int
	}{
		{"retryable query failure", NewQueryExecutionFailedError("sql", stderrors.New("x")), "QUERY_EXECUTION_FAILED", 3},
		{"timeout", NewQueryTimeoutError("query"), "QUERY_TIMEOUT", 2},
		{"business error", NewInvalidFilterFormatError("bad"), "INVALID_FILTER_FORMAT", 0},
		{"non retryable decode", NewProtocolDecodeError(stderrors.New("x")), "PROTOCOL_DECODE_FAILED", 0},
		{"unknown code", &StandardError{Code: "SOMETHING_ELSE", Retryable: true}, "SOMETHING_ELSE", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.code, bpmn.Code)
			assert.Equal(t, tt.retries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.code, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeCacheFailed))
	assert.Equal(t, "PROTOCOL", GetErrorCategory(ErrCodeEmptyResponse))
	assert.Equal(t, "PROTOCOL", GetErrorCategory(ErrCodeTransportFailure))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestNormalizeError(t *testing.T) {
	h := NewErrorHandler(nil)

	std := h.normalizeError(fmt.Errorf("wrapped: %w", NewCacheFailedError(stderrors.New("down"))))
	require.NotNil(t, std)
	assert.Equal(t, ErrCodeCacheFailed, std.Code)

	std = h.normalizeError(stderrors.New("surprise"))
	assert.Equal(t, ErrCodeInternal, std.Code)
	assert.Equal(t, "surprise", std.Details)
}
