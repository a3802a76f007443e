package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAPIErrorPlainText(t *testing.T) {
	detail := ParseAPIError(errors.New("connection refused"), "")
	assert.Equal(t, "connection refused", detail.Message)
	assert.Empty(t, detail.Code)
}

func TestParseAPIErrorNilInput(t *testing.T) {
	detail := ParseAPIError(nil, "")
	assert.Equal(t, "AI generation failed", detail.Message)
}

func TestParseAPIErrorOpenAIShape(t *testing.T) {
	raw := `{"error":{"message":"model not available","code":"model_not_found","param":"model"}}`
	detail := ParseAPIError(nil, raw)
	assert.Equal(t, "model not available", detail.Message)
	assert.Equal(t, "model_not_found", detail.Code)
	assert.Equal(t, "model", detail.Parameter)
}

func TestParseAPIErrorTypeFallsBackToCode(t *testing.T) {
	raw := `{"error":{"message":"rate limited","type":"rate_limit_error"}}`
	detail := ParseAPIError(nil, raw)
	assert.Equal(t, "rate_limit_error", detail.Code)
}

func TestParseAPIErrorFlatShape(t *testing.T) {
	raw := `{"message":"invalid request","code":"invalid_request"}`
	detail := ParseAPIError(nil, raw)
	assert.Equal(t, "invalid request", detail.Message)
	assert.Equal(t, "invalid_request", detail.Code)
}

func TestParseAPIErrorSupportedValues(t *testing.T) {
	err := errors.New(`temperature out of range, supported values are: 0, 1, 2`)
	detail := ParseAPIError(err, "")
	assert.Equal(t, []string{"0", "1", "2"}, detail.SupportedValues)
}

func TestParseAPIErrorRawResponseWins(t *testing.T) {
	detail := ParseAPIError(errors.New("status 400"), `{"error":{"message":"bad prompt","code":"bad_prompt"}}`)
	assert.Equal(t, "bad prompt", detail.Message)
	assert.Equal(t, "bad_prompt", detail.Code)
}

func TestParseAPIErrorGarbageJSON(t *testing.T) {
	detail := ParseAPIError(nil, `{"error": not-json`)
	assert.Equal(t, `{"error": not-json`, detail.Message)
}
