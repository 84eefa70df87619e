package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func TestValidateAcceptsWellFormedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "transaction metrics",
			payload: `{"transaction_count":1000,"average_time_per_tx_us":1.42,"execution_time_ms":15.0}`,
		},
		{
			name:    "block hashing with samples",
			payload: `{"block_count":100,"sample_hashes":["0xabc","0xdef"],"execution_time_ms":8.0}`,
		},
		{
			name:    "memory metrics",
			payload: `{"transaction_count":1000,"block_count":100,"estimated_memory_kb":2048,"tx_memory_kb":1024,"block_memory_kb":1024,"execution_time_ms":3.5}`,
		},
		{
			name:    "error form",
			payload: `{"error":"execution failed: bad fixture"}`,
		},
		{
			name:    "empty object",
			payload: `{}`,
		},
		{
			name:    "unknown extra metrics tolerated",
			payload: `{"execution_time_ms":1.0,"opcode_histogram":{"ADD":17,"MUL":3},"engine_build":"debug"}`,
		},
		{
			name:    "zero timings",
			payload: `{"execution_time_ms":0,"transaction_count":0}`,
		},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.Validate([]byte(tt.payload)))
		})
	}
}

func TestValidateRejectsContractViolations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"negative execution time", `{"execution_time_ms":-1}`},
		{"string execution time", `{"execution_time_ms":"fast"}`},
		{"fractional count", `{"transaction_count":3.5}`},
		{"negative count", `{"block_count":-2}`},
		{"hash list with number", `{"sample_hashes":["0xabc",7]}`},
		{"error as object", `{"error":{"code":1}}`},
		{"top level array", `[1,2,3]`},
		{"top level scalar", `42`},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate([]byte(tt.payload))
			require.Error(t, err)
		})
	}
}

func TestValidateSchemaErrorType(t *testing.T) {
	v := newValidator(t)

	err := v.Validate([]byte(`{"execution_time_ms":-5}`))
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.NotEmpty(t, se.Message)
}

func TestValidateRejectsMalformedJSON(t *testing.T) {
	v := newValidator(t)

	err := v.Validate([]byte(`{"transaction_count": `))
	require.Error(t, err)
}

func TestSchemaErrorFormatting(t *testing.T) {
	e := &SchemaError{Message: "conflicting values"}
	assert.Equal(t, "conflicting values", e.Error())
}
