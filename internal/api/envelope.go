package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire format version reported in the "v" field.
// Clients check this before parsing the rest of the envelope.
const envelopeVersion = 1

// successEnvelope wraps successful response bodies.
type successEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// errorEnvelope wraps error response bodies. Simple errors carry only the
// Error string; detailed errors add a machine-readable code and details.
type errorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the versioned envelope.
// Register it on the huma config before creating the API.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		env := errorEnvelope{
			V:     envelopeVersion,
			Error: apiErr.Message,
		}
		if apiErr.Code != "" {
			env.Code = apiErr.Code
			env.Message = apiErr.Message
			env.Details = apiErr.Details
		}
		return env, nil
	}

	// Status codes are three-digit strings, so ordinal comparison works.
	if status >= "400" {
		env := errorEnvelope{V: envelopeVersion}
		if err, ok := v.(error); ok {
			env.Error = err.Error()
		}
		return env, nil
	}

	return successEnvelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
