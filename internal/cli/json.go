package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/modelmint/mintkey/internal/errors"
	"gopkg.in/yaml.v3"
)

// JSONEnvelope wraps structured command output in a consistent shape for
// scripts. YAML output uses the same envelope.
type JSONEnvelope struct {
	Success bool        `json:"success" yaml:"success"`
	Data    interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty" yaml:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code" yaml:"code"`
	Message    string      `json:"message" yaml:"message"`
	Suggestion string      `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// ErrCodeUnknown is used for errors that carry no code of their own.
const ErrCodeUnknown = "UNKNOWN"

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

// WriteYAMLSuccess writes a successful response with data as YAML.
func WriteYAMLSuccess(w io.Writer, data interface{}) error {
	return writeYAMLEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteYAMLFromError converts a Go error to a YAML error response.
func WriteYAMLFromError(w io.Writer, err error) error {
	return writeYAMLEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func writeYAMLEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(env); err != nil {
		return err
	}
	return enc.Close()
}

// ErrorToJSON converts a Go error to a JSONError. Structured errors keep
// their code; anything else is UNKNOWN.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var mkErr *errors.Error
	if stderrors.As(err, &mkErr) {
		code := mkErr.Code
		if code == "" {
			code = ErrCodeUnknown
		}
		jsonErr := &JSONError{
			Code:       code,
			Message:    mkErr.Message,
			Suggestion: mkErr.Suggestion,
		}
		if mkErr.Cause != nil {
			jsonErr.Details = map[string]interface{}{
				"cause": errors.Summary(mkErr.Cause),
			}
		}
		return jsonErr
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// writeStructured renders data (or err) in the requested machine format.
func writeStructured(w io.Writer, format string, data interface{}, err error) error {
	switch format {
	case FormatYAML:
		if err != nil {
			return WriteYAMLFromError(w, err)
		}
		return WriteYAMLSuccess(w, data)
	default:
		if err != nil {
			return WriteJSONFromError(w, err)
		}
		return WriteJSONSuccess(w, data)
	}
}
