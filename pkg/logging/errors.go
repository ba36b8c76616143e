// licita/pkg/logging/errors.go

package logging

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type ErrorType string

const (
	ErrorTypeParse      ErrorType = "PARSE"
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeExtract    ErrorType = "EXTRACT"
	ErrorTypeExport     ErrorType = "EXPORT"
	ErrorTypeTransport  ErrorType = "TRANSPORT"
	ErrorTypeConfig     ErrorType = "CONFIG"
)

// LicitaError is the error returned by the I/O collaborators around the
// analyzer (rule packs, extraction, export, transport). The analyzer itself
// never fails.
type LicitaError struct {
	Type    ErrorType
	Message string
	Err     error
	Fields  map[string]interface{}
}

func (e *LicitaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *LicitaError) Unwrap() error {
	return e.Err
}

func NewError(errType ErrorType, message string, err error, fields map[string]interface{}) *LicitaError {
	return &LicitaError{
		Type:    errType,
		Message: message,
		Err:     err,
		Fields:  fields,
	}
}

// IsType reports whether err wraps a LicitaError of the given type.
func IsType(err error, errType ErrorType) bool {
	var le *LicitaError
	if errors.As(err, &le) {
		return le.Type == errType
	}
	return false
}

func LogError(logger zerolog.Logger, err error) {
	var le *LicitaError
	if !errors.As(err, &le) {
		logger.Error().Err(err).Msg(err.Error())
		return
	}

	event := logger.Error().Err(le.Err).
		Str("error_type", string(le.Type)).
		Str("message", le.Message)

	for k, v := range le.Fields {
		event = event.Interface(k, v)
	}

	event.Msg(le.Message)
}
