package engine

import (
	"errors"
	"strings"
)

// ConfigurationError reports a missing credential or reference file.
type ConfigurationError struct {
	Engine  string
	Message string

	Err error
}

func (e *ConfigurationError) Error() string {
	msg := e.Engine + ": " + e.Message

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// InitializationError reports that a model could not be acquired. The engine stays
// uninitialized and Initialize may be retried.
type InitializationError struct {
	Engine string
	Err    error
}

func (e *InitializationError) Error() string {
	return e.Engine + ": initialization failed: " + e.Err.Error()
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

type UnknownEngineError struct {
	Name      string
	Available []string
}

func (e *UnknownEngineError) Error() string {
	return "unknown engine \"" + e.Name + "\", available engines: " + strings.Join(e.Available, ", ")
}

// SynthesisError wraps a backend or write failure of an initialized engine.
type SynthesisError struct {
	Engine string
	Err    error
}

func (e *SynthesisError) Error() string {
	return e.Engine + ": synthesis failed: " + e.Err.Error()
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func NewConfigurationError(engine, message string) error {
	return &ConfigurationError{Engine: engine, Message: message}
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsInitialization(err error) bool {
	var target *InitializationError
	return errors.As(err, &target)
}

func IsUnknownEngine(err error) bool {
	var target *UnknownEngineError
	return errors.As(err, &target)
}

func IsSynthesis(err error) bool {
	var target *SynthesisError
	return errors.As(err, &target)
}

// Synthesis wraps err unless it already carries a classification.
func Synthesis(engine string, err error) error {
	if err == nil {
		return nil
	}

	if IsConfiguration(err) || IsSynthesis(err) || IsInitialization(err) {
		return err
	}

	return &SynthesisError{Engine: engine, Err: err}
}
