package ai

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredential means the provider rejected the configured API key
	ErrInvalidCredential = errors.New("ai: invalid credential")
	// ErrUnavailable covers network failures, timeouts and non-2xx responses
	ErrUnavailable = errors.New("ai: model unavailable")
	// ErrEmptyOutput means the model answered without usable content
	ErrEmptyOutput = errors.New("ai: empty model output")
	// ErrNoImage means an image flow finished without an image part
	ErrNoImage = errors.New("no image produced")
	// ErrDisabled means the AI layer is switched off for this process
	ErrDisabled = errors.New("ai: features disabled")
	// ErrUnsupported means the configured provider cannot serve the request
	ErrUnsupported = errors.New("ai: unsupported by provider")
)

// Kind classifies a flow failure for callers that need to react differently
type Kind string

const (
	KindCredential    Kind = "credential"
	KindUnavailable   Kind = "unavailable"
	KindInvalidOutput Kind = "invalid_output"
	KindNoResult      Kind = "no_result"
	KindInvalidInput  Kind = "invalid_input"
	KindDisabled      Kind = "disabled"
)

// SchemaError lists the constraints a model document violated
type SchemaError struct {
	Schema     string
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ai: %s output does not match schema: %s", e.Schema, strings.Join(e.Violations, "; "))
}

// FlowError is returned by flows that have no deterministic fallback
type FlowError struct {
	Flow string
	Kind Kind
	Err  error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s flow: %s: %v", e.Flow, e.Kind, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Message returns text suitable for direct display to a storefront operator
func (e *FlowError) Message() string {
	switch e.Kind {
	case KindCredential:
		return "The AI service rejected its API key. Check the configured credential; AI features are disabled until the service restarts."
	case KindUnavailable:
		return "The AI service is temporarily unavailable. Please try again in a few minutes."
	case KindInvalidOutput:
		return "The AI service returned an answer we could not use. Please try again."
	case KindNoResult:
		return "The AI service did not produce a result for this request."
	case KindDisabled:
		return "AI features are turned off. Configure a valid API key and restart the service to enable them."
	case KindInvalidInput:
		return "Some required information is missing or invalid: " + e.Err.Error()
	default:
		return "Something went wrong while talking to the AI service."
	}
}

// Classify maps an error returned by the model or the schema validator to a Kind
func Classify(err error) Kind {
	var schemaErr *SchemaError
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return KindCredential
	case errors.Is(err, ErrDisabled):
		return KindDisabled
	case errors.Is(err, ErrNoImage), errors.Is(err, ErrEmptyOutput), errors.Is(err, ErrUnsupported):
		return KindNoResult
	case errors.As(err, &schemaErr):
		return KindInvalidOutput
	default:
		// transport failures and timeouts
		return KindUnavailable
	}
}

// wrapFlow builds the FlowError for a failed flow, keeping an existing one as is
func wrapFlow(flow string, err error) error {
	var fe *FlowError
	if errors.As(err, &fe) {
		return err
	}
	return &FlowError{Flow: flow, Kind: Classify(err), Err: err}
}

func invalidInput(flow string, err error) error {
	return &FlowError{Flow: flow, Kind: KindInvalidInput, Err: err}
}

// IsCredentialError reports whether err should switch the AI layer off
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrInvalidCredential)
}
