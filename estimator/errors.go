package estimator

// Fixed user-facing validation messages. The HTTP layer returns these
// verbatim in the "error" field, so the wording is part of the API contract.
const (
	MsgDimensionsNotPositive  = "Height and width must be positive numbers."
	MsgDimensionsNotMultiple  = "Input dimensions must be multiples of 8."
	MsgPromptLengthOutOfRange = "Prompt length must be between 1 and 77 tokens."

	// DetailsMultipleOf8 is the corrective guidance attached to the
	// multiples-of-8 failure.
	DetailsMultipleOf8 = "Please use dimensions divisible by 8 (e.g., 512, 768, 1024)."
)

// ValidationError is the only error kind the estimator produces.
// It always represents a client-input problem (HTTP 400 territory),
// never an internal failure.
type ValidationError struct {
	// Message is the fixed user-facing message.
	Message string

	// Details is optional corrective guidance (empty when none applies).
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// newValidationError builds a ValidationError with an optional details string.
func newValidationError(message, details string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}
