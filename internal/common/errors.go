package common

// Error codes returned in the error envelope. Handlers translate package
// sentinel errors into these so API clients see one stable vocabulary no
// matter which surface produced the failure.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeEmptyCart        = "EMPTY_CART"
	CodeNoSelection      = "NO_SELECTION"
	CodeIdempotentReplay = "IDEMPOTENT_REPLAY"
	CodeRateLimited      = "RATE_LIMITED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeUpstreamInvalid  = "UPSTREAM_INVALID"
	CodeUpstreamError    = "UPSTREAM_ERROR"
	CodeInternal         = "INTERNAL"
)
