package errx

const (
	// CodeInvalidIntent rejects a player intent the current state does not
	// allow. The reason says which rule failed.
	CodeInvalidIntent Code = "INVALID_INTENT"
	// CodeNotFound is a missing saved game or other addressed resource.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeReqParamError is a malformed request.
	CodeReqParamError Code = "CODE_REQ_PARAM_ERROR"
)

// Sentinels. Derive context with WithData/WithReason/WithCause.
var (
	ErrInvalidIntent = New(CodeInvalidIntent, "intent not allowed")
	ErrNotFound      = New(CodeNotFound, "not found")
	ErrInternal      = New(CodeInternal, "internal error")
	ErrReqParamERR   = New(CodeReqParamError, "bad request parameters")
)
