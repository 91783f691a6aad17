package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/deeplweb/internal/transport"
)

// Known error codes returned by the web translator or raised locally for
// glossary configuration mistakes. The 5000 range is not part of the remote
// protocol.
const (
	CodeInvalidJobParams         = -32600
	CodeTooManyRequests          = 1042911
	CodeTooManyRequestsAlt       = 1042912
	CodeInvalidRequest           = 1156049
	CodeGlossaryLanguage         = 5000
	CodeGlossarySameLanguage     = 5001
	CodeGlossaryCombinationEN    = 5002
	CodeGlossaryCombinationFR    = 5003
	CodeGlossaryCombinationDE    = 5004
	CodeGlossaryCombinationES    = 5005
	CodeGlossaryCombinationIT    = 5006
	CodeGlossaryCombinationPL    = 5007
	CodeGlossaryCombinationJA    = 5008
	CodeGlossaryCombinationNL    = 5009
	CodeGlossaryHeader           = 5010
	CodeGlossaryLanguageMismatch = 5011
)

var (
	ErrInvalidRequest                 = errors.New("invalid request")
	ErrRateLimited                    = errors.New("too many requests")
	ErrGlossaryLanguageUnsupported    = errors.New("unsupported language for glossary")
	ErrGlossaryDuplicateLanguagePair  = errors.New("glossary source and target language are the same")
	ErrGlossaryCombinationUnsupported = errors.New("unsupported glossary language combination")
	ErrGlossaryHeaderMalformed        = errors.New("malformed glossary header")
	ErrGlossaryLanguageMismatch       = errors.New("glossary languages do not match the call")
	ErrUnknownCode                    = errors.New("unknown error code")
	ErrUnexpectedStatus               = errors.New("unexpected response status")
	ErrEmptyResult                    = errors.New("response carries neither result nor error")
)

var knownMessages = map[int]string{
	CodeInvalidJobParams:         "Invalid Request: Invalid commonJobParams.",
	CodeTooManyRequests:          "Too many requests.",
	CodeTooManyRequestsAlt:       "Too many requests.",
	CodeInvalidRequest:           "Invalid Request",
	CodeGlossaryLanguage:         "Unsupported language for glossary.",
	CodeGlossarySameLanguage:     "Invalid glossary: same source and target language.",
	CodeGlossaryCombinationEN:    "Invalid glossary: EN can only be combined with FR, DE, ES, IT, PL, JA, NL.",
	CodeGlossaryCombinationFR:    "Invalid glossary: FR can only be combined with EN, DE, ES, IT, PL, JA, NL.",
	CodeGlossaryCombinationDE:    "Invalid glossary: DE can only be combined with EN, FR, ES, IT, PL, JA, NL.",
	CodeGlossaryCombinationES:    "Invalid glossary: ES can only be combined with EN, FR, DE, IT, PL, JA, NL.",
	CodeGlossaryCombinationIT:    "Invalid glossary: IT can only be combined with EN, FR, DE, ES, PL, JA, NL.",
	CodeGlossaryCombinationPL:    "Invalid glossary: PL can only be combined with EN, FR, DE, ES, IT, JA, NL.",
	CodeGlossaryCombinationJA:    "Invalid glossary: JA can only be combined with EN, FR, DE, ES, IT, PL, NL.",
	CodeGlossaryCombinationNL:    "Invalid glossary: NL can only be combined with EN, FR, DE, ES, IT, PL, JA.",
	CodeGlossaryHeader:           "Invalid glossary: error in the header declaring the source and target languages.",
	CodeGlossaryLanguageMismatch: "The glossary language pair does not correspond to the pair of the translate call.",
}

// Classify maps a numeric error code to its reason.
func Classify(code int) Reason {
	switch {
	case code == CodeInvalidJobParams, code == CodeInvalidRequest:
		return ReasonInvalidRequest
	case code == CodeTooManyRequests, code == CodeTooManyRequestsAlt:
		return ReasonRateLimited
	case code == CodeGlossaryLanguage:
		return ReasonGlossaryLanguageUnsupported
	case code == CodeGlossarySameLanguage:
		return ReasonGlossaryDuplicateLanguagePair
	case code >= CodeGlossaryCombinationEN && code <= CodeGlossaryCombinationNL:
		return ReasonGlossaryCombinationUnsupported
	case code == CodeGlossaryHeader:
		return ReasonGlossaryHeaderMalformed
	case code == CodeGlossaryLanguageMismatch:
		return ReasonGlossaryLanguageMismatch
	default:
		return ReasonUnknown
	}
}

// Error is a classified error code. Code always holds the raw value so unknown
// codes stay diagnosable.
type Error struct {
	Code    int
	Message string
	Reason  Reason
}

// NewError classifies code. An empty message is replaced by the known
// description of the code, if any.
func NewError(code int, message string) *Error {
	if message == "" {
		message = knownMessages[code]
	}
	return &Error{
		Code:    code,
		Message: message,
		Reason:  Classify(code),
	}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rpc error %d (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("rpc error %d (%s): %s", e.Code, e.Reason, e.Message)
}

// Unwrap exposes the sentinel of the error's reason for errors.Is.
func (e *Error) Unwrap() error {
	switch e.Reason {
	case ReasonInvalidRequest:
		return ErrInvalidRequest
	case ReasonRateLimited:
		return ErrRateLimited
	case ReasonGlossaryLanguageUnsupported:
		return ErrGlossaryLanguageUnsupported
	case ReasonGlossaryDuplicateLanguagePair:
		return ErrGlossaryDuplicateLanguagePair
	case ReasonGlossaryCombinationUnsupported:
		return ErrGlossaryCombinationUnsupported
	case ReasonGlossaryHeaderMalformed:
		return ErrGlossaryHeaderMalformed
	case ReasonGlossaryLanguageMismatch:
		return ErrGlossaryLanguageMismatch
	case ReasonUnknown:
		return ErrUnknownCode
	default:
		return ErrUnknownCode
	}
}

// IsConfigError reports whether err is a glossary configuration mistake.
// These are caller bugs and must not be retried or swallowed.
func IsConfigError(err error) bool {
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		return false
	}

	switch rpcErr.Reason {
	case ReasonGlossaryLanguageUnsupported,
		ReasonGlossaryDuplicateLanguagePair,
		ReasonGlossaryCombinationUnsupported,
		ReasonGlossaryHeaderMalformed,
		ReasonGlossaryLanguageMismatch:
		return true
	case ReasonUnknown, ReasonInvalidRequest, ReasonRateLimited:
		return false
	default:
		return false
	}
}

// IsTemporary reports whether a caller may retry after err. Only rate
// limiting and failures of the exchange itself are temporary: requests that
// never got a response (including an open circuit breaker), truncated
// responses and non-2xx statuses without an error envelope.
func IsTemporary(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, transport.ErrRequestFailed) ||
		errors.Is(err, transport.ErrReadBody) ||
		errors.Is(err, ErrUnexpectedStatus)
}
