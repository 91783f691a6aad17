package rpc

// Reason is the closed set of failure reasons an error code maps to.
//
//go:generate go tool enumer -type=Reason -trimprefix=Reason -linecomment
type Reason int

const (
	ReasonUnknown                        Reason = iota // unknown
	ReasonInvalidRequest                               // invalid-request
	ReasonRateLimited                                  // rate-limited
	ReasonGlossaryLanguageUnsupported                  // glossary-language-unsupported
	ReasonGlossaryDuplicateLanguagePair                // glossary-duplicate-language-pair
	ReasonGlossaryCombinationUnsupported               // glossary-combination-unsupported
	ReasonGlossaryHeaderMalformed                      // glossary-header-malformed
	ReasonGlossaryLanguageMismatch                     // glossary-call-language-mismatch
)
