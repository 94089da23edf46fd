// Package errors defines the MeGASampler error kinds and their disposition,
// following the error-code-table idiom of a compiler front end: a closed set
// of named kinds, each carrying a fixed severity and a human-readable
// description, so callers can switch on Kind rather than string-match
// error text.
//
// The kinds and their disposition mirror spec.md §7 exactly:
//
//	ParseError             fatal; exit 1
//	Unsat / Unknown        terminal success; flush, exit 0
//	Timeout                retry once without soft constraints; else abort epoch
//	MalformedArrayTerm     fatal; unsupported input
//	NoRuleForStrengthening recoverable; skip literal, continue
//	OverflowInSize         mark box infinite for stats; sampling proceeds
//	ValidationReject       drop the single draw; continue round
//	TimeBudgetExpired      terminal success; flush, exit 0
package errors

// Kind identifies one of the error categories of spec.md §7.
type Kind int

const (
	KindUnknown Kind = iota
	KindParseError
	KindUnsat
	KindUnknownResult
	KindTimeout
	KindMalformedArrayTerm
	KindNoRuleForStrengthening
	KindOverflowInSize
	KindValidationReject
	KindTimeBudgetExpired
)

// Disposition says what the caller that receives an error of this Kind
// should do with it.
type Disposition int

const (
	// DispositionFatal means: stop the whole run, exit non-zero.
	DispositionFatal Disposition = iota
	// DispositionTerminalSuccess means: stop the run cleanly, exit 0.
	DispositionTerminalSuccess
	// DispositionRetry means: retry the operation once under a relaxed mode.
	DispositionRetry
	// DispositionRecoverable means: skip the offending unit of work, continue.
	DispositionRecoverable
)

func (k Kind) String() string {
	switch k {
	case KindParseError:
		return "ParseError"
	case KindUnsat:
		return "Unsat"
	case KindUnknownResult:
		return "Unknown"
	case KindTimeout:
		return "Timeout"
	case KindMalformedArrayTerm:
		return "MalformedArrayTerm"
	case KindNoRuleForStrengthening:
		return "NoRuleForStrengthening"
	case KindOverflowInSize:
		return "OverflowInSize"
	case KindValidationReject:
		return "ValidationReject"
	case KindTimeBudgetExpired:
		return "TimeBudgetExpired"
	default:
		return "Unknown"
	}
}

// Disposition returns how a caller should react to an error of kind k.
func (k Kind) Disposition() Disposition {
	switch k {
	case KindParseError, KindMalformedArrayTerm:
		return DispositionFatal
	case KindUnsat, KindUnknownResult, KindTimeBudgetExpired:
		return DispositionTerminalSuccess
	case KindTimeout:
		return DispositionRetry
	default:
		return DispositionRecoverable
	}
}

// Description returns a short human-readable description, mirroring the
// GetErrorDescription lookup idiom.
func (k Kind) Description() string {
	switch k {
	case KindParseError:
		return "input formula failed to parse"
	case KindUnsat:
		return "oracle reported the formula unsatisfiable"
	case KindUnknownResult:
		return "oracle returned unknown for check-sat"
	case KindTimeout:
		return "oracle call exceeded its per-call timeout"
	case KindMalformedArrayTerm:
		return "an array-equality side is neither a constant array nor a store-chain rooted at one"
	case KindNoRuleForStrengthening:
		return "no strengthening rule matches this literal's operator"
	case KindOverflowInSize:
		return "interval-box size computation overflowed; box marked infinite for stats"
	case KindValidationReject:
		return "a sample draw failed validation against prior array commitments"
	case KindTimeBudgetExpired:
		return "the global wall-clock budget expired"
	default:
		return "unknown error"
	}
}
