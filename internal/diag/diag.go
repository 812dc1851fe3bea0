// Package diag defines the diagnostic event shared by every component that
// recovers an error locally instead of failing its query, per spec.md §7.
package diag

// Kind enumerates the error kinds the core surfaces, per spec.md §7.
type Kind uint8

const (
	UnresolvedMacro Kind = iota
	ConditionEvalFailure
	IntParseError
	UnresolvedInclude
	SyntaxError
	DeprecatedUse
	DuplicateDefinition
)

func (k Kind) String() string {
	switch k {
	case UnresolvedMacro:
		return "unresolved-macro"
	case ConditionEvalFailure:
		return "condition-eval-failure"
	case IntParseError:
		return "int-parse-error"
	case UnresolvedInclude:
		return "unresolved-include"
	case SyntaxError:
		return "syntax-error"
	case DeprecatedUse:
		return "deprecated-use"
	case DuplicateDefinition:
		return "duplicate-definition"
	default:
		return "unknown"
	}
}

// Range is a byte-offset span, deliberately duplicated from lexer.Range
// rather than imported, so diag has no dependency on the lexer package and
// every component (including ones that never touch tokens, like itemtree)
// can report diagnostics.
type Range struct {
	Start, End int
}

// Diagnostic is one recovered error, attached to the output of the query
// that produced it. Diagnostics never abort a query: spec.md §4.1 "Failure
// semantics" makes cancellation the only failure mode.
type Diagnostic struct {
	Kind    Kind
	Range   Range
	Message string
	// Name is the identifier or path the diagnostic concerns, when
	// applicable (macro name, include path, deprecated target).
	Name string
}
