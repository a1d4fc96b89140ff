// Package issues defines the closed, user-visible issue taxonomy
// (spec.md §7): every finding the analyzer emits is one of these kinds,
// never an ad hoc string. Grounded on the teacher's
// internal/typesystem/error.go sentinel-error idiom (a closed set of
// named values, not error-wrapping), generalized from a single error
// type to categorized issue kinds, and on
// original_source/src/file_scanner_analyzer/lib.rs for the category
// boundaries (type/flow/dead-code/taint).
package issues

// Kind is the closed taxonomy of issues the analyzer can emit.
type Kind string

const (
	// Type errors.
	InvalidArgument       Kind = "InvalidArgument"
	LessSpecificArgument  Kind = "LessSpecificArgument"
	InvalidReturnType     Kind = "InvalidReturnType"
	UndefinedVariable     Kind = "UndefinedVariable"
	NonExistentClass      Kind = "NonExistentClass"
	NonExistentFunction   Kind = "NonExistentFunction"
	NonExistentProperty   Kind = "NonExistentProperty"
	InvalidContainsCheck  Kind = "InvalidContainsCheck"

	// Flow warnings.
	RedundantTypeComparison Kind = "RedundantTypeComparison"
	TypeDoesNotContain      Kind = "TypeDoesNotContain"
	ImpossibleAssignment    Kind = "ImpossibleAssignment"
	UnrecognizedExpression  Kind = "UnrecognizedExpression"
	UnrecognizedStatement   Kind = "UnrecognizedStatement"

	// Dead-code.
	UnusedFunction                 Kind = "UnusedFunction"
	UnusedClass                    Kind = "UnusedClass"
	UnusedPrivateMethod            Kind = "UnusedPrivateMethod"
	UnusedPublicOrProtectedMethod  Kind = "UnusedPublicOrProtectedMethod"
	UnusedParameter                Kind = "UnusedParameter"
	UnusedExpression                Kind = "UnusedExpression"
)

// TaintKind builds a Kind for a given sink label, e.g. TaintKind("html")
// produces "TaintedHtml" (spec.md §7 "one kind per sink label").
func TaintKind(label string) Kind {
	if label == "" {
		return Kind("Tainted")
	}
	return Kind("Tainted" + capitalize(label))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// Category groups kinds for reporting/severity purposes.
type Category int

const (
	CategoryType Category = iota
	CategoryFlow
	CategoryDeadCode
	CategoryTaint
)

var typeKinds = map[Kind]bool{
	InvalidArgument: true, LessSpecificArgument: true, InvalidReturnType: true,
	UndefinedVariable: true, NonExistentClass: true, NonExistentFunction: true,
	NonExistentProperty: true, InvalidContainsCheck: true,
}

var flowKinds = map[Kind]bool{
	RedundantTypeComparison: true, TypeDoesNotContain: true, ImpossibleAssignment: true,
	UnrecognizedExpression: true, UnrecognizedStatement: true,
}

var deadCodeKinds = map[Kind]bool{
	UnusedFunction: true, UnusedClass: true, UnusedPrivateMethod: true,
	UnusedPublicOrProtectedMethod: true, UnusedParameter: true, UnusedExpression: true,
}

// CategoryOf classifies a kind; a taint kind is anything not in the
// other three closed sets (the taint category is open-ended, keyed by
// sink label, so it cannot be enumerated as a fixed map).
func CategoryOf(k Kind) Category {
	switch {
	case typeKinds[k]:
		return CategoryType
	case flowKinds[k]:
		return CategoryFlow
	case deadCodeKinds[k]:
		return CategoryDeadCode
	default:
		return CategoryTaint
	}
}

// Position locates an issue in source.
type Position struct {
	File   string
	Line   int
	Column int
}

// Issue is a single accumulated finding (spec.md §7: "issues are
// accumulated, never raised").
type Issue struct {
	Kind                  Kind
	Message               string
	Position              Position
	CallingFunctionlikeID string
}

// Severity is the config-driven mapping from kind to exit-code impact
// (spec.md §7 "Config-driven severity mapping determines exit code").
type Severity int

const (
	SeverityOff Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// DefaultSeverity gives every kind a sensible default before config
// overrides are applied.
func DefaultSeverity(k Kind) Severity {
	switch CategoryOf(k) {
	case CategoryType:
		return SeverityError
	case CategoryTaint:
		return SeverityError
	case CategoryDeadCode:
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// Collector accumulates issues during analysis with per-file and
// per-function suppression applied at emit time (spec.md §7).
type Collector struct {
	FileSuppressions map[string]map[Kind]bool
	issues           []Issue
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{FileSuppressions: make(map[string]map[Kind]bool)}
}

// Suppress registers a file-level suppression (`// @vetta-ignore <kind>`).
func (c *Collector) Suppress(file string, k Kind) {
	if c.FileSuppressions[file] == nil {
		c.FileSuppressions[file] = make(map[Kind]bool)
	}
	c.FileSuppressions[file][k] = true
}

// Add emits an issue unless it is suppressed by file or by the
// function-level suppressed-issues table passed in.
func (c *Collector) Add(issue Issue, functionSuppressed map[string]bool) {
	if c.FileSuppressions[issue.Position.File][issue.Kind] {
		return
	}
	if functionSuppressed != nil && functionSuppressed[string(issue.Kind)] {
		return
	}
	c.issues = append(c.issues, issue)
}

// Issues returns every accumulated, non-suppressed issue.
func (c *Collector) Issues() []Issue { return c.issues }

// Merge appends another collector's issues into c (worker-pool result
// merge, spec.md §5).
func (c *Collector) Merge(other *Collector) {
	c.issues = append(c.issues, other.issues...)
}
