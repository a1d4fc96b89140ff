// Package report formats one analysis run's issues for human and
// machine consumers: a colorized text report, a JSON report, and a
// replacements file the `fix` subcommand consumes.
//
// Grounded on the teacher's CLI entry point's own terminal-color check
// (internal/evaluator/builtins_term.go's isatty.IsTerminal/
// IsCygwinTerminal pair) before colorizing, generalized from REPL output
// coloring to issue-severity coloring. Libraries: github.com/mattn/
// go-isatty (color decision), github.com/dustin/go-humanize (summary
// line), github.com/google/uuid (run id, teacher direct dep).
package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/vetta-lang/vetta/internal/issues"
)

// Run bundles one analysis run's results plus metadata for reporting.
type Run struct {
	ID          string
	FilesCount  int
	BytesCount  int64
	Elapsed     float64 // seconds
	Issues      []issues.Issue
	Severities  map[issues.Kind]issues.Severity
}

// NewRun stamps a fresh run id via uuid.NewString, exactly the
// correlation id scheme spec.md's cache/report/migrate batches share —
// never used for data-flow node identity, which stays deterministic.
func NewRun(allIssues []issues.Issue, severities map[issues.Kind]issues.Severity) *Run {
	return &Run{ID: uuid.NewString(), Issues: allIssues, Severities: severities}
}

func severityOf(r *Run, k issues.Kind) issues.Severity {
	if r.Severities != nil {
		if s, ok := r.Severities[k]; ok {
			return s
		}
	}
	return issues.DefaultSeverity(k)
}

// ExitCode implements spec.md §6's exit-code mapping: 0 clean, 1 only
// warnings/info, 2 at least one error-severity issue, 3 a tool failure
// (the caller sets 3 itself when the run fails, never from this
// function).
func ExitCode(r *Run) int {
	sawWarning := false
	for _, iss := range r.Issues {
		switch severityOf(r, iss.Kind) {
		case issues.SeverityError:
			return 2
		case issues.SeverityWarning, issues.SeverityInfo:
			sawWarning = true
		}
	}
	if sawWarning {
		return 1
	}
	return 0
}

func sortedIssues(in []issues.Issue) []issues.Issue {
	out := append([]issues.Issue(nil), in...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position.File != out[j].Position.File {
			return out[i].Position.File < out[j].Position.File
		}
		if out[i].Position.Line != out[j].Position.Line {
			return out[i].Position.Line < out[j].Position.Line
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
	colorReset  = "\x1b[0m"
)

func colorFor(sev issues.Severity) string {
	switch sev {
	case issues.SeverityError:
		return colorRed
	case issues.SeverityWarning:
		return colorYellow
	default:
		return colorBlue
	}
}

// WriteText renders r as a human-readable report, colorizing severity
// labels when out is a real terminal (mirrors the teacher's own
// isatty.IsTerminal || isatty.IsCygwinTerminal check).
func WriteText(out io.Writer, r *Run) {
	useColor := false
	if f, ok := out.(*os.File); ok {
		fd := f.Fd()
		useColor = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	for _, iss := range sortedIssues(r.Issues) {
		sev := severityOf(r, iss.Kind)
		label := severityLabel(sev)
		if useColor {
			fmt.Fprintf(out, "%s%s:%d: %s%s: %s (%s)\n", colorFor(sev), iss.Position.File, iss.Position.Line, colorReset, label, iss.Message, iss.Kind)
		} else {
			fmt.Fprintf(out, "%s:%d: %s: %s (%s)\n", iss.Position.File, iss.Position.Line, label, iss.Message, iss.Kind)
		}
	}
	fmt.Fprintf(out, "analyzed %s files (%s) in %s, %s issues\n",
		humanize.Comma(int64(r.FilesCount)),
		humanize.Bytes(uint64(r.BytesCount)),
		humanize.FormatFloat("#,###.##", r.Elapsed)+"s",
		humanize.Comma(int64(len(r.Issues))))
}

func severityLabel(sev issues.Severity) string {
	switch sev {
	case issues.SeverityError:
		return "error"
	case issues.SeverityWarning:
		return "warning"
	case issues.SeverityInfo:
		return "info"
	default:
		return "off"
	}
}
