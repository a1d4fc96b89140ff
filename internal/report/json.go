package report

import (
	"encoding/json"
	"io"

	"github.com/vetta-lang/vetta/internal/issues"
)

type jsonIssue struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

type jsonReport struct {
	RunID  string      `json:"run_id"`
	Files  int         `json:"files"`
	Bytes  int64       `json:"bytes"`
	Issues []jsonIssue `json:"issues"`
}

// WriteJSON renders r as the machine-readable report consumed by
// editor integrations and `vetta analyze --serve` clients.
func WriteJSON(out io.Writer, r *Run) error {
	doc := jsonReport{RunID: r.ID, Files: r.FilesCount, Bytes: r.BytesCount}
	for _, iss := range sortedIssues(r.Issues) {
		doc.Issues = append(doc.Issues, jsonIssue{
			Kind:     string(iss.Kind),
			Severity: severityLabel(severityOf(r, iss.Kind)),
			Message:  iss.Message,
			File:     iss.Position.File,
			Line:     iss.Position.Line,
			Column:   iss.Position.Column,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Replacement is one span-for-text substitution the `fix` subcommand
// applies. Kind mirrors the issue the fix addresses so a replacements
// file can be filtered down to one category before applying.
type Replacement struct {
	File    string    `json:"file"`
	Line    int       `json:"line"`
	Column  int       `json:"column"`
	EndLine int       `json:"end_line"`
	EndCol  int       `json:"end_col"`
	NewText string    `json:"new_text"`
	Kind    issues.Kind `json:"kind"`
}

// WriteReplacements renders a fix batch as the replacements file the
// `fix` subcommand reads back and applies.
func WriteReplacements(out io.Writer, runID string, replacements []Replacement) error {
	doc := struct {
		RunID        string        `json:"run_id"`
		Replacements []Replacement `json:"replacements"`
	}{RunID: runID, Replacements: replacements}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
