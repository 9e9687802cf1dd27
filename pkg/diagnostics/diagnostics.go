// Package diagnostics defines the diagnostics reported while converting and
// expanding trees, and the sinks they are reported to.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Diagnostic code constants.
const (
	EExpansion  = "E_EXPANSION"
	EMalformed  = "E_MALFORMED"
	EParse      = "E_PARSE"
	ESpecialize = "E_SPECIALIZE"
)

// Diagnostic is one reported failure.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message, hint string) Diagnostic {
	return Diagnostic{Code: code, Message: message, Hint: hint}
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	out := fmt.Sprintf("error[%s]: %s", d.Code, d.Message)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n")
}

// Writer prints every diagnostic as a line on W.
type Writer struct {
	W      io.Writer
	Pretty bool
}

// Report implements Reporter.
func (w *Writer) Report(d Diagnostic) {
	fmt.Fprintln(w.W, FormatDiagnostic(d, w.Pretty))
}

// Collector keeps every diagnostic reported to it.
type Collector struct {
	Diags []Diagnostic
}

// Report implements Reporter.
func (c *Collector) Report(d Diagnostic) {
	c.Diags = append(c.Diags, d)
}

// Has reports whether a diagnostic with code was collected.
func (c *Collector) Has(code string) bool {
	for _, d := range c.Diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Reset drops the collected diagnostics.
func (c *Collector) Reset() {
	c.Diags = nil
}

// Discard drops every diagnostic.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}
