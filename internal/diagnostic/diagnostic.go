// Package diagnostic collects and reports compiler diagnostics: the
// user-attributable half of the error taxonomy (the ICE/panic-class half
// lives alongside each component that can hit an internal-consistency
// failure, wrapped with github.com/pkg/errors).
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/lhaig/wasmc/internal/est"
)

// Severity is the level of a diagnostic message.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

// String returns the textual form of a severity level.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Diagnostic is a single compiler message, optionally located in source.
type Diagnostic struct {
	Severity Severity
	Message  string
	Loc      *est.Location
}

// Logger is a passive sink for diagnostics. It is injected, never global,
// so tests can capture output instead of writing to a terminal.
type Logger interface {
	Log(severity Severity, message string, loc *est.Location)
}

// Diagnostics accumulates messages produced during a single compilation
// and also implements Logger, so a pipeline stage can log directly into
// the same collection the orchestrator inspects for HasErrors.
type Diagnostics struct {
	items  []Diagnostic
	logger Logger
}

// New creates an empty collection. If logger is non-nil, every recorded
// diagnostic is additionally forwarded to it as it arrives.
func New(logger Logger) *Diagnostics {
	return &Diagnostics{logger: logger}
}

// Log implements Logger, recording the message and forwarding it.
func (d *Diagnostics) Log(severity Severity, message string, loc *est.Location) {
	d.items = append(d.items, Diagnostic{Severity: severity, Message: message, Loc: loc})
	if d.logger != nil {
		d.logger.Log(severity, message, loc)
	}
}

// Errorf records a formatted error diagnostic at the given location.
func (d *Diagnostics) Errorf(loc *est.Location, format string, args ...interface{}) {
	d.Log(Error, fmt.Sprintf(format, args...), loc)
}

// Warningf records a formatted warning diagnostic at the given location.
func (d *Diagnostics) Warningf(loc *est.Location, format string, args ...interface{}) {
	d.Log(Warning, fmt.Sprintf(format, args...), loc)
}

// Notef records a formatted note diagnostic at the given location.
func (d *Diagnostics) Notef(loc *est.Location, format string, args ...interface{}) {
	d.Log(Note, fmt.Sprintf(format, args...), loc)
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// All returns every diagnostic recorded so far, in recording order.
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the number of recorded diagnostics.
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// Format renders all diagnostics as human-readable lines, one per
// diagnostic, falling back to defaultFile when a diagnostic carries no
// location of its own.
func (d *Diagnostics) Format(defaultFile string) string {
	if len(d.items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range d.items {
		file := defaultFile
		line, col := 0, 0
		if item.Loc != nil {
			if item.Loc.File != "" {
				file = item.Loc.File
			}
			if item.Loc.Start != nil {
				line, col = item.Loc.Start.Line, item.Loc.Start.Column
			}
		}
		fmt.Fprintf(&b, "%s[%s:%d:%d]: %s", item.Severity, file, line, col, item.Message)
		if i < len(d.items)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
