package diagnostic

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/lhaig/wasmc/internal/est"
)

// LogrusSink adapts Logger to a *logrus.Logger, the convention this
// repository's CLI uses for every other piece of operational output.
type LogrusSink struct {
	Log_ *logrus.Logger
}

// NewLogrusSink builds a sink writing through a freshly configured
// logrus.Logger at info level with the text formatter.
func NewLogrusSink() *LogrusSink {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &LogrusSink{Log_: l}
}

var severityColor = map[Severity]*color.Color{
	Error:   color.New(color.FgRed, color.Bold),
	Warning: color.New(color.FgYellow, color.Bold),
	Note:    color.New(color.FgCyan),
}

// Log implements Logger.
func (s *LogrusSink) Log(severity Severity, message string, loc *est.Location) {
	fields := logrus.Fields{}
	if loc != nil {
		if loc.File != "" {
			fields["file"] = loc.File
		}
		if loc.Start != nil {
			fields["line"] = loc.Start.Line
			fields["col"] = loc.Start.Column
		}
	}
	entry := s.Log_.WithFields(fields)
	label := severityColor[severity].Sprint(severity.String())
	switch severity {
	case Error:
		entry.Error(label + ": " + message)
	case Warning:
		entry.Warn(label + ": " + message)
	default:
		entry.Info(label + ": " + message)
	}
}

// CapturingSink is an in-memory Logger used by tests that need to assert
// on emitted diagnostics without touching a terminal.
type CapturingSink struct {
	Records []Diagnostic
}

// Log implements Logger.
func (c *CapturingSink) Log(severity Severity, message string, loc *est.Location) {
	c.Records = append(c.Records, Diagnostic{Severity: severity, Message: message, Loc: loc})
}
