package report

import (
	"fmt"

	"go.uber.org/zap"
)

// Severity classifies a recoverable diagnostic. Fatal failures are not
// diagnostics; they travel as errors and abort the run.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is one recoverable finding tied to a source file.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

// Reporter collects recoverable diagnostics during discovery and resolution
// and mirrors each one to the structured log as it arrives.
type Reporter struct {
	log   *zap.SugaredLogger
	diags []Diagnostic
}

// New creates a reporter. A nil logger falls back to a no-op logger so the
// passes never need nil checks.
func New(log *zap.SugaredLogger) *Reporter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reporter{log: log}
}

// Warnf records a warning diagnostic for a source file.
func (r *Reporter) Warnf(path string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.diags = append(r.diags, Diagnostic{Severity: SeverityWarning, Path: path, Message: msg})
	r.log.Warnw(msg, "file", path)
}

// Infof records an informational diagnostic for a source file.
func (r *Reporter) Infof(path string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.diags = append(r.diags, Diagnostic{Severity: SeverityInfo, Path: path, Message: msg})
	r.log.Infow(msg, "file", path)
}

// Diagnostics returns everything recorded so far, in arrival order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// WarningCount returns the number of warning-severity diagnostics.
func (r *Reporter) WarningCount() int {
	count := 0
	for _, d := range r.diags {
		if d.Severity == SeverityWarning {
			count++
		}
	}
	return count
}

// Len returns the total number of diagnostics.
func (r *Reporter) Len() int {
	return len(r.diags)
}
