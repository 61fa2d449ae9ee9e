package models

// DiagnosticSeverity separates recoverable input-quality warnings from
// per-holding data-integrity faults.
type DiagnosticSeverity string

const (
	SeverityWarning DiagnosticSeverity = "WARNING"
	SeverityFault   DiagnosticSeverity = "FAULT"
)

// Diagnostic is one condition raised during a reconciliation run. Warnings
// mean a transaction was skipped or a benefit could not be applied; faults
// mean a holding's statutory record disagrees with the parsed stream and its
// processing was aborted.
type Diagnostic struct {
	Severity DiagnosticSeverity `json:"severity"`
	Scheme   string             `json:"scheme,omitempty"`
	Folio    string             `json:"folio,omitempty"`
	Message  string             `json:"message"`
}
