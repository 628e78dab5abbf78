package env

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Diagnostics receives resolution failures. It is observability only and
// never drives control flow.
type Diagnostics interface {
	Report(severity Severity, msg string, err error)
}

// DiscardDiagnostics drops every report.
type DiscardDiagnostics struct{}

func (DiscardDiagnostics) Report(Severity, string, error) {}
