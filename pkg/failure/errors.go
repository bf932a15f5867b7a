package failure

type Severity int

// fetcher control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is the error contract shared by every pipeline stage.
// Severity tells the orchestrating code whether a failure is terminal for
// the whole request or only for the unit of work that produced it.
type ClassifiedError interface {
	error
	Severity() Severity
}
