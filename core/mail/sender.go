package mail

import "context"

// Result reports the outcome of a single send operation. Transport-phase
// failures are captured here instead of being raised, so batch callers can
// inspect partial success without an error interrupting the run.
type Result struct {
	Success bool
	// MessageID is the generated Message-ID header value, set on success.
	MessageID string
	// Recipients lists the addresses accepted by the transport. On a partial
	// delivery failure it holds the accepted-so-far subset.
	Recipients []string
	// ErrorMessage is a human-readable description, set iff Success is false.
	ErrorMessage string
	// Err carries the underlying error for errors.Is/As inspection.
	Err error
}

// Failure builds a failed Result from an error, keeping any recipients the
// transport had already accepted.
func Failure(err error, accepted ...string) *Result {
	return &Result{
		Success:      false,
		Recipients:   accepted,
		ErrorMessage: err.Error(),
		Err:          err,
	}
}

// Sender delivers a message through some provider (SMTP, API, local files).
//
// The returned error covers only pre-flight failures: message validation and
// API misuse. Anything that goes wrong during or after network I/O is
// reported inside the Result with Success=false and a nil error.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
}
