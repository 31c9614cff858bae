// Package source reads host telemetry sources (files and helper commands)
// and reports every outcome as a typed Result instead of an error.
package source

// Reason classifies why a value could not be produced.
type Reason string

const (
	// Source errors
	SourceNotFound   Reason = "source_not_found"
	PermissionDenied Reason = "permission_denied"
	MalformedValue   Reason = "malformed_value"

	// Command errors
	CommandUnavailable Reason = "command_unavailable"
	CommandFailed      Reason = "command_failed"
	Timeout            Reason = "timeout"

	// Catch-all for I/O failures that fit no other category
	UnexpectedError Reason = "unexpected_error"

	// Values that are never produced on purpose
	NotAvailable Reason = "not_available"
	Disabled     Reason = "disabled"
)

var reasonMessages = map[Reason]string{
	SourceNotFound:     "Source not found",
	PermissionDenied:   "Permission denied",
	MalformedValue:     "Malformed value",
	CommandUnavailable: "Command unavailable",
	CommandFailed:      "Command failed",
	Timeout:            "Timed out",
	UnexpectedError:    "Unexpected error",
	NotAvailable:       "Not available",
	Disabled:           "Disabled",
}

// Message returns the human-readable description of r.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "Unknown error"
}

func (r Reason) String() string {
	return string(r)
}
