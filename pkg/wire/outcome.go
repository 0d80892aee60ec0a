package wire

// Outcome is the result of dispatching one request.
type Outcome uint8

const (
	// OK indicates the request succeeded and a payload was attached.
	OK Outcome = iota

	// Forbidden indicates the requested shape is not served.
	Forbidden

	// MethodNotAllowed indicates a non-read method.
	MethodNotAllowed

	// InvalidPayloadKind indicates a body that is not a representation.
	InvalidPayloadKind

	// InternalError indicates a missing request or a failed transmission.
	InternalError

	// NotFound indicates the target resource does not exist.
	NotFound
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OK:
		return "OK"
	case Forbidden:
		return "FORBIDDEN"
	case MethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case InvalidPayloadKind:
		return "INVALID_PAYLOAD_KIND"
	case InternalError:
		return "INTERNAL_ERROR"
	case NotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the outcome indicates success.
func (o Outcome) IsSuccess() bool {
	return o == OK
}

// IsError returns true if the outcome indicates an error.
func (o Outcome) IsError() bool {
	return o != OK
}
