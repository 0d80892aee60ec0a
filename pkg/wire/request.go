package wire

// Method is the request method of an inbound request.
type Method uint8

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
	MethodPut
	MethodDelete
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// IsRead returns true for the read method.
func (m Method) IsRead() bool {
	return m == MethodGet
}

// PayloadKind is the declared kind of a request body.
type PayloadKind uint8

const (
	// PayloadNone means the request carries no body.
	PayloadNone PayloadKind = iota

	// PayloadRepresentation is a CBOR resource representation.
	PayloadRepresentation

	// PayloadOther is any body that is not a representation.
	PayloadOther
)

// String returns the payload kind name.
func (k PayloadKind) String() string {
	switch k {
	case PayloadNone:
		return "none"
	case PayloadRepresentation:
		return "representation"
	case PayloadOther:
		return "other"
	default:
		return "unknown"
	}
}

// QoS is the delivery quality requested for observe notifications.
type QoS uint8

const (
	// QoSLow sends non-confirmable notifications.
	QoSLow QoS = iota

	// QoSHigh sends confirmable notifications.
	QoSHigh
)

// String returns the QoS name.
func (q QoS) String() string {
	switch q {
	case QoSLow:
		return "low"
	case QoSHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseQoS parses "low" or "high".
func ParseQoS(s string) (QoS, bool) {
	switch s {
	case "low", "":
		return QoSLow, true
	case "high":
		return QoSHigh, true
	default:
		return QoSLow, false
	}
}

// Request is an inbound request as seen by the resource layer.
type Request struct {
	// Method is the request method.
	Method Method

	// Query is the raw query string, terms joined by '&'.
	Query string

	// Body is the optional request body.
	Body []byte

	// BodyKind declares what Body holds. PayloadNone when Body is empty.
	BodyKind PayloadKind

	// Handle correlates the eventual response. Opaque to the resource layer.
	Handle any
}

// HasBody returns true if the request carries a body.
func (r *Request) HasBody() bool {
	return r.BodyKind != PayloadNone || len(r.Body) > 0
}
