package resource

import (
	"strings"

	"github.com/ocf-bpm/bpm-go/pkg/model"
)

// Query prefixes.
const (
	interfaceQueryPrefix = "if="
	typeQueryPrefix      = "rt="
)

// Kind is the representation shape chosen by a query.
type Kind uint8

const (
	// KindDefault means no selector was given.
	KindDefault Kind = iota
	KindBaseline
	KindBatch
	KindLinkedList
	KindUnsupported
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "DEFAULT"
	case KindBaseline:
		return "BASELINE"
	case KindBatch:
		return "BATCH"
	case KindLinkedList:
		return "LINKED_LIST"
	case KindUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// Reason explains an unsupported selector.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonInterfaceNotSupported
	ReasonTypeQueryNotSupported
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "NONE"
	case ReasonInterfaceNotSupported:
		return "INTERFACE_NOT_SUPPORTED"
	case ReasonTypeQueryNotSupported:
		return "TYPE_QUERY_NOT_SUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// Selector is a parsed interface query.
type Selector struct {
	Kind   Kind
	Reason Reason

	// Query is the raw query that produced the selector.
	Query string
}

// Err returns the fault for an unsupported selector, nil otherwise.
func (s Selector) Err() error {
	if s.Kind != KindUnsupported {
		return nil
	}
	if s.Reason == ReasonTypeQueryNotSupported {
		return ErrTypeQueryNotSupported
	}
	return ErrInterfaceNotSupported
}

// String returns the kind, plus the reason when unsupported.
func (s Selector) String() string {
	if s.Kind == KindUnsupported {
		return s.Kind.String() + "(" + s.Reason.String() + ")"
	}
	return s.Kind.String()
}

// ParseQuery maps a query string to a selector. It never fails: unsupported
// queries become KindUnsupported selectors that fault at build time.
//
// The query is split into "&" terms. Any "rt=" term makes the selector an
// unsupported type query. Otherwise the first "if=" term picks the shape, so
// "x=1&if=oic.if.baseline" is a baseline request. A query with no "if=" or
// "rt=" term selects the default shape.
func ParseQuery(query string) Selector {
	sel := Selector{Query: query, Kind: KindDefault}
	if query == "" {
		return sel
	}

	iface, hasIface := "", false
	for _, term := range strings.Split(query, "&") {
		switch {
		case strings.HasPrefix(term, typeQueryPrefix):
			sel.Kind = KindUnsupported
			sel.Reason = ReasonTypeQueryNotSupported
			return sel
		case strings.HasPrefix(term, interfaceQueryPrefix) && !hasIface:
			iface, hasIface = strings.TrimPrefix(term, interfaceQueryPrefix), true
		}
	}
	if !hasIface {
		return sel
	}

	switch iface {
	case model.InterfaceBaseline:
		sel.Kind = KindBaseline
	case model.InterfaceBatch:
		sel.Kind = KindBatch
	case model.InterfaceLinkedList:
		sel.Kind = KindLinkedList
	default:
		sel.Kind = KindUnsupported
		sel.Reason = ReasonInterfaceNotSupported
	}
	return sel
}
