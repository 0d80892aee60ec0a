package resource

import (
	"errors"
	"fmt"
)

// Resource errors.
var (
	ErrForbidden       = errors.New("forbidden")
	ErrUnknownResource = errors.New("unknown resource")
	ErrNotObservable   = errors.New("resource is not observable")
	ErrNilRequest      = errors.New("nil request")
)

// Forbidden faults raised by unsupported selectors. Both match ErrForbidden.
var (
	ErrInterfaceNotSupported = fmt.Errorf("%w: interface not supported", ErrForbidden)
	ErrTypeQueryNotSupported = fmt.Errorf("%w: resource type query not supported", ErrForbidden)
)
