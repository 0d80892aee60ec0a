package log

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// A capture is a plain sequence of CBOR-encoded events. Timestamps are
// written as RFC 3339 strings with nanoseconds so per-notification
// processing times survive a round trip.
var (
	captureEnc = mustEncMode(cbor.EncOptions{Time: cbor.TimeRFC3339Nano})
	captureDec = mustDecMode(cbor.DecOptions{})
)

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic("log: capture encoder: " + err.Error())
	}
	return em
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	dm, err := opts.DecMode()
	if err != nil {
		panic("log: capture decoder: " + err.Error())
	}
	return dm
}

// NewEncoder returns an encoder appending events to a capture.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return captureEnc.NewEncoder(w)
}

// NewDecoder returns a decoder reading events from a capture.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return captureDec.NewDecoder(r)
}
