// Package transport serves the device resources over CoAP/UDP.
//
// The transport layer handles:
//   - routing requests to the resource controller
//   - observer registration (Observe 0/1) per resource and token
//   - notification delivery with per-resource sequence numbers
//   - the core /oic/d, /oic/p and /oic/res resources
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   OCF CBOR representations     │
//	├────────────────────────────────┤
//	│   CoAP (RFC 7252) + Observe    │
//	├────────────────────────────────┤
//	│             UDP                │
//	└────────────────────────────────┘
//
// # Response Codes
//
// Dispatch outcomes map to CoAP codes:
//   - OK: 2.05 Content (application/vnd.ocf+cbor)
//   - Forbidden: 4.03
//   - MethodNotAllowed: 4.05
//   - InvalidPayloadKind: 4.00
//   - NotFound: 4.04
//   - InternalError: 5.00
package transport
