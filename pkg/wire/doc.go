// Package wire defines the request and outcome types exchanged between the
// CoAP transport and the resource layer, plus the CBOR codec used for
// representations.
//
// Representations are encoded as CBOR (RFC 8949) with string keys, the way
// OCF resources are carried in application/vnd.ocf+cbor payloads.
//
// # Outcomes
//
// Every dispatched request ends in exactly one Outcome. The transport maps
// each Outcome to a CoAP response code:
//   - OK: 2.05 Content, with a payload
//   - Forbidden: 4.03, no payload
//   - MethodNotAllowed: 4.05, no payload
//   - InvalidPayloadKind: 4.00, no payload
//   - NotFound: 4.04, no payload
//   - InternalError: 5.00, no payload
package wire
