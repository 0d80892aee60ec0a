// Package resource implements the blood pressure monitor resources: query
// parsing, representation building, request dispatch and the controller that
// ties them to observation.
//
// # Interface Selection
//
// The query string of a read selects the representation shape:
//
//	(empty)              batch shape, the resource default
//	if=oic.if.b          batch shape: one entry per child, with values
//	if=oic.if.ll         linked list: one link per child, no values
//	if=oic.if.baseline   baseline: types, interfaces and links, no values
//	if=<anything else>   Forbidden
//	rt=<anything>        Forbidden
//
// # Dispatch
//
// Every non-nil request produces exactly one response through the Responder.
// Only GET is served; other methods get MethodNotAllowed. A body that is not
// a representation gets InvalidPayloadKind before the method is looked at.
//
// # Resources
//
// The Controller owns two resources. The atomic measurement collection is
// readable and observable. The linked blood pressure child answers every
// request with Forbidden and cannot be observed.
package resource
