// Package discovery implements DNS-SD advertisement and browsing for the
// blood pressure monitor.
//
// # CoAP Discovery (_coap._udp)
//
// The device advertises one _coap._udp instance on its CoAP port.
// Instance name format: BPM-<first 8 chars of the device ID>
// TXT records include: rt (device type), di (device ID), and optionally
// n (device name).
//
// OCF clients normally find resources by multicasting GET /oic/res. The
// DNS-SD record lets generic tooling locate the device without CoAP
// multicast support.
package discovery
