// Package config loads the device configuration.
//
// The loading order is:
//  1. Default values
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern BPM_SECTION_KEY, for example
// BPM_COAP_ADDRESS or BPM_MQTT_BROKER.
package config
