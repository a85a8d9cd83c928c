// Package simulator is an in-process RainMachine controller double.
//
// It serves the controller's local REST API over TLS with a self-signed
// certificate (matching real hardware) and answers the UDP discovery
// probe, so both the client pipeline and the discovery sweep can be tested
// end to end without a device. Token issue/expiry, rejected actions, and
// malformed response bodies are all scriptable per test.
package simulator
