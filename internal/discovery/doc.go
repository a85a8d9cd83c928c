// Package discovery locates RainMachine controllers on the local network.
//
// Two lookup paths run in parallel: an mDNS/DNS-SD browse for the
// _rainmachine._tcp service, and the firmware's own UDP broadcast probe on
// port 15800. Results from both are deduplicated and streamed to the
// caller as they arrive, until the scan window closes.
//
// Discovery only locates controllers; it never authenticates against them.
package discovery
