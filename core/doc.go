// Package core contains the payment bridge contracts, the card entry
// command exchange, and the modules that drive the native SDKs. Host
// adapters (method channel, UI thread, activity binding) depend on this
// package; core never depends on a concrete host.
package core
