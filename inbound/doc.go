// Package inbound routes method calls arriving over the host channel to the
// payment commands and queries.
//
// Every call is answered exactly once through its core.MethodResult. Handler
// errors and panics are translated into channel errors; nothing propagates
// back to the host.
package inbound
