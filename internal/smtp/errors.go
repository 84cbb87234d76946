// Package smtp drives one SMTP credential-probing attempt per connection: a
// finite-state client that connects, optionally escalates to TLS,
// negotiates an authentication mechanism, and classifies the server's
// response to a single (username, password) pair.
package smtp

import "errors"

var (
	// ErrIO wraps connect/send/recv/timeout failures. Retried by the
	// Connection Task within its configured budget.
	ErrIO = errors.New("smtp: io error")

	// ErrTLS wraps STARTTLS handshake failures. Retried within budget.
	ErrTLS = errors.New("smtp: tls error")

	// ErrProtocol wraps malformed or unexpected replies and missing AUTH
	// capabilities. Not retried; surfaces as the ERROR state.
	ErrProtocol = errors.New("smtp: protocol error")

	// ErrNoSharedMechanism means AUTO negotiation found no method in common
	// between the server's advertised AUTH capabilities and this client's
	// supported set. Surfaced as an error outcome for the whole probe
	// against that host, not retried.
	ErrNoSharedMechanism = errors.New("smtp: no shared auth mechanism")

	// ErrUnsupportedMethod means the configured (non-AUTO) auth method has
	// no implemented challenge/response sequence in this client. See
	// DESIGN.md for the Open Question this resolves.
	ErrUnsupportedMethod = errors.New("smtp: unsupported auth method")
)
