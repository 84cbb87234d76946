package smtp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Task attempts exactly one credential against a single server, from cold
// TCP up to a decisive outcome (the Connection Task of the spec). A Task is
// used once per credential: construct a fresh Task (and, internally, a
// fresh Stream) for every attempt.
type Task struct {
	cfg       Config
	newStream func() Stream
}

// NewTask builds a Task bound to cfg. newStream constructs a fresh Stream
// for every retry attempt; production callers pass a closure creating a
// tcpStream, tests pass a closure returning a scripted stream.
func NewTask(cfg Config, newStream func() Stream) *Task {
	return &Task{cfg: cfg.normalized(), newStream: newStream}
}

// transientFailure signals a retryable, non-decisive classification (a 4xx
// reply to a credential submission) so Run can fall back to it if the
// retry budget is exhausted without reaching a decisive outcome.
type transientFailure struct {
	outcome Outcome
}

func (t *transientFailure) Error() string {
	return fmt.Sprintf("smtp: transient %d response to credential submission", t.outcome.ResponseCode)
}

// Run drives the state machine for one credential. Per §4.3's retry rule,
// only non-classification failures (connect, TLS, transport, and a 4xx on
// credential submission) are retried, up to cfg.MaxRetries times by
// re-initializing a fresh Stream; a protocol error or an unmet AUTH
// mechanism never is. It never sends QUIT: tearing down the stream is the
// caller's responsibility.
//
// Run returns a decisive Outcome and nil error on success or on a 5xx
// rejection (Auth(Rejected) in the spec's taxonomy — classified as data,
// not an error). It returns a non-nil error for a protocol failure,
// ErrNoSharedMechanism, or ErrUnsupportedMethod (none of these are worth
// retrying: the server's behavior won't change), or when the I/O retry
// budget is exhausted without ever reaching a response code to report.
func (t *Task) Run(ctx context.Context, username, password string) (Outcome, error) {
	var lastErr error
	attempts := int(t.cfg.MaxRetries) + 1

	for i := 0; i < attempts; i++ {
		outcome, decisive, err := t.attempt(ctx, username, password)
		if decisive {
			return outcome, nil
		}
		if tf, ok := err.(*transientFailure); ok {
			lastErr = tf
			if i == attempts-1 {
				return tf.outcome, nil
			}
			continue
		}
		if !isRetryable(err) {
			return Outcome{}, err
		}
		lastErr = err
		if i == attempts-1 {
			return Outcome{}, lastErr
		}
	}
	return Outcome{}, lastErr
}

// isRetryable reports whether err is an I/O or TLS failure (retried within
// budget) rather than a protocol-level or negotiation failure (never
// retried, per §4.3).
func isRetryable(err error) bool {
	return errors.Is(err, ErrIO) || errors.Is(err, ErrTLS)
}

// attempt runs the state machine once, from a fresh Stream, to either a
// decisive Outcome or a retryable error.
func (t *Task) attempt(ctx context.Context, username, password string) (outcome Outcome, decisive bool, err error) {
	stream := t.newStream()
	defer stream.Close()

	var advertised []AuthMethod
	tlsUpgraded := false
	state := StateInit

	for {
		switch state {
		case StateInit:
			if err := stream.Connect(ctx, t.cfg.Host, t.cfg.Port); err != nil {
				return Outcome{}, false, err
			}
			code, _, err := stream.RecvReply(ctx)
			if err != nil {
				return Outcome{}, false, err
			}
			if code/100 != 2 {
				return Outcome{}, false, fmt.Errorf("%w: greeting returned %d", ErrProtocol, code)
			}
			state = StateConnected

		case StateConnected:
			if err := stream.Send(ctx, "EHLO "+t.cfg.EHLODomain); err != nil {
				return Outcome{}, false, err
			}
			code, text, err := stream.RecvReply(ctx)
			if err != nil {
				return Outcome{}, false, err
			}
			if code/100 != 2 {
				return Outcome{}, false, fmt.Errorf("%w: EHLO returned %d", ErrProtocol, code)
			}
			advertised = parseAuthCapabilities(strings.Split(text, "\n"))
			state = StateEHLOSent

		case StateEHLOSent:
			if t.cfg.UseTLS && !tlsUpgraded {
				if err := stream.Send(ctx, "STARTTLS"); err != nil {
					return Outcome{}, false, err
				}
				code, _, err := stream.RecvReply(ctx)
				if err != nil {
					return Outcome{}, false, err
				}
				if code/100 != 2 {
					return Outcome{}, false, fmt.Errorf("%w: STARTTLS returned %d", ErrProtocol, code)
				}
				if err := stream.UpgradeTLS(ctx); err != nil {
					return Outcome{}, false, err
				}
				tlsUpgraded = true
				state = StateConnected
				continue
			}

			method, err := t.resolveMethod(advertised)
			if err != nil {
				return Outcome{}, false, err
			}
			if err := stream.Send(ctx, "AUTH "+string(method)); err != nil {
				return Outcome{}, false, err
			}
			code, _, err := stream.RecvReply(ctx)
			if err != nil {
				return Outcome{}, false, err
			}
			if code/100 != 3 {
				return Outcome{}, false, fmt.Errorf("%w: AUTH init returned %d", ErrProtocol, code)
			}
			state = StateAuthStarted

		case StateAuthStarted:
			if err := stream.Send(ctx, base64.StdEncoding.EncodeToString([]byte(username))); err != nil {
				return Outcome{}, false, err
			}
			code, text, err := stream.RecvReply(ctx)
			if err != nil {
				return Outcome{}, false, err
			}
			switch {
			case code/100 == 5:
				return Outcome{Success: false, ResponseCode: code, ResponseText: text, Username: username, Password: password}, true, nil
			case code/100 == 3:
				state = StateAuthUsername
			default:
				o := Outcome{Success: false, ResponseCode: code, ResponseText: text, Username: username, Password: password}
				return Outcome{}, false, &transientFailure{outcome: o}
			}

		case StateAuthUsername:
			if err := stream.Send(ctx, base64.StdEncoding.EncodeToString([]byte(password))); err != nil {
				return Outcome{}, false, err
			}
			state = StateAuthPassword

		case StateAuthPassword:
			code, text, err := stream.RecvReply(ctx)
			if err != nil {
				return Outcome{}, false, err
			}
			o := Outcome{Success: classify(code), ResponseCode: code, ResponseText: text, Username: username, Password: password}
			if code/100 == 4 {
				return Outcome{}, false, &transientFailure{outcome: o}
			}
			return o, true, nil
		}
	}
}

// resolveMethod applies the configured AuthMethod: AUTO negotiates against
// the server's advertised capabilities; an explicit method is used as-is if
// this client implements it end to end.
func (t *Task) resolveMethod(advertised []AuthMethod) (AuthMethod, error) {
	if t.cfg.AuthMethod != AuthAuto {
		for _, m := range supportedMethods {
			if m == t.cfg.AuthMethod {
				return m, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, t.cfg.AuthMethod)
	}
	return resolveMethod(advertised)
}
