package logging

import "log/slog"

// redactedPassword is logged in place of a real password. The spec
// requires that Base64-encoded credential payloads never appear verbatim
// in error or log output; redacting the cleartext at the call site makes
// that true regardless of which encoding a caller later applies.
const redactedPassword = "[redacted]"

// CredentialAttrs returns slog attributes safe to log for one probe
// attempt: the username in the clear (it identifies the attempt) and the
// password redacted.
func CredentialAttrs(username string) []slog.Attr {
	return []slog.Attr{
		slog.String("username", username),
		slog.String("password", redactedPassword),
	}
}

// RedactSecret returns the fixed placeholder used in place of any
// credential-derived string (passwords, Base64 AUTH payloads).
func RedactSecret(string) string {
	return redactedPassword
}
