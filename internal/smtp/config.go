package smtp

import (
	"fmt"
	"time"

	"github.com/relayaudit/credprobe/internal/helpers"
)

// AuthMethod names an SMTP AUTH mechanism.
type AuthMethod string

const (
	AuthLogin   AuthMethod = "LOGIN"
	AuthPlain   AuthMethod = "PLAIN"
	AuthCRAMMD5 AuthMethod = "CRAM-MD5"
	AuthAuto    AuthMethod = "AUTO"
)

// supportedMethods is the set of mechanisms this client can actually drive
// end to end. Per DESIGN.md, only LOGIN's two-step challenge/response is
// implemented; PLAIN and CRAM-MD5 are declared for configuration
// completeness but are not wired to a state machine variant.
var supportedMethods = []AuthMethod{AuthLogin}

// Config is the immutable configuration of one target SMTP server
// (SmtpConfig in the spec).
type Config struct {
	Host        string
	Port        uint16
	AuthMethod  AuthMethod
	UseTLS      bool
	Timeout     time.Duration
	MaxRetries  uint16
	EHLODomain  string
}

// DefaultPort is used when Config.Port is left at its zero value.
const DefaultPort uint16 = 25

// normalized returns a copy of c with defaults applied: Port defaults to 25,
// AuthMethod defaults to AUTO, EHLODomain defaults to "localhost".
func (c Config) normalized() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.AuthMethod == "" {
		c.AuthMethod = AuthAuto
	}
	if c.EHLODomain == "" {
		c.EHLODomain = "localhost"
	}
	return c
}

// Validate checks the configuration for obviously invalid values. Port is
// clamped the way the teacher's helpers package clamps numeric
// conversions, rather than hand-rolled bounds checks.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp: config: host is required")
	}
	if helpers.ClampIntToUint16(int(c.Port)) != c.Port {
		return fmt.Errorf("smtp: config: port %d out of range", c.Port)
	}
	switch c.AuthMethod {
	case "", AuthAuto, AuthLogin, AuthPlain, AuthCRAMMD5:
	default:
		return fmt.Errorf("smtp: config: unknown auth method %q", c.AuthMethod)
	}
	return nil
}

// Params is the per-probe set of credentials to try (ProbeParams in the
// spec).
type Params struct {
	Usernames           []string
	Passwords           []string
	Parallelism         uint16
	StopOnFirstSuccess  bool
}

// normalized applies the "parallelism >= 1" invariant.
func (p Params) normalized() Params {
	if p.Parallelism == 0 {
		p.Parallelism = 1
	}
	return p
}

// Validate checks the probe parameters.
func (p Params) Validate() error {
	if len(p.Usernames) == 0 {
		return fmt.Errorf("smtp: params: at least one username is required")
	}
	if len(p.Passwords) == 0 {
		return fmt.Errorf("smtp: params: at least one password is required")
	}
	return nil
}
