package smtp

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReply struct {
	code int
	text string
	err  error
}

type scriptedStream struct {
	connectErr error
	replies    []scriptedReply
	replyIdx   int
	sent       []string
	upgradeErr error
	closed     bool
}

func (s *scriptedStream) Connect(ctx context.Context, host string, port uint16) error {
	return s.connectErr
}

func (s *scriptedStream) Send(ctx context.Context, line string) error {
	s.sent = append(s.sent, line)
	return nil
}

func (s *scriptedStream) RecvReply(ctx context.Context) (int, string, error) {
	if s.replyIdx >= len(s.replies) {
		return 0, "", fmt.Errorf("scriptedStream: no more replies scripted")
	}
	r := s.replies[s.replyIdx]
	s.replyIdx++
	if r.err != nil {
		return 0, "", r.err
	}
	return r.code, r.text, nil
}

func (s *scriptedStream) UpgradeTLS(ctx context.Context) error { return s.upgradeErr }
func (s *scriptedStream) Close() error                         { s.closed = true; return nil }

func happyPathReplies() []scriptedReply {
	return []scriptedReply{
		{code: 220, text: "mail.example.com ESMTP"},
		{code: 250, text: "mail.example.com\nAUTH LOGIN"},
		{code: 334, text: "VXNlcm5hbWU6"},
		{code: 334, text: "UGFzc3dvcmQ6"},
		{code: 235, text: "2.7.0 Authentication successful"},
	}
}

func baseConfig() Config {
	return Config{Host: "mail.example.com", Port: 25}
}

// S5: happy path, AUTO negotiates LOGIN, final 2xx is a success outcome.
func TestTask_HappyPath(t *testing.T) {
	stream := &scriptedStream{replies: happyPathReplies()}
	task := NewTask(baseConfig(), func() Stream { return stream })

	outcome, err := task.Run(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 235, outcome.ResponseCode)
	assert.Equal(t, "alice", outcome.Username)
	assert.Equal(t, "hunter2", outcome.Password)
	assert.True(t, stream.closed)
	require.Len(t, stream.sent, 4)
	assert.Equal(t, "EHLO localhost", stream.sent[0])
	assert.Equal(t, "AUTH LOGIN", stream.sent[1])
}

// S6: a multi-line rejection reply is still classified on its leading code.
func TestTask_MultiLineRejection(t *testing.T) {
	replies := []scriptedReply{
		{code: 220, text: "mail.example.com ESMTP"},
		{code: 250, text: "mail.example.com\nAUTH LOGIN"},
		{code: 334, text: "VXNlcm5hbWU6"},
		{code: 334, text: "UGFzc3dvcmQ6"},
		{code: 535, text: "5.7.8 Authentication failed\n5.7.8 Invalid credentials"},
	}
	stream := &scriptedStream{replies: replies}
	task := NewTask(baseConfig(), func() Stream { return stream })

	outcome, err := task.Run(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, 535, outcome.ResponseCode)
	assert.Contains(t, outcome.ResponseText, "Invalid credentials")
}

// A 5xx rejecting the username itself is decisive and not retried.
func TestTask_UsernameRejectedIsDecisiveNotRetried(t *testing.T) {
	replies := []scriptedReply{
		{code: 220, text: "mail.example.com ESMTP"},
		{code: 250, text: "mail.example.com\nAUTH LOGIN"},
		{code: 334, text: "VXNlcm5hbWU6"},
		{code: 535, text: "5.7.8 no such user"},
	}
	calls := 0
	cfg := baseConfig()
	cfg.MaxRetries = 3
	task := NewTask(cfg, func() Stream {
		calls++
		return &scriptedStream{replies: replies}
	})

	outcome, err := task.Run(context.Background(), "ghost", "whatever")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, 535, outcome.ResponseCode)
	assert.Equal(t, 1, calls, "a decisive 5xx must not trigger a retry")
}

// A 4xx on the final reply is retried within budget, then falls back to the
// last transient outcome once the budget is exhausted.
func TestTask_TransientFourXXRetriedThenFallsBack(t *testing.T) {
	makeReplies := func() []scriptedReply {
		return []scriptedReply{
			{code: 220, text: "mail.example.com ESMTP"},
			{code: 250, text: "mail.example.com\nAUTH LOGIN"},
			{code: 334, text: "VXNlcm5hbWU6"},
			{code: 334, text: "UGFzc3dvcmQ6"},
			{code: 421, text: "4.3.2 service not available"},
		}
	}
	calls := 0
	cfg := baseConfig()
	cfg.MaxRetries = 2
	task := NewTask(cfg, func() Stream {
		calls++
		return &scriptedStream{replies: makeReplies()}
	})

	outcome, err := task.Run(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, 421, outcome.ResponseCode)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

// Connect failures (I/O) are retried; a later attempt can still succeed.
func TestTask_ConnectFailureRetriedThenSucceeds(t *testing.T) {
	attempt := 0
	cfg := baseConfig()
	cfg.MaxRetries = 2
	task := NewTask(cfg, func() Stream {
		attempt++
		if attempt == 1 {
			return &scriptedStream{connectErr: fmt.Errorf("%w: connection refused", ErrIO)}
		}
		return &scriptedStream{replies: happyPathReplies()}
	})

	outcome, err := task.Run(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 2, attempt)
}

// A protocol error (non-2xx greeting) is never retried, per §4.3.
func TestTask_ProtocolErrorNotRetried(t *testing.T) {
	calls := 0
	cfg := baseConfig()
	cfg.MaxRetries = 5
	task := NewTask(cfg, func() Stream {
		calls++
		return &scriptedStream{replies: []scriptedReply{{code: 554, text: "no access"}}}
	})

	_, err := task.Run(context.Background(), "alice", "hunter2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
	assert.Equal(t, 1, calls)
}

// No shared AUTH mechanism aborts immediately without retrying.
func TestTask_NoSharedMechanismNotRetried(t *testing.T) {
	calls := 0
	cfg := baseConfig()
	cfg.MaxRetries = 4
	task := NewTask(cfg, func() Stream {
		calls++
		return &scriptedStream{replies: []scriptedReply{
			{code: 220, text: "mail.example.com ESMTP"},
			{code: 250, text: "mail.example.com\nAUTH CRAM-MD5"},
		}}
	})

	_, err := task.Run(context.Background(), "alice", "hunter2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSharedMechanism)
	assert.Equal(t, 1, calls)
}

// STARTTLS escalation re-enters CONNECTED and re-sends EHLO before AUTH.
func TestTask_StartTLSReEntersConnected(t *testing.T) {
	replies := []scriptedReply{
		{code: 220, text: "mail.example.com ESMTP"},
		{code: 250, text: "mail.example.com\nSTARTTLS"},
		{code: 220, text: "2.0.0 ready to start TLS"},
		{code: 250, text: "mail.example.com\nAUTH LOGIN"},
		{code: 334, text: "VXNlcm5hbWU6"},
		{code: 334, text: "UGFzc3dvcmQ6"},
		{code: 235, text: "2.7.0 Authentication successful"},
	}
	stream := &scriptedStream{replies: replies}
	cfg := baseConfig()
	cfg.UseTLS = true
	task := NewTask(cfg, func() Stream { return stream })

	outcome, err := task.Run(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	require.Len(t, stream.sent, 6)
	assert.Equal(t, "EHLO localhost", stream.sent[0])
	assert.Equal(t, "STARTTLS", stream.sent[1])
	assert.Equal(t, "EHLO localhost", stream.sent[2])
	assert.Equal(t, "AUTH LOGIN", stream.sent[3])
}
