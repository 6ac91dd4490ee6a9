package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/config"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/otp"
)

type stubSender struct {
	name string
	err  error
	got  []Message
}

func (s *stubSender) Name() string { return s.name }

func (s *stubSender) Send(_ context.Context, m Message) error {
	s.got = append(s.got, m)
	return s.err
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	first := &stubSender{name: "smtp", err: errors.New("auth failed")}
	second := &stubSender{name: "resend"}
	c := NewChain(zap.NewNop(), first, second)

	require.NoError(t, c.Send(context.Background(), Message{To: "a@x.test", Subject: "s", Text: "t"}))
	assert.Len(t, first.got, 1)
	assert.Len(t, second.got, 1)
}

func TestChainJoinsErrors(t *testing.T) {
	boom := errors.New("down")
	c := NewChain(zap.NewNop(), &stubSender{name: "smtp", err: boom}, &stubSender{name: "resend", err: errors.New("429")})

	err := c.Send(context.Background(), Message{To: "a@x.test"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "resend: 429")
}

func TestChainUnconfigured(t *testing.T) {
	c := FromConfig(config.MailConfig{SMTPHost: "smtp.gmail.com"}, zap.NewNop())
	assert.False(t, c.Configured())
	assert.ErrorIs(t, c.Send(context.Background(), Message{}), ErrNotConfigured)

	var nilChain *Chain
	assert.False(t, nilChain.Configured())
}

func TestSendOTPText(t *testing.T) {
	s := &stubSender{name: "stub"}
	c := NewChain(zap.NewNop(), s)

	require.NoError(t, c.SendOTP(context.Background(), "a@x.test", otp.PurposeAdminReset, "123456"))
	require.Len(t, s.got, 1)
	assert.Equal(t, "Admin Password Reset OTP", s.got[0].Subject)
	assert.Equal(t, "Your admin reset OTP is 123456. It is valid for 10 minutes.", s.got[0].Text)

	assert.Error(t, c.SendOTP(context.Background(), "a@x.test", otp.Purpose("other"), "1"))
}

func TestResendRequest(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewResend("re_key", "shop@x.test")
	r.endpoint = srv.URL
	require.NoError(t, r.Send(context.Background(), Message{To: "a@x.test", Subject: "Hi", Text: "body"}))
	assert.Equal(t, resendRequest{From: "shop@x.test", To: []string{"a@x.test"}, Subject: "Hi", Text: "body"}, got)
}

func TestResendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	r := NewResend("re_key", "shop@x.test")
	r.endpoint = srv.URL
	err := r.Send(context.Background(), Message{To: "a@x.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "invalid from")
}

func TestConstructorsNeedCredentials(t *testing.T) {
	assert.Nil(t, NewResend("", "from@x.test"))
	assert.Nil(t, NewSMTP(config.MailConfig{SMTPHost: "h", User: "u"}))

	s := NewSMTP(config.MailConfig{SMTPHost: "smtp.gmail.com", SMTPPort: 587, User: "shop@x.test", Password: "pw"})
	require.NotNil(t, s)
	m, err := s.message(Message{To: "a@x.test", Subject: "Hi", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi"}, m.GetGenHeader("Subject"))

	_, err = s.message(Message{To: "not an address"})
	assert.Error(t, err)
}
