// Package otp issues and verifies short-lived single-use numeric codes.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
)

const DefaultTTL = 10 * time.Minute

type Purpose string

const (
	PurposeSignup     Purpose = "signup"
	PurposeUserReset  Purpose = "user-reset"
	PurposeAdminReset Purpose = "admin-reset"
)

// Key identifies one outstanding code. Subject is the admin id for admin
// resets, so one admin's code cannot be used for another account.
type Key struct {
	Purpose Purpose
	Subject string
	Email   string
}

func SignupKey(email string) Key {
	return Key{Purpose: PurposeSignup, Email: normEmail(email)}
}

func UserResetKey(email string) Key {
	return Key{Purpose: PurposeUserReset, Email: normEmail(email)}
}

func AdminResetKey(adminID, email string) Key {
	return Key{Purpose: PurposeAdminReset, Subject: strings.TrimSpace(adminID), Email: normEmail(email)}
}

func (k Key) String() string { return string(k.Purpose) + ":" + k.identity() }

func (k Key) identity() string {
	if k.Subject == "" {
		return k.Email
	}
	return k.Subject + ":" + k.Email
}

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// Store holds at most one code per key. Issue overwrites any earlier code.
type Store interface {
	Issue(ctx context.Context, key Key) (code string, err error)
	Consume(ctx context.Context, key Key, code string) error
}

// Generator produces a fresh code.
type Generator func() (string, error)

// Generate returns a code drawn uniformly from [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

type options struct {
	now      func() time.Time
	generate Generator
}

type Option func(*options)

// WithClock injects the time source used for expiry decisions.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithGenerator(g Generator) Option { return func(o *options) { o.generate = g } }

func buildOptions(opts []Option) options {
	o := options{now: time.Now, generate: Generate}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func errNotFound() error { return apperr.NotFound("OTP not found. Please request a new one.") }

func errExpired() error {
	return apperr.New(apperr.KindExpired, "OTP expired. Please request a new one.")
}

func errMismatch() error { return apperr.New(apperr.KindMismatch, "Invalid OTP") }

func sameCode(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
