package redisx

import (
	"fmt"
	"time"
)

const (
	// OTP entry: otp:{purpose}:{subject} -> {"code": "...", "expires_at": "..."}
	KeyOTP = "otp:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)

func OTPKey(purpose, subject string) string { return fmt.Sprintf(KeyOTP, purpose, subject) }

func DedupKey(service, eventID string) string { return fmt.Sprintf(KeyDedup, service, eventID) }
