// Package auth owns customer and admin accounts: signup with email
// verification, password login, OTP password resets and bearer tokens.
package auth

import (
	"strings"
	"time"
)

type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	LoginCount int        `json:"loginCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Admin struct {
	AdminID      string
	Email        string
	PasswordHash string
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

type AdminResetRequest struct {
	AdminID     string `json:"adminId"`
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type UserResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

const minPasswordLen = 6

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
