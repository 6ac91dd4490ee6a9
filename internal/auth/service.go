package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/config"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/otp"
)

// Store is implemented by *Repo.
type Store interface {
	CreateUser(ctx context.Context, name, email, hash string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, string, error)
	RecordLogin(ctx context.Context, id string, at time.Time) (User, error)
	SetUserPassword(ctx context.Context, email, hash string) error
	ListUsers(ctx context.Context) ([]User, error)
	AdminByID(ctx context.Context, adminID string) (Admin, error)
	CreateAdmin(ctx context.Context, a Admin) (Admin, error)
	UpdateAdmin(ctx context.Context, a Admin) error
}

// OTP is implemented by *otp.Service.
type OTP interface {
	Issue(ctx context.Context, key otp.Key) (otp.Issued, error)
	Consume(ctx context.Context, key otp.Key, code string) error
}

type Service struct {
	Store    Store
	OTP      OTP
	Tokens   *Tokens
	EnvAdmin config.AdminConfig
	HashCost int // bcrypt.DefaultCost when zero
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) hash(pw string) (string, error) {
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func passwordMatches(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func sameSecret(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// userExists reports whether email is registered, treating NotFound as false.
func (s *Service) userExists(ctx context.Context, email string) (bool, error) {
	_, _, err := s.Store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperr.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) RequestSignupOTP(ctx context.Context, email string) (otp.Issued, error) {
	email = normEmail(email)
	if email == "" {
		return otp.Issued{}, apperr.Validation("Email is required.")
	}
	exists, err := s.userExists(ctx, email)
	if err != nil {
		return otp.Issued{}, err
	}
	if exists {
		return otp.Issued{}, apperr.Conflict("User already exists with this email.")
	}
	return s.OTP.Issue(ctx, otp.SignupKey(email))
}

// Signup creates the account. The code is only consumed once every other
// check has passed, so a bad request does not burn it.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" || req.OTP == "" {
		return User{}, apperr.Validation("Name, email, password and OTP are required.")
	}
	exists, err := s.userExists(ctx, req.Email)
	if err != nil {
		return User{}, err
	}
	if exists {
		return User{}, apperr.Conflict("User already exists")
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return User{}, err
	}
	if err := s.OTP.Consume(ctx, otp.SignupKey(req.Email), strings.TrimSpace(req.OTP)); err != nil {
		return User{}, err
	}
	u, err := s.Store.CreateUser(ctx, req.Name, req.Email, hash)
	if err != nil {
		return User{}, err
	}
	logging.FromContext(ctx).Info("user_signed_up", zap.String("user_id", u.ID))
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, hash, err := s.Store.UserByEmail(ctx, normEmail(email))
	if err != nil {
		return LoginResult{}, err
	}
	if !passwordMatches(hash, password) {
		return LoginResult{}, apperr.Authorization("Invalid credentials")
	}
	u, err = s.Store.RecordLogin(ctx, u.ID, s.now())
	if err != nil {
		return LoginResult{}, err
	}
	token, err := s.Tokens.ForUser(u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: u}, nil
}

func (s *Service) isEnvAdmin(adminID string) bool {
	return s.EnvAdmin.ID != "" && adminID == s.EnvAdmin.ID
}

// AdminLogin accepts a stored admin, or the environment admin on first use.
// The environment admin gets a record when ADMIN_EMAIL is set; without it a
// token is issued directly.
func (s *Service) AdminLogin(ctx context.Context, adminID, password string) (string, error) {
	adminID = strings.TrimSpace(adminID)
	if adminID == "" || password == "" {
		return "", apperr.Validation("Admin ID and password are required.")
	}
	invalid := apperr.Authorization("Invalid admin ID or password")

	a, err := s.Store.AdminByID(ctx, adminID)
	if errors.Is(err, apperr.ErrNotFound) {
		if !s.isEnvAdmin(adminID) || s.EnvAdmin.Password == "" || !sameSecret(password, s.EnvAdmin.Password) {
			return "", invalid
		}
		if s.EnvAdmin.Email == "" {
			return s.Tokens.ForAdmin(adminID)
		}
		hash, herr := s.hash(password)
		if herr != nil {
			return "", herr
		}
		a, err = s.Store.CreateAdmin(ctx, Admin{AdminID: adminID, Email: s.EnvAdmin.Email, PasswordHash: hash})
		if err == nil {
			logging.FromContext(ctx).Info("admin_bootstrapped", zap.String("admin_id", adminID))
		}
	}
	if err != nil {
		return "", err
	}
	if !passwordMatches(a.PasswordHash, password) {
		return "", invalid
	}
	return s.Tokens.ForAdmin(adminID)
}

// findAdmin loads the admin record, bootstrapping the environment admin when
// the id and email both match it.
func (s *Service) findAdmin(ctx context.Context, adminID, email string) (Admin, error) {
	a, err := s.Store.AdminByID(ctx, adminID)
	if !errors.Is(err, apperr.ErrNotFound) {
		return a, err
	}
	env := s.EnvAdmin
	if !s.isEnvAdmin(adminID) || env.Password == "" || env.Email == "" || email != env.Email {
		return Admin{}, err
	}
	hash, herr := s.hash(env.Password)
	if herr != nil {
		return Admin{}, herr
	}
	return s.Store.CreateAdmin(ctx, Admin{AdminID: adminID, Email: env.Email, PasswordHash: hash})
}

// reconcileEmail checks email against the record. The environment admin may
// present ADMIN_EMAIL even if the stored address drifted; the record is then
// corrected in place and reported as changed.
func (s *Service) reconcileEmail(a *Admin, email string) (bool, error) {
	if normEmail(a.Email) == email {
		return false, nil
	}
	if s.isEnvAdmin(a.AdminID) && s.EnvAdmin.Email != "" && email == s.EnvAdmin.Email {
		a.Email = s.EnvAdmin.Email
		return true, nil
	}
	return false, apperr.Validation("Email does not match admin account.")
}

func (s *Service) RequestAdminReset(ctx context.Context, adminID, email string) (otp.Issued, error) {
	adminID, email = strings.TrimSpace(adminID), normEmail(email)
	if adminID == "" || email == "" {
		return otp.Issued{}, apperr.Validation("Admin ID and email are required.")
	}
	a, err := s.findAdmin(ctx, adminID, email)
	if err != nil {
		return otp.Issued{}, err
	}
	changed, err := s.reconcileEmail(&a, email)
	if err != nil {
		return otp.Issued{}, err
	}
	if changed {
		if err := s.Store.UpdateAdmin(ctx, a); err != nil {
			return otp.Issued{}, err
		}
	}
	return s.OTP.Issue(ctx, otp.AdminResetKey(adminID, email))
}

func (s *Service) ResetAdminPassword(ctx context.Context, req AdminResetRequest) error {
	adminID, email := strings.TrimSpace(req.AdminID), normEmail(req.Email)
	if adminID == "" || email == "" || req.OTP == "" || req.NewPassword == "" {
		return apperr.Validation("Admin ID, email, OTP and new password are required.")
	}
	if len(req.NewPassword) < minPasswordLen {
		return apperr.Validation("New password must be at least 6 characters.")
	}
	if err := s.OTP.Consume(ctx, otp.AdminResetKey(adminID, email), strings.TrimSpace(req.OTP)); err != nil {
		return err
	}
	a, err := s.findAdmin(ctx, adminID, email)
	if err != nil {
		return err
	}
	if _, err := s.reconcileEmail(&a, email); err != nil {
		return err
	}
	if a.PasswordHash, err = s.hash(req.NewPassword); err != nil {
		return err
	}
	if err := s.Store.UpdateAdmin(ctx, a); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("admin_password_reset", zap.String("admin_id", adminID))
	return nil
}

func (s *Service) RequestUserReset(ctx context.Context, email string) (otp.Issued, error) {
	email = normEmail(email)
	if email == "" {
		return otp.Issued{}, apperr.Validation("Email is required.")
	}
	if _, _, err := s.Store.UserByEmail(ctx, email); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return otp.Issued{}, apperr.NotFound("User not found with this email.")
		}
		return otp.Issued{}, err
	}
	return s.OTP.Issue(ctx, otp.UserResetKey(email))
}

func (s *Service) ResetUserPassword(ctx context.Context, req UserResetRequest) error {
	email := normEmail(req.Email)
	if email == "" || req.OTP == "" || req.NewPassword == "" {
		return apperr.Validation("Email, OTP and new password are required.")
	}
	if len(req.NewPassword) < minPasswordLen {
		return apperr.Validation("New password must be at least 6 characters.")
	}
	if err := s.OTP.Consume(ctx, otp.UserResetKey(email), strings.TrimSpace(req.OTP)); err != nil {
		return err
	}
	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.Store.SetUserPassword(ctx, email, hash)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.Store.ListUsers(ctx)
}
