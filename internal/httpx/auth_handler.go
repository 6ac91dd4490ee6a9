package httpx

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/auth"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/otp"
)

type authHandler struct{ svc *auth.Service }

// writeIssued reports an OTP issuance. Undelivered codes are returned to the
// caller so development setups without mail keep working.
func writeIssued(w http.ResponseWriter, is otp.Issued, sentText string) {
	if !is.Delivered {
		writeJSON(w, http.StatusOK, msg{
			"message": "OTP generated in dev mode. Email delivery is unavailable right now.",
			"devOtp":  is.Code,
		})
		return
	}
	writeMessage(w, http.StatusOK, sentText)
}

func (h *authHandler) requestSignupOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	is, err := h.svc.RequestSignupOTP(r.Context(), body.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeIssued(w, is, "OTP sent successfully to your email.")
}

func (h *authHandler) signup(w http.ResponseWriter, r *http.Request) {
	var body auth.SignupRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if _, err := h.svc.Signup(r.Context(), body); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := h.svc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg{
		"message": "Login successful",
		"token":   res.Token,
		"user":    msg{"id": res.User.ID, "name": res.User.Name, "email": res.User.Email},
	})
}

func (h *authHandler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AdminID  string `json:"adminId"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	token, err := h.svc.AdminLogin(r.Context(), body.AdminID, body.Password)
	if err != nil {
		logging.FromContext(r.Context()).Warn("admin_login_failed", zap.String("admin_id", body.AdminID))
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg{"message": "Admin login successful", "token": token})
}

func (h *authHandler) requestAdminReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AdminID string `json:"adminId"`
		Email   string `json:"email"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	is, err := h.svc.RequestAdminReset(r.Context(), body.AdminID, body.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeIssued(w, is, "OTP sent successfully to registered email.")
}

func (h *authHandler) resetAdmin(w http.ResponseWriter, r *http.Request) {
	var body auth.AdminResetRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.svc.ResetAdminPassword(r.Context(), body); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Admin password changed successfully.")
}

func (h *authHandler) requestUserReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	is, err := h.svc.RequestUserReset(r.Context(), body.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeIssued(w, is, "OTP sent successfully to your registered email.")
}

func (h *authHandler) resetUser(w http.ResponseWriter, r *http.Request) {
	var body auth.UserResetRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.svc.ResetUserPassword(r.Context(), body); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User password changed successfully.")
}

func (h *authHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func logHealth(r *http.Request, err error) {
	logging.FromContext(r.Context()).Warn("health_check_failed", zap.Error(err))
}
