package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
	"github.com/zopper-dev/salesdost/backend/internal/otp"
	"github.com/zopper-dev/salesdost/backend/internal/token"
	"github.com/zopper-dev/salesdost/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenCookie  = "__salesdost_access_token"
	refreshTokenCookie = "__salesdost_refresh_token"
)

func (h *Handler) sessionCookie(name, value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
	}

	return cookie
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, claims token.Claims) error {
	access, accessExp, err := h.tokens.SignAccessToken(claims)
	if err != nil {
		return err
	}
	refresh, refreshExp, err := h.tokens.SignRefreshToken(claims)
	if err != nil {
		return err
	}

	http.SetCookie(w, h.sessionCookie(accessTokenCookie, access, accessExp))
	http.SetCookie(w, h.sessionCookie(refreshTokenCookie, refresh, refreshExp))
	return nil
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	expired := time.Now().Add(-time.Hour)
	http.SetCookie(w, h.sessionCookie(accessTokenCookie, "", expired))
	http.SetCookie(w, h.sessionCookie(refreshTokenCookie, "", expired))
}

// principalResponse is the flattened role + profile payload returned by login
// and verify. It never carries the password hash or the internal user id.
type principalResponse struct {
	Role       domain.Role `json:"role"`
	Username   string      `json:"username,omitempty"`
	FullName   string      `json:"fullName"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email,omitempty"`
	AgencyName string      `json:"agencyName,omitempty"`
	StoreIDs   []string    `json:"storeIds,omitempty"`
	StoreID    string      `json:"storeId,omitempty"`
	IsUATUser  bool        `json:"isUatUser"`
}

func newPrincipalResponse(ac *AuthContext) *principalResponse {
	if ac.SEC != nil {
		return &principalResponse{
			Role:     domain.RoleSEC,
			FullName: ac.SEC.FullName,
			Phone:    ac.SEC.Phone,
			StoreID:  ac.SEC.StoreID,
		}
	}

	return &principalResponse{
		Role:       ac.User.Role,
		Username:   ac.User.Username,
		FullName:   ac.Profile.FullName,
		Phone:      ac.Profile.Phone,
		Email:      ac.Profile.Email,
		AgencyName: ac.Profile.AgencyName,
		StoreIDs:   ac.Profile.StoreIDs,
		IsUATUser:  ac.User.Metadata.IsUATUser,
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username        string   `json:"username" validate:"required,min=4,max=64"`
		Password        string   `json:"password" validate:"required,min=8"`
		Role            string   `json:"role" validate:"required,oneof=ABM ASE ZSM ZSE ZOPPER_ADMIN SAMSUNG_ADMIN"`
		FullName        string   `json:"fullName" validate:"required"`
		Phone           string   `json:"phone" validate:"required,len=10,numeric"`
		Email           string   `json:"email" validate:"required,email"`
		AgencyName      string   `json:"agencyName"`
		StoreIDs        []string `json:"storeIds"`
		ParentManagerID *int64   `json:"parentManagerId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:        req.Username,
		PasswordHash:    string(passwordHash),
		Role:            domain.Role(req.Role),
		ValidationState: domain.ValidationPending,
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key" {
			h.errorResponse(w, r, "username is already taken")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	profile := &domain.RoleProfile{
		UserID:          user.ID,
		FullName:        req.FullName,
		Phone:           req.Phone,
		Email:           req.Email,
		AgencyName:      req.AgencyName,
		StoreIDs:        req.StoreIDs,
		ParentManagerID: req.ParentManagerID,
	}
	if err := h.repository.CreateRoleProfile(profile); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "signup received, pending approval", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.unauthorized(w, r)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if user.ValidationState != domain.ValidationApproved {
		h.unauthorized(w, r)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.unauthorized(w, r)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	profile, err := h.repository.GetRoleProfileByUserID(user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.setSessionCookies(w, token.Claims{
		UserID: user.ID,
		Role:   string(user.Role),
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.UpdateLastLogin(user.ID, time.Now()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "login successful", newPrincipalResponse(&AuthContext{
		Role:    user.Role,
		User:    user,
		Profile: profile,
	}))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookies(w)
	h.successResponse(w, r, "logout successful", nil)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	ac := r.Context().Value(PrincipalCtxKey).(*AuthContext)
	h.successResponse(w, r, "session valid", newPrincipalResponse(ac))
}

func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber" validate:"required,len=10,numeric"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.repository.GetSECByPhone(req.PhoneNumber); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// report success for unknown phones so the endpoint cannot be
			// used to probe which numbers are registered
			h.successResponse(w, r, "OTP sent", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	expiration := time.Duration(h.config.OTP.Expiration) * time.Second
	code := &domain.OneTimeCode{
		Phone:     req.PhoneNumber,
		Code:      utils.GenerateRandomOTP(),
		ExpiresAt: time.Now().Add(expiration),
	}

	// prior codes for this phone are deleted in the same transaction
	if err := h.repository.ReplaceOneTimeCode(code); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.gateway.SendCode(req.PhoneNumber, code.Code, expiration); err != nil {
		switch {
		case errors.Is(err, otp.ErrGatewayTimeout):
			h.upstreamError(w, r, "OTP delivery timed out, please retry")
		case errors.Is(err, otp.ErrGatewayRejected):
			h.upstreamError(w, r, "OTP delivery failed")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "OTP sent", nil)
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber" validate:"required,len=10,numeric"`
		OTP         string `json:"otp" validate:"required,len=6,numeric"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	code, err := h.repository.GetOneTimeCode(req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.unauthorized(w, r)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if code.Verified || code.Expired(time.Now()) || code.Code != req.OTP {
		h.unauthorized(w, r)
		return
	}

	sec, err := h.repository.GetSECByPhone(req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.unauthorized(w, r)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.MarkOneTimeCodeVerified(code.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.setSessionCookies(w, token.Claims{
		Phone: sec.Phone,
		Role:  string(domain.RoleSEC),
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "login successful", newPrincipalResponse(&AuthContext{
		Role: domain.RoleSEC,
		SEC:  sec,
	}))
}
