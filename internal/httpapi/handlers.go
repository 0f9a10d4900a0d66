// Package httpapi holds the HTTP handlers. Keep these thin: parse and
// validate input, call internal services, return the uniform envelope.
//
// Envelope: {ok: false, msg: string, error?: detail}; the error detail is
// attached only outside production.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"school-platform/internal/auth"
	"school-platform/internal/identity"
	"school-platform/internal/password"
	"school-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
type Handlers struct {
	Auth    *auth.Service
	Store   identity.Repository
	Limiter *LoginLimiter

	// Production suppresses raw error detail in the envelope.
	Production bool
}

func (h Handlers) fail(c *gin.Context, status int, msg string, err error) {
	body := gin.H{"ok": false, "msg": msg}
	if err != nil && !h.Production {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

type userProfile struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	NationalID       string `json:"nationalId"`
	RoleID           int    `json:"roleId"`
	Role             string `json:"role"`
	IsTeacher        bool   `json:"isTeacher"`
	IsRepresentative bool   `json:"isRepresentative"`
}

func profileFromLogin(res auth.LoginResult) userProfile {
	u := res.User
	return userProfile{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		NationalID:       u.NationalID,
		RoleID:           u.RoleID,
		Role:             identity.RoleName(u.RoleID),
		IsTeacher:        res.IsTeacher,
		IsRepresentative: res.IsRepresentative,
	}
}

/* ===================== AUTH LIFECYCLE ===================== */

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a token pair plus profile.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid json body", err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.fail(c, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	if h.Limiter.Blocked(c.Request.Context(), req.Email) {
		h.fail(c, http.StatusTooManyRequests, "too many failed logins, try again later", nil)
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.Limiter.Failure(c.Request.Context(), req.Email)
			h.fail(c, http.StatusBadRequest, "invalid credentials", nil)
		case errors.Is(err, auth.ErrAccountInactive):
			h.fail(c, http.StatusForbidden, "account inactive", nil)
		default:
			logger.FromGin(c).Error("login failed", "err", err)
			h.fail(c, http.StatusInternalServerError, "server error", err)
		}
		return
	}

	h.Limiter.Success(c.Request.Context(), req.Email)

	// Wording differs when a legacy credential was upgraded during this
	// call; clients treat both as plain success.
	msg := "login successful"
	if res.Migrated {
		msg = "login successful, credentials upgraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"msg":          msg,
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"user":         profileFromLogin(res),
	})
}

type registerRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	NationalID string `json:"nationalId"`
	RoleID     int    `json:"roleId"`
}

// Register creates a user with a hashed credential. New accounts never store
// plaintext; only legacy rows do.
func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid json body", err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		h.fail(c, http.StatusBadRequest, "email, username and password are required", nil)
		return
	}
	if len(req.Password) < 8 {
		h.fail(c, http.StatusBadRequest, "password must be at least 8 characters", nil)
		return
	}
	if req.RoleID == 0 {
		req.RoleID = identity.RoleIDStudent
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		logger.FromGin(c).Error("password hash failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}

	user, err := h.Store.Create(c.Request.Context(), identity.CreateUserParams{
		Email:      req.Email,
		Username:   req.Username,
		Password:   hashed,
		Status:     "Activo",
		RoleID:     req.RoleID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
	})
	if err != nil {
		if errors.Is(err, identity.ErrDuplicate) {
			h.fail(c, http.StatusBadRequest, "email or username already registered", nil)
			return
		}
		logger.FromGin(c).Error("register failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":   true,
		"msg":  "user registered",
		"user": profileFromLogin(auth.LoginResult{User: user}),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges a refresh token for a new pair.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid json body", err)
		return
	}
	if req.RefreshToken == "" {
		h.fail(c, http.StatusBadRequest, "refreshToken is required", nil)
		return
	}

	res, err := h.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			h.fail(c, http.StatusUnauthorized, "refresh token expired", nil)
		case errors.Is(err, auth.ErrTokenInvalid):
			h.fail(c, http.StatusUnauthorized, "invalid refresh token", nil)
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.fail(c, http.StatusUnauthorized, "user not found", nil)
		case errors.Is(err, auth.ErrAccountInactive):
			h.fail(c, http.StatusForbidden, "account inactive", nil)
		default:
			logger.FromGin(c).Error("refresh failed", "err", err)
			h.fail(c, http.StatusInternalServerError, "server error", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"msg":          "token refreshed",
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"user":         profileFromLogin(res),
	})
}

// Me returns the authenticated caller's profile from context.
func (h Handlers) Me(c *gin.Context) {
	ident, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		h.fail(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"user": userProfile{
			ID:               ident.UserID,
			Username:         ident.Username,
			Email:            ident.Email,
			FirstName:        ident.FirstName,
			LastName:         ident.LastName,
			NationalID:       ident.NationalID,
			RoleID:           ident.RoleID,
			Role:             identity.RoleName(ident.RoleID),
			IsTeacher:        ident.IsTeacher,
			IsRepresentative: ident.IsRepresentative,
		},
	})
}
