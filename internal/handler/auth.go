package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/middleware"
	"github.com/oetzilabs/ciftlikpdf/internal/models"
	"github.com/oetzilabs/ciftlikpdf/internal/store"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves login, registration and the current-session endpoint for both
// auth strategies (JWT bearer and v2 cookie sessions).
type AuthHandler struct {
	Users      *store.UserStore
	Sessions   *store.SessionStore
	JWTSecret  string
	TokenTTL   time.Duration
	CookieName string
	SessionTTL time.Duration
}

func NewAuthHandler(users *store.UserStore, sessions *store.SessionStore, jwtSecret string, tokenTTLHours int, cookieName string, sessionTTLHours int) *AuthHandler {
	if tokenTTLHours <= 0 {
		tokenTTLHours = 7 * 24
	}
	if sessionTTLHours <= 0 {
		sessionTTLHours = 7 * 24
	}
	return &AuthHandler{
		Users:      users,
		Sessions:   sessions,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(tokenTTLHours) * time.Hour,
		CookieName: cookieName,
		SessionTTL: time.Duration(sessionTTLHours) * time.Hour,
	}
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

// Register creates a viewer account. Roles are only ever raised by a
// superadmin afterwards.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if !usernameRe.MatchString(req.Name) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name must be 3-32 letters, digits or underscores")
		return
	}

	user, err := h.Users.Create(req.Name, req.Password, models.RoleViewer)
	if err != nil {
		if errors.Is(err, store.ErrNameTaken) {
			util.Error(c, http.StatusConflict, util.CodeConflict, "name already taken")
			return
		}
		if errors.Is(err, store.ErrInvalidInput) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create user failed")
		return
	}

	util.Success(c, util.Response{"user": user})
}

type loginReq struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	user, ok := h.Users.VerifyLogin(req.Name, req.Password)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong name or password")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "issue token failed")
		return
	}

	util.Success(c, util.Response{"token": token, "user": user})
}

// LoginV2 verifies credentials and sets a session cookie (the v2 strategy).
func (h *AuthHandler) LoginV2(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	user, ok := h.Users.VerifyLogin(req.Name, req.Password)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong name or password")
		return
	}

	session, err := h.Sessions.Create(user.ID, h.SessionTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create session failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, session.ID, int(h.SessionTTL.Seconds()), "/", "", false, true)
	util.Success(c, util.Response{"user": user})
}

// LogoutV2 revokes the current session and clears the cookie.
func (h *AuthHandler) LogoutV2(c *gin.Context) {
	if cookie, err := c.Cookie(h.CookieName); err == nil && cookie != "" {
		_ = h.Sessions.Revoke(cookie)
	}
	c.SetCookie(h.CookieName, "", -1, "/", "", false, true)
	util.Success(c, util.Response{"message": "signed out"})
}

// Session returns the authenticated user.
func (h *AuthHandler) Session(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	util.Success(c, util.Response{"user": user})
}
