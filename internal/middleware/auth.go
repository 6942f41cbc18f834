package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/models"
	"github.com/oetzilabs/ciftlikpdf/internal/store"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentUserKey is where auth middleware stores the authenticated user.
const currentUserKey = "currentUser"

// CurrentUser returns the authenticated user set by AuthMiddleware or
// SessionMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// AuthMiddleware validates the bearer JWT and loads the current user. The
// token is taken from the Authorization header, falling back to the token
// query parameter for download links that cannot set headers.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "token expired or invalid")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "user no longer exists")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "load user failed")
			}
			c.Abort()
			return
		}

		c.Set(currentUserKey, &user)
		c.Next()
	}
}

// SessionMiddleware is the cookie-backed auth strategy used by the v2
// routes. It never falls back to JWTs; the two strategies are mutually
// exclusive per route group.
func SessionMiddleware(cookieName string, sessions *store.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(cookieName)
		if err != nil || cookie == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			c.Abort()
			return
		}

		session, err := sessions.Get(cookie)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired or invalid")
			c.Abort()
			return
		}

		user := session.User
		c.Set(currentUserKey, &user)
		c.Next()
	}
}

// RequireRole gates a route group on a minimum role. It must run after an
// auth middleware.
func RequireRole(minRole string) gin.HandlerFunc {
	rank := func(role string) int {
		switch role {
		case models.RoleSuperadmin:
			return 3
		case models.RoleAdmin:
			return 2
		case models.RoleViewer:
			return 1
		}
		return 0
	}
	required := rank(minRole)

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			c.Abort()
			return
		}
		if rank(user.Role) < required {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
