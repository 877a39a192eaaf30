package middleware

import (
	"context"
	"errors"
	"net/http"

	"tasktracker/internal/domain"
	"tasktracker/internal/service"
	"tasktracker/internal/session"

	"github.com/gin-gonic/gin"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUser   = "user"
	CtxUserID = "user_id"
	CtxToken  = "token"
)

// Machine-readable rejection codes carried on every 401 from Auth.
const (
	CodeNoToken            = "NO_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeVerificationFailed = "TOKEN_VERIFICATION_FAILED"
	CodeUserNotFound       = "USER_NOT_FOUND"
)

// UserFinder is the slice of the user store the resolver needs.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Auth resolves the request identity or rejects the request. Token
// extraction is cookie-first then bearer header; a verified token is only
// trusted once its user still exists and is active. Each rejection is
// terminal, no retry happens here.
func Auth(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := session.FromRequest(c.Request)
		if !ok {
			reject(c, CodeNoToken, "Access denied. No token provided.")
			return
		}

		claims, err := service.ParseToken(token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				reject(c, CodeTokenExpired, "Token expired.")
			case errors.Is(err, service.ErrTokenInvalid):
				reject(c, CodeInvalidToken, "Invalid token.")
			default:
				reject(c, CodeVerificationFailed, "Token verification failed.")
			}
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			reject(c, CodeUserNotFound, "Token is valid but user not found.")
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxUserID, user.ID)
		// raw token kept around so /auth/refresh can supersede it
		c.Set(CtxToken, token)
		c.Next()
	}
}

func reject(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"message": message,
		"code":    code,
	})
}

// CurrentUser returns the identity attached by Auth.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

// CurrentUserID returns the resolved user id.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
