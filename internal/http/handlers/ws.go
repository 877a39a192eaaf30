package handlers

import (
	"errors"
	"net/http"
	"os"

	"tasktracker/internal/logger"
	"tasktracker/internal/service"
	"tasktracker/internal/session"
	"tasktracker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TaskEvents upgrades to a websocket carrying task change events for the
// authenticated user. The token arrives through the usual session
// carriers, or as ?token= for clients that cannot set headers on the
// upgrade request.
func (h *Handler) TaskEvents(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			var ok bool
			token, ok = session.FromRequest(c.Request)
			if !ok {
				c.JSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided.", "code": "NO_TOKEN"})
				return
			}
		}

		claims, err := service.ParseToken(token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				c.JSON(http.StatusUnauthorized, gin.H{"message": "Token expired.", "code": "TOKEN_EXPIRED"})
			case errors.Is(err, service.ErrTokenInvalid):
				c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token.", "code": "INVALID_TOKEN"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"message": "Token verification failed.", "code": "TOKEN_VERIFICATION_FAILED"})
			}
			return
		}

		user, err := h.Users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is valid but user not found.", "code": "USER_NOT_FOUND"})
			return
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		ws.NewClient(user.ID, conn, hub).Run()
	}
}
