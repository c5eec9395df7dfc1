package auth

import (
	"net/http"
	"strings"

	"airport_service/pkg/domain"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey  = "user_id"
	isStaffKey = "is_staff"
)

// Authenticate requires a valid bearer token and stores its claims on the
// context.
func Authenticate(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthorized.Error()})
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "given token not valid for any token type"})
			return
		}
		SetUser(c, claims.UserID, claims.IsStaff)
		c.Next()
	}
}

// StaffOnly rejects every non-staff caller.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsStaff(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// StaffOrReadOnly lets any authenticated caller read and only staff write.
func StaffOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if !IsStaff(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// SetUser records the authenticated caller on the context.
func SetUser(c *gin.Context, id uint, staff bool) {
	c.Set(userIDKey, id)
	c.Set(isStaffKey, staff)
}

func UserIDFrom(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func IsStaff(c *gin.Context) bool {
	return c.GetBool(isStaffKey)
}
