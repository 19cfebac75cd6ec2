package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/studyhub/studyhub/internal/auth"
	"github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxCallerKey = "caller"
)

// Caller is the pre-validated identity a request runs as.
type Caller struct {
	UserID   string
	Role     string
	Approved bool
	Active   bool
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return strings.EqualFold(c.Role, iauth.RoleAdmin)
}

// CallerFrom returns the caller stored by Auth.
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(CtxCallerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxCallerKey, Caller{
			UserID:   claims.UserID,
			Role:     strings.ToUpper(claims.Role),
			Approved: claims.Approved,
			Active:   claims.Active,
		})

		c.Next()
	}
}
