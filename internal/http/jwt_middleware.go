package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cleanease/internal/service"
)

const authIdentityKey = "auth_identity"

// RequireAuth valida el bearer token y guarda la identidad en el contexto.
func RequireAuth(jwtSvc *service.JWTService, errs *ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			errs.Status(c, http.StatusInternalServerError, "jwt not configured")
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			errs.Status(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		identity, err := jwtSvc.VerifyToken(token)
		if err != nil {
			errs.Write(c, err)
			return
		}

		c.Set(authIdentityKey, identity)
		c.Next()
	}
}

// OptionalAuth nunca rechaza: sin token válido la identidad queda anónima.
func OptionalAuth(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := service.Identity{}
		if token, ok := bearerToken(c); ok && jwtSvc != nil {
			identity = jwtSvc.VerifyOptional(token)
		}
		c.Set(authIdentityKey, identity)
		c.Next()
	}
}

// GetIdentity obtiene la identidad verificada desde el contexto.
func GetIdentity(c *gin.Context) (service.Identity, bool) {
	val, ok := c.Get(authIdentityKey)
	if !ok {
		return service.Identity{}, false
	}
	identity, ok := val.(service.Identity)
	if !ok || !identity.Authenticated {
		return service.Identity{}, false
	}
	return identity, true
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}
