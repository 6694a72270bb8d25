package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"art-advisor/internal/service"
)

const adminClaimsKey = "admin_claims"

// AdminAuthMiddleware valida el token de operador y guarda sus claims en el contexto.
func AdminAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jwtSvc.Enabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "manual trigger disabled"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.ParseAdminToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(adminClaimsKey, claims)
		c.Next()
	}
}

// GetAdminClaims obtiene los claims del operador desde el contexto.
func GetAdminClaims(c *gin.Context) (service.AdminClaims, bool) {
	val, ok := c.Get(adminClaimsKey)
	if !ok {
		return service.AdminClaims{}, false
	}
	claims, ok := val.(service.AdminClaims)
	return claims, ok
}
