package exports

import (
	"net/http"

	"nomadtax_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// BasicAuthMiddleware validates export credentials for the public CSV
// endpoint. Password comparison goes through bcrypt, so a missing user
// and a wrong password are indistinguishable to the caller.
func BasicAuthMiddleware(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="exports"`)
			httpkit.Error(c, http.StatusUnauthorized, "export credentials required", nil)
			c.Abort()
			return
		}

		cred, err := repo.CredentialByUsername(c.Request.Context(), username)
		if err != nil {
			// Burn a comparison anyway to keep timing uniform.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
			c.Header("WWW-Authenticate", `Basic realm="exports"`)
			httpkit.Error(c, http.StatusUnauthorized, "invalid export credentials", nil)
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(password)); err != nil {
			c.Header("WWW-Authenticate", `Basic realm="exports"`)
			httpkit.Error(c, http.StatusUnauthorized, "invalid export credentials", nil)
			c.Abort()
			return
		}

		_ = repo.TouchLastUsed(c.Request.Context(), cred.ID)
		c.Set("exportCredentialID", cred.ID)
		c.Next()
	}
}
