package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/utils"
)

const principalKey = "principal"

// PrincipalLoader resolves a token subject into the current identity.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, username string) (*models.Principal, error)
}

// Authenticate installs the caller's principal when the request carries a
// valid bearer token. It never rejects a request; anything wrong with the
// token leaves the request anonymous for the access policy to judge.
func Authenticate(tokens *utils.TokenService, users PrincipalLoader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.Next()
			return
		}

		claims, err := tokens.ValidateJWT(strings.TrimSpace(tokenString))
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("ignoring invalid bearer token")
			c.Next()
			return
		}

		principal, err := users.LoadPrincipal(c.Request.Context(), claims.Subject)
		if err != nil {
			log.Debug().Err(err).Str("subject", claims.Subject).Msg("token subject could not be loaded")
			c.Next()
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

func SetPrincipal(c *gin.Context, p *models.Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the authenticated identity of the request, if any.
func CurrentPrincipal(c *gin.Context) (*models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*models.Principal)
	return p, ok && p != nil
}
