package rest

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type Middleware struct {
	Handler gin.HandlerFunc
	Group   string
}

func NewMiddleware(group string, handler gin.HandlerFunc) Middleware {
	return Middleware{
		Group:   group,
		Handler: handler,
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Issuer-Id")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

const internalTokenEnvKey = "INTERNAL_API_TOKEN"

// InternalAuthMiddleware guards routes reserved for trusted internal callers
// (the oracle callback entry point). The token is shared out-of-band.
func InternalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No Authorization Header Provided"})
			return
		}

		if token != os.Getenv(internalTokenEnvKey) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Wrong auth token"})
			return
		}

		c.Next()
	}
}
