package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskloop/api/utils"
)

const bearerPrefix = "Bearer "

// AuthRequired is the single authentication enforcement point for protected
// routes. It extracts the bearer token from the Authorization header,
// validates it, and puts the authenticated user id into the request context.
// A missing or malformed header is a 401; a token that fails verification
// (bad signature, malformed payload, expired) is a 400.
func AuthRequired(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied"})
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			log.Println("AuthRequired: Authorization header is not a bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied"})
			return
		}

		tokenString := header[len(bearerPrefix):]
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied"})
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			log.Printf("AuthRequired: Invalid JWT token: %v", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
