package middlewares

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Browsers take "*" literally on credentialed preflights, so the allowed
// request headers are listed explicitly.
var allowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"}

// CORS allows the given origins. A "*" entry allows any origin and turns
// credentials off, since browsers reject credentialed wildcard responses.
func CORS(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowHeaders:  allowHeaders,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}

	return cors.New(config)
}
