package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfxtab/gfxtab-api/internal/server/handlers/api"
	"github.com/gfxtab/gfxtab-api/internal/server/handlers/contact"
	"github.com/gfxtab/gfxtab-api/internal/server/handlers/status"
	"github.com/gfxtab/gfxtab-api/internal/server/middlewares"
	"github.com/gfxtab/gfxtab-api/internal/version"
)

func SetupRoutes(svc *Services, httpCfg *HTTPConfig) http.Handler {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	statusH := status.New(svc.Status)
	contactH := contact.New(svc.Contact)

	r.Use(middlewares.Logger())
	r.Use(gin.Recovery())
	r.Use(middlewares.GZIP())
	r.Use(middlewares.SecureHeaders(httpCfg.CertFile != ""))
	r.Use(middlewares.CORS(httpCfg.CORSOrigins))

	r.GET("/", IndexHandler)
	r.GET("/healthz", HealthHandler)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/", RootHandler)
		apiGroup.POST("/status", statusH.Create)
		apiGroup.GET("/status", statusH.List)
		apiGroup.POST("/contact", contactH.Submit)
	}

	r.NoRoute(func(c *gin.Context) {
		c.PureJSON(http.StatusNotFound, api.ErrorResponse{Detail: api.DetailNotFound})
	})

	r.NoMethod(func(c *gin.Context) {
		c.PureJSON(http.StatusMethodNotAllowed, api.ErrorResponse{Detail: api.DetailMethodNotAllowed})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	// return a plaintext
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func RootHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"message": "Hello World",
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
