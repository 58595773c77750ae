package middlewares

import (
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

const stsSeconds = 315360000

// SecureHeaders sets the browser hardening headers. Strict-Transport-Security
// is only added when hsts is set, i.e. when this process terminates TLS
// itself; otherwise it is left to the fronting proxy.
func SecureHeaders(hsts bool) gin.HandlerFunc {
	cfg := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		IENoOpen:              true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	}
	if hsts {
		cfg.STSSeconds = stsSeconds
		cfg.STSIncludeSubdomains = true
	}
	return secure.New(cfg)
}
