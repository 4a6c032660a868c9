package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SecureHeadersConfig contains configuration for secure headers
type SecureHeadersConfig struct {
	UseHSTS               bool
	HSTSMaxAge            time.Duration
	HSTSIncludeSubdomains bool
	XFrameOptions         string
	ReferrerPolicy        string
}

// DefaultSecureHeadersConfig returns the secure headers for a JSON API.
// HSTS is only sent in production.
func DefaultSecureHeadersConfig(production bool) SecureHeadersConfig {
	return SecureHeadersConfig{
		UseHSTS:               production,
		HSTSMaxAge:            365 * 24 * time.Hour,
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "no-referrer",
	}
}

// SecureHeadersMiddleware adds security headers to responses
func SecureHeadersMiddleware(config SecureHeadersConfig) gin.HandlerFunc {
	hsts := "max-age=" + strconv.FormatInt(int64(config.HSTSMaxAge.Seconds()), 10)
	if config.HSTSIncludeSubdomains {
		hsts += "; includeSubDomains"
	}

	return func(c *gin.Context) {
		if config.UseHSTS {
			c.Header("Strict-Transport-Security", hsts)
		}
		if config.XFrameOptions != "" {
			c.Header("X-Frame-Options", config.XFrameOptions)
		}
		if config.ReferrerPolicy != "" {
			c.Header("Referrer-Policy", config.ReferrerPolicy)
		}
		c.Header("X-Content-Type-Options", "nosniff")
		// Gateway responses and payment URLs carry tokens and references
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}
