package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureOptions is the header profile for a JSON API. Nothing this
// service returns is meant to render in a browser, so framing and all
// content sources are shut off outright and referrers carry nothing.
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
	}
}

// NewSecure wraps handlers with the headers from opts.
func NewSecure(opts secure.Options) func(next http.Handler) http.Handler {
	return secure.New(opts).Handler
}
