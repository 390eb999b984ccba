package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// corsMethods is every method the API router serves. The set is fixed, so
// it is not configurable.
const corsMethods = "GET, POST, PUT, DELETE, OPTIONS"

// Default header lists for browser clients of this API: JSON bodies and
// bearer tokens go in, the correlation id and rate limit budget come out.
var (
	defaultAllowHeaders  = []string{"Content-Type", "Authorization"}
	defaultExposeHeaders = []string{
		HeaderRequestID,
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"X-RateLimit-Reset",
	}
)

// defaultCORSMaxAge caches preflight results for a day.
const defaultCORSMaxAge = 86400

// CORSConfig configures cross-origin access to the API.
type CORSConfig struct {
	// AllowOrigins lists the origins allowed to call the API. Empty, or
	// any entry "*", allows every origin.
	AllowOrigins []string

	// AllowHeaders overrides the default request header allowlist
	// (Content-Type, Authorization).
	AllowHeaders []string

	// ExposeHeaders overrides the default set of response headers the
	// browser may read (the request id and rate limit headers).
	ExposeHeaders []string

	// AllowCredentials permits cookies and TLS client certs. It forces
	// specific-origin echo because the Fetch standard rejects
	// credentials combined with a wildcard origin.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero means a
	// day; negative disables caching.
	MaxAge int
}

// cors holds the precomputed header values shared by all requests.
type cors struct {
	allowAll         bool
	origins          map[string]string // lowercased origin -> configured spelling
	allowHeaders     string
	exposeHeaders    string
	allowCredentials bool
	maxAge           string
}

// CORS returns a middleware granting browser clients cross-origin access.
// Origin matching is case-insensitive but echoes the configured spelling,
// and Vary headers are set so shared caches never serve one origin's
// response to another.
func CORS(cfg CORSConfig) Middleware {
	c := &cors{
		allowAll:         len(cfg.AllowOrigins) == 0,
		origins:          make(map[string]string, len(cfg.AllowOrigins)),
		allowCredentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			c.allowAll = true
		}
		c.origins[strings.ToLower(o)] = o
	}
	if cfg.AllowCredentials {
		c.allowAll = false
	}

	if cfg.AllowHeaders == nil {
		cfg.AllowHeaders = defaultAllowHeaders
	}
	c.allowHeaders = strings.Join(cfg.AllowHeaders, ", ")

	if cfg.ExposeHeaders == nil {
		cfg.ExposeHeaders = defaultExposeHeaders
	}
	c.exposeHeaders = strings.Join(cfg.ExposeHeaders, ", ")

	switch {
	case cfg.MaxAge == 0:
		c.maxAge = strconv.Itoa(defaultCORSMaxAge)
	case cfg.MaxAge < 0:
		c.maxAge = "0"
	default:
		c.maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Same-origin or non-browser request.
				if !c.allowAll {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			if isPreflight(r) {
				c.preflight(w, origin)
				return
			}

			c.actual(w, origin)
			next.ServeHTTP(w, r)
		})
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// preflight answers an OPTIONS probe. Disallowed origins still get 204,
// just without any Access-Control headers.
func (c *cors) preflight(w http.ResponseWriter, origin string) {
	h := w.Header()
	h.Add("Vary", "Origin")
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")

	if allow := c.allowOrigin(origin); allow != "" {
		h.Set("Access-Control-Allow-Origin", allow)
		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", c.allowHeaders)
		h.Set("Access-Control-Max-Age", c.maxAge)
		if c.allowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// actual decorates a non-preflight cross-origin response.
func (c *cors) actual(w http.ResponseWriter, origin string) {
	h := w.Header()
	if !c.allowAll {
		h.Add("Vary", "Origin")
	}

	allow := c.allowOrigin(origin)
	if allow == "" {
		return
	}
	h.Set("Access-Control-Allow-Origin", allow)
	h.Set("Access-Control-Expose-Headers", c.exposeHeaders)
	if c.allowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}

// allowOrigin resolves the Access-Control-Allow-Origin value, or "" when
// the origin is not allowed.
func (c *cors) allowOrigin(origin string) string {
	if c.allowAll {
		return "*"
	}
	if configured, ok := c.origins[strings.ToLower(origin)]; ok {
		return configured
	}
	return ""
}
