package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// serveWithSecurity runs one GET /booking request through SecurityHeaders with
// the given options. preset, when non-nil, runs before SecurityHeaders and can
// seed response headers the way RequestID or CORS would.
func serveWithSecurity(t *testing.T, opt SecurityOptions, preset gin.HandlerFunc, mutate func(*http.Request)) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if preset != nil {
		r.Use(preset)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/booking", func(c *gin.Context) { c.String(http.StatusOK, `{"services":[]}`) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/booking?action=services", nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /booking -> %d", w.Code)
	}
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := serveWithSecurity(t, SecurityOptions{}, nil, nil)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := h.Get(header); got != want {
			t.Fatalf("%s = %q; want %q", header, got, want)
		}
	}
	// Nothing optional was requested.
	for _, header := range []string{
		"Permissions-Policy", "X-Permitted-Cross-Domain-Policies",
		"Cache-Control", "Pragma", "Expires",
		"Strict-Transport-Security",
	} {
		if got := h.Get(header); got != "" {
			t.Fatalf("unexpected %s = %q", header, got)
		}
	}
}

func TestSecurityHeaders_ExposeRequestID(t *testing.T) {
	cases := []struct {
		name   string
		preset string // existing Access-Control-Expose-Headers value
		want   string
	}{
		{"set when absent", "", "X-Request-ID"},
		{"append to existing", "Retry-After", "Retry-After, X-Request-ID"},
		{"no duplicate", "X-Request-ID, Retry-After", "X-Request-ID, Retry-After"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := serveWithSecurity(t, SecurityOptions{}, func(c *gin.Context) {
				c.Header("X-Request-ID", "rid-booking-1")
				if tc.preset != "" {
					c.Header("Access-Control-Expose-Headers", tc.preset)
				}
				c.Next()
			}, nil)
			if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("Access-Control-Expose-Headers = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_PolicyNoStoreAndHSTSOverTLS(t *testing.T) {
	h := serveWithSecurity(t, SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	}, nil, func(req *http.Request) {
		req.TLS = &tls.ConnectionState{}
	})

	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("missing cache headers: %#v", h)
	}
	if got, want := h.Get("Strict-Transport-Security"), "max-age=86400; includeSubDomains; preload"; got != want {
		t.Fatalf("HSTS = %q; want %q", got, want)
	}
}

func TestSecurityHeaders_HSTSBehindProxy(t *testing.T) {
	// The booking API terminates TLS at the edge proxy; only the forwarded
	// proto header marks the request as HTTPS.
	h := serveWithSecurity(t, SecurityOptions{
		EnableHSTS: true,
		HSTSMaxAge: time.Hour,
	}, nil, func(req *http.Request) {
		req.Header.Set("X-Forwarded-Proto", "https")
	})
	if got, want := h.Get("Strict-Transport-Security"), "max-age=3600; includeSubDomains; preload"; got != want {
		t.Fatalf("HSTS = %q; want %q", got, want)
	}

	// Plain HTTP never gets HSTS, even when enabled.
	h = serveWithSecurity(t, SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour}, nil, nil)
	if got := h.Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("unexpected HSTS on plain HTTP: %q", got)
	}
}

func Test_isHTTPS(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/booking", nil)
	if isHTTPS(plain) {
		t.Fatalf("plain HTTP reported as https")
	}

	direct := httptest.NewRequest(http.MethodGet, "/booking", nil)
	direct.TLS = &tls.ConnectionState{}
	if !isHTTPS(direct) {
		t.Fatalf("TLS request not reported as https")
	}

	proxied := httptest.NewRequest(http.MethodGet, "/booking", nil)
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")
	if !isHTTPS(proxied) {
		t.Fatalf("forwarded proto not reported as https")
	}
}
