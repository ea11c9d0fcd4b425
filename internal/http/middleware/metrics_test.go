package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestActionLabel_Bounded(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query string
		want  string
	}{
		{"", ""},
		{"action=services", "services"},
		{"action=availability&serviceId=svc-1", "availability"},
		{"action=reserve", "reserve"},
		{"action=frobnicate", "other"},
		{"action=services'--", "other"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/booking?"+tc.query, nil)
		if got := actionLabel(c); got != tc.want {
			t.Fatalf("actionLabel(%q) = %q; want %q", tc.query, got, tc.want)
		}
	}
}

func TestMetrics_CountsByActionAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/booking", func(c *gin.Context) {
		c.String(http.StatusOK, `{"services":[]}`)
	})

	baseSvc := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/booking", "services", "200"))
	baseAvail := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/booking", "availability", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/booking?action=services", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /booking?action=services -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/booking?action=availability&serviceId=svc-1&date=2026-09-15", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /booking?action=availability -> %d", w.Code)
	}

	// Same route, separate series per action.
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/booking", "services", "200")); got != baseSvc+1 {
		t.Fatalf("services counter = %v; want %v", got, baseSvc+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/booking", "availability", "200")); got != baseAvail+1 {
		t.Fatalf("availability counter = %v; want %v", got, baseAvail+1)
	}
}

func TestMetrics_PathFallbackAndInflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	// Route with status only: size stays -1 and the size histogram is skipped.
	r.GET("/statusonly", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/does-not-exist", "", "404"))

	// Missing route: no match, so the path label falls back to the raw URL.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /does-not-exist -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/statusonly", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("GET /statusonly -> %d", w.Code)
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/does-not-exist", "", "404")); got != base404+1 {
		t.Fatalf("counter 404 fallback = %v; want %v", got, base404+1)
	}

	// In-flight gauge drains back to 0 after requests complete.
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
