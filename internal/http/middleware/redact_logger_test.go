package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRedactingLogger_InfoAndRedactions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := withCapturedLogger(t)

	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-resp")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/presence/users/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000&lat=41.0082&lon=28.9784"
	req := httptest.NewRequest(http.MethodGet, "/presence/users/123?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	req.Header.Set("X-Request-ID", "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info log, got: %s", logs)
	}
	if !strings.Contains(logs, `"path":"/presence/users/:id"`) {
		t.Fatalf("expected route pattern as path, got: %s", logs)
	}
	if !strings.Contains(logs, `"request_id":"rid-resp"`) {
		t.Fatalf("expected request_id from response header, got: %s", logs)
	}
	for _, want := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]", "lat=[REDACTED:geo]", "lon=[REDACTED:geo]"} {
		if !strings.Contains(logs, want) {
			t.Fatalf("missing %s in: %s", want, logs)
		}
	}
	if strings.Contains(logs, "41.0082") || strings.Contains(logs, "28.9784") {
		t.Fatalf("coordinates leaked: %s", logs)
	}
	for _, h := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if !strings.Contains(logs, `"`+h+`":"[REDACTED]"`) {
			t.Fatalf("%s must be masked: %s", h, logs)
		}
	}
	if !strings.Contains(logs, `"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`) {
		t.Fatalf("expected redacted X-Custom header, got: %s", logs)
	}
}

func TestRedactingLogger_WarnAndErrorLevels_RequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := withCapturedLogger(t)

	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	reqWarn := httptest.NewRequest(http.MethodGet, "/warn", nil)
	reqWarn.Header.Set("X-Request-ID", "rid-warn")
	r.ServeHTTP(httptest.NewRecorder(), reqWarn)

	reqErr := httptest.NewRequest(http.MethodGet, "/error", nil)
	reqErr.Header.Set("X-Request-ID", "rid-err")
	r.ServeHTTP(httptest.NewRecorder(), reqErr)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log not found or missing request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log not found or missing request_id fallback: %s", logs)
	}
}

func TestRedactingLogger_ContextLoggerReachesServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := withCapturedLogger(t)

	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/svc", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("from-service")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/svc", nil)
	req.Header.Set("X-Request-ID", "rid-svc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	logs := buf.String()
	if !strings.Contains(logs, `"message":"from-service"`) || !strings.Contains(logs, `"request_id":"rid-svc"`) {
		t.Fatalf("service log should carry request_id: %s", logs)
	}
}

func TestRedact_Empty(t *testing.T) {
	if redact("") != "" {
		t.Fatal("empty input must stay empty")
	}
	if got := redact("longitude=-73.98"); got != "longitude=[REDACTED:geo]" {
		t.Fatalf("redact = %q", got)
	}
}
