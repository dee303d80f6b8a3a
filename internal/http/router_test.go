package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/ghostgear-presence/internal/config"
	"github.com/tbourn/ghostgear-presence/internal/http/middleware"
	"github.com/tbourn/ghostgear-presence/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		LogRedact:   true,
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   100,
		Presence: config.PresenceConfig{
			OnlineWindow: 5 * time.Minute,
			UnreadWindow: 24 * time.Hour,
		},
		MaxMessageRunes: 500,
		IdempotencyTTL:  time.Hour,
		OTEL:            config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config, rdb redis.Cmdable) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)
	RegisterRoutes(r, db, rdb, cfg)
	return r, db
}

func call(r http.Handler, method, path, user string, body any, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(middleware.HeaderUserID, user)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, testConfig(), nil)

	w := call(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	w = call(r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	if w = call(r, http.MethodGet, "/nope", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	if w = call(r, http.MethodPost, "/health", "", nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
	if w = call(r, http.MethodGet, "/swagger/index.html", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be off by default, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r, _ := newRouter(t, cfg, nil)

	w := call(r, http.MethodGet, "/health", "", nil, "Origin", "http://example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	w = call(r, http.MethodGet, "/health", "", nil, "Origin", "http://evil.test")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "http://evil.test" {
		t.Fatal("unlisted origin must not be echoed")
	}
}

func TestRegisterRoutes_SwaggerEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ := newRouter(t, cfg, nil)

	if w := call(r, http.MethodGet, "/swagger/index.html", "", nil); w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/index.html = %d", w.Code)
	}
}

func TestRegisterRoutes_RiderFlow(t *testing.T) {
	r, _ := newRouter(t, testConfig(), nil)
	base := "/api/v1"

	for _, u := range []string{"rider", "buddy"} {
		if w := call(r, http.MethodPost, base+"/users", u, map[string]string{"display_name": u}); w.Code != http.StatusOK {
			t.Fatalf("register %s = %d %s", u, w.Code, w.Body.String())
		}
	}

	if w := call(r, http.MethodPost, base+"/presence/heartbeat", "rider", nil); w.Code != http.StatusOK {
		t.Fatalf("heartbeat = %d %s", w.Code, w.Body.String())
	}
	var online struct {
		Count  int64  `json:"count"`
		Source string `json:"source"`
	}
	w := call(r, http.MethodGet, base+"/presence/online", "", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &online)
	if online.Count != 1 || online.Source != "computed" {
		t.Fatalf("online = %+v", online)
	}

	msg := map[string]string{"channel": "private", "recipient_id": "rider", "content": "coffee stop?"}
	if w := call(r, http.MethodPost, base+"/messages", "buddy", msg, middleware.HeaderIdempotencyKey, "k-1"); w.Code != http.StatusCreated {
		t.Fatalf("send = %d %s", w.Code, w.Body.String())
	}
	w = call(r, http.MethodPost, base+"/messages", "buddy", msg, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusOK || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay = %d replayed=%q", w.Code, w.Header().Get("Idempotency-Replayed"))
	}

	var unread struct {
		Count int64 `json:"count"`
	}
	w = call(r, http.MethodGet, base+"/messages/unread?channel=private", "rider", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &unread)
	if unread.Count != 1 {
		t.Fatalf("unread = %d, want 1 (replay must not duplicate)", unread.Count)
	}

	if w := call(r, http.MethodGet, base+"/admin/users/unread", "rider", nil); w.Code != http.StatusForbidden {
		t.Fatalf("admin as rider = %d", w.Code)
	}
}

func TestRegisterRoutes_Gzip(t *testing.T) {
	r, _ := newRouter(t, testConfig(), nil)

	w := call(r, http.MethodGet, "/api/v1/presence/online", "", nil, "Accept-Encoding", "gzip")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
}

func TestRegisterRoutes_JWTIdentity(t *testing.T) {
	const secret = "test-secret"
	cfg := testConfig()
	cfg.JWTSecret = secret
	r, _ := newRouter(t, cfg, nil)

	// The dev header is ignored once a secret is configured.
	w := call(r, http.MethodPost, "/api/v1/users", "rider", map[string]string{"display_name": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("header identity with secret = %d, want 401", w.Code)
	}
	w = call(r, http.MethodPost, "/api/v1/presence/heartbeat", "", map[string]string{"user_id": "rider"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous heartbeat with secret = %d, want 401", w.Code)
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "rider",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	w = call(r, http.MethodPost, "/api/v1/users", "", map[string]string{"display_name": "x"}, "Authorization", "Bearer "+tok)
	if w.Code != http.StatusOK {
		t.Fatalf("bearer identity = %d %s", w.Code, w.Body.String())
	}

	w = call(r, http.MethodGet, "/api/v1/presence/online", "", nil, "Authorization", "Bearer garbage")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want 401", w.Code)
	}
}

func TestRegisterRoutes_RedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.RateRPS = 1
	cfg.RateBurst = 2
	r, _ := newRouter(t, cfg, rdb)

	for i := 0; i < 2; i++ {
		if w := call(r, http.MethodGet, "/api/v1/presence/online", "rider", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
	w := call(r, http.MethodGet, "/api/v1/presence/online", "rider", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", w.Code)
	}
	// Other callers have their own bucket.
	if w := call(r, http.MethodGet, "/api/v1/presence/online", "other", nil); w.Code != http.StatusOK {
		t.Fatalf("other caller = %d", w.Code)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	r, db := newRouter(t, testConfig(), nil)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	_ = sqlDB.Close()

	w := call(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET /health with closed db = %d, want 503", w.Code)
	}

	// Telemetry keeps answering.
	w = call(r, http.MethodGet, "/api/v1/presence/online", "", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"degraded":true`)) {
		t.Fatalf("online with closed db = %d %s", w.Code, w.Body.String())
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}
