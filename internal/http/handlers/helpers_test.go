package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/http/middleware"
	"github.com/tbourn/ghostgear-presence/internal/repo"
	"github.com/tbourn/ghostgear-presence/internal/services"
)

// ---------- test plumbing ----------

type testAPI struct {
	t   *testing.T
	db  *gorm.DB
	r   *gin.Engine
	now *time.Time
}

func openDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:h_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := repo.AutoMigrate(db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

// newTestAPI wires the real services over a private in-memory database with
// a pinned clock.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := openDB(t, true)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := services.Clock(func() time.Time { return now })

	settings := &services.SettingsService{DB: db}
	msgs := &services.MessageService{DB: db, Now: clock}

	h := New(Deps{
		Presence: &services.PresenceService{DB: db, Override: services.SettingsOverride{Settings: settings}, Now: clock},
		Activity: &services.ActivityService{DB: db, Now: clock},
		Messages: msgs,
		Settings: settings,
		Users:    &services.UserService{DB: db},
		Admin:    &services.AdminService{DB: db, Settings: settings, Now: clock},
	})

	r := gin.New()
	r.Use(middleware.Identity(middleware.IdentityOptions{}))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{Scope: IdempotencyScope}, msgs.HasReplay))
	mountRoutes(r, h)

	return &testAPI{t: t, db: db, r: r, now: &now}
}

// mountRoutes mounts every handler the way the router does, minus the
// ambient middleware that is tested on its own.
func mountRoutes(r *gin.Engine, h *Handlers) {
	r.POST("/presence/heartbeat", h.Heartbeat)
	r.GET("/presence/online", h.OnlineCount)
	r.GET("/presence/users/:id", h.UserPresence)
	r.POST("/users", h.RegisterUser)
	r.PUT("/users/me/settings", h.UpdateMySettings)
	r.GET("/messages/unread", h.UnreadCount)
	r.POST("/messages/read", h.MarkRead)
	r.POST("/messages", h.SendMessage)
	r.GET("/messages", h.ListThread)
	r.GET("/settings/notifications", h.GetNotifications)
	r.GET("/settings/:key", h.GetSetting)

	master := r.Group("", h.RequireMaster)
	master.PUT("/settings/notifications", h.PutNotifications)
	master.PUT("/settings/:key", h.PutSetting)

	admin := r.Group("/admin", h.RequireMaster)
	admin.GET("/users/unread", h.UsersWithUnread)
	admin.PUT("/presence/override", h.SetOnlineOverride)
	admin.DELETE("/presence/override", h.ClearOnlineOverride)
	admin.POST("/support/:id/messages", h.ExpertReply)
	admin.POST("/support/:id/read", h.MarkSupportRead)
	admin.POST("/support/:id/end", h.EndSupportChat)
}

func (a *testAPI) seedUser(id string) {
	a.t.Helper()
	if _, err := repo.UpsertUser(context.Background(), a.db, id, id); err != nil {
		a.t.Fatalf("seed %s: %v", id, err)
	}
}

func (a *testAPI) seedMaster(id string) {
	a.t.Helper()
	a.seedUser(id)
	if err := a.db.Model(&domain.User{}).Where("id = ?", id).Update("is_master", true).Error; err != nil {
		a.t.Fatalf("promote %s: %v", id, err)
	}
}

// do performs a request as user (empty for anonymous) with an optional JSON body.
func (a *testAPI) do(method, path, user string, body any, hdr ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	return serve(a.t, a.r, method, path, user, body, hdr...)
}

func serve(t *testing.T, r http.Handler, method, path, user string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
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

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status = %d, want %d; body=%s", w.Code, code, w.Body.String())
	}
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	wantStatus(t, w, status)
	if e := decode[ErrorResponse](t, w); e.Code != code {
		t.Fatalf("code = %q, want %q", e.Code, code)
	}
}
