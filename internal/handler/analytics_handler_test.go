package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prasobpai/internal/db"
	"github.com/prasobpai/internal/handler"
	"github.com/prasobpai/internal/router"
	"github.com/prasobpai/internal/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

type testEnv struct {
	db     *gorm.DB
	engine *gin.Engine
	views  *service.ViewRecorder
}

func setupHandlerTest(t *testing.T) (*testEnv, func()) {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Story{}, &db.StoryView{}, &db.SiteVisit{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	analytics := service.NewAnalyticsService(gdb, zap.NewNop())
	views := service.NewViewRecorder(analytics, zap.NewNop(), 16)
	api := handler.NewAPI(gdb, zap.NewNop(), analytics, views)

	env := &testEnv{db: gdb, engine: router.SetupRouter(api), views: views}

	return env, func() {
		views.Close()
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (e *testEnv) request(t *testing.T, method, path, body, forwardedFor string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}

	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return payload
}

func seedStory(t *testing.T, gdb *gorm.DB, id string, severity int) {
	t.Helper()

	story := db.Story{ID: id, Title: "เรื่องทดสอบ", Content: "เนื้อหา", Severity: severity}
	if err := gdb.Create(&story).Error; err != nil {
		t.Fatalf("failed to seed story: %v", err)
	}
}

func TestRecordViewMissingStoryID(t *testing.T) {
	env, cleanup := setupHandlerTest(t)
	defer cleanup()

	rr := env.request(t, http.MethodPost, "/api/view", `{}`, "1.2.3.4")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	payload := decodeJSON(t, rr)
	if payload["error"] != "Story ID is required" {
		t.Fatalf("unexpected error payload: %v", payload)
	}

	var rows int64
	if err := env.db.Model(&db.StoryView{}).Count(&rows).Error; err != nil {
		t.Fatalf("failed to count views: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected no view rows after validation failure, got %d", rows)
	}
}

func TestRecordViewCountsAndDedups(t *testing.T) {
	env, cleanup := setupHandlerTest(t)
	defer cleanup()

	seedStory(t, env.db, "story-1", 5)

	rr := env.request(t, http.MethodPost, "/api/view", `{"story_id":"story-1"}`, "9.9.9.9, 10.10.10.10")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if payload := decodeJSON(t, rr); payload["message"] != "View counted successfully" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	// 相同首跳、不同代理链：视为同一访客，窗口内去重
	rr = env.request(t, http.MethodPost, "/api/view", `{"story_id":"story-1"}`, "9.9.9.9, 11.11.11.11")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if payload := decodeJSON(t, rr); payload["message"] != "View already counted in 24h" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	// 不同访客：独立计数
	rr = env.request(t, http.MethodPost, "/api/view", `{"story_id":"story-1"}`, "8.8.8.8")
	if payload := decodeJSON(t, rr); payload["message"] != "View counted successfully" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	var story db.Story
	if err := env.db.First(&story, "id = ?", "story-1").Error; err != nil {
		t.Fatalf("failed to load story: %v", err)
	}
	if story.ViewCount != 2 {
		t.Fatalf("expected view_count=2, got %d", story.ViewCount)
	}
}

func TestStatsEmptySite(t *testing.T) {
	env, cleanup := setupHandlerTest(t)
	defer cleanup()

	rr := env.request(t, http.MethodGet, "/api/stats", "", "1.2.3.4")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	payload := decodeJSON(t, rr)
	if payload["dailyVisitors"] != float64(1) {
		t.Fatalf("expected dailyVisitors=1 (caller included), got %v", payload["dailyVisitors"])
	}
	if payload["avgSeverity"] != "0" {
		t.Fatalf("expected avgSeverity \"0\", got %v", payload["avgSeverity"])
	}
	if payload["severityLabel"] != service.SeverityLabelNormal {
		t.Fatalf("expected label %q, got %v", service.SeverityLabelNormal, payload["severityLabel"])
	}
}

func TestStatsAggregatesSeverityAndVisitors(t *testing.T) {
	env, cleanup := setupHandlerTest(t)
	defer cleanup()

	seedStory(t, env.db, "s1", 9)
	seedStory(t, env.db, "s2", 9)
	seedStory(t, env.db, "s3", 9)

	rr := env.request(t, http.MethodGet, "/api/stats", "", "1.2.3.4")
	payload := decodeJSON(t, rr)

	if payload["avgSeverity"] != "9.0" {
		t.Fatalf("expected avgSeverity \"9.0\", got %v", payload["avgSeverity"])
	}
	if payload["severityLabel"] != service.SeverityLabelCritical {
		t.Fatalf("expected critical label, got %v", payload["severityLabel"])
	}

	// 同一访客当天重复请求不增加访客数
	rr = env.request(t, http.MethodGet, "/api/stats", "", "1.2.3.4")
	payload = decodeJSON(t, rr)
	if payload["dailyVisitors"] != float64(1) {
		t.Fatalf("expected dailyVisitors to stay 1, got %v", payload["dailyVisitors"])
	}

	rr = env.request(t, http.MethodGet, "/api/stats", "", "5.6.7.8")
	payload = decodeJSON(t, rr)
	if payload["dailyVisitors"] != float64(2) {
		t.Fatalf("expected dailyVisitors=2, got %v", payload["dailyVisitors"])
	}
}
