package handlers

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ankeapp/anke-backend/internal/autovoter"
	"github.com/ankeapp/anke-backend/internal/database"
	"github.com/ankeapp/anke-backend/internal/models"
)

type stubCompleter struct{ text string }

func (s stubCompleter) Complete(context.Context, string) (string, error) { return s.text, nil }

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func newAutoVoterRouter(t *testing.T, db *gorm.DB, cronSecret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := autovoter.NewStore(db)
	noon := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := autovoter.New(store, autovoter.Config{EnvAPIKey: "test-key"}, zap.NewNop(),
		autovoter.WithClock(func() time.Time { return noon }),
		autovoter.WithRand(rand.New(rand.NewSource(1))),
		autovoter.WithCompleterFactory(func(string) autovoter.Completer { return stubCompleter{text: "コメント"} }),
	)
	h := NewAutoVoterHandler(engine, store, cronSecret, zap.NewNop())

	r := gin.New()
	r.POST("/api/auto-voter/execute-auto", h.ExecuteAuto)
	r.GET("/api/cron/auto-commenter-liker", h.Cron)
	return r
}

func setSetting(t *testing.T, db *gorm.DB, key, value string) {
	t.Helper()
	require.NoError(t, db.Create(&models.AutoVoterSetting{SettingKey: key, SettingValue: value}).Error)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestExecuteAutoNoPosts(t *testing.T) {
	db := newHandlerDB(t)
	r := newAutoVoterRouter(t, db, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auto-voter/execute-auto", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "対象記事が見つかりませんでした")
}

func TestCronRejectsBadSecret(t *testing.T) {
	db := newHandlerDB(t)
	r := newAutoVoterRouter(t, db, "cron-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/cron/auto-commenter-liker", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "認証に失敗しました")
}

func TestCronSkipsWhenDisabled(t *testing.T) {
	db := newHandlerDB(t)
	r := newAutoVoterRouter(t, db, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cron/auto-commenter-liker", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["skipped"])
	assert.Contains(t, body["message"], "AI自動コメントが無効化されています")

	var logs int64
	require.NoError(t, db.Model(&models.AutoVoterLog{}).Count(&logs).Error)
	assert.Zero(t, logs)
}

func TestCronSkipsWhenIntervalTooShort(t *testing.T) {
	db := newHandlerDB(t)
	setSetting(t, db, "enabled", "true")
	setSetting(t, db, "interval", "120")
	setSetting(t, db, "interval_variance", "30")
	setSetting(t, db, "last_execution", time.Now().Add(-10*time.Minute).UTC().Format(time.RFC3339))
	r := newAutoVoterRouter(t, db, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cron/auto-commenter-liker", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["skipped"])
	assert.Contains(t, body["message"], "実行間隔が短すぎます")
}

func TestCronRunsAndRecordsExecution(t *testing.T) {
	db := newHandlerDB(t)
	setSetting(t, db, "enabled", "true")
	// Degenerate window so the wall-clock blackout check can never fire.
	setSetting(t, db, "no_run_start", "00:00")
	setSetting(t, db, "no_run_end", "00:00")
	r := newAutoVoterRouter(t, db, "cron-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/cron/auto-commenter-liker", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "AI自動コメントを実行しました", body["message"])

	var last models.AutoVoterSetting
	require.NoError(t, db.Where("setting_key = ?", "last_execution").First(&last).Error)
	_, err := time.Parse(time.RFC3339, last.SettingValue)
	assert.NoError(t, err)

	var logs []models.AutoVoterLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "cron", logs[0].ExecutionType)
	assert.Equal(t, "success", logs[0].Status)
	assert.Len(t, logs[0].RunID, 36)
}
