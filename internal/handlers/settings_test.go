package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ankeapp/anke-backend/internal/models"
)

func newSettingsRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSettingsHandler(db)
	r := gin.New()
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	r.GET("/logs", h.GetLogs)
	return r
}

func TestUpdateSettingsUpserts(t *testing.T) {
	db := newHandlerDB(t)
	setSetting(t, db, "votes_per_run", "3")
	r := newSettingsRouter(db)

	payload := `{"settings": [
		{"setting_key": "votes_per_run", "setting_value": "5"},
		{"setting_key": "enabled", "setting_value": "true"}
	]}`
	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)

	var rows []models.AutoVoterSetting
	require.NoError(t, db.Order("setting_key asc").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "enabled", rows[0].SettingKey)
	assert.Equal(t, "true", rows[0].SettingValue)
	assert.Equal(t, "votes_per_run", rows[1].SettingKey)
	assert.Equal(t, "5", rows[1].SettingValue)
}

func TestUpdateSettingsRejectsMalformedBody(t *testing.T) {
	db := newHandlerDB(t)
	r := newSettingsRouter(db)

	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"settings": "nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSettingsOrdered(t *testing.T) {
	db := newHandlerDB(t)
	setSetting(t, db, "votes_per_run", "3")
	setSetting(t, db, "enabled", "true")
	r := newSettingsRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Less(t, strings.Index(body, "enabled"), strings.Index(body, "votes_per_run"))
}

func TestGetLogs(t *testing.T) {
	db := newHandlerDB(t)
	r := newSettingsRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"logs": []}`, w.Body.String())

	require.NoError(t, db.Create(&models.AutoVoterLog{
		RunID:         "11111111-1111-1111-1111-111111111111",
		ExecutionType: "manual",
		Status:        "success",
		Message:       "ok",
		ExecutedAt:    time.Now().UTC(),
	}).Error)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "11111111-1111-1111-1111-111111111111")
}
