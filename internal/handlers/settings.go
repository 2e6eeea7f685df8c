package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ankeapp/anke-backend/internal/models"
)

// SettingsHandler serves the admin auto-voter settings table and the
// execution log list.
type SettingsHandler struct {
	db *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// GetSettings returns every auto_voter_settings row.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	var rows []models.AutoVoterSetting
	if err := h.db.Order("setting_key asc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": rows})
}

// UpdateSettings upserts a batch of key/value pairs. Values are stored
// as-is; the engine applies defaults and parsing on read.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var input struct {
		Settings []struct {
			SettingKey   string `json:"setting_key" binding:"required"`
			SettingValue string `json:"setting_value"`
		} `json:"settings" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, s := range input.Settings {
		row := models.AutoVoterSetting{SettingKey: s.SettingKey, SettingValue: s.SettingValue}
		err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings saved", "count": len(input.Settings)})
}

// GetLogs returns recent simulator executions, newest first.
func (h *SettingsHandler) GetLogs(c *gin.Context) {
	var logs []models.AutoVoterLog
	if err := h.db.Order("executed_at desc").Limit(50).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}
	if logs == nil {
		logs = []models.AutoVoterLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
