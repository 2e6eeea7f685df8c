package models

import "time"

// AutoVoterSetting is one row of the flat key/value configuration for
// the engagement simulator. Values are strings; parsing happens on read.
type AutoVoterSetting struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	SettingKey   string    `gorm:"uniqueIndex;not null" json:"setting_key"`
	SettingValue string    `json:"setting_value"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AutoVoterSetting) TableName() string { return "auto_voter_settings" }

// AutoCreatorSetting holds configuration shared with the post-creation
// automation, notably the openai_api_key the commenter also uses.
type AutoCreatorSetting struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	SettingKey   string    `gorm:"uniqueIndex;not null" json:"setting_key"`
	SettingValue string    `json:"setting_value"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AutoCreatorSetting) TableName() string { return "auto_creator_settings" }

// AutoVoterLog records one trigger of the simulator, successful or not.
type AutoVoterLog struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	RunID         string    `gorm:"type:varchar(36);index" json:"run_id"`
	ExecutionType string    `json:"execution_type"` // "cron" or "manual"
	Status        string    `json:"status"`         // "success" or "error"
	Message       string    `json:"message"`
	ExecutedAt    time.Time `json:"executed_at"`
}

func (AutoVoterLog) TableName() string { return "auto_voter_logs" }
