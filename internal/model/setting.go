package model

import "time"

// Setting keys that only parents may change.
const (
	SettingOpenAIAPIKey    = "openai_api_key"
	SettingOpenAIModel     = "openai_model"
	SettingAIEnabled       = "ai_enabled"
	SettingChildAIEnabled  = "child_ai_enabled"
	SettingHomeworkEnabled = "homework_enabled"
)

// ParentOnlySetting reports whether key may only be written by a parent.
func ParentOnlySetting(key string) bool {
	switch key {
	case SettingOpenAIAPIKey, SettingOpenAIModel, SettingAIEnabled, SettingChildAIEnabled, SettingHomeworkEnabled:
		return true
	}
	return false
}

// Setting is a key/value pair. A nil UserID scopes the setting to the whole
// family; otherwise it belongs to one user.
type Setting struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     *string   `json:"value"`
	UserID    *int64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
