package models

import "time"

// SystemSetting persists one site-wide option value. Grouped options share a
// dotted key prefix, e.g. "bmi_widget_options.weight".
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
