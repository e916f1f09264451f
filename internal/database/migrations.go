package database

import (
	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/models"
)

// WidgetOptionKey groups every stored measurement field.
const WidgetOptionKey = "bmi_widget_options"

// widgetOptionDefaults are written once so a fresh install reads a complete record.
// updated_at is deliberately absent: it only appears after the first save.
var widgetOptionDefaults = map[string]string{
	"weight":       "0",
	"weight_unit":  "kg",
	"height":       "0",
	"height_unit":  "cm",
	"show_updated": "0",
	"custom_label": "",
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SystemSetting{},
		&models.AuditLog{},
		&models.CacheEntry{},
	)
}

// SeedData inserts default widget options without touching existing values.
func SeedData(db *gorm.DB) error {
	for field, value := range widgetOptionDefaults {
		setting := models.SystemSetting{Key: OptionKey(WidgetOptionKey, field), Value: value}
		if err := db.Where(models.SystemSetting{Key: setting.Key}).Attrs(setting).FirstOrCreate(&models.SystemSetting{}).Error; err != nil {
			return err
		}
	}
	return nil
}
