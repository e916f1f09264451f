package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fropcore/bmiwidget/internal/models"
)

// "key" is reserved in MySQL, so the column is always quoted through clauses.
var keyColumn = clause.Column{Name: "key"}

func keyEquals(key string) clause.Eq {
	return clause.Eq{Column: keyColumn, Value: key}
}

// OptionKey joins an option group and field into a settings key.
func OptionKey(group, field string) string {
	return strings.TrimSpace(group) + "." + strings.TrimSpace(field)
}

// GetSystemSetting retrieves a system setting by key. Returns an empty string when not found.
func GetSystemSetting(ctx context.Context, db *gorm.DB, key string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("system settings: db is nil")
	}

	var setting models.SystemSetting
	err := db.WithContext(ctx).Where(keyEquals(key)).Take(&setting).Error
	if err == nil {
		return setting.Value, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if strings.Contains(err.Error(), "no such table") {
		return "", nil
	}
	return "", fmt.Errorf("system settings: get %q: %w", key, err)
}

// GetOptionGroup loads every setting stored under group, keyed by field name.
func GetOptionGroup(ctx context.Context, db *gorm.DB, group string) (map[string]string, error) {
	if db == nil {
		return nil, fmt.Errorf("system settings: db is nil")
	}
	group = strings.TrimSpace(group)
	if group == "" {
		return nil, fmt.Errorf("system settings: group is required")
	}

	var rows []models.SystemSetting
	prefix := group + "."
	err := db.WithContext(ctx).
		Where(clause.Like{Column: keyColumn, Value: prefix + "%"}).
		Find(&rows).Error
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("system settings: list %q: %w", group, err)
	}

	// LIKE treats "_" as a wildcard, so the prefix is re-checked here.
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		if !strings.HasPrefix(row.Key, prefix) {
			continue
		}
		if field := strings.TrimPrefix(row.Key, prefix); field != "" {
			values[field] = row.Value
		}
	}
	return values, nil
}

// UpsertSystemSetting stores or updates a system setting value.
func UpsertSystemSetting(ctx context.Context, db *gorm.DB, key, value string) error {
	if db == nil {
		return fmt.Errorf("system settings: db is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("system settings: key is required")
	}

	record := models.SystemSetting{
		Key:   key,
		Value: value,
	}

	err := db.WithContext(ctx).
		Where(keyEquals(key)).
		Assign(map[string]any{"value": value}).
		FirstOrCreate(&record).Error
	if err != nil && IsUniqueConstraintError(err) {
		// A concurrent writer created the row between the read and the insert.
		err = db.WithContext(ctx).
			Model(&models.SystemSetting{}).
			Where(keyEquals(key)).
			Update("value", value).Error
	}
	if err != nil {
		return fmt.Errorf("system settings: upsert %q: %w", key, err)
	}

	return nil
}

// UpsertOptionGroup writes all fields of group in one transaction.
func UpsertOptionGroup(ctx context.Context, db *gorm.DB, group string, values map[string]string) error {
	if db == nil {
		return fmt.Errorf("system settings: db is nil")
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for field, value := range values {
			if err := UpsertSystemSetting(ctx, tx, OptionKey(group, field), value); err != nil {
				return err
			}
		}
		return nil
	})
}
