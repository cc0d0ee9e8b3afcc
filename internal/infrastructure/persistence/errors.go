package persistence

import (
	"errors"
	"strings"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err comes from a unique index. Dialects
// opened with TranslateError return gorm.ErrDuplicatedKey; the message check
// covers connections opened without it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// saveAggregate inserts model when no row carries its id, otherwise updates
// every column guarded by the version the caller loaded. On success agg
// holds the stored version.
func saveAggregate(db *gorm.DB, model interface{}, agg *models.AggregateModel) error {
	var count int64
	if err := db.Model(model).Where("id = ?", agg.ID).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		if agg.Version < 1 {
			agg.Version = 1
		}
		return db.Create(model).Error
	}

	expected := agg.Version
	agg.Version = expected + 1
	result := db.Model(model).
		Select("*").
		Omit("id", "created_at").
		Where("id = ? AND version = ?", agg.ID, expected).
		Updates(model)
	if result.Error != nil {
		agg.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		agg.Version = expected
		return shared.ErrConcurrencyConflict
	}
	return nil
}
