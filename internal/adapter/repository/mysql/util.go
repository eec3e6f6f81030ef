package mysql

import (
	"context"
	"errors"
	"strings"

	"creator-marketplace/internal/domain/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFound maps gorm's miss onto the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// isDuplicateKey recognises unique violations whether or not the dialector
// translated them into gorm.ErrDuplicatedKey.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// updateVersioned writes every column of model (a pointer carrying its
// primary key) only if the stored version still equals *version, then bumps it.
func updateVersioned(ctx context.Context, db *gorm.DB, model any, version *uint) error {
	prev := *version
	*version = prev + 1
	res := db.WithContext(ctx).Model(model).
		Where("version = ?", prev).
		Select("*").Omit("created_at").
		Updates(model)
	if res.Error != nil {
		*version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		*version = prev
		return apperr.ErrConcurrentUpdate
	}
	return nil
}
