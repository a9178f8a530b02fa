package stor

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrDuplicateMemoNumber = errors.New("memo number already used")
	ErrPartialInsert       = errors.New("partial insert")
)

func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateKey matches translated gorm errors and, for drivers without an
// error translator, the raw sqlite/mysql messages.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
