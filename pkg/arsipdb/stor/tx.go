package stor

import (
	"github.com/arsipku/arsipd/pkg/arsipdb/config"
	"gorm.io/gorm"
)

// WithTxRetry runs fn in a transaction, retrying on failure. Errors that a
// retry cannot fix (duplicate keys, missing rows) are returned immediately.
func WithTxRetry(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error

	retryCount := config.GetTxRetry()

	if retryCount < 3 {
		retryCount = 3
	}

	for i := 0; i < retryCount; i++ {
		err = db.Transaction(fn)
		if err == nil || isDuplicateKey(err) || IsRecordNotFound(err) {
			break
		}
	}

	return err
}
