package config

import (
	appconfig "github.com/arsipku/arsipd/pkg/config"
)

const minTxRetry = 3

var (
	txRetry int
)

// GetTxRetry returns ARSIPD_TX_RETRY, never less than 3. The value is read
// once.
func GetTxRetry() int {
	if txRetry != 0 {
		return txRetry
	}

	txRetry = max(appconfig.GetIntKeyWithDefault("ARSIPD_TX_RETRY", minTxRetry), minTxRetry)

	return txRetry
}
