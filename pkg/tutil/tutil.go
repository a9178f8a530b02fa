package tutil

import (
	"os"
	"strings"
)

// IsIntegrationTest reports whether ARSIPD_TEST=integration, in which case
// store tests run against the database named by ARSIPD_TEST_DSN.
func IsIntegrationTest() bool {
	testType := os.Getenv("ARSIPD_TEST")
	return strings.ToLower(testType) == "integration"
}

// TestDSN returns the sqlite dsn for store tests.
func TestDSN(defaultDSN string) string {
	if dsn := os.Getenv("ARSIPD_TEST_DSN"); IsIntegrationTest() && dsn != "" {
		return dsn
	}

	return defaultDSN
}
