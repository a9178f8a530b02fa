package arsipdb

import (
	"fmt"
	"log"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteInMemoryDSN gives every connection its own private database. Callers
// must limit the pool to a single connection.
const SqliteInMemoryDSN = ":memory:"

// MakeDSNFromEnv builds the MySQL DSN. DB_HOST and DB_DATABASE are required.
func MakeDSNFromEnv() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.GetKey("DB_USERNAME"),
		config.GetKey("DB_PASSWORD"),
		config.MustGetKey("DB_HOST"),
		config.GetKeyWithDefault("DB_PORT", "3306"),
		config.MustGetKey("DB_DATABASE"))
}

const maxDBRetries = 5

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// MustConnectToDB will attempt to connect to the database maxDBRetries times. If it isn't successful
// after that number of retries then it will call log.Fatalf(), which will cause the server to exit.
// Between retry attempts it will sleep for 3 seconds.
func MustConnectToDB() *gorm.DB {
	var (
		err error
		db  *gorm.DB
	)

	retryCount := 1
	for {
		db, err = gorm.Open(mysql.Open(MakeDSNFromEnv()), gormConfig())
		switch {
		case err == nil:
			return db
		case retryCount >= maxDBRetries:
			log.Fatalf("Failed to open db (%s@%s): %s", config.GetKey("DB_DATABASE"), config.GetKey("DB_HOST"), err)
		default:
			retryCount++
			time.Sleep(3 * time.Second)
		}
	}
}

// OpenSqlite opens a sqlite database (usually SqliteInMemoryDSN) restricted to
// one connection and with the schema migrated.
func OpenSqlite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&arsipmodel.Unit{},
		&arsipmodel.User{},
		&arsipmodel.Location{},
		&arsipmodel.Classification{},
		&arsipmodel.LegacyClassification{},
		&arsipmodel.ActiveArchive{},
		&arsipmodel.TransferProcess{},
		&arsipmodel.TransferMemo{},
		&arsipmodel.InactiveArchive{},
		&arsipmodel.TransferLink{},
	)
}
