package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"rentdesk/config"
)

// ReportDB is the global database handle for raw SQL reporting queries.
// Aggregations in the reports controller go through database/sql directly
// instead of GORM.
var ReportDB *sql.DB

// InitReportDB initializes the raw SQL connection used for reporting
func InitReportDB() error {
	var err error

	switch config.AppConfig.DBDriver {
	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		var connStr string

		if dbURL != "" {
			connStr = dbURL
			log.Println("Using DATABASE_URL environment variable for PostgreSQL reporting connection")
		} else {
			connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				config.AppConfig.DBHost,
				config.AppConfig.DBPort,
				config.AppConfig.DBUser,
				config.AppConfig.DBPassword,
				config.AppConfig.DBName,
				config.AppConfig.DBSSLMode)
		}

		ReportDB, err = sql.Open("postgres", connStr)
		if err != nil {
			log.Printf("Failed to connect to PostgreSQL reporting database: %v", err)
			return err
		}

	case "sqlite", "sqlite3":
		dbDir := filepath.Dir(config.AppConfig.DBPath)
		if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
			log.Printf("Failed to create directory for SQLite database: %v", err)
			return err
		}

		ReportDB, err = sql.Open("sqlite3", config.AppConfig.DBPath)
		if err != nil {
			log.Printf("Failed to connect to SQLite reporting database: %v", err)
			return err
		}

		// Foreign keys are off by default in SQLite
		if _, err = ReportDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
			log.Printf("Failed to enable foreign keys in SQLite: %v", err)
			return err
		}

	default:
		return fmt.Errorf("unsupported database driver: %s", config.AppConfig.DBDriver)
	}

	if err = ReportDB.Ping(); err != nil {
		log.Printf("Failed to ping reporting database: %v", err)
		return err
	}

	log.Println("Reporting database connection established")
	return nil
}

// CloseReportDB closes the reporting database connection
func CloseReportDB() error {
	if ReportDB != nil {
		return ReportDB.Close()
	}
	return nil
}
