package Models

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database and runs migrations. Postgres is used when
// DATABASE_URL is set, otherwise a local SQLite file.
func Connect() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "database.db"
	}

	var connection *gorm.DB
	var err error
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		connection, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		connection, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}

// Migrate runs AutoMigrate in dependency order.
func Migrate(db *gorm.DB) error {
	// 1. Base tables with no foreign keys
	if err := db.AutoMigrate(
		&User{},
		&Group{},
		&Streak{},
	); err != nil {
		return err
	}

	// 2. Tables referencing the base tables
	if err := db.AutoMigrate(
		&StreakLog{}, // depends on Streak
		&Task{},      // depends on Group, optionally Streak
		&GroupNote{}, // depends on Group
		&PinGroup{},  // depends on Group
	); err != nil {
		return err
	}

	// 3. Tables referencing the second tier
	return db.AutoMigrate(
		&TaskLog{},      // depends on Task
		&PinGroupTask{}, // depends on PinGroup and Task
	)
}
