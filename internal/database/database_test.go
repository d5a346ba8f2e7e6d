package database

import (
	"testing"

	"thanks-bot/internal/config"
	"thanks-bot/internal/models"
)

func TestOpenMemoryMigrates(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}

	if !db.Migrator().HasTable(&models.User{}) {
		t.Errorf("users table missing")
	}
	if !db.Migrator().HasTable(&models.Question{}) {
		t.Errorf("questions table missing")
	}

	// Running migrations again must not touch existing rows.
	if err := db.Create(&models.User{ID: 1, Username: "alice", Balance: 3}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var user models.User
	if err := db.First(&user, 1).Error; err != nil {
		t.Fatalf("first: %v", err)
	}
	if user.Balance != 3 {
		t.Errorf("expected balance to survive migration, got %d", user.Balance)
	}
}

func TestNewUserDefaults(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}

	if err := db.Create(&models.User{ID: 7, Username: "bob"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var user models.User
	if err := db.First(&user, 7).Error; err != nil {
		t.Fatalf("first: %v", err)
	}
	if user.Balance != 0 || user.CoinsPerDay != 0 {
		t.Errorf("expected zero counters, got balance=%d coins_per_day=%d", user.Balance, user.CoinsPerDay)
	}
	if user.QuotaDate != models.EpochDate {
		t.Errorf("expected quota date %s, got %q", models.EpochDate, user.QuotaDate)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect(&config.Config{DBDriver: "mysql"}); err == nil {
		t.Errorf("expected an error for an unknown driver")
	}
}

func TestConnectSQLiteFile(t *testing.T) {
	path := t.TempDir() + "/thanks.db"
	db, err := Connect(&config.Config{DBDriver: "sqlite", DBPath: path})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !db.Migrator().HasTable("users") {
		t.Errorf("users table missing")
	}
}
