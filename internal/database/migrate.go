package database

import (
	"database/sql"
	"log"
	"time"

	"github.com/careops/dietary-golang/internal/models"
)

// schemaStatements is the full DDL, one statement per table, in dependency
// order. Everything is CREATE TABLE IF NOT EXISTS so startup is idempotent.
//
// Note the UNIQUE KEY on menu_schedules (date, meal_type): at most one schedule
// may exist per day and slot. Replacement still runs as delete-then-insert
// inside the scheduling transaction, but the constraint backstops it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(80) NOT NULL DEFAULT '',
		last_name VARCHAR(80) NOT NULL DEFAULT '',
		username VARCHAR(80) NOT NULL,
		employee_id VARCHAR(40) NULL,
		email VARCHAR(255) NULL,
		role VARCHAR(40) NOT NULL DEFAULT 'Dietary Aide',
		password_hash VARCHAR(255) NOT NULL,
		must_change_password BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_users_username (username)
	)`,
	`CREATE TABLE IF NOT EXISTS residents (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(80) NOT NULL,
		last_name VARCHAR(80) NOT NULL,
		birthday DATE NULL,
		medications TEXT NULL,
		illnesses TEXT NULL,
		allergies TEXT NULL,
		fluids VARCHAR(80) NULL,
		diet VARCHAR(120) NULL,
		notes TEXT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_residents_last_first (last_name, first_name)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		unit VARCHAR(30) NOT NULL DEFAULT 'pcs',
		quantity DOUBLE NOT NULL DEFAULT 0,
		low_stock_threshold DOUBLE NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_inventory_items_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS menus (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		meal_type VARCHAR(50) NOT NULL,
		title VARCHAR(150) NOT NULL,
		description TEXT NULL,
		KEY idx_menus_meal_type (meal_type)
	)`,
	`CREATE TABLE IF NOT EXISTS menu_ingredients (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		menu_id BIGINT NOT NULL,
		inventory_id BIGINT NOT NULL,
		quantity DOUBLE NOT NULL,
		unit VARCHAR(50) NULL,
		KEY idx_menu_ingredients_menu (menu_id)
	)`,
	`CREATE TABLE IF NOT EXISTS menu_schedules (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		date DATE NOT NULL,
		meal_type VARCHAR(50) NOT NULL,
		menu_id BIGINT NULL,
		notes TEXT NULL,
		UNIQUE KEY uq_menu_schedules_date_meal (date, meal_type)
	)`,
	`CREATE TABLE IF NOT EXISTS menu_schedule_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		schedule_id BIGINT NOT NULL,
		inventory_id BIGINT NOT NULL,
		quantity_used DOUBLE NOT NULL,
		KEY idx_menu_schedule_items_schedule (schedule_id)
	)`,
}

// Migrate creates every table the application needs.
func Migrate(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedDefaultManager creates the bootstrap manager account (manager / 1234)
// if no account with that username exists yet, so a fresh install is usable.
func SeedDefaultManager(db *sql.DB) error {
	var id int64
	err := db.QueryRow("SELECT id FROM users WHERE username = ?", "manager").Scan(&id)
	if err == nil {
		return nil // already present
	}
	if err != sql.ErrNoRows {
		return err
	}

	var pw models.Password
	if err := pw.Set("1234"); err != nil {
		return err
	}

	now := time.Now()
	_, err = db.Exec(`
		INSERT INTO users (first_name, last_name, username, employee_id, email, role,
		                   password_hash, must_change_password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"", "", "manager", "00000000", "manager@example.com", models.RoleManager,
		pw.Hash, false, now, now,
	)
	if err != nil {
		return err
	}

	log.Println("Seeded default manager account (manager / 1234)")
	return nil
}
