package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB configura una base de datos de prueba
// Espera que exista una BD MySQL en localhost:3306 llamada 'atelier_test'
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/atelier_test?parseTime=true&clientFoundRows=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Verify connection
	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB limpia la BD de prueba
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"OrderLogs", "Notifications", "AdminNotifications", "Orders", "Users"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables crea las tablas necesarias para los tests
func SetupTestTables(t *testing.T, db *sql.DB) {
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS Users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		email VARCHAR(150),
		emailNotifications TINYINT(1) NOT NULL DEFAULT 1,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id CHAR(36) NOT NULL PRIMARY KEY,
		customerId CHAR(36) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'FOR_EVALUATION',
		totalPrice DECIMAL(12,2) NULL,
		deadline DATETIME NULL,
		trackingLink VARCHAR(500) NULL,
		salesAdminSigned TINYINT(1) NOT NULL DEFAULT 0,
		salesAdminSignedDate DATETIME(3) NULL,
		salesAdminSignature TEXT NULL,
		salesAdminContractData JSON NULL,
		contractSigned TINYINT(1) NOT NULL DEFAULT 0,
		contractSignedDate DATETIME(3) NULL,
		contractData JSON NULL,
		requiresContractAmendment TINYINT(1) NOT NULL DEFAULT 0,
		amendmentReason VARCHAR(50) NULL,
		amendmentDetails JSON NULL,
		amendmentRequestedDate DATETIME(3) NULL,
		lastAmendmentDate DATETIME(3) NULL,
		createdAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updatedAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		INDEX idx_customer (customerId)
	)`

	createOrderLogsTable := `
	CREATE TABLE IF NOT EXISTS OrderLogs (
		seq BIGINT UNSIGNED NOT NULL AUTO_INCREMENT UNIQUE,
		id CHAR(36) NOT NULL PRIMARY KEY,
		orderId CHAR(36) NOT NULL,
		actorId VARCHAR(64) NULL,
		actorName VARCHAR(150) NULL,
		action VARCHAR(50) NOT NULL,
		fieldChanged VARCHAR(50) NOT NULL DEFAULT '',
		oldValue TEXT NULL,
		newValue TEXT NULL,
		description TEXT NOT NULL,
		createdAt DATETIME(3) NOT NULL,
		INDEX idx_order_created (orderId, createdAt)
	)`

	createNotificationsTable := `
	CREATE TABLE IF NOT EXISTS Notifications (
		id CHAR(36) NOT NULL PRIMARY KEY,
		orderId CHAR(36) NOT NULL,
		userId CHAR(36) NOT NULL,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		type VARCHAR(50) NOT NULL,
		isRead TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME(3) NOT NULL,
		INDEX idx_user (userId)
	)`

	createAdminNotificationsTable := `
	CREATE TABLE IF NOT EXISTS AdminNotifications (
		id CHAR(36) NOT NULL PRIMARY KEY,
		orderId CHAR(36) NOT NULL,
		recipientRole VARCHAR(50) NOT NULL,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		type VARCHAR(50) NOT NULL,
		createdAt DATETIME(3) NOT NULL,
		INDEX idx_role (recipientRole)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Users", createUsersTable},
		{"Orders", createOrdersTable},
		{"OrderLogs", createOrderLogsTable},
		{"Notifications", createNotificationsTable},
		{"AdminNotifications", createAdminNotificationsTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}

// InsertCustomer crea un cliente de prueba
func InsertCustomer(t *testing.T, db *sql.DB, id, name, email string, emailNotifications bool) {
	_, err := db.Exec(
		`INSERT INTO Users (id, name, email, emailNotifications) VALUES (?, ?, ?, ?)`,
		id, name, email, emailNotifications,
	)
	if err != nil {
		t.Fatalf("failed to insert customer %s: %v", id, err)
	}
}
