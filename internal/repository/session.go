package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Session is anything statements can run on: the pool (*sqlx.DB) or an
// open transaction (*sqlx.Tx). Every repository function takes one
// explicitly so callers decide the transaction boundary.
type Session interface {
	sqlx.ExtContext
}

// forUpdate returns the row-locking suffix for the session's driver.
// SQLite has no row locks; its writers are serialized per database.
func forUpdate(s Session) string {
	if s.DriverName() == "mysql" {
		return " FOR UPDATE"
	}
	return ""
}

// dayOf truncates a datetime column to a YYYY-MM-DD string
func dayOf(s Session, column string) string {
	if s.DriverName() == "mysql" {
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", column)
	}
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
}
