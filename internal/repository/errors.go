// Package repository holds the MySQL data access layer. Sentinel errors
// defined here let handlers and the auth service distinguish failure modes
// without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced row does not exist. Handlers
// translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned for unique-key violations that cannot be mapped
// to a specific field.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists and ErrEmailExists report a unique-key violation on the
// users table. They surface to clients as field-level validation errors.
var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

const mysqlDuplicateEntry = 1062

// mapDuplicate converts a MySQL duplicate-key error into the matching
// sentinel. Other errors are returned unchanged.
func mapDuplicate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return err
	}
	msg := strings.ToLower(me.Message)
	switch {
	case strings.Contains(msg, "username"):
		return ErrUsernameExists
	case strings.Contains(msg, "email"):
		return ErrEmailExists
	}
	return ErrConflict
}
