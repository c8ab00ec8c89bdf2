package database

import "errors"

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("run not found")

// ErrDatabaseMissing is returned by Open when CreateIfNotExists is false
// and no database file exists yet.
var ErrDatabaseMissing = errors.New("history database not found")
