// Package db stores submissions, login sessions and user profile settings in
// a sqlite database.
package db

import (
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"xorm.io/xorm"
	"xorm.io/xorm/log"
	"xorm.io/xorm/names"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type Connection struct {
	engine *xorm.Engine
}

// Close the database.
func (conn *Connection) Close() error {
	return conn.engine.Close()
}

// New returns a database connection for the sqlite db file at the given path.
// If it does not exist it is created.
func New(path string) (*Connection, error) {
	db, err := xorm.NewEngine("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}
	db.Logger().SetLevel(log.LOG_WARNING)
	db.SetMapper(names.GonicMapper{})

	if err := db.Sync2(new(Submission), new(Session), new(Profile)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to sync database schema: %w", err)
	}
	return &Connection{db}, nil
}
