// Package dummydb provides in-memory repositories for tests and local
// hacking; it mirrors the postgres package's behavior, minus persistence.
package dummydb

import (
	"context"
	"sync"

	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/course"
	"github.com/aulaproject/aula/core/user"
)

type DB struct {
	sync.RWMutex

	users       map[string]*user.User
	subjects    map[string]*course.Subject
	enrollments map[string]*course.Enrollment
	exercises   map[string]*course.Exercise
	results     map[string]*course.Result
}

var _ core.DB = (*DB)(nil)

func Open() *DB {
	db := new(DB)
	db.reset()
	return db
}

func (db *DB) reset() {
	db.users = make(map[string]*user.User)
	db.subjects = make(map[string]*course.Subject)
	db.enrollments = make(map[string]*course.Enrollment)
	db.exercises = make(map[string]*course.Exercise)
	db.results = make(map[string]*course.Result)
}

// Reset drops all tables; meant for test setup.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.reset()
}

func (db *DB) Begin(_ context.Context) (core.DBTransactor, error) {
	return dummyTx{}, nil
}

// dummyTx satisfies core.DBTransactor; the embedded executor is never used
// by the in-memory repositories.
type dummyTx struct {
	core.DBExecutor
}

func (dummyTx) Commit() error   { return nil }
func (dummyTx) Rollback() error { return nil }
