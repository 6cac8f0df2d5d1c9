// Package inmemdb is a map-backed implementation of the core repositories,
// used by the test suites.
package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/client"
	"github.com/trezcool/darasa/core/company"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type tutorStudent struct {
	tutorID   int
	studentID int
}

type DB struct {
	mutex sync.RWMutex

	users     map[int]*user.User
	clients   map[int]*client.Client
	companies map[int]*company.Company
	students  map[int]*student.Student
	lessons   map[int]*lesson.Lesson

	lessonStudents map[int][]int // lesson ID -> student IDs
	lessonTutors   map[int][]int // lesson ID -> tutor IDs
	tutorStudents  map[tutorStudent]struct{}

	pks map[string]int
}

func NewDB() *DB {
	return &DB{
		users:          make(map[int]*user.User),
		clients:        make(map[int]*client.Client),
		companies:      make(map[int]*company.Company),
		students:       make(map[int]*student.Student),
		lessons:        make(map[int]*lesson.Lesson),
		lessonStudents: make(map[int][]int),
		lessonTutors:   make(map[int][]int),
		tutorStudents:  make(map[tutorStudent]struct{}),
		pks:            make(map[string]int),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK(table string) int {
	db.pks[table]++
	return db.pks[table]
}
