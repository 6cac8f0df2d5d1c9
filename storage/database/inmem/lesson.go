package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
)

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) *lessonRepository {
	return &lessonRepository{db: db}
}

// matches must be called with at least the read lock held.
func (repo *lessonRepository) matches(lsn *lesson.Lesson, filter lesson.Filter) bool {
	if filter.ID != nil && lsn.ID != *filter.ID {
		return false
	}
	if filter.StudentID != nil {
		var found bool
		for _, sid := range repo.db.lessonStudents[lsn.ID] {
			if sid == *filter.StudentID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.TutorID != nil {
		var found bool
		for _, tid := range repo.db.lessonTutors[lsn.ID] {
			if tid == *filter.TutorID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.CompanyIDs) > 0 {
		if lsn.CompanyID == nil {
			return false
		}
		var found bool
		for _, cid := range filter.CompanyIDs {
			if cid == *lsn.CompanyID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (repo *lessonRepository) query(filter lesson.Filter) []lesson.Lesson {
	lessons := make([]lesson.Lesson, 0)
	for _, lsn := range repo.db.lessons {
		if repo.matches(lsn, filter) {
			lessons = append(lessons, *lsn)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if !lessons[i].StartDT.Equal(lessons[j].StartDT) {
			return lessons[i].StartDT.After(lessons[j].StartDT)
		}
		return lessons[i].ID > lessons[j].ID
	})
	return lessons
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson, studentIDs []int, tutorID int) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	lsn.ID = repo.db.nextPK("lesson")
	repo.db.lessons[lsn.ID] = &lsn
	repo.db.lessonStudents[lsn.ID] = append([]int(nil), studentIDs...)
	repo.db.lessonTutors[lsn.ID] = []int{tutorID}
	return lsn, nil
}

func (repo *lessonRepository) QueryLessons(ctx context.Context, filter lesson.Filter) ([]lesson.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(filter), nil
}

func (repo *lessonRepository) GetLesson(ctx context.Context, filter lesson.Filter) (lesson.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lessons := repo.query(filter)
	if len(lessons) == 0 {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	return lessons[0], nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[lsn.ID]; !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *lessonRepository) ReplaceLessonStudents(ctx context.Context, lessonID int, studentIDs []int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lessonStudents[lessonID] = append([]int(nil), studentIDs...)
	return nil
}

func (repo *lessonRepository) DeleteLesson(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[id]; !ok {
		return lesson.ErrNotFound
	}
	delete(repo.db.lessons, id)
	delete(repo.db.lessonStudents, id)
	delete(repo.db.lessonTutors, id)
	return nil
}

func (repo *lessonRepository) GetLessonStudents(ctx context.Context, lessonID int) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for _, sid := range repo.db.lessonStudents[lessonID] {
		if std, ok := repo.db.students[sid]; ok {
			students = append(students, *std)
		}
	}
	sortStudentsByName(students)
	return students, nil
}
