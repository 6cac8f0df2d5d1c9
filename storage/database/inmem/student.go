package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func sortStudentsByName(students []student.Student) {
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].FirstName < students[j].FirstName
	})
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range repo.db.students {
		if s.Email == std.Email {
			return student.Student{}, student.ErrEmailExists
		}
	}
	std.ID = repo.db.nextPK("student")
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.students {
		if std.Email == email {
			return *std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudentsForTutor(ctx context.Context, tutorID int) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for pair := range repo.db.tutorStudents {
		if pair.tutorID != tutorID {
			continue
		}
		if std, ok := repo.db.students[pair.studentID]; ok {
			students = append(students, *std)
		}
	}
	sortStudentsByName(students)
	return students, nil
}

func (repo *studentRepository) QueryStudentsForCompanies(ctx context.Context, companyIDs []int) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[int]struct{}, len(companyIDs))
	for _, id := range companyIDs {
		wanted[id] = struct{}{}
	}
	students := make([]student.Student, 0)
	for _, std := range repo.db.students {
		if std.CompanyID == nil {
			continue
		}
		if _, ok := wanted[*std.CompanyID]; ok {
			students = append(students, *std)
		}
	}
	sortStudentsByName(students)
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	for _, s := range repo.db.students {
		if s.ID != std.ID && s.Email == std.Email {
			return student.Student{}, student.ErrEmailExists
		}
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.students, id)
	for pair := range repo.db.tutorStudents {
		if pair.studentID == id {
			delete(repo.db.tutorStudents, pair)
		}
	}
	for lessonID, studentIDs := range repo.db.lessonStudents {
		kept := studentIDs[:0]
		for _, sid := range studentIDs {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		repo.db.lessonStudents[lessonID] = kept
	}
	return nil
}

func (repo *studentRepository) CountStudentLessons(ctx context.Context, studentID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, studentIDs := range repo.db.lessonStudents {
		for _, sid := range studentIDs {
			if sid == studentID {
				count++
				break
			}
		}
	}
	return count, nil
}

func (repo *studentRepository) AssignTutor(ctx context.Context, tutorID, studentID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.tutorStudents[tutorStudent{tutorID: tutorID, studentID: studentID}] = struct{}{}
	return nil
}

func (repo *studentRepository) UnassignTutor(ctx context.Context, tutorID, studentID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.tutorStudents, tutorStudent{tutorID: tutorID, studentID: studentID})
	return nil
}
