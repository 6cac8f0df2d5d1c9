package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

type studentRow struct {
	ID         int             `db:"id"`
	ClientID   int             `db:"client_id"`
	FirstName  string          `db:"first_name"`
	LastName   string          `db:"last_name"`
	Email      string          `db:"email"`
	Phone      string          `db:"phone"`
	Grade      string          `db:"grade"`
	CompanyID  *int            `db:"company_id"`
	TCPath     string          `db:"tc_path"`
	Strengths  core.StringList `db:"strengths"`
	Weaknesses core.StringList `db:"weaknesses"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  *time.Time      `db:"updated_at"`
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:         r.ID,
		ClientID:   r.ClientID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Grade:      r.Grade,
		CompanyID:  r.CompanyID,
		TCPath:     r.TCPath,
		Strengths:  r.Strengths,
		Weaknesses: r.Weaknesses,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func studentToRow(std student.Student) studentRow {
	return studentRow{
		ID:         std.ID,
		ClientID:   std.ClientID,
		FirstName:  std.FirstName,
		LastName:   std.LastName,
		Email:      std.Email,
		Phone:      std.Phone,
		Grade:      std.Grade,
		CompanyID:  std.CompanyID,
		TCPath:     std.TCPath,
		Strengths:  std.Strengths,
		Weaknesses: std.Weaknesses,
		CreatedAt:  std.CreatedAt.UTC(),
		UpdatedAt:  std.UpdatedAt,
	}
}

func studentRowsToSlice(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	row := studentToRow(std)
	query := `
	INSERT INTO student (client_id, first_name, last_name, email, phone, grade, company_id, tc_path, strengths, weaknesses, created_at)
	VALUES (:client_id, :first_name, :last_name, :email, :phone, :grade, :company_id, :tc_path, :strengths, :weaknesses, :created_at)
	RETURNING id`

	stmt, err := repo.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "preparing student insert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.GetContext(ctx, &row.ID, row); err != nil {
		return student.Student{}, errors.Wrap(trapUniqueErr(err, student.ErrEmailExists), "inserting student")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by id")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE email = $1`, email); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by email")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) QueryStudentsForTutor(ctx context.Context, tutorID int) ([]student.Student, error) {
	query := `
	SELECT s.* FROM student s
	JOIN tutor_student ts ON ts.student_id = s.id
	WHERE ts.tutor_id = $1
	ORDER BY s.last_name, s.first_name`

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, tutorID); err != nil {
		return nil, errors.Wrap(err, "querying tutor students")
	}
	return studentRowsToSlice(rows), nil
}

func (repo studentRepository) QueryStudentsForCompanies(ctx context.Context, companyIDs []int) ([]student.Student, error) {
	if len(companyIDs) == 0 {
		return []student.Student{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM student WHERE company_id IN (?) ORDER BY last_name, first_name`, companyIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building company students query")
	}

	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying company students")
	}
	return studentRowsToSlice(rows), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	row := studentToRow(std)
	query := `
	UPDATE student
	SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
	    grade = :grade, updated_at = :updated_at
	WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return student.Student{}, errors.Wrap(trapUniqueErr(err, student.ErrEmailExists), "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return row.toStudent(), nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo studentRepository) CountStudentLessons(ctx context.Context, studentID int) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM lesson_student WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "counting student lessons")
	}
	return count, nil
}

func (repo studentRepository) AssignTutor(ctx context.Context, tutorID, studentID int) error {
	query := `
	INSERT INTO tutor_student (tutor_id, student_id)
	VALUES ($1, $2)
	ON CONFLICT (tutor_id, student_id) DO NOTHING`

	if _, err := repo.db.ExecContext(ctx, query, tutorID, studentID); err != nil {
		return errors.Wrap(err, "assigning tutor")
	}
	return nil
}

func (repo studentRepository) UnassignTutor(ctx context.Context, tutorID, studentID int) error {
	query := `DELETE FROM tutor_student WHERE tutor_id = $1 AND student_id = $2`
	if _, err := repo.db.ExecContext(ctx, query, tutorID, studentID); err != nil {
		return errors.Wrap(err, "unassigning tutor")
	}
	return nil
}
