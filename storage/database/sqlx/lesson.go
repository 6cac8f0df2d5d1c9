package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
)

type lessonRow struct {
	ID        int        `db:"id"`
	CompanyID *int       `db:"company_id"`
	TCPath    string     `db:"tc_path"`
	StartDT   time.Time  `db:"start_dt"`
	EndDT     time.Time  `db:"end_dt"`
	Subject   string     `db:"subject"`
	Topic     string     `db:"topic"`
	Notes     string     `db:"notes"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`

	SkillsPracticed           core.StringList `db:"skills_practiced"`
	MainSubjectsCovered       core.StringList `db:"main_subjects_covered"`
	StudentStrengthsObserved  core.StringList `db:"student_strengths_observed"`
	StudentWeaknessesObserved core.StringList `db:"student_weaknesses_observed"`
	TutorTips                 core.StringList `db:"tutor_tips"`
}

func (r lessonRow) toLesson() lesson.Lesson {
	return lesson.Lesson{
		ID:        r.ID,
		CompanyID: r.CompanyID,
		TCPath:    r.TCPath,
		StartDT:   r.StartDT,
		EndDT:     r.EndDT,
		Subject:   r.Subject,
		Topic:     r.Topic,
		Notes:     r.Notes,
		Status:    lesson.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,

		SkillsPracticed:           r.SkillsPracticed,
		MainSubjectsCovered:       r.MainSubjectsCovered,
		StudentStrengthsObserved:  r.StudentStrengthsObserved,
		StudentWeaknessesObserved: r.StudentWeaknessesObserved,
		TutorTips:                 r.TutorTips,
	}
}

func lessonToRow(lsn lesson.Lesson) lessonRow {
	return lessonRow{
		ID:        lsn.ID,
		CompanyID: lsn.CompanyID,
		TCPath:    lsn.TCPath,
		StartDT:   lsn.StartDT.UTC(),
		EndDT:     lsn.EndDT.UTC(),
		Subject:   lsn.Subject,
		Topic:     lsn.Topic,
		Notes:     lsn.Notes,
		Status:    string(lsn.Status),
		CreatedAt: lsn.CreatedAt.UTC(),
		UpdatedAt: lsn.UpdatedAt,

		SkillsPracticed:           lsn.SkillsPracticed,
		MainSubjectsCovered:       lsn.MainSubjectsCovered,
		StudentStrengthsObserved:  lsn.StudentStrengthsObserved,
		StudentWeaknessesObserved: lsn.StudentWeaknessesObserved,
		TutorTips:                 lsn.TutorTips,
	}
}

type lessonRepository struct {
	db *sqlx.DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *sqlx.DB) *lessonRepository {
	return &lessonRepository{db: db}
}

// filterQuery renders the WHERE clause (and joins) for a lesson filter.
// Args are numbered from $1.
func filterQuery(filter lesson.Filter) (string, []interface{}) {
	var (
		joins []string
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ID != nil {
		where = append(where, "l.id = "+arg(*filter.ID))
	}
	if filter.StudentID != nil {
		joins = append(joins, "JOIN lesson_student ls ON ls.lesson_id = l.id")
		where = append(where, "ls.student_id = "+arg(*filter.StudentID))
	}
	if filter.TutorID != nil {
		joins = append(joins, "JOIN lesson_tutor lt ON lt.lesson_id = l.id")
		where = append(where, "lt.tutor_id = "+arg(*filter.TutorID))
	}
	if len(filter.CompanyIDs) > 0 {
		placeholders := make([]string, 0, len(filter.CompanyIDs))
		for _, id := range filter.CompanyIDs {
			placeholders = append(placeholders, arg(id))
		}
		where = append(where, "l.company_id IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := "SELECT DISTINCT l.* FROM lesson l"
	if len(joins) > 0 {
		query += " " + strings.Join(joins, " ")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query, args
}

func (repo lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson, studentIDs []int, tutorID int) (lesson.Lesson, error) {
	row := lessonToRow(lsn)

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO lesson (company_id, tc_path, start_dt, end_dt, subject, topic, notes, status,
	                    skills_practiced, main_subjects_covered, student_strengths_observed,
	                    student_weaknesses_observed, tutor_tips, created_at)
	VALUES (:company_id, :tc_path, :start_dt, :end_dt, :subject, :topic, :notes, :status,
	        :skills_practiced, :main_subjects_covered, :student_strengths_observed,
	        :student_weaknesses_observed, :tutor_tips, :created_at)
	RETURNING id`

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "preparing lesson insert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.GetContext(ctx, &row.ID, row); err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson")
	}

	for _, sid := range studentIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO lesson_student (lesson_id, student_id) VALUES ($1, $2)`, row.ID, sid); err != nil {
			return lesson.Lesson{}, errors.Wrap(err, "inserting lesson student")
		}
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO lesson_tutor (lesson_id, tutor_id, created_at) VALUES ($1, $2, $3)`, row.ID, tutorID, row.CreatedAt)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson tutor")
	}

	if err = tx.Commit(); err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "committing lesson insert")
	}
	return row.toLesson(), nil
}

func (repo lessonRepository) QueryLessons(ctx context.Context, filter lesson.Filter) ([]lesson.Lesson, error) {
	query, args := filterQuery(filter)
	query += " ORDER BY l.start_dt DESC, l.id DESC"

	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	lessons := make([]lesson.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toLesson())
	}
	return lessons, nil
}

func (repo lessonRepository) GetLesson(ctx context.Context, filter lesson.Filter) (lesson.Lesson, error) {
	query, args := filterQuery(filter)

	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return lesson.Lesson{}, lesson.ErrNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return row.toLesson(), nil
}

func (repo lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	row := lessonToRow(lsn)
	query := `
	UPDATE lesson
	SET start_dt = :start_dt, end_dt = :end_dt, subject = :subject, topic = :topic,
	    notes = :notes, status = :status, updated_at = :updated_at
	WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	return row.toLesson(), nil
}

func (repo lessonRepository) ReplaceLessonStudents(ctx context.Context, lessonID int, studentIDs []int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM lesson_student WHERE lesson_id = $1`, lessonID); err != nil {
		return errors.Wrap(err, "clearing lesson students")
	}
	for _, sid := range studentIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO lesson_student (lesson_id, student_id) VALUES ($1, $2)`, lessonID, sid); err != nil {
			return errors.Wrap(err, "inserting lesson student")
		}
	}
	return errors.Wrap(tx.Commit(), "committing lesson students")
}

func (repo lessonRepository) DeleteLesson(ctx context.Context, id int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM lesson_student WHERE lesson_id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting lesson students")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM lesson_tutor WHERE lesson_id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting lesson tutors")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM lesson WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return lesson.ErrNotFound
	}
	return errors.Wrap(tx.Commit(), "committing lesson delete")
}

func (repo lessonRepository) GetLessonStudents(ctx context.Context, lessonID int) ([]student.Student, error) {
	query := `
	SELECT s.* FROM student s
	JOIN lesson_student ls ON ls.student_id = s.id
	WHERE ls.lesson_id = $1
	ORDER BY s.last_name, s.first_name`

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, lessonID); err != nil {
		return nil, errors.Wrap(err, "querying lesson students")
	}
	return studentRowsToSlice(rows), nil
}
