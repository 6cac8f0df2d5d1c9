package lesson

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

// Status of a lesson.
type Status string

const (
	StatusPlanned             Status = "planned"
	StatusComplete            Status = "complete"
	StatusPending             Status = "pending"
	StatusCancelled           Status = "cancelled"
	StatusCancelledChargeable Status = "cancelled-but-chargeable"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusComplete, StatusPending, StatusCancelled, StatusCancelledChargeable:
		return true
	}
	return false
}

// Lesson is a scheduled session. Students and tutors are attached through
// the LessonStudent and LessonTutor association tables. Once CompanyID is
// set the lesson becomes read-only through the standard mutation path.
type Lesson struct {
	ID        int        `json:"id"`
	CompanyID *int       `json:"company_id"`
	TCPath    string     `json:"tc_path,omitempty"`
	StartDT   time.Time  `json:"start_dt"`
	EndDT     time.Time  `json:"end_dt"`
	Subject   string     `json:"subject"`
	Topic     string     `json:"topic"`
	Notes     string     `json:"notes"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	// observational fields, write-once at creation
	SkillsPracticed           core.StringList `json:"skills_practiced"`
	MainSubjectsCovered       core.StringList `json:"main_subjects_covered"`
	StudentStrengthsObserved  core.StringList `json:"student_strengths_observed"`
	StudentWeaknessesObserved core.StringList `json:"student_weaknesses_observed"`
	TutorTips                 core.StringList `json:"tutor_tips"`
}

func (l *Lesson) IsCompanyLinked() bool {
	return l.CompanyID != nil
}

// Read is a Lesson rendered with its participants and computed fields.
type Read struct {
	Lesson
	Students         []student.Student `json:"students"`
	TutorCruncherURL string            `json:"tutorcruncher_url,omitempty"`
}

type NewLesson struct {
	CompanyID  *int      `json:"company_id"`
	TCPath     string    `json:"tc_path"`
	StartDT    time.Time `json:"start_dt" validate:"required"`
	EndDT      time.Time `json:"end_dt" validate:"required"`
	Subject    string    `json:"subject" validate:"required"`
	Topic      string    `json:"topic" validate:"required"`
	Notes      string    `json:"notes"`
	Status     Status    `json:"status"`
	StudentIDs []int     `json:"student_ids"`

	SkillsPracticed           []string `json:"skills_practiced"`
	MainSubjectsCovered       []string `json:"main_subjects_covered"`
	StudentStrengthsObserved  []string `json:"student_strengths_observed"`
	StudentWeaknessesObserved []string `json:"student_weaknesses_observed"`
	TutorTips                 []string `json:"tutor_tips"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Subject = core.CleanString(nl.Subject)
	nl.Topic = core.CleanString(nl.Topic)
	if nl.Status == "" {
		nl.Status = StatusPlanned
	}
	if err := validate.Struct(nl); err != nil {
		return err
	}
	if !nl.Status.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid lesson status"})
	}
	return nil
}

// UpdateLesson defines the mutable subset of Lesson fields. The write-once
// observational fields are intentionally excluded.
type UpdateLesson struct {
	CompanyID  *int       `json:"company_id"`
	TCPath     *string    `json:"tc_path"`
	StartDT    *time.Time `json:"start_dt"`
	EndDT      *time.Time `json:"end_dt"`
	Subject    *string    `json:"subject"`
	Topic      *string    `json:"topic"`
	Notes      *string    `json:"notes"`
	Status     *Status    `json:"status"`
	StudentIDs []int      `json:"student_ids"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	if err := validate.Struct(ul); err != nil {
		return err
	}
	if ul.Status != nil && !ul.Status.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid lesson status"})
	}
	return nil
}

type QueryFilter struct {
	StudentID *int `query:"student_id"`
}
