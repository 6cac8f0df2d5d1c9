package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/client"
	"github.com/trezcool/darasa/core/company"
	"github.com/trezcool/darasa/core/user"
)

var (
	ErrNotFound      = errors.New("Student not found")
	ErrEmailExists   = errors.New("Email already registered")
	ErrCompanyLinked = errors.New("Cannot update student that is linked to a company. Students linked to companies are read-only.")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		// QueryStudentsForTutor returns students having a TutorStudent row for
		// the tutor, ordered by last name then first name.
		QueryStudentsForTutor(ctx context.Context, tutorID int) ([]Student, error)
		QueryStudentsForCompanies(ctx context.Context, companyIDs []int) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudent(ctx context.Context, id int) error
		CountStudentLessons(ctx context.Context, studentID int) (int, error)

		AssignTutor(ctx context.Context, tutorID, studentID int) error
		UnassignTutor(ctx context.Context, tutorID, studentID int) error
	}

	Service struct {
		repo        Repository
		clientRepo  client.Repository
		companyRepo company.Repository
	}
)

func NewService(repo Repository, clientRepo client.Repository, companyRepo company.Repository) *Service {
	return &Service{repo: repo, clientRepo: clientRepo, companyRepo: companyRepo}
}

// scope computes the set of students visible to the viewer:
// tutors see students assigned to them via TutorStudent; admins see students
// belonging to their companies, and NONE when their company list is empty.
// The admin rule is deliberately asymmetric with lessons.
func (svc *Service) scope(ctx context.Context, viewer user.User) ([]Student, error) {
	switch viewer.Role {
	case user.RoleTutor:
		return svc.repo.QueryStudentsForTutor(ctx, viewer.ID)
	case user.RoleAdmin:
		if len(viewer.CompanyIDs) == 0 {
			return []Student{}, nil
		}
		return svc.repo.QueryStudentsForCompanies(ctx, viewer.CompanyIDs)
	default:
		return nil, errors.Wrapf(user.ErrUnknownRole, "scoping students for user %d", viewer.ID)
	}
}

func (svc *Service) QueryForViewer(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Read, error) {
	students, err := svc.scope(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if filter != nil && filter.ClientID != nil {
		filtered := make([]Student, 0, len(students))
		for _, std := range students {
			if std.ClientID == *filter.ClientID {
				filtered = append(filtered, std)
			}
		}
		students = filtered
	}
	return svc.buildReads(ctx, students)
}

func (svc *Service) GetForViewer(ctx context.Context, viewer user.User, id int) (Read, error) {
	students, err := svc.scope(ctx, viewer)
	if err != nil {
		return Read{}, err
	}
	for _, std := range students {
		if std.ID == id {
			return svc.buildRead(ctx, std)
		}
	}
	return Read{}, ErrNotFound
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Read, error) {
	if _, err := svc.clientRepo.GetClientByID(ctx, ns.ClientID); err != nil {
		return Read{}, err
	}
	if ns.CompanyID != nil {
		if _, err := svc.companyRepo.GetCompanyByID(ctx, *ns.CompanyID); err != nil {
			return Read{}, err
		}
	}
	if _, err := svc.repo.GetStudentByEmail(ctx, ns.Email); err == nil {
		return Read{}, ErrEmailExists
	} else if errors.Cause(err) != ErrNotFound {
		return Read{}, errors.Wrap(err, "checking student email")
	}

	std := Student{
		ClientID:   ns.ClientID,
		FirstName:  ns.FirstName,
		LastName:   ns.LastName,
		Email:      ns.Email,
		Phone:      ns.Phone,
		Grade:      ns.Grade,
		CompanyID:  ns.CompanyID,
		TCPath:     ns.TCPath,
		Strengths:  ns.Strengths,
		Weaknesses: ns.Weaknesses,
		CreatedAt:  time.Now().UTC(),
	}
	// the repo traps a racing unique violation as ErrEmailExists
	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Read{}, err
	}
	return svc.buildRead(ctx, std)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Read, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Read{}, err
	}
	if std.IsCompanyLinked() {
		return Read{}, ErrCompanyLinked
	}
	if us.CompanyID != nil {
		if _, err := svc.companyRepo.GetCompanyByID(ctx, *us.CompanyID); err != nil {
			return Read{}, err
		}
		std.CompanyID = us.CompanyID
	}
	if us.Email != nil && *us.Email != std.Email {
		if _, err := svc.repo.GetStudentByEmail(ctx, *us.Email); err == nil {
			return Read{}, ErrEmailExists
		} else if errors.Cause(err) != ErrNotFound {
			return Read{}, errors.Wrap(err, "checking student email")
		}
		std.Email = *us.Email
	}
	if us.ClientID != nil {
		std.ClientID = *us.ClientID
	}
	if us.FirstName != nil {
		std.FirstName = *us.FirstName
	}
	if us.LastName != nil {
		std.LastName = *us.LastName
	}
	if us.Phone != nil {
		std.Phone = *us.Phone
	}
	if us.Grade != nil {
		std.Grade = *us.Grade
	}
	now := time.Now().UTC()
	std.UpdatedAt = &now

	std, err = svc.repo.UpdateStudent(ctx, std)
	if err != nil {
		return Read{}, err
	}
	return svc.buildRead(ctx, std)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return err
	}
	if std.IsCompanyLinked() {
		return ErrCompanyLinked
	}
	return svc.repo.DeleteStudent(ctx, id)
}

// AssignTutor links a tutor to a student for visibility scoping.
func (svc *Service) AssignTutor(ctx context.Context, tutorID, studentID int) error {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return err
	}
	return svc.repo.AssignTutor(ctx, tutorID, studentID)
}

func (svc *Service) UnassignTutor(ctx context.Context, tutorID, studentID int) error {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return err
	}
	return svc.repo.UnassignTutor(ctx, tutorID, studentID)
}

func (svc *Service) buildRead(ctx context.Context, std Student) (Read, error) {
	read := Read{Student: std}

	count, err := svc.repo.CountStudentLessons(ctx, std.ID)
	if err != nil {
		return Read{}, errors.Wrap(err, "counting student lessons")
	}
	read.LessonsCompleted = count

	if std.CompanyID != nil {
		co, err := svc.companyRepo.GetCompanyByID(ctx, *std.CompanyID)
		if err == nil {
			read.CompanyName = co.Name
			read.TutorCruncherURL = co.DeepLink(std.TCPath)
		} else if errors.Cause(err) != company.ErrNotFound {
			return Read{}, errors.Wrap(err, "finding student company")
		}
	}
	return read, nil
}

func (svc *Service) buildReads(ctx context.Context, students []Student) ([]Read, error) {
	reads := make([]Read, 0, len(students))
	for _, std := range students {
		read, err := svc.buildRead(ctx, std)
		if err != nil {
			return nil, err
		}
		reads = append(reads, read)
	}
	return reads, nil
}
