package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/company"
)

type companyRow struct {
	ID        int        `db:"id"`
	Name      string     `db:"name"`
	TCID      string     `db:"tc_id"`
	Domain    string     `db:"domain"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

func (r companyRow) toCompany() company.Company {
	return company.Company{
		ID:        r.ID,
		Name:      r.Name,
		TCID:      r.TCID,
		Domain:    r.Domain,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func companyToRow(co company.Company) companyRow {
	return companyRow{
		ID:        co.ID,
		Name:      co.Name,
		TCID:      co.TCID,
		Domain:    co.Domain,
		CreatedAt: co.CreatedAt.UTC(),
		UpdatedAt: co.UpdatedAt,
	}
}

type companyRepository struct {
	db *sqlx.DB
}

var _ company.Repository = (*companyRepository)(nil) // interface compliance check

func NewCompanyRepository(db *sqlx.DB) *companyRepository {
	return &companyRepository{db: db}
}

func (repo companyRepository) CreateCompany(ctx context.Context, co company.Company) (company.Company, error) {
	row := companyToRow(co)
	query := `
	INSERT INTO company (name, tc_id, domain, created_at)
	VALUES (:name, :tc_id, :domain, :created_at)
	RETURNING id`

	stmt, err := repo.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return company.Company{}, errors.Wrap(err, "preparing company insert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.GetContext(ctx, &row.ID, row); err != nil {
		return company.Company{}, errors.Wrap(err, "inserting company")
	}
	return row.toCompany(), nil
}

func (repo companyRepository) QueryAllCompanies(ctx context.Context) ([]company.Company, error) {
	var rows []companyRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM company ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying companies")
	}
	companies := make([]company.Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, row.toCompany())
	}
	return companies, nil
}

func (repo companyRepository) GetCompanyByID(ctx context.Context, id int) (company.Company, error) {
	var row companyRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM company WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return company.Company{}, company.ErrNotFound
		}
		return company.Company{}, errors.Wrap(err, "getting company by id")
	}
	return row.toCompany(), nil
}

func (repo companyRepository) UpdateCompany(ctx context.Context, co company.Company) (company.Company, error) {
	row := companyToRow(co)
	query := `
	UPDATE company
	SET name = :name, tc_id = :tc_id, domain = :domain, updated_at = :updated_at
	WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return company.Company{}, errors.Wrap(err, "updating company")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return company.Company{}, company.ErrNotFound
	}
	return row.toCompany(), nil
}

func (repo companyRepository) DeleteCompany(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM company WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting company")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return company.ErrNotFound
	}
	return nil
}
