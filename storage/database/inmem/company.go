package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/company"
)

type companyRepository struct {
	db *DB
}

var _ company.Repository = (*companyRepository)(nil) // interface compliance check

func NewCompanyRepository(db *DB) *companyRepository {
	return &companyRepository{db: db}
}

func (repo *companyRepository) CreateCompany(ctx context.Context, co company.Company) (company.Company, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	co.ID = repo.db.nextPK("company")
	repo.db.companies[co.ID] = &co
	return co, nil
}

func (repo *companyRepository) QueryAllCompanies(ctx context.Context) ([]company.Company, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	companies := make([]company.Company, 0, len(repo.db.companies))
	for _, co := range repo.db.companies {
		companies = append(companies, *co)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].ID < companies[j].ID })
	return companies, nil
}

func (repo *companyRepository) GetCompanyByID(ctx context.Context, id int) (company.Company, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if co, ok := repo.db.companies[id]; ok {
		return *co, nil
	}
	return company.Company{}, company.ErrNotFound
}

func (repo *companyRepository) UpdateCompany(ctx context.Context, co company.Company) (company.Company, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.companies[co.ID]; !ok {
		return company.Company{}, company.ErrNotFound
	}
	repo.db.companies[co.ID] = &co
	return co, nil
}

func (repo *companyRepository) DeleteCompany(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.companies[id]; !ok {
		return company.ErrNotFound
	}
	delete(repo.db.companies, id)
	return nil
}
