package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/client"
)

type clientRow struct {
	ID        int        `db:"id"`
	FirstName string     `db:"first_name"`
	LastName  string     `db:"last_name"`
	Email     string     `db:"email"`
	Phone     string     `db:"phone"`
	Address   string     `db:"address"`
	Notes     string     `db:"notes"`
	CompanyID *int       `db:"company_id"`
	TCID      string     `db:"tc_id"`
	TCPath    string     `db:"tc_path"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

func (r clientRow) toClient() client.Client {
	return client.Client{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
		Notes:     r.Notes,
		CompanyID: r.CompanyID,
		TCID:      r.TCID,
		TCPath:    r.TCPath,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func clientToRow(cli client.Client) clientRow {
	return clientRow{
		ID:        cli.ID,
		FirstName: cli.FirstName,
		LastName:  cli.LastName,
		Email:     cli.Email,
		Phone:     cli.Phone,
		Address:   cli.Address,
		Notes:     cli.Notes,
		CompanyID: cli.CompanyID,
		TCID:      cli.TCID,
		TCPath:    cli.TCPath,
		CreatedAt: cli.CreatedAt.UTC(),
		UpdatedAt: cli.UpdatedAt,
	}
}

type clientRepository struct {
	db *sqlx.DB
}

var _ client.Repository = (*clientRepository)(nil) // interface compliance check

func NewClientRepository(db *sqlx.DB) *clientRepository {
	return &clientRepository{db: db}
}

func (repo clientRepository) CreateClient(ctx context.Context, cli client.Client) (client.Client, error) {
	row := clientToRow(cli)
	query := `
	INSERT INTO client (first_name, last_name, email, phone, address, notes, company_id, tc_id, tc_path, created_at)
	VALUES (:first_name, :last_name, :email, :phone, :address, :notes, :company_id, :tc_id, :tc_path, :created_at)
	RETURNING id`

	stmt, err := repo.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return client.Client{}, errors.Wrap(err, "preparing client insert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.GetContext(ctx, &row.ID, row); err != nil {
		return client.Client{}, errors.Wrap(trapUniqueErr(err, client.ErrEmailExists), "inserting client")
	}
	return row.toClient(), nil
}

func (repo clientRepository) QueryAllClients(ctx context.Context) ([]client.Client, error) {
	var rows []clientRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM client ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying clients")
	}
	clients := make([]client.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, row.toClient())
	}
	return clients, nil
}

func (repo clientRepository) GetClientByID(ctx context.Context, id int) (client.Client, error) {
	var row clientRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM client WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return client.Client{}, client.ErrNotFound
		}
		return client.Client{}, errors.Wrap(err, "getting client by id")
	}
	return row.toClient(), nil
}

func (repo clientRepository) GetClientByEmail(ctx context.Context, email string) (client.Client, error) {
	var row clientRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM client WHERE email = $1`, email); err != nil {
		if err == sql.ErrNoRows {
			return client.Client{}, client.ErrNotFound
		}
		return client.Client{}, errors.Wrap(err, "getting client by email")
	}
	return row.toClient(), nil
}

func (repo clientRepository) UpdateClient(ctx context.Context, cli client.Client) (client.Client, error) {
	row := clientToRow(cli)
	query := `
	UPDATE client
	SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
	    address = :address, notes = :notes, updated_at = :updated_at
	WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return client.Client{}, errors.Wrap(trapUniqueErr(err, client.ErrEmailExists), "updating client")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return client.Client{}, client.ErrNotFound
	}
	return row.toClient(), nil
}

func (repo clientRepository) DeleteClient(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM client WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting client")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return client.ErrNotFound
	}
	return nil
}
