package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound    = errors.New("Client not found")
	ErrEmailExists = errors.New("Email already registered")
)

type (
	Repository interface {
		CreateClient(ctx context.Context, cli Client) (Client, error)
		QueryAllClients(ctx context.Context) ([]Client, error)
		GetClientByID(ctx context.Context, id int) (Client, error)
		GetClientByEmail(ctx context.Context, email string) (Client, error)
		UpdateClient(ctx context.Context, cli Client) (Client, error)
		DeleteClient(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewClient) (Client, error) {
	if _, err := svc.repo.GetClientByEmail(ctx, nc.Email); err == nil {
		return Client{}, ErrEmailExists
	} else if errors.Cause(err) != ErrNotFound {
		return Client{}, errors.Wrap(err, "checking client email")
	}

	cli := Client{
		FirstName: nc.FirstName,
		LastName:  nc.LastName,
		Email:     nc.Email,
		Phone:     nc.Phone,
		Address:   nc.Address,
		Notes:     nc.Notes,
		CompanyID: nc.CompanyID,
		TCID:      nc.TCID,
		TCPath:    nc.TCPath,
		CreatedAt: time.Now().UTC(),
	}
	// the repo traps a racing unique violation as ErrEmailExists
	return svc.repo.CreateClient(ctx, cli)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Client, error) {
	return svc.repo.QueryAllClients(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Client, error) {
	return svc.repo.GetClientByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateClient) (Client, error) {
	cli, err := svc.repo.GetClientByID(ctx, id)
	if err != nil {
		return Client{}, err
	}

	if uc.Email != nil && *uc.Email != cli.Email {
		if _, err := svc.repo.GetClientByEmail(ctx, *uc.Email); err == nil {
			return Client{}, ErrEmailExists
		} else if errors.Cause(err) != ErrNotFound {
			return Client{}, errors.Wrap(err, "checking client email")
		}
		cli.Email = *uc.Email
	}
	if uc.FirstName != nil {
		cli.FirstName = *uc.FirstName
	}
	if uc.LastName != nil {
		cli.LastName = *uc.LastName
	}
	if uc.Phone != nil {
		cli.Phone = *uc.Phone
	}
	if uc.Address != nil {
		cli.Address = *uc.Address
	}
	if uc.Notes != nil {
		cli.Notes = *uc.Notes
	}
	if uc.TCID != nil {
		cli.TCID = *uc.TCID
	}
	if uc.TCPath != nil {
		cli.TCPath = *uc.TCPath
	}
	now := time.Now().UTC()
	cli.UpdatedAt = &now
	return svc.repo.UpdateClient(ctx, cli)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetClientByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteClient(ctx, id)
}
