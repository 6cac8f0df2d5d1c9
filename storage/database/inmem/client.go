package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/client"
)

type clientRepository struct {
	db *DB
}

var _ client.Repository = (*clientRepository)(nil) // interface compliance check

func NewClientRepository(db *DB) *clientRepository {
	return &clientRepository{db: db}
}

func (repo *clientRepository) query() []client.Client {
	clients := make([]client.Client, 0, len(repo.db.clients))
	for _, c := range repo.db.clients {
		clients = append(clients, *c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients
}

func (repo *clientRepository) CreateClient(ctx context.Context, cli client.Client) (client.Client, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, c := range repo.db.clients {
		if c.Email == cli.Email {
			return client.Client{}, client.ErrEmailExists
		}
	}
	cli.ID = repo.db.nextPK("client")
	repo.db.clients[cli.ID] = &cli
	return cli, nil
}

func (repo *clientRepository) QueryAllClients(ctx context.Context) ([]client.Client, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *clientRepository) GetClientByID(ctx context.Context, id int) (client.Client, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cli, ok := repo.db.clients[id]; ok {
		return *cli, nil
	}
	return client.Client{}, client.ErrNotFound
}

func (repo *clientRepository) GetClientByEmail(ctx context.Context, email string) (client.Client, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cli := range repo.query() {
		if cli.Email == email {
			return cli, nil
		}
	}
	return client.Client{}, client.ErrNotFound
}

func (repo *clientRepository) UpdateClient(ctx context.Context, cli client.Client) (client.Client, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.clients[cli.ID]; !ok {
		return client.Client{}, client.ErrNotFound
	}
	for _, c := range repo.db.clients {
		if c.ID != cli.ID && c.Email == cli.Email {
			return client.Client{}, client.ErrEmailExists
		}
	}
	repo.db.clients[cli.ID] = &cli
	return cli, nil
}

func (repo *clientRepository) DeleteClient(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.clients[id]; !ok {
		return client.ErrNotFound
	}
	delete(repo.db.clients, id)
	return nil
}
