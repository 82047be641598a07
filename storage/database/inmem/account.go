package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/LukaszKielczewski66/fightclub/core/account"
)

type accountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, a := range repo.db.accounts {
		if a.Email == acc.Email {
			return account.Account{}, account.ErrEmailExists
		}
	}
	if acc.ID == "" {
		acc.ID = uuid.New().String()
	}
	repo.db.accounts[acc.ID] = &acc
	return acc, nil
}

func (repo *accountRepository) UpdateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.accounts[acc.ID]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	orig.Name = acc.Name
	orig.Role = acc.Role
	orig.IsActive = acc.IsActive
	orig.UpdatedAt = acc.UpdatedAt
	return *orig, nil
}

func (repo *accountRepository) GetAccount(_ context.Context, filter account.GetFilter) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if acc, ok := repo.db.accounts[filter.ID]; ok && (filter.Email == "" || acc.Email == filter.Email) {
			return *acc, nil
		}
		return account.Account{}, account.ErrNotFound
	}
	if filter.Email != "" {
		for _, acc := range repo.db.accounts {
			if acc.Email == filter.Email {
				return *acc, nil
			}
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) QueryAccountsByID(_ context.Context, ids []string) ([]account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	accounts := make([]account.Account, 0, len(ids))
	for _, id := range ids {
		if acc, ok := repo.db.accounts[id]; ok {
			accounts = append(accounts, *acc)
		}
	}
	return accounts, nil
}
